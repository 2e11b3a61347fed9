package migrations

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

func TestAutoMigrateUsers_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := AutoMigrateUsers("sqlite", 0, db); err != nil {
		t.Fatalf("AutoMigrateUsers() error = %v", err)
	}
	// Second run is a no-op.
	if err := AutoMigrateUsers("sqlite", 0, db); err != nil {
		t.Fatalf("AutoMigrateUsers() second run error = %v", err)
	}

	_, err = db.Exec(`INSERT INTO user_management (first_name, last_name, email, phone_number, password_hash, role) VALUES ('a', 'b', 'c', 'd', 'e', 'f')`)
	if err != nil {
		t.Fatalf("insert after migrate failed: %v", err)
	}
}

func TestAutoMigrateUsers_UnsupportedDriver(t *testing.T) {
	if err := AutoMigrateUsers("postgres", 0, nil); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestAutoMigrateUsers_RetriesThenFails(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = 0

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	db.Close()

	if err := AutoMigrateUsers("sqlite", 2, db); err == nil {
		t.Error("expected error on closed database")
	}
}
