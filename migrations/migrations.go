package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var userTableDDL = map[string]string{
	"mysql": `
		CREATE TABLE IF NOT EXISTS user_management (
			id INT AUTO_INCREMENT PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone_number VARCHAR(50) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL
		);
	`,
	"sqlite": `
		CREATE TABLE IF NOT EXISTS user_management (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL
		);
	`,
}

// retryDelay is the pause between attempts.
var retryDelay = 1 * time.Second

// AutoMigrateUsers creates the user_management table if it does not exist.
func AutoMigrateUsers(driver string, retries int, db *sql.DB) error {
	query, ok := userTableDDL[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	_, err := db.Exec(query)
	// Retry creating the table
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(retryDelay)
		_, err = db.Exec(query)
	}
	if err != nil {
		return fmt.Errorf("create user_management table: %w", err)
	}
	return nil
}
