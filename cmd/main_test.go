package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	"user-management-service/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func TestRateLimiterConfig(t *testing.T) {
	e := echo.New()
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(&config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})))
	e.GET("/users", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{})
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK {
		t.Errorf("first request status = %d, want 200", codes[0])
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", codes[1])
	}
}

func TestConnectDB_NoSleepAfterLastAttempt(t *testing.T) {
	defer func(d time.Duration) { connectRetryDelay = d }(connectRetryDelay)
	connectRetryDelay = 300 * time.Millisecond

	cfg := &config.Config{
		DBDriver:         "sqlite",
		DBPath:           filepath.Join(t.TempDir(), "missing", "users.db"),
		DBConnectRetries: 1,
	}

	start := time.Now()
	db, err := connectDB(cfg)
	elapsed := time.Since(start)
	if err == nil {
		db.Close()
		t.Fatal("expected connect error for missing directory")
	}
	if elapsed < connectRetryDelay {
		t.Errorf("elapsed %v, want at least one retry delay", elapsed)
	}
	if elapsed >= 2*connectRetryDelay {
		t.Errorf("elapsed %v, slept after the last attempt", elapsed)
	}
}

func TestConnectDB_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "users.db")}

	db, err := connectDB(cfg)
	if err != nil {
		t.Fatalf("connectDB() unexpected error: %v", err)
	}
	db.Close()
}
