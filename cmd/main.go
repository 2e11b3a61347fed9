package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"user-management-service/internal/api"
	"user-management-service/internal/config"
	"user-management-service/internal/events"
	"user-management-service/internal/idempotency"
	"user-management-service/internal/logging"
	"user-management-service/internal/repository"
	"user-management-service/internal/service"
	"user-management-service/migrations"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var connectRetryDelay = 3 * time.Second

func connectDB(cfg *config.Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i <= cfg.DBConnectRetries; i++ {
		db, err = sql.Open(cfg.DBDriver, cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to %s database", cfg.DBDriver)
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to %s database", i+1, cfg.DBDriver)
		if i < cfg.DBConnectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to %s database after retries: %w", cfg.DBDriver, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := logging.Setup(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	db, err := connectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Database unavailable")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := migrations.AutoMigrateUsers(cfg.DBDriver, 3, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate user_management table")
	}

	var guard idempotency.Guard = idempotency.Nop{}
	if cfg.RedisAddr != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis unavailable")
		}
		defer rdb.Close()
		guard = idempotency.NewRedisGuard(rdb, cfg.IdempotencyTTL)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(config.NewKafkaWriter(cfg))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, publisher, guard, cfg.BcryptCost)
	userHandler := api.NewUserHandler(userService)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg)))
	}

	// Routes
	api.RegisterRoutes(e, userHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()
	log.Info().Msgf("user-management-service listening on :%s", cfg.Port)

	<-ctx.Done()
	log.Warn().Msg("Shutting down user-management-service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}
}
