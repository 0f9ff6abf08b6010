// Package db opens the GORM connection for the sqlite and postgres user stores.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gym_backend/internal/platform/config"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Opener opens a connection for a DSN. Swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig enables error translation so adapters can match gorm.ErrDuplicatedKey.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// PostgresOpener opens a postgres connection.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener opens a sqlite database file (or ":memory:").
func SQLiteOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// BuildDSN builds a postgres key/value DSN from the configuration.
func BuildDSN(cfg config.DB) string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects using the configured driver and runs AutoMigrate for models
// when migrations are enabled.
func Open(driver string, cfg config.DB, models ...any) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case config.DriverSQLite:
		db, err = SQLiteOpener(cfg.SQLitePath)
		if err == nil {
			// SQLite allows a single writer; serialize access through one connection.
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	case config.DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, PostgresOpener)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}
