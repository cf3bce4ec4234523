package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/schoolsync/roster-api/internal/config"
	"github.com/schoolsync/roster-api/internal/platform/postgres"
)

// setupDatabase establishes the database connection, configures the pool and
// verifies connectivity with a short ping.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// runMigrations applies the embedded schema migrations and logs the
// resulting version.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := postgres.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("database schema up to date", "version", version)
	return nil
}
