// Package main implements the entry point for the roster API server, which
// exposes CRUD endpoints for students, teachers and courses backed by
// PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/schoolsync/roster-api/internal/config"
	"github.com/schoolsync/roster-api/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	migrateOnly := flag.Bool("migrate-only", false, "run schema migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, sets up logging and the database, and starts the
// HTTP server. Split from main so it can return errors.
func run(configPath string, migrateOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rootLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	rootLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"default_limit", cfg.Query.DefaultLimit,
		"max_limit", cfg.Query.MaxLimit)

	db, err := setupDatabase(cfg, rootLogger)
	if err != nil {
		return err
	}

	if err := runMigrations(db, rootLogger); err != nil {
		_ = db.Close()
		return err
	}

	if migrateOnly {
		rootLogger.Info("migrations applied, exiting")
		return db.Close()
	}

	app := newApplication(cfg, rootLogger, db)
	return app.startHTTPServer(context.Background(), app.setupRouter())
}
