package main

import (
	"database/sql"
	"log/slog"

	"github.com/schoolsync/roster-api/internal/config"
	"github.com/schoolsync/roster-api/internal/platform/postgres"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

// application holds the shared dependencies of the server: configuration,
// the root logger, the database handle and the entity stores.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	planner  *query.Builder
	students store.StudentStore
	teachers store.TeacherStore
	courses  store.CourseStore
}

// newApplication wires the stores and the query planner onto an established
// database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	return &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		planner:  query.NewBuilder(cfg.Query.DefaultLimit, cfg.Query.MaxLimit),
		students: postgres.NewPostgresStudentStore(db, logger),
		teachers: postgres.NewPostgresTeacherStore(db, logger),
		courses:  postgres.NewPostgresCourseStore(db, logger),
	}
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}
