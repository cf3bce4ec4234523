package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

// PostgresTeacherStore implements the store.TeacherStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTeacherStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTeacherStore creates a new PostgreSQL implementation of the
// TeacherStore interface. If logger is nil, a default logger will be used.
func NewPostgresTeacherStore(db store.DBTX, logger *slog.Logger) *PostgresTeacherStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeacherStore{
		db:     db,
		logger: logger.With(slog.String("component", "teacher_store")),
	}
}

// Ensure PostgresTeacherStore implements store.TeacherStore interface
var _ store.TeacherStore = (*PostgresTeacherStore)(nil)

// WithTx implements store.TeacherStore.WithTx
func (s *PostgresTeacherStore) WithTx(tx *sql.Tx) store.TeacherStore {
	return &PostgresTeacherStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TeacherStore.Create
func (s *PostgresTeacherStore) Create(ctx context.Context, teacher *domain.Teacher) error {
	if err := teacher.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	q := `
		INSERT INTO teachers (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, q,
		teacher.ID,
		teacher.Name,
		teacher.Email,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		s.logger.Error("failed to create teacher",
			slog.String("teacher_id", teacher.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("teacher", "create", "insert failed", err)
	}

	return nil
}

// List implements store.TeacherStore.List
func (s *PostgresTeacherStore) List(
	ctx context.Context,
	plan query.Plan,
) ([]*domain.Teacher, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&total); err != nil {
		return nil, 0, store.NewStoreError("teacher", "list", "count failed", err)
	}

	// SortColumn and SortOrder come from the query planner's allow-list,
	// never from raw client input.
	q := fmt.Sprintf(`
		SELECT id, name, email, created_at, updated_at
		FROM teachers
		ORDER BY %s %s
		LIMIT $1 OFFSET $2
	`, plan.SortColumn, plan.SortOrder)

	rows, err := s.db.QueryContext(ctx, q, plan.Limit, plan.Offset)
	if err != nil {
		return nil, 0, store.NewStoreError("teacher", "list", "query failed", err)
	}
	defer rows.Close()

	var teachers []*domain.Teacher
	for rows.Next() {
		var teacher domain.Teacher
		if err := rows.Scan(
			&teacher.ID,
			&teacher.Name,
			&teacher.Email,
			&teacher.CreatedAt,
			&teacher.UpdatedAt,
		); err != nil {
			return nil, 0, store.NewStoreError("teacher", "list", "row scan failed", err)
		}
		teachers = append(teachers, &teacher)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("teacher", "list", "row iteration failed", err)
	}

	if err := s.hydrate(ctx, teachers, plan.Includes); err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

// GetByID implements store.TeacherStore.GetByID
func (s *PostgresTeacherStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includes []query.IncludeSpec,
) (*domain.Teacher, error) {
	q := `
		SELECT id, name, email, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`

	var teacher domain.Teacher
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&teacher.ID,
		&teacher.Name,
		&teacher.Email,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrTeacherNotFound
		}
		return nil, store.NewStoreError("teacher", "get", "query failed", err)
	}

	if err := s.hydrate(ctx, []*domain.Teacher{&teacher}, includes); err != nil {
		return nil, err
	}

	return &teacher, nil
}

// Update implements store.TeacherStore.Update
func (s *PostgresTeacherStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update store.TeacherUpdate,
) (*domain.Teacher, error) {
	q := `
		UPDATE teachers
		SET name = COALESCE($1, name),
		    email = COALESCE($2, email),
		    updated_at = $3
		WHERE id = $4
		RETURNING id, name, email, created_at, updated_at
	`

	var teacher domain.Teacher
	err := s.db.QueryRowContext(ctx, q,
		update.Name,
		update.Email,
		time.Now().UTC(),
		id,
	).Scan(
		&teacher.ID,
		&teacher.Name,
		&teacher.Email,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrTeacherNotFound
		}
		if isUniqueViolation(err) {
			return nil, store.ErrEmailExists
		}
		return nil, store.NewStoreError("teacher", "update", "update failed", err)
	}

	return &teacher, nil
}

// Delete implements store.TeacherStore.Delete
// Courses taught by the teacher keep existing with their teacher reference
// cleared by the ON DELETE SET NULL rule on courses.teacher_id.
func (s *PostgresTeacherStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("teacher", "delete", "delete failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("teacher", "delete", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrTeacherNotFound
	}

	return nil
}

// hydrate attaches the requested relations to the loaded teachers.
// The include graph was resolved against the Teacher schema, so only the
// Course relation (optionally nesting Student) can appear here.
func (s *PostgresTeacherStore) hydrate(
	ctx context.Context,
	teachers []*domain.Teacher,
	includes []query.IncludeSpec,
) error {
	courseSpec, ok := findInclude(includes, query.RelationCourse)
	if !ok || len(teachers) == 0 {
		return nil
	}

	teacherIDs := make([]uuid.UUID, len(teachers))
	for i, teacher := range teachers {
		teacherIDs[i] = teacher.ID
	}

	byTeacher, courses, err := coursesForTeachers(ctx, s.db, teacherIDs)
	if err != nil {
		return err
	}

	for _, teacher := range teachers {
		teacher.Courses = byTeacher[teacher.ID]
	}

	if _, ok := findInclude(courseSpec.Nested, query.RelationStudent); ok {
		if err := attachCourseStudents(ctx, s.db, courses); err != nil {
			return err
		}
	}

	return nil
}
