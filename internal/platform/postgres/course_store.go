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

// PostgresCourseStore implements the store.CourseStore interface using a
// PostgreSQL database as the storage backend.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgreSQL implementation of the
// CourseStore interface. If logger is nil, a default logger will be used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// Ensure PostgresCourseStore implements store.CourseStore interface
var _ store.CourseStore = (*PostgresCourseStore)(nil)

// WithTx implements store.CourseStore.WithTx
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CourseStore.Create
func (s *PostgresCourseStore) Create(ctx context.Context, course *domain.Course) error {
	if err := course.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	q := `
		INSERT INTO courses (id, name, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, q,
		course.ID,
		course.Name,
		teacherIDArg(course.TeacherID),
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err, "courses_teacher_id_fkey") {
			return store.ErrTeacherNotFound
		}
		s.logger.Error("failed to create course",
			slog.String("course_id", course.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("course", "create", "insert failed", err)
	}

	return nil
}

// List implements store.CourseStore.List
func (s *PostgresCourseStore) List(
	ctx context.Context,
	plan query.Plan,
) ([]*domain.Course, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, store.NewStoreError("course", "list", "count failed", err)
	}

	// SortColumn and SortOrder come from the query planner's allow-list,
	// never from raw client input.
	q := fmt.Sprintf(`
		SELECT id, name, teacher_id, created_at, updated_at
		FROM courses
		ORDER BY %s %s
		LIMIT $1 OFFSET $2
	`, plan.SortColumn, plan.SortOrder)

	rows, err := s.db.QueryContext(ctx, q, plan.Limit, plan.Offset)
	if err != nil {
		return nil, 0, store.NewStoreError("course", "list", "query failed", err)
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, store.NewStoreError("course", "list", "row scan failed", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("course", "list", "row iteration failed", err)
	}

	if err := s.hydrate(ctx, courses, plan.Includes); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// GetByID implements store.CourseStore.GetByID
func (s *PostgresCourseStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includes []query.IncludeSpec,
) (*domain.Course, error) {
	q := `
		SELECT id, name, teacher_id, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	course, err := scanCourse(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrCourseNotFound
		}
		return nil, store.NewStoreError("course", "get", "query failed", err)
	}

	if err := s.hydrate(ctx, []*domain.Course{course}, includes); err != nil {
		return nil, err
	}

	return course, nil
}

// Update implements store.CourseStore.Update
func (s *PostgresCourseStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update store.CourseUpdate,
) (*domain.Course, error) {
	q := `
		UPDATE courses
		SET name = COALESCE($1, name),
		    teacher_id = COALESCE($2, teacher_id),
		    updated_at = $3
		WHERE id = $4
		RETURNING id, name, teacher_id, created_at, updated_at
	`

	course, err := scanCourse(s.db.QueryRowContext(ctx, q,
		update.Name,
		teacherIDArg(update.TeacherID),
		time.Now().UTC(),
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrCourseNotFound
		}
		if isForeignKeyViolation(err, "courses_teacher_id_fkey") {
			return nil, store.ErrTeacherNotFound
		}
		return nil, store.NewStoreError("course", "update", "update failed", err)
	}

	return course, nil
}

// Delete implements store.CourseStore.Delete
// Enrollments referencing the course are removed by the ON DELETE CASCADE
// rule on the enrollments table.
func (s *PostgresCourseStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("course", "delete", "delete failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("course", "delete", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrCourseNotFound
	}

	return nil
}

// hydrate attaches the requested relations to the loaded courses. The
// Course schema allows Teacher and Student at the top level.
func (s *PostgresCourseStore) hydrate(
	ctx context.Context,
	courses []*domain.Course,
	includes []query.IncludeSpec,
) error {
	if len(courses) == 0 {
		return nil
	}

	if _, ok := findInclude(includes, query.RelationTeacher); ok {
		if err := attachCourseTeachers(ctx, s.db, courses); err != nil {
			return err
		}
	}

	if _, ok := findInclude(includes, query.RelationStudent); ok {
		if err := attachCourseStudents(ctx, s.db, courses); err != nil {
			return err
		}
	}

	return nil
}

// scanCourse reads one course row from a *sql.Row or *sql.Rows.
func scanCourse(row interface{ Scan(dest ...any) error }) (*domain.Course, error) {
	var course domain.Course
	var teacherID uuid.NullUUID
	if err := row.Scan(
		&course.ID,
		&course.Name,
		&teacherID,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if teacherID.Valid {
		id := teacherID.UUID
		course.TeacherID = &id
	}
	return &course, nil
}

// teacherIDArg converts an optional teacher reference to a nullable SQL
// argument.
func teacherIDArg(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
