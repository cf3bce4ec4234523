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

// PostgresStudentStore implements the store.StudentStore interface using a
// PostgreSQL database as the storage backend.
type PostgresStudentStore struct {
	db     store.DBTX
	pool   *sql.DB // nil when the store is bound to a transaction
	logger *slog.Logger
}

// NewPostgresStudentStore creates a new PostgreSQL implementation of the
// StudentStore interface. The caller owns the connection pool.
// If logger is nil, a default logger will be used.
func NewPostgresStudentStore(db *sql.DB, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudentStore{
		db:     db,
		pool:   db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

// Ensure PostgresStudentStore implements store.StudentStore interface
var _ store.StudentStore = (*PostgresStudentStore)(nil)

// WithTx implements store.StudentStore.WithTx
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.StudentStore.Create
func (s *PostgresStudentStore) Create(ctx context.Context, student *domain.Student) error {
	if err := student.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	q := `
		INSERT INTO students (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, q,
		student.ID,
		student.Name,
		student.Email,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		s.logger.Error("failed to create student",
			slog.String("student_id", student.ID.String()),
			slog.String("error", err.Error()))
		return store.NewStoreError("student", "create", "insert failed", err)
	}

	return nil
}

// List implements store.StudentStore.List
func (s *PostgresStudentStore) List(
	ctx context.Context,
	plan query.Plan,
) ([]*domain.Student, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, store.NewStoreError("student", "list", "count failed", err)
	}

	// SortColumn and SortOrder come from the query planner's allow-list,
	// never from raw client input.
	q := fmt.Sprintf(`
		SELECT id, name, email, created_at, updated_at
		FROM students
		ORDER BY %s %s
		LIMIT $1 OFFSET $2
	`, plan.SortColumn, plan.SortOrder)

	rows, err := s.db.QueryContext(ctx, q, plan.Limit, plan.Offset)
	if err != nil {
		return nil, 0, store.NewStoreError("student", "list", "query failed", err)
	}
	defer rows.Close()

	var students []*domain.Student
	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return nil, 0, store.NewStoreError("student", "list", "row scan failed", err)
		}
		students = append(students, &student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("student", "list", "row iteration failed", err)
	}

	if err := s.hydrate(ctx, students, plan.Includes); err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// GetByID implements store.StudentStore.GetByID
func (s *PostgresStudentStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includes []query.IncludeSpec,
) (*domain.Student, error) {
	q := `
		SELECT id, name, email, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	var student domain.Student
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrStudentNotFound
		}
		return nil, store.NewStoreError("student", "get", "query failed", err)
	}

	if err := s.hydrate(ctx, []*domain.Student{&student}, includes); err != nil {
		return nil, err
	}

	return &student, nil
}

// Update implements store.StudentStore.Update
func (s *PostgresStudentStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update store.StudentUpdate,
) (*domain.Student, error) {
	q := `
		UPDATE students
		SET name = COALESCE($1, name),
		    email = COALESCE($2, email),
		    updated_at = $3
		WHERE id = $4
		RETURNING id, name, email, created_at, updated_at
	`

	var student domain.Student
	err := s.db.QueryRowContext(ctx, q,
		update.Name,
		update.Email,
		time.Now().UTC(),
		id,
	).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrStudentNotFound
		}
		if isUniqueViolation(err) {
			return nil, store.ErrEmailExists
		}
		return nil, store.NewStoreError("student", "update", "update failed", err)
	}

	return &student, nil
}

// Delete implements store.StudentStore.Delete
// Enrollments referencing the student are removed by the ON DELETE CASCADE
// rule on the enrollments table.
func (s *PostgresStudentStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("student", "delete", "delete failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("student", "delete", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrStudentNotFound
	}

	return nil
}

// Enroll implements store.StudentStore.Enroll
// The existence checks and the insert run in one transaction so a concurrent
// delete cannot leave a dangling enrollment.
func (s *PostgresStudentStore) Enroll(ctx context.Context, studentID, courseID uuid.UUID) error {
	if s.pool == nil {
		return s.enroll(ctx, studentID, courseID)
	}
	return store.RunInTransaction(ctx, s.pool, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).(*PostgresStudentStore).enroll(ctx, studentID, courseID)
	})
}

func (s *PostgresStudentStore) enroll(ctx context.Context, studentID, courseID uuid.UUID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, studentID).Scan(&exists)
	if err != nil {
		return store.NewStoreError("enrollment", "create", "student lookup failed", err)
	}
	if !exists {
		return store.ErrStudentNotFound
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists)
	if err != nil {
		return store.NewStoreError("enrollment", "create", "course lookup failed", err)
	}
	if !exists {
		return store.ErrCourseNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2)`,
		studentID, courseID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyEnrolled
		}
		return store.NewStoreError("enrollment", "create", "insert failed", err)
	}

	return nil
}

// Unenroll implements store.StudentStore.Unenroll
func (s *PostgresStudentStore) Unenroll(ctx context.Context, studentID, courseID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID)
	if err != nil {
		return store.NewStoreError("enrollment", "delete", "delete failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("enrollment", "delete", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrEnrollmentNotFound
	}

	return nil
}

// hydrate attaches the requested relations to the loaded students.
// The include graph was resolved against the Student schema, so only the
// Course relation (optionally nesting Teacher) can appear here.
func (s *PostgresStudentStore) hydrate(
	ctx context.Context,
	students []*domain.Student,
	includes []query.IncludeSpec,
) error {
	courseSpec, ok := findInclude(includes, query.RelationCourse)
	if !ok || len(students) == 0 {
		return nil
	}

	studentIDs := make([]uuid.UUID, len(students))
	for i, student := range students {
		studentIDs[i] = student.ID
	}

	byStudent, courses, err := coursesForStudents(ctx, s.db, studentIDs)
	if err != nil {
		return err
	}

	for _, student := range students {
		student.Courses = byStudent[student.ID]
	}

	if _, ok := findInclude(courseSpec.Nested, query.RelationTeacher); ok {
		if err := attachCourseTeachers(ctx, s.db, courses); err != nil {
			return err
		}
	}

	return nil
}
