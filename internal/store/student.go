package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
)

// StudentUpdate describes a partial update to a student. Nil fields are left
// unchanged.
type StudentUpdate struct {
	Name  *string
	Email *string
}

// StudentStore defines the interface for student data persistence.
type StudentStore interface {
	// Create saves a new student to the store.
	// Returns ErrEmailExists if the email is already in use and
	// ErrInvalidEntity (wrapping the domain error) if validation fails.
	Create(ctx context.Context, student *domain.Student) error

	// List retrieves a page of students according to the plan, hydrating any
	// requested includes, along with the total number of students in the
	// store (ignoring pagination).
	List(ctx context.Context, plan query.Plan) ([]*domain.Student, int, error)

	// GetByID retrieves a student by its unique ID, hydrating the requested
	// includes. Returns ErrStudentNotFound if the student does not exist.
	GetByID(ctx context.Context, id uuid.UUID, includes []query.IncludeSpec) (*domain.Student, error)

	// Update applies a partial update and returns the updated student.
	// Returns ErrStudentNotFound if the student does not exist and
	// ErrEmailExists if the new email collides with another student.
	Update(ctx context.Context, id uuid.UUID, update StudentUpdate) (*domain.Student, error)

	// Delete removes a student by its ID; enrollments are removed by the
	// database's cascade rule. Returns ErrStudentNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Enroll adds the student to a course. Returns ErrStudentNotFound or
	// ErrCourseNotFound when either side is absent, and ErrAlreadyEnrolled
	// when the pair already exists.
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) error

	// Unenroll removes the student from a course. Returns
	// ErrEnrollmentNotFound when the pair does not exist.
	Unenroll(ctx context.Context, studentID, courseID uuid.UUID) error

	// WithTx returns a StudentStore bound to the provided transaction, so
	// multiple operations can run atomically via RunInTransaction.
	WithTx(tx *sql.Tx) StudentStore
}
