package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
)

// CourseUpdate describes a partial update to a course. Nil fields are left
// unchanged.
type CourseUpdate struct {
	Name      *string
	TeacherID *uuid.UUID
}

// CourseStore defines the interface for course data persistence.
type CourseStore interface {
	// Create saves a new course to the store.
	// Returns ErrTeacherNotFound if the referenced teacher does not exist
	// and ErrInvalidEntity (wrapping the domain error) if validation fails.
	Create(ctx context.Context, course *domain.Course) error

	// List retrieves a page of courses according to the plan, hydrating any
	// requested includes, along with the total number of courses in the
	// store (ignoring pagination).
	List(ctx context.Context, plan query.Plan) ([]*domain.Course, int, error)

	// GetByID retrieves a course by its unique ID, hydrating the requested
	// includes. Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id uuid.UUID, includes []query.IncludeSpec) (*domain.Course, error)

	// Update applies a partial update and returns the updated course.
	// Returns ErrCourseNotFound if the course does not exist and
	// ErrTeacherNotFound if a new teacher reference is dangling.
	Update(ctx context.Context, id uuid.UUID, update CourseUpdate) (*domain.Course, error)

	// Delete removes a course by its ID; enrollments are removed by the
	// database's cascade rule. Returns ErrCourseNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CourseStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CourseStore
}
