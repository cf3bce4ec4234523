package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/query"
)

// TeacherUpdate describes a partial update to a teacher. Nil fields are left
// unchanged.
type TeacherUpdate struct {
	Name  *string
	Email *string
}

// TeacherStore defines the interface for teacher data persistence.
type TeacherStore interface {
	// Create saves a new teacher to the store.
	// Returns ErrEmailExists if the email is already in use and
	// ErrInvalidEntity (wrapping the domain error) if validation fails.
	Create(ctx context.Context, teacher *domain.Teacher) error

	// List retrieves a page of teachers according to the plan, hydrating any
	// requested includes, along with the total number of teachers in the
	// store (ignoring pagination).
	List(ctx context.Context, plan query.Plan) ([]*domain.Teacher, int, error)

	// GetByID retrieves a teacher by its unique ID, hydrating the requested
	// includes. Returns ErrTeacherNotFound if the teacher does not exist.
	GetByID(ctx context.Context, id uuid.UUID, includes []query.IncludeSpec) (*domain.Teacher, error)

	// Update applies a partial update and returns the updated teacher.
	// Returns ErrTeacherNotFound if the teacher does not exist.
	Update(ctx context.Context, id uuid.UUID, update TeacherUpdate) (*domain.Teacher, error)

	// Delete removes a teacher by its ID. Courses taught by the teacher are
	// kept with their teacher reference cleared by the database's SET NULL
	// rule. Returns ErrTeacherNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TeacherStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TeacherStore
}
