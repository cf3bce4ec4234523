package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Teacher-specific validation errors
var (
	// ErrTeacherIDEmpty is returned when a teacher ID is empty or nil.
	ErrTeacherIDEmpty = errors.New("teacher ID cannot be empty")

	// ErrTeacherNameEmpty is returned when a teacher's name is empty.
	ErrTeacherNameEmpty = errors.New("teacher name cannot be empty")

	// ErrTeacherEmailEmpty is returned when a teacher's email is empty.
	ErrTeacherEmailEmpty = errors.New("teacher email cannot be empty")
)

// Teacher represents an instructor who may own any number of courses.
// Courses is only populated when the caller requested the relation.
type Teacher struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Courses []*Course `json:"courses,omitempty"`
}

// NewTeacher creates a new Teacher with the given name and email.
// It generates a new UUID for the teacher ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTeacher(name, email string) (*Teacher, error) {
	now := time.Now().UTC()
	teacher := &Teacher{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := teacher.Validate(); err != nil {
		return nil, err
	}

	return teacher, nil
}

// Validate checks if the Teacher has valid data.
// Returns an error if any field fails validation.
func (t *Teacher) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTeacherIDEmpty
	}

	if t.Name == "" {
		return ErrTeacherNameEmpty
	}

	if t.Email == "" {
		return ErrTeacherEmailEmpty
	}

	return nil
}
