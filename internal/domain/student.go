package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Student-specific validation errors
var (
	// ErrStudentIDEmpty is returned when a student ID is empty or nil.
	ErrStudentIDEmpty = errors.New("student ID cannot be empty")

	// ErrStudentNameEmpty is returned when a student's name is empty.
	ErrStudentNameEmpty = errors.New("student name cannot be empty")

	// ErrStudentEmailEmpty is returned when a student's email is empty.
	ErrStudentEmailEmpty = errors.New("student email cannot be empty")
)

// Student represents a learner who can be enrolled in any number of courses.
// Courses is only populated when the caller requested the relation; an
// unpopulated relation is nil and omitted from JSON output.
type Student struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Courses []*Course `json:"courses,omitempty"`
}

// NewStudent creates a new Student with the given name and email.
// It generates a new UUID for the student ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewStudent(name, email string) (*Student, error) {
	now := time.Now().UTC()
	student := &Student{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := student.Validate(); err != nil {
		return nil, err
	}

	return student, nil
}

// Validate checks if the Student has valid data.
// Returns an error if any field fails validation.
func (s *Student) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStudentIDEmpty
	}

	if s.Name == "" {
		return ErrStudentNameEmpty
	}

	if s.Email == "" {
		return ErrStudentEmailEmpty
	}

	return nil
}
