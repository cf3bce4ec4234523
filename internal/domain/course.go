package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Course-specific validation errors
var (
	// ErrCourseIDEmpty is returned when a course ID is empty or nil.
	ErrCourseIDEmpty = errors.New("course ID cannot be empty")

	// ErrCourseNameEmpty is returned when a course's name is empty.
	ErrCourseNameEmpty = errors.New("course name cannot be empty")

	// ErrCourseTeacherIDNil is returned when a course's teacher reference is
	// set but holds the nil UUID.
	ErrCourseTeacherIDNil = errors.New("course teacher ID cannot be the nil UUID")
)

// Course represents a class taught by at most one teacher and attended by
// any number of students. TeacherID is nil while the course is unassigned.
// Teacher and Students are only populated when the caller requested the
// relation.
type Course struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	TeacherID *uuid.UUID `json:"teacher_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Teacher  *Teacher   `json:"teacher,omitempty"`
	Students []*Student `json:"students,omitempty"`
}

// NewCourse creates a new Course with the given name and optional teacher.
// It generates a new UUID for the course ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCourse(name string, teacherID *uuid.UUID) (*Course, error) {
	now := time.Now().UTC()
	course := &Course{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	return course, nil
}

// Validate checks if the Course has valid data.
// Returns an error if any field fails validation.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCourseIDEmpty
	}

	if c.Name == "" {
		return ErrCourseNameEmpty
	}

	if c.TeacherID != nil && *c.TeacherID == uuid.Nil {
		return ErrCourseTeacherIDNil
	}

	return nil
}
