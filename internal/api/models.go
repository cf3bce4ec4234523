package api

import (
	"net/http"

	"github.com/schoolsync/roster-api/internal/query"
)

// CreateStudentRequest is the body for POST /students.
type CreateStudentRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateStudentRequest is the body for PUT /students/{id}. All fields are
// optional; absent fields are left unchanged.
type UpdateStudentRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// CreateTeacherRequest is the body for POST /teachers.
type CreateTeacherRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateTeacherRequest is the body for PUT /teachers/{id}.
type UpdateTeacherRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// CreateCourseRequest is the body for POST /courses. TeacherID is optional;
// when present it must reference an existing teacher.
type CreateCourseRequest struct {
	Name      string  `json:"name"       validate:"required"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// UpdateCourseRequest is the body for PUT /courses/{id}.
type UpdateCourseRequest struct {
	Name      *string `json:"name"       validate:"omitempty,min=1"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// ListMeta is the pagination metadata returned by collection endpoints.
type ListMeta struct {
	TotalItems int `json:"totalItems"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// ListResponse is the envelope for collection endpoints.
type ListResponse struct {
	Meta ListMeta    `json:"meta"`
	Data interface{} `json:"data"`
}

// newListMeta derives pagination metadata from a total count and the
// resolved page window. An empty collection reports zero pages.
func newListMeta(totalItems, page, limit int) ListMeta {
	totalPages := 0
	if totalItems > 0 && limit > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	return ListMeta{
		TotalItems: totalItems,
		Page:       page,
		TotalPages: totalPages,
	}
}

// queryParams extracts the list-query parameters recognized by the query
// planner from the request.
func queryParams(r *http.Request) query.Params {
	q := r.URL.Query()
	return query.Params{
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
		SortBy:   q.Get("sortby"),
		Populate: q.Get("populate"),
	}
}
