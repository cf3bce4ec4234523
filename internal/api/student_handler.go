// Package api provides HTTP handlers for the roster API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/schoolsync/roster-api/internal/api/shared"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/platform/logger"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

// StudentHandler handles student-related HTTP requests.
type StudentHandler struct {
	students store.StudentStore
	planner  *query.Builder
	schema   *query.RelationSchema
	logger   *slog.Logger
}

// NewStudentHandler creates a new StudentHandler. The relation schema is
// resolved once here rather than per request.
func NewStudentHandler(
	students store.StudentStore,
	planner *query.Builder,
	logger *slog.Logger,
) *StudentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudentHandler")
	}

	return &StudentHandler{
		students: students,
		planner:  planner,
		schema:   query.StudentSchema(),
		logger:   logger.With(slog.String("component", "student_handler")),
	}
}

// Create handles POST /students requests.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	student, err := domain.NewStudent(req.Name, req.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid entity data", err)
		return
	}

	if err := h.students.Create(r.Context(), student); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, student)
}

// List handles GET /students requests, interpreting the page, limit, sortby
// and populate query parameters.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	plan, page, err := h.planner.ForList(queryParams(r), h.schema)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	students, total, err := h.students.List(r.Context(), plan)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if students == nil {
		students = []*domain.Student{}
	}

	log.Debug("listed students",
		slog.Int("total", total),
		slog.Int("page", page),
		slog.Int("limit", plan.Limit))

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{
		Meta: newListMeta(total, page, plan.Limit),
		Data: students,
	})
}

// GetByID handles GET /students/{id} requests. Only the populate parameter
// applies to a single-record fetch.
func (h *StudentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	includes := h.planner.ForSingle(queryParams(r), h.schema)

	student, err := h.students.GetByID(r.Context(), id, includes)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// Update handles PUT /students/{id} requests with partial bodies.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	student, err := h.students.Update(r.Context(), id, store.StudentUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// Delete handles DELETE /students/{id} requests.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.students.Delete(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Deleted")
}

// Enroll handles POST /students/{id}/courses/{courseID} requests.
func (h *StudentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	courseID, ok := parseIDParam(w, r, "courseID")
	if !ok {
		return
	}

	if err := h.students.Enroll(r.Context(), studentID, courseID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusCreated, "Enrolled")
}

// Unenroll handles DELETE /students/{id}/courses/{courseID} requests.
func (h *StudentHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	courseID, ok := parseIDParam(w, r, "courseID")
	if !ok {
		return
	}

	if err := h.students.Unenroll(r.Context(), studentID, courseID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Unenrolled")
}
