package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/schoolsync/roster-api/internal/api/shared"
	"github.com/schoolsync/roster-api/internal/domain"
	"github.com/schoolsync/roster-api/internal/platform/logger"
	"github.com/schoolsync/roster-api/internal/query"
	"github.com/schoolsync/roster-api/internal/store"
)

// CourseHandler handles course-related HTTP requests.
type CourseHandler struct {
	courses store.CourseStore
	planner *query.Builder
	schema  *query.RelationSchema
	logger  *slog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(
	courses store.CourseStore,
	planner *query.Builder,
	logger *slog.Logger,
) *CourseHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CourseHandler")
	}

	return &CourseHandler{
		courses: courses,
		planner: planner,
		schema:  query.CourseSchema(),
		logger:  logger.With(slog.String("component", "course_handler")),
	}
}

// Create handles POST /courses requests.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	teacherID, ok := parseOptionalTeacherID(w, r, req.TeacherID)
	if !ok {
		return
	}

	course, err := domain.NewCourse(req.Name, teacherID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid entity data", err)
		return
	}

	if err := h.courses.Create(r.Context(), course); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, course)
}

// List handles GET /courses requests.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	plan, page, err := h.planner.ForList(queryParams(r), h.schema)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	courses, total, err := h.courses.List(r.Context(), plan)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if courses == nil {
		courses = []*domain.Course{}
	}

	log.Debug("listed courses",
		slog.Int("total", total),
		slog.Int("page", page),
		slog.Int("limit", plan.Limit))

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{
		Meta: newListMeta(total, page, plan.Limit),
		Data: courses,
	})
}

// GetByID handles GET /courses/{id} requests.
func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	includes := h.planner.ForSingle(queryParams(r), h.schema)

	course, err := h.courses.GetByID(r.Context(), id, includes)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, course)
}

// Update handles PUT /courses/{id} requests with partial bodies.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	teacherID, ok := parseOptionalTeacherID(w, r, req.TeacherID)
	if !ok {
		return
	}

	course, err := h.courses.Update(r.Context(), id, store.CourseUpdate{
		Name:      req.Name,
		TeacherID: teacherID,
	})
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, course)
}

// Delete handles DELETE /courses/{id} requests.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.courses.Delete(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Deleted")
}

// parseOptionalTeacherID parses the optional teacher reference from a course
// body. On failure it writes a 400 response and returns false.
func parseOptionalTeacherID(
	w http.ResponseWriter,
	r *http.Request,
	raw *string,
) (*uuid.UUID, bool) {
	if raw == nil {
		return nil, true
	}

	id, err := uuid.Parse(*raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid teacher_id format")
		return nil, false
	}

	return &id, true
}
