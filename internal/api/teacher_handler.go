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

// TeacherHandler handles teacher-related HTTP requests.
type TeacherHandler struct {
	teachers store.TeacherStore
	planner  *query.Builder
	schema   *query.RelationSchema
	logger   *slog.Logger
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(
	teachers store.TeacherStore,
	planner *query.Builder,
	logger *slog.Logger,
) *TeacherHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TeacherHandler")
	}

	return &TeacherHandler{
		teachers: teachers,
		planner:  planner,
		schema:   query.TeacherSchema(),
		logger:   logger.With(slog.String("component", "teacher_handler")),
	}
}

// Create handles POST /teachers requests.
func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeacherRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	teacher, err := domain.NewTeacher(req.Name, req.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid entity data", err)
		return
	}

	if err := h.teachers.Create(r.Context(), teacher); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, teacher)
}

// List handles GET /teachers requests.
func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	plan, page, err := h.planner.ForList(queryParams(r), h.schema)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	teachers, total, err := h.teachers.List(r.Context(), plan)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if teachers == nil {
		teachers = []*domain.Teacher{}
	}

	log.Debug("listed teachers",
		slog.Int("total", total),
		slog.Int("page", page),
		slog.Int("limit", plan.Limit))

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{
		Meta: newListMeta(total, page, plan.Limit),
		Data: teachers,
	})
}

// GetByID handles GET /teachers/{id} requests.
func (h *TeacherHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	includes := h.planner.ForSingle(queryParams(r), h.schema)

	teacher, err := h.teachers.GetByID(r.Context(), id, includes)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, teacher)
}

// Update handles PUT /teachers/{id} requests with partial bodies.
func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTeacherRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	teacher, err := h.teachers.Update(r.Context(), id, store.TeacherUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, teacher)
}

// Delete handles DELETE /teachers/{id} requests.
func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.teachers.Delete(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Deleted")
}
