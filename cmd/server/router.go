package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schoolsync/roster-api/internal/api"
	apiMiddleware "github.com/schoolsync/roster-api/internal/api/middleware"
	"github.com/schoolsync/roster-api/internal/api/shared"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	studentHandler := api.NewStudentHandler(app.students, app.planner, app.logger)
	teacherHandler := api.NewTeacherHandler(app.teachers, app.planner, app.logger)
	courseHandler := api.NewCourseHandler(app.courses, app.planner, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Post("/", studentHandler.Create)
			r.Get("/", studentHandler.List)
			r.Get("/{id}", studentHandler.GetByID)
			r.Put("/{id}", studentHandler.Update)
			r.Delete("/{id}", studentHandler.Delete)

			// Enrollment management
			r.Post("/{id}/courses/{courseID}", studentHandler.Enroll)
			r.Delete("/{id}/courses/{courseID}", studentHandler.Unenroll)
		})

		r.Route("/teachers", func(r chi.Router) {
			r.Post("/", teacherHandler.Create)
			r.Get("/", teacherHandler.List)
			r.Get("/{id}", teacherHandler.GetByID)
			r.Put("/{id}", teacherHandler.Update)
			r.Delete("/{id}", teacherHandler.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Post("/", courseHandler.Create)
			r.Get("/", courseHandler.List)
			r.Get("/{id}", courseHandler.GetByID)
			r.Put("/{id}", courseHandler.Update)
			r.Delete("/{id}", courseHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
