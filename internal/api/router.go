package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Routes are mounted under the configured version prefix (e.g. "/v1"), which
// deployed classroom devices have baked into their firmware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	prefix := "/" + s.cfg.Version
	r.Route(prefix, func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Login (no auth required)
		r.Post("/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", s.handleListTags)
				r.Post("/", s.handleCreateTags)
				r.Get("/{id}", s.handleGetTag)
				r.Delete("/{id}", s.handleDeleteTag)
			})

			r.Route("/teachers", func(r chi.Router) {
				r.Get("/", s.handleListTeachers)
				r.Post("/", s.handleCreateTeachers)
				r.Get("/{id}", s.handleGetTeacher)
				r.Delete("/{id}", s.handleDeleteTeacher)
			})

			r.Route("/courses", func(r chi.Router) {
				r.Get("/", s.handleListCourses)
				r.Post("/", s.handleCreateCourses)
				r.Get("/{id}", s.handleGetCourse)
				r.Delete("/{id}", s.handleDeleteCourse)
			})

			r.Route("/readings", func(r chi.Router) {
				r.Get("/", s.handleListReadings)
				r.Post("/", s.handleCreateReadings)
				r.Delete("/", s.handleDeleteReadings)
				r.Get("/{id}", s.handleGetReading)
				r.Delete("/{id}", s.handleDeleteReading)
			})

			// User management (administrators only)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUsers)
				r.Get("/{id}", s.handleGetUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			// Username directory, available to every authenticated user
			r.Get("/usernames", s.handleListUsernames)

			// Request log (administrators only)
			r.Get("/log", s.handleListLog)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
