package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the global middleware chain and all endpoints.
//
// Middleware order matters: Recoverer outermost so every panic is caught,
// RequestID before the logger so log lines carry the correlation ID, and
// metrics innermost so the recorded route pattern is resolved.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	s.router.Use(s.MetricsMiddleware)

	s.router.Get("/health", s.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.Notifications != nil {
			r.Post("/notifications/operations", s.HandleOperationNotification)
		}
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.HandleCreateRun)
			r.Get("/", s.HandleListRuns)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.HandleGetRun)
				r.Get("/groups/{groupID}", s.HandleGetRunGroup)
				r.Post("/modifications", s.HandleModifyRun)
				r.Post("/import", s.HandleImportRun)
			})
		})
	})
}
