// Package core provides the API chassis: a chi router with request
// identification, structured request logging, panic recovery, and the
// response envelope shared by every handler.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"forecastgen/internal/config"
	"forecastgen/internal/curve"
	"forecastgen/internal/forecasts"
	"forecastgen/internal/metrics"
	"forecastgen/internal/notify"
)

// Server bundles the dependencies the HTTP handlers need. Route mounting
// is separate from construction so tests can register subsets.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Forecasts *forecasts.Service
	Modifier  *curve.Modifier
	Runs      *RunStore
	Metrics   *metrics.Metrics

	// Notifications receives platform operation completions over the
	// webhook route. Nil in local mode, where the stub notification
	// service resolves operations immediately.
	Notifications *notify.Hub

	router *chi.Mux
}

// NewServer initializes the chassis with fail-fast dependency checks.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	svc *forecasts.Service,
	m *metrics.Metrics,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("forecast service must not be nil")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		Forecasts: svc,
		Modifier:  curve.NewModifier(logger),
		Runs:      NewRunStore(),
		Metrics:   m,
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources. Runs live in memory, so there is
// nothing to flush beyond logging the event.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown complete")
	return nil
}
