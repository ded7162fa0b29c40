// Package main is the entry point for the forecastgen API server.
//
// It loads configuration, builds the platform clients (or their local
// stubs), wires the forecast service into the HTTP chassis, and serves
// until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"forecastgen/internal/config"
	"forecastgen/internal/core"
	"forecastgen/internal/external"
	"forecastgen/internal/forecasts"
	"forecastgen/internal/metrics"
	"forecastgen/internal/notify"
	"forecastgen/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main can exit cleanly on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("forecastgen API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	m := metrics.New()

	analytics, wfm, notifications, hub := buildPlatformServices(cfg, logger)

	svc, err := forecasts.NewService(analytics, wfm, notifications, m, logger, types.RealClock{})
	if err != nil {
		return fmt.Errorf("creating forecast service: %w", err)
	}

	srv, err := core.NewServer(cfg, logger, svc, m)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Notifications = hub
	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// buildPlatformServices returns the platform clients, substituting stubs in
// local mode so the service boots without credentials. The notification hub
// is nil in local mode; the stub resolves operations immediately.
func buildPlatformServices(cfg *config.Config, logger *slog.Logger) (
	external.AnalyticsService,
	external.WFMService,
	external.NotificationService,
	*notify.Hub,
) {
	if cfg.IsLocal() {
		logger.Warn("local mode: using stub platform services")
		return external.NewStubAnalyticsService(logger),
			external.NewStubWFMService(logger),
			external.NewStubNotificationService(logger),
			nil
	}

	httpClient := &http.Client{Timeout: cfg.Platform.HTTPTimeout}
	base := external.NewBaseClient(
		httpClient,
		"platform",
		external.DefaultRetryPolicy(),
		cfg.Platform.UserAgent,
	)

	hub := notify.NewHub(logger)
	return external.NewAnalyticsClient(base, cfg.Platform.BaseURL, cfg.Platform.AuthToken),
		external.NewWFMClient(base, cfg.Platform.BaseURL, cfg.Platform.AuthToken, nil),
		hub,
		hub
}

// runHTTPServer serves until SIGINT/SIGTERM, then drains with a deadline.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + strconv.Itoa(cfg.Server.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger builds the application-wide structured logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
