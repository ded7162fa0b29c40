// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors on a private registry so tests can build
// isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RunsStarted     prometheus.Counter
	RunsCompleted   *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	GroupsSkipped   *prometheus.CounterVec
	UpstreamCalls   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New builds a metrics set backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "forecastgen_runs_started_total",
			Help: "Forecast runs started.",
		}),
		RunsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forecastgen_runs_completed_total",
			Help: "Forecast runs finished, by outcome.",
		}, []string{"outcome"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecastgen_stage_duration_seconds",
			Help:    "Wall time spent in each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		GroupsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forecastgen_groups_skipped_total",
			Help: "Planning groups excluded from forecasting, by reason.",
		}, []string{"reason"}),
		UpstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forecastgen_upstream_calls_total",
			Help: "Upstream platform calls, by service and result.",
		}, []string{"service", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecastgen_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route, and status.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
