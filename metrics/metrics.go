// Package metrics exposes Prometheus counters/gauges/histograms for the
// tick loop and AI orchestrator, grounded on
// bayleafwalker-bindery-core/controllers/metrics.go's package-level
// prometheus.New*+MustRegister-in-init() shape (no teacher or original
// equivalent; ambient observability concern carried from the pack).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submarine_tick_duration_seconds",
			Help:    "Wall-clock time to execute one tick body.",
			Buckets: prometheus.DefBuckets,
		},
	)

	AIJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submarine_ai_job_duration_seconds",
			Help:    "Time from AI job launch to its result landing in resultsCh.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // "fleet" | "ship"
	)

	AIJobErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submarine_ai_job_errors_total",
			Help: "Count of AI orchestrator jobs that errored (transport/parse/timeout).",
		},
		[]string{"kind"},
	)

	AIJobFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submarine_ai_job_fallbacks_total",
			Help: "Count of ship AI jobs that fell back to intent-derived navigation.",
		},
		[]string{"ship_id"},
	)

	CommandQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "submarine_command_queue_depth",
			Help: "Pending commands awaiting the next tick's drain.",
		},
	)

	TelemetryBroadcastQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "submarine_telemetry_broadcast_queue_depth",
			Help: "Pending frames awaiting hub broadcast.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TickDuration,
		AIJobDuration,
		AIJobErrorsTotal,
		AIJobFallbacksTotal,
		CommandQueueDepth,
		TelemetryBroadcastQueueDepth,
	)
}

// Handler returns the HTTP handler to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
