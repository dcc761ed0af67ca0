// Package metrics exposes the Prometheus collectors and HTTP middleware.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by method, path pattern and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed, by method, path and status code.",
	}, []string{"method", "path", "status"})

	// RequestDuration observes request latency by path pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// CopilotQueries counts copilot queries by matched intent.
	CopilotQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_queries_total",
		Help: "Copilot queries executed, by intent.",
	}, []string{"intent"})

	// TrainingRuns counts training runs by outcome.
	TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_training_runs_total",
		Help: "Model training runs, by outcome.",
	}, []string{"outcome"})

	// TrainingDuration observes how long training runs take.
	TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "copilot_training_duration_seconds",
		Help:    "Wall time of model training runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records a counter and latency observation per request. The path
// label uses the routing pattern, not the raw URL, to bound cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
