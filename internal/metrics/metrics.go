// Package metrics provides Prometheus metrics collection for the console API.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics, stored in atomic pointers for lock-free nil checks on
	// the request hot path.
	requestsTotal      atomic.Pointer[prometheus.CounterVec]
	requestDuration    atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal  atomic.Pointer[prometheus.CounterVec]
	keyOperationsTotal atomic.Pointer[prometheus.CounterVec]
)

// Init registers all metrics with the provided registry. Call once at startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datacanvas",
			Subsystem: "console",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the console API",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "datacanvas",
			Subsystem: "console",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datacanvas",
			Subsystem: "console",
			Name:      "auth_failures_total",
			Help:      "Total number of session authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	keyOperationsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datacanvas",
			Subsystem: "console",
			Name:      "access_key_operations_total",
			Help:      "Total number of access key lifecycle operations",
		},
		[]string{"operation"},
	)
	if err := reg.Register(keyOperationsTotalVec); err != nil {
		return fmt.Errorf("failed to register keyOperationsTotal: %w", err)
	}

	infoGaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "datacanvas",
			Subsystem: "console",
			Name:      "info",
			Help:      "Console API version information",
		},
		[]string{"version"},
	)
	infoGaugeInstance := infoGaugeVec.WithLabelValues("1.0.0")
	if err := reg.Register(infoGaugeVec); err != nil {
		return fmt.Errorf("failed to register infoGauge: %w", err)
	}
	infoGaugeInstance.Set(1)

	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	keyOperationsTotal.Store(keyOperationsTotalVec)

	return nil
}

// RecordRequest increments the request counter. The path should be normalized
// (e.g. "/access-keys/:id" instead of "/access-keys/123").
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records request latency in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter.
// Common reasons: "missing_token", "invalid_token", "expired_token".
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordKeyOperation increments the access key operations counter.
// Operations: "create", "update", "renew", "delete".
func RecordKeyOperation(operation string) {
	if counter := keyOperationsTotal.Load(); counter != nil {
		counter.WithLabelValues(operation).Inc()
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GetMetricsText returns the Prometheus text-format output from a registry.
// Useful for testing and debugging.
func GetMetricsText(reg prometheus.Gatherer) (string, error) {
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metrics output: %w", err)
	}

	return string(body), nil
}
