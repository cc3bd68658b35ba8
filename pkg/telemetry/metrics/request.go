package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics related to HTTP request handling.
//
// Metrics:
//   - mercator_ganymede_requests_total: Total request count by method, route, status
//   - mercator_ganymede_request_duration_seconds: Request duration histogram
//   - mercator_ganymede_request_size_bytes: Response size histogram
//   - mercator_ganymede_requests_in_flight: Currently active requests
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Response size in bytes
	sizeBytes *prometheus.HistogramVec

	// Currently active requests
	inFlight prometheus.Gauge
}

// NewRequestMetrics creates and registers request metrics with the
// provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method", "route"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_size_bytes",
				Help:      "Size of request/response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B to 4MB
			},
			[]string{"route", "direction"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.sizeBytes,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records metrics for a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - route: Route pattern ("/v1/resolve", "/v1/styles")
//   - status: HTTP status code ("200", "404")
//   - duration: Request duration
func (rm *RequestMetrics) RecordRequest(method, route, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, route, status).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSize records the size of a request or response body.
//
// Parameters:
//   - route: Route pattern
//   - direction: "request" or "response"
//   - sizeBytes: Size in bytes
func (rm *RequestMetrics) RecordSize(route, direction string, sizeBytes int) {
	if sizeBytes > 0 {
		rm.sizeBytes.WithLabelValues(route, direction).Observe(float64(sizeBytes))
	}
}

// IncInFlight increments the in-flight request gauge.
func (rm *RequestMetrics) IncInFlight() {
	rm.inFlight.Inc()
}

// DecInFlight decrements the in-flight request gauge.
func (rm *RequestMetrics) DecInFlight() {
	rm.inFlight.Dec()
}
