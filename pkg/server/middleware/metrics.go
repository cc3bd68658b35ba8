package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// MetricsMiddleware records per-request metrics: the in-flight gauge and
// the request counter, duration histogram, and response size keyed by
// method, route, and status. It sits outermost in the chain so the
// recorded status includes responses written by the recovery and timeout
// layers.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if collector == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			collector.IncInFlight()
			defer collector.DecInFlight()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			collector.RecordRequest(
				r.Method,
				routeLabel(r.URL.Path),
				strconv.Itoa(rw.statusCode),
				time.Since(start),
				rw.bytes,
			)
		})
	}
}

// routeLabel collapses request paths into the fixed route set so the
// route label stays bounded no matter what clients put on the wire.
func routeLabel(path string) string {
	switch path {
	case "/v1/resolve", "/v1/styles", "/v1/catalog", "/v1/catalog/reload",
		"/health/live", "/health/ready", "/metrics", "/version":
		return path
	}
	if strings.HasPrefix(path, "/v1/styles/") {
		return "/v1/styles/{id}"
	}
	return "other"
}
