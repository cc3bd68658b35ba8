package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testCollector() (*metrics.Collector, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "server",
		RequestDurationBuckets: []float64{0.001, 0.01, 0.1},
	}, registry)
	return collector, registry
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("records completed requests", func(t *testing.T) {
		collector, registry := testCollector()
		handler := MetricsMiddleware(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("missing"))
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/styles/unknown", nil))

		count, err := testutil.GatherAndCount(registry,
			"test_server_requests_total",
			"test_server_request_duration_seconds",
		)
		if err != nil {
			t.Fatalf("GatherAndCount() error = %v", err)
		}
		if count == 0 {
			t.Error("no request metrics recorded")
		}
	})

	t.Run("in-flight gauge returns to zero", func(t *testing.T) {
		collector, registry := testCollector()
		entered := make(chan struct{})
		release := make(chan struct{})
		handler := MetricsMiddleware(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
		}))

		done := make(chan struct{})
		go func() {
			defer close(done)
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/catalog", nil))
		}()

		<-entered
		if v := gaugeValue(t, registry, "test_server_requests_in_flight"); v != 1 {
			t.Errorf("in-flight during request = %v, want 1", v)
		}

		close(release)
		<-done
		if v := gaugeValue(t, registry, "test_server_requests_in_flight"); v != 0 {
			t.Errorf("in-flight after request = %v, want 0", v)
		}
	})

	t.Run("nil collector is a passthrough", func(t *testing.T) {
		handler := MetricsMiddleware(nil)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func gaugeValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/v1/resolve", "/v1/resolve"},
		{"/v1/styles", "/v1/styles"},
		{"/v1/styles/cinematic", "/v1/styles/{id}"},
		{"/v1/styles/../../etc/passwd", "/v1/styles/{id}"},
		{"/v1/catalog", "/v1/catalog"},
		{"/v1/catalog/reload", "/v1/catalog/reload"},
		{"/health/live", "/health/live"},
		{"/health/ready", "/health/ready"},
		{"/metrics", "/metrics"},
		{"/version", "/version"},
		{"/", "other"},
		{"/favicon.ico", "other"},
		{"/v2/resolve", "other"},
	}

	for _, tt := range tests {
		if got := routeLabel(tt.path); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
