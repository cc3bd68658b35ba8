package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolutionMetrics tracks metrics related to style resolution.
//
// Metrics:
//   - mercator_ganymede_resolutions_total: Resolutions by style, outcome, source
//   - mercator_ganymede_resolution_duration_seconds: Resolution duration
//   - mercator_ganymede_variant_fallbacks_total: Missing-variant fallbacks by requested name
type ResolutionMetrics struct {
	// Resolution counter
	resolutionsTotal *prometheus.CounterVec

	// Resolution duration histogram
	resolutionDuration *prometheus.HistogramVec

	// Variant fallback counter
	variantFallbacksTotal *prometheus.CounterVec
}

// NewResolutionMetrics creates and registers resolution metrics with the
// provided registry.
func NewResolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolutionMetrics {
	rm := &ResolutionMetrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolutions_total",
				Help:      "Total style resolutions by style, outcome, and selector source",
			},
			[]string{"style_id", "outcome", "source"},
		),

		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of style resolutions in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		variantFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "variant_fallbacks_total",
				Help:      "Total resolutions that fell back to the default template because the requested variant was not registered",
			},
			[]string{"requested"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.resolutionsTotal,
		rm.resolutionDuration,
		rm.variantFallbacksTotal,
	)

	return rm
}

// RecordResolution records one style resolution.
//
// Outcomes:
//   - "resolved": A template was produced
//   - "not_found": The requested style is not in the catalog
//   - "template_unavailable": Style known but no usable template
//   - "pass_through": Styling disabled for the request
//   - "error": Resolution failed for an internal reason
func (rm *ResolutionMetrics) RecordResolution(styleID, outcome, source string, duration time.Duration) {
	rm.resolutionsTotal.WithLabelValues(styleID, outcome, source).Inc()
	rm.resolutionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordVariantFallback records a resolution that used the default
// template because the requested variant was not registered.
func (rm *ResolutionMetrics) RecordVariantFallback(requested string) {
	rm.variantFallbacksTotal.WithLabelValues(requested).Inc()
}
