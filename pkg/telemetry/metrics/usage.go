package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UsageMetrics tracks metrics for the usage recording pipeline: the
// async event recorder, the rollup scheduler, and retention pruning.
//
// Metrics:
//   - mercator_ganymede_usage_events_total: Usage events by status
//   - mercator_ganymede_usage_queue_depth: Async recorder queue depth
//   - mercator_ganymede_usage_rollup_runs_total: Rollup runs by status
//   - mercator_ganymede_usage_rollup_duration_seconds: Rollup run duration
//   - mercator_ganymede_usage_rollup_rows_total: Stat rows written by rollups
//   - mercator_ganymede_usage_prune_runs_total: Retention prune runs by status
//   - mercator_ganymede_usage_prune_rows_total: Event rows deleted by pruning
//   - mercator_ganymede_usage_store_size_bytes: On-disk store size
type UsageMetrics struct {
	// Event counter (recorded / dropped / failed)
	eventsTotal *prometheus.CounterVec

	// Async recorder queue depth
	queueDepth prometheus.Gauge

	// Rollup run tracking
	rollupRunsTotal *prometheus.CounterVec
	rollupDuration  prometheus.Histogram
	rollupRowsTotal prometheus.Counter

	// Retention prune tracking
	pruneRunsTotal *prometheus.CounterVec
	pruneRowsTotal prometheus.Counter

	// On-disk store sizes
	storeSize *prometheus.GaugeVec
}

// NewUsageMetrics creates and registers usage metrics with the provided
// registry.
func NewUsageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UsageMetrics {
	um := &UsageMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_events_total",
				Help:      "Total usage events by status (recorded, dropped, failed)",
			},
			[]string{"status"},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_queue_depth",
				Help:      "Number of usage events waiting in the async recorder queue",
			},
		),

		rollupRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_rollup_runs_total",
				Help:      "Total rollup runs by status",
			},
			[]string{"status"},
		),

		rollupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_rollup_duration_seconds",
				Help:      "Duration of rollup runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8), // 5ms to 81s
			},
		),

		rollupRowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_rollup_rows_total",
				Help:      "Total stat rows written by rollup runs",
			},
		),

		pruneRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_prune_runs_total",
				Help:      "Total retention prune runs by status",
			},
			[]string{"status"},
		),

		pruneRowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_prune_rows_total",
				Help:      "Total event rows deleted by retention pruning",
			},
		),

		storeSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "usage_store_size_bytes",
				Help:      "On-disk size of the usage stores in bytes",
			},
			[]string{"store"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		um.eventsTotal,
		um.queueDepth,
		um.rollupRunsTotal,
		um.rollupDuration,
		um.rollupRowsTotal,
		um.pruneRunsTotal,
		um.pruneRowsTotal,
		um.storeSize,
	)

	return um
}

// RecordEvent records the fate of one usage event.
func (um *UsageMetrics) RecordEvent(status string) {
	um.eventsTotal.WithLabelValues(status).Inc()
}

// UpdateQueueDepth updates the async recorder queue depth gauge.
func (um *UsageMetrics) UpdateQueueDepth(depth int) {
	um.queueDepth.Set(float64(depth))
}

// RecordRollup records a completed rollup run.
func (um *UsageMetrics) RecordRollup(status string, duration time.Duration, rows int) {
	um.rollupRunsTotal.WithLabelValues(status).Inc()
	um.rollupDuration.Observe(duration.Seconds())
	if rows > 0 {
		um.rollupRowsTotal.Add(float64(rows))
	}
}

// RecordPrune records a completed retention prune run.
func (um *UsageMetrics) RecordPrune(status string, rowsDeleted int64) {
	um.pruneRunsTotal.WithLabelValues(status).Inc()
	if rowsDeleted > 0 {
		um.pruneRowsTotal.Add(float64(rowsDeleted))
	}
}

// UpdateStoreSize updates the on-disk size gauge for a usage store.
func (um *UsageMetrics) UpdateStoreSize(store string, sizeBytes int64) {
	um.storeSize.WithLabelValues(store).Set(float64(sizeBytes))
}
