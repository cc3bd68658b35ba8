package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks metrics related to catalog builds and pack
// synchronization.
//
// Metrics:
//   - mercator_ganymede_catalog_loads_total: Catalog build count by trigger, status
//   - mercator_ganymede_catalog_load_duration_seconds: Catalog build duration
//   - mercator_ganymede_catalog_styles: Styles in the current catalog
//   - mercator_ganymede_catalog_packs: Pack files in the current catalog
//   - mercator_ganymede_catalog_categories: Distinct categories in the current catalog
//   - mercator_ganymede_catalog_version: Monotonic catalog build version
//   - mercator_ganymede_catalog_diagnostics_total: Diagnostics by severity and code
//   - mercator_ganymede_git_syncs_total: Git sync attempts by status
//   - mercator_ganymede_git_sync_duration_seconds: Git sync duration
type CatalogMetrics struct {
	// Catalog build counter
	loadsTotal *prometheus.CounterVec

	// Catalog build duration histogram
	loadDuration *prometheus.HistogramVec

	// Current catalog shape
	styles     prometheus.Gauge
	packs      prometheus.Gauge
	categories prometheus.Gauge
	version    prometheus.Gauge

	// Diagnostic counter
	diagnosticsTotal *prometheus.CounterVec

	// Git sync tracking
	gitSyncsTotal   *prometheus.CounterVec
	gitSyncDuration prometheus.Histogram
}

// NewCatalogMetrics creates and registers catalog metrics with the
// provided registry.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_loads_total",
				Help:      "Total number of catalog builds by trigger and status",
			},
			[]string{"trigger", "status"},
		),

		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_load_duration_seconds",
				Help:      "Duration of catalog builds in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to 16s
			},
			[]string{"trigger"},
		),

		styles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_styles",
				Help:      "Number of styles in the current catalog",
			},
		),

		packs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_packs",
				Help:      "Number of pack files in the current catalog",
			},
		),

		categories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_categories",
				Help:      "Number of distinct categories in the current catalog",
			},
		),

		version: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_version",
				Help:      "Monotonic version of the current catalog build",
			},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_diagnostics_total",
				Help:      "Total catalog diagnostics by severity and code",
			},
			[]string{"severity", "code"},
		),

		gitSyncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "git_syncs_total",
				Help:      "Total git pack sync attempts by status",
			},
			[]string{"status"},
		),

		gitSyncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "git_sync_duration_seconds",
				Help:      "Duration of git pack syncs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 3, 8), // 50ms to 109s
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		cm.loadsTotal,
		cm.loadDuration,
		cm.styles,
		cm.packs,
		cm.categories,
		cm.version,
		cm.diagnosticsTotal,
		cm.gitSyncsTotal,
		cm.gitSyncDuration,
	)

	return cm
}

// RecordLoad records a catalog build.
//
// Parameters:
//   - trigger: What started the load ("startup", "reload", "watch", "git")
//   - status: "success" or "error"
//   - duration: Build duration
func (cm *CatalogMetrics) RecordLoad(trigger, status string, duration time.Duration) {
	cm.loadsTotal.WithLabelValues(trigger, status).Inc()
	cm.loadDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// UpdateInfo updates the gauges describing the current catalog.
func (cm *CatalogMetrics) UpdateInfo(version int64, styles, packs, categories int) {
	cm.version.Set(float64(version))
	cm.styles.Set(float64(styles))
	cm.packs.Set(float64(packs))
	cm.categories.Set(float64(categories))
}

// RecordDiagnostic records one diagnostic emission.
//
// Common codes:
//   - "duplicate_id": Same style ID appeared in multiple packs
//   - "parse_error": Pack file failed to parse
//   - "invalid_style": Style entry missing required fields
//   - "oversize_file": Pack file exceeded the size limit
func (cm *CatalogMetrics) RecordDiagnostic(severity, code string) {
	cm.diagnosticsTotal.WithLabelValues(severity, code).Inc()
}

// RecordGitSync records a git pack sync attempt.
//
// Parameters:
//   - status: "success", "error", or "no_change"
//   - duration: Sync duration including fetch
func (cm *CatalogMetrics) RecordGitSync(status string, duration time.Duration) {
	cm.gitSyncsTotal.WithLabelValues(status).Inc()
	cm.gitSyncDuration.Observe(duration.Seconds())
}
