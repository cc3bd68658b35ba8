package metrics

import (
	"fmt"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the
// style service. It manages metric registration and provides a unified
// interface for recording metrics across all components.
//
// The collector is designed for minimal overhead on the resolve path:
//   - Pre-allocated metric instances
//   - Cardinality limits on user-supplied labels (style IDs arrive from
//     override fields and cannot be trusted to stay bounded)
//   - Histogram buckets tuned for in-memory lookup latencies
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// HTTP request metrics
	requestMetrics *RequestMetrics

	// Catalog load and sync metrics
	catalogMetrics *CatalogMetrics

	// Style resolution metrics
	resolutionMetrics *ResolutionMetrics

	// Usage recording and rollup metrics
	usageMetrics *UsageMetrics

	// Cardinality tracking for user-supplied labels
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "mercator",
//		Subsystem: "ganymede",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "mercator"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "ganymede"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Resolution is an in-memory lookup; most requests land well
		// under a millisecond.
		cfg.RequestDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000), // Max 10K unique label sets
	}

	// Initialize metric subsystems
	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.catalogMetrics = NewCatalogMetrics(cfg, registry)
	c.resolutionMetrics = NewResolutionMetrics(cfg, registry)
	c.usageMetrics = NewUsageMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed HTTP request.
//
// Parameters:
//   - method: HTTP method ("GET", "POST")
//   - route: Route pattern, not the raw path ("/v1/resolve")
//   - status: HTTP status code class ("200", "404", "500")
//   - duration: Total request duration
//   - responseBytes: Response body size
func (c *Collector) RecordRequest(method, route, status string, duration time.Duration, responseBytes int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(method, route, status, duration)
	c.requestMetrics.RecordSize(route, "response", responseBytes)
}

// IncInFlight increments the in-flight request gauge.
func (c *Collector) IncInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.IncInFlight()
}

// DecInFlight decrements the in-flight request gauge.
func (c *Collector) DecInFlight() {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.DecInFlight()
}

// RecordResolution records metrics for a style resolution.
//
// The styleID label is guarded by the cardinality limiter: override
// requests carry arbitrary IDs, and an unbounded label set would
// eventually exhaust scrape memory. Past the limit, new IDs aggregate
// into "other".
//
// Parameters:
//   - styleID: Resolved or requested style identifier
//   - outcome: Resolution outcome ("resolved", "not_found", "template_unavailable", "pass_through")
//   - source: Where the style selector came from ("dropdown", "override", "none")
//   - duration: Resolution duration
func (c *Collector) RecordResolution(styleID, outcome, source string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("resolution:%s", styleID)
	if !c.cardinalityLimiter.Allow(labelSet) {
		styleID = "other"
	}

	c.resolutionMetrics.RecordResolution(styleID, outcome, source, duration)
}

// RecordVariantFallback records that a requested variant was missing and
// the default template was used instead.
//
// Parameters:
//   - requested: The variant name that was requested but not registered
func (c *Collector) RecordVariantFallback(requested string) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("variant:%s", requested)
	if !c.cardinalityLimiter.Allow(labelSet) {
		requested = "other"
	}

	c.resolutionMetrics.RecordVariantFallback(requested)
}

// RecordCatalogLoad records metrics for a catalog build.
//
// Parameters:
//   - trigger: What started the load ("startup", "reload", "watch", "git")
//   - status: Load status ("success", "error")
//   - duration: Load duration
func (c *Collector) RecordCatalogLoad(trigger, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.RecordLoad(trigger, status, duration)
}

// UpdateCatalogInfo updates the gauges describing the current catalog.
//
// Parameters:
//   - version: Monotonic catalog build version
//   - styles: Number of indexed styles
//   - packs: Number of loaded pack files
//   - categories: Number of distinct categories
func (c *Collector) UpdateCatalogInfo(version int64, styles, packs, categories int) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.UpdateInfo(version, styles, packs, categories)
}

// RecordDiagnostic records a catalog diagnostic emission.
//
// Parameters:
//   - severity: Diagnostic severity ("warning", "error")
//   - code: Diagnostic code ("duplicate_id", "parse_error", "invalid_style")
func (c *Collector) RecordDiagnostic(severity, code string) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.RecordDiagnostic(severity, code)
}

// RecordGitSync records metrics for a git pack sync attempt.
//
// Parameters:
//   - status: Sync status ("success", "error", "no_change")
//   - duration: Sync duration including fetch
func (c *Collector) RecordGitSync(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.catalogMetrics.RecordGitSync(status, duration)
}

// RecordUsageEvent records the fate of one usage event.
//
// Parameters:
//   - status: Event status ("recorded", "dropped", "failed")
func (c *Collector) RecordUsageEvent(status string) {
	if !c.config.Enabled {
		return
	}

	c.usageMetrics.RecordEvent(status)
}

// UpdateUsageQueueDepth updates the async recorder queue depth gauge.
func (c *Collector) UpdateUsageQueueDepth(depth int) {
	if !c.config.Enabled {
		return
	}

	c.usageMetrics.UpdateQueueDepth(depth)
}

// RecordRollup records metrics for a completed rollup run.
//
// Parameters:
//   - status: Run status ("success", "error")
//   - duration: Run duration
//   - rows: Number of stat rows written
func (c *Collector) RecordRollup(status string, duration time.Duration, rows int) {
	if !c.config.Enabled {
		return
	}

	c.usageMetrics.RecordRollup(status, duration, rows)
}

// RecordPrune records metrics for a completed retention prune run.
//
// Parameters:
//   - status: Run status ("success", "error")
//   - rowsDeleted: Number of event rows removed
func (c *Collector) RecordPrune(status string, rowsDeleted int64) {
	if !c.config.Enabled {
		return
	}

	c.usageMetrics.RecordPrune(status, rowsDeleted)
}

// UpdateStoreSize updates the on-disk size gauge for a usage store.
//
// Parameters:
//   - store: Store name ("events", "stats")
//   - sizeBytes: Current database file size
func (c *Collector) UpdateStoreSize(store string, sizeBytes int64) {
	if !c.config.Enabled {
		return
	}

	c.usageMetrics.UpdateStoreSize(store, sizeBytes)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the
// specified maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
