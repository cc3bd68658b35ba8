// Package metrics provides Prometheus metrics collection for the style
// service.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring HTTP
// request handling, catalog builds, style resolution, and the usage
// recording pipeline. Metric updates are cheap enough to sit on the
// resolve hot path.
//
// # Metrics Categories
//
//   - Request Metrics: Request count, duration, and response sizes
//   - Catalog Metrics: Build count, duration, catalog shape, diagnostics, git syncs
//   - Resolution Metrics: Resolutions by outcome, duration, variant fallbacks
//   - Usage Metrics: Event counts, queue depth, rollup and prune runs, store sizes
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(cfg, registry)
//
//	// Record a resolution
//	collector.RecordResolution(
//		"formal-v2",          // style ID
//		"resolved",           // outcome
//		"dropdown",           // selector source
//		80*time.Microsecond,  // duration
//	)
//
//	// Record a catalog build
//	collector.RecordCatalogLoad("reload", "success", 12*time.Millisecond)
//	collector.UpdateCatalogInfo(3, 42, 4, 7)
//
//	// Record usage pipeline activity
//	collector.RecordUsageEvent("recorded")
//	collector.RecordRollup("success", 40*time.Millisecond, 17)
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard
// Prometheus format:
//
//	# HELP mercator_ganymede_resolutions_total Total style resolutions
//	# TYPE mercator_ganymede_resolutions_total counter
//	mercator_ganymede_resolutions_total{style_id="formal-v2",outcome="resolved",source="dropdown"} 1234
//
// # Cardinality Management
//
// Style IDs reach the service from override fields and are not bounded
// by the catalog, so the collector caps unique label combinations:
//
//   - Maximum 10,000 unique label sets across guarded metrics
//   - Past the limit, new style IDs and variant names aggregate into "other"
package metrics
