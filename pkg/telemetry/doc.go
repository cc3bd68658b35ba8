// Package telemetry groups the observability subpackages for the
// ganymede style service.
//
// # Components
//
//   - logging: structured slog-based logging with credential redaction
//   - metrics: Prometheus metrics for requests, catalog, resolution, and usage
//   - tracing: OpenTelemetry distributed tracing with OTLP export
//   - health: liveness and readiness probes
//
// Each subpackage is configured from its section of
// config.TelemetryConfig and is independent: the server wires them
// together, and any of them can be disabled without affecting the
// others.
//
// # Usage
//
//	logger, err := logging.New(&logging.Config{
//		Level:  cfg.Telemetry.Logging.Level,
//		Format: cfg.Telemetry.Logging.Format,
//	})
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordResolution(styleID, "resolved", "dropdown", elapsed)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	ctx, span := tracer.Start(ctx, "resolve_style")
//	defer span.End()
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.Register("catalog", catalogCheck)
//
// # Performance
//
// All paths are designed for per-request use:
//
//   - Logging: <10µs per line, <1µs when filtered by level
//   - Metrics: <50µs per update, <100ns when disabled
//   - Tracing: <2µs per unsampled span
//   - Health: liveness never touches components
package telemetry
