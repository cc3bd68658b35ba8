// Package tracing provides distributed tracing for ganymede using
// OpenTelemetry with OTLP gRPC export.
//
// # Overview
//
// The package wraps the OpenTelemetry SDK behind a single Tracer type
// configured from config.TracingConfig. When tracing is disabled the
// Tracer is a no-op: spans are still created and context still flows,
// but nothing is recorded or exported, and the overhead is a few
// nanoseconds per call. Call sites therefore never branch on whether
// tracing is on.
//
// # Usage
//
// Create the tracer once at startup and shut it down on exit so
// buffered spans are flushed:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "resolve_style")
//	defer span.End()
//
//	tracing.SetStyleAttributes(ctx, style.ID, style.Category, style.Name)
//	tracing.SetResolveAttributes(ctx, "dropdown", "resolved", false)
//
// Spans carry service-specific attributes under the mercator.*
// namespace: style identity, resolution outcome, catalog version, and
// the request ID. The AttributeBuilder collects attributes across
// several steps before applying them in one call:
//
//	attrs := tracing.NewAttributeBuilder().
//		WithStyle(id, category, name).
//		WithVariant(req.Variant).
//		WithResolve(source, outcome, fellBack)
//	attrs.Apply(ctx)
//
// # Sampling
//
// Three strategies are available via the sampler configuration key:
// "always", "never", and "ratio" (the default, with sample_ratio
// controlling the fraction). All strategies are parent-based: when a
// request arrives already carrying a sampling decision, that decision
// is honored so traces stay complete across service boundaries.
//
// # Propagation
//
// Trace context crosses process boundaries as W3C traceparent
// headers. HTTPMiddleware extracts incoming context and echoes the
// trace and span IDs on responses as X-Trace-ID and X-Span-ID.
// Extract, Inject, and their map variants cover manual propagation,
// and ParseTraceParent validates and decodes raw header values.
//
// # Export
//
// Spans export over OTLP gRPC to the configured endpoint (default
// localhost:4317). The connection is established lazily, so the
// service starts cleanly even when the collector is down; spans
// buffer in the batch processor and export once the collector is
// reachable or are dropped when the queue fills.
package tracing
