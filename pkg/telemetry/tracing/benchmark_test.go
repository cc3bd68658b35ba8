package tracing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/config"
)

// BenchmarkTracer_StartDisabled measures span creation on a disabled
// tracer. This is the cost every call site pays when tracing is off.
// Target: <1µs per span
func BenchmarkTracer_StartDisabled(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "bench",
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "resolve_style")
		span.End()
	}
}

// BenchmarkTracer_StartSampledOut measures span creation on an enabled
// tracer whose sampler rejects everything. Unsampled spans never reach
// the batch processor.
// Target: <2µs per span
func BenchmarkTracer_StartSampledOut(b *testing.B) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     "never",
		Endpoint:    "localhost:4317",
		ServiceName: "bench",
		OTLP: config.OTLPConfig{
			Insecure: true,
			Timeout:  10 * time.Second,
		},
	})
	if err != nil {
		b.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tracer.Start(ctx, "resolve_style")
		span.End()
	}
}

// BenchmarkSetResolveAttributes measures attribute helpers against a
// non-recording span, the common case in production at low sample
// ratios.
// Target: <100ns per call
func BenchmarkSetResolveAttributes(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SetResolveAttributes(ctx, "dropdown", "resolved", false)
	}
}

// BenchmarkAttributeBuilder measures fluent attribute accumulation.
// Target: <1µs per build
func BenchmarkAttributeBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewAttributeBuilder().
			WithStyle("a1b2c3d4", "Tone", "Formal").
			WithVariant("concise").
			WithResolve("dropdown", "resolved", false).
			Build()
	}
}

// BenchmarkValidateTraceParent measures traceparent validation.
// Target: <500ns per header
func BenchmarkValidateTraceParent(b *testing.B) {
	header := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ValidateTraceParent(header); err != nil {
			b.Fatalf("ValidateTraceParent() error = %v", err)
		}
	}
}

// BenchmarkParseTraceParent measures traceparent parsing.
// Target: <1µs per header
func BenchmarkParseTraceParent(b *testing.B) {
	header := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseTraceParent(header); err != nil {
			b.Fatalf("ParseTraceParent() error = %v", err)
		}
	}
}

// BenchmarkInject measures writing trace context into HTTP headers.
// Target: <2µs per request
func BenchmarkInject(b *testing.B) {
	setupPropagator(b)
	ctx := sampledContext(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		headers := http.Header{}
		Inject(ctx, headers)
	}
}

// BenchmarkExtract measures reading trace context from HTTP headers.
// Target: <2µs per request
func BenchmarkExtract(b *testing.B) {
	setupPropagator(b)
	headers := http.Header{}
	Inject(sampledContext(b), headers)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Extract(context.Background(), headers)
	}
}
