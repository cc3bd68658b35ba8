package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TestNew tests the creation of a new tracer
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config is a disabled tracer",
			config:  nil,
			wantErr: false,
		},
		{
			name: "disabled tracing",
			config: &config.TracingConfig{
				Enabled:     false,
				ServiceName: "test-service",
			},
			wantErr: false,
		},
		{
			name: "enabled with always sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "always",
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				OTLP: config.OTLPConfig{
					Insecure: true,
					Timeout:  10 * time.Second,
				},
			},
			wantErr: false,
		},
		{
			name: "enabled with never sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "never",
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				OTLP: config.OTLPConfig{
					Insecure: true,
					Timeout:  10 * time.Second,
				},
			},
			wantErr: false,
		},
		{
			name: "enabled with ratio sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				OTLP: config.OTLPConfig{
					Insecure: true,
					Timeout:  10 * time.Second,
				},
			},
			wantErr: false,
		},
		{
			name: "enabled with empty sampler defaults to ratio",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "",
				SampleRatio: 0.1,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				OTLP: config.OTLPConfig{
					Insecure: true,
				},
			},
			wantErr: false,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "invalid",
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
			},
			wantErr: true,
		},
		{
			name: "ratio out of range",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "ratio",
				SampleRatio: 1.5,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if tracer == nil {
					t.Error("New() returned nil tracer without error")
					return
				}

				wantEnabled := tt.config != nil && tt.config.Enabled
				if tracer.Enabled() != wantEnabled {
					t.Errorf("tracer.Enabled() = %v, want %v", tracer.Enabled(), wantEnabled)
				}

				// No spans were recorded, so shutdown has nothing
				// to flush and must succeed without a collector.
				if err := tracer.Shutdown(context.Background()); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
			}
		})
	}
}

// TestTracer_Start tests span creation
func TestTracer_Start(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx := context.Background()

	ctx, span := tracer.Start(ctx, "resolve_style")
	if span == nil {
		t.Error("Start() returned nil span")
	}
	span.End()

	ctx, span = tracer.Start(ctx, "resolve_style_with_attrs",
		trace.WithAttributes(
			attribute.String(AttrStyleID, "a1b2c3d4"),
		),
	)
	if span == nil {
		t.Error("Start() returned nil span")
	}
	span.End()

	// Nested spans
	ctx, parentSpan := tracer.Start(ctx, "catalog_load")
	_, childSpan := tracer.Start(ctx, "pack_parse")
	childSpan.End()
	parentSpan.End()
}

// TestTracer_Shutdown tests graceful shutdown
func TestTracer_Shutdown(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{
			name:    "shutdown disabled tracer",
			enabled: false,
		},
		{
			name:    "shutdown enabled tracer",
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.TracingConfig{
				Enabled:     tt.enabled,
				ServiceName: "test-service",
			}

			if tt.enabled {
				// The never sampler keeps spans out of the export
				// queue, so shutdown succeeds without a collector.
				cfg.Sampler = "never"
				cfg.Endpoint = "localhost:4317"
				cfg.OTLP = config.OTLPConfig{
					Insecure: true,
					Timeout:  10 * time.Second,
				}
			}

			tracer, err := New(cfg)
			if err != nil {
				t.Fatalf("Failed to create tracer: %v", err)
			}

			ctx, span := tracer.Start(context.Background(), "resolve_style")
			span.End()

			if err := tracer.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

// TestSpanFromContext tests retrieving span from context
func TestSpanFromContext(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx := context.Background()

	// With no span in context, a non-recording span is returned.
	span := SpanFromContext(ctx)
	if span == nil {
		t.Error("SpanFromContext() returned nil")
	}

	ctx, createdSpan := tracer.Start(ctx, "resolve_style")
	retrievedSpan := SpanFromContext(ctx)
	if retrievedSpan == nil {
		t.Error("SpanFromContext() returned nil")
	}
	createdSpan.End()
}

// TestContextWithSpan tests adding span to context
func TestContextWithSpan(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "resolve_style")
	defer span.End()

	newCtx := ContextWithSpan(context.Background(), span)

	retrievedSpan := SpanFromContext(newCtx)
	if retrievedSpan == nil {
		t.Error("SpanFromContext() returned nil after ContextWithSpan()")
	}
}

// TestSpanContext tests retrieving span context
func TestSpanContext(t *testing.T) {
	ctx := context.Background()

	sc := SpanContext(ctx)
	if sc.IsValid() {
		t.Error("SpanContext() returned valid context with no span")
	}

	// A manually constructed span context round-trips.
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	want := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx = trace.ContextWithSpanContext(ctx, want)
	sc = SpanContext(ctx)
	if !sc.IsValid() {
		t.Error("SpanContext() returned invalid context")
	}
	if sc.TraceID() != traceID {
		t.Errorf("SpanContext().TraceID() = %v, want %v", sc.TraceID(), traceID)
	}
}

// TestTraceID tests retrieving trace ID
func TestTraceID(t *testing.T) {
	ctx := context.Background()

	if got := TraceID(ctx); got != "" {
		t.Errorf("TraceID() = %q, want empty string", got)
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID() = %q, want %q", got, "4bf92f3577b34da6a3ce929d0e0e4736")
	}
}

// TestSpanID tests retrieving span ID
func TestSpanID(t *testing.T) {
	ctx := context.Background()

	if got := SpanID(ctx); got != "" {
		t.Errorf("SpanID() = %q, want empty string", got)
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	if got := SpanID(ctx); got != "00f067aa0ba902b7" {
		t.Errorf("SpanID() = %q, want %q", got, "00f067aa0ba902b7")
	}
}

// TestIsSampled tests checking if trace is sampled
func TestIsSampled(t *testing.T) {
	ctx := context.Background()

	if IsSampled(ctx) {
		t.Error("IsSampled() = true, want false with no span")
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	if !IsSampled(ctx) {
		t.Error("IsSampled() = false, want true for sampled span context")
	}
}

// TestSetError tests setting error on the current span
func TestSetError(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "resolve_style")
	defer span.End()

	// Nil error is ignored.
	SetError(ctx, nil)

	// Real error must not panic on a non-recording span.
	SetError(ctx, errors.New("style not found"))
}

// TestSetStatus tests setting span status
func TestSetStatus(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "resolve_style")
	defer span.End()

	SetStatus(ctx, codes.Ok, "resolved")
	SetStatus(ctx, codes.Error, "style not found")
}

// TestTracer_WithTimeout tests deriving export-bounded contexts
func TestTracer_WithTimeout(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "test-service",
		OTLP: config.OTLPConfig{
			Timeout: 2 * time.Second,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, cancel := tracer.WithTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("WithTimeout() returned context without deadline")
	}
	if remaining := time.Until(deadline); remaining > 2*time.Second {
		t.Errorf("WithTimeout() deadline %v from now, want <= 2s", remaining)
	}
}
