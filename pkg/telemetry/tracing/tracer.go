package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/ganymede/pkg/config"
)

// tracerName identifies spans produced by this service.
const tracerName = "mercator-ganymede"

// Tracer wraps the OpenTelemetry tracer with catalog-aware helpers.
// When tracing is disabled it degrades to a no-op tracer so call
// sites never need to branch on configuration.
type Tracer struct {
	config   *config.TracingConfig
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// New creates a tracer from configuration. With tracing disabled the
// returned Tracer is a no-op and Shutdown does nothing. With tracing
// enabled it installs a global tracer provider exporting over OTLP
// gRPC and a W3C trace-context propagator.
func New(cfg *config.TracingConfig) (*Tracer, error) {
	if cfg == nil || !cfg.Enabled {
		return &Tracer{
			config:  cfg,
			tracer:  noop.NewTracerProvider().Tracer(tracerName),
			enabled: false,
		}, nil
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	sampler, err := createSampler(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating sampler: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			// TODO: thread the build version through from cmd/ganymede.
			attribute.String("service.version", "0.1.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		config:   cfg,
		provider: provider,
		tracer:   provider.Tracer(tracerName),
		enabled:  true,
	}, nil
}

// createOTLPExporter builds the OTLP gRPC span exporter. The
// connection is established lazily, so construction succeeds even
// when the collector is not yet reachable.
func createOTLPExporter(cfg *config.TracingConfig) (*otlptrace.Exporter, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}
	if cfg.OTLP.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if cfg.OTLP.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.OTLP.Timeout))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// Start begins a new span. For a disabled tracer this returns a
// non-recording span that still carries the parent context.
func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

// Shutdown flushes pending spans and stops the provider. The context
// bounds how long the final export may take.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}

// Enabled reports whether spans are actually recorded and exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// SpanFromContext returns the current span from the context. The
// result is a non-recording span when no span is active.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// ContextWithSpan returns a copy of ctx carrying the given span.
func ContextWithSpan(ctx context.Context, span trace.Span) context.Context {
	return trace.ContextWithSpan(ctx, span)
}

// SpanContext returns the span context of the current span.
func SpanContext(ctx context.Context) trace.SpanContext {
	return trace.SpanContextFromContext(ctx)
}

// TraceID returns the current trace ID, or "" when no span is active.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the current span ID, or "" when no span is active.
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// IsSampled reports whether the current trace is sampled.
func IsSampled(ctx context.Context) bool {
	return trace.SpanContextFromContext(ctx).IsSampled()
}

// SetError records err on the current span and marks its status as
// an error. A nil err is ignored.
func SetError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the status of the current span.
func SetStatus(ctx context.Context, code codes.Code, description string) {
	trace.SpanFromContext(ctx).SetStatus(code, description)
}

// WithTimeout derives a context bounded by the configured OTLP
// timeout, falling back to 10 seconds when unset.
func (t *Tracer) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 10 * time.Second
	if t.config != nil && t.config.OTLP.Timeout > 0 {
		timeout = t.config.OTLP.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}
