package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// StyleIDKey is the context key for style identifiers.
	StyleIDKey contextKey = "style_id"

	// PackKey is the context key for pack file names.
	PackKey contextKey = "pack"

	// VariantKey is the context key for template variant names.
	VariantKey contextKey = "variant"

	// CatalogVersionKey is the context key for catalog build versions.
	CatalogVersionKey contextKey = "catalog_version"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithStyleID adds a style identifier to the context.
func WithStyleID(ctx context.Context, styleID string) context.Context {
	return context.WithValue(ctx, StyleIDKey, styleID)
}

// GetStyleID retrieves the style identifier from the context.
func GetStyleID(ctx context.Context) string {
	if styleID, ok := ctx.Value(StyleIDKey).(string); ok {
		return styleID
	}
	return ""
}

// WithPack adds a pack file name to the context.
func WithPack(ctx context.Context, pack string) context.Context {
	return context.WithValue(ctx, PackKey, pack)
}

// GetPack retrieves the pack file name from the context.
func GetPack(ctx context.Context) string {
	if pack, ok := ctx.Value(PackKey).(string); ok {
		return pack
	}
	return ""
}

// WithVariant adds a template variant name to the context.
func WithVariant(ctx context.Context, variant string) context.Context {
	return context.WithValue(ctx, VariantKey, variant)
}

// GetVariant retrieves the template variant name from the context.
func GetVariant(ctx context.Context) string {
	if variant, ok := ctx.Value(VariantKey).(string); ok {
		return variant
	}
	return ""
}

// WithCatalogVersion adds a catalog build version to the context.
func WithCatalogVersion(ctx context.Context, version int64) context.Context {
	return context.WithValue(ctx, CatalogVersionKey, version)
}

// GetCatalogVersion retrieves the catalog build version from the context.
// It returns 0 when no version is set.
func GetCatalogVersion(ctx context.Context) int64 {
	if version, ok := ctx.Value(CatalogVersionKey).(int64); ok {
		return version
	}
	return 0
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts known fields from the context for
// logging. Returns a slice of key-value pairs suitable for Logger.With.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if styleID := GetStyleID(ctx); styleID != "" {
		fields = append(fields, "style_id", styleID)
	}

	if pack := GetPack(ctx); pack != "" {
		fields = append(fields, "pack", pack)
	}

	if variant := GetVariant(ctx); variant != "" {
		fields = append(fields, "variant", variant)
	}

	if version := GetCatalogVersion(ctx); version > 0 {
		fields = append(fields, "catalog_version", version)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger bound to a context; every message carries
// the fields stored in that context.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger bound to ctx. The context fields
// are attached once here, not re-extracted per message.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.Debug(msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.Info(msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.Warn(msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.Error(msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
