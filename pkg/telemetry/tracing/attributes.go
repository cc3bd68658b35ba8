package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on ganymede spans. All service-specific keys
// live under the mercator.* namespace so they group together in trace
// backends and never collide with semantic conventions.
const (
	// Style attributes
	AttrStyleID       = "mercator.style.id"
	AttrStyleName     = "mercator.style.name"
	AttrStyleCategory = "mercator.style.category"
	AttrVariant       = "mercator.style.variant"

	// Resolution attributes
	AttrResolveSource    = "mercator.resolve.source"
	AttrResolveOutcome   = "mercator.resolve.outcome"
	AttrVariantFallback  = "mercator.resolve.variant_fallback"
	AttrSuggestionCount  = "mercator.resolve.suggestion_count"
	AttrApplyStyle       = "mercator.resolve.apply_style"
	AttrPromptLength     = "mercator.resolve.prompt_length"
	AttrResolvedTemplate = "mercator.resolve.template"

	// Catalog attributes
	AttrCatalogVersion = "mercator.catalog.version"
	AttrCatalogStyles  = "mercator.catalog.styles"
	AttrCatalogPacks   = "mercator.catalog.packs"
	AttrCatalogTrigger = "mercator.catalog.trigger"
	AttrPack           = "mercator.catalog.pack"

	// Request attributes
	AttrRequestID = "mercator.request_id"

	// Usage attributes
	AttrUsageEventID = "mercator.usage.event_id"
	AttrUsageRows    = "mercator.usage.rows"

	// Error attributes
	AttrErrorType = "mercator.error.type"

	// Performance attributes
	AttrDurationMs = "mercator.duration_ms"
)

// SetStyleAttributes sets the identifying attributes of a style on
// the current span. Empty fields are skipped.
func SetStyleAttributes(ctx context.Context, id, category, name string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 3)
	if id != "" {
		attrs = append(attrs, attribute.String(AttrStyleID, id))
	}
	if category != "" {
		attrs = append(attrs, attribute.String(AttrStyleCategory, category))
	}
	if name != "" {
		attrs = append(attrs, attribute.String(AttrStyleName, name))
	}
	span.SetAttributes(attrs...)
}

// SetResolveAttributes records how a resolution request was answered:
// where the style selector came from, the outcome, and whether the
// requested variant fell back to the default template.
func SetResolveAttributes(ctx context.Context, source, outcome string, variantFallback bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String(AttrResolveSource, source),
		attribute.String(AttrResolveOutcome, outcome),
		attribute.Bool(AttrVariantFallback, variantFallback),
	)
}

// SetVariantAttribute records the variant a resolution asked for.
func SetVariantAttribute(ctx context.Context, variant string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || variant == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrVariant, variant))
}

// SetCatalogAttributes records the catalog snapshot a span operated
// against.
func SetCatalogAttributes(ctx context.Context, version int64, styles, packs int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int64(AttrCatalogVersion, version),
		attribute.Int(AttrCatalogStyles, styles),
		attribute.Int(AttrCatalogPacks, packs),
	)
}

// SetPackAttribute records the pack file a span is working on.
func SetPackAttribute(ctx context.Context, pack string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || pack == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrPack, pack))
}

// SetRequestAttribute records the request ID on the current span.
func SetRequestAttribute(ctx context.Context, requestID string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || requestID == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrRequestID, requestID))
}

// SetErrorAttributes records err on the current span, marks the span
// status as error, and tags the error type for filtering.
func SetErrorAttributes(ctx context.Context, err error, errorType string) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errorType != "" {
		span.SetAttributes(attribute.String(AttrErrorType, errorType))
	}
}

// SetDurationAttribute records an operation duration in milliseconds.
func SetDurationAttribute(ctx context.Context, d time.Duration) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Float64(AttrDurationMs, float64(d.Microseconds())/1000.0))
}

// AddEvent adds a timestamped event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AttributeBuilder accumulates span attributes fluently, for call
// sites that assemble attributes across several steps before a span
// exists or before the outcome is known.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates an empty attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

// WithStyle adds style identity attributes.
func (b *AttributeBuilder) WithStyle(id, category, name string) *AttributeBuilder {
	if id != "" {
		b.attrs = append(b.attrs, attribute.String(AttrStyleID, id))
	}
	if category != "" {
		b.attrs = append(b.attrs, attribute.String(AttrStyleCategory, category))
	}
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(AttrStyleName, name))
	}
	return b
}

// WithVariant adds the requested variant.
func (b *AttributeBuilder) WithVariant(variant string) *AttributeBuilder {
	if variant != "" {
		b.attrs = append(b.attrs, attribute.String(AttrVariant, variant))
	}
	return b
}

// WithResolve adds resolution outcome attributes.
func (b *AttributeBuilder) WithResolve(source, outcome string, variantFallback bool) *AttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(AttrResolveSource, source),
		attribute.String(AttrResolveOutcome, outcome),
		attribute.Bool(AttrVariantFallback, variantFallback),
	)
	return b
}

// WithCatalog adds catalog snapshot attributes.
func (b *AttributeBuilder) WithCatalog(version int64, styles, packs int) *AttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.Int64(AttrCatalogVersion, version),
		attribute.Int(AttrCatalogStyles, styles),
		attribute.Int(AttrCatalogPacks, packs),
	)
	return b
}

// WithRequest adds the request ID.
func (b *AttributeBuilder) WithRequest(requestID string) *AttributeBuilder {
	if requestID != "" {
		b.attrs = append(b.attrs, attribute.String(AttrRequestID, requestID))
	}
	return b
}

// WithCustom adds an arbitrary key/value pair. Unsupported value
// types are stored via fmt-style string conversion by the attribute
// package.
func (b *AttributeBuilder) WithCustom(key string, value any) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		b.attrs = append(b.attrs, attribute.String(key, v))
	case int:
		b.attrs = append(b.attrs, attribute.Int(key, v))
	case int64:
		b.attrs = append(b.attrs, attribute.Int64(key, v))
	case float64:
		b.attrs = append(b.attrs, attribute.Float64(key, v))
	case bool:
		b.attrs = append(b.attrs, attribute.Bool(key, v))
	case []string:
		b.attrs = append(b.attrs, attribute.StringSlice(key, v))
	}
	return b
}

// Build returns the accumulated attributes.
func (b *AttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// Apply sets the accumulated attributes on the current span.
func (b *AttributeBuilder) Apply(ctx context.Context) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(b.attrs...)
}
