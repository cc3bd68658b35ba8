package tracing

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Propagator returns the globally registered text map propagator.
// New installs a composite W3C trace-context and baggage propagator
// when tracing is enabled.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract reads trace context from incoming HTTP headers into ctx.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context from ctx into outgoing HTTP headers.
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractFromMap reads trace context from a plain string map, for
// transports that are not HTTP.
func ExtractFromMap(ctx context.Context, m map[string]string) context.Context {
	return Propagator().Extract(ctx, propagation.MapCarrier(m))
}

// InjectToMap writes the trace context from ctx into a string map.
func InjectToMap(ctx context.Context, m map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(m))
}

// HTTPMiddleware extracts incoming trace context before the request
// reaches the handler and echoes the active trace and span IDs back
// on the response, so clients can correlate responses with traces.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Extract(r.Context(), r.Header)

		sc := trace.SpanContextFromContext(ctx)
		if sc.IsValid() {
			w.Header().Set("X-Trace-ID", sc.TraceID().String())
			w.Header().Set("X-Span-ID", sc.SpanID().String())
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceParent is a parsed W3C traceparent header.
type TraceParent struct {
	Version string
	TraceID string
	SpanID  string
	Flags   string
	Sampled bool
}

// ParseTraceParent parses and validates a traceparent header value.
//
// The header has the form version-traceid-spanid-flags, for example:
//
//	00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
func ParseTraceParent(header string) (*TraceParent, error) {
	if err := ValidateTraceParent(header); err != nil {
		return nil, err
	}

	parts := strings.Split(header, "-")
	flags, err := strconv.ParseUint(parts[3], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid trace flags: %s", parts[3])
	}

	return &TraceParent{
		Version: parts[0],
		TraceID: parts[1],
		SpanID:  parts[2],
		Flags:   parts[3],
		Sampled: flags&0x01 == 0x01,
	}, nil
}

// ValidateTraceParent checks that a traceparent header value is
// structurally valid per the W3C trace-context format.
func ValidateTraceParent(header string) error {
	parts := strings.Split(header, "-")
	if len(parts) != 4 {
		return fmt.Errorf("traceparent must have 4 parts, got %d", len(parts))
	}

	if len(parts[0]) != 2 || !isHexString(parts[0]) {
		return fmt.Errorf("invalid version: %s", parts[0])
	}
	if len(parts[1]) != 32 || !isHexString(parts[1]) {
		return fmt.Errorf("invalid trace ID: %s", parts[1])
	}
	if parts[1] == strings.Repeat("0", 32) {
		return fmt.Errorf("trace ID must not be all zeros")
	}
	if len(parts[2]) != 16 || !isHexString(parts[2]) {
		return fmt.Errorf("invalid parent span ID: %s", parts[2])
	}
	if parts[2] == strings.Repeat("0", 16) {
		return fmt.Errorf("parent span ID must not be all zeros")
	}
	if len(parts[3]) != 2 || !isHexString(parts[3]) {
		return fmt.Errorf("invalid trace flags: %s", parts[3])
	}

	return nil
}

func isHexString(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
