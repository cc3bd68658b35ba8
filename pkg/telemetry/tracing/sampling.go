package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"mercator-hq/ganymede/pkg/config"
)

// Sampler strategy names accepted in configuration.
const (
	// SamplerAlways samples every trace. Intended for development
	// and debugging, not for production traffic.
	SamplerAlways = "always"

	// SamplerNever samples nothing. Spans are still created so
	// trace context keeps propagating to downstream services.
	SamplerNever = "never"

	// SamplerRatio samples a fixed fraction of traces, set by
	// sample_ratio. This is the default strategy.
	SamplerRatio = "ratio"
)

// createSampler builds the sampler for the configured strategy.
//
// Every strategy is wrapped in a ParentBased sampler: when a request
// arrives with trace context, the parent's sampling decision wins, so
// a trace sampled upstream stays complete across services. The
// configured strategy only decides for root spans.
func createSampler(cfg *config.TracingConfig) (sdktrace.Sampler, error) {
	switch cfg.Sampler {
	case SamplerAlways:
		return sdktrace.ParentBased(sdktrace.AlwaysSample()), nil
	case SamplerNever:
		return sdktrace.ParentBased(sdktrace.NeverSample()), nil
	case SamplerRatio, "":
		ratio := cfg.SampleRatio
		if ratio < 0 || ratio > 1 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", cfg.Sampler)
	}
}

// ValidSamplers returns the accepted sampler strategy names.
func ValidSamplers() []string {
	return []string{SamplerAlways, SamplerNever, SamplerRatio}
}

// ValidateSampler checks a sampler name and ratio without building a
// sampler, for configuration validation.
func ValidateSampler(name string, ratio float64) error {
	switch name {
	case SamplerAlways, SamplerNever:
		return nil
	case SamplerRatio, "":
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		return nil
	default:
		return fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", name)
	}
}
