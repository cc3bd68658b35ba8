package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRequestTimeout sets the per-request timeout.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithPacksDir sets the style pack directory.
func (b *ConfigBuilder) WithPacksDir(dir string) *ConfigBuilder {
	b.cfg.Catalog.PacksDir = dir
	return b
}

// WithLegacyPath sets the legacy single-document fallback path.
func (b *ConfigBuilder) WithLegacyPath(path string) *ConfigBuilder {
	b.cfg.Catalog.LegacyPath = path
	return b
}

// WithWatch sets whether the filesystem watcher is enabled.
func (b *ConfigBuilder) WithWatch(enabled bool) *ConfigBuilder {
	b.cfg.Catalog.Watch = enabled
	return b
}

// WithGitRepo enables the git-synced pack source for the given repository.
func (b *ConfigBuilder) WithGitRepo(repo string) *ConfigBuilder {
	b.cfg.Catalog.Git.Enabled = true
	b.cfg.Catalog.Git.Repository = repo
	if b.cfg.Catalog.Git.Branch == "" {
		b.cfg.Catalog.Git.Branch = "main"
	}
	if b.cfg.Catalog.Git.Clone.LocalPath == "" {
		b.cfg.Catalog.Git.Clone.LocalPath = "data/style-packs"
	}
	return b
}

// WithDefaultVariant sets the styler default variant.
func (b *ConfigBuilder) WithDefaultVariant(variant string) *ConfigBuilder {
	b.cfg.Styler.DefaultVariant = variant
	return b
}

// WithMaxSuggestions sets the styler suggestion cap.
func (b *ConfigBuilder) WithMaxSuggestions(n int) *ConfigBuilder {
	b.cfg.Styler.MaxSuggestions = n
	return b
}

// WithUsageEnabled enables usage tracking with the given database paths.
func (b *ConfigBuilder) WithUsageEnabled(eventsPath, statsPath string) *ConfigBuilder {
	b.cfg.Usage.Enabled = true
	b.cfg.Usage.Events.Path = eventsPath
	b.cfg.Usage.Stats.Path = statsPath
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Security.TLS.Enabled = true
	b.cfg.Security.TLS.CertFile = certFile
	b.cfg.Security.TLS.KeyFile = keyFile
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
