package config

import "time"

// Config is the root configuration structure for Ganymede.
// It contains all configuration sections for the HTTP server, the style
// catalog, the resolution engine, usage tracking, telemetry, and security.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Catalog contains configuration for style pack discovery, merging,
	// and change detection, including the optional git-synced source.
	Catalog CatalogConfig `yaml:"catalog"`

	// Styler contains configuration for the prompt resolution engine.
	Styler StylerConfig `yaml:"styler"`

	// Usage contains configuration for usage event recording and the
	// per-style statistics rollup.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry contains configuration for observability including
	// logging, metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains security-related configuration including TLS.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8085", "0.0.0.0:8085").
	// Default: "127.0.0.1:8085"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request, applied by
	// the timeout middleware.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight caching.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`
}

// CatalogConfig contains configuration for style pack loading.
type CatalogConfig struct {
	// PacksDir is the directory holding style pack documents. Files are
	// merged in lexicographic filename order.
	// Default: "styles/packs"
	PacksDir string `yaml:"packs_dir"`

	// LegacyPath is the single-document fallback used when the packs
	// directory is missing or yields no styles. Empty disables it.
	// Default: "styles/styles_v1.json"
	LegacyPath string `yaml:"legacy_path"`

	// Extensions lists the recognized pack file extensions.
	// Default: [".json", ".yaml", ".yml"]
	Extensions []string `yaml:"extensions"`

	// MaxFileSize is the maximum pack file size in bytes. Oversized
	// files are skipped with a diagnostic.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// AutoRefresh enables the source-signature staleness check on
	// catalog reads, rebuilding when pack files changed on disk.
	// Default: true
	AutoRefresh bool `yaml:"auto_refresh"`

	// Watch enables filesystem event watching for pack changes. When
	// false, changes are only picked up by AutoRefresh or an explicit
	// reload.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet interval the watcher waits after a
	// filesystem event before triggering a reload.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Git contains git-synced pack source configuration. When enabled,
	// packs are pulled from a repository checkout instead of a local
	// directory.
	Git GitSyncConfig `yaml:"git"`
}

// GitSyncConfig configures the git-synced style pack source.
type GitSyncConfig struct {
	// Enabled determines if the git source is active. When true, the
	// effective pack directory is Path inside the local checkout.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/company/style-packs.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to the pack directory.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures remote change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh", "none"
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication. Supports environment variable
	// expansion (e.g., "${GITHUB_TOKEN}").
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys. Supports environment
	// variable expansion.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures remote change detection.
type GitPollConfig struct {
	// Enabled determines if polling is active. When false, packs are
	// pulled once at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls.
	// Default: 60s
	Interval time.Duration `yaml:"interval"`

	// Timeout for individual git operations.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath is where the repository is cloned.
	// Default: "data/style-packs"
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local checkout before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// StylerConfig contains configuration for the resolution engine.
type StylerConfig struct {
	// DefaultVariant is the template variant applied when a request
	// names none.
	// Default: "default"
	DefaultVariant string `yaml:"default_variant"`

	// MaxSuggestions caps how many near-miss style ids an unknown-style
	// error carries. Zero disables suggestions.
	// Default: 3
	MaxSuggestions int `yaml:"max_suggestions"`
}

// UsageConfig contains configuration for usage tracking.
type UsageConfig struct {
	// Enabled controls whether resolutions are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Events contains the raw event store configuration.
	Events EventStoreConfig `yaml:"events"`

	// Stats contains the per-style rollup store configuration.
	Stats StatStoreConfig `yaml:"stats"`

	// Recorder contains the async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// RollupSchedule is a cron expression for aggregating raw events
	// into per-style daily statistics.
	// Default: "*/5 * * * *" (every 5 minutes)
	RollupSchedule string `yaml:"rollup_schedule"`

	// Retention contains raw event retention configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// EventStoreConfig contains the raw usage event store configuration.
type EventStoreConfig struct {
	// Path is the file path for the events SQLite database.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// StatStoreConfig contains the rollup statistics store configuration.
type StatStoreConfig struct {
	// Path is the file path for the statistics SQLite database.
	// Default: "data/usage_stats.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// CheckpointInterval is how often the WAL is checkpointed.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// RecorderConfig contains the async usage recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel. Events are
	// dropped and counted when the buffer is full.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing an event to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains usage event retention configuration.
type RetentionConfig struct {
	// Days is the number of days to retain raw usage events. Rollup
	// statistics are kept indefinitely. 0 keeps events forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling event pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "ganymede"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request
	// duration in seconds.
	// Default: [0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to traces.
	// Default: "mercator-ganymede"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/health/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// TLS contains TLS settings for the HTTP server.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether the server terminates TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`
}
