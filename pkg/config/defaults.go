package config

import "time"

// Default configuration values for Ganymede.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8085"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Catalog defaults
	DefaultPacksDir           = "styles/packs"
	DefaultLegacyPath         = "styles/styles_v1.json"
	DefaultMaxFileSize        = 10 << 20 // 10MB
	DefaultCatalogAutoRefresh = true
	DefaultWatchDebounce      = 100 * time.Millisecond

	// Git sync defaults
	DefaultGitBranch       = "main"
	DefaultGitAuthType     = "none"
	DefaultGitPollEnabled  = true
	DefaultGitPollInterval = 60 * time.Second
	DefaultGitPollTimeout  = 30 * time.Second
	DefaultGitCloneDepth   = 1
	DefaultGitLocalPath    = "data/style-packs"

	// Styler defaults
	DefaultStylerVariant        = "default"
	DefaultStylerMaxSuggestions = 3

	// Usage defaults
	DefaultUsageEventsPath         = "data/usage.db"
	DefaultUsageStatsPath          = "data/usage_stats.db"
	DefaultUsageBusyTimeout        = 5 * time.Second
	DefaultUsageCheckpointInterval = 5 * time.Minute
	DefaultUsageAsyncBuffer        = 1000
	DefaultUsageWriteTimeout       = 5 * time.Second
	DefaultUsageRollupSchedule     = "*/5 * * * *"
	DefaultUsageRetentionDays      = 30
	DefaultUsagePruneSchedule      = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "mercator"
	DefaultMetricsSubsystem    = "ganymede"
	DefaultTracingSampler      = "ratio"
	DefaultTracingSampleRatio  = 0.1
	DefaultTracingServiceName  = "mercator-ganymede"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health/live"
	DefaultHealthReadinessPath = "/health/ready"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// DefaultRequestDurationBuckets are the histogram buckets for request
// duration, in seconds. Resolution is fast, so the buckets skew low.
var DefaultRequestDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0}

// DefaultExtensions are the pack file extensions recognized by the loader.
var DefaultExtensions = []string{".json", ".yaml", ".yml"}

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the config in place. Fields that are already set are left
// alone, except booleans whose default is true: a zero-value bool is
// indistinguishable from an explicit false, so those are forced on here and
// can only be disabled through environment overrides.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	applyCORSDefaults(&cfg.Server.CORS)

	// Catalog defaults
	if cfg.Catalog.PacksDir == "" {
		cfg.Catalog.PacksDir = DefaultPacksDir
	}
	if cfg.Catalog.LegacyPath == "" {
		cfg.Catalog.LegacyPath = DefaultLegacyPath
	}
	if len(cfg.Catalog.Extensions) == 0 {
		cfg.Catalog.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Catalog.MaxFileSize == 0 {
		cfg.Catalog.MaxFileSize = DefaultMaxFileSize
	}
	if !cfg.Catalog.AutoRefresh {
		cfg.Catalog.AutoRefresh = DefaultCatalogAutoRefresh
	}
	if cfg.Catalog.WatchDebounce == 0 {
		cfg.Catalog.WatchDebounce = DefaultWatchDebounce
	}
	// Watch defaults to false (zero value)

	// Git sync defaults
	applyGitDefaults(&cfg.Catalog.Git)

	// Styler defaults
	if cfg.Styler.DefaultVariant == "" {
		cfg.Styler.DefaultVariant = DefaultStylerVariant
	}
	if cfg.Styler.MaxSuggestions == 0 {
		cfg.Styler.MaxSuggestions = DefaultStylerMaxSuggestions
	}

	// Usage defaults. Enabled defaults to false (zero value).
	if cfg.Usage.Events.Path == "" {
		cfg.Usage.Events.Path = DefaultUsageEventsPath
	}
	if cfg.Usage.Events.BusyTimeout == 0 {
		cfg.Usage.Events.BusyTimeout = DefaultUsageBusyTimeout
	}
	if cfg.Usage.Stats.Path == "" {
		cfg.Usage.Stats.Path = DefaultUsageStatsPath
	}
	if cfg.Usage.Stats.BusyTimeout == 0 {
		cfg.Usage.Stats.BusyTimeout = DefaultUsageBusyTimeout
	}
	if cfg.Usage.Stats.CheckpointInterval == 0 {
		cfg.Usage.Stats.CheckpointInterval = DefaultUsageCheckpointInterval
	}
	if cfg.Usage.Recorder.AsyncBuffer == 0 {
		cfg.Usage.Recorder.AsyncBuffer = DefaultUsageAsyncBuffer
	}
	if cfg.Usage.Recorder.WriteTimeout == 0 {
		cfg.Usage.Recorder.WriteTimeout = DefaultUsageWriteTimeout
	}
	if cfg.Usage.RollupSchedule == "" {
		cfg.Usage.RollupSchedule = DefaultUsageRollupSchedule
	}
	if cfg.Usage.Retention.Days == 0 {
		cfg.Usage.Retention.Days = DefaultUsageRetentionDays
	}
	if cfg.Usage.Retention.PruneSchedule == "" {
		cfg.Usage.Retention.PruneSchedule = DefaultUsagePruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	// Tracing enabled defaults to false (zero value)
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if !cfg.Telemetry.Tracing.OTLP.Insecure {
		cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if !cfg.Telemetry.Health.Enabled {
		cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Security defaults are false (zero values), which is correct
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	// Set enabled default (true)
	if !cors.Enabled {
		// If any CORS fields are set the user configured the section
		// deliberately; otherwise apply the default.
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applyGitDefaults applies default values to git sync configuration.
// Defaults are applied even when the git source is disabled so that a later
// enable via environment override starts from sane values.
func applyGitDefaults(git *GitSyncConfig) {
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.Auth.Type == "" {
		git.Auth.Type = DefaultGitAuthType
	}
	if !git.Poll.Enabled {
		// Same shape as CORS: an untouched poll section gets the default,
		// an explicitly tuned one is left alone.
		hasAnyConfig := git.Poll.Interval > 0 || git.Poll.Timeout > 0
		if !hasAnyConfig {
			git.Poll.Enabled = DefaultGitPollEnabled
		}
	}
	if git.Poll.Interval == 0 {
		git.Poll.Interval = DefaultGitPollInterval
	}
	if git.Poll.Timeout == 0 {
		git.Poll.Timeout = DefaultGitPollTimeout
	}
	if git.Clone.Depth == 0 {
		git.Clone.Depth = DefaultGitCloneDepth
	}
	if git.Clone.LocalPath == "" {
		git.Clone.LocalPath = DefaultGitLocalPath
	}
}
