package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Validate server configuration
	errs = append(errs, validateServer(&cfg.Server)...)

	// Validate catalog configuration
	errs = append(errs, validateCatalog(&cfg.Catalog)...)

	// Validate styler configuration
	errs = append(errs, validateStyler(&cfg.Styler)...)

	// Validate usage configuration
	errs = append(errs, validateUsage(&cfg.Usage)...)

	// Validate telemetry configuration
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	// Validate security configuration
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	// Validate listen address is not empty
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	// Validate timeouts are positive
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	// Validate max header bytes is reasonable
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	// Validate CORS max age
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateCatalog validates catalog configuration.
func validateCatalog(cfg *CatalogConfig) []FieldError {
	var errs []FieldError

	if cfg.PacksDir == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.packs_dir",
			Message: "packs directory is required",
		})
	}

	// LegacyPath may be empty (disables the fallback)

	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   "catalog.extensions",
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.max_file_size",
			Message: "max file size must be positive",
		})
	}
	if cfg.MaxFileSize > 100*1024*1024 { // 100MB is excessive for style packs
		errs = append(errs, FieldError{
			Field:   "catalog.max_file_size",
			Message: "max file size exceeds reasonable limit (100MB)",
		})
	}

	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.watch_debounce",
			Message: "watch debounce must be positive",
		})
	}

	errs = append(errs, validateGitSync(&cfg.Git)...)

	return errs
}

// validateGitSync validates git sync configuration. Most rules only apply
// when the git source is enabled.
func validateGitSync(cfg *GitSyncConfig) []FieldError {
	var errs []FieldError

	// Validate auth type even when disabled so a typo is caught early
	validAuthTypes := map[string]bool{"none": true, "token": true, "ssh": true}
	if cfg.Auth.Type != "" && !validAuthTypes[cfg.Auth.Type] {
		errs = append(errs, FieldError{
			Field:   "catalog.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'ssh'", cfg.Auth.Type),
		})
	}

	if !cfg.Enabled {
		return errs
	}

	if cfg.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.git.repository",
			Message: "repository URL is required when git sync is enabled",
		})
	}
	if cfg.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.git.branch",
			Message: "branch is required when git sync is enabled",
		})
	}
	if cfg.Clone.LocalPath == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.git.clone.local_path",
			Message: "local path is required when git sync is enabled",
		})
	}
	if cfg.Clone.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.git.clone.depth",
			Message: "clone depth must be non-negative",
		})
	}

	switch cfg.Auth.Type {
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "catalog.git.auth.token",
				Message: "token is required when auth type is 'token'",
			})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "catalog.git.auth.ssh_key_path",
				Message: "SSH key path is required when auth type is 'ssh'",
			})
		}
	}

	if cfg.Poll.Enabled {
		if cfg.Poll.Interval <= 0 {
			errs = append(errs, FieldError{
				Field:   "catalog.git.poll.interval",
				Message: "poll interval must be positive when polling is enabled",
			})
		}
		if cfg.Poll.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   "catalog.git.poll.timeout",
				Message: "poll timeout must be positive when polling is enabled",
			})
		}
	}

	return errs
}

// validateStyler validates styler configuration.
func validateStyler(cfg *StylerConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultVariant == "" {
		errs = append(errs, FieldError{
			Field:   "styler.default_variant",
			Message: "default variant is required",
		})
	}

	if cfg.MaxSuggestions < 0 {
		errs = append(errs, FieldError{
			Field:   "styler.max_suggestions",
			Message: "max suggestions must be non-negative",
		})
	}
	if cfg.MaxSuggestions > 20 {
		errs = append(errs, FieldError{
			Field:   "styler.max_suggestions",
			Message: "max suggestions exceeds reasonable limit (20)",
		})
	}

	return errs
}

// validateUsage validates usage tracking configuration. Most rules only
// apply when usage tracking is enabled.
func validateUsage(cfg *UsageConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.Events.Path == "" {
		errs = append(errs, FieldError{
			Field:   "usage.events.path",
			Message: "events database path is required when usage tracking is enabled",
		})
	}
	if cfg.Stats.Path == "" {
		errs = append(errs, FieldError{
			Field:   "usage.stats.path",
			Message: "stats database path is required when usage tracking is enabled",
		})
	}
	if cfg.Events.Path != "" && cfg.Events.Path == cfg.Stats.Path {
		errs = append(errs, FieldError{
			Field:   "usage.stats.path",
			Message: "stats database path must differ from the events database path",
		})
	}

	if cfg.Recorder.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{
			Field:   "usage.recorder.async_buffer",
			Message: "async buffer must be positive",
		})
	}
	if cfg.Recorder.AsyncBuffer > 1000000 {
		errs = append(errs, FieldError{
			Field:   "usage.recorder.async_buffer",
			Message: "async buffer exceeds reasonable limit (1,000,000)",
		})
	}
	if cfg.Recorder.WriteTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "usage.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	if cfg.RollupSchedule == "" {
		errs = append(errs, FieldError{
			Field:   "usage.rollup_schedule",
			Message: "rollup schedule is required when usage tracking is enabled",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 0 && cfg.Retention.PruneSchedule == "" {
		errs = append(errs, FieldError{
			Field:   "usage.retention.prune_schedule",
			Message: "prune schedule is required when retention is enabled",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics configuration
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	}
	for i := 1; i < len(cfg.Metrics.RequestDurationBuckets); i++ {
		if cfg.Metrics.RequestDurationBuckets[i] <= cfg.Metrics.RequestDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.request_duration_buckets",
				Message: "histogram buckets must be strictly increasing",
			})
			break
		}
	}

	// Validate tracing configuration
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if cfg.Tracing.Sampler != "" && !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	// Validate health check configuration
	if cfg.Health.Enabled {
		if cfg.Health.LivenessPath == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.liveness_path",
				Message: "liveness path is required when health checks are enabled",
			})
		} else if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.liveness_path",
				Message: "liveness path must start with /",
			})
		}
		if cfg.Health.ReadinessPath == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.readiness_path",
				Message: "readiness path is required when health checks are enabled",
			})
		} else if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.readiness_path",
				Message: "readiness path must start with /",
			})
		}
		if cfg.Health.CheckTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.health.check_timeout",
				Message: "check timeout must be positive",
			})
		}
	}

	return errs
}

// validateSecurity validates security configuration.
func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.cert_file",
				Message: "TLS certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "security.tls.key_file",
				Message: "TLS key file is required when TLS is enabled",
			})
		}
	}

	return errs
}
