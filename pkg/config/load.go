package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g., GANYMEDE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format GANYMEDE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("GANYMEDE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("GANYMEDE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	// Catalog overrides
	if val := os.Getenv("GANYMEDE_CATALOG_PACKS_DIR"); val != "" {
		cfg.Catalog.PacksDir = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_LEGACY_PATH"); val != "" {
		cfg.Catalog.LegacyPath = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Catalog.MaxFileSize = i
		}
	}
	if val := os.Getenv("GANYMEDE_CATALOG_AUTO_REFRESH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.AutoRefresh = b
		}
	}
	if val := os.Getenv("GANYMEDE_CATALOG_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Watch = b
		}
	}
	if val := os.Getenv("GANYMEDE_CATALOG_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Catalog.WatchDebounce = d
		}
	}

	// Git sync overrides
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Git.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_REPOSITORY"); val != "" {
		cfg.Catalog.Git.Repository = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_BRANCH"); val != "" {
		cfg.Catalog.Git.Branch = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_PATH"); val != "" {
		cfg.Catalog.Git.Path = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_AUTH_TYPE"); val != "" {
		cfg.Catalog.Git.Auth.Type = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_AUTH_TOKEN"); val != "" {
		cfg.Catalog.Git.Auth.Token = val
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_POLL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Git.Poll.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_CATALOG_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Catalog.Git.Poll.Interval = d
		}
	}

	// Styler overrides
	if val := os.Getenv("GANYMEDE_STYLER_DEFAULT_VARIANT"); val != "" {
		cfg.Styler.DefaultVariant = val
	}
	if val := os.Getenv("GANYMEDE_STYLER_MAX_SUGGESTIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Styler.MaxSuggestions = i
		}
	}

	// Usage overrides
	if val := os.Getenv("GANYMEDE_USAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_USAGE_EVENTS_PATH"); val != "" {
		cfg.Usage.Events.Path = val
	}
	if val := os.Getenv("GANYMEDE_USAGE_STATS_PATH"); val != "" {
		cfg.Usage.Stats.Path = val
	}
	if val := os.Getenv("GANYMEDE_USAGE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Usage.Retention.Days = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Security overrides
	if val := os.Getenv("GANYMEDE_SECURITY_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.TLS.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_SECURITY_TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
	}
	if val := os.Getenv("GANYMEDE_SECURITY_TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
}
