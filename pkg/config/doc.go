// Package config provides configuration management for Ganymede.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GANYMEDE_SECTION_FIELD.
// For example:
//
//   - GANYMEDE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GANYMEDE_CATALOG_PACKS_DIR overrides catalog.packs_dir
//   - GANYMEDE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., packs directory, TLS cert paths)
//   - Range validation (e.g., sample ratio must be 0.0-1.0)
//   - Enum validation (e.g., logging level must be a known level)
//   - Logical validation (e.g., git repository required when git sync is enabled)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - catalog.packs_dir: packs directory is required
//	  - telemetry.logging.level: invalid logging level "verbose"
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8085"
//
//	catalog:
//	  packs_dir: "styles/packs"
//	  legacy_path: "styles/styles_v1.json"
//	  watch: true
//
//	styler:
//	  default_variant: "default"
//
//	usage:
//	  enabled: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
