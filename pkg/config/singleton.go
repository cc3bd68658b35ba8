package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the process-wide configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures the configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the given path with environment
// variable overrides and installs it as the global configuration. It is
// meant to be called once at startup; later calls are no-ops (sync.Once).
//
// Returns an error if loading or validation fails.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration instance, or nil if
// Initialize has not completed successfully. Safe for concurrent use.
//
// Tests should prefer passing explicit Config values over the global.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the global configuration instance. Intended for
// tests; production code should go through Initialize.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig re-reads the configuration from the given path and swaps
// it in. The existing configuration stays in place if loading or
// validation fails.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}

// MustGetConfig returns the global configuration and panics if it has
// not been initialized. Use only on paths that run strictly after a
// successful startup; elsewhere prefer GetConfig.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
