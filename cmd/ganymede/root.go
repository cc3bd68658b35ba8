package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
)

const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Mercator Ganymede - style catalog server and prompt resolution engine",
	Long: `Mercator Ganymede serves a hot-reloadable catalog of prompt style packs
and resolves user prompts against their templates.

It provides:
  - Pack discovery and merging from local directories or git repositories
  - Prompt resolution with per-model template variants
  - Usage recording and per-style rollup statistics
  - Authoring tools for validating, auditing, and extending packs

For more information, visit: https://github.com/mercator-hq/ganymede`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code the error
// class maps to: 2 for usage and config errors, 1 for everything else.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Flag parse failures are usage errors, not command failures
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.NewUsageError(cmd.Name(), err.Error())
	})

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration for a command run. A missing file
// is only an error when --config named it explicitly; with the default
// path the built-in defaults apply, so the authoring tools work in a
// bare pack checkout.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, cli.NewConfigError("", fmt.Sprintf("cannot read config file %s: %v", cfgFile, err))
		}
		if cfgFile != defaultConfigFile {
			return nil, cli.NewConfigError("", fmt.Sprintf("config file not found: %s", cfgFile))
		}
		cfg := &config.Config{}
		config.ApplyDefaults(cfg)
		return cfg, nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// commandLogger returns the logger for one-shot commands. It writes to
// stderr so command output on stdout stays pipeable, and stays quiet
// unless --verbose is set.
func commandLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// effectivePacksDir returns the pack directory a one-shot command reads.
// With the git source enabled that is the checkout path; commands never
// clone, they read whatever the server (or operator) last synced.
func effectivePacksDir(cfg *config.Config) string {
	if cfg.Catalog.Git.Enabled {
		return filepath.Join(cfg.Catalog.Git.Clone.LocalPath, cfg.Catalog.Git.Path)
	}
	return cfg.Catalog.PacksDir
}
