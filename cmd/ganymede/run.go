package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gitsync"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/styler"
	"mercator-hq/ganymede/pkg/telemetry/health"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/telemetry/tracing"
	"mercator-hq/ganymede/pkg/usage"
	"mercator-hq/ganymede/pkg/usage/statstore"
	"mercator-hq/ganymede/pkg/usage/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede catalog server",
	Long: `Start the Ganymede server with the specified configuration.

The server loads the style catalog from the configured pack sources,
serves resolution and catalog queries over HTTP, and keeps the catalog
fresh through filesystem watching or git polling.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address
  ganymede run --listen 0.0.0.0:8085

  # Validate config without starting server
  ganymede run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	config.SetConfig(cfg)

	// Initialize logging based on config
	appLogger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: true,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	defer appLogger.Shutdown()

	logger := appLogger.Slog()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	ctx := cli.SetupSignalHandler()

	// Tracing (no-op when disabled)
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		slog.Warn("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("tracing shutdown failed", "error", err)
			}
		}()
		if cfg.Telemetry.Tracing.Enabled {
			fmt.Println("✓ Tracing initialized")
		}
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Pack source: git checkout or local directory
	var syncer *gitsync.Syncer
	packsDir := cfg.Catalog.PacksDir
	if cfg.Catalog.Git.Enabled {
		syncer, err = gitsync.NewSyncer(&cfg.Catalog.Git)
		if err != nil {
			return cli.NewConfigError("catalog.git", err.Error())
		}

		slog.Info("syncing style packs",
			"repository", logging.RedactRemoteURL(cfg.Catalog.Git.Repository),
			"branch", cfg.Catalog.Git.Branch,
		)
		syncStart := time.Now()
		if err := syncer.Clone(ctx); err != nil {
			collector.RecordGitSync("error", time.Since(syncStart))
			return cli.NewCommandError("run", fmt.Errorf("git pack sync failed: %w", err))
		}
		collector.RecordGitSync("success", time.Since(syncStart))
		packsDir = syncer.PacksPath()

		packFiles, err := syncer.ListPackFiles()
		if err != nil {
			slog.Warn("listing synced pack files failed", "error", err)
		}
		fmt.Printf("✓ Style packs synced (%d pack files)\n", len(packFiles))
	}

	// Catalog store
	loader := catalog.NewLoader(&catalog.LoaderConfig{
		PacksDir:    packsDir,
		LegacyPath:  cfg.Catalog.LegacyPath,
		Extensions:  cfg.Catalog.Extensions,
		MaxFileSize: cfg.Catalog.MaxFileSize,
	}, logger)

	store := catalog.NewStore(loader, logger, catalog.StoreOptions{
		AutoRefresh: cfg.Catalog.AutoRefresh,
		OnSwap: func(previous, current *catalog.Catalog) {
			stats := current.Stats()
			collector.UpdateCatalogInfo(
				current.BuiltAt().Unix(),
				stats.StyleCount,
				len(current.Signature()),
				stats.CategoryCount,
			)
		},
	})

	loadStart := time.Now()
	cat, err := store.Get(ctx)
	if err != nil {
		collector.RecordCatalogLoad("startup", "error", time.Since(loadStart))
		return cli.NewCommandError("run", fmt.Errorf("catalog load failed: %w", err))
	}
	collector.RecordCatalogLoad("startup", "success", time.Since(loadStart))

	stats := cat.Stats()
	fmt.Printf("✓ Catalog loaded (%d styles, %d categories)\n", stats.StyleCount, stats.CategoryCount)
	if stats.FromLegacy {
		slog.Warn("catalog loaded from legacy fallback source", "path", cfg.Catalog.LegacyPath)
	}

	// Resolution engine
	engine, err := styler.New(store, logger, &styler.Config{
		DefaultVariant: cfg.Styler.DefaultVariant,
		MaxSuggestions: cfg.Styler.MaxSuggestions,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Health checks
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.Register("catalog", func(ctx context.Context) error {
		if _, ok := store.Current(); !ok {
			return fmt.Errorf("catalog not built")
		}
		return nil
	})

	// Usage recording
	var recorder *usage.Recorder
	if cfg.Usage.Enabled {
		eventsCfg := storage.DefaultSQLiteConfig()
		eventsCfg.Path = cfg.Usage.Events.Path
		eventsCfg.BusyTimeout = cfg.Usage.Events.BusyTimeout
		events, err := storage.NewSQLiteStorage(eventsCfg, logger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("usage event store: %w", err))
		}
		defer events.Close()

		statsCfg := statstore.DefaultConfig()
		statsCfg.Path = cfg.Usage.Stats.Path
		statsCfg.BusyTimeout = cfg.Usage.Stats.BusyTimeout
		statsCfg.CheckpointInterval = cfg.Usage.Stats.CheckpointInterval
		statsStore, err := statstore.NewSQLiteBackend(statsCfg, logger)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("usage stat store: %w", err))
		}
		defer statsStore.Close()

		recorder = usage.NewRecorder(events, &usage.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  cfg.Usage.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Usage.Recorder.WriteTimeout,
		}, logger, collector)
		defer recorder.Close()

		scheduler := usage.NewScheduler(events, statsStore, &usage.SchedulerConfig{
			RollupSchedule: cfg.Usage.RollupSchedule,
			PruneSchedule:  cfg.Usage.Retention.PruneSchedule,
			RetentionDays:  cfg.Usage.Retention.Days,
		}, logger, collector)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start usage scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}

		checker.Register("usage_events", health.DatabaseCheck(events.DB()))
		checker.Register("usage_stats", health.DatabaseCheck(statsStore.DB()))

		fmt.Println("✓ Usage store initialized")
	}

	// Catalog freshness: filesystem watcher for local packs, poller for git
	if cfg.Catalog.Watch && !cfg.Catalog.Git.Enabled {
		watcher, err := catalog.NewWatcher(&catalog.WatcherConfig{
			PacksDir:         packsDir,
			LegacyPath:       cfg.Catalog.LegacyPath,
			DebounceInterval: cfg.Catalog.WatchDebounce,
			Extensions:       cfg.Catalog.Extensions,
			SkipHidden:       true,
		}, logger, func() error {
			return rebuildCatalog(store, collector, "watch")
		})
		if err != nil {
			slog.Warn("failed to start pack watcher", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("pack watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
			fmt.Println("✓ Pack watcher started")
		}
	}

	if syncer != nil && cfg.Catalog.Git.Poll.Enabled {
		poller := gitsync.NewPoller(
			syncer,
			cfg.Catalog.Git.Poll.Interval,
			cfg.Catalog.Git.Poll.Timeout,
			func(ctx context.Context, packsPath string) error {
				return rebuildCatalog(store, collector, "git")
			},
			logger,
		)
		if err := poller.Start(ctx); err != nil {
			slog.Warn("failed to start git poller", "error", err)
		} else {
			defer poller.Stop()
			fmt.Printf("✓ Git poller started (every %s)\n", cfg.Catalog.Git.Poll.Interval)
		}
	}

	// HTTP server
	srv, err := server.New(cfg, server.Options{
		Store:     store,
		Styler:    engine,
		Recorder:  recorder,
		Collector: collector,
		Checker:   checker,
		Logger:    logger,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	scheme := "http"
	if cfg.Security.TLS.Enabled {
		scheme = "https"
	}
	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Resolve endpoint: %s://%s/v1/resolve\n", scheme, cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Health.ReadinessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// rebuildCatalog swaps in a fresh catalog and records the load metric
// under the given trigger.
func rebuildCatalog(store *catalog.Store, collector *metrics.Collector, trigger string) error {
	start := time.Now()
	_, err := store.Rebuild(context.Background())
	status := "success"
	if err != nil {
		status = "error"
	}
	collector.RecordCatalogLoad(trigger, status, time.Since(start))
	return err
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Mercator Ganymede v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	if cfg.Catalog.Git.Enabled {
		slog.Debug("pack source", "mode", "git",
			"repository", logging.RedactRemoteURL(cfg.Catalog.Git.Repository))
	} else {
		slog.Debug("pack source", "mode", "local", "packs_dir", cfg.Catalog.PacksDir)
	}

	if cfg.Usage.Enabled {
		slog.Debug("usage recording enabled", "events_path", cfg.Usage.Events.Path)
	}
}
