// Package server provides the HTTP API server for style resolution.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/server/handlers"
	"mercator-hq/ganymede/pkg/server/middleware"
	"mercator-hq/ganymede/pkg/styler"
	"mercator-hq/ganymede/pkg/telemetry/health"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/telemetry/tracing"
	"mercator-hq/ganymede/pkg/usage"
)

// Options carries the assembled components the server exposes over
// HTTP. Store and Styler are required. Recorder, Collector, and Checker
// may be nil, which disables usage recording, metrics, and health
// probes respectively.
type Options struct {
	Store     *catalog.Store
	Styler    *styler.Styler
	Recorder  *usage.Recorder
	Collector *metrics.Collector
	Checker   *health.Checker
	Logger    *slog.Logger

	// Build identity reported by GET /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP API server. It owns only the HTTP lifecycle; the
// lifecycles of the injected components (catalog store, usage recorder,
// tracer) belong to the caller. A Server is single-use: once shut down
// it cannot be restarted.
type Server struct {
	config *config.Config
	opts   Options
	logger *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an API server from configuration and assembled
// components.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if opts.Styler == nil {
		return nil, fmt.Errorf("styler is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:       cfg,
		opts:         opts,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start starts the HTTP server and blocks until the context is
// cancelled, a shutdown signal arrives, Shutdown is called, or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	httpServer := &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	tlsEnabled := s.config.Security.TLS.Enabled
	if tlsEnabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			s.stopHTTPServer(context.Background())
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		httpServer.TLSConfig = tlsConfig
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting api server",
			"address", s.config.Server.ListenAddress,
			"tls_enabled", tlsEnabled,
		)

		var err error
		if tlsEnabled {
			err = httpServer.ListenAndServeTLS(
				s.config.Security.TLS.CertFile,
				s.config.Security.TLS.KeyFile,
			)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.stopHTTPServer(context.Background())
		return err
	case <-s.shutdownChan:
		// Shutdown was called directly. It may have run before this
		// goroutine registered the listener, so stop again here.
		return s.stopHTTPServer(context.Background())
	}
}

// Shutdown gracefully shuts down the server. It is safe to call
// concurrently with Start and more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
	return s.stopHTTPServer(ctx)
}

// stopHTTPServer drains and stops the underlying http.Server if one is
// active. Idempotent.
func (s *Server) stopHTTPServer(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer = nil
	s.isRunning = false
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("api server stopped")
	return nil
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	resolveHandler := handlers.NewResolveHandler(s.opts.Styler, s.opts.Recorder, s.opts.Collector, s.logger)
	stylesHandler := handlers.NewStylesHandler(s.opts.Store, s.config.Styler.MaxSuggestions, s.logger)
	catalogHandler := handlers.NewCatalogHandler(s.opts.Store, s.opts.Collector, s.logger)

	mux.Handle("POST /v1/resolve", resolveHandler)
	mux.HandleFunc("GET /v1/styles", stylesHandler.List)
	mux.HandleFunc("GET /v1/styles/{id}", stylesHandler.GetByID)
	mux.HandleFunc("GET /v1/catalog", catalogHandler.Info)
	mux.HandleFunc("POST /v1/catalog/reload", catalogHandler.Reload)

	if s.opts.Checker != nil {
		health.RegisterRoutes(mux, s.opts.Checker, &s.config.Telemetry.Health)
	}
	mux.HandleFunc("GET /version", health.VersionHandler(s.opts.Version, s.opts.Commit, s.opts.BuildTime))

	if s.opts.Collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.opts.Collector.Handler())
	}

	// Unmatched paths get the JSON 404 instead of the mux default.
	mux.HandleFunc("/", handlers.NotFound)

	// Applied innermost first; requests pass the reverse order: metrics,
	// request ID, logging, recovery, CORS, tracing, timeout.
	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)

	if s.config.Telemetry.Tracing.Enabled {
		handler = tracing.HTTPMiddleware(handler)
	}

	handler = middleware.CORSMiddleware(&s.config.Server.CORS)(handler)

	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	handler = middleware.LoggingMiddleware(s.logger)(handler)

	handler = middleware.RequestIDMiddleware(handler)

	handler = middleware.MetricsMiddleware(s.opts.Collector)(handler)

	return handler
}

// configureTLS builds the TLS listener configuration.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.config.Security.TLS

	if tlsCfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
	}, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler without starting a
// listener. Useful for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports whether the server is running and has a catalog to
// serve from.
func (s *Server) Health() error {
	if !s.IsRunning() {
		return fmt.Errorf("server is not running")
	}
	if _, ok := s.opts.Store.Current(); !ok {
		return fmt.Errorf("style catalog not loaded")
	}
	return nil
}
