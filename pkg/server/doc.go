// Package server provides the HTTP API server for style resolution.
//
// This package ties together the resolution components (handlers, middleware,
// catalog store, styler) and provides server lifecycle management including
// start, shutdown, and health checks.
//
// # Architecture
//
// The server package is the HTTP-facing orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Configures TLS termination
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// The server does not own the lifecycles of the components it serves: the
// catalog store, usage recorder, metrics collector, and health checker are
// assembled by the caller (normally the run command) and injected through
// Options. The caller closes them after Start returns.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "mercator-hq/ganymede/pkg/config"
//	    "mercator-hq/ganymede/pkg/server"
//	)
//
//	// Load configuration
//	cfg := config.GetConfig()
//
//	// Assemble components (catalog store, styler, telemetry) ...
//
//	srv, err := server.New(cfg, server.Options{
//	    Store:  store,
//	    Styler: styler,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server handles graceful shutdown automatically when receiving SIGTERM
// or SIGINT:
//
//	// Server will automatically shutdown on SIGTERM/SIGINT
//	// Or you can trigger shutdown programmatically:
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active connections to complete (up to shutdown timeout)
//  3. Forces connection closure if timeout exceeded
//
// A Server is single-use: once shut down it cannot be restarted.
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /v1/resolve - Resolve a prompt against the style catalog
//   - GET /v1/styles - List catalog styles, optionally filtered by category
//   - GET /v1/styles/{id} - Fetch a single style by id
//   - GET /v1/catalog - Catalog version, size, and load diagnostics
//   - POST /v1/catalog/reload - Force a catalog rebuild from the sources
//   - GET /health/live - Liveness probe (always returns 200)
//   - GET /health/ready - Readiness probe (runs registered component checks)
//   - GET /version - Build version, commit, and build time
//   - GET /metrics - Prometheus exposition (when metrics are enabled)
//
// Unmatched paths return the same JSON error envelope as the API routes.
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost to innermost):
//  1. Metrics: Records request counts, latency, and in-flight gauge
//  2. RequestID: Assigns the request id used by logs and responses
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics and returns 500 error
//  5. CORS: Adds Cross-Origin Resource Sharing headers
//  6. Tracing: Extracts and echoes trace context (when tracing is enabled)
//  7. Timeout: Enforces per-request timeout
//
// Metrics sits outside recovery so recovered panics are still counted, and
// request ids are assigned before logging so every request log carries one.
//
// # TLS Support
//
// The server supports TLS 1.3 with configurable certificates:
//
//	security:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//
// # Health Checks
//
// The server provides health check endpoints for Kubernetes/load balancers:
//
//	# Liveness probe (is server running?)
//	GET /health/live
//
//	# Readiness probe (is server ready to accept traffic?)
//	GET /health/ready
//
// Component checks (catalog loaded, usage database reachable) are registered
// on the health.Checker injected through Options.
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
