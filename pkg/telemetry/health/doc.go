// Package health provides liveness and readiness probes for the
// ganymede server.
//
// # Probes
//
// Liveness answers "is the process alive" and never touches
// components, so it is safe for tight probe intervals. Readiness
// answers "can this instance serve resolutions" by running every
// registered component check concurrently; any failing component
// returns 503 so load balancers drain the instance while it recovers.
//
// # Component checks
//
// The server registers one check per dependency that a resolution or
// usage write needs:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.Register("catalog", func(ctx context.Context) error {
//		if store.Current() == nil {
//			return errors.New("catalog not loaded")
//		}
//		return nil
//	})
//	checker.Register("usage_store", health.DatabaseCheck(db))
//
// Each check runs with its own timeout in its own goroutine, so a
// hung dependency marks itself unhealthy instead of stalling the
// probe.
//
// # Endpoints
//
// RegisterRoutes mounts the handlers at the configured paths,
// /health/live and /health/ready by default. Responses are JSON with
// per-component status, message, and duration. VersionHandler serves
// build metadata for deploy verification.
package health
