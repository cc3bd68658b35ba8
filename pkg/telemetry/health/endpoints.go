package health

import (
	"encoding/json"
	"net/http"
	"runtime"

	"mercator-hq/ganymede/pkg/config"
)

// VersionInfo is the payload of the version endpoint.
type VersionInfo struct {
	// Version is the semantic version, e.g. "0.1.0".
	Version string `json:"version"`

	// Commit is the git commit the binary was built from.
	Commit string `json:"commit"`

	// BuildTime is when the binary was built.
	BuildTime string `json:"build_time"`

	// GoVersion is the Go toolchain that built the binary.
	GoVersion string `json:"go_version"`
}

// LivenessHandler serves the liveness probe. It always returns 200
// while the process can serve HTTP at all.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "timestamp": "2026-08-25T10:30:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.Liveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler serves the readiness probe by running every
// registered component check.
//
// Returns:
//   - 200 OK: all components healthy, ready for traffic
//   - 503 Service Unavailable: one or more components unhealthy
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "catalog": {"status": "ok", "duration_ms": 0.1},
//	        "usage_store": {"status": "unhealthy", "message": "database is locked"}
//	    },
//	    "timestamp": "2026-08-25T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.Readiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if status.Status == StatusDegraded || status.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// VersionHandler serves build information.
//
// Example response:
//
//	{
//	    "version": "0.1.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-25T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}

// RegisterRoutes mounts the probe endpoints on mux at the configured
// paths. With health disabled nothing is registered; with empty paths
// the standard /health/live and /health/ready are used.
func RegisterRoutes(mux *http.ServeMux, checker *Checker, cfg *config.HealthConfig) {
	if cfg != nil && !cfg.Enabled {
		return
	}

	livenessPath := "/health/live"
	readinessPath := "/health/ready"
	if cfg != nil {
		if cfg.LivenessPath != "" {
			livenessPath = cfg.LivenessPath
		}
		if cfg.ReadinessPath != "" {
			readinessPath = cfg.ReadinessPath
		}
	}

	mux.HandleFunc(livenessPath, checker.LivenessHandler())
	mux.HandleFunc(readinessPath, checker.ReadinessHandler())
}
