package health

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Component status values reported in check results.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckTimeout is returned when a component check exceeds the
// configured timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// CheckFunc probes one component. It returns nil when the component
// is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single component check.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the error text for unhealthy components.
	Message string `json:"message,omitempty"`

	// DurationMs is how long the check took, in milliseconds.
	DurationMs float64 `json:"duration_ms,omitempty"`
}

// Status is the aggregated health of the service.
type Status struct {
	// Status is "ok" for liveness, "ready" or "degraded" for
	// readiness.
	Status string `json:"status"`

	// Checks holds per-component results for readiness responses.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the checks ran.
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered component checks and aggregates results.
// Checks run concurrently, each bounded by the check timeout.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a checker. A zero timeout defaults to 5 seconds per
// component check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// Register adds a named component check, replacing any existing check
// with the same name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// Unregister removes a named component check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// Liveness reports whether the process is alive. It never runs
// component checks, so it stays fast enough for tight probe
// intervals.
func (c *Checker) Liveness(ctx context.Context) Status {
	return Status{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered component check concurrently and
// aggregates the results. Any unhealthy component degrades the
// overall status. With no checks registered the service is ready by
// definition.
func (c *Checker) Readiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return Status{
			Status:    StatusReady,
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Status{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes one check with the configured timeout. The check
// runs in its own goroutine so a check that ignores its context
// cannot stall the probe.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		elapsed := durationMs(time.Since(start))
		if err != nil {
			return CheckResult{
				Status:     StatusUnhealthy,
				Message:    err.Error(),
				DurationMs: elapsed,
			}
		}
		return CheckResult{
			Status:     StatusOK,
			DurationMs: elapsed,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:     StatusUnhealthy,
			Message:    ErrCheckTimeout.Error(),
			DurationMs: durationMs(time.Since(start)),
		}
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// ListChecks returns the names of all registered component checks.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}

	return names
}

// CheckCount returns the number of registered component checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.checks)
}

// DatabaseCheck builds a check that pings a SQL database. Used for
// the usage stores, which must stay reachable for event recording.
func DatabaseCheck(db *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not initialized")
		}
		return db.PingContext(ctx)
	}
}
