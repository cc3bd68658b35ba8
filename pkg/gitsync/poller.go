package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
)

// debounceDelay is how long the poller waits after detecting pack
// changes before reloading, so a burst of commits triggers one reload.
const debounceDelay = 100 * time.Millisecond

// ReloadFunc is called when pack files change upstream. It receives
// the pack directory inside the checkout and should rebuild the
// catalog from it. A returned error triggers rollback to the last
// commit that loaded cleanly.
type ReloadFunc func(ctx context.Context, packsPath string) error

// Poller watches the pack repository for new commits and triggers
// catalog reloads. It pulls at a fixed interval and reloads only when
// files under the configured pack path change; other commits advance
// the tracked SHA without touching the catalog.
//
// Reloads are debounced so rapid consecutive commits collapse into
// one, and a reload that fails rolls the checkout back to the last
// good commit so the serving catalog stays consistent with the
// worktree.
type Poller struct {
	syncer       *Syncer
	pollInterval time.Duration
	pollTimeout  time.Duration
	reloadFn     ReloadFunc
	packsRel     string
	logger       *slog.Logger

	mu          sync.RWMutex
	running     bool
	lastGoodSHA string
	stopCh      chan struct{}
	done        chan struct{}
	metrics     *PollerMetrics

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// PollerMetrics tracks poll and reload counters.
type PollerMetrics struct {
	PollCount         int64
	SuccessfulReloads int64
	FailedReloads     int64
	Rollbacks         int64
	SkippedPolls      int64
	LastReloadTime    time.Time
	LastReloadDur     time.Duration
}

// NewPoller creates a poller for the given syncer. The syncer must
// already be constructed; Clone must succeed before Start is called.
// A nil logger falls back to slog.Default.
func NewPoller(syncer *Syncer, interval, timeout time.Duration, reloadFn ReloadFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		syncer:       syncer,
		pollInterval: interval,
		pollTimeout:  timeout,
		reloadFn:     reloadFn,
		packsRel:     path.Clean(syncer.config.Path),
		logger:       logger.With("component", "gitsync"),
		metrics:      &PollerMetrics{},
	}
}

// Start begins polling in a background goroutine. The context cancels
// the loop; Stop does too and additionally waits for it to exit.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}

	if p.pollInterval <= 0 {
		p.mu.Unlock()
		return fmt.Errorf("poll interval must be positive")
	}

	commit, err := p.syncer.CurrentCommit()
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	p.lastGoodSHA = commit.SHA
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stopCh, done := p.stopCh, p.done
	p.mu.Unlock()

	p.logger.Info("pack poller started",
		"poll_interval", p.pollInterval,
		"initial_commit", shortSHA(commit.SHA))

	go p.pollLoop(ctx, stopCh, done)

	return nil
}

// Stop signals the polling loop and waits for it to exit. Pending
// debounced reloads are cancelled.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller not running")
	}
	p.running = false
	stopCh, done := p.stopCh, p.done
	p.mu.Unlock()

	p.logger.Info("stopping pack poller")
	close(stopCh)

	p.debounceMu.Lock()
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
	}
	p.debounceMu.Unlock()

	<-done
	return nil
}

// IsRunning reports whether Start has been called without a matching
// Stop.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Poller) pollLoop(ctx context.Context, stopCh, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pack poller stopped by context cancellation")
			return
		case <-stopCh:
			p.logger.Info("pack poller stopped")
			return
		case <-ticker.C:
			if err := p.checkForChanges(ctx); err != nil {
				p.logger.Error("error checking for changes", "error", err)
			}
		}
	}
}

// checkForChanges pulls once and decides whether a reload is due.
func (p *Poller) checkForChanges(ctx context.Context) error {
	p.mu.Lock()
	p.metrics.PollCount++
	p.mu.Unlock()

	pullCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	result, err := p.syncer.Pull(pullCtx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	p.logger.Info("detected upstream changes",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	if !p.hasPackChanges(result.ChangedFiles) {
		// Advance past the commit anyway so the same diff is not
		// reported on every poll.
		p.mu.Lock()
		p.metrics.SkippedPolls++
		p.lastGoodSHA = result.ToSHA
		p.mu.Unlock()

		p.logger.Info("non-pack files changed, skipping reload",
			"changed_files", result.ChangedFiles)
		return nil
	}

	p.debounceReload(ctx, result.ToSHA)

	return nil
}

// hasPackChanges reports whether any changed file is a pack file
// sitting directly in the pack directory. Paths from the diff are
// repo-relative with forward slashes. Nested and hidden files are
// ignored, mirroring the loader's flat scan.
func (p *Poller) hasPackChanges(files []string) bool {
	for _, file := range files {
		if !isPackFile(file) {
			continue
		}
		if strings.HasPrefix(path.Base(file), ".") {
			continue
		}
		if path.Dir(file) == p.packsRel {
			return true
		}
	}
	return false
}

// debounceReload schedules a reload, replacing any pending one.
func (p *Poller) debounceReload(ctx context.Context, newSHA string) {
	p.debounceMu.Lock()
	defer p.debounceMu.Unlock()

	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
	}

	p.debounceTimer = time.AfterFunc(debounceDelay, func() {
		if err := p.performReload(ctx, newSHA); err != nil {
			p.logger.Error("reload failed", "error", err)
		}
	})
}

// performReload runs the reload callback and rolls back the checkout
// when it fails.
func (p *Poller) performReload(ctx context.Context, newSHA string) error {
	start := time.Now()
	defer func() {
		p.mu.Lock()
		p.metrics.LastReloadDur = time.Since(start)
		p.metrics.LastReloadTime = time.Now()
		p.mu.Unlock()
	}()

	p.mu.RLock()
	lastGood := p.lastGoodSHA
	p.mu.RUnlock()

	p.logger.Info("reloading style packs", "commit_sha", shortSHA(newSHA))

	packsPath := p.syncer.PacksPath()

	if err := p.reloadFn(ctx, packsPath); err != nil {
		p.mu.Lock()
		p.metrics.FailedReloads++
		p.mu.Unlock()

		p.logger.Error("pack reload failed, attempting rollback",
			"error", err,
			"current_sha", shortSHA(newSHA),
			"rollback_to", shortSHA(lastGood))

		if rollbackErr := p.rollbackToLastGood(ctx, lastGood); rollbackErr != nil {
			p.logger.Error("rollback failed",
				"error", rollbackErr,
				"target_sha", shortSHA(lastGood))
			return fmt.Errorf("reload failed and rollback failed: %w (rollback: %v)", err, rollbackErr)
		}

		p.logger.Info("rolled back to last good commit", "sha", shortSHA(lastGood))
		return fmt.Errorf("pack reload failed: %w", err)
	}

	p.mu.Lock()
	oldSHA := p.lastGoodSHA
	p.lastGoodSHA = newSHA
	p.metrics.SuccessfulReloads++
	p.mu.Unlock()

	p.logger.Info("style packs reloaded",
		"from_sha", shortSHA(oldSHA),
		"to_sha", shortSHA(newSHA),
		"duration", time.Since(start))

	return nil
}

// rollbackToLastGood restores the checkout to the given commit and
// reloads packs from it.
func (p *Poller) rollbackToLastGood(ctx context.Context, sha string) error {
	if err := p.syncer.Rollback(ctx, sha); err != nil {
		return fmt.Errorf("failed to roll back checkout: %w", err)
	}

	if err := p.reloadFn(ctx, p.syncer.PacksPath()); err != nil {
		return fmt.Errorf("failed to reload packs after rollback: %w", err)
	}

	p.mu.Lock()
	p.metrics.Rollbacks++
	p.mu.Unlock()

	return nil
}

// ForceCheck runs one poll cycle immediately instead of waiting for
// the next tick.
func (p *Poller) ForceCheck(ctx context.Context) error {
	p.mu.RLock()
	running := p.running
	p.mu.RUnlock()

	if !running {
		return fmt.Errorf("poller not running")
	}

	return p.checkForChanges(ctx)
}

// LastGoodSHA returns the commit the catalog was last successfully
// loaded from.
func (p *Poller) LastGoodSHA() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastGoodSHA
}

// Metrics returns a copy of the poll counters.
func (p *Poller) Metrics() PollerMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.metrics
}

// shortSHA abbreviates a commit SHA for log output.
func shortSHA(sha string) string {
	if len(sha) < 8 {
		return sha
	}
	return sha[:8]
}
