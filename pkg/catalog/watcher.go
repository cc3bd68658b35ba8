package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the pack watcher.
type WatcherConfig struct {
	// PacksDir is the pack directory to watch. The directory itself is
	// watched, not individual files, so new packs are picked up.
	PacksDir string

	// LegacyPath is the legacy document whose creation, change, or
	// removal also invalidates the catalog. Its parent directory is
	// watched when it differs from PacksDir.
	LegacyPath string

	// DebounceInterval is the quiet period after the last event before
	// a reload triggers (default: 100ms). Editors and sync tools write
	// in bursts; one reload per burst is enough.
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that count as pack
	// changes (default: ".json", ".yaml", ".yml").
	Extensions []string

	// SkipHidden controls whether events on hidden files are ignored.
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".json", ".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// Watcher invalidates the catalog when pack sources change on disk. It
// debounces event bursts so a multi-file sync triggers one rebuild, not
// one per file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *WatcherConfig
	debounce *Debouncer

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a pack watcher. onChange runs after each settled
// event burst; a typical callback invalidates the store and rebuilds.
func NewWatcher(config *WatcherConfig, logger *slog.Logger, onChange func() error) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		logger:  logger,
		config:  config,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	w.debounce = NewDebouncer(config.DebounceInterval, func() {
		if err := onChange(); err != nil {
			w.logger.Error("catalog reload failed", "error", err)
		}
	})

	return w, nil
}

// Watch starts processing file system events. It blocks until the
// context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPaths(); err != nil {
		return err
	}

	w.logger.Info("pack watcher started",
		"dir", w.config.PacksDir,
		"legacy", w.config.LegacyPath,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pack watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("pack watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("pack event detected", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("pack watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels any pending debounced reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addPaths registers the packs directory and the legacy document's
// parent. Watching directories rather than files keeps create and
// rename events visible.
func (w *Watcher) addPaths() error {
	dirs := make(map[string]bool)

	if w.config.PacksDir != "" {
		if info, err := os.Stat(w.config.PacksDir); err == nil && info.IsDir() {
			dirs[w.config.PacksDir] = true
		}
	}
	if w.config.LegacyPath != "" {
		parent := filepath.Dir(w.config.LegacyPath)
		if info, err := os.Stat(parent); err == nil && info.IsDir() {
			dirs[parent] = true
		}
	}

	if len(dirs) == 0 {
		return fmt.Errorf("no watchable pack sources: dir %q, legacy %q", w.config.PacksDir, w.config.LegacyPath)
	}

	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
		w.logger.Debug("watching directory", "path", dir)
	}
	return nil
}

// shouldProcessEvent filters events down to pack-relevant changes.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	// The legacy document matters regardless of extension filtering.
	if w.config.LegacyPath != "" && filepath.Clean(event.Name) == filepath.Clean(w.config.LegacyPath) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, validExt := range w.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// Debouncer coalesces event bursts: the callback fires once per quiet
// period rather than once per event.
type Debouncer struct {
	interval time.Duration
	callback func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that invokes callback after interval
// has elapsed with no new triggers.
func NewDebouncer(interval time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger restarts the quiet period. The callback fires interval after
// the last Trigger.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.callback()
		}
	})
}

// Stop cancels any pending callback. The debouncer cannot be reused.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
