package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// AutoRefresh enables the per-access staleness check: every Get
	// recomputes the source signature and rebuilds on change. Disable it
	// when a Watcher drives invalidation instead.
	AutoRefresh bool

	// OnSwap, when set, is called after every catalog swap with the
	// previous and new catalog. The previous catalog is nil on first
	// build. Used to hook metrics without coupling the store to them.
	OnSwap func(previous, current *Catalog)
}

// Store is the guarded cache cell holding the current catalog. It owns
// the catalog lifecycle: lazy first build, staleness detection, and
// atomic replacement. Concurrent readers during a rebuild observe either
// the previous complete catalog or the new one, never an intermediate
// state.
type Store struct {
	loader *Loader
	logger *slog.Logger
	opts   StoreOptions

	mu      sync.RWMutex
	current *Catalog

	buildMu sync.Mutex
	dirty   atomic.Bool
}

// NewStore creates a store around the given loader. The catalog is not
// built until the first Get or Rebuild.
func NewStore(loader *Loader, logger *slog.Logger, opts StoreOptions) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		loader: loader,
		logger: logger,
		opts:   opts,
	}
	s.dirty.Store(true)
	return s
}

// Get returns the current catalog, building or rebuilding it first when
// necessary. The staleness check is a stat pass over the source files,
// never a re-parse, so warm calls are cheap.
func (s *Store) Get(ctx context.Context) (*Catalog, error) {
	if catalog := s.snapshot(); catalog != nil && !s.dirty.Load() {
		if !s.opts.AutoRefresh {
			return catalog, nil
		}
		cfg := s.loader.Config()
		sig := ComputeSignature(cfg.PacksDir, cfg.LegacyPath, cfg.Extensions)
		if sig.Equal(catalog.Signature()) {
			return catalog, nil
		}
		s.logger.Debug("catalog sources changed", "version", catalog.Version())
	}

	return s.rebuild(ctx)
}

// Current returns the catalog without triggering a build. The boolean is
// false until the first build completes.
func (s *Store) Current() (*Catalog, bool) {
	catalog := s.snapshot()
	return catalog, catalog != nil
}

// Invalidate marks the catalog dirty so the next Get rebuilds it. Safe
// to call from watcher callbacks.
func (s *Store) Invalidate() {
	s.dirty.Store(true)
}

// Rebuild forces a fresh load regardless of signature state and swaps in
// the result.
func (s *Store) Rebuild(ctx context.Context) (*Catalog, error) {
	s.dirty.Store(true)
	return s.rebuild(ctx)
}

// Replace swaps in an externally built catalog. Used by tests and by
// callers that build catalogs from in-memory documents.
func (s *Store) Replace(catalog *Catalog) {
	s.mu.Lock()
	previous := s.current
	s.current = catalog
	s.mu.Unlock()

	s.dirty.Store(false)

	if s.opts.OnSwap != nil {
		s.opts.OnSwap(previous, catalog)
	}
}

func (s *Store) snapshot() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// rebuild serializes catalog construction. Goroutines that arrive while
// a build is running wait on buildMu and then reuse the fresh result
// instead of building again.
func (s *Store) rebuild(ctx context.Context) (*Catalog, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Another goroutine may have rebuilt while we waited for the lock.
	if catalog := s.snapshot(); catalog != nil && !s.dirty.Load() {
		cfg := s.loader.Config()
		sig := ComputeSignature(cfg.PacksDir, cfg.LegacyPath, cfg.Extensions)
		if sig.Equal(catalog.Signature()) {
			return catalog, nil
		}
	}

	result := s.loader.Load()
	catalog := Build(result)

	s.mu.Lock()
	previous := s.current
	s.current = catalog
	s.mu.Unlock()

	s.dirty.Store(false)

	s.logger.Info("catalog rebuilt",
		"version", catalog.Version(),
		"styles", catalog.Count(),
		"legacy", catalog.FromLegacy(),
		"diagnostics", len(catalog.Diagnostics()),
	)

	if s.opts.OnSwap != nil {
		s.opts.OnSwap(previous, catalog)
	}

	return catalog, nil
}
