package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testStore(t *testing.T, root string, opts StoreOptions) *Store {
	t.Helper()
	return NewStore(testLoader(t, root), nil, opts)
}

func TestStore_LazyFirstBuild(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "styles", "packs", "10_a.json"), packJSON("lazy"))

	store := testStore(t, root, StoreOptions{})

	if _, ok := store.Current(); ok {
		t.Fatal("Current() built before first Get")
	}

	catalog, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if catalog.Count() != 1 {
		t.Errorf("Count() = %d, want 1", catalog.Count())
	}

	if _, ok := store.Current(); !ok {
		t.Error("Current() still unset after Get")
	}
}

func TestStore_WarmGetReturnsSameCatalog(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "styles", "packs", "10_a.json"), packJSON("warm"))

	store := testStore(t, root, StoreOptions{AutoRefresh: true})
	ctx := context.Background()

	first, _ := store.Get(ctx)
	second, _ := store.Get(ctx)

	if first != second {
		t.Error("unchanged sources produced a new catalog on warm Get")
	}
}

func TestStore_AutoRefreshDetectsChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "styles", "packs", "10_a.json")
	writeFile(t, path, packJSON("before"))

	store := testStore(t, root, StoreOptions{AutoRefresh: true})
	ctx := context.Background()

	first, _ := store.Get(ctx)
	if !first.Has("before") {
		t.Fatal("initial catalog missing 'before'")
	}

	// Different content length guarantees a signature change even on
	// filesystems with coarse mtime resolution.
	writeFile(t, path, packJSON("after", "after_two"))

	second, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if !second.Has("after") || second.Has("before") {
		t.Errorf("rebuilt catalog ids = %v, want [after after_two]", second.IDs())
	}
	if first.Version() == second.Version() {
		t.Error("version unchanged across a source change")
	}
}

func TestStore_NoAutoRefreshNeedsInvalidate(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "styles", "packs", "10_a.json")
	writeFile(t, path, packJSON("v1"))

	store := testStore(t, root, StoreOptions{AutoRefresh: false})
	ctx := context.Background()

	first, _ := store.Get(ctx)
	writeFile(t, path, packJSON("v2", "v2b"))

	// Without invalidation the store serves the cached catalog.
	cached, _ := store.Get(ctx)
	if cached != first {
		t.Fatal("watcher-mode store rebuilt without Invalidate")
	}

	store.Invalidate()
	fresh, _ := store.Get(ctx)
	if !fresh.Has("v2") {
		t.Errorf("post-invalidate catalog ids = %v, want v2", fresh.IDs())
	}
}

func TestStore_RebuildForces(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "styles", "packs", "10_a.json"), packJSON("r1"))

	store := testStore(t, root, StoreOptions{})
	ctx := context.Background()

	first, _ := store.Get(ctx)
	second, err := store.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild() error = %v, want nil", err)
	}
	if first == second {
		t.Error("Rebuild() returned the cached catalog")
	}
	if second.Version() != first.Version() {
		t.Error("identical sources produced different versions")
	}
}

func TestStore_OnSwapHook(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "styles", "packs", "10_a.json"), packJSON("hooked"))

	var mu sync.Mutex
	var swaps []struct{ prevNil bool }

	store := testStore(t, root, StoreOptions{
		OnSwap: func(previous, current *Catalog) {
			mu.Lock()
			defer mu.Unlock()
			swaps = append(swaps, struct{ prevNil bool }{previous == nil})
		},
	})
	ctx := context.Background()

	store.Get(ctx)
	store.Rebuild(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(swaps) != 2 {
		t.Fatalf("OnSwap called %d times, want 2", len(swaps))
	}
	if !swaps[0].prevNil {
		t.Error("first swap previous != nil")
	}
	if swaps[1].prevNil {
		t.Error("second swap previous == nil")
	}
}

func TestStore_ContextCancelled(t *testing.T) {
	root := t.TempDir()
	store := testStore(t, root, StoreOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Get(ctx); err == nil {
		t.Error("Get() with cancelled context error = nil, want context error")
	}
}

func TestStore_ConcurrentReadersSeeCompleteCatalogs(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "styles", "packs", "10_a.json")
	writeFile(t, path, packJSON("c1", "c2"))

	store := testStore(t, root, StoreOptions{AutoRefresh: true})
	ctx := context.Background()
	store.Get(ctx)

	var wg sync.WaitGroup
	errCh := make(chan string, 64)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				catalog, err := store.Get(ctx)
				if err != nil {
					errCh <- err.Error()
					return
				}
				// Sources only ever hold 2 or 3 styles; anything else
				// is a partially observed merge.
				if n := catalog.Count(); n != 2 && n != 3 {
					errCh <- catalog.Version()
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			content := packJSON("c1", "c2", "c3")
			if j%2 == 1 {
				content = packJSON("c1", "c2")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				errCh <- err.Error()
				return
			}
			store.Invalidate()
		}
	}()

	wg.Wait()
	close(errCh)

	for msg := range errCh {
		t.Errorf("reader observed inconsistent catalog state: %s", msg)
	}
}
