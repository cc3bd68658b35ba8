// Package catalog discovers, merges, and serves style packs as one
// immutable, atomically replaceable catalog.
//
// The package covers the full catalog lifecycle: a Loader reads pack
// documents from a directory (falling back to a single legacy document when
// the directory yields nothing usable), a merge step folds them into an
// id-keyed table with deterministic last-wins precedence, an index step
// derives the sorted display listing, and a Store guards the result behind
// a single cache cell with cheap staleness detection and atomic swap.
//
// # Load Order and Precedence
//
// Pack files merge in lexicographic filename order, and the order is load
// precedence, not cosmetics: when two files define the same style id, the
// later file wins and the replacement is recorded as a diagnostic. Pack
// authors exploit this by numbering files:
//
//	styles/packs/
//	├── 10_core.json
//	├── 20_photography.json
//	└── 99_user_custom.json   // overrides anything above
//
// # Error Recovery
//
// Loading never aborts on bad input. A file that fails to parse is skipped
// with a diagnostic; a malformed entry is skipped while its siblings load;
// a duplicate id is resolved last-wins with a diagnostic. The only outcome
// of a fully broken source tree is an empty catalog, which is a degraded
// state, not an error.
//
// # Lifecycle and Concurrency
//
// The Store owns the current catalog: uninitialized until first use, built
// lazily, marked stale when the source signature (per-file path, mtime,
// size) changes, and rebuilt atomically. Concurrent readers during a
// rebuild observe either the previous complete catalog or the new one,
// never a partially merged state. Catalogs and their entries are immutable
// after construction, so readers need no locking beyond the swap guard.
//
// A Watcher can drive invalidation from file system events (debounced to
// absorb editor save storms) as an alternative to per-access staleness
// checks; server deployments run the watcher, library consumers usually
// rely on the lazy check.
package catalog
