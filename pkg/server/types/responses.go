// Package types defines the wire types of the HTTP API: response bodies
// for the style and catalog endpoints and the shared error envelope.
// Resolution requests and results reuse the styler package types, which
// already carry JSON tags.
package types

import "time"

// StyleSummary is one style in API responses: identity, display label,
// and the variants and tags it registers. Template text is never exposed.
type StyleSummary struct {
	// ID is the stable style identifier.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Category is the slash-delimited category path.
	Category string `json:"category"`

	// Label is the display listing label ("<category> | <name> | <id>").
	Label string `json:"label"`

	// Variants lists the registered template variants, sorted.
	Variants []string `json:"variants"`

	// Tags carries the informational labels, if any.
	Tags []string `json:"tags,omitempty"`

	// Source is the pack file the winning definition was loaded from.
	Source string `json:"source,omitempty"`
}

// StyleListResponse is the body of GET /v1/styles.
type StyleListResponse struct {
	// Styles holds the matching styles in display order.
	Styles []StyleSummary `json:"styles"`

	// Count is the number of styles returned.
	Count int `json:"count"`

	// Category echoes the category prefix filter, when one was given.
	Category string `json:"category,omitempty"`

	// CatalogVersion is the content version the listing was served from.
	CatalogVersion string `json:"catalog_version"`
}

// CatalogResponse is the body of GET /v1/catalog.
type CatalogResponse struct {
	// Version is the 16-hex-character content hash of the catalog.
	Version string `json:"version"`

	// BuiltAt is when the catalog was constructed.
	BuiltAt time.Time `json:"built_at"`

	// StyleCount is the number of merged styles.
	StyleCount int `json:"style_count"`

	// CategoryCount is the number of distinct categories.
	CategoryCount int `json:"category_count"`

	// PackFileCount is the number of source files that contributed
	// entries.
	PackFileCount int `json:"pack_file_count"`

	// FromLegacy reports whether the catalog was loaded from the legacy
	// single-document fallback.
	FromLegacy bool `json:"from_legacy"`

	// Empty reports whether the catalog holds no styles. An empty
	// catalog is a degraded state, not an error.
	Empty bool `json:"empty"`

	// Diagnostics lists the load and merge events of the build.
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
}

// DiagnosticInfo is one catalog load event in API responses.
type DiagnosticInfo struct {
	// File is the source file the event concerns.
	File string `json:"file"`

	// Outcome classifies the event ("loaded", "skipped_file",
	// "skipped_entry", "duplicate_id", "legacy_fallback").
	Outcome string `json:"outcome"`

	// StyleID names the affected entry for entry-level events.
	StyleID string `json:"style_id,omitempty"`

	// Detail is a human-readable explanation.
	Detail string `json:"detail"`
}

// ReloadResponse is the body of POST /v1/catalog/reload.
type ReloadResponse struct {
	// Status is "reloaded" on success.
	Status string `json:"status"`

	// Version is the content version of the rebuilt catalog.
	Version string `json:"version"`

	// StyleCount is the number of styles after the reload.
	StyleCount int `json:"style_count"`

	// DiagnosticCount is the number of load diagnostics emitted.
	DiagnosticCount int `json:"diagnostic_count"`

	// DurationMs is the rebuild duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}
