package catalog

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"mercator-hq/ganymede/pkg/pack"
)

// Catalog is the immutable, fully merged style table: an id-keyed entry
// map plus the category-ordered display index. Catalogs are built once
// per load cycle and shared by reference; nothing mutates them after
// construction.
type Catalog struct {
	entries     map[string]*pack.StyleEntry
	display     []Choice
	version     string
	signature   Signature
	builtAt     time.Time
	diagnostics []Diagnostic
	fromLegacy  bool
}

// Build merges the documents of a load cycle into a catalog. Documents
// are consumed in load order; when two sources define the same style id,
// the later definition replaces the earlier one and the replacement is
// recorded as a diagnostic (last-wins). A document with zero valid
// entries never blocks the merge of its successors.
func Build(result *LoadResult) *Catalog {
	entries := make(map[string]*pack.StyleEntry)
	diagnostics := append([]Diagnostic(nil), result.Diagnostics...)

	for _, doc := range result.Documents {
		for i := range doc.Styles {
			entry := &doc.Styles[i]
			if prev, ok := entries[entry.ID]; ok {
				diagnostics = append(diagnostics, Diagnostic{
					File:    entry.Source,
					Outcome: OutcomeDuplicateID,
					StyleID: entry.ID,
					Detail:  fmt.Sprintf("replaces definition from %s", prev.Source),
					Err: &DuplicateIDError{
						StyleID:        entry.ID,
						PreviousSource: prev.Source,
						WinningSource:  entry.Source,
					},
				})
			}
			entries[entry.ID] = entry
		}
	}

	return &Catalog{
		entries:     entries,
		display:     buildIndex(entries),
		version:     computeVersion(entries),
		signature:   result.Signature,
		builtAt:     time.Now(),
		diagnostics: diagnostics,
		fromLegacy:  result.FromLegacy,
	}
}

// Empty returns a catalog with no entries and no source signature. Used
// as the pre-initialization state and in tests.
func Empty() *Catalog {
	return &Catalog{
		entries: make(map[string]*pack.StyleEntry),
		display: buildIndex(nil),
		version: computeVersion(nil),
		builtAt: time.Now(),
	}
}

// Get retrieves a style entry by exact id.
func (c *Catalog) Get(id string) (*pack.StyleEntry, bool) {
	entry, ok := c.entries[id]
	return entry, ok
}

// Has reports whether the id exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.entries[id]
	return ok
}

// Count returns the number of styles in the catalog.
func (c *Catalog) Count() int {
	return len(c.entries)
}

// IsEmpty reports whether the catalog holds no styles. An empty catalog
// is a degraded state, not an error.
func (c *Catalog) IsEmpty() bool {
	return len(c.entries) == 0
}

// IDs returns every style id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Choices returns the display listing in category order. An empty
// catalog yields the single placeholder choice so selection surfaces
// always have something to show.
func (c *Catalog) Choices() []Choice {
	if len(c.display) == 0 {
		return []Choice{placeholderChoice()}
	}
	return c.display
}

// Entries returns the style entries in display order.
func (c *Catalog) Entries() []*pack.StyleEntry {
	entries := make([]*pack.StyleEntry, 0, len(c.display))
	for _, choice := range c.display {
		if entry, ok := c.entries[choice.ID]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ByCategoryPrefix returns the entries whose category equals the prefix
// or sits beneath it in the slash-delimited category path, in display
// order. Matching is case-insensitive and segment-aware: "Photo" does
// not match "Photography".
func (c *Catalog) ByCategoryPrefix(prefix string) []*pack.StyleEntry {
	if prefix == "" {
		return c.Entries()
	}

	var entries []*pack.StyleEntry
	for _, choice := range c.display {
		entry, ok := c.entries[choice.ID]
		if !ok {
			continue
		}
		if categoryHasPrefix(entry.Category, prefix) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Categories returns the distinct categories in sorted order with their
// style counts.
func (c *Catalog) Categories() []CategoryCount {
	counts := make(map[string]int)
	for _, entry := range c.entries {
		counts[entry.Category]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]CategoryCount, 0, len(names))
	for _, name := range names {
		result = append(result, CategoryCount{Category: name, Count: counts[name]})
	}
	return result
}

// CategoryCount pairs a category path with its style count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Version returns the 16-hex-character content hash of the catalog. The
// version changes whenever the merged entry set changes.
func (c *Catalog) Version() string {
	return c.version
}

// Signature returns the source modification signature captured at load
// time.
func (c *Catalog) Signature() Signature {
	return c.signature
}

// BuiltAt returns when the catalog was constructed.
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

// Diagnostics returns the load and merge diagnostics for this catalog.
func (c *Catalog) Diagnostics() []Diagnostic {
	return c.diagnostics
}

// FromLegacy reports whether the catalog was loaded from the legacy
// fallback document rather than the packs directory.
func (c *Catalog) FromLegacy() bool {
	return c.fromLegacy
}

// Stats summarizes the catalog for health and CLI reporting.
func (c *Catalog) Stats() Stats {
	return Stats{
		StyleCount:      len(c.entries),
		CategoryCount:   len(c.Categories()),
		DiagnosticCount: len(c.diagnostics),
		Version:         c.version,
		BuiltAt:         c.builtAt,
		FromLegacy:      c.fromLegacy,
	}
}

// Stats contains summary statistics about a catalog.
type Stats struct {
	StyleCount      int       `json:"style_count"`
	CategoryCount   int       `json:"category_count"`
	DiagnosticCount int       `json:"diagnostic_count"`
	Version         string    `json:"version"`
	BuiltAt         time.Time `json:"built_at"`
	FromLegacy      bool      `json:"from_legacy"`
}

// computeVersion hashes the merged entry set into a short stable
// identifier. Sorted ids keep the hash deterministic across map order.
func computeVersion(entries map[string]*pack.StyleEntry) string {
	h := sha256.New()

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry := entries[id]
		h.Write([]byte(entry.ID))
		h.Write([]byte{0})
		h.Write([]byte(entry.Name))
		h.Write([]byte{0})
		h.Write([]byte(entry.Source))
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
