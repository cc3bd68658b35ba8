package catalog

import "fmt"

// Outcome classifies what happened to one source file or entry during a
// load cycle.
type Outcome string

const (
	// OutcomeLoaded marks a file that parsed and contributed entries.
	OutcomeLoaded Outcome = "loaded"

	// OutcomeSkippedFile marks a file rejected as a whole (unreadable,
	// invalid document, wrong envelope shape).
	OutcomeSkippedFile Outcome = "skipped_file"

	// OutcomeSkippedEntry marks a single entry rejected by schema
	// validation while its siblings loaded.
	OutcomeSkippedEntry Outcome = "skipped_entry"

	// OutcomeDuplicateID marks a style id defined by an earlier source
	// and replaced by a later one (last-wins).
	OutcomeDuplicateID Outcome = "duplicate_id"

	// OutcomeLegacyFallback marks a load that fell back to the legacy
	// single-document source.
	OutcomeLegacyFallback Outcome = "legacy_fallback"
)

// Diagnostic is one observable load event: which file, what happened, and
// enough detail to act on it. Diagnostics are advisory; none of them abort
// a load.
type Diagnostic struct {
	// File is the source file the event concerns.
	File string

	// Outcome classifies the event.
	Outcome Outcome

	// StyleID names the affected entry for entry-level events.
	StyleID string

	// Detail is a human-readable explanation.
	Detail string

	// Err carries the underlying typed error, when one exists.
	Err error
}

// String formats the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	if d.StyleID != "" {
		return fmt.Sprintf("%s: %s (style %q): %s", d.File, d.Outcome, d.StyleID, d.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", d.File, d.Outcome, d.Detail)
}
