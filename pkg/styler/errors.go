package styler

import (
	"fmt"
	"strings"
)

// StyleNotFoundError indicates the requested style id has no match in the
// catalog. Raised for explicit overrides and stale dropdown selections
// alike; an explicit style request is never silently ignored.
type StyleNotFoundError struct {
	// StyleID is the id that failed to resolve. Empty when no selection
	// was supplied at all.
	StyleID string

	// Suggestions holds the closest known ids by edit distance, nearest
	// first. Empty when nothing in the catalog is plausibly close.
	Suggestions []string

	// CatalogEmpty reports whether the lookup ran against an empty
	// catalog, which degrades listings but never excuses a miss.
	CatalogEmpty bool
}

// Error returns the error message.
func (e *StyleNotFoundError) Error() string {
	switch {
	case e.StyleID == "":
		return "no style selected"
	case e.CatalogEmpty:
		return fmt.Sprintf("style not found: %q (catalog is empty)", e.StyleID)
	case len(e.Suggestions) > 0:
		return fmt.Sprintf("style not found: %q (did you mean %s?)", e.StyleID, strings.Join(e.Suggestions, ", "))
	default:
		return fmt.Sprintf("style not found: %q", e.StyleID)
	}
}

// TemplateUnavailableError indicates a style exists but registers a
// template for neither the requested variant nor the default variant.
type TemplateUnavailableError struct {
	// StyleID is the style that resolved.
	StyleID string

	// Variant is the variant that was requested.
	Variant string

	// Available lists the variants the style does register, sorted.
	Available []string
}

// Error returns the error message.
func (e *TemplateUnavailableError) Error() string {
	if len(e.Available) > 0 {
		return fmt.Sprintf("style %q has no template for variant %q or %q (available: %s)",
			e.StyleID, e.Variant, "default", strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("style %q has no usable template for variant %q", e.StyleID, e.Variant)
}
