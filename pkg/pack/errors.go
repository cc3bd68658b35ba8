package pack

import (
	"fmt"
	"strings"
)

// ParseError represents a document-level decode failure: unreadable data,
// invalid JSON or YAML, or an envelope that is not a pack document. The
// whole file is skipped; loading of sibling files continues.
type ParseError struct {
	// FilePath is the path to the document that failed to parse
	FilePath string

	// Format is the codec that was attempted ("json" or "yaml")
	Format string

	// Message describes the parse failure
	Message string

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse pack %q as %s: %s: %v", e.FilePath, e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse pack %q as %s: %s", e.FilePath, e.Format, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// EntryError represents a schema validation failure for a single entry
// within an otherwise valid document. The entry is skipped; sibling
// entries in the same document still load.
type EntryError struct {
	// FilePath is the path to the document containing the entry
	FilePath string

	// Index is the zero-based position of the entry in the document's
	// styles sequence
	Index int

	// StyleID is the entry's id, when it could be determined
	StyleID string

	// Field is the field that failed validation, when one is identifiable
	Field string

	// Message describes the validation failure
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	parts := []string{fmt.Sprintf("invalid style entry %d in %q", e.Index, e.FilePath)}

	if e.StyleID != "" {
		parts = append(parts, fmt.Sprintf("(id %q)", e.StyleID))
	}

	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %s:", e.Field))
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, " ")
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *EntryError) Unwrap() error {
	return e.Cause
}
