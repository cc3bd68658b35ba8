package catalog

import (
	"fmt"
	"strings"
)

// SourceError represents a file system failure while reading a pack
// source: missing directory, permission denied, oversized or non-regular
// files. Source errors on individual files are recovered (the file is
// skipped); only a completely unreadable configuration surfaces one.
type SourceError struct {
	// Path is the file or directory that failed
	Path string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pack source %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("pack source %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// DuplicateIDError records a style id defined by more than one source.
// It is warning-grade: the later definition wins and loading continues.
type DuplicateIDError struct {
	// StyleID is the colliding id
	StyleID string

	// PreviousSource is the file whose definition was replaced
	PreviousSource string

	// WinningSource is the file whose definition won
	WinningSource string
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate style id %q: definition from %q replaced by %q",
		e.StyleID, e.PreviousSource, e.WinningSource)
}

// ErrorList contains multiple errors from a load cycle, where some files
// may succeed and others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is
// one, or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
