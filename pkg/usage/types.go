package usage

import (
	"context"
	"time"
)

// Resolution outcomes recorded on usage events. These mirror the
// outcome label of the resolution metrics so events and metrics can
// be cross-referenced.
const (
	// OutcomeResolved means a style was applied to the prompt.
	OutcomeResolved = "resolved"

	// OutcomeNotFound means the requested style id had no match.
	OutcomeNotFound = "not_found"

	// OutcomeTemplateUnavailable means the style exists but registers
	// no usable template for the requested or default variant.
	OutcomeTemplateUnavailable = "template_unavailable"

	// OutcomePassThrough means styling was disabled and the prompt
	// passed through unchanged.
	OutcomePassThrough = "pass_through"

	// OutcomeError means resolution failed for an internal reason,
	// such as the catalog being unavailable.
	OutcomeError = "error"
)

// Event is one recorded resolution. Events carry no prompt text, only
// shape metadata, so the stores never hold user content.
type Event struct {
	// ID is a UUID assigned at record time.
	ID string `json:"id"`

	// RequestID correlates the event with server logs and traces.
	RequestID string `json:"request_id,omitempty"`

	// RecordedAt is when the resolution completed.
	RecordedAt time.Time `json:"recorded_at"`

	// StyleID is the style the request addressed. For not-found
	// outcomes this is the id that failed to resolve.
	StyleID string `json:"style_id,omitempty"`

	// Variant is the variant that applied, or the one requested when
	// resolution failed.
	Variant string `json:"variant,omitempty"`

	// TemplateKind is the template family that produced the output.
	TemplateKind string `json:"template_kind,omitempty"`

	// Applied reports whether a style transformed the prompt.
	Applied bool `json:"applied"`

	// Outcome is one of the Outcome* constants.
	Outcome string `json:"outcome"`

	// PromptChars is the length of the incoming prompt in bytes.
	PromptChars int `json:"prompt_chars"`

	// CatalogVersion is the catalog content version the request
	// resolved against.
	CatalogVersion string `json:"catalog_version,omitempty"`
}

// StoredEvent is an event read back from the store, carrying the
// monotonic sequence number the store assigned on insert. Rollups
// page through events by sequence so late writes are never skipped.
type StoredEvent struct {
	Event

	// Seq is the store-assigned insertion sequence.
	Seq int64 `json:"seq"`
}

// EventStore persists raw usage events. Implementations must be safe
// for concurrent use.
type EventStore interface {
	// Insert persists one event.
	Insert(ctx context.Context, event *Event) error

	// ListAfter returns up to limit events with a sequence strictly
	// greater than seq, in sequence order.
	ListAfter(ctx context.Context, seq int64, limit int) ([]*StoredEvent, error)

	// Recent returns the newest events, newest first.
	Recent(ctx context.Context, limit int) ([]*StoredEvent, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes events recorded before the cutoff and
	// returns how many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// SizeBytes reports the on-disk size of the store.
	SizeBytes() (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// DayCount is the per-style, per-day increment a rollup applies.
type DayCount struct {
	// StyleID identifies the style.
	StyleID string `json:"style_id"`

	// Day is the UTC day in YYYY-MM-DD form.
	Day string `json:"day"`

	// Resolutions counts all recorded resolutions for the style.
	Resolutions int64 `json:"resolutions"`

	// Applied counts resolutions that transformed the prompt.
	Applied int64 `json:"applied"`

	// PromptChars sums the prompt lengths seen.
	PromptChars int64 `json:"prompt_chars"`
}

// StyleTotal is an aggregated per-style row answered by the stat
// store.
type StyleTotal struct {
	// StyleID identifies the style.
	StyleID string `json:"style_id"`

	// Resolutions is the total resolution count in the window.
	Resolutions int64 `json:"resolutions"`

	// Applied is the applied-resolution count in the window.
	Applied int64 `json:"applied"`

	// LastDay is the most recent day with activity.
	LastDay string `json:"last_day"`
}

// StatStore persists per-style daily rollups. Implementations must be
// safe for concurrent use.
type StatStore interface {
	// Apply upserts the given increments and advances the rollup
	// cursor in a single transaction, so a crash between the two
	// never double-counts.
	Apply(ctx context.Context, counts []DayCount, cursor int64) error

	// Cursor returns the sequence of the last event folded into the
	// rollups, 0 when no rollup has run.
	Cursor(ctx context.Context) (int64, error)

	// TopStyles returns the most-resolved styles since the given day
	// (inclusive, YYYY-MM-DD), ordered by resolution count.
	TopStyles(ctx context.Context, sinceDay string, limit int) ([]StyleTotal, error)

	// SizeBytes reports the on-disk size of the store.
	SizeBytes() (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// DayOf formats a timestamp as the UTC rollup day.
func DayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
