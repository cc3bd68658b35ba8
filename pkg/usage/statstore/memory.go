package statstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mercator-hq/ganymede/pkg/usage"
)

// MemoryBackend implements the usage.StatStore interface with an
// in-memory map. It is intended for testing and should not be used in
// production.
type MemoryBackend struct {
	mu     sync.Mutex
	stats  map[string]*usage.DayCount
	cursor int64
}

// NewMemoryBackend creates a new in-memory stat store.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		stats: make(map[string]*usage.DayCount),
	}
}

func statKey(styleID, day string) string {
	return styleID + "\x00" + day
}

// Apply upserts the given increments and advances the cursor. Like
// the SQLite backend, a cursor that does not move forward is
// rejected.
func (m *MemoryBackend) Apply(ctx context.Context, counts []usage.DayCount, cursor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cursor <= m.cursor {
		return usage.NewStorageError("stats", "apply",
			fmt.Errorf("cursor %d does not advance past %d", cursor, m.cursor))
	}

	for _, count := range counts {
		key := statKey(count.StyleID, count.Day)
		existing, ok := m.stats[key]
		if !ok {
			existing = &usage.DayCount{StyleID: count.StyleID, Day: count.Day}
			m.stats[key] = existing
		}
		existing.Resolutions += count.Resolutions
		existing.Applied += count.Applied
		existing.PromptChars += count.PromptChars
	}
	m.cursor = cursor

	return nil
}

// Cursor returns the last applied cursor.
func (m *MemoryBackend) Cursor(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, nil
}

// TopStyles returns the most-resolved styles since the given day.
func (m *MemoryBackend) TopStyles(ctx context.Context, sinceDay string, limit int) ([]usage.StyleTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	byStyle := make(map[string]*usage.StyleTotal)
	for _, count := range m.stats {
		if count.Day < sinceDay {
			continue
		}
		total, ok := byStyle[count.StyleID]
		if !ok {
			total = &usage.StyleTotal{StyleID: count.StyleID}
			byStyle[count.StyleID] = total
		}
		total.Resolutions += count.Resolutions
		total.Applied += count.Applied
		if count.Day > total.LastDay {
			total.LastDay = count.Day
		}
	}

	totals := make([]usage.StyleTotal, 0, len(byStyle))
	for _, total := range byStyle {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Resolutions != totals[j].Resolutions {
			return totals[i].Resolutions > totals[j].Resolutions
		}
		return totals[i].StyleID < totals[j].StyleID
	})

	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

// SizeBytes always reports zero for the memory backend.
func (m *MemoryBackend) SizeBytes() (int64, error) {
	return 0, nil
}

// Ping always succeeds for the memory backend.
func (m *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
