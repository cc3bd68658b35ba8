package storage

import (
	"context"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/usage"
)

// MemoryStorage implements the usage.EventStore interface with an
// in-memory slice. It is intended for testing and should not be used
// in production.
type MemoryStorage struct {
	mu      sync.RWMutex
	events  []*usage.StoredEvent
	nextSeq int64
	closed  bool
}

// NewMemoryStorage creates a new in-memory event store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Insert persists one event in memory.
func (s *MemoryStorage) Insert(ctx context.Context, event *usage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return usage.ErrStoreClosed
	}

	s.nextSeq++
	stored := &usage.StoredEvent{Event: *event, Seq: s.nextSeq}
	s.events = append(s.events, stored)
	return nil
}

// ListAfter returns up to limit events with a sequence strictly
// greater than seq, in sequence order.
func (s *MemoryStorage) ListAfter(ctx context.Context, seq int64, limit int) ([]*usage.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, usage.ErrStoreClosed
	}
	if limit <= 0 {
		limit = 100
	}

	results := []*usage.StoredEvent{}
	for _, event := range s.events {
		if event.Seq <= seq {
			continue
		}
		eventCopy := *event
		results = append(results, &eventCopy)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// Recent returns the newest events, newest first.
func (s *MemoryStorage) Recent(ctx context.Context, limit int) ([]*usage.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, usage.ErrStoreClosed
	}
	if limit <= 0 {
		limit = 100
	}

	results := []*usage.StoredEvent{}
	for i := len(s.events) - 1; i >= 0 && len(results) < limit; i-- {
		eventCopy := *s.events[i]
		results = append(results, &eventCopy)
	}
	return results, nil
}

// Count returns the total number of stored events.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, usage.ErrStoreClosed
	}
	return int64(len(s.events)), nil
}

// DeleteBefore removes events recorded before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, usage.ErrStoreClosed
	}

	kept := s.events[:0]
	var deleted int64
	for _, event := range s.events {
		if event.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, event)
	}
	s.events = kept
	return deleted, nil
}

// SizeBytes always reports zero for the memory store.
func (s *MemoryStorage) SizeBytes() (int64, error) {
	return 0, nil
}

// Ping always succeeds unless the store is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return usage.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
