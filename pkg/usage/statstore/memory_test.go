package statstore

import (
	"context"
	"testing"

	"mercator-hq/ganymede/pkg/usage"
)

var _ usage.StatStore = (*MemoryBackend)(nil)

func TestMemoryBackend_ApplyAndTopStyles(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	ctx := context.Background()
	counts := []usage.DayCount{
		{StyleID: "terse", Day: "2026-03-01", Resolutions: 3, Applied: 2, PromptChars: 120},
		{StyleID: "academic", Day: "2026-03-02", Resolutions: 5, Applied: 5, PromptChars: 300},
	}
	if err := backend.Apply(ctx, counts, 8); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	cursor, err := backend.Cursor(ctx)
	if err != nil {
		t.Fatalf("Cursor() failed: %v", err)
	}
	if cursor != 8 {
		t.Errorf("expected cursor 8, got %d", cursor)
	}

	totals, err := backend.TopStyles(ctx, "2026-03-01", 10)
	if err != nil {
		t.Fatalf("TopStyles() failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(totals))
	}
	if totals[0].StyleID != "academic" || totals[0].Resolutions != 5 {
		t.Errorf("unexpected leader: %+v", totals[0])
	}
	if totals[1].LastDay != "2026-03-01" {
		t.Errorf("expected last day 2026-03-01 for terse, got %q", totals[1].LastDay)
	}
}

func TestMemoryBackend_ApplyRejectsStaleCursor(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	ctx := context.Background()
	counts := []usage.DayCount{{StyleID: "terse", Day: "2026-03-01", Resolutions: 1, Applied: 1}}

	if err := backend.Apply(ctx, counts, 2); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if err := backend.Apply(ctx, counts, 2); err == nil {
		t.Fatal("expected error applying stale cursor")
	}

	totals, _ := backend.TopStyles(ctx, "2026-03-01", 10)
	if len(totals) != 1 || totals[0].Resolutions != 1 {
		t.Errorf("expected totals unchanged, got %+v", totals)
	}
}

func TestMemoryBackend_TopStylesSinceFilter(t *testing.T) {
	backend := NewMemoryBackend()
	defer backend.Close()

	ctx := context.Background()
	counts := []usage.DayCount{
		{StyleID: "terse", Day: "2026-02-15", Resolutions: 10, Applied: 10},
		{StyleID: "terse", Day: "2026-03-01", Resolutions: 1, Applied: 1},
	}
	if err := backend.Apply(ctx, counts, 11); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	totals, err := backend.TopStyles(ctx, "2026-03-01", 10)
	if err != nil {
		t.Fatalf("TopStyles() failed: %v", err)
	}
	if len(totals) != 1 || totals[0].Resolutions != 1 {
		t.Errorf("expected only in-window resolutions, got %+v", totals)
	}
}
