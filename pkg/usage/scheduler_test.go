package usage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/usage"
	"mercator-hq/ganymede/pkg/usage/statstore"
	"mercator-hq/ganymede/pkg/usage/storage"
)

func insertEvent(t *testing.T, store usage.EventStore, styleID string, at time.Time, applied bool, chars int) {
	t.Helper()
	event := &usage.Event{
		ID:          "ev-" + at.Format("20060102150405.000000000") + "-" + styleID,
		RecordedAt:  at,
		StyleID:     styleID,
		Applied:     applied,
		Outcome:     usage.OutcomeResolved,
		PromptChars: chars,
	}
	if !applied && styleID == "" {
		event.Outcome = usage.OutcomePassThrough
	}
	if err := store.Insert(context.Background(), event); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
}

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := usage.DefaultSchedulerConfig()

	if cfg.RollupSchedule != "*/5 * * * *" {
		t.Errorf("expected rollup schedule '*/5 * * * *', got %q", cfg.RollupSchedule)
	}
	if cfg.PruneSchedule != "0 3 * * *" {
		t.Errorf("expected prune schedule '0 3 * * *', got %q", cfg.PruneSchedule)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("expected retention 30 days, got %d", cfg.RetentionDays)
	}
	if cfg.BatchSize != 500 {
		t.Errorf("expected batch size 500, got %d", cfg.BatchSize)
	}
}

func TestScheduler_RunRollup(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	insertEvent(t, events, "terse", day1, true, 100)
	insertEvent(t, events, "terse", day1, true, 50)
	insertEvent(t, events, "academic", day1, true, 200)
	insertEvent(t, events, "terse", day2, false, 10)

	rows, err := sched.RunRollup(context.Background())
	if err != nil {
		t.Fatalf("RunRollup() failed: %v", err)
	}
	if rows != 3 {
		t.Errorf("expected 3 stat rows, got %d", rows)
	}

	cursor, err := stats.Cursor(context.Background())
	if err != nil {
		t.Fatalf("Cursor() failed: %v", err)
	}
	if cursor != 4 {
		t.Errorf("expected cursor 4, got %d", cursor)
	}

	totals, err := stats.TopStyles(context.Background(), "2026-03-01", 10)
	if err != nil {
		t.Fatalf("TopStyles() failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(totals))
	}
	if totals[0].StyleID != "terse" || totals[0].Resolutions != 3 || totals[0].Applied != 2 {
		t.Errorf("unexpected top style: %+v", totals[0])
	}
	if totals[1].StyleID != "academic" || totals[1].Resolutions != 1 {
		t.Errorf("unexpected second style: %+v", totals[1])
	}
	if totals[0].LastDay != "2026-03-02" {
		t.Errorf("expected last day 2026-03-02 for terse, got %q", totals[0].LastDay)
	}
}

func TestScheduler_RunRollup_Empty(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	rows, err := sched.RunRollup(context.Background())
	if err != nil {
		t.Fatalf("RunRollup() failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows, got %d", rows)
	}

	cursor, _ := stats.Cursor(context.Background())
	if cursor != 0 {
		t.Errorf("expected cursor to stay 0, got %d", cursor)
	}
}

func TestScheduler_RunRollup_Batches(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	cfg := usage.DefaultSchedulerConfig()
	cfg.BatchSize = 2

	sched := usage.NewScheduler(events, stats, cfg, nil, nil)

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertEvent(t, events, "terse", day.Add(time.Duration(i)*time.Minute), true, 10)
	}

	rows, err := sched.RunRollup(context.Background())
	if err != nil {
		t.Fatalf("RunRollup() failed: %v", err)
	}
	// One stat row per batch: batches of 2, 2, and 1.
	if rows != 3 {
		t.Errorf("expected 3 stat rows across batches, got %d", rows)
	}

	cursor, _ := stats.Cursor(context.Background())
	if cursor != 5 {
		t.Errorf("expected cursor 5, got %d", cursor)
	}

	totals, _ := stats.TopStyles(context.Background(), "2026-03-01", 10)
	if len(totals) != 1 || totals[0].Resolutions != 5 {
		t.Fatalf("expected terse with 5 resolutions, got %+v", totals)
	}
}

func TestScheduler_RunRollup_Idempotent(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertEvent(t, events, "terse", day, true, 10)

	if _, err := sched.RunRollup(context.Background()); err != nil {
		t.Fatalf("first RunRollup() failed: %v", err)
	}

	rows, err := sched.RunRollup(context.Background())
	if err != nil {
		t.Fatalf("second RunRollup() failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected second rollup to fold nothing, got %d rows", rows)
	}

	totals, _ := stats.TopStyles(context.Background(), "2026-03-01", 10)
	if len(totals) != 1 || totals[0].Resolutions != 1 {
		t.Fatalf("expected terse with 1 resolution after repeat rollup, got %+v", totals)
	}
}

func TestScheduler_RunRollup_CursorPassesUnattributedEvents(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	// A pass-through event carries no style, but the cursor still has
	// to move past it.
	insertEvent(t, events, "", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false, 10)

	rows, err := sched.RunRollup(context.Background())
	if err != nil {
		t.Fatalf("RunRollup() failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 stat rows, got %d", rows)
	}

	cursor, _ := stats.Cursor(context.Background())
	if cursor != 1 {
		t.Errorf("expected cursor 1, got %d", cursor)
	}
}

func TestScheduler_RunPrune(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	now := time.Now().UTC()
	insertEvent(t, events, "terse", now.AddDate(0, 0, -40), true, 10)
	insertEvent(t, events, "terse", now.AddDate(0, 0, -35), true, 10)
	insertEvent(t, events, "terse", now.AddDate(0, 0, -1), true, 10)

	deleted, err := sched.RunPrune(context.Background())
	if err != nil {
		t.Fatalf("RunPrune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted events, got %d", deleted)
	}

	count, _ := events.Count(context.Background())
	if count != 1 {
		t.Errorf("expected 1 remaining event, got %d", count)
	}
}

func TestScheduler_RunPrune_RetentionDisabled(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	cfg := usage.DefaultSchedulerConfig()
	cfg.RetentionDays = 0

	sched := usage.NewScheduler(events, stats, cfg, nil, nil)

	insertEvent(t, events, "terse", time.Now().UTC().AddDate(0, 0, -400), true, 10)

	deleted, err := sched.RunPrune(context.Background())
	if err != nil {
		t.Fatalf("RunPrune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected no deletions with retention disabled, got %d", deleted)
	}

	count, _ := events.Count(context.Background())
	if count != 1 {
		t.Errorf("expected event retained, got count %d", count)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if sched.NextRollup().IsZero() {
		t.Error("expected next rollup time after start")
	}
	if sched.NextPrune().IsZero() {
		t.Error("expected next prune time after start")
	}

	if err := sched.Start(context.Background()); err == nil {
		t.Error("expected error starting scheduler twice")
	}

	sched.Stop()

	if !sched.NextRollup().IsZero() {
		t.Error("expected zero next rollup time after stop")
	}

	// Second stop is a no-op.
	sched.Stop()
}

func TestScheduler_StartInvalidSchedule(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usage.SchedulerConfig)
	}{
		{
			name:   "bad rollup schedule",
			mutate: func(cfg *usage.SchedulerConfig) { cfg.RollupSchedule = "not a schedule" },
		},
		{
			name:   "bad prune schedule",
			mutate: func(cfg *usage.SchedulerConfig) { cfg.PruneSchedule = "99 99 * * *" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := usage.DefaultSchedulerConfig()
			tt.mutate(cfg)

			sched := usage.NewScheduler(storage.NewMemoryStorage(), statstore.NewMemoryBackend(), cfg, nil, nil)
			err := sched.Start(context.Background())
			if err == nil {
				t.Fatal("expected error for invalid schedule")
			}

			var schedErr *usage.SchedulerError
			if !errors.As(err, &schedErr) {
				t.Errorf("expected SchedulerError, got %T", err)
			}
		})
	}
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	events := storage.NewMemoryStorage()
	stats := statstore.NewMemoryBackend()
	sched := usage.NewScheduler(events, stats, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	waitFor(t, 2*time.Second, func() bool { return sched.NextRollup().IsZero() })
}
