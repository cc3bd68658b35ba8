package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// SchedulerConfig contains configuration for the usage scheduler.
type SchedulerConfig struct {
	// RollupSchedule is the cron expression for folding raw events
	// into daily stats. Default: "*/5 * * * *"
	RollupSchedule string

	// PruneSchedule is the cron expression for deleting expired
	// events. Default: "0 3 * * *"
	PruneSchedule string

	// RetentionDays is how long raw events are kept. Zero or negative
	// disables pruning. Default: 30
	RetentionDays int

	// BatchSize is the number of events folded per rollup batch.
	// Default: 500
	BatchSize int
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		RollupSchedule: "*/5 * * * *",
		PruneSchedule:  "0 3 * * *",
		RetentionDays:  30,
		BatchSize:      500,
	}
}

// Scheduler runs the periodic usage jobs: rolling raw events up into
// per-style daily stats, and pruning events past the retention
// window. Rollups page through events by store sequence and advance a
// persisted cursor, so each event is folded exactly once even across
// restarts.
type Scheduler struct {
	events    EventStore
	stats     StatStore
	config    *SchedulerConfig
	collector *metrics.Collector
	cron      *cron.Cron
	rollupID  cron.EntryID
	pruneID   cron.EntryID
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a usage scheduler over the given stores. The
// collector is optional; pass nil to skip metrics.
func NewScheduler(events EventStore, stats StatStore, config *SchedulerConfig, logger *slog.Logger, collector *metrics.Collector) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		events:    events,
		stats:     stats,
		config:    config,
		collector: collector,
		cron:      cron.New(),
		logger:    logger.With("component", "usage.scheduler"),
	}
}

// Start validates the cron expressions, registers the jobs, and
// begins running them. The scheduler stops itself when ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return NewSchedulerError("start", fmt.Errorf("scheduler already running"))
	}

	if _, err := cron.ParseStandard(s.config.RollupSchedule); err != nil {
		return NewSchedulerError("rollup", fmt.Errorf("invalid schedule %q: %w", s.config.RollupSchedule, err))
	}
	if s.config.RetentionDays > 0 {
		if _, err := cron.ParseStandard(s.config.PruneSchedule); err != nil {
			return NewSchedulerError("prune", fmt.Errorf("invalid schedule %q: %w", s.config.PruneSchedule, err))
		}
	}

	rollupID, err := s.cron.AddFunc(s.config.RollupSchedule, func() {
		if _, err := s.RunRollup(context.Background()); err != nil {
			s.logger.Error("scheduled rollup failed", "error", err)
		}
	})
	if err != nil {
		return NewSchedulerError("rollup", err)
	}
	s.rollupID = rollupID

	if s.config.RetentionDays > 0 {
		pruneID, err := s.cron.AddFunc(s.config.PruneSchedule, func() {
			if _, err := s.RunPrune(context.Background()); err != nil {
				s.logger.Error("scheduled prune failed", "error", err)
			}
		})
		if err != nil {
			return NewSchedulerError("prune", err)
		}
		s.pruneID = pruneID
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("usage scheduler started",
		"rollup_schedule", s.config.RollupSchedule,
		"prune_schedule", s.config.PruneSchedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the cron schedule and waits for any running job to
// finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("usage scheduler stopped")
}

// RunRollup folds all events past the stats cursor into per-style
// daily counters and returns the number of stat rows written. It is
// safe to call concurrently with recording; events inserted while the
// rollup runs are picked up by the next one.
func (s *Scheduler) RunRollup(ctx context.Context) (int, error) {
	start := time.Now()

	cursor, err := s.stats.Cursor(ctx)
	if err != nil {
		s.recordRollup("error", start, 0)
		return 0, NewSchedulerError("rollup", err)
	}

	totalRows := 0
	for {
		batch, err := s.events.ListAfter(ctx, cursor, s.config.BatchSize)
		if err != nil {
			s.recordRollup("error", start, totalRows)
			return totalRows, NewSchedulerError("rollup", err)
		}
		if len(batch) == 0 {
			break
		}

		counts := aggregate(batch)
		cursor = batch[len(batch)-1].Seq

		if err := s.stats.Apply(ctx, counts, cursor); err != nil {
			s.recordRollup("error", start, totalRows)
			return totalRows, NewSchedulerError("rollup", err)
		}
		totalRows += len(counts)

		if len(batch) < s.config.BatchSize {
			break
		}
	}

	s.recordRollup("success", start, totalRows)
	s.updateStoreSizes()

	if totalRows > 0 {
		s.logger.Debug("rollup complete",
			"rows", totalRows,
			"cursor", cursor,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return totalRows, nil
}

// RunPrune deletes events recorded before the retention cutoff and
// returns the number of rows removed.
func (s *Scheduler) RunPrune(ctx context.Context) (int64, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		if s.collector != nil {
			s.collector.RecordPrune("error", 0)
		}
		return 0, NewSchedulerError("prune", err)
	}

	if s.collector != nil {
		s.collector.RecordPrune("success", deleted)
	}
	s.updateStoreSizes()

	if deleted > 0 {
		s.logger.Info("pruned expired usage events",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}

	return deleted, nil
}

// NextRollup returns when the next rollup is scheduled, or the zero
// time when the scheduler is not running.
func (s *Scheduler) NextRollup() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.rollupID).Next
}

// NextPrune returns when the next prune is scheduled, or the zero
// time when pruning is disabled or the scheduler is not running.
func (s *Scheduler) NextPrune() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.pruneID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.pruneID).Next
}

func (s *Scheduler) recordRollup(status string, start time.Time, rows int) {
	if s.collector != nil {
		s.collector.RecordRollup(status, time.Since(start), rows)
	}
}

func (s *Scheduler) updateStoreSizes() {
	if s.collector == nil {
		return
	}
	if size, err := s.events.SizeBytes(); err == nil {
		s.collector.UpdateStoreSize("events", size)
	}
	if size, err := s.stats.SizeBytes(); err == nil {
		s.collector.UpdateStoreSize("stats", size)
	}
}

// aggregate folds a batch of events into per-style, per-day counts.
// Events without a style id (pass-through resolutions) carry nothing
// to attribute and are skipped. Output order is deterministic.
func aggregate(events []*StoredEvent) []DayCount {
	type key struct {
		styleID string
		day     string
	}

	acc := make(map[key]*DayCount)
	for _, event := range events {
		if event.StyleID == "" {
			continue
		}
		k := key{styleID: event.StyleID, day: DayOf(event.RecordedAt)}
		count, ok := acc[k]
		if !ok {
			count = &DayCount{StyleID: k.styleID, Day: k.day}
			acc[k] = count
		}
		count.Resolutions++
		if event.Applied {
			count.Applied++
		}
		count.PromptChars += int64(event.PromptChars)
	}

	counts := make([]DayCount, 0, len(acc))
	for _, count := range acc {
		counts = append(counts, *count)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].StyleID != counts[j].StyleID {
			return counts[i].StyleID < counts[j].StyleID
		}
		return counts[i].Day < counts[j].Day
	})

	return counts
}
