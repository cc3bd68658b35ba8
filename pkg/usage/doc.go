// Package usage records style resolution events and maintains
// per-style daily statistics.
//
// # Recording
//
// The Recorder sits beside the resolution path. Each resolution
// produces one Event describing what was asked for and what happened,
// never the prompt text itself. Events are buffered on a channel and
// written by a background worker, so recording adds no latency to
// resolution; when the buffer fills, events are dropped and counted
// rather than blocking.
//
//	recorder := usage.NewRecorder(store, nil, logger, collector)
//	defer recorder.Close()
//
//	res, err := st.Resolve(ctx, req)
//	recorder.Record(ctx, req, res, err)
//
// # Rollups
//
// Raw events answer "what happened", but per-style totals over weeks
// of traffic should not require scanning every row. The Scheduler
// periodically folds new events into per-(style, day) counters in the
// stat store, paging by store sequence and advancing a persisted
// cursor inside the same transaction as the counter writes. A second
// scheduled job prunes raw events past the retention window; rolled-up
// stats survive pruning.
//
//	sched := usage.NewScheduler(events, stats, nil, logger, collector)
//	if err := sched.Start(ctx); err != nil {
//		return err
//	}
//	defer sched.Stop()
//
// # Stores
//
// EventStore and StatStore are small interfaces so tests can swap in
// memory-backed fakes. The SQLite implementations live in the storage
// and statstore subpackages.
package usage
