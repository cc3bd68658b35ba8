package usage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/styler"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// RecorderConfig contains configuration for the usage recorder.
type RecorderConfig struct {
	// Enabled enables usage recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing one event to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder captures one usage event per style resolution. Events are
// written asynchronously so recording never blocks or fails the
// resolution path: when the buffer is full the event is dropped and
// counted instead.
type Recorder struct {
	store     EventStore
	config    *RecorderConfig
	collector *metrics.Collector
	events    chan *Event
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
	logger    *slog.Logger
}

// NewRecorder creates a usage recorder backed by the given event
// store. The collector is optional; pass nil to skip metrics.
func NewRecorder(store EventStore, config *RecorderConfig, logger *slog.Logger, collector *metrics.Collector) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		store:     store,
		config:    config,
		collector: collector,
		events:    make(chan *Event, config.AsyncBuffer),
		done:      make(chan struct{}),
		logger:    logger.With("component", "usage.recorder"),
	}

	if config.Enabled {
		r.wg.Add(1)
		go r.worker()

		r.logger.Info("usage recorder started",
			"async_buffer", config.AsyncBuffer,
			"write_timeout", config.WriteTimeout,
		)
	}

	return r
}

// Classify maps a resolution result and error to a usage outcome.
// The same value labels the resolution metrics, so events and metrics
// stay cross-referenceable.
func Classify(res *styler.Result, err error) string {
	var notFound *styler.StyleNotFoundError
	var unavailable *styler.TemplateUnavailableError

	switch {
	case errors.As(err, &notFound):
		return OutcomeNotFound
	case errors.As(err, &unavailable):
		return OutcomeTemplateUnavailable
	case err != nil:
		return OutcomeError
	case res == nil:
		return OutcomeError
	case !res.Applied:
		return OutcomePassThrough
	default:
		return OutcomeResolved
	}
}

// Record enqueues a usage event for the given resolution. It returns
// immediately: a full buffer drops the event and increments the drop
// counter rather than blocking the caller. The only error returned is
// ErrRecorderClosed.
func (r *Recorder) Record(ctx context.Context, req *styler.Request, res *styler.Result, resolveErr error) error {
	if !r.config.Enabled || req == nil {
		return nil
	}

	event := r.buildEvent(ctx, req, res, resolveErr)

	select {
	case <-r.done:
		return ErrRecorderClosed
	default:
	}

	select {
	case r.events <- event:
		if r.collector != nil {
			r.collector.UpdateUsageQueueDepth(len(r.events))
		}
	default:
		dropped := r.dropped.Add(1)
		if r.collector != nil {
			r.collector.RecordUsageEvent("dropped")
		}
		r.logger.Warn("usage event dropped, buffer full",
			"event_id", event.ID,
			"dropped_total", dropped,
		)
	}

	return nil
}

func (r *Recorder) buildEvent(ctx context.Context, req *styler.Request, res *styler.Result, resolveErr error) *Event {
	event := &Event{
		ID:          uuid.New().String(),
		RequestID:   logging.GetRequestID(ctx),
		RecordedAt:  time.Now().UTC(),
		Outcome:     Classify(res, resolveErr),
		PromptChars: len(req.Prompt),
	}

	if res != nil {
		event.StyleID = res.MatchedStyleID
		event.Variant = res.Variant
		event.TemplateKind = string(res.TemplateKind)
		event.Applied = res.Applied
		event.CatalogVersion = res.CatalogVersion
	}

	// Failed resolutions still record which style and variant were
	// asked for.
	var notFound *styler.StyleNotFoundError
	var unavailable *styler.TemplateUnavailableError
	switch {
	case errors.As(resolveErr, &notFound):
		event.StyleID = notFound.StyleID
		event.Variant = req.Variant
	case errors.As(resolveErr, &unavailable):
		event.StyleID = unavailable.StyleID
		event.Variant = unavailable.Variant
	}

	return event
}

// worker drains the event channel and writes each event to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.events:
			r.writeEvent(event)
		case <-r.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case event := <-r.events:
					r.writeEvent(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeEvent(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.store.Insert(ctx, event); err != nil {
		if r.collector != nil {
			r.collector.RecordUsageEvent("failed")
		}
		r.logger.Error("usage event write failed",
			"event_id", event.ID,
			"style_id", event.StyleID,
			"error", err,
		)
		return
	}

	if r.collector != nil {
		r.collector.RecordUsageEvent("recorded")
		r.collector.UpdateUsageQueueDepth(len(r.events))
	}
}

// DroppedCount returns the number of events dropped because the
// buffer was full.
func (r *Recorder) DroppedCount() int64 {
	return r.dropped.Load()
}

// QueueDepth returns the number of events waiting to be written.
func (r *Recorder) QueueDepth() int {
	return len(r.events)
}

// Close stops the recorder, flushes buffered events to storage, and
// waits for the worker to finish. Safe to call more than once.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		if r.config.Enabled {
			r.wg.Wait()
			r.logger.Info("usage recorder stopped",
				"dropped_total", r.dropped.Load(),
			)
		}
	})
	return nil
}
