package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cartwise/recommender/internal/models"
)

// feedbackChanBufferSize is the buffer size for the feedback channel. When
// the buffer is full new events are dropped rather than blocking the caller:
// a slow profile write must never stall a recommendation request.
const feedbackChanBufferSize = 1024

// BehaviorRecorder is the write side of the behavior store.
type BehaviorRecorder interface {
	Record(event models.FeedbackEvent) error
}

// DropMetrics counts feedback events lost to a full buffer. Nil disables it.
type DropMetrics interface {
	RecordFeedbackDropped()
}

// FeedbackRecorder applies feedback events to the behavior store from a
// dedicated worker goroutine, decoupling the write path from request latency.
type FeedbackRecorder struct {
	eventChan chan models.FeedbackEvent
	store     BehaviorRecorder
	metrics   DropMetrics
	wg        sync.WaitGroup

	mu      sync.Mutex
	dropped int64
}

// RecorderOption configures the FeedbackRecorder.
type RecorderOption func(*FeedbackRecorder)

// WithDropMetrics reports dropped events to the given metrics sink.
func WithDropMetrics(m DropMetrics) RecorderOption {
	return func(r *FeedbackRecorder) { r.metrics = m }
}

// NewFeedbackRecorder creates a recorder and starts its worker.
func NewFeedbackRecorder(store BehaviorRecorder, opts ...RecorderOption) *FeedbackRecorder {
	r := &FeedbackRecorder{
		eventChan: make(chan models.FeedbackEvent, feedbackChanBufferSize),
		store:     store,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.startWorker()

	return r
}

// Enqueue queues a feedback event for asynchronous recording. Never blocks:
// if the buffer is full the event is dropped with a warning.
func (r *FeedbackRecorder) Enqueue(event models.FeedbackEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case r.eventChan <- event:
		slog.Debug("Feedback event queued",
			"user_id", event.UserID, "product_id", event.ProductID, "action", event.Action)
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		if r.metrics != nil {
			r.metrics.RecordFeedbackDropped()
		}
		slog.Warn("Feedback channel full, event dropped",
			"user_id", event.UserID, "product_id", event.ProductID, "action", event.Action)
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (r *FeedbackRecorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.dropped
}

// startWorker runs in a dedicated goroutine, draining the channel into the
// behavior store. The loop ends when the channel is closed by Shutdown.
func (r *FeedbackRecorder) startWorker() {
	defer r.wg.Done()

	for event := range r.eventChan {
		if err := r.store.Record(event); err != nil {
			// Bad events were already validated on the request path,
			// so a failure here is logged and the event discarded.
			slog.Warn("Failed to record feedback event",
				"user_id", event.UserID, "product_id", event.ProductID,
				"action", event.Action, "error", err)
		}
	}
}

// Shutdown stops the worker and waits for the buffer to drain.
func (r *FeedbackRecorder) Shutdown() {
	close(r.eventChan)
	r.wg.Wait()
}
