package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultPublishTimeout = 10 * time.Second
	defaultDrainTimeout   = 5 * time.Second
)

// Worker delivers alerts in the background so publishing never holds up a
// request. Alerts that can't be queued or delivered in time are dropped and
// counted.
type Worker struct {
	events         chan Event
	publisher      Publisher
	publishTimeout time.Duration
	drainTimeout   time.Duration

	// ctx is cancelled only when a shutdown runs past drainTimeout
	ctx    context.Context
	cancel context.CancelFunc

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	dropped  atomic.Int64
}

type WorkerOption func(*Worker)

// WithDrainTimeout bounds how long Shutdown waits for queued alerts.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.drainTimeout = d
	}
}

func WithPublishTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.publishTimeout = d
	}
}

func NewWorker(publisher Publisher, bufferSize int, opts ...WorkerOption) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		events:         make(chan Event, bufferSize),
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		drainTimeout:   defaultDrainTimeout,
		ctx:            ctx,
		cancel:         cancel,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Start() {
	if w.started.Swap(true) {
		return
	}

	go func() {
		defer close(w.done)
		for {
			select {
			case <-w.stop:
				w.drain()
				return
			case event := <-w.events:
				w.deliver(event)
			}
		}
	}()
}

// Send queues event without blocking. A full buffer drops the event.
func (w *Worker) Send(event Event) {
	select {
	case w.events <- event:
	default:
		w.dropped.Add(1)
		slog.Warn("alert queue full, dropping alert",
			"event_type", event.Type,
			"user_id", event.UserID,
			"queued", len(w.events))
	}
}

// Dropped is the number of alerts that were never handed to the publisher.
func (w *Worker) Dropped() int64 {
	return w.dropped.Load()
}

// Shutdown stops accepting work and delivers what is queued. Past the drain
// timeout in-flight publishes are cancelled and the rest is dropped.
func (w *Worker) Shutdown() {
	w.stopOnce.Do(func() { close(w.stop) })
	defer w.cancel()

	if !w.started.Load() {
		return
	}

	timer := time.NewTimer(w.drainTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
	case <-timer.C:
		slog.Warn("alert drain timed out, cancelling delivery", "queued", len(w.events))
		w.cancel()
		<-w.done
	}
}

func (w *Worker) drain() {
	queued := len(w.events)
	if queued > 0 {
		slog.Info("delivering queued alerts before shutdown", "queued", queued)
	}

	before := w.dropped.Load()
	for {
		select {
		case event := <-w.events:
			w.deliver(event)
		default:
			if lost := w.dropped.Load() - before; lost > 0 {
				slog.Warn("alerts dropped at shutdown", "count", lost)
			}
			return
		}
	}
}

func (w *Worker) deliver(event Event) {
	if w.ctx.Err() != nil {
		w.dropped.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.publishTimeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, event); err != nil {
		slog.Error("failed to publish alert",
			"error", err,
			"event_type", event.Type,
			"user_id", event.UserID)
	}
}
