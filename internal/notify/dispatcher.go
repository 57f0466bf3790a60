package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"aquawatch/internal/models"

	"go.uber.org/zap"
)

// Sink receives reading events. Errors are logged and never retried.
type Sink interface {
	Name() string
	Handle(ctx context.Context, evt models.ReadingEvent) error
}

// Dispatcher fans reading events out to sinks on a background goroutine.
// Publish never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sinks       []Sink
	logger      *zap.Logger
	sinkTimeout time.Duration

	mu     sync.RWMutex
	queue  chan models.ReadingEvent
	closed bool

	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(queueSize int, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sinks:       sinks,
		logger:      logger,
		sinkTimeout: 5 * time.Second,
		queue:       make(chan models.ReadingEvent, queueSize),
	}
}

// Start runs the delivery loop until Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for evt := range d.queue {
			d.deliver(ctx, evt)
		}
	}()

	d.logger.Info("Event dispatcher started", zap.Int("sinks", len(d.sinks)), zap.Int("queue_size", cap(d.queue)))
}

// Publish enqueues evt. It returns false if the event was dropped.
func (d *Dispatcher) Publish(evt models.ReadingEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- evt:
		return true
	default:
		n := d.dropped.Add(1)
		d.logger.Warn("Event queue full, dropping event",
			zap.String("event_id", evt.EventID),
			zap.Int64("dropped_total", n),
		)
		return false
	}
}

// Stop closes the queue and waits for queued events to be delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Event dispatcher stopped", zap.Int64("dropped_total", d.dropped.Load()))
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) deliver(ctx context.Context, evt models.ReadingEvent) {
	for _, sink := range d.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
		err := sink.Handle(sinkCtx, evt)
		cancel()
		if err != nil {
			d.logger.Warn("Failed to deliver event",
				zap.String("sink", sink.Name()),
				zap.String("event_id", evt.EventID),
				zap.Error(err),
			)
		}
	}
}
