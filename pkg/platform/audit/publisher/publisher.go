// Package publisher delivers audit events to a Store, either inline or
// through a bounded queue drained by a single background worker.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dErrors "bloodbank/pkg/domain-errors"
	audit "bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/audit/metrics"
)

// persistTimeout bounds one background write.
const persistTimeout = 5 * time.Second

var errQueueFull = dErrors.New(dErrors.CodeInternal, "audit buffer full")

// Publisher implements audit.Emitter. Without WithAsyncBuffer every Emit
// writes to the store before returning.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue     chan audit.Event
	done      chan struct{}
	closeOnce sync.Once
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for the background worker.
// Emit drops events once the queue is full. Sizes below 1 keep writes inline.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

// WithPublisherLogger reports background failures and dropped events.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit stamps a missing timestamp and hands the event on.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.queue == nil {
		return p.persist(ctx, event)
	}

	select {
	case p.queue <- event:
		p.metrics.RecordEnqueued()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.RecordDropped()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", string(event.Action),
			"actor_id", event.ActorID.String(),
		)
		return errQueueFull
	}
}

// Close stops accepting events and blocks until the queue is drained.
// Calling it more than once is harmless.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.queue == nil {
			return
		}
		close(p.queue)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		p.metrics.RecordDequeued()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := p.persist(ctx, event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", string(event.Action),
				"actor_id", event.ActorID.String(),
			)
		}
		cancel()
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.RecordPersist(time.Since(start), err)
	return err
}
