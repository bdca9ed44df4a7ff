// Package worker delivers queued change notifications to a downstream
// publisher off the write path.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/scoutbook/internal/adapters/mq/queue"
	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/pkg/logger"
	"github.com/okian/scoutbook/pkg/metrics"
)

const (
	defaultWorkerCount     = 2
	defaultDeliveryTimeout = 2 * time.Second
	poolShutdownTimeout    = 10 * time.Second
)

// Queue defines how workers receive events.
type Queue interface {
	Dequeue() <-chan queue.Event
}

// InMemoryWorker reads events off a queue and publishes each one.
type InMemoryWorker struct {
	queue     Queue
	publisher notify.Publisher
	name      string
	timeout   time.Duration

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, publisher notify.Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		publisher: publisher,
		name:      "worker",
		timeout:   defaultDeliveryTimeout,
		done:      make(chan struct{}),
		logger:    logger.Get().Named("notify-worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run delivers events until the queue is closed and drained or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.deliver(ctx, e); err != nil {
				w.logger.Warn(ctx, "notification not delivered",
					logger.String("kind", string(e.Kind)),
					logger.String("player_id", e.PlayerID),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) deliver(ctx context.Context, e queue.Event) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, e); err != nil {
		metrics.RecordNotification(string(e.Kind), "undelivered")
		return fmt.Errorf("deliver %s: %w", e.Kind, err)
	}
	metrics.RecordNotification(string(e.Kind), "delivered")
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue
	logger  logger.Logger
}

// NewPool creates a worker pool; workerCount below 1 uses the default.
func NewPool(workerCount int, q queue.Queue, publisher notify.Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("notify-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, publisher, wopts...)
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateNotifyWorkers(len(p.workers))
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var err error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			err = fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateNotifyWorkers(0)
	return err
}
