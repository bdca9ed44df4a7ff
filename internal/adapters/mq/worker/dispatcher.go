package worker

import (
	"context"
	"errors"

	"github.com/okian/scoutbook/internal/adapters/mq/queue"
	"github.com/okian/scoutbook/internal/adapters/notify"
)

// Dispatcher is a notify.Publisher that queues events and delivers them to a
// downstream publisher from a worker pool. Publish never waits on the
// downstream transport.
type Dispatcher struct {
	queue      *queue.InMemoryQueue
	pool       *Pool
	downstream notify.Publisher
	cancel     context.CancelFunc
}

var _ notify.Publisher = (*Dispatcher)(nil)

// DispatcherConfig sizes a Dispatcher.
type DispatcherConfig struct {
	QueueSize int
	Workers   int
}

// NewDispatcher starts workers delivering to downstream.
func NewDispatcher(downstream notify.Publisher, cfg DispatcherConfig, opts ...Option) *Dispatcher {
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queue:      q,
		pool:       NewPool(cfg.Workers, q, downstream, opts...),
		downstream: downstream,
		cancel:     cancel,
	}
	d.pool.Start(ctx)
	return d
}

// Publish queues e; it fails only when the queue is full or closed.
func (d *Dispatcher) Publish(ctx context.Context, e notify.Event) error {
	return d.queue.Enqueue(ctx, e)
}

// Close drains queued events, stops the workers and closes downstream.
func (d *Dispatcher) Close() error {
	err := d.pool.Shutdown(context.Background())
	d.cancel()
	return errors.Join(err, d.downstream.Close())
}
