// Package queue buffers change notifications between the write path and
// the delivery workers.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Event is the payload flowing through the queue.
type Event = notify.Event

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event without blocking. It fails with ErrFull or
	// ErrClosed when the event was not accepted.
	Enqueue(ctx context.Context, e Event) error
	// Dequeue returns the channel events are read from. It is closed once
	// the queue is closed and drained.
	Dequeue() <-chan Event
	// Len returns the current number of queued events.
	Len() int
	// Close stops accepting events. Buffered events stay readable.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)
	metrics.UpdateNotifyQueueDepth(0)
	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("%w: %s", ErrClosed, e.Kind)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.events <- e:
		metrics.UpdateNotifyQueueDepth(len(q.events))
		return nil
	default:
		metrics.RecordNotification(string(e.Kind), "dropped")
		return fmt.Errorf("%w: %s", ErrFull, e.Kind)
	}
}

// Dequeue returns the receive side of the buffer.
func (q *InMemoryQueue) Dequeue() <-chan Event {
	return q.events
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len() int {
	n := len(q.events)
	metrics.UpdateNotifyQueueDepth(n)
	return n
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	// consumers drain what is buffered, then see the channel close
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
