// Package idempotency remembers client supplied Idempotency-Key values so a
// retried submission is not stored twice.
package idempotency

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Header is the request header carrying the client key.
const Header = "Idempotency-Key"

const defaultMaxKeys = 10000

// Keys records seen keys.
type Keys interface {
	// SeenAndRecord reports whether key was already recorded and records
	// it when it was not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Forget drops key so a failed submission can be retried.
	Forget(ctx context.Context, key string)

	Len() int
}

type entry struct {
	key string
	at  time.Time
}

// Cache is an in-memory Keys with FIFO eviction.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List // front is oldest
	maxKeys int
	ttl     time.Duration
	now     func() time.Time
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		maxKeys: defaultMaxKeys,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) SeenAndRecord(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expire(now)

	if _, ok := c.index[key]; ok {
		return true
	}
	c.index[key] = c.order.PushBack(entry{key: key, at: now})
	if c.maxKeys > 0 {
		for c.order.Len() > c.maxKeys {
			c.remove(c.order.Front())
		}
	}
	return false
}

func (c *Cache) Forget(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// expire must be called with mu held.
func (c *Cache) expire(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if now.Sub(el.Value.(entry).at) < c.ttl {
			return
		}
		c.remove(el)
	}
}

func (c *Cache) remove(el *list.Element) {
	delete(c.index, el.Value.(entry).key)
	c.order.Remove(el)
}
