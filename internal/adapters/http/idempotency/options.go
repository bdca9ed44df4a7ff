package idempotency

import "time"

// Option configures a Cache.
type Option func(*Cache)

// WithMaxKeys bounds the number of remembered keys. The oldest key is
// evicted first. Values <= 0 disable the bound.
func WithMaxKeys(n int) Option {
	return func(c *Cache) {
		c.maxKeys = n
	}
}

// WithTTL forgets keys older than ttl. Zero keeps keys until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}
