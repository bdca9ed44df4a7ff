package lifecycle

import (
	"time"

	"github.com/okian/scoutbook/pkg/logger"
)

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxAttempts bounds the number of promotion writes.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the initial and maximum wait between promotion writes.
func WithBackoff(initial, maxWait time.Duration) Option {
	return func(c *Coordinator) {
		if initial > 0 && maxWait >= initial {
			c.initialBackoff = initial
			c.maxBackoff = maxWait
		}
	}
}

// WithPermanentErrors lists store errors that must not be retried.
func WithPermanentErrors(errs ...error) Option {
	return func(c *Coordinator) {
		c.permanent = append(c.permanent, errs...)
	}
}
