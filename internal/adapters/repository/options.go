package repository

import (
	"github.com/okian/scoutbook/pkg/logger"
)

// Option applies a configuration option to the GormStore.
type Option func(*GormStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *GormStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithoutMigration skips schema migration on open, for databases managed
// elsewhere.
func WithoutMigration() Option {
	return func(s *GormStore) {
		s.migrate = false
	}
}
