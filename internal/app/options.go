package service

import (
	"time"

	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/internal/domain/lifecycle"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
	"github.com/okian/scoutbook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTaxonomy replaces the embedded vocabulary.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(s *Service) {
		if t != nil {
			s.taxonomy = t
		}
	}
}

// WithPublisher sets where change events go. Defaults to notify.Noop.
func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the uuid generator for players and reports.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSimilarNameDistance sets the edit distance used for near-duplicate hints.
func WithSimilarNameDistance(d int) Option {
	return func(s *Service) {
		if d >= 0 {
			s.similarDistance = d
		}
	}
}

// WithSuggestionLimit caps taxonomy suggestions.
func WithSuggestionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestLimit = n
		}
	}
}

// WithLifecycleOptions passes options through to the lifecycle coordinator.
func WithLifecycleOptions(opts ...lifecycle.Option) Option {
	return func(s *Service) {
		s.lifecycleOpts = append(s.lifecycleOpts, opts...)
	}
}
