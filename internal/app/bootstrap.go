package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/scoutbook/internal/adapters/mq/worker"
	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/internal/adapters/repository"
	"github.com/okian/scoutbook/internal/config"
	"github.com/okian/scoutbook/internal/domain/lifecycle"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
	"github.com/okian/scoutbook/pkg/logger"
)

// FromConfig opens the configured store, publisher and vocabulary and
// returns a ready Service. The caller owns Close.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	tax := taxonomy.Default()
	if cfg.TaxonomyPath != "" {
		var err error
		if tax, err = taxonomy.LoadFile(cfg.TaxonomyPath); err != nil {
			return nil, fmt.Errorf("taxonomy: %w", err)
		}
	}

	store, err := repository.Open(strings.ToLower(cfg.DBDriver), cfg.DBDSN, repository.WithLogger(log.Named("store")))
	if err != nil {
		return nil, err
	}

	var pub notify.Publisher = notify.Noop{}
	if cfg.RedisAddr != "" {
		rp, err := notify.DialRedis(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
		pub = worker.NewDispatcher(rp, worker.DispatcherConfig{
			QueueSize: cfg.NotifyQueueSize,
			Workers:   cfg.NotifyWorkers,
		}, worker.WithLogger(log.Named("notify")))
		log.Info(ctx, "change notifications enabled",
			logger.String("redis_addr", cfg.RedisAddr),
			logger.String("channel", rp.Channel()),
			logger.Int("workers", cfg.NotifyWorkers),
		)
	}

	initial, maxWait := cfg.PromotionBackoff()
	base := []Option{
		WithLogger(log),
		WithTaxonomy(tax),
		WithPublisher(pub),
		WithSimilarNameDistance(cfg.SimilarNameDistance),
		WithSuggestionLimit(cfg.SuggestionLimit),
		WithLifecycleOptions(
			lifecycle.WithMaxAttempts(cfg.PromotionMaxAttempts),
			lifecycle.WithBackoff(initial, maxWait),
		),
	}
	return New(store, model.NewRoster(cfg.Scouts()...), append(base, opts...)...), nil
}
