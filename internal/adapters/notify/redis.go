package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/okian/scoutbook/pkg/logger"
)

const (
	// DefaultChannel is the pub/sub channel used when none is configured.
	DefaultChannel = "scoutbook.events"

	dialTimeout = 5 * time.Second
)

// Redis publishes events as JSON on a Redis pub/sub channel.
type Redis struct {
	rdb     *goredis.Client
	channel string
	log     logger.Logger
}

// NewRedis wraps an existing client.
func NewRedis(rdb *goredis.Client, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{
		rdb:     rdb,
		channel: channel,
		log:     logger.Get().Named("notify").With(logger.String("channel", channel)),
	}
}

// DialRedis connects to addr and verifies the connection with a ping.
func DialRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedis(rdb, channel), nil
}

// Channel returns the channel events are published on.
func (r *Redis) Channel() string { return r.channel }

func (r *Redis) Publish(ctx context.Context, e Event) error {
	if r == nil || r.rdb == nil {
		return ErrNoClient
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, e.Kind, err)
	}
	return nil
}

// Subscribe calls fn for every event on the channel until ctx is done.
// Undecodable payloads are logged and skipped.
func (r *Redis) Subscribe(ctx context.Context, fn func(Event)) error {
	if r == nil || r.rdb == nil {
		return ErrNoClient
	}
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
				r.log.Warn(ctx, "bad event payload", logger.Error(err))
				continue
			}
			fn(e)
		}
	}
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
