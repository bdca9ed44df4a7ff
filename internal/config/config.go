// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// Roster lists the scouts whose reports are all required before a
	// bookmark becomes scouted. Env accepts a comma-separated list.
	Roster []string `koanf:"roster"`

	// TaxonomyPath optionally points at a YAML vocabulary replacing the
	// embedded one.
	TaxonomyPath string `koanf:"taxonomy_path"`

	// DBDriver is "sqlite" or "postgres"; DBDSN is passed to the driver.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// RedisAddr enables change notifications when set.
	RedisAddr    string `koanf:"redis_addr"`
	RedisChannel string `koanf:"redis_channel"`
	// NotifyQueueSize and NotifyWorkers size the asynchronous delivery of
	// change notifications.
	NotifyQueueSize int `koanf:"notify_queue_size"`
	NotifyWorkers   int `koanf:"notify_workers"`

	// Promotion retry policy for the Bookmark -> Scouted write.
	PromotionMaxAttempts      int `koanf:"promotion_max_attempts"`
	PromotionInitialBackoffMS int `koanf:"promotion_initial_backoff_ms"`
	PromotionMaxBackoffMS     int `koanf:"promotion_max_backoff_ms"`

	// Idempotency-Key replay protection for the create endpoints.
	IdempotencyKeys  int `koanf:"idempotency_keys"`
	IdempotencyTTLMS int `koanf:"idempotency_ttl_ms"`

	// SuggestionLimit caps vocabulary suggestions.
	SuggestionLimit int `koanf:"suggestion_limit"`
	// SimilarNameDistance is the edit distance for near-duplicate name hints.
	SimilarNameDistance int `koanf:"similar_name_distance"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		ShutdownTimeoutMS:         5000,
		Roster:                    []string{"Alessio", "Roberto"},
		DBDriver:                  "sqlite",
		DBDSN:                     "scoutbook.db",
		RedisChannel:              "scoutbook.events",
		NotifyQueueSize:           256,
		NotifyWorkers:             2,
		PromotionMaxAttempts:      5,
		PromotionInitialBackoffMS: 50,
		PromotionMaxBackoffMS:     2000,
		IdempotencyKeys:           10000,
		IdempotencyTTLMS:          24 * 60 * 60 * 1000,
		SuggestionLimit:           10,
		SimilarNameDistance:       2,
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if len(c.Scouts()) == 0 {
		problems = append(problems, "roster must name at least one scout")
	}
	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("db_driver %q must be sqlite or postgres", c.DBDriver))
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		problems = append(problems, "db_dsn must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	if c.PromotionMaxAttempts <= 0 {
		problems = append(problems, "promotion_max_attempts must be positive")
	}
	if c.PromotionInitialBackoffMS <= 0 || c.PromotionMaxBackoffMS < c.PromotionInitialBackoffMS {
		problems = append(problems, "promotion backoff must be positive with max >= initial")
	}
	if c.NotifyQueueSize <= 0 || c.NotifyWorkers <= 0 {
		problems = append(problems, "notify_queue_size and notify_workers must be positive")
	}
	if c.IdempotencyKeys < 0 || c.IdempotencyTTLMS < 0 {
		problems = append(problems, "idempotency_keys and idempotency_ttl_ms must not be negative")
	}
	if c.SimilarNameDistance < 0 {
		problems = append(problems, "similar_name_distance must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Scouts returns the roster with blanks trimmed away.
func (c *Config) Scouts() []string {
	out := make([]string, 0, len(c.Roster))
	for _, s := range c.Roster {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PromotionBackoff returns the initial and maximum retry waits.
func (c *Config) PromotionBackoff() (initial, maxWait time.Duration) {
	return time.Duration(c.PromotionInitialBackoffMS) * time.Millisecond,
		time.Duration(c.PromotionMaxBackoffMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// IdempotencyTTL returns how long an Idempotency-Key is remembered.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLMS) * time.Millisecond
}
