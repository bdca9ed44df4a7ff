// Package lifecycle derives a player's evaluation state from the reports filed
// against it and performs the one-way Bookmark -> Scouted promotion.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/pkg/logger"
	"github.com/okian/scoutbook/pkg/metrics"
)

// Default retry settings for the promotion write.
const (
	defaultMaxAttempts    = 5
	defaultInitialBackoff = 50 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
)

// Store is the persistence the coordinator needs.
type Store interface {
	// ListReports returns every report filed for the player.
	ListReports(ctx context.Context, playerID string) ([]model.Report, error)
	// PromoteIfBookmark flips the player to Scouted only if it is still a
	// Bookmark. It reports whether this call performed the transition.
	PromoteIfBookmark(ctx context.Context, playerID string) (bool, error)
}

// Outcome describes one re-evaluation.
type Outcome struct {
	State    model.LifecycleState `json:"state"`
	Promoted bool                 `json:"promoted"`
	Pending  []string             `json:"pending_scouts"`
}

// CoveringScouts returns the distinct scout names of reports, in first-seen order.
func CoveringScouts(reports []model.Report) []string {
	seen := make(map[string]struct{}, len(reports))
	var out []string
	for _, r := range reports {
		if _, ok := seen[r.ScoutName]; ok {
			continue
		}
		seen[r.ScoutName] = struct{}{}
		out = append(out, r.ScoutName)
	}
	return out
}

// PendingScouts returns the roster members who have not filed a report yet.
func PendingScouts(roster model.Roster, reports []model.Report) []string {
	covered := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		covered[r.ScoutName] = struct{}{}
	}
	pending := []string{}
	for _, s := range roster {
		if _, ok := covered[s]; !ok {
			pending = append(pending, s)
		}
	}
	return pending
}

// Covered reports whether every roster member has filed at least one report.
// An empty roster never covers a player.
func Covered(roster model.Roster, reports []model.Report) bool {
	return len(roster) > 0 && len(PendingScouts(roster, reports)) == 0
}

// InitialState applies the creation-time rule: a player created together with a
// report signed by any scout starts Scouted and mirrors that report's values
// as its legacy rating; otherwise it starts as a Bookmark with no rating.
// This deliberately bypasses the full-roster rule used by Reevaluate.
func InitialState(bundled *model.Report) (model.LifecycleState, *model.Rating) {
	if bundled == nil || bundled.ScoutName == "" {
		return model.Bookmark, nil
	}
	return model.Scouted, &model.Rating{
		Current:   float64(bundled.CurrentValue),
		Potential: float64(bundled.PotentialValue),
	}
}

// Coordinator re-evaluates players after report submissions.
type Coordinator struct {
	roster    model.Roster
	store     Store
	logger    logger.Logger
	permanent []error

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Coordinator for the given roster and store.
func New(roster model.Roster, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		roster:         roster,
		store:          store,
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("lifecycle")
	}
	return c
}

// Roster returns the configured roster.
func (c *Coordinator) Roster() model.Roster { return c.roster }

// Reevaluate recomputes coverage for p and promotes it when the whole roster
// has reported. It is idempotent: a Scouted player is left untouched. A failed
// promotion write is retried with exponential backoff; the error is returned
// only once the attempts are exhausted.
func (c *Coordinator) Reevaluate(ctx context.Context, p model.Player) (Outcome, error) {
	reports, err := c.store.ListReports(ctx, p.ID)
	if err != nil {
		return Outcome{State: p.LifecycleState}, fmt.Errorf("list reports for %s: %w", p.ID, err)
	}
	out := Outcome{State: p.LifecycleState, Pending: PendingScouts(c.roster, reports)}
	if p.IsScouted() || !Covered(c.roster, reports) {
		return out, nil
	}

	promoted, err := c.promote(ctx, p.ID)
	if err != nil {
		metrics.RecordPromotionFailure()
		return out, err
	}
	out.State = model.Scouted
	out.Promoted = promoted
	if promoted {
		metrics.RecordPromotion()
		c.logger.Info(ctx, "player promoted", logger.String("player_id", p.ID), logger.Int("reports", len(reports)))
	}
	return out, nil
}

func (c *Coordinator) promote(ctx context.Context, playerID string) (bool, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff

	attempt := 0
	op := func() (bool, error) {
		attempt++
		ok, err := c.store.PromoteIfBookmark(ctx, playerID)
		if err != nil && c.isPermanent(err) {
			return false, backoff.Permanent(err)
		}
		return ok, err
	}
	notify := func(err error, wait time.Duration) {
		metrics.RecordPromotionRetry()
		c.logger.Warn(ctx, "promotion write failed; retrying",
			logger.String("player_id", playerID),
			logger.Int("attempt", attempt),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	}

	ok, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return false, fmt.Errorf("%w: player %s after %d attempts: %w", ErrPromotion, playerID, attempt, err)
	}
	return ok, nil
}

func (c *Coordinator) isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	for _, p := range c.permanent {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}
