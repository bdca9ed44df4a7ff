// Package service implements the scouting roster operations exposed by the
// HTTP API and the admin CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scoutbook/internal/adapters/notify"
	"github.com/okian/scoutbook/internal/adapters/repository"
	"github.com/okian/scoutbook/internal/domain/aggregation"
	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/lifecycle"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/report"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
	"github.com/okian/scoutbook/pkg/logger"
	"github.com/okian/scoutbook/pkg/metrics"
)

const (
	defaultSimilarDistance = 2
	defaultSuggestLimit    = 10
)

// Service implements the roster use cases on top of a Store.
type Service struct {
	store     repository.Store
	roster    model.Roster
	taxonomy  *taxonomy.Taxonomy
	publisher notify.Publisher
	coord     *lifecycle.Coordinator

	similarDistance int
	suggestLimit    int
	lifecycleOpts   []lifecycle.Option

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// Submission is the result of filing a report.
type Submission struct {
	Report  model.Report      `json:"report"`
	Outcome lifecycle.Outcome `json:"lifecycle"`
	// PromotionPending is set when the report was stored but the lifecycle
	// write failed; Reevaluate can be retried later.
	PromotionPending bool `json:"promotion_pending"`
}

// New constructs a Service over store for the given roster.
func New(store repository.Store, roster model.Roster, opts ...Option) *Service {
	s := &Service{
		store:           store,
		roster:          roster,
		publisher:       notify.Noop{},
		similarDistance: defaultSimilarDistance,
		suggestLimit:    defaultSuggestLimit,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.taxonomy == nil {
		s.taxonomy = taxonomy.Default()
	}

	lopts := []lifecycle.Option{
		lifecycle.WithLogger(s.logger.Named("lifecycle")),
		lifecycle.WithPermanentErrors(repository.ErrNotFound),
	}
	s.coord = lifecycle.New(roster, store, append(lopts, s.lifecycleOpts...)...)
	return s
}

// Roster returns the configured scouts.
func (s *Service) Roster() model.Roster { return s.roster }

// Taxonomy returns the vocabulary used for categorisation.
func (s *Service) Taxonomy() *taxonomy.Taxonomy { return s.taxonomy }

// Close releases the publisher and the store.
func (s *Service) Close() error {
	return errors.Join(s.publisher.Close(), s.store.Close())
}

func (s *Service) clock() time.Time { return s.now().UTC() }

func preparePlayer(p model.Player) model.Player {
	p.Name = strings.TrimSpace(p.Name)
	p.Nationality = strings.TrimSpace(p.Nationality)
	p.ExternalRef = strings.TrimSpace(p.ExternalRef)
	p.Team = strings.TrimSpace(p.Team)
	p.Position = strings.TrimSpace(p.Position)
	return p
}

// CheckDuplicates is the pre-flight creation gate. It returns a
// *DuplicatePlayerError when p matches an existing record by profile link or
// identity key, nil when p may be created.
func (s *Service) CheckDuplicates(ctx context.Context, p model.Player) error {
	p = preparePlayer(p)
	if _, err := identity.Key(p); err != nil {
		return err
	}
	roster, err := s.store.ListPlayers(ctx, "")
	if err != nil {
		return fmt.Errorf("check duplicates: %w", err)
	}
	if existing, ok := identity.FindByExternalRef(p.ExternalRef, roster); ok {
		return newDuplicate(existing, ReasonExternalRef, s.clock())
	}
	matches, err := identity.FindDuplicatesByKey(p, roster)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return newDuplicate(matches[0], ReasonIdentityKey, s.clock())
	}
	return nil
}

// conflicting re-reads the record a storage-level unique violation was
// raised for.
func (s *Service) conflicting(ctx context.Context, p model.Player) *DuplicatePlayerError {
	if ext, ok := identity.ExternalID(p.ExternalRef); ok {
		if existing, err := s.store.FindByExternalID(ctx, ext); err == nil {
			return newDuplicate(existing, ReasonExternalRef, s.clock())
		}
	}
	if p.HasBirthYear() {
		key, err := identity.Key(p)
		if err == nil {
			if existing, err := s.store.FindByIdentityKey(ctx, key); err == nil {
				return newDuplicate(existing, ReasonIdentityKey, s.clock())
			}
		}
	}
	return nil
}

// CreatePlayer adds p to the roster, optionally together with a first report.
// A bundled report signed by a scout creates the player directly as Scouted.
func (s *Service) CreatePlayer(ctx context.Context, p model.Player, bundled *model.Report) (model.Player, error) {
	p = preparePlayer(p)
	if p.BirthYear < 0 {
		return model.Player{}, fmt.Errorf("%w: birth year %d", ErrInvalidPlayer, p.BirthYear)
	}

	var dup *DuplicatePlayerError
	if err := s.CheckDuplicates(ctx, p); err != nil {
		if errors.As(err, &dup) {
			metrics.RecordDuplicateBlocked(dup.Reason)
		}
		return model.Player{}, err
	}

	now := s.clock()
	p.ID = s.newID()
	p.CreatedAt = now

	var first *model.Report
	if bundled != nil {
		r := report.Prepare(*bundled)
		r.PlayerID = p.ID
		if err := report.Validate(r, s.roster); err != nil {
			s.rejected(err)
			return model.Player{}, err
		}
		r.ID = s.newID()
		r.ReportDate = now
		first = &r
	}
	p.LifecycleState, p.LegacyRating = lifecycle.InitialState(first)

	if err := s.store.CreatePlayer(ctx, p, first); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if dup = s.conflicting(ctx, p); dup != nil {
				metrics.RecordDuplicateBlocked(dup.Reason)
				return model.Player{}, dup
			}
		}
		return model.Player{}, err
	}

	metrics.RecordPlayerCreated(string(p.LifecycleState))
	s.publish(ctx, notify.PlayerCreated, p.ID, "")
	if first != nil {
		metrics.RecordReportSubmitted(string(first.CheckType))
		s.publish(ctx, notify.ReportSubmitted, p.ID, first.ID)
	}
	s.logger.Info(ctx, "player created",
		logger.String("player_id", p.ID),
		logger.String("state", string(p.LifecycleState)),
		logger.Bool("bundled_report", first != nil),
	)
	return p, nil
}

// SimilarPlayers lists roster entries whose names are close to name.
func (s *Service) SimilarPlayers(ctx context.Context, name string) ([]identity.Match, error) {
	roster, err := s.store.ListPlayers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("similar players: %w", err)
	}
	return identity.SimilarNames(name, roster, s.similarDistance), nil
}

// GetPlayer returns one roster entry.
func (s *Service) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// ListPlayers returns the roster, newest first, optionally filtered by state.
func (s *Service) ListPlayers(ctx context.Context, state model.LifecycleState) ([]model.Player, error) {
	if state != "" && !state.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidPlayer, state)
	}
	return s.store.ListPlayers(ctx, state)
}

// SubmitReport validates and stores r, then re-evaluates the player's
// lifecycle. A failed lifecycle write leaves the report committed.
func (s *Service) SubmitReport(ctx context.Context, r model.Report) (Submission, error) {
	r = report.Prepare(r)
	if err := report.Validate(r, s.roster); err != nil {
		s.rejected(err)
		return Submission{}, err
	}
	p, err := s.store.GetPlayer(ctx, r.PlayerID)
	if err != nil {
		return Submission{}, err
	}

	r.ID = s.newID()
	r.ReportDate = s.clock()
	if err := s.store.AddReport(ctx, r); err != nil {
		return Submission{}, err
	}
	metrics.RecordReportSubmitted(string(r.CheckType))
	s.publish(ctx, notify.ReportSubmitted, p.ID, r.ID)

	sub := Submission{Report: r}
	sub.Outcome, err = s.coord.Reevaluate(context.WithoutCancel(ctx), p)
	if err != nil {
		sub.PromotionPending = true
		s.logger.Error(ctx, "lifecycle re-evaluation failed; report kept",
			logger.String("player_id", p.ID),
			logger.String("report_id", r.ID),
			logger.Error(err),
		)
	}
	if sub.Outcome.Promoted {
		s.publish(ctx, notify.PlayerPromoted, p.ID, r.ID)
	}
	return sub, nil
}

// Reevaluate reruns the lifecycle rule for one player.
func (s *Service) Reevaluate(ctx context.Context, playerID string) (lifecycle.Outcome, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return lifecycle.Outcome{}, err
	}
	out, err := s.coord.Reevaluate(ctx, p)
	if err != nil {
		return out, err
	}
	if out.Promoted {
		s.publish(ctx, notify.PlayerPromoted, p.ID, "")
	}
	return out, nil
}

// ReconcileBookmarks re-evaluates every Bookmark and returns how many were
// promoted. It stops at the first error.
func (s *Service) ReconcileBookmarks(ctx context.Context) (int, error) {
	bookmarks, err := s.store.ListPlayers(ctx, model.Bookmark)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}
	promoted := 0
	for _, p := range bookmarks {
		out, err := s.coord.Reevaluate(ctx, p)
		if err != nil {
			return promoted, err
		}
		if out.Promoted {
			promoted++
			s.publish(ctx, notify.PlayerPromoted, p.ID, "")
		}
	}
	s.logger.Info(ctx, "bookmarks reconciled", logger.Int("checked", len(bookmarks)), logger.Int("promoted", promoted))
	return promoted, nil
}

// ListReports returns a player's reports, most recent first.
func (s *Service) ListReports(ctx context.Context, playerID string) ([]model.Report, error) {
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	return s.store.ListReports(ctx, playerID)
}

// DeleteReport removes a report. The player's state is left as is.
func (s *Service) DeleteReport(ctx context.Context, reportID string) error {
	r, err := s.store.DeleteReport(ctx, reportID)
	if err != nil {
		return err
	}
	metrics.RecordReportDeleted()
	s.publish(ctx, notify.ReportDeleted, r.PlayerID, r.ID)
	s.logger.Info(ctx, "report deleted", logger.String("report_id", r.ID), logger.String("player_id", r.PlayerID))
	return nil
}

// AttachDirectorFeedback records the director's note on a report, once.
func (s *Service) AttachDirectorFeedback(ctx context.Context, reportID, name, feedback string) (model.Report, error) {
	if err := report.ValidateFeedback(name, feedback); err != nil {
		return model.Report{}, err
	}
	r, err := s.store.AttachFeedback(ctx, reportID, model.DirectorFeedback{
		Name:     strings.TrimSpace(name),
		Feedback: strings.TrimSpace(feedback),
		Date:     s.clock(),
	})
	if err != nil {
		return model.Report{}, err
	}
	metrics.RecordFeedbackAttached()
	s.publish(ctx, notify.FeedbackAttached, r.PlayerID, r.ID)
	return r, nil
}

// Summary builds the consolidated detail view of a player.
func (s *Service) Summary(ctx context.Context, playerID string) (aggregation.Summary, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return aggregation.Summary{}, err
	}
	reports, err := s.store.ListReports(ctx, playerID)
	if err != nil {
		return aggregation.Summary{}, err
	}
	return aggregation.Summarize(p, reports, s.taxonomy, s.roster), nil
}

// Dashboard computes roster-wide statistics from the current reports.
func (s *Service) Dashboard(ctx context.Context) (aggregation.Stats, error) {
	players, err := s.store.ListPlayers(ctx, "")
	if err != nil {
		return aggregation.Stats{}, fmt.Errorf("dashboard: %w", err)
	}
	rated := make([]aggregation.PlayerRating, 0, len(players))
	for _, p := range players {
		reports, err := s.store.ListReports(ctx, p.ID)
		if err != nil {
			return aggregation.Stats{}, fmt.Errorf("dashboard: %w", err)
		}
		rated = append(rated, aggregation.PlayerRating{
			Player: p,
			Rating: aggregation.ConsolidatedRating(reports, p.LegacyRating),
		})
	}
	stats := aggregation.Dashboard(rated)
	metrics.UpdatePlayersByState(string(model.Scouted), stats.TotalScouted)
	metrics.UpdatePlayersByState(string(model.Bookmark), stats.TotalBookmarks)
	return stats, nil
}

// SuggestTerms offers vocabulary completions for a strengths or weaknesses
// field.
func (s *Service) SuggestTerms(text string, kind taxonomy.Kind) []taxonomy.Suggestion {
	return s.taxonomy.Suggest(text, kind, s.suggestLimit)
}

func (s *Service) rejected(err error) {
	var ve *report.ValidationError
	if errors.As(err, &ve) {
		metrics.RecordReportRejected(ve.Field)
	}
}

// publish never fails the caller; the write it reports is already committed.
func (s *Service) publish(ctx context.Context, kind notify.Kind, playerID, reportID string) {
	e := notify.Event{Kind: kind, PlayerID: playerID, ReportID: reportID, At: s.clock()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.RecordNotification(string(kind), "failed")
		s.logger.Warn(ctx, "change notification not delivered",
			logger.String("kind", string(kind)),
			logger.String("player_id", playerID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordNotification(string(kind), "accepted")
}
