// Package repository persists players and scout reports.
package repository

import (
	"context"

	"github.com/okian/scoutbook/internal/domain/model"
)

// Store provides read/write access to the roster and its reports.
//
// Implementations enforce identity-key and external-id uniqueness at the
// storage level and return ErrConflict when a write would break either.
type Store interface {
	// CreatePlayer stores p and, when bundled is non-nil, its first report in
	// the same write.
	CreatePlayer(ctx context.Context, p model.Player, bundled *model.Report) error
	// GetPlayer returns ErrNotFound for an unknown id.
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	// FindByIdentityKey looks a player up by identity.Key.
	FindByIdentityKey(ctx context.Context, key string) (model.Player, error)
	// FindByExternalID looks a player up by the numeric id of its profile link.
	FindByExternalID(ctx context.Context, externalID string) (model.Player, error)
	// ListPlayers returns players newest first. An empty state lists all.
	ListPlayers(ctx context.Context, state model.LifecycleState) ([]model.Player, error)
	// PromoteIfBookmark flips Bookmark to Scouted and reports whether this call
	// did it. A player that is already Scouted yields false, nil.
	PromoteIfBookmark(ctx context.Context, playerID string) (bool, error)

	// AddReport stores r. The owning player must exist.
	AddReport(ctx context.Context, r model.Report) error
	GetReport(ctx context.Context, id string) (model.Report, error)
	// ListReports returns a player's reports, most recent first.
	ListReports(ctx context.Context, playerID string) ([]model.Report, error)
	// DeleteReport removes a report and returns what was removed.
	DeleteReport(ctx context.Context, id string) (model.Report, error)
	// AttachFeedback sets the director fields once. A second call fails with
	// report.ErrAlreadyAttached.
	AttachFeedback(ctx context.Context, reportID string, fb model.DirectorFeedback) (model.Report, error)

	Close() error
}
