package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrInvalidPlayer   = errors.New("invalid player")
)

// Reasons a creation is blocked.
const (
	ReasonExternalRef = "external_ref"
	ReasonIdentityKey = "identity_key"
)

// SuggestedAction is what a blocked caller should do instead of creating.
const SuggestedAction = "add a report to the existing player"

// DuplicatePlayerError blocks a creation and carries the record it collides
// with so the caller can switch to the report flow.
type DuplicatePlayerError struct {
	Existing model.Player
	Reason   string
	Message  string
}

func newDuplicate(existing model.Player, reason string, now time.Time) *DuplicatePlayerError {
	return &DuplicatePlayerError{
		Existing: existing,
		Reason:   reason,
		Message:  identity.DuplicateMessage(existing, now),
	}
}

func (e *DuplicatePlayerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicatePlayer, e.Message)
}

// Is lets errors.Is match ErrDuplicatePlayer.
func (e *DuplicatePlayerError) Is(target error) bool {
	return target == ErrDuplicatePlayer
}

// SuggestedAction returns the redirect offered to the caller.
func (e *DuplicatePlayerError) SuggestedAction() string {
	return SuggestedAction
}
