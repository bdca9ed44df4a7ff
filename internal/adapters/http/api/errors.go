package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/scoutbook/internal/adapters/repository"
	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/report"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrReplayedRequest = errors.New("request already processed")
)

// Error codes carried in the JSON error body.
const (
	codeBadRequest      = "bad_request"
	codeValidation      = "validation_failed"
	codeNotFound        = "not_found"
	codeDuplicate       = "duplicate_player"
	codeAlreadyAttached = "feedback_already_attached"
	codeReplayed        = "duplicate_submission"
	codeConflict        = "conflict"
	codeInternal        = "internal_error"
)

// WrapKind tags err with the operation and an API error kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns a bare API error kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// classify maps an error returned by the service to a status and code.
func classify(err error) (int, string) {
	var ve *report.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, identity.ErrMissingName),
		errors.Is(err, service.ErrInvalidPlayer):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, service.ErrDuplicatePlayer):
		return http.StatusConflict, codeDuplicate
	case errors.Is(err, report.ErrAlreadyAttached):
		return http.StatusConflict, codeAlreadyAttached
	case errors.Is(err, ErrReplayedRequest):
		return http.StatusConflict, codeReplayed
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
