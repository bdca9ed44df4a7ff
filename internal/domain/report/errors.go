package report

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for report admission.
var (
	ErrValidation      = errors.New("invalid report")
	ErrAlreadyAttached = errors.New("director feedback already attached")
)

// ValidationError names the first missing or invalid field of a report.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
