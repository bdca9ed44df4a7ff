package taxonomy

import "errors"

// Sentinel error kinds for this package.
var (
	ErrLoad          = errors.New("load taxonomy failed")
	ErrInvalid       = errors.New("invalid taxonomy")
	ErrAmbiguousTerm = errors.New("term assigned to more than one category")
)
