package identity

import "errors"

// ErrMissingName is returned when an identity key is requested for a player
// without a usable name.
var ErrMissingName = errors.New("player name required to compute identity key")
