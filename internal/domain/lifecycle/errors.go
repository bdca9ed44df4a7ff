package lifecycle

import "errors"

// ErrPromotion is returned when the promotion write could not be committed.
var ErrPromotion = errors.New("lifecycle promotion failed")
