package notify

import "errors"

// Sentinel kinds for publisher errors.
var (
	ErrPublish  = errors.New("publish event")
	ErrNoClient = errors.New("redis client not initialized")
)
