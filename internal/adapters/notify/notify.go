// Package notify publishes roster change events to interested listeners.
package notify

import (
	"context"
	"sync"
	"time"
)

// Kind names what changed.
type Kind string

// Event kinds.
const (
	PlayerCreated    Kind = "player_created"
	PlayerPromoted   Kind = "player_promoted"
	ReportSubmitted  Kind = "report_submitted"
	ReportDeleted    Kind = "report_deleted"
	FeedbackAttached Kind = "feedback_attached"
)

// Event is one committed change.
type Event struct {
	Kind     Kind      `json:"kind"`
	PlayerID string    `json:"player_id"`
	ReportID string    `json:"report_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers events. Publish must not block for long; callers treat
// failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewRecorder returns a Recorder that fails every Publish with err when err is
// non-nil.
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds lists the kinds published so far, in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *Recorder) Close() error { return nil }
