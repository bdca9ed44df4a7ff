// Package model contains domain models passed between layers.
package model

import "time"

// LifecycleState is the evaluation state of a player record.
type LifecycleState string

// Lifecycle states. Bookmark is initial; Scouted is terminal.
const (
	Bookmark LifecycleState = "bookmark"
	Scouted  LifecycleState = "scouted"
)

// Valid reports whether s is a known lifecycle state.
func (s LifecycleState) Valid() bool {
	return s == Bookmark || s == Scouted
}

// Rating holds a current/potential pair on the 1..5 scale. Zero means unset.
type Rating struct {
	Current   float64 `json:"current"`
	Potential float64 `json:"potential"`
}

// IsZero reports whether neither value is set.
func (r Rating) IsZero() bool {
	return r.Current == 0 && r.Potential == 0
}

// Player is a roster entry.
type Player struct {
	ID             string         // assigned at creation
	Name           string         // identity-bearing
	Nationality    string         // identity-bearing
	BirthYear      int            // identity-bearing; 0 means absent
	ExternalRef    string         // profile link, e.g. a transfermarkt URL
	Team           string         // display only
	Position       string         // display only
	LifecycleState LifecycleState // Bookmark or Scouted
	LegacyRating   *Rating        // set only at creation from a bundled report
	CreatedAt      time.Time
}

// IsScouted reports whether the player has reached the Scouted state.
func (p Player) IsScouted() bool {
	return p.LifecycleState == Scouted
}

// HasBirthYear reports whether a birth year is known.
func (p Player) HasBirthYear() bool {
	return p.BirthYear > 0
}
