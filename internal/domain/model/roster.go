package model

import "strings"

// Roster is the ordered set of scouts whose combined coverage promotes a
// player. It is configuration, not data.
type Roster []string

// NewRoster trims names and drops blanks and repeats, keeping order.
func NewRoster(names ...string) Roster {
	seen := make(map[string]struct{}, len(names))
	out := make(Roster, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Contains reports whether scout is a roster member. Matching is exact.
func (r Roster) Contains(scout string) bool {
	for _, s := range r {
		if s == scout {
			return true
		}
	}
	return false
}
