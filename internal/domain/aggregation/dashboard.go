package aggregation

import (
	"math"
	"sort"

	"github.com/okian/scoutbook/internal/domain/model"
)

const (
	highPotentialThreshold = 4
	recentScoutedLimit     = 3
	recentBookmarksLimit   = 5
)

// PlayerRating pairs a player with its consolidated rating.
type PlayerRating struct {
	Player model.Player `json:"player"`
	Rating model.Rating `json:"rating"`
}

// Stats is the roster overview shown on the dashboard.
type Stats struct {
	TotalScouted    int            `json:"total_scouted"`
	TotalBookmarks  int            `json:"total_bookmarks"`
	AvgPotential    float64        `json:"avg_potential"`
	HighPotential   int            `json:"high_potential"`
	RecentScouted   []PlayerRating `json:"recent_scouted"`
	RecentBookmarks []PlayerRating `json:"recent_bookmarks"`
}

// Dashboard computes roster statistics. The average potential covers scouted
// players only and is rounded to one decimal.
func Dashboard(players []PlayerRating) Stats {
	var scouted, bookmarks []PlayerRating
	for _, pr := range players {
		if pr.Player.IsScouted() {
			scouted = append(scouted, pr)
		} else {
			bookmarks = append(bookmarks, pr)
		}
	}

	st := Stats{
		TotalScouted:    len(scouted),
		TotalBookmarks:  len(bookmarks),
		RecentScouted:   newest(scouted, recentScoutedLimit),
		RecentBookmarks: newest(bookmarks, recentBookmarksLimit),
	}
	if len(scouted) > 0 {
		var sum float64
		for _, pr := range scouted {
			sum += pr.Rating.Potential
			if pr.Rating.Potential >= highPotentialThreshold {
				st.HighPotential++
			}
		}
		st.AvgPotential = math.Round(sum/float64(len(scouted))*10) / 10
	}
	return st
}

func newest(in []PlayerRating, n int) []PlayerRating {
	out := append([]PlayerRating{}, in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Player.CreatedAt.After(out[j].Player.CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
