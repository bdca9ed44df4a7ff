// Package aggregation consolidates the reports filed for a player into a
// single rating and a categorized, scout-attributed list of observations.
package aggregation

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/okian/scoutbook/internal/domain/lifecycle"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
)

// scoutSuffix matches the trailing "(scout)" attribution of a tagged term.
var scoutSuffix = regexp.MustCompile(`\s*\([^)]+\)\s*$`)

// RoundHalf rounds x to the nearest 0.5, halves rounding up.
func RoundHalf(x float64) float64 {
	return math.Floor(x*2+0.5) / 2
}

// ConsolidatedRating averages current and potential values independently over
// the reports carrying them and rounds each mean to the nearest 0.5. A value
// no report carries falls back to legacy, or 0.
func ConsolidatedRating(reports []model.Report, legacy *model.Rating) model.Rating {
	var sumCur, sumPot float64
	var nCur, nPot int
	for _, r := range reports {
		if r.CurrentValue > 0 {
			sumCur += float64(r.CurrentValue)
			nCur++
		}
		if r.PotentialValue > 0 {
			sumPot += float64(r.PotentialValue)
			nPot++
		}
	}

	var fallback model.Rating
	if legacy != nil {
		fallback = *legacy
	}
	out := fallback
	if nCur > 0 {
		out.Current = sumCur / float64(nCur)
	}
	if nPot > 0 {
		out.Potential = sumPot / float64(nPot)
	}
	out.Current = RoundHalf(out.Current)
	out.Potential = RoundHalf(out.Potential)
	return out
}

// AggregateField splits every report's strengths or weaknesses on commas and
// tags each term with its scout, e.g. "Pace (Alessio)". Reports are consumed
// in the order given. The same term from two scouts is kept twice.
func AggregateField(reports []model.Report, field model.Field) []string {
	out := []string{}
	for _, r := range reports {
		for _, term := range strings.Split(r.Text(field), ",") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			out = append(out, term+" ("+r.ScoutName+")")
		}
	}
	return out
}

// StripAttribution removes a trailing "(scout)" tag.
func StripAttribution(tagged string) string {
	return strings.TrimSpace(scoutSuffix.ReplaceAllString(tagged, ""))
}

// Categorize buckets tagged terms by the category of their bare form. The
// tagged form is what lands in the bucket; unknown terms go to Other. Every
// category is present in the result.
func Categorize(tagged []string, c taxonomy.Classifier) map[model.Category][]string {
	out := make(map[model.Category][]string, len(model.Categories))
	for _, cat := range model.Categories {
		out[cat] = []string{}
	}
	for _, item := range tagged {
		cat, ok := c.Classify(StripAttribution(item))
		if !ok {
			cat = model.Other
		}
		out[cat] = append(out[cat], item)
	}
	return out
}

// Summary is the consolidated detail view of one player.
type Summary struct {
	PlayerID             string                      `json:"player_id"`
	State                model.LifecycleState        `json:"state"`
	Rating               model.Rating                `json:"rating"`
	Strengths            []string                    `json:"strengths"`
	Weaknesses           []string                    `json:"weaknesses"`
	StrengthsByCategory  map[model.Category][]string `json:"strengths_by_category"`
	WeaknessesByCategory map[model.Category][]string `json:"weaknesses_by_category"`
	Scouts               []string                    `json:"scouts"`
	Pending              []string                    `json:"pending_scouts"`
	ReportCount          int                         `json:"report_count"`
}

// Summarize builds the detail view. Reports are aggregated oldest first so
// attributions read in submission order.
func Summarize(p model.Player, reports []model.Report, c taxonomy.Classifier, roster model.Roster) Summary {
	ordered := append([]model.Report(nil), reports...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReportDate.Before(ordered[j].ReportDate)
	})

	strengths := AggregateField(ordered, model.FieldStrengths)
	weaknesses := AggregateField(ordered, model.FieldWeaknesses)
	scouts := lifecycle.CoveringScouts(ordered)
	if scouts == nil {
		scouts = []string{}
	}
	return Summary{
		PlayerID:             p.ID,
		State:                p.LifecycleState,
		Rating:               ConsolidatedRating(ordered, p.LegacyRating),
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		StrengthsByCategory:  Categorize(strengths, c),
		WeaknessesByCategory: Categorize(weaknesses, c),
		Scouts:               scouts,
		Pending:              lifecycle.PendingScouts(roster, ordered),
		ReportCount:          len(ordered),
	}
}
