// Package report holds the admission rules for scouting reports.
package report

import (
	"fmt"
	"strings"

	"github.com/okian/scoutbook/internal/domain/model"
)

// Field names used in validation errors. They follow the persisted columns.
const (
	FieldPlayerID       = "player_id"
	FieldScoutName      = "scout_name"
	FieldCheckType      = "check_type"
	FieldAthleticRating = "athletic_data_rating"
	FieldFinalRating    = "final_rating"
	FieldCurrentValue   = "current_value"
	FieldPotentialValue = "potential_value"
	FieldStrengths      = "strengths"
	FieldWeaknesses     = "weaknesses"
	FieldNotes          = "notes"
	FieldDirectorName   = "director_name"
	FieldFeedback       = "director_feedback"
)

const (
	minValue = 1
	maxValue = 5
)

// Prepare trims free text and drops the fields a check type does not use:
// match details for data checks, the athletic grade for every other check.
func Prepare(r model.Report) model.Report {
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	r.ScoutName = strings.TrimSpace(r.ScoutName)
	r.MatchName = strings.TrimSpace(r.MatchName)
	r.Strengths = strings.TrimSpace(r.Strengths)
	r.Weaknesses = strings.TrimSpace(r.Weaknesses)
	r.Notes = strings.TrimSpace(r.Notes)
	if ct, ok := model.ParseCheckType(string(r.CheckType)); ok {
		r.CheckType = ct
	}
	if r.CheckType == model.CheckData {
		r.MatchName = ""
		r.MatchDate = nil
	} else {
		r.AthleticDataRating = ""
	}
	return r
}

// Validate checks a prepared report against the roster and returns a
// *ValidationError naming the first offending field.
func Validate(r model.Report, roster model.Roster) error {
	switch {
	case r.PlayerID == "":
		return invalid(FieldPlayerID, "required")
	case r.ScoutName == "":
		return invalid(FieldScoutName, "required")
	case !roster.Contains(r.ScoutName):
		return invalid(FieldScoutName, fmt.Sprintf("%q is not a roster scout", r.ScoutName))
	}
	if _, ok := model.ParseCheckType(string(r.CheckType)); !ok {
		return invalid(FieldCheckType, fmt.Sprintf("unknown check type %q", r.CheckType))
	}
	switch {
	case !hasTerm(r.Strengths):
		return invalid(FieldStrengths, "at least one strength required")
	case !hasTerm(r.Weaknesses):
		return invalid(FieldWeaknesses, "at least one weakness required")
	case r.Notes == "":
		return invalid(FieldNotes, "required")
	case r.CurrentValue < minValue || r.CurrentValue > maxValue:
		return invalid(FieldCurrentValue, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	case r.PotentialValue < minValue || r.PotentialValue > maxValue:
		return invalid(FieldPotentialValue, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	case !r.FinalRating.Valid():
		return invalid(FieldFinalRating, "must be one of A, B, C, D")
	}
	if r.CheckType == model.CheckData && !r.AthleticDataRating.Valid() {
		return invalid(FieldAthleticRating, "required for data checks")
	}
	return nil
}

// ValidateFeedback checks a director feedback submission.
func ValidateFeedback(name, feedback string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return invalid(FieldDirectorName, "required")
	case strings.TrimSpace(feedback) == "":
		return invalid(FieldFeedback, "required")
	}
	return nil
}

// hasTerm reports whether a comma-separated list carries at least one term.
func hasTerm(list string) bool {
	for _, t := range strings.Split(list, ",") {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
