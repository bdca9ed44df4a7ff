package model

import "time"

// CheckType describes how a scout observed the player.
type CheckType string

// Check types. Stored values follow the persisted column vocabulary.
const (
	CheckLive      CheckType = "Live"
	CheckVideo     CheckType = "Video"
	CheckLiveVideo CheckType = "Video/Live"
	CheckData      CheckType = "Dati"
)

// ParseCheckType accepts both the stored vocabulary and the English aliases.
func ParseCheckType(s string) (CheckType, bool) {
	switch s {
	case "Live", "live":
		return CheckLive, true
	case "Video", "video":
		return CheckVideo, true
	case "Video/Live", "Live/Video", "live/video", "video/live":
		return CheckLiveVideo, true
	case "Dati", "Data", "data", "dati":
		return CheckData, true
	}
	return "", false
}

// AthleticRating is the traffic-light grade used for data-only checks.
type AthleticRating string

// Athletic ratings, worst to best.
const (
	AthleticRed    AthleticRating = "🔴"
	AthleticOrange AthleticRating = "🟠"
	AthleticYellow AthleticRating = "🟡"
	AthleticGreen  AthleticRating = "🟢"
	AthleticTrophy AthleticRating = "🏆"
)

// Valid reports whether r is one of the known ratings.
func (r AthleticRating) Valid() bool {
	switch r {
	case AthleticRed, AthleticOrange, AthleticYellow, AthleticGreen, AthleticTrophy:
		return true
	}
	return false
}

// FinalRating is the scout's overall letter grade.
type FinalRating string

// Final ratings.
const (
	FinalA FinalRating = "A"
	FinalB FinalRating = "B"
	FinalC FinalRating = "C"
	FinalD FinalRating = "D"
)

// Valid reports whether r is A, B, C or D.
func (r FinalRating) Valid() bool {
	switch r {
	case FinalA, FinalB, FinalC, FinalD:
		return true
	}
	return false
}

// DirectorFeedback is attached to a report once, after creation.
type DirectorFeedback struct {
	Name     string
	Feedback string
	Date     time.Time
}

// Report is a single scouting report for a player.
type Report struct {
	ID                 string
	PlayerID           string
	ScoutName          string
	CheckType          CheckType
	MatchName          string     // ignored for data checks
	MatchDate          *time.Time // ignored for data checks
	AthleticDataRating AthleticRating
	FinalRating        FinalRating
	CurrentValue       int // 1..5, 0 when absent on legacy rows
	PotentialValue     int // 1..5, 0 when absent on legacy rows
	Strengths          string
	Weaknesses         string
	Notes              string
	ReportDate         time.Time
	Director           *DirectorFeedback
}

// HasFeedback reports whether director feedback was attached.
func (r Report) HasFeedback() bool {
	return r.Director != nil && r.Director.Feedback != ""
}

// Field selects the free-text list of a report.
type Field string

// Free-text list fields.
const (
	FieldStrengths  Field = "strengths"
	FieldWeaknesses Field = "weaknesses"
)

// Text returns the raw value of the given list field.
func (r Report) Text(f Field) string {
	if f == FieldWeaknesses {
		return r.Weaknesses
	}
	return r.Strengths
}
