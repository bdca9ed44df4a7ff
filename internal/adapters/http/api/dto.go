package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/scoutbook/internal/domain/aggregation"
	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/model"
)

const dateLayout = "2006-01-02"

// playerRequest is the body of POST /players and POST /players/check.
type playerRequest struct {
	Name        string         `json:"name"`
	Nationality string         `json:"nationality"`
	BirthYear   int            `json:"birth_year"`
	ExternalRef string         `json:"external_ref"`
	Team        string         `json:"team"`
	Position    string         `json:"position"`
	Report      *reportRequest `json:"report,omitempty"`
}

func (p playerRequest) player() model.Player {
	return model.Player{
		Name:        p.Name,
		Nationality: p.Nationality,
		BirthYear:   p.BirthYear,
		ExternalRef: p.ExternalRef,
		Team:        p.Team,
		Position:    p.Position,
	}
}

type playerResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Nationality  string               `json:"nationality,omitempty"`
	BirthYear    int                  `json:"birth_year,omitempty"`
	ExternalRef  string               `json:"external_ref,omitempty"`
	Team         string               `json:"team,omitempty"`
	Position     string               `json:"position,omitempty"`
	State        model.LifecycleState `json:"state"`
	LegacyRating *model.Rating        `json:"legacy_rating,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toPlayer(p model.Player) playerResponse {
	return playerResponse{
		ID:           p.ID,
		Name:         p.Name,
		Nationality:  p.Nationality,
		BirthYear:    p.BirthYear,
		ExternalRef:  p.ExternalRef,
		Team:         p.Team,
		Position:     p.Position,
		State:        p.LifecycleState,
		LegacyRating: p.LegacyRating,
		CreatedAt:    p.CreatedAt,
	}
}

func toPlayers(ps []model.Player) []playerResponse {
	out := make([]playerResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPlayer(p))
	}
	return out
}

// reportRequest is the body of POST /players/{id}/reports.
type reportRequest struct {
	ScoutName          string `json:"scout_name"`
	CheckType          string `json:"check_type"`
	MatchName          string `json:"match_name"`
	MatchDate          string `json:"match_date"`
	AthleticDataRating string `json:"athletic_data_rating"`
	FinalRating        string `json:"final_rating"`
	CurrentValue       int    `json:"current_value"`
	PotentialValue     int    `json:"potential_value"`
	Strengths          string `json:"strengths"`
	Weaknesses         string `json:"weaknesses"`
	Notes              string `json:"notes"`
}

// report converts the request; unknown enum values pass through so that
// validation names the offending field.
func (r reportRequest) report(playerID string) (model.Report, error) {
	out := model.Report{
		PlayerID:           playerID,
		ScoutName:          r.ScoutName,
		CheckType:          model.CheckType(r.CheckType),
		MatchName:          r.MatchName,
		AthleticDataRating: model.AthleticRating(r.AthleticDataRating),
		FinalRating:        model.FinalRating(strings.ToUpper(strings.TrimSpace(r.FinalRating))),
		CurrentValue:       r.CurrentValue,
		PotentialValue:     r.PotentialValue,
		Strengths:          r.Strengths,
		Weaknesses:         r.Weaknesses,
		Notes:              r.Notes,
	}
	if ct, ok := model.ParseCheckType(strings.TrimSpace(r.CheckType)); ok {
		out.CheckType = ct
	}
	if d := strings.TrimSpace(r.MatchDate); d != "" {
		t, err := parseDate(d)
		if err != nil {
			return model.Report{}, fmt.Errorf("%w: match_date %q: want YYYY-MM-DD or RFC3339", ErrBadRequest, d)
		}
		out.MatchDate = &t
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type feedbackRequest struct {
	Name     string `json:"name"`
	Feedback string `json:"feedback"`
}

type feedbackResponse struct {
	Name     string    `json:"name"`
	Feedback string    `json:"feedback"`
	Date     time.Time `json:"date"`
}

type reportResponse struct {
	ID                 string            `json:"id"`
	PlayerID           string            `json:"player_id"`
	ScoutName          string            `json:"scout_name"`
	CheckType          model.CheckType   `json:"check_type"`
	MatchName          string            `json:"match_name,omitempty"`
	MatchDate          string            `json:"match_date,omitempty"`
	AthleticDataRating string            `json:"athletic_data_rating,omitempty"`
	FinalRating        model.FinalRating `json:"final_rating"`
	CurrentValue       int               `json:"current_value,omitempty"`
	PotentialValue     int               `json:"potential_value,omitempty"`
	Strengths          string            `json:"strengths"`
	Weaknesses         string            `json:"weaknesses"`
	Notes              string            `json:"notes"`
	ReportDate         time.Time         `json:"report_date"`
	Director           *feedbackResponse `json:"director_feedback,omitempty"`
}

func toReport(r model.Report) reportResponse {
	out := reportResponse{
		ID:                 r.ID,
		PlayerID:           r.PlayerID,
		ScoutName:          r.ScoutName,
		CheckType:          r.CheckType,
		MatchName:          r.MatchName,
		AthleticDataRating: string(r.AthleticDataRating),
		FinalRating:        r.FinalRating,
		CurrentValue:       r.CurrentValue,
		PotentialValue:     r.PotentialValue,
		Strengths:          r.Strengths,
		Weaknesses:         r.Weaknesses,
		Notes:              r.Notes,
		ReportDate:         r.ReportDate,
	}
	if r.MatchDate != nil {
		out.MatchDate = r.MatchDate.Format(dateLayout)
	}
	if r.HasFeedback() {
		out.Director = &feedbackResponse{Name: r.Director.Name, Feedback: r.Director.Feedback, Date: r.Director.Date}
	}
	return out
}

func toReports(rs []model.Report) []reportResponse {
	out := make([]reportResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReport(r))
	}
	return out
}

type submissionResponse struct {
	Report           reportResponse       `json:"report"`
	State            model.LifecycleState `json:"state"`
	Promoted         bool                 `json:"promoted"`
	PendingScouts    []string             `json:"pending_scouts"`
	PromotionPending bool                 `json:"promotion_pending"`
}

type duplicateResponse struct {
	Code            string         `json:"code"`
	Message         string         `json:"message"`
	Reason          string         `json:"reason"`
	SuggestedAction string         `json:"suggested_action"`
	Existing        playerResponse `json:"existing"`
}

type checkResponse struct {
	Duplicate bool `json:"duplicate"`
}

type matchResponse struct {
	Player   playerResponse `json:"player"`
	Distance int            `json:"distance"`
}

func toMatches(ms []identity.Match) []matchResponse {
	out := make([]matchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, matchResponse{Player: toPlayer(m.Player), Distance: m.Distance})
	}
	return out
}

type ratedPlayerResponse struct {
	Player playerResponse `json:"player"`
	Rating model.Rating   `json:"rating"`
}

type dashboardResponse struct {
	TotalScouted    int                   `json:"total_scouted"`
	TotalBookmarks  int                   `json:"total_bookmarks"`
	AvgPotential    float64               `json:"avg_potential"`
	HighPotential   int                   `json:"high_potential"`
	RecentScouted   []ratedPlayerResponse `json:"recent_scouted"`
	RecentBookmarks []ratedPlayerResponse `json:"recent_bookmarks"`
}

func toRated(rs []aggregation.PlayerRating) []ratedPlayerResponse {
	out := make([]ratedPlayerResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ratedPlayerResponse{Player: toPlayer(r.Player), Rating: r.Rating})
	}
	return out
}

func toDashboard(s aggregation.Stats) dashboardResponse {
	return dashboardResponse{
		TotalScouted:    s.TotalScouted,
		TotalBookmarks:  s.TotalBookmarks,
		AvgPotential:    s.AvgPotential,
		HighPotential:   s.HighPotential,
		RecentScouted:   toRated(s.RecentScouted),
		RecentBookmarks: toRated(s.RecentBookmarks),
	}
}
