package repository

import (
	"time"

	"github.com/okian/scoutbook/internal/domain/model"
)

type playerRow struct {
	ID              string  `gorm:"primaryKey;size:36"`
	Name            string  `gorm:"not null"`
	Nationality     string  `gorm:"not null;default:''"`
	BirthYear       int     `gorm:"not null;default:0"`
	ExternalRef     string  `gorm:"not null;default:''"`
	ExternalID      *string `gorm:"uniqueIndex:idx_players_external_id"`
	IdentityKey     *string `gorm:"uniqueIndex:idx_players_identity_key"`
	Team            string  `gorm:"not null;default:''"`
	Position        string  `gorm:"not null;default:''"`
	IsScouted       bool    `gorm:"not null;default:false;index"`
	LegacyCurrent   *float64
	LegacyPotential *float64
	CreatedAt       time.Time `gorm:"not null;index"`
}

func (playerRow) TableName() string { return "players" }

type reportRow struct {
	ID                   string `gorm:"primaryKey;size:36"`
	PlayerID             string `gorm:"size:36;not null;index:idx_reports_player_date,priority:1"`
	ScoutName            string `gorm:"not null"`
	CheckType            string `gorm:"not null"`
	MatchName            string `gorm:"not null;default:''"`
	MatchDate            *time.Time
	AthleticDataRating   string `gorm:"not null;default:''"`
	FinalRating          string `gorm:"not null"`
	CurrentValue         int    `gorm:"not null;default:0"`
	PotentialValue       int    `gorm:"not null;default:0"`
	Strengths            string `gorm:"type:text;not null"`
	Weaknesses           string `gorm:"type:text;not null"`
	Notes                string `gorm:"type:text;not null"`
	ReportDate           time.Time `gorm:"not null;index:idx_reports_player_date,priority:2"`
	DirectorName         *string
	DirectorFeedback     *string `gorm:"type:text"`
	DirectorFeedbackDate *time.Time
}

func (reportRow) TableName() string { return "reports" }

func newPlayerRow(p model.Player, identityKey, externalID *string) playerRow {
	row := playerRow{
		ID:          p.ID,
		Name:        p.Name,
		Nationality: p.Nationality,
		BirthYear:   p.BirthYear,
		ExternalRef: p.ExternalRef,
		ExternalID:  externalID,
		IdentityKey: identityKey,
		Team:        p.Team,
		Position:    p.Position,
		IsScouted:   p.IsScouted(),
		CreatedAt:   p.CreatedAt,
	}
	if p.LegacyRating != nil {
		cur, pot := p.LegacyRating.Current, p.LegacyRating.Potential
		row.LegacyCurrent, row.LegacyPotential = &cur, &pot
	}
	return row
}

func (r playerRow) model() model.Player {
	p := model.Player{
		ID:             r.ID,
		Name:           r.Name,
		Nationality:    r.Nationality,
		BirthYear:      r.BirthYear,
		ExternalRef:    r.ExternalRef,
		Team:           r.Team,
		Position:       r.Position,
		LifecycleState: model.Bookmark,
		CreatedAt:      r.CreatedAt,
	}
	if r.IsScouted {
		p.LifecycleState = model.Scouted
	}
	if r.LegacyCurrent != nil || r.LegacyPotential != nil {
		p.LegacyRating = &model.Rating{}
		if r.LegacyCurrent != nil {
			p.LegacyRating.Current = *r.LegacyCurrent
		}
		if r.LegacyPotential != nil {
			p.LegacyRating.Potential = *r.LegacyPotential
		}
	}
	return p
}

func newReportRow(r model.Report) reportRow {
	row := reportRow{
		ID:                 r.ID,
		PlayerID:           r.PlayerID,
		ScoutName:          r.ScoutName,
		CheckType:          string(r.CheckType),
		MatchName:          r.MatchName,
		MatchDate:          r.MatchDate,
		AthleticDataRating: string(r.AthleticDataRating),
		FinalRating:        string(r.FinalRating),
		CurrentValue:       r.CurrentValue,
		PotentialValue:     r.PotentialValue,
		Strengths:          r.Strengths,
		Weaknesses:         r.Weaknesses,
		Notes:              r.Notes,
		ReportDate:         r.ReportDate,
	}
	if r.Director != nil {
		name, text, at := r.Director.Name, r.Director.Feedback, r.Director.Date
		row.DirectorName, row.DirectorFeedback, row.DirectorFeedbackDate = &name, &text, &at
	}
	return row
}

func (r reportRow) model() model.Report {
	out := model.Report{
		ID:                 r.ID,
		PlayerID:           r.PlayerID,
		ScoutName:          r.ScoutName,
		CheckType:          model.CheckType(r.CheckType),
		MatchName:          r.MatchName,
		MatchDate:          r.MatchDate,
		AthleticDataRating: model.AthleticRating(r.AthleticDataRating),
		FinalRating:        model.FinalRating(r.FinalRating),
		CurrentValue:       r.CurrentValue,
		PotentialValue:     r.PotentialValue,
		Strengths:          r.Strengths,
		Weaknesses:         r.Weaknesses,
		Notes:              r.Notes,
		ReportDate:         r.ReportDate,
	}
	if r.DirectorFeedback != nil {
		out.Director = &model.DirectorFeedback{Feedback: *r.DirectorFeedback}
		if r.DirectorName != nil {
			out.Director.Name = *r.DirectorName
		}
		if r.DirectorFeedbackDate != nil {
			out.Director.Date = *r.DirectorFeedbackDate
		}
	}
	return out
}
