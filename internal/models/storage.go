package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisRow is a row of the workout_analyses table. Report holds the full
// analysis JSON and is only populated by single-row lookups.
type AnalysisRow struct {
	ID               uuid.UUID       `json:"id"`
	UserID           int             `json:"user_id"`
	Source           string          `json:"source"`
	Exercise         string          `json:"exercise"`
	Equipment        string          `json:"equipment,omitempty"`
	PerformedAt      time.Time       `json:"performed_at"`
	CreatedAt        time.Time       `json:"created_at"`
	TotalSets        int             `json:"total_sets"`
	TotalReps        int             `json:"total_reps"`
	ResegmentedSets  int             `json:"resegmented_sets"`
	FatigueScore     float64         `json:"fatigue_score"`
	FatigueLevel     string          `json:"fatigue_level"`
	ConsistencyScore float64         `json:"consistency_score"`
	Report           json.RawMessage `json:"report,omitempty"`
}

// SetFatigueRow is a row of the set_fatigue table: one set's fatigue and
// consistency, denormalized for trend queries.
type SetFatigueRow struct {
	AnalysisID       uuid.UUID `json:"analysis_id"`
	UserID           int       `json:"user_id"`
	Exercise         string    `json:"exercise"`
	PerformedAt      time.Time `json:"performed_at"`
	SetNumber        int       `json:"set_number"`
	RepCount         int       `json:"rep_count"`
	OriginalRepCount int       `json:"original_rep_count"`
	Resegmented      bool      `json:"resegmented"`
	FatigueScore     float64   `json:"fatigue_score"`
	FatigueLevel     string    `json:"fatigue_level"`
	ConsistencyScore float64   `json:"consistency_score"`
	CurveScore       float64   `json:"curve_score"`
	DOmega           float64   `json:"d_omega"`
	IT               float64   `json:"i_t"`
	IJ               float64   `json:"i_j"`
	IS               float64   `json:"i_s"`
	QExec            float64   `json:"q_exec"`
}
