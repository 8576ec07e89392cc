package ingest

import "github.com/google/uuid"

// Result holds the outcome of an ingest operation.
type Result struct {
	WorkoutsReceived int `json:"workouts_received"`
	SetsReceived     int `json:"sets_received"`
	RepsReceived     int `json:"reps_received"`
	SamplesReceived  int `json:"samples_received"`
	SetsResegmented  int `json:"sets_resegmented"`

	AnalysesInserted int       `json:"analyses_inserted"`
	SetRowsInserted  int64     `json:"set_rows_inserted"`
	AnalysisID       uuid.UUID `json:"analysis_id"`

	FatigueScore float64 `json:"fatigue_score"`
	FatigueLevel string  `json:"fatigue_level"`

	Message string `json:"message,omitempty"`
}
