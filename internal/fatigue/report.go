// Package fatigue scores within-set fatigue and movement consistency from
// per-repetition metrics.
package fatigue

import "math"

// Level is the fatigue band of a score.
type Level string

const (
	LevelInsufficientData Level = "insufficient_data"
	LevelMinimal          Level = "minimal"
	LevelLow              Level = "low"
	LevelModerate         Level = "moderate"
	LevelHigh             Level = "high"
	LevelSevere           Level = "severe"
)

// LevelFor maps a 0-100 score onto its band.
func LevelFor(score float64) Level {
	switch {
	case score < 15:
		return LevelMinimal
	case score < 30:
		return LevelLow
	case score < 50:
		return LevelModerate
	case score < 70:
		return LevelHigh
	default:
		return LevelSevere
	}
}

// Indicators are the component fatigue measures, each clamped to >= 0.
type Indicators struct {
	DOmega float64 `json:"dOmega"`
	IT     float64 `json:"iT"`
	IJ     float64 `json:"iJ"`
	IS     float64 `json:"iS"`
	QExec  float64 `json:"qExec"`

	HasGyroData           bool `json:"hasGyroData"`
	HasDurationData       bool `json:"hasDurationData"`
	HasJerkData           bool `json:"hasJerkData"`
	HasShakinessData      bool `json:"hasShakinessData"`
	HasClassificationData bool `json:"hasClassificationData"`
}

func (in Indicators) kinematic() []float64 {
	return []float64{in.DOmega, in.IT, in.IJ, in.IS}
}

// WindowStats are the means of a window, reported for display.
type WindowStats struct {
	PeakSignal float64 `json:"peakSignal"`
	DurationMs float64 `json:"durationMs"`
	MeanJerk   float64 `json:"meanJerk"`
	Shakiness  float64 `json:"shakiness"`
	ROM        float64 `json:"rom"`
	Smoothness float64 `json:"smoothness"`
}

// Extremes are the window values the fatigue indicators compare.
type Extremes struct {
	PeakSignal float64 `json:"peakSignal"`
	DurationMs float64 `json:"durationMs"`
	MeanJerk   float64 `json:"meanJerk"`
	Shakiness  float64 `json:"shakiness"`
}

// Comparison contrasts the first and last third of a set. The indicators
// compare the best early value against the worst late value.
type Comparison struct {
	WindowSize int         `json:"windowSize"`
	Early      WindowStats `json:"early"`
	Late       WindowStats `json:"late"`
	EarlyBest  Extremes    `json:"earlyBest"`
	LateWorst  Extremes    `json:"lateWorst"`
}

// ConsistencyScores are 0-100 scores derived from the coefficient of
// variation of each metric across repetitions.
type ConsistencyScores struct {
	ROM        float64 `json:"rom"`
	Smoothness float64 `json:"smoothness"`
	Duration   float64 `json:"duration"`
	PeakSignal float64 `json:"peakSignal"`
	Overall    float64 `json:"overall"`
}

// Report is the fatigue assessment of one set or one workout.
type Report struct {
	Score       float64           `json:"fatigueScore"`
	Level       Level             `json:"fatigueLevel"`
	RepCount    int               `json:"repCount"`
	Indicators  Indicators        `json:"indicators"`
	Comparison  Comparison        `json:"comparison"`
	Consistency ConsistencyScores `json:"consistency"`
	Findings    []string          `json:"findings"`
}

// Sufficient reports whether the report carries a real score.
func (r Report) Sufficient() bool {
	return r.Level != LevelInsufficientData
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
