package fatigue

import (
	"math"
	"testing"

	"github.com/claude/replens/internal/kinematics"
)

// TestAggregateWeightsBySetSize verifies the workout score is the
// rep-count-weighted mean of the per-set scores.
func TestAggregateWeightsBySetSize(t *testing.T) {
	fatigued := fatiguingSet()
	steady := steadySet(3)
	r := Aggregate([]SetInput{{SetNumber: 1, Metrics: fatigued}, {SetNumber: 2, Metrics: steady}}, nil)

	// (6·57.9 + 3·0) / 9
	want := math.Round(6*57.9/9*10) / 10
	if r.Score != want {
		t.Errorf("score = %v, want %v", r.Score, want)
	}
	if r.RepCount != 9 {
		t.Errorf("rep count = %d, want 9", r.RepCount)
	}
	if math.Abs(r.Indicators.DOmega-6*0.5/9) > 1e-9 {
		t.Errorf("D_omega = %v, want %v", r.Indicators.DOmega, 6*0.5/9)
	}
	// The steady set is perfectly consistent, so its narrative is copied.
	if len(r.Findings) != 1 || r.Findings[0] != NoFatigueFinding {
		t.Errorf("findings = %v", r.Findings)
	}
	if r.Level != LevelFor(r.Score) {
		t.Errorf("level %q inconsistent with score %v", r.Level, r.Score)
	}
}

// TestAggregateSingleValidSet verifies that with one sufficient set the
// workout report is computed over every repetition.
func TestAggregateSingleValidSet(t *testing.T) {
	sets := []SetInput{
		{SetNumber: 1, Metrics: fatiguingSet()},
		{SetNumber: 2, Metrics: steadySet(2)},
	}
	r := Aggregate(sets, nil)
	var all []kinematics.Metrics
	all = append(all, sets[0].Metrics...)
	all = append(all, sets[1].Metrics...)
	if want := Analyze(all, nil); r.Score != want.Score || r.RepCount != 8 {
		t.Errorf("score/reps = %v/%d, want %v/8", r.Score, r.RepCount, want.Score)
	}
}

// TestAggregateEmpty verifies an empty workout is insufficient, not an error.
func TestAggregateEmpty(t *testing.T) {
	r := Aggregate(nil, nil)
	if r.Level != LevelInsufficientData || r.Score != 0 {
		t.Errorf("level/score = %q/%v", r.Level, r.Score)
	}
}

// TestConsistencyPenalizesVariation verifies a spread in duration lowers that
// component and the overall score.
func TestConsistencyPenalizesVariation(t *testing.T) {
	reps := steadySet(4)
	reps[3].DurationMs = 2000
	c := Consistency(reps)
	if c.Duration >= 100 {
		t.Errorf("duration consistency = %v, want < 100", c.Duration)
	}
	if c.ROM != 100 {
		t.Errorf("rom consistency = %v, want 100", c.ROM)
	}
	if c.Overall >= 100 || c.Overall < 0 {
		t.Errorf("overall = %v", c.Overall)
	}
}
