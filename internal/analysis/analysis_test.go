package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/claude/replens/internal/fatigue"
	"github.com/claude/replens/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sineRep builds a repetition of n samples whose magnitude follows a half
// sine of the given amplitude, with pitch and angular rate scaled alike.
func sineRep(setNum, repNum, n int, amp float64, startMs int64) models.Repetition {
	rep := models.Repetition{RepNumber: repNum, SetNumber: setNum}
	for i := 0; i < n; i++ {
		phase := math.Sin(math.Pi * float64(i) / float64(n-1))
		mag := 9.8 + amp*phase
		ts := startMs + int64(i*50)
		rep.Samples = append(rep.Samples, models.Sample{
			TimestampMs:       &ts,
			AccelZ:            mag,
			FilteredMagnitude: &mag,
			Pitch:             70 * phase,
			GyroX:             amp * phase,
		})
	}
	return rep
}

// fatiguingWorkout is one set of six reps slowing down and losing speed.
func fatiguingWorkout() models.Workout {
	set := models.Set{Number: 1}
	start := int64(0)
	for i := 0; i < 6; i++ {
		n := 17 + i*2
		set.Reps = append(set.Reps, sineRep(1, i+1, n, 4-0.4*float64(i), start))
		start += int64(n*50 + 500)
	}
	return models.Workout{Exercise: "Concentration Curls", Sets: []models.Set{set}}
}

// TestAnalyzeWorkout verifies the pipeline assembles per-set and workout
// results consistently.
func TestAnalyzeWorkout(t *testing.T) {
	a := New(DefaultOptions(), quietLogger())
	res, err := a.Analyze(context.Background(), fatiguingWorkout())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Summary.TotalSets != 1 || res.Summary.TotalReps != 6 || res.Summary.ValidReps != 6 {
		t.Errorf("summary = %+v", res.Summary)
	}
	if len(res.Reps) != 6 || len(res.Sets[0].Reps) != 6 {
		t.Errorf("reps = %d/%d, want 6/6", len(res.Reps), len(res.Sets[0].Reps))
	}
	if res.Fatigue.Score <= 0 {
		t.Errorf("fatigue score = %v, want > 0", res.Fatigue.Score)
	}
	if res.Fatigue.Indicators.DOmega <= 0.15 {
		t.Errorf("D_omega = %v, want > 0.15", res.Fatigue.Indicators.DOmega)
	}
	if res.Fatigue.Level != fatigue.LevelFor(res.Fatigue.Score) {
		t.Errorf("level %q inconsistent with score %v", res.Fatigue.Level, res.Fatigue.Score)
	}
	if len(res.Findings) == 0 {
		t.Error("findings should not be empty")
	}
	if math.Abs(res.Summary.AvgROM-70) > 1e-6 {
		t.Errorf("avg rom = %v, want 70", res.Summary.AvgROM)
	}
	if res.Summary.ResegmentedSets != 0 {
		t.Errorf("resegmented sets = %d, want 0", res.Summary.ResegmentedSets)
	}
}

// TestAnalyzeResegmentsMergedSet verifies a merged single rep is split before
// features are extracted and the repair is reported.
func TestAnalyzeResegmentsMergedSet(t *testing.T) {
	merged := models.Repetition{RepNumber: 1, SetNumber: 1}
	for k := 0; k < 4; k++ {
		r := sineRep(1, 1, 30, 3, int64(k*1500))
		merged.Samples = append(merged.Samples, r.Samples...)
	}
	w := models.Workout{Exercise: "concentration_curls", Sets: []models.Set{{Number: 1, Reps: []models.Repetition{merged}}}}

	res, err := New(DefaultOptions(), quietLogger()).Analyze(context.Background(), w)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	s := res.Sets[0]
	if !s.Resegmented || s.OriginalRepCount != 1 || s.RepCount != 4 {
		t.Errorf("set = resegmented %v, %d→%d, want true, 1→4", s.Resegmented, s.OriginalRepCount, s.RepCount)
	}
	if res.Summary.ResegmentedSets != 1 {
		t.Errorf("resegmented sets = %d, want 1", res.Summary.ResegmentedSets)
	}
	found := false
	for _, f := range res.Findings {
		if strings.Contains(f, "resegmented") {
			found = true
		}
	}
	if !found {
		t.Errorf("findings %v lack a resegmentation note", res.Findings)
	}

	res, err = New(Options{}, quietLogger()).Analyze(context.Background(), w)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Sets[0].RepCount != 1 || res.Sets[0].Resegmented {
		t.Error("resegmentation should be skipped when disabled")
	}
}

// TestAnalyzeInsufficientSet verifies a two-rep workout is reported as
// insufficient rather than failing.
func TestAnalyzeInsufficientSet(t *testing.T) {
	w := models.Workout{Sets: []models.Set{{Number: 1, Reps: []models.Repetition{
		sineRep(1, 1, 20, 3, 0), sineRep(1, 2, 20, 3, 1500),
	}}}}
	res, err := New(DefaultOptions(), quietLogger()).Analyze(context.Background(), w)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fatigue.Level != fatigue.LevelInsufficientData || res.Fatigue.Score != 0 {
		t.Errorf("fatigue = %q/%v", res.Fatigue.Level, res.Fatigue.Score)
	}
}

// TestAnalyzeOutlierIndexPointsIntoReps verifies the workout outlier index is
// expressed against the full rep list, including invalid reps.
func TestAnalyzeOutlierIndexPointsIntoReps(t *testing.T) {
	short := sineRep(1, 1, 3, 3, 0)
	short.Samples = short.Samples[:2]
	reps := []models.Repetition{short, sineRep(1, 2, 20, 3, 1000), sineRep(1, 3, 20, 3, 2000), sineRep(1, 4, 20, 9, 3000)}
	w := models.Workout{Sets: []models.Set{{Number: 1, Reps: reps}}}

	res, err := New(Options{}, quietLogger()).Analyze(context.Background(), w)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Consistency.OutlierIndex == nil || *res.Consistency.OutlierIndex != 3 {
		t.Errorf("outlier = %v, want 3", res.Consistency.OutlierIndex)
	}
	if res.Summary.ValidReps != 3 {
		t.Errorf("valid reps = %d, want 3", res.Summary.ValidReps)
	}
}

// TestAnalyzeCancelled verifies cancellation is reported between sets.
func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultOptions(), quietLogger()).Analyze(ctx, fatiguingWorkout())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestAnalyzeBatchPreservesOrder verifies results line up with their inputs.
func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	workouts := []models.Workout{fatiguingWorkout(), {Exercise: "Bench Press"}, fatiguingWorkout()}
	workouts[1].Sets = []models.Set{{Number: 1, Reps: []models.Repetition{sineRep(1, 1, 20, 3, 0)}}}

	res, err := New(DefaultOptions(), quietLogger()).AnalyzeBatch(context.Background(), workouts, 2)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("results = %d, want 3", len(res))
	}
	if res[1].Exercise != "Bench Press" || res[1].Summary.TotalReps != 1 {
		t.Errorf("result 1 = %s/%d reps", res[1].Exercise, res[1].Summary.TotalReps)
	}
	if res[0].Fatigue.Score != res[2].Fatigue.Score {
		t.Errorf("identical workouts scored %v and %v", res[0].Fatigue.Score, res[2].Fatigue.Score)
	}
}
