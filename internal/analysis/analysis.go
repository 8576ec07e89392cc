// Package analysis runs the full per-workout pipeline: boundary repair,
// per-repetition feature extraction, per-set and workout fatigue scoring, and
// curve consistency.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/fatigue"
	"github.com/claude/replens/internal/kinematics"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/repcurve"
	"github.com/claude/replens/internal/resegment"
	"github.com/claude/replens/internal/signal"
)

// Options control the optional stages of the pipeline.
type Options struct {
	Resegment     bool
	MaxRepsPerSet int
}

// DefaultOptions enables resegmentation without a rep cap.
func DefaultOptions() Options {
	return Options{Resegment: true}
}

// Summary holds workout-wide aggregates over valid repetitions.
type Summary struct {
	TotalSets        int     `json:"totalSets"`
	TotalReps        int     `json:"totalReps"`
	ValidReps        int     `json:"validReps"`
	ResegmentedSets  int     `json:"resegmentedSets"`
	AvgROM           float64 `json:"avgRom"`
	AvgSmoothness    float64 `json:"avgSmoothness"`
	AvgLiftingTime   float64 `json:"avgLiftingTime"`
	AvgLoweringTime  float64 `json:"avgLoweringTime"`
	AvgPeakVelocity  float64 `json:"avgPeakVelocity"`
	AvgMeanVelocity  float64 `json:"avgMeanVelocity"`
	AvgDurationMs    float64 `json:"avgDurationMs"`
	ConsistencyScore float64 `json:"consistencyScore"`
}

// SetAnalysis is the breakdown of one set.
type SetAnalysis struct {
	SetNumber        int                  `json:"setNumber"`
	Resegmented      bool                 `json:"resegmented"`
	ResegmentReason  string               `json:"resegmentReason,omitempty"`
	OriginalRepCount int                  `json:"originalRepCount"`
	RepCount         int                  `json:"repCount"`
	Fatigue          fatigue.Report       `json:"fatigue"`
	Consistency      repcurve.Result      `json:"consistency"`
	Reps             []kinematics.Metrics `json:"reps"`
}

// WorkoutAnalysis is the complete result for one workout. Consistency is the
// curve consistency over all valid reps; its outlier index points into Reps.
type WorkoutAnalysis struct {
	Exercise    string               `json:"exercise"`
	Equipment   string               `json:"equipment,omitempty"`
	Summary     Summary              `json:"summary"`
	Fatigue     fatigue.Report       `json:"fatigue"`
	Consistency repcurve.Result      `json:"consistency"`
	Sets        []SetAnalysis        `json:"sets"`
	Reps        []kinematics.Metrics `json:"reps"`
	Findings    []string             `json:"findings"`
}

// Analyzer runs the pipeline. It holds no mutable state and is safe for
// concurrent use.
type Analyzer struct {
	opts Options
	log  *slog.Logger
}

// New creates an Analyzer.
func New(opts Options, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{opts: opts, log: log}
}

// Analyze runs the pipeline over one workout. Cancellation is honoured
// between sets.
func (a *Analyzer) Analyze(ctx context.Context, w models.Workout) (*WorkoutAnalysis, error) {
	ex := exercise.Normalize(w.Exercise)
	out := &WorkoutAnalysis{
		Exercise:  w.Exercise,
		Equipment: w.Equipment,
		Sets:      make([]SetAnalysis, 0, len(w.Sets)),
	}

	var inputs []fatigue.SetInput
	var notes []string
	resegmented := 0
	for _, set := range w.Sets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analyzing set %d: %w", set.Number, err)
		}

		sa := SetAnalysis{SetNumber: set.Number, OriginalRepCount: len(set.Reps)}
		if a.opts.Resegment {
			res := resegment.Resegment(set, ex, a.opts.MaxRepsPerSet)
			set = res.Set
			sa.Resegmented = res.Resegmented
			sa.ResegmentReason = res.Reason
			if res.Resegmented {
				resegmented++
				a.log.Info("resegmented set", "exercise", ex.String(), "set", set.Number,
					"reps_before", res.OriginalCount, "reps_after", res.NewCount)
				notes = append(notes, fmt.Sprintf("Set %d was resegmented: %d detected repetition(s) split into %d.",
					set.Number, res.OriginalCount, res.NewCount))
			}
		}

		sa.Reps = make([]kinematics.Metrics, 0, len(set.Reps))
		for _, rep := range set.Reps {
			m := kinematics.Extract(rep)
			if !m.Valid() {
				a.log.Debug("skipping repetition", "set", set.Number, "rep", rep.RepNumber, "reason", m.Error)
			}
			sa.Reps = append(sa.Reps, m)
		}
		sa.RepCount = len(sa.Reps)
		sa.Fatigue = fatigue.Analyze(sa.Reps, w.Classification)
		sa.Consistency = repcurve.Score(curves(sa.Reps))

		inputs = append(inputs, fatigue.SetInput{SetNumber: set.Number, Metrics: sa.Reps})
		out.Reps = append(out.Reps, sa.Reps...)
		out.Sets = append(out.Sets, sa)
	}

	out.Fatigue = fatigue.Aggregate(inputs, w.Classification)
	out.Consistency = globalConsistency(out.Reps)
	out.Summary = summarize(out)
	out.Summary.ResegmentedSets = resegmented

	out.Findings = append(out.Findings, out.Fatigue.Findings...)
	out.Findings = append(out.Findings, notes...)
	if i := out.Consistency.OutlierIndex; i != nil && out.Consistency.Score < 90 {
		r := out.Reps[*i]
		out.Findings = append(out.Findings, fmt.Sprintf("Rep %d of set %d deviates most from the average movement pattern.", r.RepNumber, r.SetNumber))
	}
	return out, nil
}

func curves(reps []kinematics.Metrics) [][]float64 {
	out := make([][]float64, 0, len(reps))
	for _, m := range reps {
		if m.Valid() {
			out = append(out, m.Curve)
		}
	}
	return out
}

// globalConsistency scores valid curves and maps the outlier back to its
// position in the full rep list.
func globalConsistency(reps []kinematics.Metrics) repcurve.Result {
	var idx []int
	for i, m := range reps {
		if m.Valid() {
			idx = append(idx, i)
		}
	}
	res := repcurve.Score(curves(reps))
	if res.OutlierIndex != nil {
		mapped := idx[*res.OutlierIndex]
		res.OutlierIndex = &mapped
	}
	return res
}

func summarize(wa *WorkoutAnalysis) Summary {
	s := Summary{
		TotalSets:        len(wa.Sets),
		TotalReps:        len(wa.Reps),
		ConsistencyScore: wa.Consistency.Score,
	}
	var rom, smooth, lift, lower, peakV, meanV, dur []float64
	for _, m := range wa.Reps {
		if !m.Valid() {
			continue
		}
		s.ValidReps++
		rom = append(rom, m.ROM())
		smooth = append(smooth, m.Smoothness)
		lift = append(lift, m.LiftingTime)
		lower = append(lower, m.LoweringTime)
		peakV = append(peakV, m.PeakVelocity)
		meanV = append(meanV, m.MeanVelocity)
		dur = append(dur, m.DurationMs)
	}
	s.AvgROM = signal.Mean(rom)
	s.AvgSmoothness = signal.Mean(smooth)
	s.AvgLiftingTime = signal.Mean(lift)
	s.AvgLoweringTime = signal.Mean(lower)
	s.AvgPeakVelocity = signal.Mean(peakV)
	s.AvgMeanVelocity = signal.Mean(meanV)
	s.AvgDurationMs = signal.Mean(dur)
	return s
}
