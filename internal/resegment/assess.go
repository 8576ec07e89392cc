// Package resegment repairs sets whose repetition boundaries were
// mis-detected by the capture layer, typically several reps merged into one.
package resegment

import (
	"fmt"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/signal"
)

// Merged-rep signatures.
const (
	mergedSampleCount = 60
	mergedDurationMs  = 4000
	outlierFactor     = 3.0
	minSegmentSamples = 5
)

// Verdict is the outcome of Assess.
type Verdict struct {
	Suspect bool   `json:"suspect"`
	Reason  string `json:"reason"`
}

// Assess decides whether a set's segmentation needs repair. Suspect
// signatures are checked first; anything else is trusted.
func Assess(set models.Set, p exercise.Params) Verdict {
	reps := set.Reps
	switch len(reps) {
	case 0:
		return Verdict{Reason: "empty set"}
	case 1:
		n := len(reps[0].Samples)
		d, ok := reps[0].Duration()
		if n > mergedSampleCount {
			return Verdict{Suspect: true, Reason: fmt.Sprintf("single repetition with %d samples", n)}
		}
		if ok && d > mergedDurationMs {
			return Verdict{Suspect: true, Reason: fmt.Sprintf("single repetition lasting %d ms", d)}
		}
		return Verdict{Reason: "single repetition within expected size"}
	}

	durations := make([]float64, 0, len(reps))
	for _, r := range reps {
		if d, ok := r.Duration(); ok {
			durations = append(durations, float64(d))
		}
	}
	if len(durations) == len(reps) {
		avg := signal.Mean(durations)
		for i, d := range durations {
			if avg > 0 && d > outlierFactor*avg {
				return Verdict{Suspect: true, Reason: fmt.Sprintf("repetition %d lasts %.0f ms, over %.0fx the set average", reps[i].RepNumber, d, outlierFactor)}
			}
		}
		if withinWindow(durations, p) {
			return Verdict{Reason: "repetition durations within expected window"}
		}
	}

	counts := make([]float64, len(reps))
	for i, r := range reps {
		counts[i] = float64(len(r.Samples))
	}
	if maxDeviation(counts) < 0.8 {
		return Verdict{Reason: "repetition sample counts are uniform"}
	}
	return Verdict{Reason: "multiple repetitions detected"}
}

func withinWindow(durations []float64, p exercise.Params) bool {
	for _, d := range durations {
		if d < float64(p.MinRepDurationMs) || d > float64(p.MaxRepDurationMs) {
			return false
		}
	}
	return true
}

// maxDeviation is the largest relative distance of any value from the mean.
func maxDeviation(xs []float64) float64 {
	m := signal.Mean(xs)
	if m == 0 {
		return 0
	}
	worst := 0.0
	for _, x := range xs {
		if d := (x - m) / m; d > worst {
			worst = d
		} else if -d > worst {
			worst = -d
		}
	}
	return worst
}
