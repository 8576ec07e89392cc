package resegment

import (
	"fmt"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/signal"
)

// prominenceSteps are the valley prominence thresholds tried, as fractions
// of the signal range.
var prominenceSteps = []float64{0.12, 0.08, 0.05, 0.03, 0.02}

const defaultIntervalMs = 50.0

// Result is the outcome of Resegment. Set is the input set when no repair was
// accepted.
type Result struct {
	Set           models.Set `json:"set"`
	Resegmented   bool       `json:"resegmented"`
	Reason        string     `json:"reason"`
	OriginalCount int        `json:"originalCount"`
	NewCount      int        `json:"newCount"`
}

// Resegment re-detects repetition boundaries when Assess flags the set and
// keeps the repair only if it finds strictly more repetitions. maxReps caps
// the repaired count when positive; samples past the cap are folded into the
// last repetition. The input set is never modified.
func Resegment(set models.Set, ex exercise.Exercise, maxReps int) Result {
	p := exercise.ParamsFor(ex)
	res := Result{Set: set, OriginalCount: len(set.Reps), NewCount: len(set.Reps)}

	v := Assess(set, p)
	if !v.Suspect {
		res.Reason = v.Reason
		return res
	}

	var samples []models.Sample
	for _, r := range set.Reps {
		samples = append(samples, r.Samples...)
	}
	bounds := boundaries(samples, p)
	if maxReps > 0 && len(bounds)-1 > maxReps {
		bounds = append(bounds[:maxReps], len(samples))
	}

	if len(bounds)-1 <= len(set.Reps) {
		res.Reason = fmt.Sprintf("%s; no better segmentation found", v.Reason)
		return res
	}

	out := models.Set{Number: set.Number, Reps: make([]models.Repetition, 0, len(bounds)-1)}
	for i := 0; i < len(bounds)-1; i++ {
		seg := make([]models.Sample, bounds[i+1]-bounds[i])
		copy(seg, samples[bounds[i]:bounds[i+1]])
		out.Reps = append(out.Reps, models.Repetition{
			RepNumber: i + 1,
			SetNumber: set.Number,
			Samples:   seg,
		})
	}
	res.Set = out
	res.Resegmented = true
	res.NewCount = len(out.Reps)
	res.Reason = fmt.Sprintf("%s; split into %d repetitions", v.Reason, res.NewCount)
	return res
}

// boundaries returns sample indices [0, v1, ..., n] delimiting repetitions
// found as valleys of the smoothed magnitude.
func boundaries(samples []models.Sample, p exercise.Params) []int {
	n := len(samples)
	if n == 0 {
		return []int{0}
	}

	window := p.SmoothingWindow
	if window > n/4 {
		window = n / 4
	}
	if window < 1 {
		window = 1
	}
	smoothed := signal.MovingAverage(models.Magnitudes(samples), window)

	interval := medianInterval(samples)
	minDistance := int(float64(p.MinRepDurationMs) / interval)
	if minDistance < p.MinDistance {
		minDistance = p.MinDistance
	}

	span := signal.Range(smoothed)
	var valleys []int
	if span > 0 {
		for _, frac := range prominenceSteps {
			if v := signal.FindValleys(smoothed, frac*span, minDistance); len(v) > len(valleys) {
				valleys = v
			}
		}
	}

	minSegMs := 0.4 * float64(p.MinRepDurationMs)
	longEnough := func(from, to int) bool {
		return to-from >= minSegmentSamples && float64(to-from)*interval >= minSegMs
	}

	bounds := []int{0}
	for _, v := range valleys {
		if longEnough(bounds[len(bounds)-1], v) {
			bounds = append(bounds, v)
		}
	}
	if len(bounds) > 1 && !longEnough(bounds[len(bounds)-1], n) {
		bounds[len(bounds)-1] = n
	} else {
		bounds = append(bounds, n)
	}
	return bounds
}

// medianInterval is the median positive gap between consecutive timestamps
// in milliseconds, or 50 ms when timestamps are unusable.
func medianInterval(samples []models.Sample) float64 {
	var gaps []float64
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1].TimestampMs, samples[i].TimestampMs
		if a == nil || b == nil {
			continue
		}
		if d := *b - *a; d > 0 {
			gaps = append(gaps, float64(d))
		}
	}
	if len(gaps) == 0 {
		return defaultIntervalMs
	}
	return signal.Median(gaps)
}
