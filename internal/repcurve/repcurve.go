// Package repcurve scores how alike repetitions are by the shape of their
// magnitude curves.
package repcurve

import (
	"math"

	"github.com/claude/replens/internal/signal"
)

// tolerance absorbs the rounding left by averaging identical curves.
const tolerance = 1e-9

// Result is the curve consistency of a group of repetitions.
type Result struct {
	Score        float64   `json:"score"`
	OutlierIndex *int      `json:"outlierIndex,omitempty"`
	Deviations   []float64 `json:"deviations,omitempty"`
}

// Score resamples every curve to the length of the longest, measures each
// curve's RMS deviation from the point-wise mean curve and scores the group
// as 100·(1 - 2·meanDeviation/meanLevel), clipped to [0,100]. The curve with
// the largest deviation is the outlier unless every deviation is zero. Fewer
// than two curves score 100.
func Score(curves [][]float64) Result {
	if len(curves) < 2 {
		return Result{Score: 100}
	}
	length := 0
	for _, c := range curves {
		if len(c) > length {
			length = len(c)
		}
	}
	if length == 0 {
		return Result{Score: 100}
	}

	resampled := make([][]float64, len(curves))
	mean := make([]float64, length)
	for i, c := range curves {
		resampled[i] = signal.Resample(c, length)
		for j, v := range resampled[i] {
			mean[j] += signal.Finite(v)
		}
	}
	for j := range mean {
		mean[j] /= float64(len(curves))
	}

	devs := make([]float64, len(curves))
	diff := make([]float64, length)
	outlier := 0
	for i, c := range resampled {
		for j := range c {
			diff[j] = signal.Finite(c[j]) - mean[j]
		}
		devs[i] = signal.RMS(diff)
		if devs[i] > devs[outlier] {
			outlier = i
		}
	}

	meanDev := signal.Mean(devs)
	level := math.Abs(signal.Mean(mean))

	res := Result{Deviations: devs}
	if devs[outlier] > tolerance*math.Max(1, level) {
		res.OutlierIndex = &outlier
	}
	switch {
	case level == 0 && meanDev <= tolerance:
		res.Score = 100
	case level == 0:
		res.Score = 0
	default:
		res.Score = signal.Clip(0, 100, math.Round(100*(1-2*meanDev/level)))
	}
	return res
}
