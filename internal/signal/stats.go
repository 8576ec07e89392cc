// Package signal holds the numeric primitives shared by the repetition
// analysis packages. Every function is total: empty input yields zero and no
// function returns NaN or Inf.
package signal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Finite replaces NaN and ±Inf with 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clip bounds v to [lo, hi]. NaN clips to lo.
func Clip(lo, hi, v float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Finite(stat.Mean(xs, nil))
}

// StdDev returns the population standard deviation.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(xs, nil)
	return Finite(std)
}

// CoefficientOfVariation returns std/|mean|, or 0 when the mean is zero.
func CoefficientOfVariation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return Finite(StdDev(xs) / math.Abs(m))
}

// Max returns the largest value, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Max(xs)
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Min(xs)
}

// Range returns max - min.
func Range(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Max(xs) - floats.Min(xs)
}

// RMS returns the root mean square.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(xs, xs) / float64(len(xs)))
}

// Abs returns a new slice of absolute values.
func Abs(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = math.Abs(v)
	}
	return out
}

// Diff returns the first difference xs[i+1]-xs[i].
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := range out {
		out[i] = xs[i+1] - xs[i]
	}
	return out
}

// Percentile returns the p-th percentile (0-100) with linear interpolation
// between closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	p = Clip(0, 100, p)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is Percentile(xs, 50).
func Median(xs []float64) float64 {
	return Percentile(xs, 50)
}

// Slope returns the least-squares slope of xs against its sample index.
func Slope(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	idx := make([]float64, len(xs))
	for i := range idx {
		idx[i] = float64(i)
	}
	_, beta := stat.LinearRegression(idx, xs, nil, false)
	return Finite(beta)
}
