package fatigue

import (
	"github.com/claude/replens/internal/kinematics"
	"github.com/claude/replens/internal/signal"
)

// Consistency scores how uniform ROM, smoothness, duration and peak signal
// are across the valid repetitions. Each component is 100 - CV·333 clamped
// to [0,100]; Overall is their mean.
func Consistency(metrics []kinematics.Metrics) ConsistencyScores {
	reps := validOnly(metrics)
	gyro := allGyro(reps)

	column := func(f func(kinematics.Metrics) float64) []float64 {
		xs := make([]float64, len(reps))
		for i, m := range reps {
			xs[i] = signal.Finite(f(m))
		}
		return xs
	}
	score := func(xs []float64) float64 {
		return round1(signal.Clip(0, 100, 100-signal.CoefficientOfVariation(xs)*333))
	}

	c := ConsistencyScores{
		ROM:        score(column(kinematics.Metrics.ROM)),
		Smoothness: score(column(func(m kinematics.Metrics) float64 { return m.Smoothness })),
		Duration:   score(column(func(m kinematics.Metrics) float64 { return m.DurationMs })),
		PeakSignal: score(column(func(m kinematics.Metrics) float64 { return peakSignal(m, gyro) })),
	}
	c.Overall = round1(signal.Mean([]float64{c.ROM, c.Smoothness, c.Duration, c.PeakSignal}))
	return c
}
