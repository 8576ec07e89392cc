package fatigue

import (
	"fmt"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/kinematics"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/signal"
)

// MinReps is the smallest sequence that produces a score.
const MinReps = 3

// Composite weights with and without a classification summary.
var (
	weightsWithQuality = [5]float64{0.25, 0.18, 0.14, 0.14, 0.29}
	weightsKinematic   = [4]float64{0.35, 0.25, 0.20, 0.20}
)

// Analyze scores one ordered sequence of repetitions. Invalid records are
// skipped. cls may be nil.
func Analyze(metrics []kinematics.Metrics, cls *models.ClassificationSummary) Report {
	reps := validOnly(metrics)
	n := len(reps)
	if n < MinReps {
		return Report{
			Level:    LevelInsufficientData,
			RepCount: n,
			Findings: []string{fmt.Sprintf("Not enough repetitions for fatigue analysis (need at least %d, got %d).", MinReps, n)},
		}
	}

	third := n / 3
	if third < 1 {
		third = 1
	}
	gyro := allGyro(reps)
	early := windowStats(reps[:third], gyro)
	late := windowStats(reps[n-third:], gyro)
	fresh := bestOf(reps[:third], gyro)
	tired := worstOf(reps[n-third:], gyro)

	ind := Indicators{
		DOmega:           relativeDrop(fresh.PeakSignal, tired.PeakSignal),
		IT:               relativeIncrease(fresh.DurationMs, tired.DurationMs),
		IJ:               relativeIncrease(fresh.MeanJerk, tired.MeanJerk),
		IS:               relativeIncrease(fresh.Shakiness, tired.Shakiness),
		HasGyroData:      gyro,
		HasDurationData:  early.DurationMs > 0,
		HasJerkData:      early.MeanJerk > 0,
		HasShakinessData: early.Shakiness > 0,
	}
	var mix labelMix
	if cls != nil {
		mix = mixOf(cls)
		ind.QExec = qualityPenalty(cls.CleanPercentage, mix)
		ind.HasClassificationData = true
	}

	score := compositeScore(ind, cls)
	return Report{
		Score:       score,
		Level:       LevelFor(score),
		RepCount:    n,
		Indicators:  ind,
		Comparison:  Comparison{WindowSize: third, Early: early, Late: late, EarlyBest: fresh, LateWorst: tired},
		Consistency: Consistency(reps),
		Findings:    findings(ind, cls, mix),
	}
}

// compositeScore combines the indicators into a 0-100 score rounded to one
// decimal.
func compositeScore(ind Indicators, cls *models.ClassificationSummary) float64 {
	var f float64
	if cls != nil {
		w := weightsWithQuality
		f = w[0]*ind.DOmega + w[1]*ind.IT + w[2]*ind.IJ + w[3]*ind.IS + w[4]*ind.QExec
	} else {
		w := weightsKinematic
		f = w[0]*ind.DOmega + w[1]*ind.IT + w[2]*ind.IJ + w[3]*ind.IS
	}

	kin := ind.kinematic()
	if worst := signal.Max(kin); worst > 0.5 {
		f += (worst - 0.5) * 0.25
	}
	if ind.QExec > 0.6 {
		f += (ind.QExec - 0.6) * 0.2
	}
	// Cap at (50 - (clean-70)·0.43)/100: 50 at 70% clean, 41.4 at 90%, 37.1 at 100%.
	if cls != nil && cls.CleanPercentage >= 70 {
		if limit := (50 - (cls.CleanPercentage-70)*0.43) / 100; f > limit {
			f = limit
		}
	}
	if signal.Max(kin) < 0.15 && f > 0.45 {
		f = 0.45
	}

	return round1(signal.Clip(0, 1, signal.Finite(f)) * 100)
}

type labelMix struct {
	total         int
	momentum      float64
	lossOfControl float64
}

func mixOf(cls *models.ClassificationSummary) labelMix {
	var mix labelMix
	var momentum, loss int
	for label, count := range cls.Distribution {
		if count <= 0 {
			continue
		}
		mix.total += count
		switch exercise.CategorizeLabel(label) {
		case exercise.CategoryMomentum:
			momentum += count
		case exercise.CategoryLossOfControl:
			loss += count
		}
	}
	if mix.total > 0 {
		mix.momentum = float64(momentum) / float64(mix.total)
		mix.lossOfControl = float64(loss) / float64(mix.total)
	}
	return mix
}

// qualityPenalty is the execution-quality term.
func qualityPenalty(cleanPct float64, mix labelMix) float64 {
	p := (100 - signal.Finite(cleanPct)) / 100
	if mix.momentum > 0.25 {
		p += (mix.momentum - 0.25) * 0.4
	}
	if mix.lossOfControl > 0.20 {
		p += (mix.lossOfControl - 0.20) * 0.5
	}
	return signal.Clip(0, 1, p)
}

// windowStats averages a window. The peak signal is angular rate only when
// every repetition of the sequence has gyro data.
func windowStats(reps []kinematics.Metrics, gyro bool) WindowStats {
	pick := func(f func(kinematics.Metrics) float64) float64 {
		xs := make([]float64, len(reps))
		for i, m := range reps {
			xs[i] = signal.Finite(f(m))
		}
		return signal.Mean(xs)
	}
	return WindowStats{
		PeakSignal: pick(func(m kinematics.Metrics) float64 { return peakSignal(m, gyro) }),
		DurationMs: pick(func(m kinematics.Metrics) float64 { return m.DurationMs }),
		MeanJerk:   pick(func(m kinematics.Metrics) float64 { return m.MeanJerk }),
		Shakiness:  pick(func(m kinematics.Metrics) float64 { return m.Shakiness }),
		ROM:        pick(kinematics.Metrics.ROM),
		Smoothness: pick(func(m kinematics.Metrics) float64 { return m.Smoothness }),
	}
}

// bestOf is the freshest value of each compared metric in a window: the
// highest peak signal and the lowest duration, jerk and shakiness.
func bestOf(reps []kinematics.Metrics, gyro bool) Extremes {
	c := columns(reps, gyro)
	return Extremes{
		PeakSignal: signal.Max(c.PeakSignal),
		DurationMs: signal.Min(c.DurationMs),
		MeanJerk:   signal.Min(c.MeanJerk),
		Shakiness:  signal.Min(c.Shakiness),
	}
}

// worstOf is the most fatigued value of each compared metric in a window.
func worstOf(reps []kinematics.Metrics, gyro bool) Extremes {
	c := columns(reps, gyro)
	return Extremes{
		PeakSignal: signal.Min(c.PeakSignal),
		DurationMs: signal.Max(c.DurationMs),
		MeanJerk:   signal.Max(c.MeanJerk),
		Shakiness:  signal.Max(c.Shakiness),
	}
}

type metricColumns struct {
	PeakSignal, DurationMs, MeanJerk, Shakiness []float64
}

func columns(reps []kinematics.Metrics, gyro bool) metricColumns {
	var c metricColumns
	for _, m := range reps {
		c.PeakSignal = append(c.PeakSignal, signal.Finite(peakSignal(m, gyro)))
		c.DurationMs = append(c.DurationMs, signal.Finite(m.DurationMs))
		c.MeanJerk = append(c.MeanJerk, signal.Finite(m.MeanJerk))
		c.Shakiness = append(c.Shakiness, signal.Finite(m.Shakiness))
	}
	return c
}

func peakSignal(m kinematics.Metrics, gyro bool) float64 {
	if gyro {
		return m.PeakAngularRate
	}
	return m.PeakMagnitude
}

func relativeDrop(early, late float64) float64 {
	if early <= 0 {
		return 0
	}
	return signal.Finite(max(0, (early-late)/early))
}

func relativeIncrease(early, late float64) float64 {
	if early <= 0 {
		return 0
	}
	return signal.Finite(max(0, (late-early)/early))
}

func allGyro(reps []kinematics.Metrics) bool {
	for _, m := range reps {
		if !m.HasGyroData {
			return false
		}
	}
	return len(reps) > 0
}

func validOnly(metrics []kinematics.Metrics) []kinematics.Metrics {
	out := make([]kinematics.Metrics, 0, len(metrics))
	for _, m := range metrics {
		if m.Valid() {
			out = append(out, m)
		}
	}
	return out
}
