package kinematics

import (
	"math"

	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/signal"
)

const (
	// defaultDt is the sample spacing assumed without timestamps (20 Hz).
	defaultDt = 0.05
	minDt     = 0.005
	maxDt     = 0.2
)

// Extract computes the feature record for one repetition. Repetitions with
// fewer than MinSamples samples yield a zeroed record flagged with
// ErrInsufficientSamples.
func Extract(rep models.Repetition) Metrics {
	m := Metrics{
		RepNumber:   rep.RepNumber,
		SetNumber:   rep.SetNumber,
		SampleCount: len(rep.Samples),
	}
	if len(rep.Samples) < MinSamples {
		m.Error = ErrInsufficientSamples
		return m
	}

	samples := rep.Samples
	times, hasTS := sampleTimes(rep)
	m.HasTimestamps = hasTS
	m.DurationMs = durationMs(rep, times)

	mag := models.Magnitudes(samples)
	m.Curve = mag
	m.PeakMagnitude = signal.Max(mag)
	m.ROMMagnitude = signal.Range(mag)

	orient, hasOrient := orientationAxes(samples)
	var prim axis
	if hasOrient {
		prim = primaryAxis(orient)
		m.ROMDegrees = signal.Range(prim.values)
		m.ROMSource = ROMSourceOrientation
	} else {
		prim = primaryAxis(accelAxes(samples))
		m.ROMDegrees = signal.Range(tiltAngles(samples))
		m.ROMSource = ROMSourceTilt
	}
	m.PrimaryAxis = prim.name

	sm := smoothness(mag, m.DurationMs)
	m.Smoothness = sm.score
	m.NormalizedJerk = sm.normalizedJerk
	m.DirectionChangeRate = sm.directionRate
	m.PeakCount = sm.peakCount
	m.MeanJerk = sm.meanJerk

	var turn int
	if hasOrient {
		turn = orientationTurn(prim.values)
	} else {
		turn = accelTurn(prim.values)
	}
	m.LiftingTime = times[turn] - times[0]
	m.LoweringTime = times[len(times)-1] - times[turn]
	if m.LiftingTime > 0 {
		m.PhaseRatio = m.LoweringTime / m.LiftingTime
	}

	m.PeakVelocity, m.MeanVelocity = velocity(mag, times, hasTS)

	gyro := models.GyroMagnitudes(samples)
	m.PeakAngularRate = signal.Max(gyro)
	m.HasGyroData = m.PeakAngularRate > 0
	m.Shakiness = shakiness(gyro, times)

	return sanitize(m)
}

// sampleTimes returns seconds relative to the first sample. Without a full
// set of timestamps the uniform 20 Hz spacing is assumed.
func sampleTimes(rep models.Repetition) ([]float64, bool) {
	out := make([]float64, len(rep.Samples))
	if rep.HasTimestamps() {
		t0 := *rep.Samples[0].TimestampMs
		for i, s := range rep.Samples {
			out[i] = float64(*s.TimestampMs-t0) / 1000
		}
		return out, true
	}
	for i := range out {
		out[i] = float64(i) * defaultDt
	}
	return out, false
}

func durationMs(rep models.Repetition, times []float64) float64 {
	if d, ok := rep.Duration(); ok && d > 0 {
		return float64(d)
	}
	return (times[len(times)-1] - times[0]) * 1000
}

type axis struct {
	name   string
	values []float64
}

func orientationAxes(samples []models.Sample) ([]axis, bool) {
	roll := make([]float64, len(samples))
	pitch := make([]float64, len(samples))
	yaw := make([]float64, len(samples))
	nonZero := false
	for i, s := range samples {
		roll[i], pitch[i], yaw[i] = s.Roll, s.Pitch, s.Yaw
		if s.Roll != 0 || s.Pitch != 0 || s.Yaw != 0 {
			nonZero = true
		}
	}
	return []axis{{"roll", roll}, {"pitch", pitch}, {"yaw", yaw}}, nonZero
}

func accelAxes(samples []models.Sample) []axis {
	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	z := make([]float64, len(samples))
	for i, s := range samples {
		x[i], y[i], z[i] = s.AccelX, s.AccelY, s.AccelZ
	}
	return []axis{{"x", x}, {"y", y}, {"z", z}}
}

// primaryAxis returns the axis with the largest range; ties keep the first.
func primaryAxis(axes []axis) axis {
	best := axes[0]
	bestRange := signal.Range(best.values)
	for _, a := range axes[1:] {
		if r := signal.Range(a.values); r > bestRange {
			best, bestRange = a, r
		}
	}
	return best
}

// tiltAngles estimates the inclination of the sensor from gravity, in degrees.
func tiltAngles(samples []models.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Atan2(s.AccelX, math.Hypot(s.AccelY, s.AccelZ)) * 180 / math.Pi
	}
	return out
}

// orientationTurn picks whichever of the global max and min lies farther from
// both edges. Turns within 2 samples of an edge fall back to the midpoint.
func orientationTurn(xs []float64) int {
	n := len(xs)
	iMax, iMin := 0, 0
	for i, v := range xs {
		if v > xs[iMax] {
			iMax = i
		}
		if v < xs[iMin] {
			iMin = i
		}
	}
	turn := iMax
	if edgeDistance(iMin, n) > edgeDistance(iMax, n) {
		turn = iMin
	}
	if edgeDistance(turn, n) <= 2 {
		return n / 2
	}
	return turn
}

// accelTurn picks the prominent positive or negative peak with the largest
// absolute value. Without any prominent peak the absolute maximum is used.
func accelTurn(xs []float64) int {
	n := len(xs)
	prom := 0.1 * signal.Range(xs)
	dist := n / 4
	if dist > 10 {
		dist = 10
	}
	candidates := append(signal.FindPeaks(xs, prom, dist), signal.FindValleys(xs, prom, dist)...)
	if len(candidates) == 0 {
		for i := range xs {
			candidates = append(candidates, i)
		}
	}
	best := candidates[0]
	for _, i := range candidates[1:] {
		if math.Abs(xs[i]) > math.Abs(xs[best]) {
			best = i
		}
	}
	return best
}

func edgeDistance(i, n int) int {
	if d := n - 1 - i; d < i {
		return d
	}
	return i
}

type smoothnessResult struct {
	score          float64
	normalizedJerk float64
	directionRate  float64
	peakCount      int
	meanJerk       float64
}

// smoothness scores a magnitude curve from its jerk, direction reversals and
// extra extrema. Differences are per sample.
func smoothness(mag []float64, durMs float64) smoothnessResult {
	var r smoothnessResult
	vel := signal.Diff(mag)
	jerk := signal.Diff(vel)
	span := signal.Range(mag)

	r.meanJerk = signal.Mean(signal.Abs(jerk))
	r.normalizedJerk = r.meanJerk / math.Max(span, 0.1)

	changes, last := 0, 0.0
	for _, v := range vel {
		if v == 0 {
			continue
		}
		if last != 0 && (v > 0) != (last > 0) {
			changes++
		}
		last = v
	}
	if durMs > 0 {
		r.directionRate = float64(changes) / (durMs / 1000)
	}

	prom := 0.05 * span
	r.peakCount = len(signal.FindPeaks(mag, prom, 3)) + len(signal.FindValleys(mag, prom, 3))

	irregularity := signal.Clip(0, 40, (r.normalizedJerk-1.5)*13.3) +
		signal.Clip(0, 35, (r.directionRate-0.5)*10) +
		signal.Clip(0, 25, math.Max(0, float64(r.peakCount-2))*3.3)
	r.score = signal.Clip(0, 100, 100-irregularity)
	return r
}

// velocity integrates gravity-compensated magnitude into a drift-corrected
// velocity curve and returns its peak and mean absolute value.
func velocity(mag, times []float64, hasTS bool) (peak, mean float64) {
	n := len(mag)
	k := n / 4
	if k > 3 {
		k = 3
	}
	if k < 1 {
		k = 1
	}
	baseline := signal.Mean(mag[:k])

	v := make([]float64, n)
	for i := 1; i < n; i++ {
		dt := defaultDt
		if hasTS {
			dt = signal.Clip(minDt, maxDt, times[i]-times[i-1])
		}
		a0, a1 := mag[i-1]-baseline, mag[i]-baseline
		v[i] = v[i-1] + (a0+a1)/2*dt
	}

	v0, vN := v[0], v[n-1]
	for i := range v {
		v[i] -= v0 + (vN-v0)*float64(i)/float64(n-1)
	}

	abs := signal.Abs(v)
	return signal.Max(abs), signal.Mean(abs)
}

// shakiness is the RMS of the angular-rate magnitude derivative.
func shakiness(gyro, times []float64) float64 {
	if len(gyro) < 2 {
		return 0
	}
	d := make([]float64, len(gyro)-1)
	for i := range d {
		dt := signal.Clip(minDt, maxDt, times[i+1]-times[i])
		d[i] = (gyro[i+1] - gyro[i]) / dt
	}
	return signal.RMS(d)
}

func sanitize(m Metrics) Metrics {
	for _, f := range []*float64{
		&m.DurationMs, &m.ROMDegrees, &m.ROMMagnitude, &m.Smoothness, &m.NormalizedJerk,
		&m.DirectionChangeRate, &m.LiftingTime, &m.LoweringTime, &m.PhaseRatio,
		&m.PeakVelocity, &m.MeanVelocity, &m.PeakAngularRate, &m.PeakMagnitude,
		&m.MeanJerk, &m.Shakiness,
	} {
		*f = signal.Finite(*f)
	}
	m.ROMDegrees = math.Abs(m.ROMDegrees)
	return m
}
