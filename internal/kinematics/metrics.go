// Package kinematics extracts per-repetition movement features from raw
// inertial samples.
package kinematics

// ErrInsufficientSamples is the Error value of a metrics record computed from
// fewer than MinSamples samples.
const ErrInsufficientSamples = "insufficient samples"

// MinSamples is the smallest repetition Extract will analyze.
const MinSamples = 3

// Sources of the ROMDegrees value.
const (
	ROMSourceOrientation = "orientation"
	ROMSourceTilt        = "tilt"
)

// Metrics is the feature record for one repetition. Times are seconds,
// velocities m/s when acceleration is m/s².
type Metrics struct {
	RepNumber     int     `json:"repNumber"`
	SetNumber     int     `json:"setNumber"`
	SampleCount   int     `json:"sampleCount"`
	DurationMs    float64 `json:"durationMs"`
	HasTimestamps bool    `json:"hasTimestamps"`

	ROMDegrees   float64 `json:"romDegrees"`
	ROMMagnitude float64 `json:"romMagnitude"`
	ROMSource    string  `json:"romSource,omitempty"`
	PrimaryAxis  string  `json:"primaryAxis,omitempty"`

	Smoothness          float64 `json:"smoothnessScore"`
	NormalizedJerk      float64 `json:"normalizedJerk"`
	DirectionChangeRate float64 `json:"directionChangeRate"`
	PeakCount           int     `json:"peakCount"`

	LiftingTime  float64 `json:"liftingTime"`
	LoweringTime float64 `json:"loweringTime"`
	PhaseRatio   float64 `json:"phaseRatio"`

	PeakVelocity float64 `json:"peakVelocity"`
	MeanVelocity float64 `json:"meanVelocity"`

	PeakAngularRate float64 `json:"peakAngularRate"`
	HasGyroData     bool    `json:"hasGyroData"`
	PeakMagnitude   float64 `json:"peakMagnitude"`
	MeanJerk        float64 `json:"meanJerk"`
	Shakiness       float64 `json:"shakiness"`

	Curve []float64 `json:"curve,omitempty"`
	Error string    `json:"error,omitempty"`
}

// Valid reports whether the record may take part in aggregation.
func (m Metrics) Valid() bool {
	return m.Error == ""
}

// PeakSignal is the angular-rate peak when gyro data exists, else the
// magnitude peak.
func (m Metrics) PeakSignal() float64 {
	if m.HasGyroData {
		return m.PeakAngularRate
	}
	return m.PeakMagnitude
}

// ROM returns ROMDegrees, or the magnitude span when no angle is available.
func (m Metrics) ROM() float64 {
	if m.ROMDegrees != 0 {
		return m.ROMDegrees
	}
	return m.ROMMagnitude
}
