package models

import (
	"errors"
	"math"
	"time"
)

// Boundary errors returned by NormalizeWorkout.
var (
	ErrNoSets          = errors.New("capture contains no sets")
	ErrEmptyRepetition = errors.New("capture contains no samples")
)

// Sample is one inertial reading. Orientation angles are gravity-compensated
// degrees; all-zero orientation means the capture layer did not provide it.
type Sample struct {
	TimestampMs       *int64   `json:"timestampMs,omitempty"`
	AccelX            float64  `json:"accelX"`
	AccelY            float64  `json:"accelY"`
	AccelZ            float64  `json:"accelZ"`
	GyroX             float64  `json:"gyroX"`
	GyroY             float64  `json:"gyroY"`
	GyroZ             float64  `json:"gyroZ"`
	FilteredMagnitude *float64 `json:"filteredMagnitude,omitempty"`
	AccelMagnitude    *float64 `json:"accelMagnitude,omitempty"`
	Roll              float64  `json:"roll"`
	Pitch             float64  `json:"pitch"`
	Yaw               float64  `json:"yaw"`
}

// Repetition is an ordered, non-empty run of samples.
type Repetition struct {
	RepNumber  int      `json:"repNumber"`
	SetNumber  int      `json:"setNumber"`
	DurationMs *int64   `json:"durationMs,omitempty"`
	Samples    []Sample `json:"samples"`
}

// Duration returns the recorded duration, falling back to the span between
// the first and last sample timestamps. ok is false when neither is known.
func (r Repetition) Duration() (ms int64, ok bool) {
	if r.DurationMs != nil {
		return *r.DurationMs, true
	}
	if len(r.Samples) == 0 {
		return 0, false
	}
	first, last := r.Samples[0].TimestampMs, r.Samples[len(r.Samples)-1].TimestampMs
	if first == nil || last == nil {
		return 0, false
	}
	return *last - *first, true
}

// HasTimestamps reports whether every sample carries a timestamp.
func (r Repetition) HasTimestamps() bool {
	if len(r.Samples) == 0 {
		return false
	}
	for _, s := range r.Samples {
		if s.TimestampMs == nil {
			return false
		}
	}
	return true
}

// Set is an ordered sequence of repetitions sharing a set number.
type Set struct {
	Number int          `json:"setNumber"`
	Reps   []Repetition `json:"reps"`
}

// SampleCount returns the number of samples across all repetitions.
func (s Set) SampleCount() int {
	n := 0
	for _, r := range s.Reps {
		n += len(r.Samples)
	}
	return n
}

// ClassificationSummary is the optional form-quality summary produced by an
// external classifier.
type ClassificationSummary struct {
	CleanPercentage float64        `json:"cleanPercentage"`
	Distribution    map[string]int `json:"distribution,omitempty"`
}

// Workout is the top-level unit of analysis.
type Workout struct {
	Exercise       string                 `json:"exercise"`
	Equipment      string                 `json:"equipment,omitempty"`
	PerformedAt    time.Time              `json:"performedAt"`
	Sets           []Set                  `json:"sets"`
	Classification *ClassificationSummary `json:"classification,omitempty"`
}

// RepCount returns the number of repetitions across all sets.
func (w Workout) RepCount() int {
	n := 0
	for _, s := range w.Sets {
		n += len(s.Reps)
	}
	return n
}

// SampleCount returns the number of samples across all sets.
func (w Workout) SampleCount() int {
	n := 0
	for _, s := range w.Sets {
		n += s.SampleCount()
	}
	return n
}

// Magnitudes returns the magnitude series used by the analysis packages:
// filteredMagnitude when every sample has it, else accelMagnitude when every
// sample has it, else the Euclidean norm of the acceleration axes.
func Magnitudes(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}

	allFiltered, allAccel := true, true
	for _, s := range samples {
		if s.FilteredMagnitude == nil {
			allFiltered = false
		}
		if s.AccelMagnitude == nil {
			allAccel = false
		}
	}

	for i, s := range samples {
		switch {
		case allFiltered:
			out[i] = *s.FilteredMagnitude
		case allAccel:
			out[i] = *s.AccelMagnitude
		default:
			out[i] = math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
		}
	}
	return out
}

// GyroMagnitudes returns the angular-rate norm of each sample.
func GyroMagnitudes(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Sqrt(s.GyroX*s.GyroX + s.GyroY*s.GyroY + s.GyroZ*s.GyroZ)
	}
	return out
}
