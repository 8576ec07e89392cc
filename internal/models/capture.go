package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

// CapturePayload is the wire shape posted by capture devices. Several field
// names have more than one historical spelling; NormalizeWorkout resolves
// them into a Workout.
type CapturePayload struct {
	Exercise       string             `json:"exercise"`
	ExerciseID     string             `json:"exerciseId"`
	Equipment      string             `json:"equipment"`
	EquipmentID    string             `json:"equipmentId"`
	PerformedAt    *time.Time         `json:"performedAt"`
	Sets           []RawSet           `json:"sets"`
	Reps           []RawRep           `json:"reps"`
	Classification *RawClassification `json:"classification"`
}

// RawSet is a set as posted, before alias resolution.
type RawSet struct {
	Set       *int     `json:"set"`
	SetNumber *int     `json:"setNumber"`
	Reps      []RawRep `json:"reps"`
}

// RawRep is a repetition as posted. DurationMs, Duration and Time are all
// milliseconds.
type RawRep struct {
	Rep        *int        `json:"rep"`
	RepNumber  *int        `json:"repNumber"`
	Set        *int        `json:"set"`
	SetNumber  *int        `json:"setNumber"`
	DurationMs *float64    `json:"durationMs"`
	Duration   *float64    `json:"duration"`
	Time       *float64    `json:"time"`
	Samples    []RawSample `json:"samples"`
}

// RawSample is a sample as posted.
type RawSample struct {
	TimestampMs       *float64 `json:"timestampMs"`
	TimestampMsSnake  *float64 `json:"timestamp_ms"`
	Timestamp         *float64 `json:"timestamp"`
	AccelX            *float64 `json:"accelX"`
	AccelY            *float64 `json:"accelY"`
	AccelZ            *float64 `json:"accelZ"`
	GyroX             *float64 `json:"gyroX"`
	GyroY             *float64 `json:"gyroY"`
	GyroZ             *float64 `json:"gyroZ"`
	FilteredMag       *float64 `json:"filteredMag"`
	FilteredMagnitude *float64 `json:"filteredMagnitude"`
	AccelMag          *float64 `json:"accelMag"`
	AccelMagnitude    *float64 `json:"accelMagnitude"`
	Roll              *float64 `json:"roll"`
	Pitch             *float64 `json:"pitch"`
	Yaw               *float64 `json:"yaw"`
}

// RawClassification is the optional classifier summary as posted.
type RawClassification struct {
	CleanPercentage *float64       `json:"cleanPercentage"`
	Distribution    map[string]int `json:"distribution"`
}

// NormalizeWorkout resolves field aliases and produces the canonical Workout.
// Non-finite numbers become 0, repetitions without samples are dropped, flat
// rep lists are grouped by set number and sets are ordered by number.
func NormalizeWorkout(raw CapturePayload) (Workout, error) {
	w := Workout{
		Exercise:  strings.TrimSpace(firstNonEmpty(raw.Exercise, raw.ExerciseID)),
		Equipment: strings.TrimSpace(firstNonEmpty(raw.Equipment, raw.EquipmentID)),
	}
	if raw.PerformedAt != nil {
		w.PerformedAt = raw.PerformedAt.UTC()
	}
	if raw.Classification != nil {
		w.Classification = &ClassificationSummary{
			CleanPercentage: finite(deref(raw.Classification.CleanPercentage)),
			Distribution:    raw.Classification.Distribution,
		}
	}

	if len(raw.Sets) == 0 && len(raw.Reps) == 0 {
		return Workout{}, ErrNoSets
	}

	bySet := make(map[int][]Repetition)
	var order []int
	add := func(setNum int, rr RawRep) {
		if len(rr.Samples) == 0 {
			return
		}
		if _, seen := bySet[setNum]; !seen {
			order = append(order, setNum)
		}
		rep := Repetition{
			RepNumber: firstInt(len(bySet[setNum])+1, rr.Rep, rr.RepNumber),
			SetNumber: setNum,
			Samples:   make([]Sample, len(rr.Samples)),
		}
		if d := firstFloat(rr.DurationMs, rr.Duration, rr.Time); d != nil {
			ms := int64(math.Round(finite(*d)))
			rep.DurationMs = &ms
		}
		for i, rs := range rr.Samples {
			rep.Samples[i] = normalizeSample(rs)
		}
		bySet[setNum] = append(bySet[setNum], rep)
	}

	for i, rs := range raw.Sets {
		setNum := firstInt(i+1, rs.Set, rs.SetNumber)
		for _, rr := range rs.Reps {
			add(setNum, rr)
		}
	}
	for _, rr := range raw.Reps {
		add(firstInt(1, rr.Set, rr.SetNumber), rr)
	}

	if len(order) == 0 {
		return Workout{}, ErrEmptyRepetition
	}
	sort.Ints(order)
	for _, n := range order {
		w.Sets = append(w.Sets, Set{Number: n, Reps: bySet[n]})
	}
	return w, nil
}

func normalizeSample(rs RawSample) Sample {
	s := Sample{
		AccelX: finite(deref(rs.AccelX)),
		AccelY: finite(deref(rs.AccelY)),
		AccelZ: finite(deref(rs.AccelZ)),
		GyroX:  finite(deref(rs.GyroX)),
		GyroY:  finite(deref(rs.GyroY)),
		GyroZ:  finite(deref(rs.GyroZ)),
		Roll:   finite(deref(rs.Roll)),
		Pitch:  finite(deref(rs.Pitch)),
		Yaw:    finite(deref(rs.Yaw)),
	}
	if ts := firstFloat(rs.TimestampMs, rs.TimestampMsSnake, rs.Timestamp); ts != nil && isFinite(*ts) {
		v := int64(math.Round(*ts))
		s.TimestampMs = &v
	}
	if m := firstFloat(rs.FilteredMagnitude, rs.FilteredMag); m != nil {
		v := finite(*m)
		s.FilteredMagnitude = &v
	}
	if m := firstFloat(rs.AccelMagnitude, rs.AccelMag); m != nil {
		v := finite(*m)
		s.AccelMagnitude = &v
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(fallback int, vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
