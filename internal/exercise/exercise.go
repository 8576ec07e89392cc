// Package exercise maps free-form exercise identifiers onto a fixed set of
// exercises and holds the per-family segmentation parameters.
package exercise

import "strings"

// Exercise is a recognised movement. Unknown covers everything else.
type Exercise int

const (
	Unknown Exercise = iota
	ConcentrationCurls
	OverheadExtension
	BenchPress
	BackSquat
	LatPulldown
	SeatedLegExtension
)

var names = map[Exercise]string{
	Unknown:            "Unknown",
	ConcentrationCurls: "Concentration Curls",
	OverheadExtension:  "Overhead Extension",
	BenchPress:         "Bench Press",
	BackSquat:          "Back Squat",
	LatPulldown:        "Lat Pulldown",
	SeatedLegExtension: "Seated Leg Extension",
}

func (e Exercise) String() string {
	if n, ok := names[e]; ok {
		return n
	}
	return names[Unknown]
}

// All returns the recognised exercises in declaration order.
func All() []Exercise {
	return []Exercise{ConcentrationCurls, OverheadExtension, BenchPress, BackSquat, LatPulldown, SeatedLegExtension}
}

// aliases maps normalized identifiers (lowercase, single-spaced) to exercises.
var aliases = map[string]Exercise{
	"concentration curls":        ConcentrationCurls,
	"concentration curl":         ConcentrationCurls,
	"overhead extension":         OverheadExtension,
	"overhead extensions":        OverheadExtension,
	"overhead triceps extension": OverheadExtension,
	"overhead tricep extension":  OverheadExtension,
	"bench press":                BenchPress,
	"barbell bench press":        BenchPress,
	"back squat":                 BackSquat,
	"back squats":                BackSquat,
	"barbell back squat":         BackSquat,
	"lat pulldown":               LatPulldown,
	"lat pulldowns":              LatPulldown,
	"lat pull down":              LatPulldown,
	"seated leg extension":       SeatedLegExtension,
	"seated leg extensions":      SeatedLegExtension,
	"leg extension":              SeatedLegExtension,
}

// Normalize resolves an identifier such as "bench_press" or "Lat-Pulldown".
// Matching is exact after case folding and separator cleanup.
func Normalize(id string) Exercise {
	key := strings.ToLower(id)
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if e, ok := aliases[key]; ok {
		return e
	}
	return Unknown
}

// Family groups exercises that share segmentation behaviour.
type Family string

const (
	Dumbbell    Family = "dumbbell"
	Barbell     Family = "barbell"
	WeightStack Family = "weight_stack"
)

// FamilyOf returns the equipment family. Unknown exercises are dumbbell.
func FamilyOf(e Exercise) Family {
	switch e {
	case BenchPress, BackSquat:
		return Barbell
	case LatPulldown, SeatedLegExtension:
		return WeightStack
	default:
		return Dumbbell
	}
}

// Params are the segmentation thresholds for one exercise.
type Params struct {
	MinRepDurationMs int64 `json:"minRepDurationMs"`
	MaxRepDurationMs int64 `json:"maxRepDurationMs"`
	SmoothingWindow  int   `json:"smoothingWindow"`
	MinDistance      int   `json:"minDistance"`
}

var defaultParams = Params{MinRepDurationMs: 600, MaxRepDurationMs: 6000, SmoothingWindow: 5, MinDistance: 8}

var params = map[Exercise]Params{
	ConcentrationCurls: defaultParams,
	OverheadExtension:  defaultParams,
	BenchPress:         {MinRepDurationMs: 800, MaxRepDurationMs: 10000, SmoothingWindow: 5, MinDistance: 10},
	BackSquat:          {MinRepDurationMs: 800, MaxRepDurationMs: 10000, SmoothingWindow: 7, MinDistance: 12},
	LatPulldown:        {MinRepDurationMs: 1500, MaxRepDurationMs: 12000, SmoothingWindow: 9, MinDistance: 12},
	SeatedLegExtension: {MinRepDurationMs: 1500, MaxRepDurationMs: 12000, SmoothingWindow: 9, MinDistance: 12},
}

// ParamsFor returns the thresholds for e, falling back to the dumbbell
// defaults.
func ParamsFor(e Exercise) Params {
	if p, ok := params[e]; ok {
		return p
	}
	return defaultParams
}
