package exercise

import "testing"

// TestNormalize verifies separator and case variants resolve to the same
// exercise, and that no substring matching happens.
func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  Exercise
	}{
		{"Bench Press", BenchPress},
		{"bench_press", BenchPress},
		{"BENCH-PRESS", BenchPress},
		{"  lat   pulldown ", LatPulldown},
		{"Concentration Curls", ConcentrationCurls},
		{"seated_leg_extension", SeatedLegExtension},
		{"back squat", BackSquat},
		{"overhead triceps extension", OverheadExtension},
		{"incline bench press", Unknown},
		{"", Unknown},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// TestParamsFor verifies the table and the dumbbell fallback for unknown
// exercises.
func TestParamsFor(t *testing.T) {
	cases := []struct {
		ex          Exercise
		minMs       int64
		maxMs       int64
		minDistance int
	}{
		{ConcentrationCurls, 600, 6000, 8},
		{BenchPress, 800, 10000, 10},
		{BackSquat, 800, 10000, 12},
		{LatPulldown, 1500, 12000, 12},
		{Unknown, 600, 6000, 8},
	}
	for _, tc := range cases {
		p := ParamsFor(tc.ex)
		if p.MinRepDurationMs != tc.minMs || p.MaxRepDurationMs != tc.maxMs || p.MinDistance != tc.minDistance {
			t.Errorf("ParamsFor(%v) = %+v", tc.ex, p)
		}
	}
}

// TestFamilyOf verifies each exercise lands in its equipment family.
func TestFamilyOf(t *testing.T) {
	if FamilyOf(BackSquat) != Barbell {
		t.Error("back squat should be barbell")
	}
	if FamilyOf(SeatedLegExtension) != WeightStack {
		t.Error("leg extension should be weight stack")
	}
	if FamilyOf(Unknown) != Dumbbell {
		t.Error("unknown should fall back to dumbbell")
	}
}

// TestCategorizeLabel verifies the label taxonomy used for execution-quality
// scoring.
func TestCategorizeLabel(t *testing.T) {
	cases := []struct {
		label string
		want  LabelCategory
	}{
		{"Clean", CategoryClean},
		{"abrupt_initiation", CategoryMomentum},
		{"Pulling Too Fast", CategoryMomentum},
		{"Uncontrolled Movement", CategoryLossOfControl},
		{"releasing-too-fast", CategoryLossOfControl},
		{"Inclination Asymmetry", CategoryOther},
		{"something new", CategoryOther},
	}
	for _, tc := range cases {
		if got := CategorizeLabel(tc.label); got != tc.want {
			t.Errorf("CategorizeLabel(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
	for _, l := range Labels(WeightStack) {
		if CategorizeLabel(l) == CategoryOther {
			t.Errorf("weight stack label %q has no category", l)
		}
	}
}

// TestAllRoundTrips verifies every listed exercise normalizes back from its
// display name.
func TestAllRoundTrips(t *testing.T) {
	for _, e := range All() {
		if got := Normalize(e.String()); got != e {
			t.Errorf("Normalize(%q) = %v, want %v", e.String(), got, e)
		}
	}
}
