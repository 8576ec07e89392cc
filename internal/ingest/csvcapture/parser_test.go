package csvcapture

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/replens/internal/models"
)

const sampleCSV = `timestamp_ms,accelX,accelY,accelZ,gyroX,gyroY,gyroZ,filteredMag,roll,pitch,yaw,rep,set
0,0.1,0.2,9.8,0.01,0.02,0.03,9.81,1,10,0,1,1
50,0.1,0.2,10.2,0.05,0.02,0.03,10.21,1,20,0,1,1
100,0.1,0.2,9.9,0.02,0.02,0.03,9.91,1,12,0,1,1
150,0.0,0.1,9.7,0.01,0.01,0.02,9.71,0,9,0,2,1

200,0.0,0.1,10.4,0.06,0.01,0.02,10.41,0,22,0,2,1
0,0.2,0.1,9.8,0.01,0.01,0.01,9.8,0,8,0,1,2
`

// TestParseGroupsRows verifies rows are grouped into repetitions by set and
// rep, in order of first appearance, with blank lines skipped.
func TestParseGroupsRows(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Reps) != 3 {
		t.Fatalf("reps = %d, want 3", len(p.Reps))
	}
	wantSamples := []int{3, 2, 1}
	for i, r := range p.Reps {
		if len(r.Samples) != wantSamples[i] {
			t.Errorf("rep %d samples = %d, want %d", i, len(r.Samples), wantSamples[i])
		}
	}
	if *p.Reps[2].Set != 2 || *p.Reps[2].Rep != 1 {
		t.Errorf("third rep = set %d rep %d, want set 2 rep 1", *p.Reps[2].Set, *p.Reps[2].Rep)
	}
	s := p.Reps[0].Samples[1]
	if s.TimestampMs == nil || *s.TimestampMs != 50 {
		t.Errorf("timestamp = %v, want 50", s.TimestampMs)
	}
	if s.FilteredMag == nil || *s.FilteredMag != 10.21 {
		t.Errorf("filteredMag = %v, want 10.21", s.FilteredMag)
	}
	if s.AccelMag != nil {
		t.Errorf("accelMag = %v, want nil for a missing column", *s.AccelMag)
	}
}

// TestParseNormalizes verifies a parsed capture normalizes into sets.
func TestParseNormalizes(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, err := models.NormalizeWorkout(p)
	if err != nil {
		t.Fatalf("NormalizeWorkout: %v", err)
	}
	if len(w.Sets) != 2 || len(w.Sets[0].Reps) != 2 {
		t.Errorf("sets = %+v", w.Sets)
	}
	if w.SampleCount() != 6 {
		t.Errorf("samples = %d, want 6", w.SampleCount())
	}
}

// TestParseMinimalColumns verifies accel-only files land in set 1, rep 1
// and that header spelling is case- and underscore-tolerant.
func TestParseMinimalColumns(t *testing.T) {
	in := "Accel_X,ACCELY,accelz\n0,0,9.8\n0,0,10\n"
	p, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Reps) != 1 || len(p.Reps[0].Samples) != 2 {
		t.Fatalf("reps = %+v", p.Reps)
	}
	if *p.Reps[0].Set != 1 || *p.Reps[0].Rep != 1 {
		t.Errorf("set/rep = %d/%d, want 1/1", *p.Reps[0].Set, *p.Reps[0].Rep)
	}
	if p.Reps[0].Samples[0].TimestampMs != nil {
		t.Error("timestamp should be absent")
	}
}

// TestParseErrors verifies structural problems are reported.
func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", models.ErrNoSets},
		{"header only", "accelX,accelY,accelZ\n", models.ErrNoSets},
		{"missing axis", "accelX,accelY\n1,2\n", ErrMissingColumn},
	}
	for _, tc := range cases {
		_, err := Parse(strings.NewReader(tc.in))
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

// TestParseBadNumber verifies a malformed cell names its line and column.
func TestParseBadNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("accelX,accelY,accelZ\n0,0,9.8\n0,abc,9.8\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "accelY") {
		t.Errorf("err = %v, want line 3 and column accelY", err)
	}
}
