package export

import (
	"bytes"
	"testing"

	"github.com/claude/replens/internal/analysis"
	"github.com/claude/replens/internal/fatigue"
	"github.com/claude/replens/internal/kinematics"
)

func sampleAnalysis() *analysis.WorkoutAnalysis {
	reps := []kinematics.Metrics{
		{SetNumber: 1, RepNumber: 1, SampleCount: 20, DurationMs: 950, ROMDegrees: 80, Smoothness: 92},
		{SetNumber: 1, RepNumber: 2, SampleCount: 2, Error: kinematics.ErrInsufficientSamples},
	}
	return &analysis.WorkoutAnalysis{
		Exercise: "Bench Press",
		Sets:     []analysis.SetAnalysis{{SetNumber: 1, Reps: reps, Fatigue: fatigue.Report{Score: 12.5}}},
		Reps:     reps,
	}
}

// TestRows verifies every repetition becomes a row carrying its set score and
// validity.
func TestRows(t *testing.T) {
	rows := Rows("capture.json", sampleAnalysis())
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Source != "capture.json" || rows[0].Exercise != "Bench Press" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].SetFatigueScore != 12.5 || !rows[0].Valid {
		t.Errorf("row 0 score/valid = %v/%v", rows[0].SetFatigueScore, rows[0].Valid)
	}
	if rows[1].Valid {
		t.Error("row 1 should be invalid")
	}
}

// TestMarshalParquet verifies the output is a framed Parquet file.
func TestMarshalParquet(t *testing.T) {
	data, err := MarshalParquet(Rows("capture.json", sampleAnalysis()))
	if err != nil {
		t.Fatalf("MarshalParquet: %v", err)
	}
	magic := []byte("PAR1")
	if !bytes.HasPrefix(data, magic) || !bytes.HasSuffix(data, magic) {
		t.Errorf("output is not framed by %q (%d bytes)", magic, len(data))
	}
}
