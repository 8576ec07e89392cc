package fatigue

import (
	"github.com/claude/replens/internal/kinematics"
	"github.com/claude/replens/internal/models"
)

// SetInput is the metrics of one set.
type SetInput struct {
	SetNumber int
	Metrics   []kinematics.Metrics
}

// Aggregate produces the workout-level report. Each set is scored on its own;
// when more than one set is sufficient the score and indicators are the
// rep-count-weighted means and the narrative comes from the most consistent
// set. Otherwise the report is computed over all repetitions together.
func Aggregate(sets []SetInput, cls *models.ClassificationSummary) Report {
	var valid []Report
	for _, s := range sets {
		if r := Analyze(s.Metrics, cls); r.Sufficient() {
			valid = append(valid, r)
		}
	}

	if len(valid) <= 1 {
		var all []kinematics.Metrics
		for _, s := range sets {
			all = append(all, s.Metrics...)
		}
		return Analyze(all, cls)
	}

	var total float64
	var out Report
	best := valid[0]
	for _, r := range valid {
		w := float64(r.RepCount)
		total += w
		out.RepCount += r.RepCount
		out.Score += w * r.Score
		out.Indicators.DOmega += w * r.Indicators.DOmega
		out.Indicators.IT += w * r.Indicators.IT
		out.Indicators.IJ += w * r.Indicators.IJ
		out.Indicators.IS += w * r.Indicators.IS
		out.Indicators.QExec += w * r.Indicators.QExec
		if r.Consistency.Overall > best.Consistency.Overall {
			best = r
		}
	}

	out.Score = round1(out.Score / total)
	out.Level = LevelFor(out.Score)
	out.Indicators.DOmega /= total
	out.Indicators.IT /= total
	out.Indicators.IJ /= total
	out.Indicators.IS /= total
	out.Indicators.QExec /= total
	out.Indicators.HasGyroData = best.Indicators.HasGyroData
	out.Indicators.HasDurationData = best.Indicators.HasDurationData
	out.Indicators.HasJerkData = best.Indicators.HasJerkData
	out.Indicators.HasShakinessData = best.Indicators.HasShakinessData
	out.Indicators.HasClassificationData = best.Indicators.HasClassificationData
	out.Comparison = best.Comparison
	out.Consistency = best.Consistency
	out.Findings = append([]string(nil), best.Findings...)
	return out
}
