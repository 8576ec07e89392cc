package fatigue

import (
	"fmt"

	"github.com/claude/replens/internal/models"
)

// Finding thresholds. The narrative is derived from the same indicators as
// the score so the two never disagree.
const (
	dropThreshold        = 0.15
	durationThreshold    = 0.15
	jerkThreshold        = 0.20
	shakinessThreshold   = 0.20
	qualityThreshold     = 0.30
	momentumThreshold    = 0.25
	lossControlThreshold = 0.20
)

// NoFatigueFinding is reported when no indicator crosses its threshold.
const NoFatigueFinding = "No significant fatigue indicators detected."

func findings(ind Indicators, cls *models.ClassificationSummary, mix labelMix) []string {
	var out []string
	if ind.DOmega > dropThreshold {
		if ind.HasGyroData {
			out = append(out, fmt.Sprintf("Peak angular velocity dropped %.0f%% from early to late reps.", ind.DOmega*100))
		} else {
			out = append(out, fmt.Sprintf("Peak movement intensity dropped %.0f%% from early to late reps (no gyroscope data).", ind.DOmega*100))
		}
	}
	if ind.IT > durationThreshold {
		out = append(out, fmt.Sprintf("Rep duration increased %.0f%%, reps are slowing down.", ind.IT*100))
	}
	if ind.IJ > jerkThreshold {
		out = append(out, fmt.Sprintf("Movement jerk increased %.0f%%, control is degrading.", ind.IJ*100))
	}
	if ind.IS > shakinessThreshold {
		out = append(out, fmt.Sprintf("Shakiness increased %.0f%% in late reps.", ind.IS*100))
	}
	if cls != nil {
		if ind.QExec > qualityThreshold {
			out = append(out, fmt.Sprintf("Execution quality is degraded: only %.0f%% of reps classified clean.", cls.CleanPercentage))
		}
		if mix.momentum > momentumThreshold {
			out = append(out, fmt.Sprintf("Momentum compensation detected in %.0f%% of reps.", mix.momentum*100))
		}
		if mix.lossOfControl > lossControlThreshold {
			out = append(out, fmt.Sprintf("Loss of control detected in %.0f%% of reps.", mix.lossOfControl*100))
		}
	}
	if len(out) == 0 {
		out = append(out, NoFatigueFinding)
	}
	return out
}
