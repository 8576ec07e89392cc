package exercise

import "strings"

// LabelCategory groups classifier labels by the kind of form breakdown they
// indicate.
type LabelCategory string

const (
	CategoryClean         LabelCategory = "clean"
	CategoryMomentum      LabelCategory = "momentum"
	CategoryLossOfControl LabelCategory = "loss_of_control"
	CategoryOther         LabelCategory = "other"
)

// Canonical classifier labels.
const (
	LabelClean                = "Clean"
	LabelUncontrolledMovement = "Uncontrolled Movement"
	LabelAbruptInitiation     = "Abrupt Initiation"
	LabelInclinationAsymmetry = "Inclination Asymmetry"
	LabelPullingTooFast       = "Pulling Too Fast"
	LabelReleasingTooFast     = "Releasing Too Fast"
	LabelMomentum             = "Momentum"
)

var labelCategories = map[string]LabelCategory{
	"clean":                 CategoryClean,
	"abrupt initiation":     CategoryMomentum,
	"pulling too fast":      CategoryMomentum,
	"momentum":              CategoryMomentum,
	"uncontrolled movement": CategoryLossOfControl,
	"releasing too fast":    CategoryLossOfControl,
	"inclination asymmetry": CategoryOther,
}

// CategorizeLabel maps a classifier label to its category. Unrecognised
// labels are CategoryOther.
func CategorizeLabel(label string) LabelCategory {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	if c, ok := labelCategories[key]; ok {
		return c
	}
	return CategoryOther
}

// Labels returns the labels the classifier emits for a family.
func Labels(f Family) []string {
	switch f {
	case Barbell:
		return []string{LabelClean, LabelUncontrolledMovement, LabelInclinationAsymmetry}
	case WeightStack:
		return []string{LabelClean, LabelPullingTooFast, LabelReleasingTooFast}
	default:
		return []string{LabelClean, LabelUncontrolledMovement, LabelAbruptInitiation}
	}
}
