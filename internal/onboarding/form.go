package onboarding

import (
	"regexp"
	"strconv"

	"github.com/yamenzk/personal-trainer/internal/models"
)

// Scratch keys kept alongside field values in FormData.
const (
	keyHeightUnit   = "heightUnit"
	keyWeightUnit   = "weightUnit"
	keyFeet         = "feet"
	keyInches       = "inches"
	keyWeightLb     = "weightLb"
	keyGoalWeightLb = "goalWeightLb"
	keyWeight       = "weight"
)

// FormData holds the in-progress answers keyed by field name, plus scratch
// values such as the chosen display unit.
type FormData map[string]any

func newFormData(registry *Registry, profile *models.Profile) FormData {
	form := FormData{
		keyHeightUnit: unitCentimeters,
		keyWeightUnit: unitKilograms,
	}
	for _, step := range registry.Steps() {
		if value, ok := profile.Value(step.Field()); ok {
			form[step.Field()] = value
		}
	}
	if weight, ok := profile.CurrentWeight(); ok {
		form[keyWeight] = weight
	}
	return form
}

func (f FormData) String(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f FormData) Number(key string) (float64, bool) {
	return toNumber(f[key])
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toString(value any) string {
	s, _ := value.(string)
	return s
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// parseNumber mirrors a decimal keypad: anything but digits and '.' is dropped.
// ok is false for empty input; err is set when what remains is not a number.
func parseNumber(raw string) (value float64, ok bool, err error) {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}
