package models

import "strings"

const (
	FieldClientName        = "client_name"
	FieldEmail             = "email"
	FieldMobile            = "mobile"
	FieldDateOfBirth       = "date_of_birth"
	FieldGender            = "gender"
	FieldHeight            = "height"
	FieldWeightLog         = "weight_log"
	FieldWeightGoal        = "weight_goal"
	FieldWorkoutPreference = "workout_preference"
	FieldWorkoutSplit      = "workout_split"
	FieldGoal              = "goal"
	FieldMealSplit         = "meal_split"
)

// Profile is the cached copy of the remote client document.
type Profile struct {
	Name              string           `json:"name"`
	ClientName        string           `json:"client_name"`
	Email             string           `json:"email"`
	Mobile            string           `json:"mobile"`
	DateOfBirth       string           `json:"date_of_birth"`
	Gender            string           `json:"gender"`
	Height            float64          `json:"height"`
	WeightGoal        float64          `json:"weight_goal"`
	WorkoutPreference string           `json:"workout_preference"`
	WorkoutSplit      string           `json:"workout_split"`
	Goal              string           `json:"goal"`
	MealSplit         string           `json:"meal_split"`
	WeightLog         []WeightLogEntry `json:"weight_log"`
	Age               int              `json:"age,omitempty"`
	ProteinTarget     float64          `json:"protein_target,omitempty"`
	CarbTarget        float64          `json:"carb_target,omitempty"`
	FatTarget         float64          `json:"fat_target,omitempty"`
	EnergyTarget      float64          `json:"energy_target,omitempty"`
	WaterTarget       float64          `json:"water_target,omitempty"`
}

type WeightLogEntry struct {
	Date   string  `json:"date,omitempty"`
	Weight float64 `json:"weight"`
}

type Membership struct {
	Name                string `json:"name"`
	Client              string `json:"client"`
	SubscriptionPackage string `json:"subscription_package,omitempty"`
	Start               string `json:"start,omitempty"`
	End                 string `json:"end,omitempty"`
	Enabled             int    `json:"enabled"`
}

// ClientData is the payload returned by the authenticate endpoint.
type ClientData struct {
	Client     *Profile    `json:"client"`
	Membership *Membership `json:"membership,omitempty"`
}

// Value returns the stored value of a top-level profile field and whether it
// is present. Empty strings and zero numbers count as missing.
func (p *Profile) Value(field string) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch field {
	case FieldClientName:
		return p.ClientName, strings.TrimSpace(p.ClientName) != ""
	case FieldEmail:
		return p.Email, p.Email != ""
	case FieldMobile:
		return p.Mobile, p.Mobile != ""
	case FieldDateOfBirth:
		return p.DateOfBirth, p.DateOfBirth != ""
	case FieldGender:
		return p.Gender, p.Gender != ""
	case FieldHeight:
		return p.Height, p.Height != 0
	case FieldWeightGoal:
		return p.WeightGoal, p.WeightGoal != 0
	case FieldWorkoutPreference:
		return p.WorkoutPreference, p.WorkoutPreference != ""
	case FieldWorkoutSplit:
		return p.WorkoutSplit, p.WorkoutSplit != ""
	case FieldGoal:
		return p.Goal, p.Goal != ""
	case FieldMealSplit:
		return p.MealSplit, p.MealSplit != ""
	case FieldWeightLog:
		if len(p.WeightLog) == 0 {
			return nil, false
		}
		return p.WeightLog[len(p.WeightLog)-1].Weight, true
	default:
		return nil, false
	}
}

// CurrentWeight returns the latest weight-log entry.
func (p *Profile) CurrentWeight() (float64, bool) {
	if p == nil || len(p.WeightLog) == 0 {
		return 0, false
	}
	return p.WeightLog[len(p.WeightLog)-1].Weight, true
}
