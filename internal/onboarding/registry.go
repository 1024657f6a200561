package onboarding

import (
	"regexp"
	"time"

	"github.com/yamenzk/personal-trainer/internal/models"
)

var emailPattern = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// Registry is the ordered, read-only table of onboarding steps. Its order is
// the order the wizard asks in.
type Registry struct {
	steps   []Step
	byField map[string]Step
}

func NewRegistry(steps ...Step) *Registry {
	r := &Registry{
		steps:   steps,
		byField: make(map[string]Step, len(steps)),
	}
	for _, step := range steps {
		r.byField[step.Field()] = step
	}
	return r
}

func (r *Registry) Steps() []Step {
	return r.steps
}

func (r *Registry) Step(field string) (Step, bool) {
	step, ok := r.byField[field]
	return step, ok
}

// DefaultRegistry builds the client onboarding steps. now drives the age
// check and may be nil.
func DefaultRegistry(now func() time.Time) *Registry {
	return NewRegistry(
		&TextStep{
			base: base{field: models.FieldClientName, prompt: Prompt{
				Title:       "What's your name?",
				Description: "Please enter your full name.",
			}},
			Trim:            true,
			RequiredMessage: "Please enter your name",
		},
		&TextStep{
			base: base{field: models.FieldEmail, prompt: Prompt{
				Title:       "What's your email address?",
				Description: "We'll send your workout plans and progress updates here.",
			}},
			RequiredMessage: "Please enter your email address",
			Pattern:         emailPattern,
			PatternMessage:  "Please enter a valid email address",
		},
		&TextStep{
			base: base{field: models.FieldMobile, prompt: Prompt{
				Title:       "What's your mobile number?",
				Description: "For important updates and reminders.",
			}},
			RequiredMessage: "Please enter your mobile number",
			Digits:          10,
			DigitsMessage:   "Please enter a valid 10-digit mobile number",
			Phone:           true,
		},
		&DateStep{
			base: base{field: models.FieldDateOfBirth, prompt: Prompt{
				Title:       "When's your birthday?",
				Description: "This helps us personalize your experience.",
			}},
			MinAge:          16,
			MaxAge:          100,
			RequiredMessage: "Please select your date of birth",
			TooYoungMessage: "You must be at least 16 years old",
			InvalidMessage:  "Please enter a valid date of birth",
			Now:             now,
		},
		&ChoiceStep{
			base: base{field: models.FieldGender, prompt: Prompt{
				Title:       "What's your gender?",
				Description: "This helps us calculate your needs accurately.",
			}},
			Choices: []Option{{Value: "Male"}, {Value: "Female"}},
			Message: "Please select your gender",
		},
		&MeasureStep{
			base: base{field: models.FieldHeight, prompt: Prompt{
				Title:       "How tall are you?",
				Description: "We'll use this to calculate your ideal ranges.",
			}},
			Canonical:       unitCentimeters,
			Alternate:       unitFeet,
			UnitKey:         keyHeightUnit,
			Min:             100,
			Max:             250,
			RequiredMessage: "Please enter your height",
			RangeMessage:    "Please enter a valid height",
		},
		&MeasureStep{
			base: base{field: models.FieldWeightLog, prompt: Prompt{
				Title:       "What's your current weight?",
				Description: "This helps us track your progress.",
			}},
			Canonical:           unitKilograms,
			Alternate:           unitPounds,
			UnitKey:             keyWeightUnit,
			AlternateKey:        keyWeightLb,
			MirrorKey:           keyWeight,
			Min:                 40,
			Max:                 300,
			RequiredMessage:     "Please enter your weight",
			RangeMessage:        "Please enter a valid weight",
			PendingWhenLogEmpty: true,
		},
		&MeasureStep{
			base: base{field: models.FieldWeightGoal, prompt: Prompt{
				Title:       "What's your target weight?",
				Description: "Let's set a realistic goal together.",
			}},
			Canonical:       unitKilograms,
			Alternate:       unitPounds,
			UnitKey:         keyWeightUnit,
			AlternateKey:    keyGoalWeightLb,
			Min:             40,
			Max:             300,
			MaxDelta:        100,
			RequiredMessage: "Please enter your target weight",
			RangeMessage:    "Please enter a valid weight",
			DeltaMessage:    "Please set a more realistic target weight",
		},
		&ChoiceStep{
			base: base{field: models.FieldWorkoutPreference, prompt: Prompt{
				Title:       "Where do you prefer to workout?",
				Description: "We'll customize your workout plan accordingly.",
			}},
			Choices: []Option{
				{Value: "Gym", Description: "Access to equipment"},
				{Value: "Home", Description: "Minimal equipment needed"},
				{Value: "Hybrid", Description: "Mix of gym and home workouts"},
			},
			Message: "Please select your workout preference",
		},
		&ChoiceStep{
			base: base{field: models.FieldWorkoutSplit, prompt: Prompt{
				Title:       "How many days can you commit to working out?",
				Description: "Be realistic - consistency is key!",
			}},
			Choices: []Option{
				{Value: "3-Day Split", Description: "3 workouts per week"},
				{Value: "4-Day Split", Description: "4 workouts per week"},
				{Value: "5-Day Split", Description: "5 workouts per week"},
				{Value: "6-Day Split", Description: "6 workouts per week"},
			},
			Message: "Please select your workout schedule",
		},
		&ChoiceStep{
			base: base{field: models.FieldGoal, prompt: Prompt{
				Title:       "What's your primary fitness goal?",
				Description: "This will help us tailor your program.",
			}},
			Choices: []Option{
				{Value: "Weight Loss", Description: "Reduce body fat"},
				{Value: "Weight Gain", Description: "Build mass"},
				{Value: "Muscle Building", Description: "Gain strength and muscle"},
				{Value: "General Fitness", Description: "Improve overall health"},
			},
			Message: "Please select your fitness goal",
		},
		&ChoiceStep{
			base: base{field: models.FieldMealSplit, prompt: Prompt{
				Title:       "How many meals do you prefer per day?",
				Description: "We'll structure your meal plan accordingly.",
			}},
			Choices: []Option{
				{Value: "3-Meal Split", Description: "Traditional breakfast, lunch, dinner"},
				{Value: "4-Meal Split", Description: "Includes afternoon snack"},
				{Value: "5-Meal Split", Description: "Multiple smaller meals"},
				{Value: "6-Meal Split", Description: "Frequent small meals"},
			},
			Message: "Please select your meal frequency",
		},
	)
}
