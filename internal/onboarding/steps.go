package onboarding

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/yamenzk/personal-trainer/internal/models"
)

type Kind string

const (
	KindText    Kind = "text"
	KindChoice  Kind = "choice"
	KindDate    Kind = "date"
	KindMeasure Kind = "measure"
)

const (
	unitCentimeters = "cm"
	unitFeet        = "ft"
	unitKilograms   = "kg"
	unitPounds      = "lb"

	centimetersPerFoot = 30.48
	centimetersPerInch = 2.54
	kilogramsPerPound  = 0.453592

	dateLayout = "2006-01-02"
	// Age uses a 365.25-day year measured in milliseconds.
	millisPerYear = 31557600000.0
)

type Prompt struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Option struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Input is the raw answer sent by the client. Which members are read depends
// on the step kind: Value for text, choice, date and single-number measures,
// Feet and Inches for heights entered in feet.
type Input struct {
	Value  string `json:"value"`
	Unit   string `json:"unit"`
	Feet   string `json:"feet"`
	Inches string `json:"inches"`
}

// Decoded is the canonical value produced from an Input, plus scratch values
// to keep in the form. A nil Value clears the field.
type Decoded struct {
	Value   any
	Scratch map[string]any
}

// Step is the capability every onboarding step exposes to the wizard.
type Step interface {
	Field() string
	Kind() Kind
	Prompt() Prompt
	Options() []Option
	// Pending reports whether the profile still needs this step.
	Pending(profile *models.Profile) bool
	Decode(in Input, form FormData) (Decoded, error)
	Validate(value any, form FormData) error
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err carries a user-facing validation message.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type base struct {
	field  string
	prompt Prompt
}

func (b base) Field() string  { return b.field }
func (b base) Prompt() Prompt { return b.prompt }

func (b base) Pending(profile *models.Profile) bool {
	_, present := profile.Value(b.field)
	return !present
}

// TextStep collects free text. Rules are applied in order: required,
// pattern, digit count.
type TextStep struct {
	base
	Trim            bool
	RequiredMessage string
	Pattern         *regexp.Regexp
	PatternMessage  string
	Digits          int
	DigitsMessage   string
	// Phone groups digits 3-3-4 while typing and caps the formatted length.
	Phone bool
}

func (s *TextStep) Kind() Kind        { return KindText }
func (s *TextStep) Options() []Option { return nil }

func (s *TextStep) Decode(in Input, _ FormData) (Decoded, error) {
	if !s.Phone {
		return Decoded{Value: in.Value}, nil
	}
	formatted := FormatPhoneNumber(in.Value)
	if len(formatted) > maxPhoneLength {
		return Decoded{}, invalid(s.field, s.DigitsMessage)
	}
	return Decoded{Value: formatted}, nil
}

func (s *TextStep) Validate(value any, _ FormData) error {
	text := toString(value)
	if s.Trim {
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return invalid(s.field, s.RequiredMessage)
	}
	if s.Pattern != nil && !s.Pattern.MatchString(strings.ToLower(text)) {
		return invalid(s.field, s.PatternMessage)
	}
	if s.Digits > 0 && len(digitsOnly(text)) != s.Digits {
		return invalid(s.field, s.DigitsMessage)
	}
	return nil
}

const maxPhoneLength = 12

// FormatPhoneNumber groups the digits of value as "123 456 7890".
func FormatPhoneNumber(value string) string {
	digits := digitsOnly(value)
	switch {
	case len(digits) < 4:
		return digits
	case len(digits) < 7:
		return digits[:3] + " " + digits[3:]
	case len(digits) > 10:
		digits = digits[:10]
	}
	return digits[:3] + " " + digits[3:6] + " " + digits[6:]
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ChoiceStep accepts one of a fixed set of options.
type ChoiceStep struct {
	base
	Choices []Option
	Message string
}

func (s *ChoiceStep) Kind() Kind        { return KindChoice }
func (s *ChoiceStep) Options() []Option { return s.Choices }

func (s *ChoiceStep) Decode(in Input, _ FormData) (Decoded, error) {
	value := strings.TrimSpace(in.Value)
	if value == "" {
		return Decoded{}, nil
	}
	return Decoded{Value: value}, nil
}

func (s *ChoiceStep) Validate(value any, _ FormData) error {
	text := toString(value)
	for _, option := range s.Choices {
		if option.Value == text {
			return nil
		}
	}
	return invalid(s.field, s.Message)
}

// DateStep collects a calendar date and bounds the derived age.
type DateStep struct {
	base
	MinAge          int
	MaxAge          int
	RequiredMessage string
	TooYoungMessage string
	InvalidMessage  string
	Now             func() time.Time
}

func (s *DateStep) Kind() Kind        { return KindDate }
func (s *DateStep) Options() []Option { return nil }

func (s *DateStep) Decode(in Input, _ FormData) (Decoded, error) {
	value := strings.TrimSpace(in.Value)
	if value == "" {
		return Decoded{}, nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return Decoded{}, invalid(s.field, s.RequiredMessage)
	}
	return Decoded{Value: value}, nil
}

func (s *DateStep) Validate(value any, _ FormData) error {
	text := toString(value)
	if text == "" {
		return invalid(s.field, s.RequiredMessage)
	}
	dob, err := time.Parse(dateLayout, text)
	if err != nil {
		return invalid(s.field, s.RequiredMessage)
	}
	age := AgeAt(dob, s.now())
	if age < s.MinAge {
		return invalid(s.field, s.TooYoungMessage)
	}
	if age > s.MaxAge {
		return invalid(s.field, s.InvalidMessage)
	}
	return nil
}

func (s *DateStep) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AgeAt returns whole years between dob and now using 365.25-day years.
func AgeAt(dob, now time.Time) int {
	elapsed := float64(now.Sub(dob).Milliseconds())
	return int(math.Floor(elapsed / millisPerYear))
}

// MeasureStep collects a number stored in a canonical unit (cm or kg). The
// client may answer in an alternate unit; Decode converts and rounds to the
// nearest whole canonical unit.
type MeasureStep struct {
	base
	Canonical string
	Alternate string
	// UnitKey is the scratch key remembering the display unit.
	UnitKey string
	// AlternateKey keeps the raw alternate-unit answer (pounds).
	AlternateKey string
	// MirrorKey also stores the canonical value under another key, so later
	// steps can compare against it.
	MirrorKey string
	Min       float64
	Max       float64
	// MaxDelta bounds the distance from the current weight; zero disables it.
	MaxDelta float64

	RequiredMessage string
	RangeMessage    string
	DeltaMessage    string

	// PendingWhenLogEmpty replaces the presence check with "the weight log is empty".
	PendingWhenLogEmpty bool
}

func (s *MeasureStep) Kind() Kind        { return KindMeasure }
func (s *MeasureStep) Options() []Option { return nil }

// Units lists the display units the client may answer in.
func (s *MeasureStep) Units() []string {
	return []string{s.Canonical, s.Alternate}
}

func (s *MeasureStep) Pending(profile *models.Profile) bool {
	if s.PendingWhenLogEmpty {
		return profile == nil || len(profile.WeightLog) == 0
	}
	return s.base.Pending(profile)
}

func (s *MeasureStep) Decode(in Input, form FormData) (Decoded, error) {
	unit := in.Unit
	if unit == "" {
		unit = form.String(s.UnitKey)
	}
	if unit == "" {
		unit = s.Canonical
	}
	if unit != s.Canonical && unit != s.Alternate {
		return Decoded{}, invalid(s.field, fmt.Sprintf("Unsupported unit %q", unit))
	}

	scratch := map[string]any{s.UnitKey: unit}
	var (
		value float64
		ok    bool
	)
	switch {
	case unit == s.Canonical:
		n, present, err := parseNumber(in.Value)
		if err != nil {
			return Decoded{}, invalid(s.field, s.RangeMessage)
		}
		value, ok = n, present
	case unit == unitFeet:
		feet, feetOK, err := parseNumber(in.Feet)
		if err != nil {
			return Decoded{}, invalid(s.field, s.RangeMessage)
		}
		inches, inchesOK, err := parseNumber(in.Inches)
		if err != nil {
			return Decoded{}, invalid(s.field, s.RangeMessage)
		}
		if !feetOK {
			feet, _ = form.Number(keyFeet)
		}
		if !inchesOK {
			inches, _ = form.Number(keyInches)
		}
		scratch[keyFeet] = feet
		scratch[keyInches] = inches
		value, ok = FeetInchesToCentimeters(feet, inches), feetOK || inchesOK
	case unit == unitPounds:
		pounds, present, err := parseNumber(in.Value)
		if err != nil {
			return Decoded{}, invalid(s.field, s.RangeMessage)
		}
		if present && s.AlternateKey != "" {
			scratch[s.AlternateKey] = pounds
		}
		value, ok = PoundsToKilograms(pounds), present
	}

	if !ok {
		// A unit switch without a number keeps the answer already given.
		if in.Unit != "" {
			if current, known := form.Number(s.field); known {
				return Decoded{Value: current, Scratch: scratch}, nil
			}
		}
		return Decoded{Scratch: scratch}, nil
	}
	if s.MirrorKey != "" {
		scratch[s.MirrorKey] = value
	}
	return Decoded{Value: value, Scratch: scratch}, nil
}

func (s *MeasureStep) Validate(value any, form FormData) error {
	n, ok := toNumber(value)
	if !ok || n == 0 {
		return invalid(s.field, s.RequiredMessage)
	}
	if s.MaxDelta > 0 {
		if current, known := form.Number(keyWeight); known && math.Abs(current-n) > s.MaxDelta {
			return invalid(s.field, s.DeltaMessage)
		}
	}
	if n < s.Min || n > s.Max {
		return invalid(s.field, s.RangeMessage)
	}
	return nil
}

// FeetInchesToCentimeters converts and rounds to the nearest centimeter.
func FeetInchesToCentimeters(feet, inches float64) float64 {
	return math.Round(feet*centimetersPerFoot + inches*centimetersPerInch)
}

// PoundsToKilograms converts and rounds to the nearest kilogram.
func PoundsToKilograms(pounds float64) float64 {
	return math.Round(pounds * kilogramsPerPound)
}
