package onboarding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/yamenzk/personal-trainer/internal/models"
	"go.uber.org/zap"
)

var (
	ErrPersistFailed   = errors.New("failed to update data")
	ErrSubmitting      = errors.New("a step is being submitted")
	ErrWizardNotActive = errors.New("wizard is not active")
	ErrNoPreviousStep  = errors.New("already on the first step")
)

const (
	persistFailedMessage = "Failed to update data. Please try again."
	completedMessage     = "Setup completed! Welcome aboard! 🎉"
	homePath             = "/"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// FieldUpdater persists one profile field remotely.
type FieldUpdater interface {
	UpdateField(ctx context.Context, clientID, field string, value any) error
}

// ProfileMerger receives the optimistic merge after a field is persisted.
type ProfileMerger interface {
	UpdateProfile(patch models.ProfilePatch)
}

type Notifier interface {
	Notify(notice models.Notice)
}

type Navigator interface {
	Navigate(to models.Location)
}

type Deps struct {
	Updater   FieldUpdater
	Profiles  ProfileMerger
	Notifier  Notifier
	Navigator Navigator
	Logger    *zap.Logger
	Now       func() time.Time
}

// Wizard walks the user through the steps their profile is missing, one at a
// time, persisting each answer before moving on.
type Wizard struct {
	resolver *Resolver
	deps     Deps

	mu         sync.Mutex
	status     Status
	clientID   string
	steps      []Step
	index      int
	form       FormData
	direction  Direction
	submitting bool
	persisted  map[string]any // last saved value per field
}

func NewWizard(resolver *Resolver, deps Deps) *Wizard {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Wizard{
		resolver:  resolver,
		deps:      deps,
		status:    StatusIdle,
		direction: Forward,
	}
}

// Start computes the required steps once. With nothing to collect the wizard
// goes straight to StatusCompleted.
func (w *Wizard) Start(profile *models.Profile) Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != StatusIdle {
		return w.status
	}
	w.steps = w.resolver.RequiredSteps(profile)
	w.form = newFormData(w.resolver.Registry(), profile)
	w.persisted = make(map[string]any)
	if profile != nil {
		w.clientID = profile.Name
	}
	w.index = 0
	w.direction = Forward
	if len(w.steps) == 0 {
		w.status = StatusCompleted
	} else {
		w.status = StatusActive
	}
	return w.status
}

func (w *Wizard) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Input decodes a raw answer for the current step into the form.
func (w *Wizard) Input(in Input) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureActive(); err != nil {
		return w.viewLocked(), err
	}
	step := w.steps[w.index]
	decoded, err := step.Decode(in, w.form)
	if err != nil {
		return w.viewLocked(), err
	}
	for key, value := range decoded.Scratch {
		w.form[key] = value
	}
	if decoded.Value == nil {
		delete(w.form, step.Field())
	} else {
		w.form[step.Field()] = decoded.Value
	}
	return w.viewLocked(), nil
}

// Next validates and persists the current answer, then advances. Validation
// and persistence failures leave the wizard on the same step.
func (w *Wizard) Next(ctx context.Context) (View, error) {
	w.mu.Lock()
	if err := w.ensureActive(); err != nil {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, err
	}
	step := w.steps[w.index]
	field := step.Field()
	value := w.form[field]
	if err := step.Validate(value, w.form); err != nil {
		view := w.viewLocked()
		w.mu.Unlock()
		w.notify(err.Error(), models.NoticeError)
		return view, err
	}
	clientID := w.clientID
	index := w.index
	saved, seen := w.persisted[field]
	unchanged := seen && saved == value
	var updateErr error
	if !unchanged {
		w.submitting = true
		w.mu.Unlock()

		updateErr = w.deps.Updater.UpdateField(ctx, clientID, field, value)

		w.mu.Lock()
		w.submitting = false
	}
	if updateErr != nil {
		view := w.viewLocked()
		w.mu.Unlock()
		w.deps.Logger.Warn("onboarding field update failed",
			zap.String("field", field),
			zap.String("client_id", clientID),
			zap.Error(updateErr))
		w.notify(persistFailedMessage, models.NoticeError)
		return view, fmt.Errorf("update %s: %w: %w", field, ErrPersistFailed, updateErr)
	}

	if !unchanged {
		w.persisted[field] = value
	}
	last := index == len(w.steps)-1
	if last {
		w.status = StatusCompleted
	} else {
		w.index = index + 1
		w.direction = Forward
	}
	view := w.viewLocked()
	w.mu.Unlock()

	if w.deps.Profiles != nil && !unchanged {
		w.deps.Profiles.UpdateProfile(PatchFor(field, value, w.deps.Now()))
	}
	if last {
		w.notify(completedMessage, models.NoticeSuccess)
		if w.deps.Navigator != nil {
			w.deps.Navigator.Navigate(models.Location{Path: homePath})
		}
	}
	return view, nil
}

// Back returns to the previous step without saving anything.
func (w *Wizard) Back() (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureActive(); err != nil {
		return w.viewLocked(), err
	}
	if w.index == 0 {
		return w.viewLocked(), ErrNoPreviousStep
	}
	w.index--
	w.direction = Backward
	return w.viewLocked(), nil
}

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Wizard) ensureActive() error {
	if w.status != StatusActive {
		return ErrWizardNotActive
	}
	if w.submitting {
		return ErrSubmitting
	}
	return nil
}

func (w *Wizard) notify(message string, kind models.NoticeKind) {
	if w.deps.Notifier != nil {
		w.deps.Notifier.Notify(models.Notice{Message: message, Kind: kind})
	}
}

// View is the render contract for the current step.
type View struct {
	Status      Status    `json:"status"`
	Field       string    `json:"field,omitempty"`
	Kind        Kind      `json:"kind,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Units       []string  `json:"units,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Value       any       `json:"value,omitempty"`
	Index       int       `json:"index"`
	Total       int       `json:"total"`
	Percent     int       `json:"percent"`
	Direction   Direction `json:"direction"`
	Submitting  bool      `json:"submitting"`
	CanGoBack   bool      `json:"can_go_back"`
	IsLast      bool      `json:"is_last"`
}

func (w *Wizard) viewLocked() View {
	view := View{
		Status:     w.status,
		Total:      len(w.steps),
		Direction:  w.direction,
		Submitting: w.submitting,
	}
	if w.status != StatusActive {
		return view
	}

	step := w.steps[w.index]
	prompt := step.Prompt()
	view.Field = step.Field()
	view.Kind = step.Kind()
	view.Title = prompt.Title
	view.Description = prompt.Description
	view.Options = step.Options()
	view.Value = w.form[step.Field()]
	if measure, ok := step.(*MeasureStep); ok {
		view.Units = measure.Units()
		view.Unit = w.form.String(measure.UnitKey)
	}
	view.Index = w.index
	view.Percent = int(math.Round(float64(w.index+1) / float64(len(w.steps)) * 100))
	view.CanGoBack = w.index > 0 && !w.submitting
	view.IsLast = w.index == len(w.steps)-1
	return view
}

// PatchFor turns a persisted field answer into the cached-profile merge.
func PatchFor(field string, value any, now time.Time) models.ProfilePatch {
	var patch models.ProfilePatch
	text := toString(value)
	number, _ := toNumber(value)
	switch field {
	case models.FieldClientName:
		patch.ClientName = &text
	case models.FieldEmail:
		patch.Email = &text
	case models.FieldMobile:
		patch.Mobile = &text
	case models.FieldDateOfBirth:
		patch.DateOfBirth = &text
	case models.FieldGender:
		patch.Gender = &text
	case models.FieldHeight:
		patch.Height = &number
	case models.FieldWeightLog:
		patch.AppendWeight = &models.WeightLogEntry{Date: now.Format(dateLayout), Weight: number}
	case models.FieldWeightGoal:
		patch.WeightGoal = &number
	case models.FieldWorkoutPreference:
		patch.WorkoutPreference = &text
	case models.FieldWorkoutSplit:
		patch.WorkoutSplit = &text
	case models.FieldGoal:
		patch.Goal = &text
	case models.FieldMealSplit:
		patch.MealSplit = &text
	}
	return patch
}
