package models

// ProfilePatch is a shallow partial update of a Profile. Nil fields are left
// untouched. AppendWeight adds an entry to the weight log rather than
// replacing it.
type ProfilePatch struct {
	ClientName        *string
	Email             *string
	Mobile            *string
	DateOfBirth       *string
	Gender            *string
	Height            *float64
	WeightGoal        *float64
	WorkoutPreference *string
	WorkoutSplit      *string
	Goal              *string
	MealSplit         *string
	AppendWeight      *WeightLogEntry
}

// Apply returns a copy of p with the patch merged in. The receiver is never
// mutated so holders of the previous pointer keep a consistent snapshot.
func (patch ProfilePatch) Apply(p *Profile) *Profile {
	next := &Profile{}
	if p != nil {
		*next = *p
		next.WeightLog = append([]WeightLogEntry(nil), p.WeightLog...)
	}

	if patch.ClientName != nil {
		next.ClientName = *patch.ClientName
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.Mobile != nil {
		next.Mobile = *patch.Mobile
	}
	if patch.DateOfBirth != nil {
		next.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Gender != nil {
		next.Gender = *patch.Gender
	}
	if patch.Height != nil {
		next.Height = *patch.Height
	}
	if patch.WeightGoal != nil {
		next.WeightGoal = *patch.WeightGoal
	}
	if patch.WorkoutPreference != nil {
		next.WorkoutPreference = *patch.WorkoutPreference
	}
	if patch.WorkoutSplit != nil {
		next.WorkoutSplit = *patch.WorkoutSplit
	}
	if patch.Goal != nil {
		next.Goal = *patch.Goal
	}
	if patch.MealSplit != nil {
		next.MealSplit = *patch.MealSplit
	}
	if patch.AppendWeight != nil {
		next.WeightLog = append(next.WeightLog, *patch.AppendWeight)
	}
	return next
}
