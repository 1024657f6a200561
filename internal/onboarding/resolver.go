package onboarding

import (
	"sync"

	"github.com/yamenzk/personal-trainer/internal/models"
)

// RequiredSteps returns the registry steps the profile still needs, in
// registry order.
func RequiredSteps(registry *Registry, profile *models.Profile) []Step {
	if profile == nil {
		return nil
	}
	var steps []Step
	for _, step := range registry.Steps() {
		if step.Pending(profile) {
			steps = append(steps, step)
		}
	}
	return steps
}

// Resolver memoizes RequiredSteps on the identity of the profile pointer, so
// the list only changes when a new profile value is installed.
type Resolver struct {
	registry *Registry

	mu     sync.Mutex
	primed bool
	last   *models.Profile
	steps  []Step
}

func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

func (r *Resolver) Registry() *Registry {
	return r.registry
}

// RequiredSteps returns the memoized step list. Callers must not modify it.
func (r *Resolver) RequiredSteps(profile *models.Profile) []Step {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.primed && r.last == profile {
		return r.steps
	}
	r.steps = RequiredSteps(r.registry, profile)
	r.last = profile
	r.primed = true
	return r.steps
}

func (r *Resolver) NeedsSetup(profile *models.Profile) bool {
	return len(r.RequiredSteps(profile)) > 0
}
