package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yamenzk/personal-trainer/internal/models"
)

type PreferenceService struct {
	store PreferenceStore
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// Theme returns the device theme, persisting the dark default on first read.
func (s *PreferenceService) Theme(ctx context.Context, deviceID string) (string, error) {
	prefs, err := s.store.GetByDeviceID(ctx, deviceID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("load preferences: %w", err)
	}
	if prefs != nil && isTheme(prefs.Theme) {
		return prefs.Theme, nil
	}
	if err := s.store.SetTheme(ctx, deviceID, models.ThemeDark); err != nil {
		return "", fmt.Errorf("save default theme: %w", err)
	}
	return models.ThemeDark, nil
}

func (s *PreferenceService) ToggleTheme(ctx context.Context, deviceID string) (string, error) {
	current, err := s.Theme(ctx, deviceID)
	if err != nil {
		return "", err
	}
	next := models.ThemeLight
	if current == models.ThemeLight {
		next = models.ThemeDark
	}
	if err := s.store.SetTheme(ctx, deviceID, next); err != nil {
		return "", fmt.Errorf("save theme: %w", err)
	}
	return next, nil
}

// LastLoginID returns the membership id last used on this device, or "".
func (s *PreferenceService) LastLoginID(ctx context.Context, deviceID string) (string, error) {
	prefs, err := s.store.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load preferences: %w", err)
	}
	if prefs.LastLoginID == nil {
		return "", nil
	}
	return *prefs.LastLoginID, nil
}

func isTheme(theme string) bool {
	return theme == models.ThemeDark || theme == models.ThemeLight
}
