package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/yamenzk/personal-trainer/internal/middleware"
	"github.com/yamenzk/personal-trainer/internal/models"
	"github.com/yamenzk/personal-trainer/internal/onboarding"
	"github.com/yamenzk/personal-trainer/internal/services"
	"github.com/yamenzk/personal-trainer/pkg/utils"
)

const testSecret = "handler-test-secret"

type stubClientAPI struct {
	mu        sync.Mutex
	data      *models.ClientData
	err       error
	updateErr error
	updates   []string
}

func (s *stubClientAPI) Authenticate(_ context.Context, _ string) (*models.ClientData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *stubClientAPI) UpdateField(_ context.Context, _ string, field string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, field)
	return s.updateErr
}

type memPrefs struct {
	mu    sync.Mutex
	prefs map[string]models.DevicePreferences
}

func (m *memPrefs) GetByDeviceID(_ context.Context, deviceID string) (*models.DevicePreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs, ok := m.prefs[deviceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &prefs, nil
}

func (m *memPrefs) update(deviceID string, fn func(p *models.DevicePreferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs := m.prefs[deviceID]
	prefs.DeviceID = deviceID
	fn(&prefs)
	m.prefs[deviceID] = prefs
}

func (m *memPrefs) SetMembershipToken(_ context.Context, deviceID string, token *string) error {
	m.update(deviceID, func(p *models.DevicePreferences) { p.MembershipToken = token })
	return nil
}

func (m *memPrefs) SetLastLoginID(_ context.Context, deviceID, membershipID string) error {
	m.update(deviceID, func(p *models.DevicePreferences) { p.LastLoginID = &membershipID })
	return nil
}

func (m *memPrefs) SetTheme(_ context.Context, deviceID, theme string) error {
	m.update(deviceID, func(p *models.DevicePreferences) { p.Theme = theme })
	return nil
}

type testApp struct {
	app   *fiber.App
	api   *stubClientAPI
	prefs *memPrefs
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
}

func newTestApp(t *testing.T, profile *models.Profile) *testApp {
	t.Helper()
	api := &stubClientAPI{data: &models.ClientData{Client: profile}}
	prefs := &memPrefs{prefs: make(map[string]models.DevicePreferences)}
	devices := services.NewDeviceRegistry(services.DeviceDeps{
		API:         api,
		Preferences: prefs,
		Steps:       onboarding.DefaultRegistry(fixedNow),
		Now:         fixedNow,
	}, time.Hour)
	t.Cleanup(devices.Close)

	authHandler := NewAuthHandler()
	navigationHandler := NewNavigationHandler()
	wizardHandler := NewWizardHandler()
	preferenceHandler := NewPreferenceHandler(services.NewPreferenceService(prefs))

	app := fiber.New()
	group := app.Group("/api", middleware.DeviceRequired(testSecret, devices, false))
	group.Get("/session", authHandler.Session)
	group.Get("/navigate", navigationHandler.Navigate)
	group.Post("/auth/login", authHandler.Login)
	group.Post("/auth/logout", authHandler.Logout)
	group.Post("/auth/check", authHandler.Check)
	wizard := group.Group("/wizard", middleware.RouteGuard())
	wizard.Get("", wizardHandler.Current)
	wizard.Put("/input", wizardHandler.Input)
	wizard.Post("/next", wizardHandler.Next)
	wizard.Post("/back", wizardHandler.Back)
	group.Get("/preferences/theme", preferenceHandler.GetTheme)
	group.Post("/preferences/theme/toggle", preferenceHandler.ToggleTheme)
	group.Get("/preferences/last-login", preferenceHandler.GetLastLogin)

	return &testApp{app: app, api: api, prefs: prefs}
}

// signedIn stores a membership token for deviceID and returns its cookie.
func (a *testApp) signedIn(t *testing.T, deviceID, membershipID string) string {
	t.Helper()
	token := membershipID
	if err := a.prefs.SetMembershipToken(context.Background(), deviceID, &token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return deviceCookie(t, deviceID)
}

func deviceCookie(t *testing.T, deviceID string) string {
	t.Helper()
	cookie, err := utils.GenerateToken(deviceID, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	return cookie
}

func (a *testApp) do(t *testing.T, method, target, body, cookie string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.DeviceCookie, Value: cookie})
	}

	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

// lookup walks nested JSON objects by key.
func lookup(payload map[string]any, keys ...string) any {
	var current any = payload
	for _, key := range keys {
		object, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = object[key]
	}
	return current
}

func noticeMessages(payload map[string]any) []string {
	raw, _ := payload["notices"].([]any)
	var messages []string
	for _, item := range raw {
		if notice, ok := item.(map[string]any); ok {
			messages = append(messages, notice["message"].(string))
		}
	}
	return messages
}

func completeProfile() *models.Profile {
	return &models.Profile{
		Name:              "CLT-0001",
		ClientName:        "Jane Doe",
		Email:             "jane@example.com",
		Mobile:            "123 456 7890",
		DateOfBirth:       "1990-05-01",
		Gender:            "Female",
		Height:            168,
		WeightGoal:        62,
		WorkoutPreference: "Gym",
		WorkoutSplit:      "4-Day Split",
		Goal:              "Weight Loss",
		MealSplit:         "4-Meal Split",
		WeightLog:         []models.WeightLogEntry{{Date: "2026-10-01", Weight: 70}},
	}
}
