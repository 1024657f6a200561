package services

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/yamenzk/personal-trainer/internal/models"
)

type stubAuth struct {
	mu      sync.Mutex
	calls   int
	data    *models.ClientData
	err     error
	entered chan struct{}
	release chan struct{}
}

func (s *stubAuth) Authenticate(ctx context.Context, membershipID string) (*models.ClientData, error) {
	s.mu.Lock()
	s.calls++
	entered, release := s.entered, s.release
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *stubAuth) set(data *models.ClientData, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.err = err
}

func (s *stubAuth) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubAPI struct {
	stubAuth
	updateMu  sync.Mutex
	updates   []string
	updateErr error
}

func (s *stubAPI) UpdateField(ctx context.Context, clientID, field string, value any) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	s.updates = append(s.updates, field)
	return s.updateErr
}

type memCredentials struct {
	mu        sync.Mutex
	token     string
	lastLogin string
	loadErr   error
	saveErr   error
}

func (m *memCredentials) LoadToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.loadErr
}

func (m *memCredentials) SaveToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memCredentials) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memCredentials) SaveLastLogin(ctx context.Context, membershipID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogin = membershipID
	return nil
}

func (m *memCredentials) storedToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

type recNavigator struct {
	mu      sync.Mutex
	current models.Location
	history []models.Location
}

func (n *recNavigator) Location() models.Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *recNavigator) Navigate(to models.Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = to
	n.history = append(n.history, to)
}

func (n *recNavigator) navigations() []models.Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Location(nil), n.history...)
}

type recNotifier struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (n *recNotifier) Notify(notice models.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recNotifier) all() []models.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notice(nil), n.notices...)
}

type recPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recPublisher) Publish(deviceID string, event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recPublisher) ofType(kind string) []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Event
	for _, event := range p.events {
		if event.Type == kind {
			out = append(out, event)
		}
	}
	return out
}

type memPreferences struct {
	mu    sync.Mutex
	prefs map[string]*models.DevicePreferences
	err   error
}

func newMemPreferences() *memPreferences {
	return &memPreferences{prefs: make(map[string]*models.DevicePreferences)}
}

func (m *memPreferences) GetByDeviceID(ctx context.Context, deviceID string) (*models.DevicePreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	prefs, ok := m.prefs[deviceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *prefs
	return &copied, nil
}

func (m *memPreferences) row(deviceID string) *models.DevicePreferences {
	prefs, ok := m.prefs[deviceID]
	if !ok {
		prefs = &models.DevicePreferences{DeviceID: deviceID}
		m.prefs[deviceID] = prefs
	}
	return prefs
}

func (m *memPreferences) SetMembershipToken(ctx context.Context, deviceID string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.row(deviceID).MembershipToken = token
	return nil
}

func (m *memPreferences) SetLastLoginID(ctx context.Context, deviceID, membershipID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.row(deviceID).LastLoginID = &membershipID
	return nil
}

func (m *memPreferences) SetTheme(ctx context.Context, deviceID, theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.row(deviceID).Theme = theme
	return nil
}

var errNetwork = errors.New("dial tcp: connection refused")

func testProfile() *models.Profile {
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
