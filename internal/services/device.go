package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yamenzk/personal-trainer/internal/guard"
	"github.com/yamenzk/personal-trainer/internal/models"
	"github.com/yamenzk/personal-trainer/internal/onboarding"
	"go.uber.org/zap"
)

// EventPublisher pushes events to a device's open sockets.
type EventPublisher interface {
	Publish(deviceID string, event models.Event)
}

type PreferenceStore interface {
	GetByDeviceID(ctx context.Context, deviceID string) (*models.DevicePreferences, error)
	SetMembershipToken(ctx context.Context, deviceID string, token *string) error
	SetLastLoginID(ctx context.Context, deviceID, membershipID string) error
	SetTheme(ctx context.Context, deviceID, theme string) error
}

const maxBufferedNotices = 20

// Device owns everything one browser sees: its session, its location, the
// notices waiting to be shown and, while setup is incomplete, its wizard.
type Device struct {
	ID      string
	Session *SessionStore
	History *History

	notices  *NoticeBuffer
	resolver *onboarding.Resolver
	api      ClientAPI
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	wizard   *onboarding.Wizard
	lastSeen time.Time
}

type DeviceDeps struct {
	API             ClientAPI
	Preferences     PreferenceStore
	Publisher       EventPublisher
	Steps           *onboarding.Registry
	RefreshInterval time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

func NewDevice(id string, deps DeviceDeps) *Device {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger.With(zap.String("device_id", id))
	history := &History{deviceID: id, publisher: deps.Publisher, current: models.Location{Path: guard.HomePath}}
	notices := &NoticeBuffer{deviceID: id, publisher: deps.Publisher}

	d := &Device{
		ID:       id,
		History:  history,
		notices:  notices,
		resolver: onboarding.NewResolver(deps.Steps),
		api:      deps.API,
		logger:   logger,
		now:      deps.Now,
		lastSeen: deps.Now(),
	}
	d.Session = NewSessionStore(SessionStoreDeps{
		Auth:            deps.API,
		Storage:         &deviceCredentials{deviceID: id, prefs: deps.Preferences},
		Navigator:       history,
		Notifier:        notices,
		Logger:          logger,
		RefreshInterval: deps.RefreshInterval,
	})
	d.Session.Subscribe(func(prev, next models.SessionState) {
		d.onSessionChange(prev, next, deps.Publisher)
	})
	return d
}

// Visit records a navigation and runs the guard for it. Redirect targets
// replace the recorded location.
func (d *Device) Visit(loc models.Location) guard.Decision {
	d.touch()
	loc.Path = guard.Normalize(loc.Path)
	d.History.Visit(loc)
	decision := d.decide(d.Session.Snapshot(), loc.Path)
	if decision.Kind == guard.KindRedirect {
		d.History.Visit(*decision.Target)
	}
	return decision
}

// Current runs the guard for the recorded location without changing it.
func (d *Device) Current() guard.Decision {
	d.touch()
	return d.decide(d.Session.Snapshot(), d.History.Location().Path)
}

// Wizard returns the active wizard, if the guard currently hands control to it.
func (d *Device) Wizard() (*onboarding.Wizard, bool) {
	decision := d.Current()
	if decision.Kind != guard.KindWizard {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wizard, d.wizard != nil
}

func (d *Device) NeedsSetup() bool {
	state := d.Session.Snapshot()
	return state.Authenticated && d.resolver.NeedsSetup(state.Profile())
}

// DrainNotices returns and forgets the notices raised since the last call.
func (d *Device) DrainNotices() []models.Notice {
	return d.notices.Drain()
}

// Close stops the session's background work.
func (d *Device) Close() {
	d.Session.Close()
}

func (d *Device) LastSeen() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

func (d *Device) touch() {
	d.mu.Lock()
	d.lastSeen = d.now()
	d.mu.Unlock()
}

func (d *Device) decide(state models.SessionState, path string) guard.Decision {
	needsSetup := state.Authenticated && d.resolver.NeedsSetup(state.Profile())
	decision := guard.Decide(guard.Input{
		Loading:       state.Loading,
		Authenticated: state.Authenticated,
		NeedsSetup:    needsSetup,
		Path:          path,
	})
	d.syncWizard(decision, state)
	return decision
}

// syncWizard creates the wizard when the guard first hands over control and
// drops it once the guard stops doing so.
func (d *Device) syncWizard(decision guard.Decision, state models.SessionState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if decision.Kind != guard.KindWizard {
		if decision.Kind != guard.KindLoading {
			d.wizard = nil
		}
		return
	}
	if d.wizard != nil {
		return
	}
	wizard := onboarding.NewWizard(d.resolver, onboarding.Deps{
		Updater:   d.api,
		Profiles:  d.Session,
		Notifier:  d.notices,
		Navigator: d.History,
		Logger:    d.logger,
		Now:       d.now,
	})
	wizard.Start(state.Profile())
	d.wizard = wizard
}

func (d *Device) onSessionChange(prev, next models.SessionState, publisher EventPublisher) {
	if publisher != nil {
		snapshot := next
		publisher.Publish(d.ID, models.Event{Type: models.EventSession, Session: &snapshot})
	}

	current := d.History.Location()
	decision := d.decide(next, current.Path)

	// A session lost in the background has no caller to redirect the user.
	if prev.Authenticated && !next.Authenticated && decision.Kind == guard.KindRedirect {
		d.History.Navigate(*decision.Target)
	}
}

// History tracks a device's current location and pushes navigations.
type History struct {
	deviceID  string
	publisher EventPublisher

	mu      sync.Mutex
	current models.Location
}

func (h *History) Location() models.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Navigate moves the device and tells its sockets to follow.
func (h *History) Navigate(to models.Location) {
	h.mu.Lock()
	h.current = to
	h.mu.Unlock()

	if h.publisher != nil {
		location := to
		h.publisher.Publish(h.deviceID, models.Event{Type: models.EventNavigate, Location: &location})
	}
}

// Visit records a location the device reported itself.
func (h *History) Visit(to models.Location) {
	h.mu.Lock()
	h.current = to
	h.mu.Unlock()
}

// NoticeBuffer publishes notices and keeps the latest ones for the next
// HTTP response.
type NoticeBuffer struct {
	deviceID  string
	publisher EventPublisher

	mu      sync.Mutex
	pending []models.Notice
}

func (b *NoticeBuffer) Notify(notice models.Notice) {
	b.mu.Lock()
	b.pending = append(b.pending, notice)
	if len(b.pending) > maxBufferedNotices {
		b.pending = b.pending[len(b.pending)-maxBufferedNotices:]
	}
	b.mu.Unlock()

	if b.publisher != nil {
		n := notice
		b.publisher.Publish(b.deviceID, models.Event{Type: models.EventNotice, Notice: &n})
	}
}

func (b *NoticeBuffer) Drain() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := b.pending
	b.pending = nil
	return notices
}

// deviceCredentials adapts the preference table to the session store.
type deviceCredentials struct {
	deviceID string
	prefs    PreferenceStore
}

func (c *deviceCredentials) LoadToken(ctx context.Context) (string, error) {
	prefs, err := c.prefs.GetByDeviceID(ctx, c.deviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if prefs.MembershipToken == nil {
		return "", nil
	}
	return *prefs.MembershipToken, nil
}

func (c *deviceCredentials) SaveToken(ctx context.Context, token string) error {
	return c.prefs.SetMembershipToken(ctx, c.deviceID, &token)
}

func (c *deviceCredentials) ClearToken(ctx context.Context) error {
	return c.prefs.SetMembershipToken(ctx, c.deviceID, nil)
}

func (c *deviceCredentials) SaveLastLogin(ctx context.Context, membershipID string) error {
	return c.prefs.SetLastLoginID(ctx, c.deviceID, membershipID)
}
