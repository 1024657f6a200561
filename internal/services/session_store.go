package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yamenzk/personal-trainer/internal/guard"
	"github.com/yamenzk/personal-trainer/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	SessionExpiredMessage      = "Session expired"
	InvalidMembershipIDMessage = "Invalid membership ID"
	EmptyMembershipIDMessage   = "Please enter your membership ID"
	loginFailedMessage         = "Something went wrong. Please try again."
	welcomeMessage             = "Welcome back! 👋"
	loggedOutMessage           = "Successfully logged out"
)

type Authenticator interface {
	Authenticate(ctx context.Context, membershipID string) (*models.ClientData, error)
}

// CredentialStorage keeps the membership token across restarts.
type CredentialStorage interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	SaveLastLogin(ctx context.Context, membershipID string) error
}

type Navigator interface {
	Location() models.Location
	Navigate(to models.Location)
}

type Notifier interface {
	Notify(notice models.Notice)
}

type SessionStoreDeps struct {
	Auth            Authenticator
	Storage         CredentialStorage
	Navigator       Navigator
	Notifier        Notifier
	Logger          *zap.Logger
	RefreshInterval time.Duration
}

// SessionStore is the single source of truth for one device's session.
// While authenticated it re-validates the stored token every RefreshInterval.
type SessionStore struct {
	deps   SessionStoreDeps
	flight singleflight.Group

	mu            sync.RWMutex
	state         models.SessionState
	listeners     []func(prev, next models.SessionState)
	refreshCancel context.CancelFunc
	closed        bool
	refreshWG     sync.WaitGroup
}

func NewSessionStore(deps SessionStoreDeps) *SessionStore {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SessionStore{
		deps:  deps,
		state: models.SessionState{Loading: true},
	}
}

// Mount runs the initial auth check, redirecting as a page load would.
func (s *SessionStore) Mount(ctx context.Context) bool {
	return s.CheckAuth(ctx, false)
}

// CheckAuth validates the stored token. Concurrent checks for the same token
// share one remote call. With skipRedirect set it never navigates, though
// subscribers still observe the state change.
func (s *SessionStore) CheckAuth(ctx context.Context, skipRedirect bool) bool {
	token, err := s.deps.Storage.LoadToken(ctx)
	if err != nil {
		s.deps.Logger.Warn("load membership token failed", zap.Error(err))
		token = ""
	}
	if token == "" {
		s.setState(func(st *models.SessionState) {
			st.Authenticated = false
			st.Data = nil
			st.Loading = false
		})
		return false
	}

	// The shared call outlives any one caller; each caller stops waiting when
	// its own context ends.
	shared := context.WithoutCancel(ctx)
	calls := s.flight.DoChan("auth:"+token, func() (any, error) {
		return s.deps.Auth.Authenticate(shared, token)
	})
	var result any
	select {
	case res := <-calls:
		result, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// Abandoned check, not a verdict on the token.
			s.setState(func(st *models.SessionState) { st.Loading = false })
			return false
		}
		s.deps.Logger.Info("session check failed", zap.Error(err))
		s.handleAuthError(ctx, SessionExpiredMessage)
		if !skipRedirect {
			current := s.deps.Navigator.Location()
			if current.Path != guard.LoginPath {
				from := models.Location{Path: current.Path}
				s.deps.Navigator.Navigate(models.Location{Path: guard.LoginPath, From: &from})
			}
		}
		return false
	}

	data := result.(*models.ClientData)
	s.setState(func(st *models.SessionState) {
		st.Authenticated = true
		st.Data = data
		st.Error = ""
		st.Loading = false
	})
	if !skipRedirect {
		current := s.deps.Navigator.Location()
		if current.Path == guard.LoginPath {
			s.deps.Navigator.Navigate(intendedLocation(current))
		}
	}
	return true
}

// Login authenticates a membership id and, on success, persists it as the
// device token and returns the user to where they were headed.
func (s *SessionStore) Login(ctx context.Context, membershipID string) bool {
	id := strings.TrimSpace(membershipID)
	if id == "" {
		s.notify(EmptyMembershipIDMessage, models.NoticeError)
		return false
	}

	s.setState(func(st *models.SessionState) {
		st.Loading = true
		st.Error = ""
	})

	data, err := s.deps.Auth.Authenticate(ctx, id)
	if err != nil {
		message := loginFailedMessage
		if errors.Is(err, ErrUnauthorized) {
			message = InvalidMembershipIDMessage
		}
		s.deps.Logger.Info("login rejected", zap.Error(err))
		s.handleAuthError(ctx, message)
		s.notify(message, models.NoticeError)
		return false
	}

	if err := s.deps.Storage.SaveToken(ctx, id); err != nil {
		s.deps.Logger.Error("save membership token failed", zap.Error(err))
		s.handleAuthError(ctx, loginFailedMessage)
		s.notify(loginFailedMessage, models.NoticeError)
		return false
	}
	if err := s.deps.Storage.SaveLastLogin(ctx, id); err != nil {
		s.deps.Logger.Warn("save last login id failed", zap.Error(err))
	}

	s.setState(func(st *models.SessionState) {
		st.Authenticated = true
		st.Data = data
		st.Error = ""
		st.Loading = false
	})
	s.notify(welcomeMessage, models.NoticeSuccess)
	s.deps.Navigator.Navigate(intendedLocation(s.deps.Navigator.Location()))
	return true
}

// Logout clears the token and the cached session and goes to the login page.
func (s *SessionStore) Logout(ctx context.Context) {
	if err := s.deps.Storage.ClearToken(ctx); err != nil {
		s.deps.Logger.Warn("clear membership token failed", zap.Error(err))
	}
	s.deps.Navigator.Navigate(models.Location{Path: guard.LoginPath})
	s.setState(func(st *models.SessionState) {
		st.Authenticated = false
		st.Data = nil
		st.Error = ""
		st.Loading = false
	})
	s.notify(loggedOutMessage, models.NoticeInfo)
}

// UpdateProfile merges a partial profile into the cached client document.
// It is a no-op when there is no cached document.
func (s *SessionStore) UpdateProfile(patch models.ProfilePatch) {
	s.setState(func(st *models.SessionState) {
		if st.Data == nil || st.Data.Client == nil {
			return
		}
		data := *st.Data
		data.Client = patch.Apply(st.Data.Client)
		st.Data = &data
	})
}

func (s *SessionStore) Snapshot() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to run after every state change, outside the lock.
func (s *SessionStore) Subscribe(fn func(prev, next models.SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close stops the refresh loop and waits for it to exit.
func (s *SessionStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopRefreshLocked()
	s.mu.Unlock()
	s.refreshWG.Wait()
}

func (s *SessionStore) handleAuthError(ctx context.Context, message string) {
	if err := s.deps.Storage.ClearToken(ctx); err != nil {
		s.deps.Logger.Warn("clear membership token failed", zap.Error(err))
	}
	s.setState(func(st *models.SessionState) {
		st.Error = message
		st.Authenticated = false
		st.Data = nil
		st.Loading = false
	})
	if message == SessionExpiredMessage {
		s.notify(message, models.NoticeError)
	}
}

func (s *SessionStore) setState(mutate func(st *models.SessionState)) {
	s.mu.Lock()
	prev := s.state
	mutate(&s.state)
	next := s.state
	switch {
	case next.Authenticated && !prev.Authenticated:
		s.startRefreshLocked()
	case !next.Authenticated && prev.Authenticated:
		s.stopRefreshLocked()
	}
	listeners := append([]func(prev, next models.SessionState){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (s *SessionStore) startRefreshLocked() {
	if s.closed || s.refreshCancel != nil || s.deps.RefreshInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.refreshCancel = cancel
	s.refreshWG.Add(1)
	go s.refreshLoop(ctx)
}

// stopRefreshLocked cancels without waiting, since the loop itself may be the
// caller.
func (s *SessionStore) stopRefreshLocked() {
	if s.refreshCancel != nil {
		s.refreshCancel()
		s.refreshCancel = nil
	}
}

func (s *SessionStore) refreshLoop(ctx context.Context) {
	defer s.refreshWG.Done()
	ticker := time.NewTicker(s.deps.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckAuth(ctx, true)
		}
	}
}

func (s *SessionStore) notify(message string, kind models.NoticeKind) {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(models.Notice{Message: message, Kind: kind})
	}
}

func intendedLocation(current models.Location) models.Location {
	if current.From != nil && current.From.Path != "" && current.From.Path != guard.LoginPath {
		return models.Location{Path: current.From.Path}
	}
	return models.Location{Path: guard.HomePath}
}
