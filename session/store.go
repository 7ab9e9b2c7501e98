package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/gateway"
	"github.com/octabyte/caisse-gommon/models"
	otellogger "github.com/octabyte/caisse-gommon/otel/logger"
	"github.com/octabyte/caisse-gommon/otel/metrics"
	"github.com/octabyte/caisse-gommon/storage"
	"github.com/octabyte/caisse-gommon/utils"
	"go.uber.org/zap"
)

const (
	RegisterPath    = "auth/register"
	LogoutPath      = "auth/logout"
	CurrentUserPath = "user"
)

// Store owns the authenticated identity and its bearer token. It keeps the
// gateway token and the durable credential pair in step with its own state.
type Store struct {
	gw           *gateway.Client
	creds        storage.CredentialStore
	navigator    Navigator
	events       EventPublisher
	remoteLogout bool

	initOnce sync.Once
	initErr  error

	mu      sync.RWMutex
	state   State
	session *models.Session

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64
}

// NewStore builds a store in StateLoading and registers it as the gateway's
// unauthorized handler. Call Init to rehydrate from creds.
func NewStore(gw *gateway.Client, creds storage.CredentialStore, opts ...Option) *Store {
	s := &Store{
		gw:           gw,
		creds:        creds,
		remoteLogout: true,
		state:        StateLoading,
		listeners:    make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}

	gw.SetUnauthorizedHandler(s.evict)
	return s
}

// Init rehydrates the session from durable storage. Only the first call does
// anything; later calls return the first call's error. A stored pair that
// cannot be read is cleared and the store becomes anonymous.
func (s *Store) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		creds, err := s.creds.Load(ctx)
		if err != nil {
			otellogger.ErrorCtx(ctx, "failed to rehydrate session", err)
			s.initErr = fmt.Errorf("failed to rehydrate session: %w", err)
			if clearErr := s.creds.Clear(ctx); clearErr != nil {
				otellogger.ErrorCtx(ctx, "failed to clear unreadable session", clearErr)
			}
			creds = nil
		}

		s.mu.Lock()
		if s.state != StateLoading {
			s.mu.Unlock()
			return
		}
		if creds != nil {
			s.session = &models.Session{User: creds.User, Token: creds.Token}
			s.state = StateAuthenticated
			s.gw.SetToken(creds.Token)
		} else {
			s.state = StateAnonymous
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()

		metrics.RecordSessionTransition(ctx, StateLoading.String(), snap.State.String())
		s.notify(snap)
	})
	return s.initErr
}

// Login exchanges credentials for a session. Rejected credentials come back
// as *apierror.AuthenticationError and leave the store untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	_ = s.Init(ctx)

	req := models.LoginRequest{Email: email, MotDePasse: password}
	if err := utils.ValidatePayload(req); err != nil {
		return err
	}

	resp, err := s.gw.Request(ctx, http.MethodPost, s.gw.LoginPath(), req, nil)
	if err != nil {
		var backendErr *apierror.BackendError
		if !errors.Is(err, apierror.ErrAuthorizationExpired) && errors.As(err, &backendErr) &&
			(backendErr.StatusCode == http.StatusUnauthorized || backendErr.StatusCode == http.StatusUnprocessableEntity) {
			otellogger.InfoCtx(ctx, "login rejected", zap.Int("status", backendErr.StatusCode))
			return &apierror.AuthenticationError{Message: backendErr.Message, Cause: backendErr}
		}
		return err
	}

	session, err := decodeSession(resp)
	if err != nil {
		return err
	}

	s.establish(ctx, session, enums.SessionEventLogin)
	return nil
}

// Register creates an account and signs it in. Missing fields and backend
// rejections come back as *apierror.ValidationError.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	_ = s.Init(ctx)

	if err := utils.ValidatePayload(req); err != nil {
		return err
	}

	resp, err := s.gw.Request(ctx, http.MethodPost, RegisterPath, req, nil)
	if err != nil {
		var backendErr *apierror.BackendError
		if !errors.Is(err, apierror.ErrAuthorizationExpired) && errors.As(err, &backendErr) &&
			backendErr.StatusCode >= 400 && backendErr.StatusCode < 500 {
			return apierror.NewValidationError(backendErr)
		}
		return err
	}

	session, err := decodeSession(resp)
	if err != nil {
		return err
	}

	s.establish(ctx, session, enums.SessionEventRegistered)
	return nil
}

// Logout drops the session locally, whatever its state, then tells the
// backend with the old token when remote logout is enabled. The remote call
// cannot fail the logout.
func (s *Store) Logout(ctx context.Context) {
	_ = s.Init(ctx)

	old, from := s.drop(ctx)
	if old == nil {
		return
	}

	metrics.RecordSessionTransition(ctx, from.String(), StateAnonymous.String())
	s.notify(Snapshot{State: StateAnonymous})
	s.publish(ctx, models.NewSessionEvent(enums.SessionEventLogout, old.User))

	if !s.remoteLogout {
		return
	}
	_, err := s.gw.Request(ctx, http.MethodPost, LogoutPath, nil, nil,
		gateway.WithBearer(old.Token),
		gateway.WithoutEviction(),
	)
	if err != nil {
		otellogger.WarnCtx(ctx, "remote logout failed", zap.Error(err))
	}
}

// RefreshSession reloads the current user from the backend and keeps the
// token. It does nothing without a session, and failures are only logged.
func (s *Store) RefreshSession(ctx context.Context) {
	s.mu.RLock()
	if s.state != StateAuthenticated || s.session == nil {
		s.mu.RUnlock()
		return
	}
	token := s.session.Token
	s.mu.RUnlock()

	resp, err := s.gw.Request(ctx, http.MethodGet, CurrentUserPath, nil, nil)
	if err != nil {
		otellogger.WarnCtx(ctx, "failed to refresh session", zap.Error(err))
		return
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		otellogger.ErrorCtx(ctx, "failed to decode current user", err)
		return
	}

	s.mu.Lock()
	if s.session == nil || s.session.Token != token {
		s.mu.Unlock()
		return
	}
	s.session = &models.Session{User: user, Token: token}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.creds.Save(ctx, storage.Credentials{Token: token, User: user}); err != nil {
		otellogger.ErrorCtx(ctx, "failed to persist refreshed session", err)
	}
	s.notify(snap)
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.session.Token != ""
}

func (s *Store) IsAdmin() bool {
	return s.hasRole(enums.RoleAdmin)
}

func (s *Store) IsSuperAdmin() bool {
	return s.hasRole(enums.RoleSuperAdmin)
}

func (s *Store) hasRole(role enums.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && s.session.User.Role == role
}

// Session returns a copy of the current session, or nil.
func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Loading() bool {
	return s.State() == StateLoading
}

// Snapshot returns the current state as listeners would see it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers l for every following change and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// evict runs on every non-login 401. A 401 for a token the session no longer
// holds leaves the session in place.
func (s *Store) evict(ctx context.Context, cause *apierror.AuthorizationExpiredError) {
	old, from, dropped := s.dropToken(ctx, cause.Token)
	if !dropped {
		otellogger.InfoCtx(ctx, "ignoring 401 for a replaced token", zap.String("path", cause.Cause.Path))
		s.navigate(ctx)
		return
	}
	metrics.RecordEviction(ctx)

	if old != nil {
		otellogger.WarnCtx(ctx, "session evicted",
			zap.Uint64("user_id", old.User.ID),
			zap.String("path", cause.Cause.Path),
		)
		metrics.RecordSessionTransition(ctx, from.String(), StateAnonymous.String())
		s.notify(Snapshot{State: StateAnonymous})

		event := models.NewSessionEvent(enums.SessionEventEvicted, old.User)
		event.Reason = cause.Cause.Message
		s.publish(ctx, event)
	}

	s.navigate(ctx)
}

func (s *Store) navigate(ctx context.Context) {
	if s.navigator != nil {
		s.navigator.Navigate(ctx, enums.LoginRoute)
	}
}

// drop clears memory, storage and the gateway token and returns the session
// that was dropped, if any.
func (s *Store) drop(ctx context.Context) (*models.Session, State) {
	s.mu.Lock()
	old, from := s.clearLocked()
	s.mu.Unlock()

	s.forget(ctx)
	return old, from
}

// dropToken drops the session unless it holds a token other than token.
func (s *Store) dropToken(ctx context.Context, token string) (*models.Session, State, bool) {
	s.mu.Lock()
	if s.session != nil && s.session.Token != token {
		s.mu.Unlock()
		return nil, StateAuthenticated, false
	}
	old, from := s.clearLocked()
	s.mu.Unlock()

	s.forget(ctx)
	return old, from, true
}

func (s *Store) clearLocked() (*models.Session, State) {
	old, from := s.session, s.state
	s.session = nil
	s.state = StateAnonymous
	s.gw.SetToken("")
	return old, from
}

func (s *Store) forget(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		otellogger.ErrorCtx(ctx, "failed to clear stored session", err)
	}
}

func (s *Store) establish(ctx context.Context, session *models.Session, event enums.SessionEventName) {
	if err := s.creds.Save(ctx, storage.Credentials{Token: session.Token, User: session.User}); err != nil {
		otellogger.ErrorCtx(ctx, "failed to persist session", err)
	}

	s.mu.Lock()
	from := s.state
	s.session = session
	s.state = StateAuthenticated
	s.gw.SetToken(session.Token)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	otellogger.InfoCtx(ctx, "session established",
		zap.Uint64("user_id", session.User.ID),
		zap.String("role", string(session.User.Role)),
	)
	metrics.RecordSessionTransition(ctx, from.String(), StateAuthenticated.String())
	s.notify(snap)
	s.publish(ctx, models.NewSessionEvent(event, session.User))
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	if s.session != nil {
		user := s.session.User
		snap.User = &user
		snap.Token = s.session.Token
	}
	return snap
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) publish(ctx context.Context, event models.SessionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, event); err != nil {
		otellogger.ErrorCtx(ctx, "failed to publish session event", err, zap.String("event", string(event.EventName)))
	}
}

func decodeSession(resp *gateway.Response) (*models.Session, error) {
	var session models.Session
	if err := resp.Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("backend returned a session without a token")
	}
	return &session, nil
}
