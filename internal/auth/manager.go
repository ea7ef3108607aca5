package auth

import (
	"context"
	"sync"
	"time"

	"todo-sync/internal/logging"
)

// CredentialValidator checks sign-in and sign-up input before any call to
// the provider.
type CredentialValidator interface {
	ValidateSignIn(email, password string) error
	ValidateSignUp(email, password, name string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore persists the session across runs.
func WithStore(store SessionStore) Option {
	return func(m *Manager) { m.store = store }
}

// WithCredentialValidator validates credentials before they reach the provider.
func WithCredentialValidator(v CredentialValidator) Option {
	return func(m *Manager) { m.validator = v }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the current session and publishes every change to its
// subscribers. Each subscriber has a one-slot mailbox: an undelivered event
// is replaced by a newer one, so a slow reader always sees the latest state.
type Manager struct {
	provider  Provider
	store     SessionStore
	validator CredentialValidator
	now       func() time.Time

	refreshMu sync.Mutex

	mu      sync.Mutex
	current *Session
	subs    map[int]chan Event
	nextID  int
}

// NewManager creates a manager with no session.
func NewManager(provider Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		now:      time.Now,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a copy of the session in effect, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Session returns the session in effect at call time. An expired session
// with a refresh token is refreshed first; if that fails the stale session
// is returned and the backend decides.
func (m *Manager) Session(ctx context.Context) *Session {
	s := m.Current()
	if s == nil || !s.Expired(m.now()) || s.RefreshToken == "" {
		return s
	}
	refreshed, err := m.Refresh(ctx)
	if err != nil {
		logging.Logger().Warn("session refresh failed", "user", s.UserID, "err", err)
		return s
	}
	return refreshed
}

// Subscribe returns a channel of session events and a func that ends the
// subscription and closes the channel. The channel immediately holds an
// InitialSession event with the current session. The cancel func may be
// called more than once.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- Event{Kind: EventInitialSession, Session: m.current.Clone()}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// SignIn authenticates with email and password.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if m.validator != nil {
		if err := m.validator.ValidateSignIn(email, password); err != nil {
			return nil, err
		}
	}
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.persist(s)
	m.set(EventSignedIn, s)
	return s.Clone(), nil
}

// SignUp registers a new user. Providers that require email confirmation
// return no session; the manager then stays signed out.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	if m.validator != nil {
		if err := m.validator.ValidateSignUp(email, password, name); err != nil {
			return nil, err
		}
	}
	s, err := m.provider.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	m.persist(s)
	m.set(EventSignedIn, s)
	return s.Clone(), nil
}

// SignOut ends the session. The local session is dropped even when the
// provider call fails; that error is still returned.
func (m *Manager) SignOut(ctx context.Context) error {
	s := m.Current()
	var err error
	if s != nil {
		err = m.provider.SignOut(ctx, s)
	}
	if m.store != nil {
		if clearErr := m.store.Clear(); clearErr != nil {
			logging.Logger().Warn("clear stored session", "err", clearErr)
		}
	}
	m.set(EventSignedOut, nil)
	return err
}

// Refresh exchanges the refresh token for a new session.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	s := m.Current()
	if s == nil || s.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	// Another caller may have refreshed while this one waited.
	if !s.Expired(m.now()) {
		return s, nil
	}
	refreshed, err := m.provider.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return nil, err
	}
	m.persist(refreshed)
	m.set(EventTokenRefreshed, refreshed)
	return refreshed.Clone(), nil
}

// Restore loads the persisted session. An expired session is refreshed when
// possible; otherwise the manager starts signed out.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	if m.store == nil {
		m.set(EventInitialSession, nil)
		return nil, nil
	}
	s, err := m.store.Load()
	if err != nil {
		m.set(EventInitialSession, nil)
		return nil, err
	}
	if s == nil {
		m.set(EventInitialSession, nil)
		return nil, nil
	}
	if !s.Expired(m.now()) {
		m.set(EventInitialSession, s)
		return s.Clone(), nil
	}
	if s.RefreshToken == "" {
		_ = m.store.Clear()
		m.set(EventInitialSession, nil)
		return nil, nil
	}

	refreshed, err := m.provider.Refresh(ctx, s.RefreshToken)
	if err != nil {
		_ = m.store.Clear()
		m.set(EventInitialSession, nil)
		return nil, err
	}
	m.persist(refreshed)
	m.set(EventTokenRefreshed, refreshed)
	return refreshed.Clone(), nil
}

func (m *Manager) persist(s *Session) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(s); err != nil {
		logging.Logger().Warn("persist session", "err", err)
	}
}

func (m *Manager) set(kind EventKind, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = s.Clone()
	userID := ""
	if s != nil {
		userID = s.UserID
	}
	logging.Logger().Debug("session event", "kind", kind, "user", userID)

	for _, ch := range m.subs {
		ev := Event{Kind: kind, Session: s.Clone()}
		select {
		case ch <- ev:
		default:
			// Mailbox full: drop the stale event and deliver the new one.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
