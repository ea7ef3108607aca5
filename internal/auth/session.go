// Package auth holds the session value, the provider port of the backend's
// auth service and the Manager that owns the current session.
package auth

import (
	"context"
	"time"
)

// Session is an authenticated user's session. It is passed by value or
// pointer to every store call; nothing reads it from a global.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry at now. A zero
// ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// EventKind names a session transition.
type EventKind string

const (
	EventInitialSession EventKind = "INITIAL_SESSION"
	EventSignedIn       EventKind = "SIGNED_IN"
	EventSignedOut      EventKind = "SIGNED_OUT"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
)

// Event is delivered to subscribers on every session change. Session is nil
// after a sign-out.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Provider is the backend's authentication service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, name string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// SessionSource yields the session in effect at call time, or nil.
type SessionSource interface {
	Session(ctx context.Context) *Session
}

// StaticSource is a SessionSource that always returns the same session.
type StaticSource struct {
	S *Session
}

// Session implements SessionSource.
func (s StaticSource) Session(context.Context) *Session {
	return s.S
}
