package supabase

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"time"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
)

// tokenResponse is GoTrue's session payload. Sign-up without auto-confirm
// returns only the user fields, with no access token.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *user  `json:"user"`
}

type user struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	UserMetadata auth.UserMetadata `json:"user_metadata"`
}

type credentials struct {
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Data     *auth.UserMetadata `json:"data,omitempty"`
}

// SignIn uses the password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && se.Status == http.StatusBadRequest {
			appErr := errors.NewInvalidCredentialsError()
			appErr.Cause = se
			return nil, appErr
		}
		return nil, c.mapAuthError("sign in", err)
	}
	return resp.session(time.Now())
}

// SignUp registers a user with a display name. A project that requires
// email confirmation answers without a session; nil is returned then.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*auth.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password, Data: &auth.UserMetadata{Name: name}},
	}, &resp)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && (se.Status == http.StatusBadRequest || se.Status == http.StatusUnprocessableEntity) {
			return nil, errors.NewValidationError(se.Message, se)
		}
		return nil, c.mapAuthError("sign up", err)
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return resp.session(time.Now())
}

// SignOut revokes the session's refresh tokens. An already invalid token is
// treated as signed out.
func (c *Client) SignOut(ctx context.Context, session *auth.Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  session.AccessToken,
	}, nil)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden || se.Status == http.StatusNotFound) {
			return nil
		}
		return c.mapAuthError("sign out", err)
	}
	return nil
}

// Refresh uses the refresh_token grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "refresh_token")

	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  q,
		body:   map[string]string{"refresh_token": refreshToken},
	}, &resp)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && (se.Status == http.StatusBadRequest || se.Status == http.StatusUnauthorized) {
			return nil, errors.WrapError(se, errors.ErrorTypeAuthRequired, "invalid refresh token")
		}
		return nil, c.mapAuthError("refresh session", err)
	}
	return resp.session(time.Now())
}

func (c *Client) mapAuthError(operation string, err error) error {
	var se *StatusError
	if stderrors.As(err, &se) {
		if se.Status == http.StatusUnauthorized {
			appErr := errors.NewAuthRequiredError(operation)
			appErr.Cause = se
			return appErr
		}
		return errors.NewBackendError(operation, se)
	}
	return errors.FromTransport(operation, err)
}

func (r tokenResponse) session(now time.Time) (*auth.Session, error) {
	if r.AccessToken == "" {
		return nil, errors.NewBackendError("read session", stderrors.New("response carried no access token"))
	}
	s := &auth.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	if r.User != nil {
		s.UserID = r.User.ID
		s.Email = r.User.Email
		s.DisplayName = r.User.UserMetadata.Name
		return s, nil
	}

	// Older GoTrue versions omit the user; the token's claims carry it.
	claims, err := auth.ParseAccessToken(r.AccessToken, nil)
	if err != nil {
		return nil, errors.NewBackendError("read session", err)
	}
	s.UserID = claims.Subject
	s.Email = claims.Email
	s.DisplayName = claims.UserMetadata.Name
	if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
