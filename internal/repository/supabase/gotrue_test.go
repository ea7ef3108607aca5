package supabase

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/auth"
	apperrors "todo-sync/internal/errors"
)

func sessionBody(expiresAt int64) string {
	return fmt.Sprintf(`{
		"access_token": "at",
		"refresh_token": "rt",
		"expires_in": 3600,
		"expires_at": %d,
		"user": {"id": "u1", "email": "ana@example.com", "user_metadata": {"name": "Ana"}}
	}`, expiresAt)
}

func TestClient_SignIn(t *testing.T) {
	expiresAt := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC).Unix()
	srv := newFakeServer(t, http.StatusOK, sessionBody(expiresAt))
	c := newTestClient(t, srv)

	s, err := c.SignIn(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.Equal(t, "Ana", s.DisplayName)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "rt", s.RefreshToken)
	assert.Equal(t, expiresAt, s.ExpiresAt.Unix())

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/v1/token", req.Path)
	assert.Equal(t, []string{"password"}, req.Query["grant_type"])
	body := decodeBody(t, req.Body)
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, "secret1", body["password"])
	assert.NotContains(t, body, "data")
}

func TestClient_SignInInvalidCredentials(t *testing.T) {
	srv := newFakeServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	c := newTestClient(t, srv)

	_, err := c.SignIn(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.NewInvalidCredentialsError())
}

func TestClient_SignUp(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectSession bool
		expectType    *apperrors.ErrorType
	}{
		{
			name:          "auto confirmed",
			status:        http.StatusOK,
			body:          sessionBody(time.Now().Add(time.Hour).Unix()),
			expectSession: true,
		},
		{
			name:   "confirmation required",
			status: http.StatusOK,
			body:   `{"id":"u1","email":"ana@example.com","user_metadata":{"name":"Ana"}}`,
		},
		{
			name:       "already registered",
			status:     http.StatusUnprocessableEntity,
			body:       `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`,
			expectType: errorType(apperrors.ErrorTypeValidation),
		},
		{
			name:       "server failure",
			status:     http.StatusInternalServerError,
			body:       `{"msg":"boom"}`,
			expectType: errorType(apperrors.ErrorTypeBackend),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t, tt.status, tt.body)
			c := newTestClient(t, srv)

			s, err := c.SignUp(context.Background(), "ana@example.com", "secret1", "Ana")
			req := srv.last(t)
			assert.Equal(t, "/auth/v1/signup", req.Path)
			body := decodeBody(t, req.Body)
			assert.Equal(t, map[string]interface{}{"name": "Ana"}, body["data"])

			if tt.expectType != nil {
				require.Error(t, err)
				assert.True(t, apperrors.IsErrorType(err, *tt.expectType), "got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.expectSession {
				require.NotNil(t, s)
				assert.Equal(t, "Ana", s.DisplayName)
			} else {
				assert.Nil(t, s)
			}
		})
	}
}

func TestClient_Refresh(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, sessionBody(time.Now().Add(time.Hour).Unix()))
	c := newTestClient(t, srv)

	s, err := c.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)
	assert.Equal(t, "at", s.AccessToken)

	req := srv.last(t)
	assert.Equal(t, []string{"refresh_token"}, req.Query["grant_type"])
	assert.Equal(t, "old-rt", decodeBody(t, req.Body)["refresh_token"])

	srv.mu.Lock()
	srv.status, srv.body = http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`
	srv.mu.Unlock()
	_, err = c.Refresh(context.Background(), "revoked")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeAuthRequired), "got %v", err)
}

func TestClient_SignOut(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		session   *auth.Session
		expectErr bool
		expectReq bool
	}{
		{name: "success", status: http.StatusNoContent, session: testSession, expectReq: true},
		{name: "already expired", status: http.StatusUnauthorized, session: testSession, expectReq: true},
		{name: "no session", status: http.StatusNoContent},
		{name: "server failure", status: http.StatusInternalServerError, session: testSession, expectErr: true, expectReq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t, tt.status, "")
			c := newTestClient(t, srv)

			err := c.SignOut(context.Background(), tt.session)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			srv.mu.Lock()
			n := len(srv.requests)
			srv.mu.Unlock()
			if !tt.expectReq {
				assert.Zero(t, n)
				return
			}
			req := srv.last(t)
			assert.Equal(t, "/auth/v1/logout", req.Path)
			assert.Equal(t, "Bearer user-token", req.Header.Get("Authorization"))
		})
	}
}

func TestTokenResponse_SessionFromClaims(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("k"), "test", time.Hour, 0)
	issued, err := issuer.Issue("u7", "bo@example.com", "Bo")
	require.NoError(t, err)

	s, err := tokenResponse{AccessToken: issued.AccessToken, RefreshToken: "rt"}.session(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "u7", s.UserID)
	assert.Equal(t, "bo@example.com", s.Email)
	assert.Equal(t, "Bo", s.DisplayName)
	assert.WithinDuration(t, issued.ExpiresAt, s.ExpiresAt, time.Second)

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s, err = tokenResponse{AccessToken: "at", ExpiresIn: 60, User: &user{ID: "u1"}}.session(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), s.ExpiresAt)
}

func errorType(t apperrors.ErrorType) *apperrors.ErrorType { return &t }
