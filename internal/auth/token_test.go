package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, "todo-test", time.Hour, 0)

	s, err := issuer.Issue("u1", "ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
	assert.False(t, s.Expired(time.Now()))

	claims, err := ParseAccessToken(s.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.UserMetadata.Name)

	_, err = issuer.VerifyAccess(s.AccessToken)
	assert.NoError(t, err)
	_, err = issuer.VerifyRefresh(s.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.VerifyRefresh(s.RefreshToken)
	assert.NoError(t, err)
}

func TestParseAccessToken(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewTokenIssuer(secret, "todo-test", time.Hour, 0)
	s, err := issuer.Issue("u1", "ana@example.com", "Ana")
	require.NoError(t, err)

	expiredIssuer := NewTokenIssuer(secret, "todo-test", time.Hour, 0)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue("u1", "ana@example.com", "Ana")
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    []byte
		expectErr error
	}{
		{name: "verified", token: s.AccessToken, secret: secret},
		{name: "unverified without secret", token: s.AccessToken},
		{name: "wrong secret", token: s.AccessToken, secret: []byte("other"), expectErr: ErrInvalidToken},
		{name: "expired", token: expired.AccessToken, secret: secret, expectErr: ErrExpiredToken},
		{name: "garbage", token: "not-a-jwt", expectErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseAccessToken(tt.token, tt.secret)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.Subject)
		})
	}
}

func TestSessionFromToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("k"), "todo-test", time.Hour, 0)
	issued, err := issuer.Issue("u9", "bo@example.com", "Bo")
	require.NoError(t, err)

	s, err := SessionFromToken(issued.AccessToken, "r", nil)
	require.NoError(t, err)
	assert.Equal(t, "u9", s.UserID)
	assert.Equal(t, "bo@example.com", s.Email)
	assert.Equal(t, "Bo", s.DisplayName)
	assert.Equal(t, "r", s.RefreshToken)
	assert.WithinDuration(t, issued.ExpiresAt, s.ExpiresAt, time.Second)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.False(t, (&Session{}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Second)}).Expired(now))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	saved := &Session{UserID: "u1", Email: "a@example.com", AccessToken: "tok", ExpiresAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.UserID, loaded.UserID)
	assert.True(t, saved.ExpiresAt.Equal(loaded.ExpiresAt))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
