package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
)

func TestStore_SignUpAndSignIn(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	signedUp, err := store.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.UserID)
	assert.Equal(t, "Ana", signedUp.DisplayName)

	signedIn, err := store.SignIn(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, signedUp.UserID, signedIn.UserID)
	assert.Equal(t, "Ana", signedIn.DisplayName)

	claims, err := auth.ParseAccessToken(signedIn.AccessToken, nil)
	require.NoError(t, err)
	assert.Equal(t, signedUp.UserID, claims.Subject)
	assert.Equal(t, "Ana", claims.UserMetadata.Name)
}

func TestStore_SignInFailures(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	_, err := store.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ana@example.com", password: "wrong12"},
		{name: "unknown email", email: "nobody@example.com", password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SignIn(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, "INVALID_CREDENTIALS", errors.GetErrorCode(err))
		})
	}
}

func TestStore_SignUpDuplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	_, err := store.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	_, err = store.SignUp(ctx, "ana@example.com", "secret2", "Other")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

func TestStore_RefreshRotatesToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	session, err := store.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	refreshed, err := store.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, refreshed.UserID)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is spent.
	_, err = store.Refresh(ctx, session.RefreshToken)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuthRequired))

	_, err = store.Refresh(ctx, "garbage")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuthRequired))
}

func TestStore_SignOutRevokesRefreshTokens(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	session, err := store.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	require.NoError(t, store.SignOut(ctx, session))

	_, err = store.Refresh(ctx, session.RefreshToken)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuthRequired))

	// Signing out without a session is a no-op.
	assert.NoError(t, store.SignOut(ctx, nil))
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasherWithCost(4)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, hasher.Verify("secret1", hash))
	assert.False(t, hasher.Verify("secret2", hash))
}
