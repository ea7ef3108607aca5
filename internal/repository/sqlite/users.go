package sqlite

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
)

const userColumns = "id, email, password_hash, name, created_at"

// SignUp registers a user and signs them in.
func (s *Store) SignUp(ctx context.Context, email, password, name string) (*auth.Session, error) {
	email = strings.TrimSpace(email)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.NewBackendError("hash password", err)
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return nil, HandleDatabaseError("check user", err)
	}
	if exists > 0 {
		return nil, errors.NewValidationError("user already registered", nil)
	}

	user := userRow{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    s.now(),
	}
	query := `INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)`
	if err := Execute(ctx, s.db, query, user.ID, user.Email, user.PasswordHash, user.Name, FormatTimeForDB(user.CreatedAt)); err != nil {
		return nil, err
	}

	return s.issue(ctx, &user)
}

// SignIn checks the password and issues a session.
func (s *Store) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	user, err := QuerySingle(ctx, s.db, query, scanUser, "user", email, strings.TrimSpace(email))
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, errors.NewInvalidCredentialsError()
	}
	return s.issue(ctx, user)
}

// SignOut revokes every refresh token of the session's user.
func (s *Store) SignOut(ctx context.Context, session *auth.Session) error {
	userID, err := s.userFor(session)
	if err != nil {
		// An expired session can still sign out locally.
		return nil
	}
	if userID == "" {
		return nil
	}
	return Execute(ctx, s.db, "UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ?", userID)
}

// Refresh rotates a refresh token: the old one is revoked and a new session
// is issued.
func (s *Store) Refresh(ctx context.Context, refreshToken string) (*auth.Session, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeAuthRequired, "invalid refresh token")
	}

	query := "SELECT id, user_id, expires_at, revoked FROM refresh_tokens WHERE id = ?"
	token, err := QuerySingle(ctx, s.db, query, scanRefreshToken, "refresh token", claims.ID, claims.ID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.WrapError(err, errors.ErrorTypeAuthRequired, "invalid refresh token")
		}
		return nil, err
	}
	if token.Revoked || !s.now().Before(token.ExpiresAt) {
		return nil, errors.WrapError(auth.ErrInvalidToken, errors.ErrorTypeAuthRequired, "refresh token revoked")
	}

	if err := Execute(ctx, s.db, "UPDATE refresh_tokens SET revoked = 1 WHERE id = ?", token.ID); err != nil {
		return nil, err
	}

	user, err := QuerySingle(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE id = ?", scanUser, "user", token.UserID, token.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *Store) issue(ctx context.Context, user *userRow) (*auth.Session, error) {
	session, err := s.issuer.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, errors.NewBackendError("issue session", err)
	}
	claims, err := s.issuer.VerifyRefresh(session.RefreshToken)
	if err != nil {
		return nil, errors.NewBackendError("issue session", err)
	}

	query := `INSERT INTO refresh_tokens (id, user_id, expires_at) VALUES (?, ?, ?)`
	if err := Execute(ctx, s.db, query, claims.ID, user.ID, FormatTimeForDB(claims.ExpiresAt.Time)); err != nil {
		return nil, err
	}
	return session, nil
}
