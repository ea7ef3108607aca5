package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token cannot be parsed or verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a verified token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the subset of a GoTrue access token this client reads.
type Claims struct {
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	TokenType    string       `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// UserMetadata holds the profile fields supplied at sign-up.
type UserMetadata struct {
	Name string `json:"name,omitempty"`
}

// ParseAccessToken reads the claims of an access token. With a secret the
// HS256 signature and expiry are verified; without one the token is decoded
// as-is, which is all a client holding only the anon key can do.
func ParseAccessToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	if len(secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionFromToken builds a session from an access token's claims.
func SessionFromToken(accessToken, refreshToken string, secret []byte) (*Session, error) {
	claims, err := ParseAccessToken(accessToken, secret)
	if err != nil {
		return nil, err
	}
	s := &Session{
		UserID:       claims.Subject,
		Email:        claims.Email,
		DisplayName:  claims.UserMetadata.Name,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// TokenIssuer signs HS256 access and refresh tokens for backends that run
// their own auth.
type TokenIssuer struct {
	secret          []byte
	issuer          string
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenIssuer creates an issuer. Zero durations default to one hour for
// access tokens and thirty days for refresh tokens.
func NewTokenIssuer(secret []byte, issuer string, accessDuration, refreshDuration time.Duration) *TokenIssuer {
	if accessDuration <= 0 {
		accessDuration = time.Hour
	}
	if refreshDuration <= 0 {
		refreshDuration = 30 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:          secret,
		issuer:          issuer,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}
}

// Issue returns a fresh session for the user.
func (i *TokenIssuer) Issue(userID, email, name string) (*Session, error) {
	now := i.now()
	access, err := i.sign(userID, email, name, "access", now, i.accessDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(userID, email, name, "refresh", now, i.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:       userID,
		Email:        email,
		DisplayName:  name,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(i.accessDuration).Truncate(time.Second),
	}, nil
}

// VerifyRefresh checks a refresh token and returns its claims.
func (i *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	claims, err := ParseAccessToken(token, i.secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess checks an access token and returns its claims.
func (i *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	claims, err := ParseAccessToken(token, i.secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *TokenIssuer) sign(userID, email, name, tokenType string, now time.Time, d time.Duration) (string, error) {
	claims := Claims{
		Email:        email,
		UserMetadata: UserMetadata{Name: name},
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
