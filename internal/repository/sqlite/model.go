package sqlite

import "time"

// userRow is one row of the users table
type userRow struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// refreshTokenRow tracks an issued refresh token by its JWT id
type refreshTokenRow struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}
