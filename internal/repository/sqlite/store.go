// Package sqlite is an embedded backend with the same table shape and
// ownership rules as the hosted one. It also runs its own email/password
// auth so it can stand in for the hosted service in development and tests.
package sqlite

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
	"todo-sync/internal/repository"
	"todo-sync/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options tune the backend. The zero value is usable.
type Options struct {
	// JWTSecret signs session tokens. When empty a secret is generated once
	// and kept in the database, so sessions survive restarts.
	JWTSecret string
	// DirPermissions is used when creating the database directory.
	DirPermissions os.FileMode
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// AccessTokenTTL defaults to one hour.
	AccessTokenTTL time.Duration
}

// Store implements repository.Backend on a SQLite database
type Store struct {
	db     *sql.DB
	issuer *auth.TokenIssuer
	hasher *PasswordHasher
	now    func() time.Time
}

var _ repository.Backend = (*Store)(nil)

// New creates a new SQLite backend with default options
func New(dbPath string) (*Store, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens the database at dbPath, runs migrations and prepares
// the token issuer.
func NewWithOptions(dbPath string, opts Options) (*Store, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		perms := opts.DirPermissions
		if perms == 0 {
			perms = 0o755
		}
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, perms); err != nil {
				return nil, errors.NewBackendError("create database directory", err)
			}
		}
		dsn = "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewBackendError("open database", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.NewBackendError("enable foreign keys", err)
		}
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewBackendError("run migrations", err)
	}

	secret := opts.JWTSecret
	if secret == "" {
		secret, err = loadOrCreateSecret(db)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Store{
		db:     db,
		issuer: auth.NewTokenIssuer([]byte(secret), "todo-sync", opts.AccessTokenTTL, 0),
		hasher: NewPasswordHasherWithCost(cost),
		now:    time.Now,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// userFor returns the user a session acts as. A nil session is anonymous
// and yields "". A session whose token does not verify is rejected, as the
// hosted service rejects a bad bearer token.
func (s *Store) userFor(session *auth.Session) (string, error) {
	if session == nil || session.AccessToken == "" {
		return "", nil
	}
	claims, err := s.issuer.VerifyAccess(session.AccessToken)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeAuthRequired, "session token rejected")
	}
	return claims.Subject, nil
}

func loadOrCreateSecret(db *sql.DB) (string, error) {
	var secret string
	err := db.QueryRow("SELECT value FROM settings WHERE key = 'jwt_secret'").Scan(&secret)
	if err == nil {
		return secret, nil
	}
	if err != sql.ErrNoRows {
		return "", errors.NewBackendError("load jwt secret", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if _, err := db.Exec("INSERT INTO settings (key, value) VALUES ('jwt_secret', ?)", secret); err != nil {
		return "", errors.NewBackendError("store jwt secret", err)
	}
	return secret, nil
}
