package config

import (
	"fmt"
	"os"

	"todo-sync/internal/repository"
	"todo-sync/internal/repository/sqlite"
	"todo-sync/internal/repository/supabase"
)

// CreateBackend creates the task store and auth provider for the configured
// backend kind.
func CreateBackend(config *Config) (repository.Backend, error) {
	switch config.Backend.Kind {
	case BackendSupabase:
		client, err := supabase.New(supabase.Options{
			URL:     config.Backend.SupabaseURL,
			AnonKey: config.Backend.SupabaseAnonKey,
			Table:   config.Backend.Table,
			Timeout: config.Backend.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
		}
		return client, nil

	case BackendSQLite:
		store, err := sqlite.NewWithOptions(config.GetDatabasePath(), sqlite.Options{
			JWTSecret:      config.Database.JWTSecret,
			DirPermissions: os.FileMode(config.Database.DirPermissions),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil

	default:
		return nil, &ConfigError{Field: "backend.kind", Message: fmt.Sprintf("unknown backend %q", config.Backend.Kind)}
	}
}

// CreateTestBackend creates an in-memory SQLite backend for testing
func CreateTestBackend() (repository.Backend, error) {
	store, err := sqlite.New(sqlite.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return store, nil
}
