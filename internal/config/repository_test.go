package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/repository"
	"todo-sync/internal/repository/sqlite"
	"todo-sync/internal/repository/supabase"
)

func TestCreateBackend_SQLite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TODO_DB_DIR", t.TempDir())

	loader := NewLoaderWithFile("")
	cfg, err := loader.Load()
	require.NoError(t, err)

	backend, err := CreateBackend(cfg)
	require.NoError(t, err)
	defer backend.Close()
	assert.IsType(t, &sqlite.Store{}, backend)

	ctx := context.Background()
	session, err := backend.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)
	require.NotNil(t, session)

	_, err = backend.Insert(ctx, session, repository.Record{Titulo: "Test task", UserID: session.UserID})
	require.NoError(t, err)

	records, err := backend.Select(ctx, session, repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCreateBackend_Supabase(t *testing.T) {
	cfg := NewConfig()
	cfg.Backend.Kind = BackendSupabase
	cfg.Backend.SupabaseURL = "https://project.supabase.co"
	cfg.Backend.SupabaseAnonKey = "anon"

	backend, err := CreateBackend(cfg)
	require.NoError(t, err)
	defer backend.Close()
	assert.IsType(t, &supabase.Client{}, backend)
}

func TestCreateBackend_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{
			name:   "unknown kind",
			modify: func(c *Config) { c.Backend.Kind = "firebase" },
		},
		{
			name: "supabase without key",
			modify: func(c *Config) {
				c.Backend.Kind = BackendSupabase
				c.Backend.SupabaseURL = "https://project.supabase.co"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			backend, err := CreateBackend(cfg)
			assert.Error(t, err)
			assert.Nil(t, backend)
		})
	}
}

func TestCreateTestBackend(t *testing.T) {
	backend, err := CreateTestBackend()
	require.NoError(t, err)
	defer backend.Close()

	records, err := backend.Select(context.Background(), nil, repository.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
