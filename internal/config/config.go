package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Backend kinds.
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
)

// Config holds all configuration options for the to-do client
type Config struct {
	Backend     BackendConfig     `toml:"backend"`
	Database    DatabaseConfig    `toml:"database"`
	Auth        AuthConfig        `toml:"auth"`
	Cache       CacheConfig       `toml:"cache"`
	Validation  ValidationConfig  `toml:"validation"`
	Display     DisplayConfig     `toml:"display"`
	Application ApplicationConfig `toml:"application"`
}

// BackendConfig selects and addresses the remote task store
type BackendConfig struct {
	Kind            string        `toml:"kind" env:"TODO_BACKEND"`
	SupabaseURL     string        `toml:"supabase_url" env:"TODO_SUPABASE_URL"`
	SupabaseAnonKey string        `toml:"supabase_anon_key" env:"TODO_SUPABASE_ANON_KEY"`
	Table           string        `toml:"table" env:"TODO_TABLE"`
	RequestTimeout  time.Duration `toml:"request_timeout" env:"TODO_REQUEST_TIMEOUT"`
}

// DatabaseConfig holds the embedded SQLite backend's settings
type DatabaseConfig struct {
	Dir            string `toml:"dir" env:"TODO_DB_DIR"`
	Filename       string `toml:"filename" env:"TODO_DB_FILENAME"`
	JWTSecret      string `toml:"jwt_secret" env:"TODO_JWT_SECRET"`
	DirPermissions uint32 `toml:"dir_permissions" env:"TODO_DB_DIR_PERMISSIONS"`
}

// AuthConfig holds session persistence settings
type AuthConfig struct {
	SessionFile string `toml:"session_file" env:"TODO_SESSION_FILE"`
}

// CacheConfig holds client cache tuning
type CacheConfig struct {
	StaleTime    time.Duration `toml:"stale_time" env:"TODO_CACHE_STALE_TIME"`
	FetchTimeout time.Duration `toml:"fetch_timeout" env:"TODO_CACHE_FETCH_TIMEOUT"`
	MaxRefetch   int           `toml:"max_refetch" env:"TODO_CACHE_MAX_REFETCH"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMinLength       int `toml:"title_min_length" env:"TODO_VALIDATION_TITLE_MIN"`
	TitleMaxLength       int `toml:"title_max_length" env:"TODO_VALIDATION_TITLE_MAX"`
	DescriptionMaxLength int `toml:"description_max_length" env:"TODO_VALIDATION_DESCRIPTION_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat string `toml:"date_format" env:"TODO_DISPLAY_DATE_FORMAT"`
	Color      bool   `toml:"color" env:"TODO_DISPLAY_COLOR"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `toml:"timeout" env:"TODO_APP_TIMEOUT"`
	Verbose bool          `toml:"verbose" env:"TODO_APP_VERBOSE"`
}

// DefaultDir returns ~/.todo, the home of the config file, session and database
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".todo")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	dir := DefaultDir()

	return &Config{
		Backend: BackendConfig{
			Kind:           BackendSQLite,
			Table:          "tareas",
			RequestTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Dir:            dir,
			Filename:       "todo.db",
			DirPermissions: 0755,
		},
		Auth: AuthConfig{
			SessionFile: filepath.Join(dir, "session.json"),
		},
		Cache: CacheConfig{
			StaleTime:    30 * time.Second,
			FetchTimeout: 15 * time.Second,
			MaxRefetch:   3,
		},
		Validation: ValidationConfig{
			TitleMinLength:       2,
			TitleMaxLength:       255,
			DescriptionMaxLength: 1000,
		},
		Display: DisplayConfig{
			DateFormat: "2006-01-02",
			Color:      true,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Backend configuration
	if kind := os.Getenv("TODO_BACKEND"); kind != "" {
		c.Backend.Kind = kind
	}
	if u := os.Getenv("TODO_SUPABASE_URL"); u != "" {
		c.Backend.SupabaseURL = u
	}
	if key := os.Getenv("TODO_SUPABASE_ANON_KEY"); key != "" {
		c.Backend.SupabaseAnonKey = key
	}
	if table := os.Getenv("TODO_TABLE"); table != "" {
		c.Backend.Table = table
	}
	if timeout := os.Getenv("TODO_REQUEST_TIMEOUT"); timeout != "" {
		c.Backend.RequestTimeout = ParseDurationWithFallback(timeout, c.Backend.RequestTimeout)
	}

	// Database configuration
	if dir := os.Getenv("TODO_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TODO_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if secret := os.Getenv("TODO_JWT_SECRET"); secret != "" {
		c.Database.JWTSecret = secret
	}
	if perms := os.Getenv("TODO_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Auth configuration
	if file := os.Getenv("TODO_SESSION_FILE"); file != "" {
		c.Auth.SessionFile = file
	}

	// Cache configuration
	if stale := os.Getenv("TODO_CACHE_STALE_TIME"); stale != "" {
		c.Cache.StaleTime = ParseDurationWithFallback(stale, c.Cache.StaleTime)
	}
	if timeout := os.Getenv("TODO_CACHE_FETCH_TIMEOUT"); timeout != "" {
		c.Cache.FetchTimeout = ParseDurationWithFallback(timeout, c.Cache.FetchTimeout)
	}
	if n := os.Getenv("TODO_CACHE_MAX_REFETCH"); n != "" {
		c.Cache.MaxRefetch = ParseIntWithFallback(n, c.Cache.MaxRefetch)
	}

	// Validation configuration
	if minLen := os.Getenv("TODO_VALIDATION_TITLE_MIN"); minLen != "" {
		c.Validation.TitleMinLength = ParseIntWithFallback(minLen, c.Validation.TitleMinLength)
	}
	if maxLen := os.Getenv("TODO_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxLen := os.Getenv("TODO_VALIDATION_DESCRIPTION_MAX"); maxLen != "" {
		c.Validation.DescriptionMaxLength = ParseIntWithFallback(maxLen, c.Validation.DescriptionMaxLength)
	}

	// Display configuration
	if format := os.Getenv("TODO_DISPLAY_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}
	if color := os.Getenv("TODO_DISPLAY_COLOR"); color != "" {
		c.Display.Color = ParseBoolWithFallback(color, c.Display.Color)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Display.Color = false
	}

	// Application configuration
	if timeout := os.Getenv("TODO_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TODO_APP_VERBOSE"); verbose != "" {
		if b, err := strconv.ParseBool(verbose); err == nil {
			c.Application.Verbose = b
		}
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate backend configuration
	switch c.Backend.Kind {
	case BackendSQLite:
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
		if c.Database.Filename != ":memory:" && c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
	case BackendSupabase:
		if c.Backend.SupabaseURL == "" {
			return &ConfigError{Field: "backend.supabase_url", Message: "supabase url is required for the supabase backend"}
		}
		if u, err := url.Parse(c.Backend.SupabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "backend.supabase_url", Message: "supabase url must be an absolute URL"}
		}
		if c.Backend.SupabaseAnonKey == "" {
			return &ConfigError{Field: "backend.supabase_anon_key", Message: "supabase anon key is required for the supabase backend"}
		}
	default:
		return &ConfigError{Field: "backend.kind", Message: "backend must be one of: supabase, sqlite"}
	}
	if c.Backend.Table == "" {
		return &ConfigError{Field: "backend.table", Message: "table name cannot be empty"}
	}
	if c.Backend.RequestTimeout <= 0 {
		return &ConfigError{Field: "backend.request_timeout", Message: "request timeout must be positive"}
	}

	// Validate cache configuration
	if c.Cache.StaleTime < 0 {
		return &ConfigError{Field: "cache.stale_time", Message: "stale time cannot be negative"}
	}
	if c.Cache.FetchTimeout <= 0 {
		return &ConfigError{Field: "cache.fetch_timeout", Message: "fetch timeout must be positive"}
	}
	if c.Cache.MaxRefetch < 0 {
		return &ConfigError{Field: "cache.max_refetch", Message: "max refetch cannot be negative"}
	}

	// Validate validation configuration
	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.DescriptionMaxLength < 1 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length must be at least 1"}
	}

	// Validate display configuration
	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
