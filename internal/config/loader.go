package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileEnv names the environment variable that points at the config file.
const ConfigFileEnv = "TODO_CONFIG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config:   NewConfig(),
		filePath: findConfigFile(),
	}
}

// NewLoaderWithFile creates a loader that reads the given TOML file instead of
// the default location. An empty path skips the file layer.
func NewLoaderWithFile(path string) *Loader {
	return &Loader{
		config:   NewConfig(),
		filePath: path,
	}
}

// WithDefaults adjusts the built-in defaults before the file and environment
// layers are applied.
func (l *Loader) WithDefaults(adjust func(*Config)) *Loader {
	adjust(l.config)
	return l
}

// FilePath returns the config file the loader reads, if any.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the TOML config file, when present
// 3. Override with environment variables
// 4. Override with command line flags (handled by cobra)
func (l *Loader) Load() (*Config, error) {
	if l.filePath != "" {
		if err := loadConfigFile(l.config, l.filePath); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", l.filePath, err)
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		// Flags may fix what the lower layers left invalid.
		var cfgErr *ConfigError
		if overrides == nil || !errors.As(err, &cfgErr) {
			return nil, err
		}
		config = l.config
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Backend overrides
	Backend        *string
	SupabaseURL    *string
	SupabaseKey    *string
	RequestTimeout *time.Duration

	// Database overrides
	DBDir      *string
	DBFilename *string

	// Auth overrides
	SessionFile *string

	// Cache overrides
	StaleTime *time.Duration

	// Validation overrides
	TitleMinLength *int
	TitleMaxLength *int

	// Display overrides
	DateFormat *string
	Color      *bool

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.Backend != nil {
		config.Backend.Kind = *overrides.Backend
	}
	if overrides.SupabaseURL != nil {
		config.Backend.SupabaseURL = *overrides.SupabaseURL
	}
	if overrides.SupabaseKey != nil {
		config.Backend.SupabaseAnonKey = *overrides.SupabaseKey
	}
	if overrides.RequestTimeout != nil {
		config.Backend.RequestTimeout = *overrides.RequestTimeout
	}

	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}

	if overrides.SessionFile != nil {
		config.Auth.SessionFile = *overrides.SessionFile
	}

	if overrides.StaleTime != nil {
		config.Cache.StaleTime = *overrides.StaleTime
	}

	if overrides.TitleMinLength != nil {
		config.Validation.TitleMinLength = *overrides.TitleMinLength
	}
	if overrides.TitleMaxLength != nil {
		config.Validation.TitleMaxLength = *overrides.TitleMaxLength
	}

	if overrides.DateFormat != nil {
		config.Display.DateFormat = *overrides.DateFormat
	}
	if overrides.Color != nil {
		config.Display.Color = *overrides.Color
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}

// findConfigFile returns $TODO_CONFIG, else ~/.todo/config.toml when it
// exists, else "".
func findConfigFile() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	path := filepath.Join(DefaultDir(), "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// loadConfigFile decodes TOML from path over cfg. Keys absent from the file
// keep their current values.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &ConfigError{Field: undecoded[0].String(), Message: "unknown configuration key"}
	}
	return nil
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
