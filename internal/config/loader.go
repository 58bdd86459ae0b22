package config

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config  *Config
	envFile string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config:  NewConfig(),
		envFile: DefaultEnvFile,
	}
}

// WithEnvFile sets the dotenv file to read; an empty path disables it.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Fill unset environment variables from the .env file
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if l.envFile != "" {
		// godotenv never overwrites variables that are already set.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Field: "env_file", Message: err.Error()}
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
		return nil, err
	}

	if err := ApplyOverrides(config, overrides); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyOverrides applies command line overrides to an already loaded
// configuration and validates the result.
func ApplyOverrides(config *Config, overrides *ConfigOverrides) error {
	if overrides != nil {
		applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	return config.Validate()
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// Storage overrides
	StorageBackend  *string
	StorageDir      *string
	StorageFilename *string
	StorageKey      *string
	StorageFormat   *string

	// Display overrides
	TimeFormat *string
	Theme      *string
	NoColor    *bool
	Markdown   *bool

	// Application overrides
	Timeout  *time.Duration
	Verbose  *bool
	LogLevel *string
}

// applyOverrides applies command line overrides to the configuration
func applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Storage overrides
	if overrides.StorageBackend != nil {
		config.Storage.Backend = *overrides.StorageBackend
	}
	if overrides.StorageDir != nil {
		config.Storage.Dir = *overrides.StorageDir
	}
	if overrides.StorageFilename != nil {
		config.Storage.Filename = *overrides.StorageFilename
	}
	if overrides.StorageKey != nil {
		config.Storage.Key = *overrides.StorageKey
	}
	if overrides.StorageFormat != nil {
		config.Storage.Format = *overrides.StorageFormat
	}

	// Display overrides
	if overrides.TimeFormat != nil {
		config.Display.TimeFormat = *overrides.TimeFormat
	}
	if overrides.Theme != nil {
		config.Display.Theme = *overrides.Theme
	}
	if overrides.NoColor != nil {
		config.Display.NoColor = *overrides.NoColor
	}
	if overrides.Markdown != nil {
		config.Display.Markdown = *overrides.Markdown
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.LogLevel != nil {
		config.Application.LogLevel = *overrides.LogLevel
	}
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
