package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the notes application
type Config struct {
	Storage     StorageConfig
	Validation  ValidationConfig
	Display     DisplayConfig
	Reminders   RemindersConfig
	Application ApplicationConfig
	Commands    CommandsConfig
}

// StorageConfig holds durable storage configuration
type StorageConfig struct {
	Backend        string        `env:"NOTES_STORAGE_BACKEND"`
	Dir            string        `env:"NOTES_STORAGE_DIR"`
	Filename       string        `env:"NOTES_STORAGE_FILENAME"`
	Key            string        `env:"NOTES_STORAGE_KEY"`
	Format         string        `env:"NOTES_STORAGE_FORMAT"`
	WriteTimeout   time.Duration `env:"NOTES_STORAGE_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"NOTES_STORAGE_DIR_PERMISSIONS"`
}

// ValidationConfig holds content validation rules
type ValidationConfig struct {
	RequireContent   bool `env:"NOTES_VALIDATION_REQUIRE_CONTENT"`
	ContentMaxLength int  `env:"NOTES_VALIDATION_CONTENT_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat    string `env:"NOTES_DISPLAY_TIME_FORMAT"`
	Theme         string `env:"NOTES_DISPLAY_THEME"`
	NoColor       bool   `env:"NOTES_DISPLAY_NO_COLOR"`
	Markdown      bool   `env:"NOTES_DISPLAY_MARKDOWN"`
	MarkdownStyle string `env:"NOTES_DISPLAY_MARKDOWN_STYLE"`
	ContentWidth  int    `env:"NOTES_DISPLAY_CONTENT_WIDTH"`
}

// RemindersConfig controls the local reminder scheduler
type RemindersConfig struct {
	Enabled bool `env:"NOTES_REMINDERS_ENABLED"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout   time.Duration `env:"NOTES_APP_TIMEOUT"`
	Verbose   bool          `env:"NOTES_APP_VERBOSE"`
	LogLevel  string        `env:"NOTES_LOG_LEVEL"`
	LogFormat string        `env:"NOTES_LOG_FORMAT"`
}

// CommandsConfig holds command-specific defaults
type CommandsConfig struct {
	ListDefaultView     string `env:"NOTES_LIST_DEFAULT_VIEW"`
	ExportDefaultFormat string `env:"NOTES_EXPORT_DEFAULT_FORMAT"`
}

// Supported values for the enumerated settings.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

var (
	validBackends      = []string{BackendSQLite, BackendFile, BackendMemory}
	validFormats       = []string{"json", "yaml"}
	validThemes        = []string{"classic", "mono"}
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"console", "json"}
	validListViews     = []string{"all", "notes", "tasks"}
	validExportFormats = []string{"json", "yaml", "csv"}
)

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, ".notes")

	return &Config{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			Dir:            defaultDir,
			Filename:       "notes.db",
			Key:            "items",
			Format:         "json",
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Validation: ValidationConfig{
			RequireContent:   true,
			ContentMaxLength: 10000,
		},
		Display: DisplayConfig{
			TimeFormat:    "2006-01-02 15:04",
			Theme:         "classic",
			NoColor:       false,
			Markdown:      true,
			MarkdownStyle: "dark",
			ContentWidth:  60,
		},
		Reminders: RemindersConfig{
			Enabled: true,
		},
		Application: ApplicationConfig{
			Timeout:   60 * time.Second,
			Verbose:   false,
			LogLevel:  "warn",
			LogFormat: "console",
		},
		Commands: CommandsConfig{
			ListDefaultView:     "all",
			ExportDefaultFormat: "json",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.Filename)
}

// GetWriteTimeout returns the storage write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Storage.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that cannot be parsed keep their current setting.
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if backend := os.Getenv("NOTES_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("NOTES_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("NOTES_STORAGE_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}
	if key := os.Getenv("NOTES_STORAGE_KEY"); key != "" {
		c.Storage.Key = key
	}
	if format := os.Getenv("NOTES_STORAGE_FORMAT"); format != "" {
		c.Storage.Format = format
	}
	if timeout := os.Getenv("NOTES_STORAGE_WRITE_TIMEOUT"); timeout != "" {
		c.Storage.WriteTimeout = ParseDurationWithFallback(timeout, c.Storage.WriteTimeout)
	}
	if perms := os.Getenv("NOTES_STORAGE_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Validation configuration
	if require := os.Getenv("NOTES_VALIDATION_REQUIRE_CONTENT"); require != "" {
		c.Validation.RequireContent = ParseBoolWithFallback(require, c.Validation.RequireContent)
	}
	if maxLen := os.Getenv("NOTES_VALIDATION_CONTENT_MAX"); maxLen != "" {
		c.Validation.ContentMaxLength = ParseIntWithFallback(maxLen, c.Validation.ContentMaxLength)
	}

	// Display configuration
	if format := os.Getenv("NOTES_DISPLAY_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if theme := os.Getenv("NOTES_DISPLAY_THEME"); theme != "" {
		c.Display.Theme = theme
	}
	if noColor := os.Getenv("NOTES_DISPLAY_NO_COLOR"); noColor != "" {
		c.Display.NoColor = ParseBoolWithFallback(noColor, c.Display.NoColor)
	}
	if markdown := os.Getenv("NOTES_DISPLAY_MARKDOWN"); markdown != "" {
		c.Display.Markdown = ParseBoolWithFallback(markdown, c.Display.Markdown)
	}
	if style := os.Getenv("NOTES_DISPLAY_MARKDOWN_STYLE"); style != "" {
		c.Display.MarkdownStyle = style
	}
	if width := os.Getenv("NOTES_DISPLAY_CONTENT_WIDTH"); width != "" {
		c.Display.ContentWidth = ParseIntWithFallback(width, c.Display.ContentWidth)
	}

	// Reminder configuration
	if enabled := os.Getenv("NOTES_REMINDERS_ENABLED"); enabled != "" {
		c.Reminders.Enabled = ParseBoolWithFallback(enabled, c.Reminders.Enabled)
	}

	// Application configuration
	if timeout := os.Getenv("NOTES_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("NOTES_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	if level := os.Getenv("NOTES_LOG_LEVEL"); level != "" {
		c.Application.LogLevel = level
	}
	if format := os.Getenv("NOTES_LOG_FORMAT"); format != "" {
		c.Application.LogFormat = format
	}

	// Commands configuration
	if view := os.Getenv("NOTES_LIST_DEFAULT_VIEW"); view != "" {
		c.Commands.ListDefaultView = view
	}
	if format := os.Getenv("NOTES_EXPORT_DEFAULT_FORMAT"); format != "" {
		c.Commands.ExportDefaultFormat = format
	}

	return nil
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	// Storage
	if !oneOf(c.Storage.Backend, validBackends) {
		return &ConfigError{Field: "storage.backend", Message: "backend must be one of sqlite, file, memory"}
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Filename == "" {
		return &ConfigError{Field: "storage.filename", Message: "database filename cannot be empty"}
	}
	if c.Storage.Key == "" {
		return &ConfigError{Field: "storage.key", Message: "storage key cannot be empty"}
	}
	if !oneOf(c.Storage.Format, validFormats) {
		return &ConfigError{Field: "storage.format", Message: "format must be json or yaml"}
	}
	if c.Storage.WriteTimeout <= 0 {
		return &ConfigError{Field: "storage.write_timeout", Message: "write timeout must be positive"}
	}

	// Validation
	if c.Validation.ContentMaxLength < 0 {
		return &ConfigError{Field: "validation.content_max_length", Message: "content maximum length cannot be negative"}
	}

	// Display
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if !oneOf(c.Display.Theme, validThemes) {
		return &ConfigError{Field: "display.theme", Message: "theme must be classic or mono"}
	}
	if c.Display.ContentWidth < 20 {
		return &ConfigError{Field: "display.content_width", Message: "content width must be at least 20"}
	}

	// Application
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if !oneOf(c.Application.LogLevel, validLogLevels) {
		return &ConfigError{Field: "application.log_level", Message: "log level must be one of debug, info, warn, error"}
	}
	if !oneOf(c.Application.LogFormat, validLogFormats) {
		return &ConfigError{Field: "application.log_format", Message: "log format must be console or json"}
	}

	// Commands
	if !oneOf(c.Commands.ListDefaultView, validListViews) {
		return &ConfigError{Field: "commands.list_default_view", Message: "list view must be one of all, notes, tasks"}
	}
	if !oneOf(c.Commands.ExportDefaultFormat, validExportFormats) {
		return &ConfigError{Field: "commands.export_default_format", Message: "export format must be one of json, yaml, csv"}
	}

	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
