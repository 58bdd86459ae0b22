// Package logging builds the zap loggers shared by every component.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv forces debug logging when set to any non-empty value.
const DebugEnv = "NOTES_DEBUG"

// Options configures New.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	Verbose bool   // raises the level to at least info
	Output  io.Writer
}

// DebugEnabled returns true if debug mode is enabled via NOTES_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// New returns a logger writing to opts.Output (stderr by default).
func New(opts Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), ResolveLevel(opts))
	return zap.New(core)
}

// ResolveLevel applies NOTES_DEBUG and Verbose on top of the configured level.
func ResolveLevel(opts Options) zapcore.Level {
	if DebugEnabled() {
		return zapcore.DebugLevel
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose && level > zapcore.InfoLevel {
		level = zapcore.InfoLevel
	}
	return level
}

// ParseLevel maps a level name to a zap level; unknown names mean warn.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
