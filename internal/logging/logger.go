package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by NewFromEnv.
const (
	EnvLogLevel  = "WEBHUB_LOG_LEVEL"
	EnvLogFormat = "WEBHUB_LOG_FORMAT"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
	Output     io.Writer // defaults to os.Stderr
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new zerolog logger with the given configuration
func New(cfg Config) zerolog.Logger {
	return zerolog.New(cfg.Writer()).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// Writer returns the sink described by cfg, wrapped for console output when asked.
func (c Config) Writer() io.Writer {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	if c.Format == "console" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: c.TimeFormat,
		}
	}
	return out
}

// NewFromEnv creates a logger based on environment variables
// WEBHUB_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// WEBHUB_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	return NewFromConfigValues(os.Getenv(EnvLogLevel), os.Getenv(EnvLogFormat))
}

// NewFromConfigValues builds a logger from string settings, ignoring unknown values.
func NewFromConfigValues(level, format string) zerolog.Logger {
	cfg := DefaultConfig()
	if lvl, ok := ParseLevel(level); ok {
		cfg.Level = lvl
	}
	switch format {
	case "json", "console":
		cfg.Format = format
	}
	return New(cfg)
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	}
	return zerolog.NoLevel, false
}
