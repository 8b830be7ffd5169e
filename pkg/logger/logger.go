package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line.
const ServiceName = "ai-blog-writer"

// Options controls logger construction
type Options struct {
	Level  string
	Format string // "json" or "pretty"
	Output io.Writer
}

// New creates a new zerolog logger with structured output.
// Level and format fall back to LOG_LEVEL / LOG_FORMAT when empty.
func New(opts ...Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Level == "" {
		o.Level = os.Getenv("LOG_LEVEL")
	}
	if o.Format == "" {
		o.Format = os.Getenv("LOG_FORMAT")
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}

	logLevel := ParseLevel(o.Level)

	// Use pretty console output in development
	if strings.EqualFold(o.Format, "pretty") || os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: o.Output, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", ServiceName).
			Logger()
	}

	// JSON output for production
	return zerolog.New(o.Output).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
