package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "shorlog-studio"

// New creates a zerolog logger writing to stdout.
func New() zerolog.Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a logger on an arbitrary writer. The CLI logs to
// stderr so its stdout stays readable.
func NewWithWriter(out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel := parseLevel(os.Getenv("LOG_LEVEL"))

	// Pretty console output in development
	if os.Getenv("ENV") == "development" || os.Getenv("LOG_FORMAT") == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName).
			Logger()
	}

	return zerolog.New(out).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
