package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human-readable console
// writer; every other environment logs JSON to stdout.
func New(environment, level string) zerolog.Logger {
	return newWithOutput(os.Stdout, environment, level)
}

func newWithOutput(out io.Writer, environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = out
	if strings.EqualFold(environment, "development") {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", "academy-automation").
		Logger()
}

func parseLevel(level string) zerolog.Level {
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
