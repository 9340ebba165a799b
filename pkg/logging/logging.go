// Package logging configures structured logging for the Dongyar binaries.
//
// Usage:
//
//	logging.Setup("info", "text")            // colored tint output on stderr
//	logging.Setup("debug", "json")           // JSON lines on stdout
//
// Levels: debug, info, warn, error (default: info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default logger from a level name and an output format
// ("text" for colored tint output, "json" for machine-readable lines).
func Setup(level, format string) {
	slog.SetDefault(New(output(format), ParseLevel(level), format))
}

// output picks stdout for JSON lines, which go to log collectors, and stderr
// for human-readable output.
func output(format string) io.Writer {
	if isJSON(format) {
		return os.Stdout
	}
	return os.Stderr
}

func isJSON(format string) bool {
	return strings.EqualFold(format, "json")
}

// New builds a logger writing to w.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if isJSON(format) {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level == slog.LevelDebug,
		}),
	)
}

// ParseLevel maps a level name to a slog level, defaulting to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
