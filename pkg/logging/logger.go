// Package logging provides constructors for a slog logger (JSON, or
// tint-colorized text). No command in cmd/bodhi calls them; HTTP
// request/panic logging uses logrus instead, configured separately in
// internal/transport/http/middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// NewLogger creates a JSON-formatted slog logger.
func NewLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// NewLoggerWithFormat creates a logger in the requested format ("json" or
// "text"); "text" gets a colorized tint handler with colors disabled when
// stderr is not a terminal.
func NewLoggerWithFormat(level slog.Level, format string) *slog.Logger {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		handler := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "[15:04:05]",
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		})
		return slog.New(handler)
	default:
		return NewLogger(level)
	}
}

// ParseLevel converts a BODHI_LOG_LEVEL string to an slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
