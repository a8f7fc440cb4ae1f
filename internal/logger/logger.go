// Package logger configures the process-wide slog default.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on slog.Default at the requested level.
// Unknown or empty levels fall back to info.
func Setup(logLevel string) {
	level := parseLevel(logLevel)

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
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
