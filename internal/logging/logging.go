// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the package-level default slog logger on stderr.
// When events go to stdout, uses JSONHandler (avoids mixing with NDJSON output).
// Otherwise uses TextHandler for human readability. A non-empty runID is
// attached to every record.
func Init(outputIsStdout bool, level slog.Level, runID string) *slog.Logger {
	return initTo(os.Stderr, outputIsStdout, level, runID)
}

func initTo(w io.Writer, asJSON bool, level slog.Level, runID string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if runID != "" {
		logger = logger.With("run_id", runID)
	}
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
