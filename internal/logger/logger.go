// Package logger provides slog helpers for the app.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/handsomefox/showboard/internal/env"
)

// New builds the process logger: JSON in production, text everywhere else.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, env.Current, level)
}

func NewWithWriter(w io.Writer, e env.Environment, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: e.IsProduction(),
		Level:     level,
	}
	if e.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "nil")
	}
	return slog.String("err", err.Error())
}
