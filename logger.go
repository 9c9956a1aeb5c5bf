package kanakanji

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with kanakanji-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newWriterLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newWriterLogger(os.Stderr, "text", level)
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewConfiguredLogger creates a Logger writing to w from a level name
// (debug, info, warn, error) and a format name (text, json).
func NewConfiguredLogger(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return newWriterLogger(w, strings.ToLower(format), lvl), nil
}

func newWriterLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// WithSession adds a session field to the logger.
func (l *Logger) WithSession(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// WithSource adds a dictionary source field to the logger.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", source),
	}
}

// LogOpen logs opening an engine.
func (l *Logger) LogOpen(ctx context.Context, source, version string, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "engine open failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "engine opened",
			"source", source,
			"version", version,
			"duration", d,
		)
	}
}

// LogConversion logs one conversion.
func (l *Logger) LogConversion(ctx context.Context, strategy string, inputLen, candidates int, d time.Duration) {
	l.DebugContext(ctx, "conversion completed",
		"strategy", strategy,
		"input", inputLen,
		"candidates", candidates,
		"duration", d,
	)
}

// LogCommit logs a commit.
func (l *Logger) LogCommit(ctx context.Context, text string, inputLen int, err error) {
	if err != nil {
		l.WarnContext(ctx, "commit failed",
			"text", text,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "commit completed",
			"text", text,
			"input", inputLen,
		)
	}
}

// LogUserWord logs a user dictionary change.
func (l *Logger) LogUserWord(ctx context.Context, op, reading, word string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "user dictionary "+op+" failed",
			"reading", reading,
			"word", word,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "user dictionary "+op,
			"reading", reading,
			"word", word,
		)
	}
}
