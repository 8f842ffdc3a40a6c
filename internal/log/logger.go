// Package log wraps log/slog with a process-wide structured logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to slog levels.
// Anything else is INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the global JSON logger on stderr.
func Setup(level string) {
	SetupWriter(os.Stderr, level, "json")
}

// SetupWriter initializes the global logger on w. format is "json" or
// "text"; anything else is json.
func SetupWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Get returns the configured logger, setting up an INFO logger if Setup
// hasn't been called.
func Get() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Setup("INFO")
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithPipeline returns a logger with the pipeline field set.
func WithPipeline(name string) *slog.Logger {
	return Get().With(slog.String("pipeline", name))
}
