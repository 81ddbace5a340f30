// Package logger configures the process-wide slog logger: an optional
// console sink plus a size-rotated log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelAlways is above Error so it passes every level filter. Used for the
// session start and end markers.
const LevelAlways = slog.Level(12)

var (
	mu      sync.Mutex
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
	file    *lumberjack.Logger
)

// Initialize builds the logger described by cfg, installs it as the slog
// default and returns it. Console output goes to stderr so it does not mix
// with the chat on stdout.
func Initialize(cfg Config) (*slog.Logger, error) {
	return initialize(cfg, os.Stderr)
}

func initialize(cfg Config, console io.Writer) (*slog.Logger, error) {
	level := parseLogLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel}

	var handlers []slog.Handler
	if cfg.ConsoleEnabled {
		handlers = append(handlers, newHandler(cfg.ConsoleFormat, console, opts))
	}

	var lj *lumberjack.Logger
	if cfg.FileEnabled && cfg.FilePath != "" {
		lj = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAgeDays,
			Compress:   cfg.FileCompress,
		}
		handlers = append(handlers, newHandler(cfg.FileFormat, lj, opts))
	}

	var l *slog.Logger
	switch len(handlers) {
	case 0:
		// Nothing configured: stay silent rather than scribble over the UI.
		l = slog.New(slog.NewTextHandler(io.Discard, opts))
	case 1:
		l = slog.New(handlers[0])
	default:
		l = slog.New(newMultiHandler(handlers...))
	}

	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = lj
	current = l
	mu.Unlock()

	slog.SetDefault(l)
	return l, nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Logger returns the configured logger.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == LevelAlways {
			a.Value = slog.StringValue("ALWAYS")
		}
	}
	return a
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any)   { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)    { Logger().Info(msg, args...) }
func Warning(msg string, args ...any) { Logger().Warn(msg, args...) }
func Error(msg string, args ...any)   { Logger().Error(msg, args...) }

// Always logs msg regardless of the configured level.
func Always(msg string, args ...any) {
	Logger().Log(context.Background(), LevelAlways, msg, args...)
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return newMultiHandler(handlers...)
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return newMultiHandler(handlers...)
}
