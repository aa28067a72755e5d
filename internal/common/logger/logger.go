package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Logger struct {
	service string
	base    *slog.Logger
	sl      *slog.Logger
}

type Options struct {
	Writer io.Writer // default os.Stdout
	Level  string    // debug | info | warn | error
}

func New(service string) *Logger { return NewWithOptions(service, Options{}) }

func NewWithOptions(service string, opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: replaceAttr,
	})
	base := slog.New(h).With(slog.String("hostname", hostname()))
	return &Logger{service: service, base: base, sl: base.With(slog.String("service", service))}
}

// Named returns a logger for another service sharing the same output.
func (l *Logger) Named(service string) *Logger {
	return &Logger{service: service, base: l.base, sl: l.base.With(slog.String("service", service))}
}

// OpenFile opens (or creates) an append-only log file, creating parent dirs.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

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

func (l *Logger) log(level slog.Level, action string, fields map[string]any, err error) {
	if l == nil || !l.sl.Enabled(context.Background(), level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	attrs = append(attrs, slog.String("action", action))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	if err != nil {
		attrs = append(attrs, slog.Group("error",
			slog.String("msg", err.Error()),
			slog.String("stack", fmt.Sprintf("%T", err)),
		))
	}
	l.sl.LogAttrs(context.Background(), level, action, attrs...)
}

func (l *Logger) Info(action string, fields map[string]any)             { l.log(slog.LevelInfo, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any)            { l.log(slog.LevelDebug, action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)             { l.log(slog.LevelWarn, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) { l.log(slog.LevelError, action, fields, err) }

// timestamp/message keys and UTC RFC3339Nano times, as the log shippers expect
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: a.Value}
	}
	return a
}

func hostname() string { h, _ := os.Hostname(); return h }
