// Package logger provides the structured logger used across ssechat.
//
// Everything logs through *slog.Logger. Pretty output is rendered by
// charmbracelet/log acting as the slog handler; JSON output uses slog's
// own handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	prefix  string
	writers []io.Writer
}

// New creates a *slog.Logger. Without options it writes text at Info level to stderr.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelInfo,
		writers: []io.Writer{os.Stderr},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	w := io.MultiWriter(cfg.writers...)
	if len(cfg.writers) == 1 {
		w = cfg.writers[0]
	}

	switch {
	case cfg.json:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		}))
	case cfg.pretty:
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(cfg.level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    cfg.source,
			Prefix:          cfg.prefix,
		})
		return slog.New(handler)
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		}))
	}
}

// Nop returns a logger that discards everything
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns l, or a discarding logger when l is nil
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
