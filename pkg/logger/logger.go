// Package logger builds the application slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Proton-105/cocktail-bot/pkg/config"
)

var level = new(slog.LevelVar)

// New creates the process logger: text or JSON output to stdout or a rotated
// file, sensitive attributes masked, error records mirrored to Sentry when
// it is enabled. The returned closer flushes the log file.
func New(cfg config.Config) (*slog.Logger, io.Closer) {
	if err := SetLevel(cfg.Logger.Level); err != nil {
		level.Set(slog.LevelInfo)
	}

	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.Logger.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		}
		out = rotating
		closer = rotating
	}

	log := slog.New(NewMaskingHandler(newHandler(out, cfg))).With(
		slog.String("app", "cocktail-bot"),
		slog.String("env", cfg.AppEnv),
	)

	return log, closer
}

// newHandler picks the output format and mirrors error records to Sentry
// when it is enabled.
func newHandler(out io.Writer, cfg config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logger.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if !cfg.Sentry.Enabled {
		return handler
	}

	return slogmulti.Fanout(handler, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
}

// SetLevel changes the level of every logger built by New.
func SetLevel(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "", "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}

	return nil
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}

// Discard returns a logger that drops everything; handy in tests and tools.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
