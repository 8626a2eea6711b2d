package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the operator log.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	File       string // "", "stdout", "stderr" or a file path
	MaxSizeMB  int    // Rotate after this many megabytes
	MaxBackups int    // Rotated files to keep
	MaxAgeDays int    // Days to keep rotated files
	Compress   bool   // Gzip rotated files
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// New builds a logger and returns a closer for its output. The closer is a
// no-op for stdout and stderr.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	levelStr := cfg.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}

	out, closer := output(cfg)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

func output(cfg Config) (io.Writer, io.Closer) {
	switch cfg.File {
	case "", "stdout":
		return os.Stdout, nopCloser{}
	case "stderr":
		return os.Stderr, nopCloser{}
	default:
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return lj, lj
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
