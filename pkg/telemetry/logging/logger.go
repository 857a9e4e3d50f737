package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/ganymede/pkg/redaction"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON, one object per line.
	FormatJSON Format = "json"
	// FormatText outputs logs in slog's key=value text format.
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string

	// Format is "json" or "text".
	Format Format

	// AddSource includes file:line in log records.
	AddSource bool

	// RedactPII masks sensitive string values before writing.
	RedactPII bool

	// Masker supplies the redaction patterns. Nil with RedactPII set
	// means the built-in default patterns.
	Masker *redaction.Masker

	// Writer is the output destination; defaults to os.Stdout.
	Writer io.Writer
}

// New creates a slog.Logger from the configuration.
func New(cfg Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	if cfg.RedactPII {
		masker := cfg.Masker
		if masker == nil {
			masker, err = redaction.NewMasker(nil, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to build log redactor: %w", err)
			}
		}
		handler = newRedactingHandler(handler, masker)
	}

	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}
