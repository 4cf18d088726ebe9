// Package logging builds the zerolog loggers used across wardrota.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options describes where and how much to log.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Debug forces the debug level.
	Debug bool
	// File receives JSON lines. When empty, Console decides the output.
	File string
	// Console writes human readable lines to Out instead of JSON.
	Console bool
	// Out is the console destination, stderr when nil.
	Out io.Writer
	// NoColor disables colours in console output.
	NoColor bool
}

// New returns a logger for opts and a closer that releases the log file.
// The closer is never nil.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("opening log file: %w", err)
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, f.Close, nil
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: opts.NoColor}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), noop, nil
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func noop() error { return nil }
