// Package logging builds the zerolog loggers used by the server and the
// terminal client.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Options selects the log level and destination.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string

	// File, when set, receives JSON log lines in append mode. It takes
	// precedence over Writer.
	File string

	// Writer receives log lines when File is empty. Nil discards.
	Writer io.Writer

	// Component is added to every line when set.
	Component string
}

// New returns a logger and a close func for the underlying file, if any.
// The close func is never nil.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = l
	}

	out := opts.Writer
	closer := noop
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f.Close
	}
	if out == nil {
		out = io.Discard
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return ctx.Logger(), closer, nil
}

func noop() error { return nil }
