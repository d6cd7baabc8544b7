// Package log installs the process logger: JSON records in a rotating file,
// plus human readable debug output on stderr when it is redirected.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	charmlog "charm.land/log/v2"
	"github.com/charmbracelet/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

var initialized atomic.Bool

// Initialized reports whether [Setup] has installed the default logger.
func Initialized() bool { return initialized.Load() }

// Options configure [Setup].
type Options struct {
	// Path of the log file. Its directory is created when missing.
	Path  string
	Debug bool
	// Stderr receives debug output. Defaults to os.Stderr when it is not a
	// terminal, since the grid owns the terminal.
	Stderr io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup installs the default slog logger. The returned closer flushes and
// closes the log file.
func Setup(opts Options) (io.Closer, error) {
	if opts.Path == "" {
		return nil, errors.New("log: no log file path")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    max(opts.MaxSizeMB, 10),
		MaxBackups: max(opts.MaxBackups, 0),
		MaxAge:     max(opts.MaxAgeDays, 30),
		Compress:   false,
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	}

	if opts.Debug {
		stderr := opts.Stderr
		if stderr == nil && !term.IsTerminal(os.Stderr.Fd()) {
			stderr = os.Stderr
		}
		if stderr != nil {
			handlers = append(handlers, charmlog.NewWithOptions(stderr, charmlog.Options{
				Level:           charmlog.DebugLevel,
				ReportTimestamp: true,
				Prefix:          "datagrid",
			}))
		}
	}

	slog.SetDefault(slog.New(fanout(handlers)))
	initialized.Store(true)
	return file, nil
}

// fanout sends records to every handler that accepts their level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
