// Package logging builds the process-wide structured logger.
//
// Diagnostics go to stderr through a tint handler so they stay readable in a
// terminal. Human-facing progress lines are printed separately by the ui
// package.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Options controls logger construction.
type Options struct {
	Verbose bool
	Writer  io.Writer
}

// New returns a logger writing to opts.Writer (stderr when nil). Debug
// records are emitted only when Verbose is set. Colors are disabled when the
// writer is not a terminal.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}))
}

// Discard returns a logger that drops every record. Intended for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
