// Package logger provides the human-readable logger used by terminal tools.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w, or stderr when w is nil. Only
// warnings and errors are shown unless verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := slog.LevelWarn
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// a terminal already shows when things happen
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
