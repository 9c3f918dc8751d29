package observability

import (
	"io"
	"log/slog"
)

// NewLogger builds the JSON logger the whole service shares. Record level
// noise stays out of the log unless verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
