package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps audit
// lines machine-parseable; level comes from config so production can drop
// debug noise.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
