package terrain

import (
	"log/slog"

	"github.com/gogpu/terrain/internal/logging"
)

// SetLogger configures the logger for terrain and all its sub-packages.
// By default, terrain produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by terrain:
//   - [slog.LevelDebug]: per-tile diagnostics (templates, load requests, stale callbacks)
//   - [slog.LevelInfo]: lifecycle events (canvas built, builder switched)
//   - [slog.LevelWarn]: asset load failures
//
// Example:
//
//	terrain.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger used by terrain.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
