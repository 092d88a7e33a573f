// Package logging wires the process-wide slog logger. The server starts
// with plain JSON on stdout; once the database is connected, main swaps in
// a MultiHandler that also batches records into the logs table.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout handler as the default logger. It runs
// before the database connects so early startup failures are still logged.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
