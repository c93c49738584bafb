package app

import (
	"io"
	"log/slog"
)

// newLogger builds the session logger. Level names are the ones accepted by
// NewConfig; the core's debug lines (one per unit per round) only show up at
// "debug". The global logger is left alone so tests can run sessions side by
// side.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch formatStr {
	case "json":
		handler = slog.NewJSONHandler(outW, opts)
	default:
		handler = slog.NewTextHandler(outW, opts)
	}
	return slog.New(handler).With("core", "dxe")
}
