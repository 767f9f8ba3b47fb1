package evf

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	logifaceslog "github.com/joeycumines/logiface-slog"
)

// Logger is a structured logger built on logiface, backed by the
// logiface-slog adapter by default. It instruments runtime lifecycle
// transitions, delivery failures (queue-full skips during Publish), and
// timer diagnostics as an injectable field on Runtime rather than a
// package-level sink.
type Logger = *logiface.Logger[*logifaceslog.Event]

// defaultLogger builds the default Logger: a logiface.Logger writing
// through logiface-slog to a slog.TextHandler on stderr at info level.
func defaultLogger() Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	return logiface.New(logifaceslog.NewLogger(handler))
}

// NewLoggerWithHandler builds a Logger wrapping an arbitrary slog.Handler,
// for applications that want JSON logs, a custom sink, or a different
// level filter than the default.
func NewLoggerWithHandler(handler slog.Handler) Logger {
	return logiface.New(logifaceslog.NewLogger(handler))
}
