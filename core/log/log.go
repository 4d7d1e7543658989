package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	SetLevel(slog.LevelInfo)
}

func Info(format string, args ...any) {
	logger.Load().Info(fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) {
	l := logger.Load()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...any) {
	logger.Load().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	logger.Load().Error(fmt.Sprintf(format, args...))
}

// SetLevel replaces the process logger with a stdout text logger at the given level.
func SetLevel(level slog.Level) {
	SetOutput(os.Stdout, level)
}

// SetOutput is mostly useful in tests that want to inspect log lines.
func SetOutput(w io.Writer, level slog.Level) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}
