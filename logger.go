package vocab

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vocab-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKeyWidth adds a key width field to the logger.
func (l *Logger) WithKeyWidth(keyWidth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("key_width", keyWidth),
	}
}

// WithProbeWidth adds a probe width field to the logger.
func (l *Logger) WithProbeWidth(probeWidth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("probe_width", probeWidth),
	}
}

// LogAccumulate logs an accumulate batch.
func (l *Logger) LogAccumulate(ctx context.Context, keys, committed, words int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "accumulate failed",
			"keys", keys,
			"committed", committed,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "accumulate completed",
		"keys", keys,
		"words", words,
		"duration", d,
	)
}

// LogFind logs a lookup batch.
func (l *Logger) LogFind(ctx context.Context, keys, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find failed",
			"keys", keys,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "find completed",
		"keys", keys,
		"found", found,
	)
}

// LogGrow logs a growth step of the slot arrays.
func (l *Logger) LogGrow(ctx context.Context, oldCapacity, newCapacity int) {
	l.InfoContext(ctx, "vocabulary grown",
		"old_capacity", oldCapacity,
		"new_capacity", newCapacity,
	)
}

// LogSave logs a snapshot written to a file.
func (l *Logger) LogSave(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"filename", filename,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"filename", filename,
	)
}

// LogPublish logs a publish to a blob store.
func (l *Logger) LogPublish(ctx context.Context, manifest string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "vocabulary published",
		"manifest", manifest,
		"bytes", bytes,
	)
}
