package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/content/address"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger with content-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newJSONLogger(os.Stderr, level)
}

func newJSONLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// RotateConfig controls log file rotation.
type RotateConfig struct {
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep (0 keeps all).
	MaxBackups int
	// MaxAgeDays removes rotated files older than this (0 disables).
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// NewFileLogger creates a JSON Logger writing to a rotating file at path.
// If the directory cannot be created, it logs to stderr and returns the error
// alongside the fallback logger.
func NewFileLogger(path string, level slog.Level, rotate RotateConfig) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l := NewJSONLogger(level)
		l.Warn("log file unavailable, using stderr", "path", path, "error", err)
		return l, fmt.Errorf("create log directory: %w", err)
	}

	return newJSONLogger(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotate.MaxSizeMB,
		MaxBackups: rotate.MaxBackups,
		MaxAge:     rotate.MaxAgeDays,
		Compress:   rotate.Compress,
		LocalTime:  true,
	}, level), nil
}

// WithAddress adds an address field to the logger.
func (l *Logger) WithAddress(addr address.Address) *Logger {
	return &Logger{
		Logger: l.Logger.With("address", addr.String()),
	}
}

// WithJobID adds a job_id field to the logger.
func (l *Logger) WithJobID(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("job_id", id.String()),
	}
}

// WithType adds an asset type field to the logger.
func (l *Logger) WithType(typ string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", typ),
	}
}

// LogEnqueue logs a job handed to the worker pool.
func (l *Logger) LogEnqueue(ctx context.Context, id uuid.UUID, addr address.Address) {
	l.DebugContext(ctx, "load enqueued",
		"job_id", id.String(),
		"address", addr.String(),
	)
}

// LogDecode logs the background half of a load: read and decode.
func (l *Logger) LogDecode(ctx context.Context, id uuid.UUID, addr address.Address, bytes int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"job_id", id.String(),
			"address", addr.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "decode completed",
			"job_id", id.String(),
			"address", addr.String(),
			"bytes", bytes,
			"duration", duration,
		)
	}
}

// LogFinalize logs the owning-thread half of a load.
func (l *Logger) LogFinalize(ctx context.Context, id uuid.UUID, addr address.Address, memory int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "finalize failed",
			"job_id", id.String(),
			"address", addr.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "finalize completed",
			"job_id", id.String(),
			"address", addr.String(),
			"memory", memory,
		)
	}
}

// LogEvict logs a prune pass that removed entries.
func (l *Logger) LogEvict(ctx context.Context, typ string, evicted int, force bool) {
	if evicted == 0 {
		return
	}
	l.InfoContext(ctx, "cache pruned",
		"type", typ,
		"evicted", evicted,
		"force", force,
	)
}

// LogUnload logs an explicit unload.
func (l *Logger) LogUnload(ctx context.Context, addr address.Address, removed bool) {
	l.DebugContext(ctx, "unload",
		"address", addr.String(),
		"removed", removed,
	)
}

// LogReload logs a reload request.
func (l *Logger) LogReload(ctx context.Context, addr address.Address, err error) {
	if err != nil {
		l.WarnContext(ctx, "reload rejected",
			"address", addr.String(),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "reload enqueued",
			"address", addr.String(),
		)
	}
}
