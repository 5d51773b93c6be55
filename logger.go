package umapsgd

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with layout-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRun tags the logger with the shape of one optimization run.
func (l *Logger) WithRun(vertices, edges, dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertices", vertices, "edges", edges, "dimension", dim),
	}
}

// WithEpoch adds an epoch field to the logger.
func (l *Logger) WithEpoch(epoch int) *Logger {
	return &Logger{
		Logger: l.Logger.With("epoch", epoch),
	}
}

// LogPrune logs the result of edge thresholding and compaction.
func (l *Logger) LogPrune(ctx context.Context, before, after int, threshold float64) {
	l.DebugContext(ctx, "edges pruned",
		"before", before,
		"after", after,
		"removed", before-after,
		"threshold", threshold,
	)
}

// LogSchedule logs the range of per-edge sampling periods.
func (l *Logger) LogSchedule(ctx context.Context, minPeriod, maxPeriod float64, never int) {
	l.DebugContext(ctx, "epoch schedule built",
		"min_epochs_per_sample", minPeriod,
		"max_epochs_per_sample", maxPeriod,
		"never_sampled", never,
	)
}

// LogEpoch logs one completed epoch.
func (l *Logger) LogEpoch(ctx context.Context, stats EpochStats) {
	l.DebugContext(ctx, "epoch completed",
		"epoch", stats.Epoch,
		"alpha", stats.Alpha,
		"sampled", stats.Sampled,
		"negative", stats.Negative,
		"skipped_self", stats.SkippedSelf,
		"duration", stats.Duration,
	)
}

// LogRun logs the outcome of an optimization run.
func (l *Logger) LogRun(ctx context.Context, epochs int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "layout optimization failed",
			"epochs", epochs,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "layout optimization completed",
			"epochs", epochs,
			"duration", duration,
		)
	}
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"name", name,
			"bytes", bytes,
		)
	}
}
