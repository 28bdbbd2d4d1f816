package lodsnap

import (
	"context"
	"log/slog"
	"os"

	"github.com/arloliu/lodsnap/fulldata"
	"github.com/arloliu/lodsnap/intern"
	"github.com/arloliu/lodsnap/scheduler"
)

// Logger wraps slog.Logger with lodsnap-specific helpers so that log records
// use consistent field names.
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

	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSection adds the position of s to the logger.
func (l *Logger) WithSection(s *fulldata.Section) *Logger {
	return &Logger{
		Logger: l.With(
			"detail_level", s.DetailLevel().String(),
			"x", s.Pos.X(),
			"z", s.Pos.Z(),
		),
	}
}

// LogDecodeReport logs the outcome of one decode pass.
func (l *Logger) LogDecodeReport(ctx context.Context, r *scheduler.Report[*fulldata.Section]) {
	for _, f := range r.Failures {
		l.WithSection(f.Item).ErrorContext(ctx, "failed to decode section",
			"field", f.Field,
			"error", f.Err,
		)
	}

	switch {
	case len(r.Failures) > 0:
		l.WarnContext(ctx, "decode pass completed with failures",
			"decoded", r.Decoded,
			"failed", len(r.Failures),
			"deferred", r.Deferred,
			"elapsed", r.Elapsed,
		)
	case r.Deferred > 0:
		l.DebugContext(ctx, "decode pass deferred work",
			"decoded", r.Decoded,
			"deferred", r.Deferred,
			"elapsed", r.Elapsed,
		)
	default:
		l.DebugContext(ctx, "decode pass completed",
			"decoded", r.Decoded,
			"sections", len(r.Completed),
			"elapsed", r.Elapsed,
		)
	}
}

// LogInternStats logs the sizes of the intern sets of p.
func (l *Logger) LogInternStats(ctx context.Context, p *intern.Pool) {
	stats := p.Stats()
	l.InfoContext(ctx, "intern pool",
		"biomes", stats.Biomes,
		"blocks", stats.Blocks,
		"state_keys", stats.StateKeys,
		"state_values", stats.StateValues,
	)
}
