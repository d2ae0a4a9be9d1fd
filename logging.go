package props

import (
	"context"
	"log/slog"
	"time"
)

// TrackerOp names the DirtyMap operation a log event describes.
type TrackerOp string

const (
	OpPut      TrackerOp = "put"
	OpRemove   TrackerOp = "remove"
	OpClean    TrackerOp = "clean"
	OpDirty    TrackerOp = "dirty"
	OpIsDirty  TrackerOp = "is_dirty"
	OpSetDirty TrackerOp = "set_dirty"
	OpFlush    TrackerOp = "flush"
	OpRule     TrackerOp = "rule"
	OpActivity TrackerOp = "activity"
)

// TrackerLogEvent describes a single DirtyMap operation.
type TrackerLogEvent struct {
	Op       TrackerOp
	Key      string
	Entries  int
	Dirty    int
	Expr     string
	Duration time.Duration
	Err      error
}

// TrackerLogger records tracker events.
type TrackerLogger interface {
	LogTracker(TrackerLogEvent)
}

// TrackerLoggerFunc adapts a function to TrackerLogger.
type TrackerLoggerFunc func(TrackerLogEvent)

// LogTracker implements TrackerLogger.
func (f TrackerLoggerFunc) LogTracker(event TrackerLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopTrackerLogger struct{}

func (noopTrackerLogger) LogTracker(TrackerLogEvent) {}

// SlogLogger writes tracker events to logger: successful operations at debug
// level and failures at warn level.
func SlogLogger(logger *slog.Logger) TrackerLogger {
	if logger == nil {
		return noopTrackerLogger{}
	}
	return slogTrackerLogger{logger: logger}
}

type slogTrackerLogger struct {
	logger *slog.Logger
}

func (l slogTrackerLogger) LogTracker(event TrackerLogEvent) {
	attrs := []slog.Attr{
		slog.String("op", string(event.Op)),
		slog.Duration("duration", event.Duration),
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Entries > 0 {
		attrs = append(attrs, slog.Int("entries", event.Entries))
	}
	if event.Dirty > 0 {
		attrs = append(attrs, slog.Int("dirty", event.Dirty))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("err", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "props tracker failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "props tracker", attrs...)
}

// WithLogger attaches a tracker logger. A nil logger disables logging.
func WithLogger(logger TrackerLogger) Option {
	return func(cfg *mapConfig) {
		if logger == nil {
			cfg.logger = noopTrackerLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithSlogLogger attaches a log/slog logger.
func WithSlogLogger(logger *slog.Logger) Option {
	return WithLogger(SlogLogger(logger))
}
