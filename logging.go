package persist

import (
	"time"

	"github.com/rs/zerolog"
)

// Operations reported through PersistenceLogger.
const (
	OpPersist  = "persist"
	OpHydrate  = "hydrate"
	OpClear    = "clear"
	OpActivity = "activity"
)

// LogEvent describes one storage round trip for logging.
type LogEvent struct {
	Op       string
	Slice    string
	Key      string
	Version  uint64
	Bytes    int
	Found    bool
	Duration time.Duration
	Err      error
}

// PersistenceLogger records persistence events.
type PersistenceLogger interface {
	LogPersistence(LogEvent)
}

// LoggerFunc adapts a function to PersistenceLogger.
type LoggerFunc func(LogEvent)

// LogPersistence implements PersistenceLogger.
func (f LoggerFunc) LogPersistence(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogPersistence(LogEvent) {}

// WithLogger attaches a persistence logger to the context.
func WithLogger(logger PersistenceLogger) Option {
	return func(cfg *contextConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// ZerologLogger writes events to logger: failures at warn, the rest at debug.
func ZerologLogger(logger zerolog.Logger) PersistenceLogger {
	return LoggerFunc(func(event LogEvent) {
		var e *zerolog.Event
		if event.Err != nil {
			e = logger.Warn().Err(event.Err)
		} else {
			e = logger.Debug()
		}
		e = e.Str("op", event.Op).Str("slice", event.Slice)
		if event.Key != "" {
			e = e.Str("key", event.Key)
		}
		if event.Version > 0 {
			e = e.Uint64("version", event.Version)
		}
		if event.Op == OpHydrate {
			e = e.Bool("found", event.Found)
		}
		e.Int("bytes", event.Bytes).Dur("took", event.Duration).Msg("persist " + event.Op)
	})
}
