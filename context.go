package persist

import (
	"context"
	"sync"

	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/storage"
)

// Option configures a PersistenceContext.
type Option func(*contextConfig)

type contextConfig struct {
	handler       storage.Handler
	tracker       *Tracker
	logger        PersistenceLogger
	activityHooks activity.Hooks
	channel       string
}

func applyOptions(opts []Option) contextConfig {
	cfg := contextConfig{logger: noopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithStorageHandler installs handler at construction time.
func WithStorageHandler(handler storage.Handler) Option {
	return func(cfg *contextConfig) {
		cfg.handler = handler
	}
}

// WithTracker shares an existing tracker with the context.
func WithTracker(tracker *Tracker) Option {
	return func(cfg *contextConfig) {
		cfg.tracker = tracker
	}
}

// WithActivityHooks attaches activity hooks notified about persistence
// lifecycle events. Nil entries are dropped.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *contextConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *contextConfig) {
		cfg.channel = channel
	}
}

// PersistenceContext bundles the storage handler, the update tracker and the
// ambient logging and activity sinks shared by persisted reducers and stores.
type PersistenceContext struct {
	mu      sync.RWMutex
	handler storage.Handler

	tracker *Tracker
	logger  PersistenceLogger
	emitter *activity.Emitter
}

// NewContext constructs an isolated persistence context.
func NewContext(opts ...Option) *PersistenceContext {
	cfg := applyOptions(opts)
	tracker := cfg.tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	return &PersistenceContext{
		handler: cfg.handler,
		tracker: tracker,
		logger:  cfg.logger,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.channel,
		}),
	}
}

var defaultContext = NewContext()

// Default returns the process-wide context used when no context is given.
func Default() *PersistenceContext {
	return defaultContext
}

// InstallStorageHandler installs handler on the default context.
func InstallStorageHandler(handler storage.Handler) {
	defaultContext.InstallStorageHandler(handler)
}

// InstallStorageHandler replaces the context's handler. Installing nil
// uninstalls it.
func (pc *PersistenceContext) InstallStorageHandler(handler storage.Handler) {
	pc.mu.Lock()
	pc.handler = handler
	pc.mu.Unlock()
}

// StorageHandler returns the installed handler or a ConfigurationError.
func (pc *PersistenceContext) StorageHandler() (storage.Handler, error) {
	pc.mu.RLock()
	handler := pc.handler
	pc.mu.RUnlock()
	if handler == nil {
		return nil, configurationError("storage handler", "", ErrStorageNotInstalled)
	}
	return handler, nil
}

// Tracker returns the context's update tracker.
func (pc *PersistenceContext) Tracker() *Tracker {
	return pc.tracker
}

func (pc *PersistenceContext) gateway() (*storage.Gateway, error) {
	handler, err := pc.StorageHandler()
	if err != nil {
		return nil, err
	}
	return storage.NewGateway(handler), nil
}

func (pc *PersistenceContext) log(event LogEvent) {
	pc.logger.LogPersistence(event)
}

func (pc *PersistenceContext) emit(ctx context.Context, event activity.Event) {
	if !pc.emitter.Enabled() {
		return
	}
	if err := pc.emitter.Emit(ctx, event); err != nil {
		pc.log(LogEvent{Op: OpActivity, Slice: event.ObjectID, Err: err})
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
