package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-persist/internal/hydrate"
	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/goliatone/go-persist/pkg/store"
)

// ReducerOption configures a persisted reducer.
type ReducerOption func(*reducerConfig)

type reducerConfig struct {
	context   *PersistenceContext
	filter    any
	preHooks  []hydrate.PreHook
	postHooks []any
	strict    bool
}

// WithContext binds the reducer to pc instead of the default context.
func WithContext(pc *PersistenceContext) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.context = pc
	}
}

// WithStateFilter shapes what is written to storage. The state type is
// inferred from fn and must match the reducer's state type.
func WithStateFilter[S any](fn func(S) any) ReducerOption {
	return func(cfg *reducerConfig) {
		if fn != nil {
			cfg.filter = fn
		}
	}
}

// WithPreHook rewrites object records before they are decoded.
func WithPreHook(fn func(slice string, record map[string]any) (map[string]any, error)) ReducerOption {
	return func(cfg *reducerConfig) {
		if fn == nil {
			return
		}
		cfg.preHooks = append(cfg.preHooks, func(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
			return fn(ctx.Slice, payload)
		})
	}
}

// WithPostHook adjusts or validates restored state. A hook error discards the
// record and the slice keeps its initial state.
func WithPostHook[S any](fn func(slice string, state *S) error) ReducerOption {
	return func(cfg *reducerConfig) {
		if fn != nil {
			cfg.postHooks = append(cfg.postHooks, fn)
		}
	}
}

// WithStrictDecoding rejects records carrying fields unknown to the state type.
func WithStrictDecoding() ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.strict = true
	}
}

// PersistedReducer is a slice reducer whose state is written to storage on
// change and restored when a store is configured.
type PersistedReducer[S any] struct {
	name    string
	pc      *PersistenceContext
	reducer *store.Reducer[S]
	filter  func(S) any
	decoder *hydrate.Decoder[S]
}

// NewPersistedReducer registers a persisted reducer named name. Every case
// reducer added through build marks the slice dirty when it runs.
func NewPersistedReducer[S any](name string, initial func() S, build func(store.Builder[S]), opts ...ReducerOption) (*PersistedReducer[S], error) {
	if err := validateName(name); err != nil {
		return nil, configurationError("register", name, err)
	}

	cfg := reducerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	pc := cfg.context
	if pc == nil {
		pc = Default()
	}

	filter, err := typedFilter[S](cfg.filter)
	if err != nil {
		return nil, configurationError("register", name, err)
	}
	decoder, err := buildDecoder[S](cfg)
	if err != nil {
		return nil, configurationError("register", name, err)
	}

	inner, err := store.CreateReducer(initial, func(b store.Builder[S]) {
		b.AddCase(HydrationType(name), restoreCase[S])
		if build != nil {
			build(decorate(name, pc.tracker, b))
		}
	})
	if err != nil {
		return nil, configurationError("register", name, err)
	}

	return &PersistedReducer[S]{
		name:    name,
		pc:      pc,
		reducer: inner,
		filter:  filter,
		decoder: decoder,
	}, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidRegistration)
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("%w: name %q must not contain '/'", ErrInvalidRegistration, name)
	}
	return nil
}

func typedFilter[S any](raw any) (func(S) any, error) {
	if raw == nil {
		return func(state S) any { return state }, nil
	}
	fn, ok := raw.(func(S) any)
	if !ok {
		return nil, fmt.Errorf("%w: state filter %T does not accept %s", ErrInvalidRegistration, raw, typeName[S]())
	}
	return fn, nil
}

func buildDecoder[S any](cfg reducerConfig) (*hydrate.Decoder[S], error) {
	options := make([]hydrate.DecoderOption[S], 0, len(cfg.preHooks)+len(cfg.postHooks)+1)
	for _, hook := range cfg.preHooks {
		options = append(options, hydrate.WithPreHook[S](hook))
	}
	for _, raw := range cfg.postHooks {
		fn, ok := raw.(func(string, *S) error)
		if !ok {
			return nil, fmt.Errorf("%w: post hook %T does not accept *%s", ErrInvalidRegistration, raw, typeName[S]())
		}
		options = append(options, hydrate.WithPostHook[S](func(ctx hydrate.Context, state *S) error {
			return fn(ctx.Slice, state)
		}))
	}
	if cfg.strict {
		options = append(options, hydrate.WithDisallowUnknownFields[S]())
	}
	return hydrate.NewDecoder(options...), nil
}

func typeName[S any]() string {
	return reflect.TypeOf((*S)(nil)).Elem().String()
}

// restoreCase swaps in a hydrated state when the action carries one.
func restoreCase[S any](_ *S, action store.Action) store.Result[S] {
	if value, ok := action.Payload.(S); ok {
		return store.Replace(value)
	}
	return store.Mutated[S]()
}

// Name returns the slice name the reducer persists under.
func (r *PersistedReducer[S]) Name() string {
	return r.name
}

// Reduce implements store.SliceReducer.
func (r *PersistedReducer[S]) Reduce(state any, action store.Action) (any, error) {
	return r.reducer.Reduce(state, action)
}

// InitialState returns a fresh initial state.
func (r *PersistedReducer[S]) InitialState() S {
	return r.reducer.InitialState()
}

// HydrationType returns the action type that restores this slice.
func (r *PersistedReducer[S]) HydrationType() string {
	return HydrationType(r.name)
}

// Context returns the persistence context the reducer is bound to.
func (r *PersistedReducer[S]) Context() *PersistenceContext {
	return r.pc
}

// ClearPersistedStorage removes the stored record. In-memory state and
// tracker versions are left alone; clearing a missing record is a no-op.
func (r *PersistedReducer[S]) ClearPersistedStorage(ctx context.Context) error {
	gw, err := r.pc.gateway()
	if err != nil {
		return err
	}
	start := time.Now()
	err = gw.Remove(ctx, r.name)
	r.pc.log(LogEvent{
		Op:       OpClear,
		Slice:    r.name,
		Key:      storage.Key(r.name),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return err
	}
	r.pc.emit(ctx, activity.BuildSliceClearedEvent(activity.SliceEventInput{
		Slice: r.name,
		Key:   storage.Key(r.name),
	}))
	return nil
}

// StoredState reads and decodes the stored record. ok is false when there is
// no usable record; err explains why a present record could not be used.
func (r *PersistedReducer[S]) StoredState(ctx context.Context) (S, bool, error) {
	var zero S
	gw, err := r.pc.gateway()
	if err != nil {
		return zero, false, err
	}
	raw, found, err := gw.Get(ctx, r.name)
	if err != nil || !found {
		return zero, false, err
	}
	value, err := r.decode(raw)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func (r *PersistedReducer[S]) decode(raw string) (S, error) {
	value, err := r.decoder.Decode(hydrate.Context{Slice: r.name, Key: storage.Key(r.name)}, []byte(raw), r.InitialState())
	if err != nil {
		var zero S
		return zero, &storage.Error{Op: storage.OpRead, Slice: r.name, Key: storage.Key(r.name), Err: err}
	}
	return value, nil
}

func (r *PersistedReducer[S]) encode(state S) ([]byte, error) {
	return json.Marshal(r.filter(state))
}

func (r *PersistedReducer[S]) bind(owner *PersistedStore) binding {
	b := &sliceBinding[S]{reducer: r, owner: owner}
	b.queue = newWriteQueue(b.write, true)
	return b
}
