package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/goliatone/go-persist/pkg/store"
)

// StoreOptions configures a persisted store. Reducers may mix persisted and
// plain slice reducers; persisted ones must be registered under their name.
type StoreOptions struct {
	Reducers       map[string]store.SliceReducer
	Middleware     []store.Middleware
	PreloadedState store.State
}

// PersistedStore is a store whose persisted slices are written to storage on
// change and restored right after construction.
type PersistedStore struct {
	*store.Store

	id        uuid.UUID
	pc        *PersistenceContext
	listeners *store.ListenerMiddleware
	bindings  []binding
	stops     []func()
	hydrated  chan struct{}
	closeOnce sync.Once
}

// ConfigurePersistedStore installs handler on the default context and builds
// a store from opts.
func ConfigurePersistedStore(opts StoreOptions, handler storage.Handler) (*PersistedStore, error) {
	if handler == nil {
		return nil, configurationError("configure store", "", ErrStorageNotInstalled)
	}
	Default().InstallStorageHandler(handler)
	return Default().ConfigureStore(opts)
}

// ConfigureStore builds a store bound to pc. The storage handler must already
// be installed. Hydration starts before ConfigureStore returns; use
// WaitHydrated to observe stored state.
func (pc *PersistenceContext) ConfigureStore(opts StoreOptions) (*PersistedStore, error) {
	if _, err := pc.StorageHandler(); err != nil {
		return nil, err
	}

	persisted := make(map[string]persistable)
	for key, reducer := range opts.Reducers {
		p, ok := reducer.(persistable)
		if !ok {
			continue
		}
		if p.Name() != key {
			return nil, configurationError("configure store", key,
				fmt.Errorf("%w: persisted reducer %q registered under key %q", ErrInvalidRegistration, p.Name(), key))
		}
		if p.Context() != pc {
			return nil, configurationError("configure store", key,
				fmt.Errorf("%w: reducer is bound to another persistence context", ErrInvalidRegistration))
		}
		persisted[key] = p
	}

	listeners := store.NewListenerMiddleware()
	middleware := make([]store.Middleware, 0, len(opts.Middleware)+1)
	middleware = append(middleware, opts.Middleware...)
	middleware = append(middleware, listeners.Middleware())

	inner, err := store.New(store.Options{
		Reducers:       opts.Reducers,
		Middleware:     middleware,
		PreloadedState: opts.PreloadedState,
	})
	if err != nil {
		return nil, configurationError("configure store", "", err)
	}

	ps := &PersistedStore{
		Store:     inner,
		id:        uuid.New(),
		pc:        pc,
		listeners: listeners,
		hydrated:  make(chan struct{}),
	}

	for _, key := range inner.Keys() {
		p, ok := persisted[key]
		if !ok {
			continue
		}
		b := p.bind(ps)
		ps.bindings = append(ps.bindings, b)
		for _, l := range b.listeners() {
			ps.stops = append(ps.stops, listeners.StartListening(l))
		}
	}

	ps.startHydration()
	return ps, nil
}

func (ps *PersistedStore) startHydration() {
	var wg sync.WaitGroup
	for _, b := range ps.bindings {
		wg.Add(1)
		go func(b binding) {
			defer wg.Done()
			b.hydrate(context.Background())
		}(b)
	}
	go func() {
		wg.Wait()
		close(ps.hydrated)
	}()
}

// ID identifies the store in logs and activity events.
func (ps *PersistedStore) ID() uuid.UUID {
	return ps.id
}

// Context returns the persistence context the store is bound to.
func (ps *PersistedStore) Context() *PersistenceContext {
	return ps.pc
}

// Slices returns the names of the persisted slices in sorted order.
func (ps *PersistedStore) Slices() []string {
	names := make([]string, 0, len(ps.bindings))
	for _, b := range ps.bindings {
		names = append(names, b.sliceName())
	}
	return names
}

// Hydrated is closed once every persisted slice has been hydrated.
func (ps *PersistedStore) Hydrated() <-chan struct{} {
	return ps.hydrated
}

// WaitHydrated blocks until every persisted slice has been hydrated.
func (ps *PersistedStore) WaitHydrated(ctx context.Context) error {
	select {
	case <-ps.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits for hydration and for every queued write to finish.
func (ps *PersistedStore) Flush(ctx context.Context) error {
	if err := ps.WaitHydrated(ctx); err != nil {
		return err
	}
	var errs []error
	for _, b := range ps.bindings {
		if err := b.flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("persist: flush slice %q: %w", b.sliceName(), err))
		}
	}
	return errors.Join(errs...)
}

// Close stops the persistence listeners and flushes outstanding writes.
// Actions dispatched after Close still reduce but are no longer persisted.
func (ps *PersistedStore) Close(ctx context.Context) error {
	ps.closeOnce.Do(func() {
		for _, stop := range ps.stops {
			stop()
		}
	})
	return ps.Flush(ctx)
}
