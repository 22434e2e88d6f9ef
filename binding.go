package persist

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/storage"
	"github.com/goliatone/go-persist/pkg/store"
)

// persistable is implemented by every *PersistedReducer[S].
type persistable interface {
	store.SliceReducer
	Name() string
	Context() *PersistenceContext
	bind(owner *PersistedStore) binding
}

// binding ties one persisted slice to one store.
type binding interface {
	sliceName() string
	listeners() []store.Listener
	hydrate(ctx context.Context)
	flush(ctx context.Context) error
}

type sliceBinding[S any] struct {
	reducer *PersistedReducer[S]
	owner   *PersistedStore
	queue   *writeQueue
}

func (b *sliceBinding[S]) sliceName() string {
	return b.reducer.name
}

// listeners returns the slice-scoped and catch-all subscriptions. Together
// they cover every action except hydration.
func (b *sliceBinding[S]) listeners() []store.Listener {
	name := b.reducer.name
	prefix := name + "/"
	own := HydrationType(name)
	tracker := b.reducer.pc.tracker

	effect := func(store.Action, store.ListenerAPI) {
		if tracker.ShouldPersist(name) {
			b.queue.Schedule()
		}
	}
	return []store.Listener{
		{
			Matcher: func(a store.Action) bool {
				return strings.HasPrefix(a.Type, prefix) && a.Type != own
			},
			Effect: effect,
		},
		{
			Matcher: func(a store.Action) bool {
				return !strings.HasPrefix(a.Type, prefix) && !IsHydrationAction(a.Type)
			},
			Effect: effect,
		},
	}
}

// write persists the latest committed state if it is newer than the last
// confirmed save.
func (b *sliceBinding[S]) write(ctx context.Context) {
	r := b.reducer
	tracker := r.pc.tracker

	var (
		version uint64
		value   S
		ok      bool
	)
	b.owner.Read(func(state store.State) {
		version = tracker.LocalVersion(r.name)
		value, ok = state[r.name].(S)
	})
	if !ok || version <= tracker.StoredVersion(r.name) {
		return
	}

	key := storage.Key(r.name)
	start := time.Now()
	payload, err := r.encode(value)
	if err != nil {
		err = &storage.Error{Op: storage.OpWrite, Slice: r.name, Key: key, Err: err}
	} else {
		var gw *storage.Gateway
		gw, err = r.pc.gateway()
		if err != nil {
			err = &storage.Error{Op: storage.OpWrite, Slice: r.name, Key: key, Err: err}
		} else {
			err = gw.Set(ctx, r.name, string(payload))
		}
	}

	r.pc.log(LogEvent{
		Op:       OpPersist,
		Slice:    r.name,
		Key:      key,
		Version:  version,
		Bytes:    len(payload),
		Duration: time.Since(start),
		Err:      err,
	})

	input := activity.SliceEventInput{
		Slice:   r.name,
		Key:     key,
		StoreID: b.owner.id.String(),
		Version: version,
		Bytes:   len(payload),
		Err:     err,
	}
	if err != nil {
		r.pc.emit(ctx, activity.BuildSlicePersistFailedEvent(input))
		return
	}
	tracker.MarkPersistedAt(r.name, version)
	r.pc.emit(ctx, activity.BuildSlicePersistedEvent(input))
}

// hydrate restores the stored record, if any, then lets writes through.
func (b *sliceBinding[S]) hydrate(ctx context.Context) {
	r := b.reducer
	defer b.queue.Resume()

	key := storage.Key(r.name)
	start := time.Now()
	event := LogEvent{Op: OpHydrate, Slice: r.name, Key: key}

	var payload any
	gw, err := r.pc.gateway()
	if err != nil {
		event.Err = &storage.Error{Op: storage.OpRead, Slice: r.name, Key: key, Err: err}
	} else {
		raw, found, err := gw.Get(ctx, r.name)
		switch {
		case err != nil:
			event.Err = err
		case found:
			value, err := r.decode(raw)
			if err != nil {
				event.Err = err
				break
			}
			payload = value
			event.Found = true
			event.Bytes = len(raw)
		}
	}

	if err := b.owner.Dispatch(store.Action{Type: r.HydrationType(), Payload: payload}); err != nil && event.Err == nil {
		event.Err = err
	}
	event.Duration = time.Since(start)
	r.pc.log(event)
	r.pc.emit(ctx, activity.BuildSliceHydratedEvent(activity.SliceEventInput{
		Slice:   r.name,
		Key:     key,
		StoreID: b.owner.id.String(),
		Found:   event.Found,
		Bytes:   event.Bytes,
		Err:     event.Err,
	}))
}

func (b *sliceBinding[S]) flush(ctx context.Context) error {
	return b.queue.Wait(ctx)
}
