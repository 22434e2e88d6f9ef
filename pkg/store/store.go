package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrEmptyActionType is returned when dispatching an action without a type.
var ErrEmptyActionType = errors.New("store: action type must not be empty")

// State maps slice names to their current values. Values are treated as
// immutable once committed.
type State map[string]any

// DispatchFunc sends an action through the store.
type DispatchFunc func(Action) error

// API is the view of the store handed to middleware.
type API struct {
	GetState func() State
	Dispatch DispatchFunc
}

// Middleware wraps the dispatch chain.
type Middleware func(api API) func(next DispatchFunc) DispatchFunc

// Options configures New.
type Options struct {
	Reducers       map[string]SliceReducer
	Middleware     []Middleware
	PreloadedState State
}

// Store holds the combined state of every registered slice.
type Store struct {
	mu       sync.RWMutex
	reducers map[string]SliceReducer
	keys     []string
	state    State

	subMu    sync.Mutex
	subSeq   uint64
	subs     map[uint64]func()
	dispatch DispatchFunc
}

// New builds a store, reduces ActionInit so every slice holds its initial
// (or preloaded) value and then wires the middleware chain.
func New(opts Options) (*Store, error) {
	if len(opts.Reducers) == 0 {
		return nil, errors.New("store: at least one reducer is required")
	}

	s := &Store{
		reducers: make(map[string]SliceReducer, len(opts.Reducers)),
		state:    make(State, len(opts.Reducers)),
		subs:     make(map[uint64]func()),
	}
	for key, reducer := range opts.Reducers {
		if key == "" || reducer == nil {
			return nil, fmt.Errorf("store: invalid reducer registration %q", key)
		}
		s.reducers[key] = reducer
		s.keys = append(s.keys, key)
	}
	sort.Strings(s.keys)
	for key, value := range opts.PreloadedState {
		if _, ok := s.reducers[key]; ok {
			s.state[key] = value
		}
	}

	if err := s.reduce(Action{Type: ActionInit}); err != nil {
		return nil, err
	}

	api := API{
		GetState: s.GetState,
		Dispatch: func(a Action) error { return s.dispatch(a) },
	}
	dispatch := DispatchFunc(s.baseDispatch)
	for i := len(opts.Middleware) - 1; i >= 0; i-- {
		if mw := opts.Middleware[i]; mw != nil {
			dispatch = mw(api)(dispatch)
		}
	}
	s.dispatch = dispatch
	return s, nil
}

// Dispatch runs action through the middleware chain and every reducer.
func (s *Store) Dispatch(action Action) error {
	return s.dispatch(action)
}

// GetState returns a shallow copy of the current state.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(State, len(s.state))
	for key, value := range s.state {
		out[key] = value
	}
	return out
}

// Read calls fn with the committed state while holding the read lock, so
// values read inside fn are consistent with any bookkeeping reducers perform
// under the write lock. fn must not dispatch or retain the map.
func (s *Store) Read(fn func(State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Keys returns the registered slice names in sorted order.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Reducer returns the reducer registered under key.
func (s *Store) Reducer(key string) (SliceReducer, bool) {
	r, ok := s.reducers[key]
	return r, ok
}

// Subscribe registers fn to run after every dispatched action. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) baseDispatch(action Action) error {
	if action.Type == "" {
		return ErrEmptyActionType
	}
	if err := s.reduce(action); err != nil {
		return err
	}
	s.notify()
	return nil
}

// reduce commits the next state only when every reducer succeeds.
func (s *Store) reduce(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(State, len(s.keys))
	for _, key := range s.keys {
		value, err := s.reducers[key].Reduce(s.state[key], action)
		if err != nil {
			return fmt.Errorf("store: reduce %q for slice %q: %w", action.Type, key, err)
		}
		next[key] = value
	}
	s.state = next
	return nil
}

func (s *Store) notify() {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]func(), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
