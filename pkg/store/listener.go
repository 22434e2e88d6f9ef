package store

import (
	"sort"
	"sync"
)

// ListenerAPI is handed to listener effects.
type ListenerAPI struct {
	GetState func() State
	Dispatch DispatchFunc
}

// Listener reacts to dispatched actions after they have been reduced. Type,
// Matcher and Predicate are combined with AND; an empty listener matches
// every action.
type Listener struct {
	Type      string
	Matcher   ActionMatcher
	Predicate func(action Action, current, previous State) bool
	Effect    func(action Action, api ListenerAPI)
}

func (l Listener) matches(action Action, current, previous State) bool {
	if l.Type != "" && l.Type != action.Type {
		return false
	}
	if l.Matcher != nil && !l.Matcher(action) {
		return false
	}
	if l.Predicate != nil && !l.Predicate(action, current, previous) {
		return false
	}
	return true
}

// ListenerMiddleware runs registered effects after each dispatch.
type ListenerMiddleware struct {
	mu        sync.RWMutex
	seq       uint64
	listeners map[uint64]Listener
}

// NewListenerMiddleware constructs an empty listener middleware.
func NewListenerMiddleware() *ListenerMiddleware {
	return &ListenerMiddleware{listeners: make(map[uint64]Listener)}
}

// StartListening registers l and returns a function that removes it.
func (m *ListenerMiddleware) StartListening(l Listener) func() {
	if l.Effect == nil {
		return func() {}
	}
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Len reports the number of active listeners.
func (m *ListenerMiddleware) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listeners)
}

// Middleware returns the dispatch middleware to install on a store.
func (m *ListenerMiddleware) Middleware() Middleware {
	return func(api API) func(next DispatchFunc) DispatchFunc {
		listenerAPI := ListenerAPI{GetState: api.GetState, Dispatch: api.Dispatch}
		return func(next DispatchFunc) DispatchFunc {
			return func(action Action) error {
				previous := api.GetState()
				if err := next(action); err != nil {
					return err
				}
				current := api.GetState()
				for _, l := range m.snapshot() {
					if l.matches(action, current, previous) {
						l.Effect(action, listenerAPI)
					}
				}
				return nil
			}
		}
	}
}

func (m *ListenerMiddleware) snapshot() []Listener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uint64, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.listeners[id])
	}
	return out
}
