package store

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-persist/layering"
)

// SliceReducer computes the next state of one slice. A nil state means the
// slice has not been initialized yet.
type SliceReducer interface {
	Reduce(state any, action Action) (any, error)
}

// SliceReducerFunc adapts a function to SliceReducer.
type SliceReducerFunc func(state any, action Action) (any, error)

// Reduce implements SliceReducer.
func (fn SliceReducerFunc) Reduce(state any, action Action) (any, error) {
	return fn(state, action)
}

// Reducer is a typed SliceReducer assembled from a Builder.
type Reducer[S any] struct {
	initial  func() S
	cases    map[string]CaseReducer[S]
	matchers []matcherCase[S]
	fallback CaseReducer[S]
}

// CreateReducer builds a reducer whose state starts at initial(). For each
// action the exact-type case runs first, then every matching matcher in
// registration order; the default case runs only when nothing else matched.
func CreateReducer[S any](initial func() S, build func(Builder[S])) (*Reducer[S], error) {
	if initial == nil {
		initial = func() S {
			var zero S
			return zero
		}
	}
	b := newReducerBuilder[S]()
	if build != nil {
		build(b)
	}
	if err := b.err(); err != nil {
		return nil, err
	}
	return &Reducer[S]{
		initial:  initial,
		cases:    b.cases,
		matchers: b.matchers,
		fallback: b.fallback,
	}, nil
}

// InitialState returns a fresh initial state.
func (r *Reducer[S]) InitialState() S {
	return r.initial()
}

// Reduce implements SliceReducer.
func (r *Reducer[S]) Reduce(state any, action Action) (any, error) {
	current, err := r.coerce(state)
	if err != nil {
		return nil, err
	}
	return r.ReduceTyped(current, action), nil
}

// ReduceTyped applies the reducer to a typed state.
func (r *Reducer[S]) ReduceTyped(current S, action Action) S {
	handlers := r.handlersFor(action)
	if len(handlers) == 0 {
		return current
	}

	draft := layering.Clone(current)
	for _, handler := range handlers {
		result := handler(&draft, action)
		if result.Replaced() {
			draft = result.Value()
		}
	}
	return draft
}

func (r *Reducer[S]) handlersFor(action Action) []CaseReducer[S] {
	var handlers []CaseReducer[S]
	if handler, ok := r.cases[action.Type]; ok {
		handlers = append(handlers, handler)
	}
	for _, m := range r.matchers {
		if m.match(action) {
			handlers = append(handlers, m.reducer)
		}
	}
	if len(handlers) == 0 && r.fallback != nil {
		handlers = append(handlers, r.fallback)
	}
	return handlers
}

func (r *Reducer[S]) coerce(state any) (S, error) {
	if state == nil {
		return r.initial(), nil
	}
	typed, ok := state.(S)
	if !ok {
		var zero S
		return zero, fmt.Errorf("store: slice state has type %T, want %s", state, reflect.TypeOf((*S)(nil)).Elem())
	}
	return typed, nil
}
