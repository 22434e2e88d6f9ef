package persist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-persist/pkg/store"
)

// SliceOptions describes a persisted slice. Reducers are keyed by the short
// action name; the dispatched type is "<Name>/<key>".
type SliceOptions[S any] struct {
	Name          string
	InitialState  func() S
	Reducers      map[string]store.CaseReducer[S]
	ExtraReducers func(store.Builder[S])
}

// PersistedSlice is a persisted reducer with generated action types.
type PersistedSlice[S any] struct {
	*PersistedReducer[S]
	keys []string
}

// NewPersistedSlice builds a persisted reducer from a case reducer table.
func NewPersistedSlice[S any](opts SliceOptions[S], ropts ...ReducerOption) (*PersistedSlice[S], error) {
	keys := make([]string, 0, len(opts.Reducers))
	for key, reducer := range opts.Reducers {
		if key == "" || strings.Contains(key, "/") {
			return nil, configurationError("register", opts.Name,
				fmt.Errorf("%w: reducer key %q must be non-empty and must not contain '/'", ErrInvalidRegistration, key))
		}
		if reducer == nil {
			return nil, configurationError("register", opts.Name,
				fmt.Errorf("%w: reducer %q is nil", ErrInvalidRegistration, key))
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	reducer, err := NewPersistedReducer(opts.Name, opts.InitialState, func(b store.Builder[S]) {
		for _, key := range keys {
			b.AddCase(opts.Name+"/"+key, opts.Reducers[key])
		}
		if opts.ExtraReducers != nil {
			opts.ExtraReducers(b)
		}
	}, ropts...)
	if err != nil {
		return nil, err
	}
	return &PersistedSlice[S]{PersistedReducer: reducer, keys: keys}, nil
}

// ActionType returns the full action type for the case reducer key.
func (s *PersistedSlice[S]) ActionType(key string) string {
	return s.name + "/" + key
}

// Action builds an action for the case reducer key.
func (s *PersistedSlice[S]) Action(key string, payload any) store.Action {
	return store.Action{Type: s.ActionType(key), Payload: payload}
}

// Actions returns the full action types of the case reducer table, sorted.
func (s *PersistedSlice[S]) Actions() []string {
	out := make([]string, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.ActionType(key))
	}
	return out
}
