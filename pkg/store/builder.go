package store

import (
	"errors"
	"fmt"
)

// ErrInvalidBuilder reports misuse of the reducer builder.
var ErrInvalidBuilder = errors.New("store: invalid reducer builder usage")

// Builder registers case reducers for a slice. Exact-type cases must be added
// before matchers, and both before the default case.
type Builder[S any] interface {
	AddCase(actionType string, reducer CaseReducer[S]) Builder[S]
	AddMatcher(matcher ActionMatcher, reducer CaseReducer[S]) Builder[S]
	AddDefaultCase(reducer CaseReducer[S]) Builder[S]
}

type matcherCase[S any] struct {
	match   ActionMatcher
	reducer CaseReducer[S]
}

type reducerBuilder[S any] struct {
	cases    map[string]CaseReducer[S]
	matchers []matcherCase[S]
	fallback CaseReducer[S]
	errs     []error
}

func newReducerBuilder[S any]() *reducerBuilder[S] {
	return &reducerBuilder[S]{cases: make(map[string]CaseReducer[S])}
}

func (b *reducerBuilder[S]) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidBuilder}, args...)...))
}

func (b *reducerBuilder[S]) AddCase(actionType string, reducer CaseReducer[S]) Builder[S] {
	switch {
	case actionType == "":
		b.fail("AddCase requires an action type")
	case reducer == nil:
		b.fail("AddCase %q requires a reducer", actionType)
	case len(b.matchers) > 0:
		b.fail("AddCase %q must be called before AddMatcher", actionType)
	case b.fallback != nil:
		b.fail("AddCase %q must be called before AddDefaultCase", actionType)
	default:
		if _, exists := b.cases[actionType]; exists {
			b.fail("AddCase %q registered twice", actionType)
			return b
		}
		b.cases[actionType] = reducer
	}
	return b
}

func (b *reducerBuilder[S]) AddMatcher(matcher ActionMatcher, reducer CaseReducer[S]) Builder[S] {
	switch {
	case matcher == nil || reducer == nil:
		b.fail("AddMatcher requires a matcher and a reducer")
	case b.fallback != nil:
		b.fail("AddMatcher must be called before AddDefaultCase")
	default:
		b.matchers = append(b.matchers, matcherCase[S]{match: matcher, reducer: reducer})
	}
	return b
}

func (b *reducerBuilder[S]) AddDefaultCase(reducer CaseReducer[S]) Builder[S] {
	switch {
	case reducer == nil:
		b.fail("AddDefaultCase requires a reducer")
	case b.fallback != nil:
		b.fail("AddDefaultCase may only be called once")
	default:
		b.fallback = reducer
	}
	return b
}

func (b *reducerBuilder[S]) err() error {
	return errors.Join(b.errs...)
}
