package persist

import (
	"strings"

	"github.com/goliatone/go-persist/pkg/store"
)

const hydrationSuffix = "/@@INIT-PERSIST"

// HydrationType returns the action type used to restore slice name.
func HydrationType(name string) string {
	return name + hydrationSuffix
}

// IsHydrationAction reports whether actionType restores any slice.
func IsHydrationAction(actionType string) bool {
	return strings.HasSuffix(actionType, hydrationSuffix)
}

// trackingBuilder marks the slice mutated after every case reducer it wraps
// runs. Whether the reducer actually changed anything is not inspected.
type trackingBuilder[S any] struct {
	name    string
	tracker *Tracker
	inner   store.Builder[S]
}

func decorate[S any](name string, tracker *Tracker, inner store.Builder[S]) store.Builder[S] {
	return &trackingBuilder[S]{name: name, tracker: tracker, inner: inner}
}

func (b *trackingBuilder[S]) wrap(reducer store.CaseReducer[S]) store.CaseReducer[S] {
	if reducer == nil {
		return nil
	}
	return func(draft *S, action store.Action) store.Result[S] {
		result := reducer(draft, action)
		if !IsHydrationAction(action.Type) && !store.IsInternal(action) {
			b.tracker.MarkMutated(b.name)
		}
		return result
	}
}

func (b *trackingBuilder[S]) AddCase(actionType string, reducer store.CaseReducer[S]) store.Builder[S] {
	b.inner.AddCase(actionType, b.wrap(reducer))
	return b
}

func (b *trackingBuilder[S]) AddMatcher(matcher store.ActionMatcher, reducer store.CaseReducer[S]) store.Builder[S] {
	b.inner.AddMatcher(matcher, b.wrap(reducer))
	return b
}

func (b *trackingBuilder[S]) AddDefaultCase(reducer store.CaseReducer[S]) store.Builder[S] {
	b.inner.AddDefaultCase(b.wrap(reducer))
	return b
}
