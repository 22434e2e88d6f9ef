package store

import (
	"strings"

	"github.com/goliatone/go-persist/layering"
)

// Store-internal action types are prefixed with this namespace.
const internalPrefix = "@@store/"

// ActionInit is dispatched once by New before any middleware is attached.
const ActionInit = internalPrefix + "INIT"

// Action is a named event carrying an optional payload.
type Action struct {
	Type    string
	Payload any
	Meta    map[string]any
}

// Namespace returns the portion of the type before the first "/".
func (a Action) Namespace() string {
	if idx := strings.Index(a.Type, "/"); idx >= 0 {
		return a.Type[:idx]
	}
	return ""
}

// IsInternal reports whether the action was emitted by the store itself.
func IsInternal(action Action) bool {
	return strings.HasPrefix(action.Type, internalPrefix)
}

// ActionMatcher reports whether a reducer or listener applies to an action.
type ActionMatcher func(Action) bool

// MatchType matches actions with exactly the given type.
func MatchType(actionType string) ActionMatcher {
	return func(a Action) bool {
		return a.Type == actionType
	}
}

// MatchPrefix matches actions whose type starts with prefix.
func MatchPrefix(prefix string) ActionMatcher {
	return func(a Action) bool {
		return strings.HasPrefix(a.Type, prefix)
	}
}

// MatchAny matches when at least one matcher does.
func MatchAny(matchers ...ActionMatcher) ActionMatcher {
	return func(a Action) bool {
		for _, m := range matchers {
			if m != nil && m(a) {
				return true
			}
		}
		return false
	}
}

// Not inverts matcher.
func Not(matcher ActionMatcher) ActionMatcher {
	return func(a Action) bool {
		return matcher == nil || !matcher(a)
	}
}

// InitialValue returns a producer that hands out independent copies of value.
func InitialValue[S any](value S) func() S {
	return func() S {
		return layering.Clone(value)
	}
}
