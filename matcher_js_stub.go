//go:build !js_eval

package persist

import "github.com/goliatone/go-persist/pkg/store"

// JSMatcher is unavailable without the js_eval build tag.
func JSMatcher(expression string, opts ...MatcherOption) (store.ActionMatcher, error) {
	_ = applyMatcherOptions(opts)
	return nil, wrapMatcherError("js", expression, ErrMatcherUnavailable)
}

func jsMatcherAvailable() bool {
	return false
}
