package persist

import (
	"github.com/gobwas/glob"

	"github.com/goliatone/go-persist/pkg/store"
)

// GlobMatcher matches action types against pattern. '/' separates segments,
// so "todos/*" matches "todos/add" but not "todos/list/clear"; use "**" to
// cross segments.
func GlobMatcher(pattern string) (store.ActionMatcher, error) {
	if pattern == "" {
		return nil, emptyExpression("glob")
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, wrapMatcherError("glob", pattern, err)
	}
	return func(a store.Action) bool {
		return g.Match(a.Type)
	}, nil
}
