package persist

import "github.com/puzpuzpuz/xsync/v3"

// ProgramCache stores compiled matcher programs keyed by engine, function
// registry scope and expression. One cache may be shared by every matcher
// engine and every registry.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type programCache struct {
	programs *xsync.MapOf[string, any]
}

// NewProgramCache returns an unbounded concurrent ProgramCache.
func NewProgramCache() ProgramCache {
	return &programCache{programs: xsync.NewMapOf[string, any]()}
}

func (c *programCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *programCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

func cacheKey(engine, scope, expression string) string {
	return engine + ":" + scope + ":" + expression
}
