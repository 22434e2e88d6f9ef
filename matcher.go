package persist

import (
	"fmt"

	"github.com/goliatone/go-persist/pkg/store"
)

// MatcherOption configures expression matchers.
type MatcherOption func(*matcherConfig)

type matcherConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// MatcherWithProgramCache reuses compiled programs across matchers.
func MatcherWithProgramCache(cache ProgramCache) MatcherOption {
	return func(cfg *matcherConfig) {
		cfg.cache = cache
	}
}

// MatcherWithFunctionRegistry exposes the registry's functions to
// expressions.
func MatcherWithFunctionRegistry(registry *FunctionRegistry) MatcherOption {
	return func(cfg *matcherConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyMatcherOptions(opts []MatcherOption) matcherConfig {
	cfg := matcherConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg matcherConfig) cached(engine, expression string) (any, bool) {
	if cfg.cache == nil {
		return nil, false
	}
	return cfg.cache.Get(cacheKey(engine, cfg.registry.cacheScope(), expression))
}

func (cfg matcherConfig) remember(engine, expression string, program any) {
	if cfg.cache != nil {
		cfg.cache.Set(cacheKey(engine, cfg.registry.cacheScope(), expression), program)
	}
}

// actionEnv is the variable set every expression engine sees:
//
//	actionType       the full action type
//	actionNamespace  the part of the type before the first "/"
//	payload          the action payload
//	meta             the action metadata
//	action           a map holding all of the above
//
// CEL reserves namespace as an identifier. Inside action the key stays
// "namespace".
func actionEnv(a store.Action) map[string]any {
	meta := a.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	view := map[string]any{
		"type":      a.Type,
		"namespace": a.Namespace(),
		"payload":   a.Payload,
		"meta":      meta,
	}
	return map[string]any{
		"action":          view,
		"actionType":      a.Type,
		"actionNamespace": a.Namespace(),
		"payload":         a.Payload,
		"meta":            meta,
	}
}

func emptyExpression(engine string) error {
	return wrapMatcherError(engine, "", fmt.Errorf("expression must not be empty"))
}
