package persist

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-persist/pkg/store"
)

const engineExpr = "expr"

// ExprMatcher compiles a boolean expr-lang expression into an action
// matcher, e.g. `actionNamespace == "todos" && payload.done`. Registered functions
// are callable by name. Evaluation errors and non-bool results count as no
// match.
func ExprMatcher(expression string, opts ...MatcherOption) (store.ActionMatcher, error) {
	if expression == "" {
		return nil, emptyExpression(engineExpr)
	}
	cfg := applyMatcherOptions(opts)
	program, err := compileExpr(cfg, expression)
	if err != nil {
		return nil, err
	}
	return func(a store.Action) bool {
		out, err := exprlang.Run(program, actionEnv(a))
		if err != nil {
			return false
		}
		matched, _ := out.(bool)
		return matched
	}, nil
}

func compileExpr(cfg matcherConfig, expression string) (*exprvm.Program, error) {
	if cached, ok := cfg.cached(engineExpr, expression); ok {
		if program, ok := cached.(*exprvm.Program); ok {
			return program, nil
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range cfg.registry.Names() {
		options = append(options, exprlang.Function(name, registryFunction(cfg.registry, name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapMatcherError(engineExpr, expression, err)
	}
	cfg.remember(engineExpr, expression, program)
	return program, nil
}

func registryFunction(registry *FunctionRegistry, name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return registry.Call(name, arguments...)
	}
}
