//go:build js_eval

package persist

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/goliatone/go-persist/pkg/store"
)

const engineJS = "js"

// JSMatcher compiles a JavaScript expression into an action matcher. The
// result is coerced with JavaScript truthiness; thrown errors count as no
// match. Each evaluation runs in a fresh runtime.
func JSMatcher(expression string, opts ...MatcherOption) (store.ActionMatcher, error) {
	if expression == "" {
		return nil, emptyExpression(engineJS)
	}
	cfg := applyMatcherOptions(opts)
	program, err := compileJS(cfg, expression)
	if err != nil {
		return nil, err
	}
	return func(a store.Action) bool {
		vm := goja.New()
		injectAction(vm, cfg.registry, a)
		value, err := vm.RunProgram(program)
		if err != nil {
			return false
		}
		return value.ToBoolean()
	}, nil
}

func compileJS(cfg matcherConfig, expression string) (*goja.Program, error) {
	if cached, ok := cfg.cached(engineJS, expression); ok {
		if program, ok := cached.(*goja.Program); ok {
			return program, nil
		}
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, wrapMatcherError(engineJS, expression, err)
	}
	cfg.remember(engineJS, expression, program)
	return program, nil
}

func injectAction(vm *goja.Runtime, registry *FunctionRegistry, a store.Action) {
	for key, value := range actionEnv(a) {
		_ = vm.Set(key, value)
	}
	if registry == nil {
		return
	}
	_ = vm.Set("call", func(name string, arguments ...any) (any, error) {
		return registry.Call(name, arguments...)
	})
	for _, name := range registry.Names() {
		_ = vm.Set(name, registryFunction(registry, name))
	}
}

func jsMatcherAvailable() bool {
	return true
}
