package persist

import (
	"fmt"
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/goliatone/go-persist/pkg/store"
)

const engineCEL = "cel"

// CELMatcher compiles a boolean CEL expression into an action matcher, e.g.
// `action.type.startsWith("todos/")`. Registered functions are reachable
// through call(name) and call(name, [args]). Evaluation errors count as no
// match.
func CELMatcher(expression string, opts ...MatcherOption) (store.ActionMatcher, error) {
	if expression == "" {
		return nil, emptyExpression(engineCEL)
	}
	cfg := applyMatcherOptions(opts)
	program, err := compileCEL(cfg, expression)
	if err != nil {
		return nil, err
	}
	return func(a store.Action) bool {
		out, _, err := program.Eval(actionEnv(a))
		if err != nil {
			return false
		}
		matched, _ := out.Value().(bool)
		return matched
	}, nil
}

func compileCEL(cfg matcherConfig, expression string) (celgo.Program, error) {
	if cached, ok := cfg.cached(engineCEL, expression); ok {
		if program, ok := cached.(celgo.Program); ok {
			return program, nil
		}
	}

	env, err := celEnv(cfg.registry)
	if err != nil {
		return nil, wrapMatcherError(engineCEL, expression, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapMatcherError(engineCEL, expression, issues.Err())
	}
	switch out := ast.OutputType().String(); out {
	case "bool", "dyn":
	default:
		return nil, wrapMatcherError(engineCEL, expression, fmt.Errorf("expression yields %s, want bool", out))
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapMatcherError(engineCEL, expression, err)
	}
	cfg.remember(engineCEL, expression, program)
	return program, nil
}

func celEnv(registry *FunctionRegistry) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("action", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("actionType", celgo.StringType),
		celgo.Variable("actionNamespace", celgo.StringType),
		celgo.Variable("payload", celgo.DynType),
		celgo.Variable("meta", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return celCall(registry, name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, args ref.Val) ref.Val {
					return celCall(registry, name, args)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

var anySliceType = reflect.TypeOf([]any{})

func celCall(registry *FunctionRegistry, name, args ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("persist: call name must be a string")
	}
	var arguments []any
	if args != nil {
		native, err := args.ConvertToNative(anySliceType)
		if err != nil {
			return types.NewErr("persist: call arguments: %v", err)
		}
		arguments, _ = native.([]any)
	}
	result, err := registry.Call(fn, arguments...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
