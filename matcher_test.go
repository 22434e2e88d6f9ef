package persist

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-persist/pkg/store"
)

func adminRegistry(t *testing.T) *FunctionRegistry {
	t.Helper()
	registry := NewFunctionRegistry()
	err := registry.Register("admin", StringPredicate(func(role string) bool {
		return role == "admin"
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return registry
}

var matcherEngines = []struct {
	name string
	new  func(expression string, opts ...MatcherOption) (store.ActionMatcher, error)
}{
	{name: "expr", new: ExprMatcher},
	{name: "cel", new: CELMatcher},
}

func TestMatchersEvaluateActionEnvironment(t *testing.T) {
	done := store.Action{Type: "todos/toggle", Payload: map[string]any{"done": true}}
	open := store.Action{Type: "todos/toggle", Payload: map[string]any{"done": false}}
	other := store.Action{Type: "users/add", Payload: map[string]any{"done": true}}

	for _, engine := range matcherEngines {
		t.Run(engine.name, func(t *testing.T) {
			match, err := engine.new(`actionNamespace == "todos" && payload.done == true`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if !match(done) {
				t.Fatalf("expected done todo to match")
			}
			if match(open) || match(other) {
				t.Fatalf("unexpected match")
			}

			viaAction, err := engine.new(`action.type == "users/add" && actionType == action.type && action["namespace"] == actionNamespace`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if !viaAction(other) || viaAction(done) {
				t.Fatalf("action map mismatch")
			}
		})
	}
}

func TestMatchersCompileErrors(t *testing.T) {
	for _, engine := range matcherEngines {
		t.Run(engine.name, func(t *testing.T) {
			_, err := engine.new(`actionNamespace ==`)
			var matchErr *MatcherError
			if !errors.As(err, &matchErr) {
				t.Fatalf("expected MatcherError, got %v", err)
			}
			if matchErr.Engine != engine.name || matchErr.Expr != "actionNamespace ==" {
				t.Fatalf("unexpected matcher error metadata %+v", matchErr)
			}

			if _, err := engine.new(""); !errors.As(err, &matchErr) {
				t.Fatalf("expected empty expression to fail, got %v", err)
			}
		})
	}
}

func TestMatchersRuntimeErrorsDoNotMatch(t *testing.T) {
	for _, engine := range matcherEngines {
		t.Run(engine.name, func(t *testing.T) {
			match, err := engine.new(`meta.missing.deeper == "x"`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if match(store.Action{Type: "todos/add"}) {
				t.Fatalf("runtime failure should count as no match")
			}
		})
	}
}

func TestExprMatcherCallsRegisteredFunctions(t *testing.T) {
	match, err := ExprMatcher(`admin(meta.role)`, MatcherWithFunctionRegistry(adminRegistry(t)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !match(store.Action{Type: "users/remove", Meta: map[string]any{"role": "admin"}}) {
		t.Fatalf("expected admin to match")
	}
	if match(store.Action{Type: "users/remove", Meta: map[string]any{"role": "guest"}}) {
		t.Fatalf("expected guest not to match")
	}
}

func TestCELMatcherCallsRegisteredFunctions(t *testing.T) {
	match, err := CELMatcher(`call("admin", [meta.role]) == true`, MatcherWithFunctionRegistry(adminRegistry(t)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !match(store.Action{Type: "users/remove", Meta: map[string]any{"role": "admin"}}) {
		t.Fatalf("expected admin to match")
	}
	if match(store.Action{Type: "users/remove", Meta: map[string]any{"role": "guest"}}) {
		t.Fatalf("expected guest not to match")
	}
}

func TestCELMatcherRejectsNonBoolean(t *testing.T) {
	_, err := CELMatcher(`actionType + "!"`)
	if err == nil || !strings.Contains(err.Error(), "want bool") {
		t.Fatalf("expected non-bool expression to be rejected, got %v", err)
	}
}

func TestMatchersShareProgramCache(t *testing.T) {
	cache := NewProgramCache()
	const expression = `actionNamespace == "todos"`

	if _, err := ExprMatcher(expression, MatcherWithProgramCache(cache)); err != nil {
		t.Fatalf("expr: %v", err)
	}
	if _, err := CELMatcher(expression, MatcherWithProgramCache(cache)); err != nil {
		t.Fatalf("cel: %v", err)
	}
	for _, engine := range []string{"expr", "cel"} {
		if _, ok := cache.Get(cacheKey(engine, "0", expression)); !ok {
			t.Fatalf("expected %s program to be cached", engine)
		}
	}

	match, err := ExprMatcher(expression, MatcherWithProgramCache(cache))
	if err != nil || !match(store.Action{Type: "todos/add"}) {
		t.Fatalf("cached program should still match, err=%v", err)
	}
}

func TestProgramCacheSeparatesFunctionSets(t *testing.T) {
	cache := NewProgramCache()
	const expression = `check(meta.role)`

	admins := NewFunctionRegistry().MustRegister("check", StringPredicate(func(role string) bool { return role == "admin" }))
	guests := NewFunctionRegistry().MustRegister("check", StringPredicate(func(role string) bool { return role == "guest" }))

	adminMatch, err := ExprMatcher(expression, MatcherWithProgramCache(cache), MatcherWithFunctionRegistry(admins))
	if err != nil {
		t.Fatalf("compile admins: %v", err)
	}
	guestMatch, err := ExprMatcher(expression, MatcherWithProgramCache(cache), MatcherWithFunctionRegistry(guests))
	if err != nil {
		t.Fatalf("compile guests: %v", err)
	}

	guest := store.Action{Type: "users/remove", Meta: map[string]any{"role": "guest"}}
	if adminMatch(guest) {
		t.Fatalf("admin matcher should not accept guests")
	}
	if !guestMatch(guest) {
		t.Fatalf("guest matcher reused a program bound to another registry")
	}

	again, err := ExprMatcher(expression, MatcherWithProgramCache(cache), MatcherWithFunctionRegistry(admins))
	if err != nil || again(guest) {
		t.Fatalf("cloned registry should reuse the admin program, err=%v", err)
	}
}

func TestStringPredicate(t *testing.T) {
	fn := StringPredicate(func(s string) bool { return s == "ok" })
	if out, err := fn("ok"); err != nil || out != true {
		t.Fatalf("expected true, got %v %v", out, err)
	}
	if out, err := fn(42); err != nil || out != false {
		t.Fatalf("non-string should report false, got %v %v", out, err)
	}
	if _, err := fn(); err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestGlobMatcher(t *testing.T) {
	single, err := GlobMatcher("todos/*")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	deep, err := GlobMatcher("todos/**")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	cases := []struct {
		action       string
		single, deep bool
	}{
		{action: "todos/add", single: true, deep: true},
		{action: "todos/list/clear", single: false, deep: true},
		{action: "users/add", single: false, deep: false},
	}
	for _, tc := range cases {
		a := store.Action{Type: tc.action}
		if single(a) != tc.single || deep(a) != tc.deep {
			t.Fatalf("%s: expected single=%v deep=%v", tc.action, tc.single, tc.deep)
		}
	}

	if _, err := GlobMatcher("todos/[a"); err == nil {
		t.Fatalf("expected invalid pattern to fail")
	}
}

func TestMatcherDrivesPersistedReducer(t *testing.T) {
	removals, err := GlobMatcher("*/remove")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pc := NewContext()
	audit, err := NewPersistedReducer("audit", store.InitialValue(0), func(b store.Builder[int]) {
		b.AddMatcher(removals, func(draft *int, _ store.Action) store.Result[int] {
			*draft++
			return store.Mutated[int]()
		})
	}, WithContext(pc))
	if err != nil {
		t.Fatalf("new persisted reducer: %v", err)
	}

	state, err := audit.Reduce(nil, store.Action{Type: "users/remove"})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if state.(int) != 1 || !pc.Tracker().ShouldPersist("audit") {
		t.Fatalf("expected matcher case to run and mark audit dirty, got %v", state)
	}
}

func TestFunctionRegistryGuardsDuplicates(t *testing.T) {
	registry := adminRegistry(t)
	if err := registry.Register("ADMIN", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected case-insensitive duplicate to be rejected")
	}
	clone := registry.Clone()
	clone.MustRegister("extra", func(...any) (any, error) { return 1, nil })
	if len(registry.Names()) != 1 || len(clone.Names()) != 2 {
		t.Fatalf("clone should not share registrations")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unknown function to fail")
	}
}
