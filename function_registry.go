package persist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Function is a helper callable from matcher expressions.
type Function func(args ...any) (any, error)

// StringPredicate adapts a check on one string argument, typically an action
// field such as meta.role, into a Function. Non-string arguments report false.
func StringPredicate(check func(string) bool) Function {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("persist: expected 1 argument, got %d", len(args))
		}
		value, ok := args[0].(string)
		return ok && check(value), nil
	}
}

var registryScopes atomic.Uint64

// FunctionRegistry holds the functions matchers expose to expressions,
// keyed by lower-cased name.
//
// Each registration moves the registry to a new scope. Compiled programs are
// cached per scope, so matchers built against different function sets never
// share a program.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
	scope     uint64
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds fn under name. Names are case-insensitive and may be
// registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if name == "" {
		return fmt.Errorf("persist: function name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("persist: function %q is nil", name)
	}
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, taken := r.functions[key]; taken {
		return fmt.Errorf("persist: function %q already registered", name)
	}
	r.functions[key] = fn
	r.scope = registryScopes.Add(1)
	return nil
}

// MustRegister is Register for package-level setup; it panics on error.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Clone snapshots the registry. The snapshot shares the source's cache scope
// until either side registers something new.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
		scope:     r.scope,
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("persist: no functions registered")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("persist: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// cacheScope identifies the function set programs are compiled against. A
// nil or never-populated registry shares scope "0" with no registry at all.
func (r *FunctionRegistry) cacheScope() string {
	if r == nil {
		return "0"
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return strconv.FormatUint(r.scope, 10)
}
