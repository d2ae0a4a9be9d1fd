package props

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Function is a custom callable exposed to rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry maps lower-cased names to rule functions. It is safe for
// concurrent use; evaluators hold their own clone.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn. Names compare case-insensitively and may only be
// registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("props: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("props: function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, taken := r.functions[key]; taken {
		return fmt.Errorf("props: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	fn, ok := r.functions[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	return fn, ok
}

// Call invokes name with args.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("props: function registry is nil")
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("props: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the registered names in lexical order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone copies the name table. Functions are shared.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	functions := make(map[string]Function, len(r.functions))
	for name, fn := range r.functions {
		functions[name] = fn
	}
	return &FunctionRegistry{functions: functions}
}

// RegisterPathFunctions adds helpers for working with compound names:
//
//	under(names, path)    true when any name equals path or lies below it
//	segment(name, index)  the index-th path segment, "" when out of range
//
// With expr, `under(changed, "inventory")` selects entries whose inventory
// changed; CEL spells it `call("under", [changed, "inventory"])`.
func RegisterPathFunctions(r *FunctionRegistry) error {
	if err := r.Register("under", underFunction); err != nil {
		return err
	}
	return r.Register("segment", segmentFunction)
}

func pathFunctions() map[string]Function {
	return map[string]Function{"under": underFunction, "segment": segmentFunction}
}

func underFunction(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("props: under expects (names, path), got %d arguments", len(args))
	}
	names, err := stringList(args[0])
	if err != nil {
		return nil, fmt.Errorf("props: under: %w", err)
	}
	path := fmt.Sprint(args[1])
	for _, name := range names {
		if name == path || strings.HasPrefix(name, path+Separator) {
			return true, nil
		}
	}
	return false, nil
}

func segmentFunction(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("props: segment expects (name, index), got %d arguments", len(args))
	}
	index, ok := toInt(args[1])
	if !ok {
		return nil, fmt.Errorf("props: segment index must be a number, got %T", args[1])
	}
	segments := strings.Split(fmt.Sprint(args[0]), Separator)
	if index < 0 || index >= len(segments) {
		return "", nil
	}
	return segments[index], nil
}

// stringList accepts the list shapes engines hand to functions: []string
// from expr and goja, []any, and CEL lists that convert themselves.
func stringList(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = fmt.Sprint(item)
		}
		return out, nil
	case interface {
		ConvertToNative(reflect.Type) (any, error)
	}:
		native, err := v.ConvertToNative(reflect.TypeOf([]string{}))
		if err != nil {
			return nil, err
		}
		return stringList(native)
	default:
		return nil, fmt.Errorf("expected a list of names, got %T", value)
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

// WithFunctionRegistry exposes a copy of registry to rules run by the
// default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *mapConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers a single rule function. A blank name or nil
// fn leaves the configuration untouched, and for a duplicate name the first
// registration wins.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *mapConfig) {
		if strings.TrimSpace(name) == "" || fn == nil {
			return
		}
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if _, taken := cfg.functions.Lookup(name); taken {
			return
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithPathFunctions makes under and segment available to DirtyWhere rules.
// Functions already registered under those names are kept.
func WithPathFunctions() Option {
	return func(cfg *mapConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		for name, fn := range pathFunctions() {
			if _, taken := cfg.functions.Lookup(name); !taken {
				_ = cfg.functions.Register(name, fn)
			}
		}
	}
}
