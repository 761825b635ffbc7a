// Package evalctx implements the Context described in SPEC_FULL.md C4: the
// bounded-capacity name-resolution environment shared by the parser (for
// expression-function bodies) and the iterative evaluator. Package name
// avoids colliding with the standard library's "context" package, whose
// Context the CLI's run function accepts in its signature.
package evalctx

import (
	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/ast"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/parser"
	"github.com/perbu/expreval/pkg/real"
)

// Limits is the configuration envelope from SPEC_FULL.md §6: fixed
// capacities for every bounded map plus the evaluator's recursion budget.
type Limits struct {
	MaxVariables           int
	MaxConstants           int
	MaxArrays              int
	MaxAttributes          int
	MaxNativeFunctions     int
	MaxExpressionFunctions int
	MaxRecursionDepth      int
	LibmAvailable          bool
}

// DefaultLimits returns capacities generous enough for the end-to-end
// scenarios in SPEC_FULL.md §8 while staying representative of an
// embedded budget.
func DefaultLimits() Limits {
	return Limits{
		MaxVariables:           64,
		MaxConstants:           64,
		MaxArrays:              16,
		MaxAttributes:          64,
		MaxNativeFunctions:     64,
		MaxExpressionFunctions: 32,
		MaxRecursionDepth:      1024,
		LibmAvailable:          true,
	}
}

// NativeFunc is a host-provided implementation: it receives exactly Arity
// values and returns one Real.
type NativeFunc func(args []real.Real) real.Real

// NativeFunction is a registered name/arity/implementation triple. Name-only
// identity: registering the same name again overwrites it.
type NativeFunction struct {
	Name        string
	Arity       int
	Impl        NativeFunc
	Description string
}

// ExpressionFunction is a user-defined function: a parameter list and a
// pre-parsed body shared (never cloned) across calls. Body was parsed into
// the owning Context's arena.
type ExpressionFunction struct {
	Name   string
	Params []string
	Body   *ast.Node
}

// CallableKind reports which registry a call-position name resolved
// against, mirroring the original Rust port's FunctionCacheEntry enum
// (src/eval/types.rs) for host introspection; it does not affect
// evaluation semantics.
type CallableKind int

const (
	CallableNone CallableKind = iota
	CallableExpression
	CallableNative
)

type varEntry struct {
	name  string
	value real.Real
}

type arrayEntry struct {
	name   string
	values []real.Real
}

type attrEntry struct {
	object string
	attr   string
	value  real.Real
}

// Context holds the bounded name-resolution maps described in
// SPEC_FULL.md §3: variables, constants, arrays, attributes, and the
// native/expression function registries. Every map is backed by a slice
// pre-allocated to its Limits capacity; lookups are linear, matching the
// "small fixed-capacity maps" invariant.
type Context struct {
	limits Limits

	variables []varEntry
	constants []varEntry
	arrays    []arrayEntry
	attrs     []attrEntry
	natives   []NativeFunction
	exprFuncs []ExpressionFunction

	// arena backs every expression-function body registered on this
	// Context. It is passed in separately from any batch engine's arena
	// and may be the same arena (config.Build passes one arena to both) or
	// a different one; a Context (and the expression functions registered
	// on it) can be shared across multiple engines.
	arena *arena.Arena
}

// NewEmpty creates a Context that pre-registers nothing, per §4.3's
// "empty context variant".
func NewEmpty(limits Limits, exprArena *arena.Arena) *Context {
	return &Context{
		limits:    limits,
		variables: make([]varEntry, 0, limits.MaxVariables),
		constants: make([]varEntry, 0, limits.MaxConstants),
		arrays:    make([]arrayEntry, 0, limits.MaxArrays),
		attrs:     make([]attrEntry, 0, limits.MaxAttributes),
		natives:   make([]NativeFunction, 0, limits.MaxNativeFunctions),
		exprFuncs: make([]ExpressionFunction, 0, limits.MaxExpressionFunctions),
		arena:     exprArena,
	}
}

// NewDefault creates a Context pre-registering the arithmetic, comparison,
// and (if limits.LibmAvailable) elementary-math functions and constants
// listed in SPEC_FULL.md §6.
func NewDefault(limits Limits, exprArena *arena.Arena) *Context {
	c := NewEmpty(limits, exprArena)
	registerDefaults(c)
	return c
}

// Limits returns the capacity envelope this Context was constructed with.
func (c *Context) Limits() Limits { return c.limits }

// SetVariable overwrites an existing variable or inserts a new one (the
// spec's set_parameter operation). Fails with CapacityExceeded("variables")
// if absent and the table is full.
func (c *Context) SetVariable(name string, value real.Real) error {
	for i := range c.variables {
		if c.variables[i].name == name {
			c.variables[i].value = value
			return nil
		}
	}
	if len(c.variables) == cap(c.variables) {
		return evalerr.NewCapacityExceeded("variables")
	}
	c.variables = append(c.variables, varEntry{name, value})
	return nil
}

// SetConstant overwrites or inserts an immutable-by-convention constant.
func (c *Context) SetConstant(name string, value real.Real) error {
	for i := range c.constants {
		if c.constants[i].name == name {
			c.constants[i].value = value
			return nil
		}
	}
	if len(c.constants) == cap(c.constants) {
		return evalerr.NewCapacityExceeded("constants")
	}
	c.constants = append(c.constants, varEntry{name, value})
	return nil
}

// SetArray overwrites or inserts a named array.
func (c *Context) SetArray(name string, values []real.Real) error {
	for i := range c.arrays {
		if c.arrays[i].name == name {
			c.arrays[i].values = values
			return nil
		}
	}
	if len(c.arrays) == cap(c.arrays) {
		return evalerr.NewCapacityExceeded("arrays")
	}
	c.arrays = append(c.arrays, arrayEntry{name, values})
	return nil
}

// SetAttribute overwrites or inserts an (object, attribute) binding.
func (c *Context) SetAttribute(object, attr string, value real.Real) error {
	for i := range c.attrs {
		if c.attrs[i].object == object && c.attrs[i].attr == attr {
			c.attrs[i].value = value
			return nil
		}
	}
	if len(c.attrs) == cap(c.attrs) {
		return evalerr.NewCapacityExceeded("attributes")
	}
	c.attrs = append(c.attrs, attrEntry{object, attr, value})
	return nil
}

// RegisterNativeFunction registers or overwrites a host-provided function.
func (c *Context) RegisterNativeFunction(name string, arity int, impl NativeFunc, description string) error {
	for i := range c.natives {
		if c.natives[i].Name == name {
			c.natives[i] = NativeFunction{name, arity, impl, description}
			return nil
		}
	}
	if len(c.natives) == cap(c.natives) {
		return evalerr.NewCapacityExceeded("native_functions")
	}
	c.natives = append(c.natives, NativeFunction{name, arity, impl, description})
	return nil
}

// RegisterExpressionFunction parses body into this Context's arena and
// registers it under name. On parse error the registration fails and the
// Context is left exactly as before: the arena's high-water mark may have
// advanced (the failed parse's partial allocations are simply wasted,
// reclaimed only by a full arena Reset), but no function-table entry is
// added or overwritten, per §7's "parse errors do not mutate the arena's
// logically visible state beyond high-water advancement".
func (c *Context) RegisterExpressionFunction(name string, params []string, body string) error {
	root, err := parser.Parse(body, c.arena)
	if err != nil {
		return err
	}
	for i := range c.exprFuncs {
		if c.exprFuncs[i].Name == name {
			c.exprFuncs[i] = ExpressionFunction{name, params, root}
			return nil
		}
	}
	if len(c.exprFuncs) == cap(c.exprFuncs) {
		return evalerr.NewCapacityExceeded("expression_functions")
	}
	c.exprFuncs = append(c.exprFuncs, ExpressionFunction{name, params, root})
	return nil
}

// RemoveExpressionFunction deletes name if present and reports whether it
// existed.
func (c *Context) RemoveExpressionFunction(name string) bool {
	for i := range c.exprFuncs {
		if c.exprFuncs[i].Name == name {
			c.exprFuncs = append(c.exprFuncs[:i], c.exprFuncs[i+1:]...)
			return true
		}
	}
	return false
}

// GetVariable looks up a variable by name.
func (c *Context) GetVariable(name string) (real.Real, bool) {
	for i := range c.variables {
		if c.variables[i].name == name {
			return c.variables[i].value, true
		}
	}
	return 0, false
}

// GetConstant looks up a constant by name.
func (c *Context) GetConstant(name string) (real.Real, bool) {
	for i := range c.constants {
		if c.constants[i].name == name {
			return c.constants[i].value, true
		}
	}
	return 0, false
}

// GetArray looks up an array by name.
func (c *Context) GetArray(name string) ([]real.Real, bool) {
	for i := range c.arrays {
		if c.arrays[i].name == name {
			return c.arrays[i].values, true
		}
	}
	return nil, false
}

// GetAttribute looks up an (object, attribute) value.
func (c *Context) GetAttribute(object, attr string) (real.Real, bool) {
	for i := range c.attrs {
		if c.attrs[i].object == object && c.attrs[i].attr == attr {
			return c.attrs[i].value, true
		}
	}
	return 0, false
}

// LookupValue resolves an identifier used in value position: variables
// first, then constants, per §4.3's name resolution order. Variables win
// on a name present in both tables.
func (c *Context) LookupValue(name string) (real.Real, bool) {
	if v, ok := c.GetVariable(name); ok {
		return v, true
	}
	return c.GetConstant(name)
}

// LookupExpressionFunction resolves a call-position name against the
// expression-function table.
func (c *Context) LookupExpressionFunction(name string) (*ExpressionFunction, bool) {
	for i := range c.exprFuncs {
		if c.exprFuncs[i].Name == name {
			return &c.exprFuncs[i], true
		}
	}
	return nil, false
}

// LookupNativeFunction resolves a call-position name against the native
// function table.
func (c *Context) LookupNativeFunction(name string) (*NativeFunction, bool) {
	for i := range c.natives {
		if c.natives[i].Name == name {
			return &c.natives[i], true
		}
	}
	return nil, false
}

// NativeFunctionNames returns the registered native function names in
// registration order, for host introspection (e.g. a CLI -list-functions
// flag).
func (c *Context) NativeFunctionNames() []string {
	names := make([]string, len(c.natives))
	for i := range c.natives {
		names[i] = c.natives[i].Name
	}
	return names
}

// LookupCallable reports which registry, if any, a call-position name
// resolves against: expression_functions before native_functions, per
// §4.3's resolution order.
func (c *Context) LookupCallable(name string) (CallableKind, bool) {
	if _, ok := c.LookupExpressionFunction(name); ok {
		return CallableExpression, true
	}
	if _, ok := c.LookupNativeFunction(name); ok {
		return CallableNative, true
	}
	return CallableNone, false
}
