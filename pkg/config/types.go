package config

// Config is the YAML envelope the CLI driver loads at process start: the
// Limits capacity plan, the default context's preseeded data, and the
// batch-engine's parameter/expression lists. It is the runtime-loaded
// analogue of the original Rust crate's compile-time Cargo feature flags.
type Config struct {
	// Limits sizes every bounded registry and the evaluator's recursion
	// budget.
	Limits LimitsConfig `yaml:"limits,omitempty"`
	// Context preseeds constants, arrays, and attributes beyond the
	// default arithmetic/math function registry.
	Context ContextConfig `yaml:"context,omitempty"`
	// Engine describes the batch engine's parameter and expression lists.
	Engine EngineConfig `yaml:"engine"`
}

// LimitsConfig mirrors evalctx.Limits as YAML-addressable fields. A zero
// value for any field means "use the package default for that field", not
// literally zero capacity; see applyDefaults.
type LimitsConfig struct {
	MaxVariables           int  `yaml:"max_variables,omitempty"`
	MaxConstants           int  `yaml:"max_constants,omitempty"`
	MaxArrays              int  `yaml:"max_arrays,omitempty"`
	MaxAttributes          int  `yaml:"max_attributes,omitempty"`
	MaxNativeFunctions     int  `yaml:"max_native_functions,omitempty"`
	MaxExpressionFunctions int  `yaml:"max_expression_functions,omitempty"`
	MaxRecursionDepth      int  `yaml:"max_recursion_depth,omitempty"`
	LibmAvailable          *bool `yaml:"libm_available,omitempty"`
}

// ContextConfig preseeds a Context beyond the default registry.
type ContextConfig struct {
	Constants  map[string]float64          `yaml:"constants,omitempty"`
	Arrays     map[string][]float64        `yaml:"arrays,omitempty"`
	Attributes []AttributeConfig           `yaml:"attributes,omitempty"`
	Functions  []ExpressionFunctionConfig  `yaml:"functions,omitempty"`
}

// AttributeConfig is one (object, attribute, value) triple.
type AttributeConfig struct {
	Object string  `yaml:"object"`
	Attr   string  `yaml:"attr"`
	Value  float64 `yaml:"value"`
}

// ExpressionFunctionConfig registers one user-defined expression function.
type ExpressionFunctionConfig struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Body   string   `yaml:"body"`
}

// EngineConfig describes the batch engine's parameter slots and the
// expressions evaluated against them each cycle.
type EngineConfig struct {
	Parameters  []ParameterConfig `yaml:"parameters,omitempty"`
	Expressions []string          `yaml:"expressions"`
	// ArenaNodeCapacity / ArenaArgCapacity size the arena backing the
	// engine's parsed expressions and any registered expression
	// functions. Zero means "use the package default".
	ArenaNodeCapacity int `yaml:"arena_node_capacity,omitempty"`
	ArenaArgCapacity  int `yaml:"arena_arg_capacity,omitempty"`
}

// ParameterConfig is one named, initialized engine parameter slot.
type ParameterConfig struct {
	Name    string  `yaml:"name"`
	Initial float64 `yaml:"initial"`
}
