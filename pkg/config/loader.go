// Package config implements the YAML configuration envelope described in
// SPEC_FULL.md's Ambient Stack: a Limits/context/batch-engine document
// loaded once at CLI-driver start, in the same Load/validate/applyDefaults
// shape the teacher's pkg/config uses for its Varnish test-harness config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/engine"
	"github.com/perbu/expreval/pkg/evalctx"
	"github.com/perbu/expreval/pkg/real"
)

const (
	defaultArenaNodeCapacity = 4096
	defaultArenaArgCapacity  = 1024
)

// Load reads and parses a YAML configuration file.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// validate checks that required fields are present.
func validate(cfg *Config) error {
	if len(cfg.Engine.Expressions) == 0 {
		return fmt.Errorf("engine.expressions is required and must be non-empty")
	}
	seen := make(map[string]struct{}, len(cfg.Engine.Parameters))
	for _, p := range cfg.Engine.Parameters {
		if p.Name == "" {
			return fmt.Errorf("engine.parameters: name is required")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("engine.parameters: duplicate name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	for _, f := range cfg.Context.Functions {
		if f.Name == "" {
			return fmt.Errorf("context.functions: name is required")
		}
		if f.Body == "" {
			return fmt.Errorf("context.functions: body is required for %q", f.Name)
		}
	}
	return nil
}

// applyDefaults fills zero-valued fields with package defaults. Unlike the
// varnish harness config this replaced, nothing here needs to be
// generated (no secrets): every default is a static capacity constant.
func applyDefaults(cfg *Config) {
	def := evalctx.DefaultLimits()
	if cfg.Limits.MaxVariables == 0 {
		cfg.Limits.MaxVariables = def.MaxVariables
	}
	if cfg.Limits.MaxConstants == 0 {
		cfg.Limits.MaxConstants = def.MaxConstants
	}
	if cfg.Limits.MaxArrays == 0 {
		cfg.Limits.MaxArrays = def.MaxArrays
	}
	if cfg.Limits.MaxAttributes == 0 {
		cfg.Limits.MaxAttributes = def.MaxAttributes
	}
	if cfg.Limits.MaxNativeFunctions == 0 {
		cfg.Limits.MaxNativeFunctions = def.MaxNativeFunctions
	}
	if cfg.Limits.MaxExpressionFunctions == 0 {
		cfg.Limits.MaxExpressionFunctions = def.MaxExpressionFunctions
	}
	if cfg.Limits.MaxRecursionDepth == 0 {
		cfg.Limits.MaxRecursionDepth = def.MaxRecursionDepth
	}
	if cfg.Limits.LibmAvailable == nil {
		v := def.LibmAvailable
		cfg.Limits.LibmAvailable = &v
	}
	if cfg.Engine.ArenaNodeCapacity == 0 {
		cfg.Engine.ArenaNodeCapacity = defaultArenaNodeCapacity
	}
	if cfg.Engine.ArenaArgCapacity == 0 {
		cfg.Engine.ArenaArgCapacity = defaultArenaArgCapacity
	}
}

// Limits converts the YAML envelope into an evalctx.Limits value.
func (c *Config) Limits() evalctx.Limits {
	libm := true
	if c.Limits.LibmAvailable != nil {
		libm = *c.Limits.LibmAvailable
	}
	return evalctx.Limits{
		MaxVariables:           c.Limits.MaxVariables,
		MaxConstants:           c.Limits.MaxConstants,
		MaxArrays:              c.Limits.MaxArrays,
		MaxAttributes:          c.Limits.MaxAttributes,
		MaxNativeFunctions:     c.Limits.MaxNativeFunctions,
		MaxExpressionFunctions: c.Limits.MaxExpressionFunctions,
		MaxRecursionDepth:      c.Limits.MaxRecursionDepth,
		LibmAvailable:          libm,
	}
}

// Build materializes the full (arena, context, engine) triple this config
// describes: a default context preseeded with the configured constants,
// arrays, attributes and expression functions, and a batch engine with
// the configured parameters and expressions registered against it.
func (c *Config) Build() (*arena.Arena, *evalctx.Context, *engine.Engine, error) {
	a := arena.New(c.Engine.ArenaNodeCapacity, c.Engine.ArenaArgCapacity)
	ctx := evalctx.NewDefault(c.Limits(), a)

	for name, v := range c.Context.Constants {
		if err := ctx.SetConstant(name, real.Real(v)); err != nil {
			return nil, nil, nil, fmt.Errorf("preseeding constant %q: %w", name, err)
		}
	}
	for name, values := range c.Context.Arrays {
		arr := make([]real.Real, len(values))
		for i, v := range values {
			arr[i] = real.Real(v)
		}
		if err := ctx.SetArray(name, arr); err != nil {
			return nil, nil, nil, fmt.Errorf("preseeding array %q: %w", name, err)
		}
	}
	for _, attr := range c.Context.Attributes {
		if err := ctx.SetAttribute(attr.Object, attr.Attr, real.Real(attr.Value)); err != nil {
			return nil, nil, nil, fmt.Errorf("preseeding attribute %s.%s: %w", attr.Object, attr.Attr, err)
		}
	}
	for _, fn := range c.Context.Functions {
		if err := ctx.RegisterExpressionFunction(fn.Name, fn.Params, fn.Body); err != nil {
			return nil, nil, nil, fmt.Errorf("registering function %q: %w", fn.Name, err)
		}
	}

	eng := engine.New(a, ctx)
	for _, p := range c.Engine.Parameters {
		if _, err := eng.AddParameter(p.Name, real.Real(p.Initial)); err != nil {
			return nil, nil, nil, fmt.Errorf("adding parameter %q: %w", p.Name, err)
		}
	}
	for _, expr := range c.Engine.Expressions {
		if _, err := eng.AddExpression(expr); err != nil {
			return nil, nil, nil, fmt.Errorf("adding expression %q: %w", expr, err)
		}
	}

	return a, ctx, eng, nil
}
