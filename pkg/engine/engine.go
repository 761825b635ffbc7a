// Package engine implements the batch engine described in SPEC_FULL.md C6
// / §4.5: a reusable evaluation harness that owns a set of pre-parsed
// expressions and a parameter vector, guaranteeing zero additional
// allocation per Eval cycle after setup.
package engine

import (
	"time"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/ast"
	"github.com/perbu/expreval/pkg/evalctx"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/eval"
	"github.com/perbu/expreval/pkg/eventbus"
	"github.com/perbu/expreval/pkg/parser"
	"github.com/perbu/expreval/pkg/real"
)

type paramSlot struct {
	name  string
	value real.Real
}

// Engine holds N pre-parsed expression roots and a parameter vector. Once
// AddParameter/AddExpression calls are done, Eval performs no further
// allocation: the parameter table, result vector, and the Evaluator's
// internal stacks are all pre-sized and reused across cycles.
type Engine struct {
	arena  *arena.Arena
	ctx    *evalctx.Context
	evalr  *eval.Evaluator
	bus    *eventbus.Bus
	cycle  uint64
	params []paramSlot
	roots  []*ast.Node
	results []real.Real
}

// New creates an empty engine bound to a (arena, ctx) pair. The arena and
// context are shared with the caller, never copied: a Context can back
// several engines, but the arena passed here must not be used by another
// engine concurrently (§5's "an arena handed to one batch engine must not
// be handed to another concurrently").
func New(a *arena.Arena, ctx *evalctx.Context) *Engine {
	return &Engine{
		arena: a,
		ctx:   ctx,
		evalr: eval.New(ctx.Limits()),
	}
}

// SetEventBus attaches an optional event bus; events are published after
// every Eval call. Passing nil disables publishing, which is also the
// zero-value Engine's default.
func (e *Engine) SetEventBus(bus *eventbus.Bus) {
	e.bus = bus
}

// AddParameter registers a new variable slot with an initial value and
// returns its index. Fails with CapacityExceeded("variables") if name is
// already registered, per §4.5's "fails on duplicate".
func (e *Engine) AddParameter(name string, initial real.Real) (int, error) {
	for _, p := range e.params {
		if p.name == name {
			return 0, evalerr.NewCapacityExceeded("variables")
		}
	}
	e.params = append(e.params, paramSlot{name: name, value: initial})
	return len(e.params) - 1, nil
}

// AddExpression parses source into the engine's arena and stores its root,
// returning its expression index.
func (e *Engine) AddExpression(source string) (int, error) {
	root, err := parser.Parse(source, e.arena)
	if err != nil {
		return 0, err
	}
	e.roots = append(e.roots, root)
	e.results = append(e.results, 0)
	return len(e.roots) - 1, nil
}

// SetParam overwrites a parameter slot by index (O(1)).
func (e *Engine) SetParam(slot int, value real.Real) {
	e.params[slot].value = value
}

// SetParamByName overwrites a parameter slot by name (O(k) linear scan).
// Returns false if no such parameter was registered.
func (e *Engine) SetParamByName(name string, value real.Real) bool {
	for i := range e.params {
		if e.params[i].name == name {
			e.params[i].value = value
			return true
		}
	}
	return false
}

// LookupVariable implements eval.Overlay: the engine's own parameter table
// is consulted by the evaluator before the context's variables, per
// §4.5's parameter-projection contract. This never mutates the context.
func (e *Engine) LookupVariable(name string) (real.Real, bool) {
	for _, p := range e.params {
		if p.name == name {
			return p.value, true
		}
	}
	return 0, false
}

// Eval evaluates every registered expression in declaration order against
// the context, projected through the engine's parameter overlay, writing
// each root's result into the results vector.
func (e *Engine) Eval() error {
	start := time.Now()
	var evalErr error
	for i, root := range e.roots {
		v, err := e.evalr.Eval(root, e.arena, e.ctx, e)
		if err != nil {
			evalErr = err
			break
		}
		e.results[i] = v
	}
	e.cycle++
	if e.bus != nil {
		e.bus.Publish(eventbus.EvalCycle{
			Cycle:    e.cycle,
			Duration: time.Since(start),
			Err:      evalErr,
		})
	}
	return evalErr
}

// GetResult returns the last-cycle result for expression index.
func (e *Engine) GetResult(index int) real.Real {
	return e.results[index]
}

// GetAllResults returns the full results vector from the last cycle, as a
// borrowed slice (callers must not retain it across the next Eval call).
func (e *Engine) GetAllResults() []real.Real {
	return e.results
}

// ExpressionCount and ParameterCount expose registration counts, mainly
// for tests and the CLI's introspection output.
func (e *Engine) ExpressionCount() int { return len(e.roots) }
func (e *Engine) ParameterCount() int  { return len(e.params) }
