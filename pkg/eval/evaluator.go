// Package eval implements the iterative evaluator described in
// SPEC_FULL.md C5 / §4.4: it walks an AST with an explicit work/value/frame
// stack instead of native Go recursion, so that AST depth and expression-
// function recursion depth are bounded by a configurable budget rather than
// goroutine stack size. This is the load-bearing requirement from §9's
// design notes: "Natural recursive AST traversal is forbidden in the core
// evaluator."
package eval

import (
	"math"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/ast"
	"github.com/perbu/expreval/pkg/evalctx"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/real"
)

// Overlay lets a caller (the batch engine) inject a parameter table that
// the evaluator consults before the Context's own variables, per §4.5's
// "parameter projection": the engine passes a thin overlay instead of
// cloning or mutating the Context per cycle.
type Overlay interface {
	LookupVariable(name string) (real.Real, bool)
}

type taskKind int

const (
	taskEval taskKind = iota
	taskApplyBinOp
	taskApplyUnaryOp
	taskApplyCall
	taskApplyTernary
	taskApplyShortCircuit
	taskCoerceBool
	taskApplySequence
	taskApplyArrayIndex
	taskPopFrame
)

// task is deliberately a single (kind, node) pair: every task but Eval
// reads the operator/operands/branches it needs back off the AST node
// that spawned it, so no extra payload fields are needed per task kind.
type task struct {
	kind taskKind
	node *ast.Node
}

type frame struct {
	names  []string
	values []real.Real
}

// Evaluator owns the explicit work/value/frame stacks. Its capacity is
// fixed at construction and reused across Eval calls (or rewound to zero
// length, never reallocated), which is what lets a batch engine call Eval
// every cycle without allocating. An Evaluator is not safe for concurrent
// use — it belongs to exactly one batch engine / caller at a time, per
// SPEC_FULL.md §5.
type Evaluator struct {
	work    []task
	workLen int

	values    []real.Real
	valuesLen int

	frameStack    []frame
	frameStackLen int
	frameValues   []real.Real
	frameValLen   int

	arena   *arena.Arena
	ctx     *evalctx.Context
	overlay Overlay
}

// New creates an Evaluator whose stack capacities are derived from
// limits.MaxRecursionDepth, per §9's "implementers should size work/value
// stacks from a static ceiling". The work-stack capacity doubles as the
// recursion-depth budget itself (see CapacityExceeded("context stack") in
// pushWork): pending continuation tasks accumulate on the work stack in
// proportion to both call depth and per-call body size, which is exactly
// the "depth proportional to the product of semantic depth and body-node
// count" behavior §4.4 describes.
func New(limits evalctx.Limits) *Evaluator {
	depth := limits.MaxRecursionDepth
	if depth < 16 {
		depth = 16
	}
	return &Evaluator{
		work:        make([]task, depth),
		values:      make([]real.Real, depth*2),
		frameStack:  make([]frame, depth),
		frameValues: make([]real.Real, depth*8),
	}
}

// ResetRecursionDepth clears the evaluator's stacks without a full Eval
// call. Eval already resets on every top-level invocation (§4.4: "The
// counter is reset at the start of each top-level eval call to isolate
// invocations"), so this is normally unnecessary; it exists for test
// isolation and embedder diagnostics, mirroring the original Rust port's
// exp_rs::eval::recursion::reset_recursion_depth.
func (e *Evaluator) ResetRecursionDepth() {
	e.workLen = 0
	e.valuesLen = 0
	e.frameStackLen = 0
	e.frameValLen = 0
}

// Eval walks root against ctx (and, if non-nil, overlay) and returns its
// value. Errors unwind immediately to this call; nothing is recovered
// internally.
func (e *Evaluator) Eval(root *ast.Node, a *arena.Arena, ctx *evalctx.Context, overlay Overlay) (real.Real, error) {
	e.ResetRecursionDepth()
	e.arena = a
	e.ctx = ctx
	e.overlay = overlay

	if err := e.pushWork(task{kind: taskEval, node: root}); err != nil {
		return 0, err
	}

	for e.workLen > 0 {
		t := e.popWork()
		if err := e.step(t); err != nil {
			return 0, err
		}
	}

	if e.valuesLen != 1 {
		return 0, evalerr.NewEmptyExpression()
	}
	return e.popValue(), nil
}

func (e *Evaluator) pushWork(t task) error {
	if e.workLen == len(e.work) {
		return evalerr.NewCapacityExceeded("context stack")
	}
	e.work[e.workLen] = t
	e.workLen++
	return nil
}

func (e *Evaluator) popWork() task {
	e.workLen--
	return e.work[e.workLen]
}

func (e *Evaluator) pushValue(v real.Real) error {
	if e.valuesLen == len(e.values) {
		return evalerr.NewCapacityExceeded("context stack")
	}
	e.values[e.valuesLen] = v
	e.valuesLen++
	return nil
}

func (e *Evaluator) popValue() real.Real {
	e.valuesLen--
	return e.values[e.valuesLen]
}

func (e *Evaluator) pushFrame(params []string, args []real.Real) error {
	n := len(params)
	if e.frameStackLen == len(e.frameStack) || e.frameValLen+n > len(e.frameValues) {
		return evalerr.NewCapacityExceeded("context stack")
	}
	off := e.frameValLen
	copy(e.frameValues[off:off+n], args)
	e.frameStack[e.frameStackLen] = frame{names: params, values: e.frameValues[off : off+n]}
	e.frameStackLen++
	e.frameValLen += n
	return nil
}

func (e *Evaluator) popFrame() {
	e.frameStackLen--
	e.frameValLen -= len(e.frameStack[e.frameStackLen].values)
}

func (e *Evaluator) resolveVariable(name string) (real.Real, bool) {
	if e.frameStackLen > 0 {
		f := e.frameStack[e.frameStackLen-1]
		for i, n := range f.names {
			if n == name {
				return f.values[i], true
			}
		}
	}
	if e.overlay != nil {
		if v, ok := e.overlay.LookupVariable(name); ok {
			return v, true
		}
	}
	return e.ctx.LookupValue(name)
}

func (e *Evaluator) step(t task) error {
	node := t.node
	switch t.kind {
	case taskEval:
		return e.stepEval(node)
	case taskApplyArrayIndex:
		idx := e.popValue()
		arr, ok := e.ctx.GetArray(node.Name)
		if !ok {
			return evalerr.NewUnknownVariable(node.Name)
		}
		i := int(math.Round(float64(idx)))
		if i < 0 || i >= len(arr) {
			return evalerr.NewArrayOutOfBounds(node.Name, i)
		}
		return e.pushValue(arr[i])
	case taskApplyCall:
		return e.applyCall(node)
	case taskApplyTernary:
		cond := e.popValue()
		if cond != 0 {
			return e.pushWork(task{taskEval, node.Then})
		}
		return e.pushWork(task{taskEval, node.Else})
	case taskApplyShortCircuit:
		lhs := e.popValue()
		truthy := isTruthy(lhs)
		decisive := (node.Kind == ast.LogicalAnd && !truthy) || (node.Kind == ast.LogicalOr && truthy)
		if decisive {
			return e.pushValue(boolOf(truthy))
		}
		if err := e.pushWork(task{taskCoerceBool, nil}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.RHS})
	case taskCoerceBool:
		v := e.popValue()
		return e.pushValue(boolOf(isTruthy(v)))
	case taskApplySequence:
		e.popValue() // discard lhs
		return e.pushWork(task{taskEval, node.RHS})
	case taskApplyBinOp:
		rhs := e.popValue()
		lhs := e.popValue()
		return e.pushValue(applyBinOp(node.Op, lhs, rhs))
	case taskApplyUnaryOp:
		v := e.popValue()
		return e.pushValue(applyUnaryOp(node.Op, v))
	case taskPopFrame:
		e.popFrame()
		return nil
	default:
		return nil
	}
}

func (e *Evaluator) stepEval(node *ast.Node) error {
	switch node.Kind {
	case ast.Number:
		return e.pushValue(node.NumberValue)
	case ast.Variable:
		v, ok := e.resolveVariable(node.Name)
		if !ok {
			return evalerr.NewUnknownVariable(node.Name)
		}
		return e.pushValue(v)
	case ast.AttributeAccess:
		v, ok := e.ctx.GetAttribute(node.Name, node.Attr)
		if !ok {
			return evalerr.NewUnknownAttribute(node.Name, node.Attr)
		}
		return e.pushValue(v)
	case ast.ArrayIndex:
		if err := e.pushWork(task{taskApplyArrayIndex, node}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.IndexExpr})
	case ast.FunctionCall:
		if err := e.pushWork(task{taskApplyCall, node}); err != nil {
			return err
		}
		args := e.arena.Args(node.ArgsOff, node.ArgsLen)
		for i := len(args) - 1; i >= 0; i-- {
			if err := e.pushWork(task{taskEval, args[i]}); err != nil {
				return err
			}
		}
		return nil
	case ast.Ternary:
		if err := e.pushWork(task{taskApplyTernary, node}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.Cond})
	case ast.LogicalAnd, ast.LogicalOr:
		if err := e.pushWork(task{taskApplyShortCircuit, node}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.LHS})
	case ast.Sequence:
		if err := e.pushWork(task{taskApplySequence, node}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.LHS})
	case ast.BinaryOp:
		if err := e.pushWork(task{taskApplyBinOp, node}); err != nil {
			return err
		}
		if err := e.pushWork(task{taskEval, node.RHS}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.LHS})
	case ast.UnaryOp:
		if err := e.pushWork(task{taskApplyUnaryOp, node}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, node.Operand})
	default:
		return nil
	}
}

func (e *Evaluator) applyCall(node *ast.Node) error {
	argc := node.ArgsLen
	args := e.values[e.valuesLen-argc : e.valuesLen]
	e.valuesLen -= argc

	if ef, ok := e.ctx.LookupExpressionFunction(node.Name); ok {
		if len(ef.Params) != argc {
			return evalerr.NewArityMismatch(node.Name, len(ef.Params), argc)
		}
		if err := e.pushFrame(ef.Params, args); err != nil {
			return err
		}
		if err := e.pushWork(task{taskPopFrame, nil}); err != nil {
			return err
		}
		return e.pushWork(task{taskEval, ef.Body})
	}

	if nf, ok := e.ctx.LookupNativeFunction(node.Name); ok {
		if nf.Arity != argc {
			return evalerr.NewArityMismatch(node.Name, nf.Arity, argc)
		}
		return e.pushValue(nf.Impl(args))
	}

	return evalerr.NewUnknownFunction(node.Name)
}

// isTruthy implements §4.4's short-circuit truthiness: any non-zero finite
// or non-zero infinite value is true; NaN is false (NaN != NaN is true in
// IEEE 754, which the == comparison below relies on).
func isTruthy(v real.Real) bool {
	return v == v && v != 0
}

func boolOf(b bool) real.Real {
	if b {
		return 1.0
	}
	return 0.0
}

func applyBinOp(op ast.Operator, lhs, rhs real.Real) real.Real {
	switch op {
	case ast.OpAdd:
		return lhs + rhs
	case ast.OpSub:
		return lhs - rhs
	case ast.OpMul:
		return lhs * rhs
	case ast.OpDiv:
		return lhs / rhs
	case ast.OpMod:
		return real.Real(math.Mod(float64(lhs), float64(rhs)))
	case ast.OpPow:
		return real.Real(math.Pow(float64(lhs), float64(rhs)))
	case ast.OpLt:
		return boolOf(lhs < rhs)
	case ast.OpGt:
		return boolOf(lhs > rhs)
	case ast.OpLe:
		return boolOf(lhs <= rhs)
	case ast.OpGe:
		return boolOf(lhs >= rhs)
	case ast.OpEq:
		return boolOf(lhs == rhs)
	case ast.OpNeq:
		return boolOf(lhs != rhs)
	default:
		return 0
	}
}

func applyUnaryOp(op ast.Operator, v real.Real) real.Real {
	switch op {
	case ast.OpNeg:
		return -v
	default:
		return v
	}
}
