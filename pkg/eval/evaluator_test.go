package eval

import (
	"errors"
	"math"
	"testing"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/evalctx"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/parser"
	"github.com/perbu/expreval/pkg/real"
)

func newFixture(t *testing.T) (*Evaluator, *arena.Arena, *evalctx.Context) {
	t.Helper()
	limits := evalctx.DefaultLimits()
	a := arena.New(4096, 1024)
	ctx := evalctx.NewDefault(limits, a)
	return New(limits), a, ctx
}

func mustEval(t *testing.T, src string) real.Real {
	t.Helper()
	ev, a, ctx := newFixture(t)
	root, err := parser.Parse(src, a)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	cases := map[string]real.Real{
		"1 + 2 * 3":   7,
		"(1 + 2) * 3": 9,
		"2 ^ 3 ^ 2":   512, // right-assoc: 2^(3^2)
		"-2 ^ 2":      -4,  // ^ binds tighter than unary minus on the left: -(2^2)
		"(-2) ^ 2":    4,
		"10 % 3":      1,
		"2 + 3 == 5":  1,
		"2 + 3 != 5":  0,
	}
	for src, want := range cases {
		if got := mustEval(t, src); got != want {
			t.Errorf("eval(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	ev, a, ctx := newFixture(t)
	// 0 && (1/0) must short-circuit and never evaluate the division.
	root, err := parser.Parse("0 && (1/0)", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Fatalf("got %v, want 0", v)
	}

	root2, err := parser.Parse("1 || (1/0)", a)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := ev.Eval(root2, a, ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v2 != 1 {
		t.Fatalf("got %v, want 1", v2)
	}
}

func TestTernary(t *testing.T) {
	if got := mustEval(t, "1 < 2 ? 10 : 20"); got != 10 {
		t.Errorf("got %v, want 10", got)
	}
	if got := mustEval(t, "1 > 2 ? 10 : 20"); got != 20 {
		t.Errorf("got %v, want 20", got)
	}
}

func TestSequence(t *testing.T) {
	if got := mustEval(t, "1, 2, 3"); got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestVariablesAndArrays(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.SetVariable("x", 21); err != nil {
		t.Fatal(err)
	}
	if err := ctx.SetArray("arr", []real.Real{10, 20, 30}); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("x * 2", a)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := ev.Eval(root, a, ctx, nil); err != nil || v != 42 {
		t.Fatalf("got %v, %v, want 42", v, err)
	}

	root2, err := parser.Parse("arr[1]", a)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := ev.Eval(root2, a, ctx, nil); err != nil || v != 20 {
		t.Fatalf("got %v, %v, want 20", v, err)
	}

	root3, err := parser.Parse("arr[5]", a)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.Eval(root3, a, ctx, nil)
	var evErr *evalerr.Error
	if !errors.As(err, &evErr) || evErr.Kind != evalerr.ArrayOutOfBounds {
		t.Fatalf("want ArrayOutOfBounds, got %v", err)
	}
}

func TestAttributeAccess(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.SetAttribute("req", "size", 1024); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("req.size", a)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := ev.Eval(root, a, ctx, nil); err != nil || v != 1024 {
		t.Fatalf("got %v, %v, want 1024", v, err)
	}
}

func TestExpressionFunctionFactorial(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.RegisterExpressionFunction("fact", []string{"n"}, "n <= 1 ? 1 : n * fact(n - 1)"); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("fact(10)", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != 3628800 {
		t.Fatalf("fact(10) = %v, want 3628800", v)
	}
}

func TestExpressionFunctionFibonacci(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.RegisterExpressionFunction("fib", []string{"n"}, "n < 2 ? n : fib(n - 1) + fib(n - 2)"); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("fib(12)", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != 144 {
		t.Fatalf("fib(12) = %v, want 144", v)
	}
}

func TestMutualRecursion(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.RegisterExpressionFunction("is_even", []string{"n"}, "n == 0 ? 1 : is_odd(n - 1)"); err != nil {
		t.Fatal(err)
	}
	if err := ctx.RegisterExpressionFunction("is_odd", []string{"n"}, "n == 0 ? 0 : is_even(n - 1)"); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("is_even(10)", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Fatalf("is_even(10) = %v, want 1", v)
	}
}

func TestInfiniteRecursionHitsCapacity(t *testing.T) {
	limits := evalctx.DefaultLimits()
	limits.MaxRecursionDepth = 64
	a := arena.New(4096, 1024)
	ctx := evalctx.NewDefault(limits, a)
	ev := New(limits)
	if err := ctx.RegisterExpressionFunction("loop", []string{"n"}, "loop(n + 1)"); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("loop(0)", a)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.Eval(root, a, ctx, nil)
	var evErr *evalerr.Error
	if !errors.As(err, &evErr) || evErr.Kind != evalerr.CapacityExceeded {
		t.Fatalf("want CapacityExceeded, got %v", err)
	}
}

func TestUnknownVariableAndFunction(t *testing.T) {
	_, a, ctx := newFixture(t)
	ev := New(evalctx.DefaultLimits())
	root, err := parser.Parse("missing_var", a)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.Eval(root, a, ctx, nil)
	var evErr *evalerr.Error
	if !errors.As(err, &evErr) || evErr.Kind != evalerr.UnknownVariable {
		t.Fatalf("want UnknownVariable, got %v", err)
	}

	root2, err := parser.Parse("bogus_fn(1, 2)", a)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.Eval(root2, a, ctx, nil)
	if !errors.As(err, &evErr) || evErr.Kind != evalerr.UnknownFunction {
		t.Fatalf("want UnknownFunction, got %v", err)
	}
}

func TestArityMismatch(t *testing.T) {
	_, a, ctx := newFixture(t)
	ev := New(evalctx.DefaultLimits())
	root, err := parser.Parse("sin(1, 2)", a)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ev.Eval(root, a, ctx, nil)
	var evErr *evalerr.Error
	if !errors.As(err, &evErr) || evErr.Kind != evalerr.ArityMismatch {
		t.Fatalf("want ArityMismatch, got %v", err)
	}
}

// overlay implements Overlay for the batch-engine parameter-projection test.
type overlay struct {
	names  []string
	values []real.Real
}

func (o overlay) LookupVariable(name string) (real.Real, bool) {
	for i, n := range o.names {
		if n == name {
			return o.values[i], true
		}
	}
	return 0, false
}

func TestOverlayTakesPriorityOverContextVariables(t *testing.T) {
	ev, a, ctx := newFixture(t)
	// pi is predefined as a context variable by NewDefault; the overlay
	// should win.
	ov := overlay{names: []string{"pi"}, values: []real.Real{3}}
	root, err := parser.Parse("pi", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, ov)
	if err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Fatalf("got %v, want overlay value 3", v)
	}
}

func TestResetRecursionDepthIsIdempotentAcrossCalls(t *testing.T) {
	ev, a, ctx := newFixture(t)
	root, err := parser.Parse("1 + 1", a)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		ev.ResetRecursionDepth()
		v, err := ev.Eval(root, a, ctx, nil)
		if err != nil || v != 2 {
			t.Fatalf("iteration %d: got %v, %v", i, v, err)
		}
	}
}

func TestNaNIsFalsyInShortCircuitButTruthyInTernary(t *testing.T) {
	ev, a, ctx := newFixture(t)
	if err := ctx.SetVariable("nanv", real.Real(math.NaN())); err != nil {
		t.Fatal(err)
	}
	root, err := parser.Parse("nanv && 1", a)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ev.Eval(root, a, ctx, nil)
	if err != nil || v != 0 {
		t.Fatalf("short-circuit NaN: got %v, %v, want 0", v, err)
	}

	root2, err := parser.Parse("nanv ? 10 : 20", a)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := ev.Eval(root2, a, ctx, nil)
	if err != nil || v2 != 10 {
		t.Fatalf("ternary NaN: got %v, %v, want 10 (NaN != 0 is true)", v2, err)
	}
}
