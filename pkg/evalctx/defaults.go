package evalctx

import (
	"math"

	"github.com/perbu/expreval/pkg/real"
)

// registerDefaults pre-registers the predefined function registry from
// SPEC_FULL.md §6. Binary/unary arithmetic and comparison operators are
// evaluated directly by pkg/eval's ApplyBinOp/ApplyUnaryOp tasks when
// parsed as infix/prefix syntax; they are also registered here by their
// operator symbol. The parser only turns identifiers into calls, so the
// symbol-named entries are reachable through LookupNativeFunction, not from
// expression syntax (`+(1,2)` is unary plus over a sequence); "neg" and
// "comma" are callable by name. abs/min/max/sign are always available;
// sqrt/floor/ceil/round and the transcendental functions are gated behind
// LibmAvailable, matching §6's "host must register them" fallback.
func registerDefaults(c *Context) {
	must := func(err error) {
		if err != nil {
			panic("evalctx: default registration exceeded a capacity limit: " + err.Error())
		}
	}

	must(c.SetVariable("pi", real.Real(math.Pi)))
	must(c.SetVariable("e", real.Real(math.E)))

	arity2 := func(name string, fn func(a, b real.Real) real.Real) {
		must(c.RegisterNativeFunction(name, 2, func(args []real.Real) real.Real {
			return fn(args[0], args[1])
		}, name))
	}
	arity1 := func(name string, fn func(a real.Real) real.Real) {
		must(c.RegisterNativeFunction(name, 1, func(args []real.Real) real.Real {
			return fn(args[0])
		}, name))
	}

	arity2("+", func(a, b real.Real) real.Real { return a + b })
	arity2("-", func(a, b real.Real) real.Real { return a - b })
	arity2("*", func(a, b real.Real) real.Real { return a * b })
	arity2("/", func(a, b real.Real) real.Real { return a / b })
	arity2("%", func(a, b real.Real) real.Real { return real.Real(math.Mod(float64(a), float64(b))) })
	arity2("^", func(a, b real.Real) real.Real { return real.Real(math.Pow(float64(a), float64(b))) })
	arity1("neg", func(a real.Real) real.Real { return -a })

	arity2(",", func(a, b real.Real) real.Real { return b })
	must(c.RegisterNativeFunction("comma", 2, func(args []real.Real) real.Real {
		return args[1]
	}, "comma"))

	boolOf := func(v bool) real.Real {
		if v {
			return 1.0
		}
		return 0.0
	}
	arity2("<", func(a, b real.Real) real.Real { return boolOf(a < b) })
	arity2(">", func(a, b real.Real) real.Real { return boolOf(a > b) })
	arity2("<=", func(a, b real.Real) real.Real { return boolOf(a <= b) })
	arity2(">=", func(a, b real.Real) real.Real { return boolOf(a >= b) })
	arity2("==", func(a, b real.Real) real.Real { return boolOf(a == b) })
	arity2("!=", func(a, b real.Real) real.Real { return boolOf(a != b) })

	arity1("abs", func(a real.Real) real.Real { return real.Real(math.Abs(float64(a))) })
	arity2("min", func(a, b real.Real) real.Real { return real.Real(math.Min(float64(a), float64(b))) })
	arity2("max", func(a, b real.Real) real.Real { return real.Real(math.Max(float64(a), float64(b))) })
	arity1("sign", func(a real.Real) real.Real {
		switch {
		case a > 0:
			return 1.0
		case a < 0:
			return -1.0
		default:
			return 0.0
		}
	})

	if !c.limits.LibmAvailable {
		return
	}

	arity1("sqrt", func(a real.Real) real.Real { return real.Real(math.Sqrt(float64(a))) })
	arity1("floor", func(a real.Real) real.Real { return real.Real(math.Floor(float64(a))) })
	arity1("ceil", func(a real.Real) real.Real { return real.Real(math.Ceil(float64(a))) })
	arity1("round", func(a real.Real) real.Real { return real.Real(math.Round(float64(a))) })
	arity1("sin", func(a real.Real) real.Real { return real.Real(math.Sin(float64(a))) })
	arity1("cos", func(a real.Real) real.Real { return real.Real(math.Cos(float64(a))) })
	arity1("tan", func(a real.Real) real.Real { return real.Real(math.Tan(float64(a))) })
	arity1("asin", func(a real.Real) real.Real { return real.Real(math.Asin(float64(a))) })
	arity1("acos", func(a real.Real) real.Real { return real.Real(math.Acos(float64(a))) })
	arity1("atan", func(a real.Real) real.Real { return real.Real(math.Atan(float64(a))) })
	arity2("atan2", func(a, b real.Real) real.Real { return real.Real(math.Atan2(float64(a), float64(b))) })
	arity1("sinh", func(a real.Real) real.Real { return real.Real(math.Sinh(float64(a))) })
	arity1("cosh", func(a real.Real) real.Real { return real.Real(math.Cosh(float64(a))) })
	arity1("tanh", func(a real.Real) real.Real { return real.Real(math.Tanh(float64(a))) })
	arity1("exp", func(a real.Real) real.Real { return real.Real(math.Exp(float64(a))) })
	arity1("log", func(a real.Real) real.Real { return real.Real(math.Log(float64(a))) })
	arity1("ln", func(a real.Real) real.Real { return real.Real(math.Log(float64(a))) })
	arity1("log10", func(a real.Real) real.Real { return real.Real(math.Log10(float64(a))) })
	arity2("pow", func(a, b real.Real) real.Real { return real.Real(math.Pow(float64(a), float64(b))) })
	arity2("fmod", func(a, b real.Real) real.Real { return real.Real(math.Mod(float64(a), float64(b))) })
}
