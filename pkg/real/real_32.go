//go:build expreval32

// Package real defines the scalar floating-point type used for every
// numeric value in the evaluator. This build is compiled with the
// expreval32 build tag, selecting 32-bit precision.
package real

// Real is the configured scalar floating-point type.
type Real = float32

// Parse converts a decimal string to a Real, matching strconv.ParseFloat's
// accepted grammar.
func Parse(s string) (Real, error) {
	v, err := parseFloat(s, 32)
	return Real(v), err
}
