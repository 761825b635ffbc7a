// Package evalerr defines the error taxonomy shared by the lexer, parser,
// context, evaluator, and batch engine. Every failure the evaluator can
// produce is represented as a single *Error with a Kind, never a panic.
package evalerr

import "fmt"

// Kind enumerates the error categories the evaluator can return.
type Kind int

const (
	// Parse errors.
	UnexpectedToken Kind = iota
	UnmatchedParen
	TrailingGarbage
	EmptyExpression
	InvalidNumber
	InvalidIdentifier

	// Resolution errors.
	UnknownVariable
	UnknownFunction
	UnknownAttribute
	ArrayOutOfBounds

	// Arity errors.
	ArityMismatch

	// Capacity errors.
	CapacityExceeded

	// Runtime/host-boundary errors.
	InvalidUTF8
	AlreadyInitialized
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnmatchedParen:
		return "UnmatchedParen"
	case TrailingGarbage:
		return "TrailingGarbage"
	case EmptyExpression:
		return "EmptyExpression"
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case UnknownVariable:
		return "UnknownVariable"
	case UnknownFunction:
		return "UnknownFunction"
	case UnknownAttribute:
		return "UnknownAttribute"
	case ArrayOutOfBounds:
		return "ArrayOutOfBounds"
	case ArityMismatch:
		return "ArityMismatch"
	case CapacityExceeded:
		return "CapacityExceeded"
	case InvalidUTF8:
		return "InvalidUTF8"
	case AlreadyInitialized:
		return "AlreadyInitialized"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned anywhere in this module. Offset
// is a byte offset into the source (-1 when not applicable); Name/Resource
// identify the variable, function, attribute or capacity resource involved.
type Error struct {
	Kind     Kind
	Offset   int
	Name     string
	Object   string // AttributeAccess object name
	Resource string // CapacityExceeded resource label
	Index    int    // ArrayOutOfBounds index
	Expected int     // ArityMismatch expected arity
	Actual   int     // ArityMismatch actual arity
	Wanted   string  // UnexpectedToken expected-set description
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedToken:
		return fmt.Sprintf("unexpected token at offset %d (expected %s)", e.Offset, e.Wanted)
	case UnmatchedParen:
		return fmt.Sprintf("unmatched parenthesis at offset %d", e.Offset)
	case TrailingGarbage:
		return fmt.Sprintf("trailing garbage at offset %d", e.Offset)
	case EmptyExpression:
		return "empty expression"
	case InvalidNumber:
		return fmt.Sprintf("invalid number literal at offset %d", e.Offset)
	case InvalidIdentifier:
		return fmt.Sprintf("invalid identifier at offset %d", e.Offset)
	case UnknownVariable:
		return fmt.Sprintf("unknown variable %q", e.Name)
	case UnknownFunction:
		return fmt.Sprintf("unknown function %q", e.Name)
	case UnknownAttribute:
		return fmt.Sprintf("unknown attribute %s.%s", e.Object, e.Name)
	case ArrayOutOfBounds:
		return fmt.Sprintf("array %q index %d out of bounds", e.Name, e.Index)
	case ArityMismatch:
		return fmt.Sprintf("function %q expects %d argument(s), got %d", e.Name, e.Expected, e.Actual)
	case CapacityExceeded:
		return fmt.Sprintf("capacity exceeded: %s", e.Resource)
	case InvalidUTF8:
		return "invalid UTF-8 input"
	case AlreadyInitialized:
		return "already initialized"
	default:
		return "unknown evaluator error"
	}
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, evalerr.NewUnknownFunction("f")) or, more
// commonly, errors.Is(err, evalerr.Sentinel(evalerr.UnknownFunction)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel returns a bare *Error carrying only a Kind, suitable for
// errors.Is comparisons against a specific category of failure.
func Sentinel(k Kind) *Error { return &Error{Kind: k, Offset: -1} }

func NewUnexpectedToken(offset int, expected string) *Error {
	return &Error{Kind: UnexpectedToken, Offset: offset, Wanted: expected}
}

func NewUnmatchedParen(offset int) *Error {
	return &Error{Kind: UnmatchedParen, Offset: offset}
}

func NewTrailingGarbage(offset int) *Error {
	return &Error{Kind: TrailingGarbage, Offset: offset}
}

func NewEmptyExpression() *Error {
	return &Error{Kind: EmptyExpression, Offset: -1}
}

func NewInvalidNumber(offset int) *Error {
	return &Error{Kind: InvalidNumber, Offset: offset}
}

func NewInvalidIdentifier(offset int) *Error {
	return &Error{Kind: InvalidIdentifier, Offset: offset}
}

func NewUnknownVariable(name string) *Error {
	return &Error{Kind: UnknownVariable, Offset: -1, Name: name}
}

func NewUnknownFunction(name string) *Error {
	return &Error{Kind: UnknownFunction, Offset: -1, Name: name}
}

func NewUnknownAttribute(object, attr string) *Error {
	return &Error{Kind: UnknownAttribute, Offset: -1, Object: object, Name: attr}
}

func NewArrayOutOfBounds(name string, index int) *Error {
	return &Error{Kind: ArrayOutOfBounds, Offset: -1, Name: name, Index: index}
}

func NewArityMismatch(name string, expected, actual int) *Error {
	return &Error{Kind: ArityMismatch, Offset: -1, Name: name, Expected: expected, Actual: actual}
}

func NewCapacityExceeded(resource string) *Error {
	return &Error{Kind: CapacityExceeded, Offset: -1, Resource: resource}
}

func NewInvalidUTF8() *Error {
	return &Error{Kind: InvalidUTF8, Offset: -1}
}

func NewAlreadyInitialized() *Error {
	return &Error{Kind: AlreadyInitialized, Offset: -1}
}
