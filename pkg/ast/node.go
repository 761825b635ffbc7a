// Package ast defines the arena-owned AST produced by pkg/parser and walked
// by pkg/eval. Nodes are a single tagged struct rather than one Go type per
// kind so that pkg/arena can bump-allocate them from one flat slice.
package ast

import "github.com/perbu/expreval/pkg/lexer"
import "github.com/perbu/expreval/pkg/real"

// Kind tags the variant a Node represents.
type Kind int

const (
	Number Kind = iota
	Variable
	AttributeAccess
	ArrayIndex
	FunctionCall
	Ternary
	LogicalAnd
	LogicalOr
	Sequence
	BinaryOp
	UnaryOp
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Variable:
		return "Variable"
	case AttributeAccess:
		return "AttributeAccess"
	case ArrayIndex:
		return "ArrayIndex"
	case FunctionCall:
		return "FunctionCall"
	case Ternary:
		return "Ternary"
	case LogicalAnd:
		return "LogicalAnd"
	case LogicalOr:
		return "LogicalOr"
	case Sequence:
		return "Sequence"
	case BinaryOp:
		return "BinaryOp"
	case UnaryOp:
		return "UnaryOp"
	default:
		return "Unknown"
	}
}

// Operator identifies the concrete operator of a BinaryOp/UnaryOp node.
// Arithmetic and comparison operators are evaluated directly by the
// evaluator's ApplyBinOp/ApplyUnaryOp tasks rather than going through
// function-call dispatch. evalctx.NewDefault also registers the binary
// operators under their symbol, and unary minus as "neg", as native
// functions; the parser only emits calls to identifiers, so of these only
// "neg" can be called from expression syntax (`+(1,2)` parses as unary plus
// applied to a sequence), and the symbol entries are reachable through
// Context lookups only.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq
	OpNeg // unary -
	OpPos // unary +
)

// Symbol returns the operator's native-function registry name. OpPos maps
// to "pos", which the default registry does not define.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpPow:
		return "^"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpNeg:
		return "neg"
	case OpPos:
		return "pos"
	default:
		return "?"
	}
}

// Node is the single arena-owned AST node type. Which fields are meaningful
// is determined by Kind; unused fields are left zero. Child pointers live
// in the same arena as the parent (see pkg/arena) and are never mutated
// after parsing: an AST is read-only once built.
type Node struct {
	Kind  Kind
	Start lexer.Position
	End   lexer.Position

	// Number
	NumberValue real.Real

	// Variable: Name is the variable name.
	// AttributeAccess: Name is the object, Attr is the attribute.
	// ArrayIndex: Name is the array name, IndexExpr is the index expression.
	// FunctionCall: Name is the function name.
	Name string
	Attr string

	IndexExpr *Node

	// FunctionCall argument list: a slice of an arena-owned pointer pool,
	// addressed by offset/length rather than an owned []*Node so that the
	// arena remains the sole allocator.
	ArgsOff int
	ArgsLen int

	// Ternary
	Cond *Node
	Then *Node
	Else *Node

	// BinaryOp / LogicalAnd / LogicalOr / Sequence
	LHS *Node
	RHS *Node

	// UnaryOp
	Operand *Node

	// BinaryOp / UnaryOp
	Op Operator
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Kind.String()
}
