// Package parser implements the Pratt-style recursive-descent parser
// described in SPEC_FULL.md C3 / §4.2: it consumes lexer.Tokens and builds
// an AST of arena-owned ast.Nodes. The precedence-climbing structure and
// the cur/advance token-cursor idiom follow
// github.com/perbu/vclparser/pkg/parser's parseExpressionWithPrecedence,
// adapted to this grammar's fixed eleven precedence levels (spec §4.2)
// instead of a runtime precedence table, since this grammar has no
// user-extensible operator set.
package parser

import (
	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/ast"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/lexer"
	"github.com/perbu/expreval/pkg/real"
)

// Parser holds one token of lookahead (cur); advance() pulls the next
// token from the lexer. Every AST node it builds is allocated from arena.
type Parser struct {
	lex   *lexer.Lexer
	arena *arena.Arena
	cur   lexer.Token
}

func newParser(source string, a *arena.Arena) *Parser {
	p := &Parser{lex: lexer.New(source), arena: a}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.lex.NextToken()
}

// Parse parses a complete expression from source into nodes, allocating
// into a. It returns EmptyExpression for blank input and TrailingGarbage
// if tokens remain after a complete expression.
func Parse(source string, a *arena.Arena) (*ast.Node, error) {
	p := newParser(source, a)
	if p.cur.Type == lexer.EOF {
		return nil, evalerr.NewEmptyExpression()
	}
	node, err := p.parseSeq()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, evalerr.NewTrailingGarbage(p.cur.Start.Offset)
	}
	return node, nil
}

// parseExpr is the full "expr" production (level 1, sequence), used
// wherever the grammar embeds a nested full expression (parenthesized
// groups, array index subscripts).
func (p *Parser) parseExpr() (*ast.Node, error) {
	return p.parseSeq()
}

// --- Level 1: sequence ("," ";") ---

func (p *Parser) parseSeq() (*ast.Node, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.COMMA || p.cur.Type == lexer.SEMICOLON {
		p.advance()
		right, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		node, err := p.arena.Alloc(ast.Sequence)
		if err != nil {
			return nil, err
		}
		node.LHS, node.RHS = left, right
		left = node
	}
	return left, nil
}

// --- Level 2: ternary (right-associative) ---

func (p *Parser) parseTernary() (*ast.Node, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.QUESTION {
		return cond, nil
	}
	p.advance()
	thenExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.COLON {
		return nil, evalerr.NewUnexpectedToken(p.cur.Start.Offset, "':'")
	}
	p.advance()
	elseExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	node, err := p.arena.Alloc(ast.Ternary)
	if err != nil {
		return nil, err
	}
	node.Cond, node.Then, node.Else = cond, thenExpr, elseExpr
	return node, nil
}

// --- Level 3/4: logical || && (left-associative) ---

func (p *Parser) parseLogicalOr() (*ast.Node, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.OR {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		node, err := p.arena.Alloc(ast.LogicalOr)
		if err != nil {
			return nil, err
		}
		node.LHS, node.RHS = left, right
		left = node
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (*ast.Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.AND {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		node, err := p.arena.Alloc(ast.LogicalAnd)
		if err != nil {
			return nil, err
		}
		node.LHS, node.RHS = left, right
		left = node
	}
	return left, nil
}

// --- Level 5/6: equality, comparison (left-associative) ---

func (p *Parser) parseEquality() (*ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.EQ || p.cur.Type == lexer.NEQ {
		op := tokenToOp(p.cur.Type)
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left, err = p.binaryOp(op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseComparison() (*ast.Node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.LT || p.cur.Type == lexer.GT || p.cur.Type == lexer.LE || p.cur.Type == lexer.GE {
		op := tokenToOp(p.cur.Type)
		p.advance()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left, err = p.binaryOp(op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// --- Level 7/8: + - , * / % (left-associative) ---

func (p *Parser) parseAdd() (*ast.Node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		op := tokenToOp(p.cur.Type)
		p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left, err = p.binaryOp(op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseMul() (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.STAR || p.cur.Type == lexer.SLASH || p.cur.Type == lexer.PERCENT {
		op := tokenToOp(p.cur.Type)
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = p.binaryOp(op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// --- Level 10: unary + - (right-associative, chainable) ---
//
// Unary sits above ^ in the table (level 10 vs level 9), but that ranking
// describes binding strength against *, /, %, not against ^ itself: per
// §8's invariant `-2^2 == -4` / `(-2)^2 == 4`, exponentiation's left operand
// never includes a leading unary sign, while its right operand may (so the
// sign can still chain through a `^` chain). parseUnary is therefore the
// entry point callers above it use, and it falls through to parsePow (not
// the reverse) when no sign is present.

// parseUnary folds leading '+' away entirely (it is a no-op) instead of
// emitting an OpPos node, per §4.2's "folds chains without producing
// redundant no-op nodes when a + is leading".
func (p *Parser) parseUnary() (*ast.Node, error) {
	switch p.cur.Type {
	case lexer.PLUS:
		p.advance()
		return p.parseUnary()
	case lexer.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node, err := p.arena.Alloc(ast.UnaryOp)
		if err != nil {
			return nil, err
		}
		node.Op = ast.OpNeg
		node.Operand = operand
		return node, nil
	default:
		return p.parsePow()
	}
}

// --- Level 9: ^ (right-associative; its right operand may itself carry a
// leading unary sign, which is what makes `2^-2` and `2^-2^-2` parse) ---

func (p *Parser) parsePow() (*ast.Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.CARET {
		return left, nil
	}
	p.advance()
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.binaryOp(ast.OpPow, left, right)
}

// --- Level 11: call, index, attribute access, juxtaposition ---

func (p *Parser) parsePostfix() (*ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.cur.Type {
		case lexer.LPAREN:
			if node.Kind != ast.Variable {
				return nil, evalerr.NewUnexpectedToken(p.cur.Start.Offset, "operator")
			}
			name := node.Name
			args, err := p.parseArgList(lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			node, err = p.makeCall(name, args)
			if err != nil {
				return nil, err
			}
		case lexer.LBRACKET:
			if node.Kind != ast.Variable {
				return nil, evalerr.NewUnexpectedToken(p.cur.Start.Offset, "operator")
			}
			name := node.Name
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.cur.Type != lexer.RBRACKET {
				return nil, evalerr.NewUnmatchedParen(p.cur.Start.Offset)
			}
			p.advance()
			next, err := p.arena.Alloc(ast.ArrayIndex)
			if err != nil {
				return nil, err
			}
			next.Name = name
			next.IndexExpr = idx
			node = next
		case lexer.DOT:
			if node.Kind != ast.Variable {
				return nil, evalerr.NewUnexpectedToken(p.cur.Start.Offset, "operator")
			}
			object := node.Name
			p.advance()
			if p.cur.Type != lexer.IDENT {
				return nil, evalerr.NewUnexpectedToken(p.cur.Start.Offset, "identifier")
			}
			attr := p.cur.Value
			p.advance()
			next, err := p.arena.Alloc(ast.AttributeAccess)
			if err != nil {
				return nil, err
			}
			next.Name = object
			next.Attr = attr
			node = next
		case lexer.IDENT, lexer.NUMBER:
			// Juxtaposition call: "name arg" with no parens. Only a bare
			// identifier can be the callee; the single argument binds at
			// unary precedence so `sin 2 + 3` is sin(2) + 3, not sin(2+3).
			if node.Kind != ast.Variable {
				return node, nil
			}
			name := node.Name
			arg, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			node, err = p.makeCall(name, []*ast.Node{arg})
			if err != nil {
				return nil, err
			}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.NUMBER:
		v, err := real.Parse(tok.Value)
		if err != nil {
			return nil, evalerr.NewInvalidNumber(tok.Start.Offset)
		}
		p.advance()
		node, err := p.arena.Alloc(ast.Number)
		if err != nil {
			return nil, err
		}
		node.NumberValue = v
		node.Start, node.End = tok.Start, tok.End
		return node, nil
	case lexer.IDENT:
		p.advance()
		node, err := p.arena.Alloc(ast.Variable)
		if err != nil {
			return nil, err
		}
		node.Name = tok.Value
		node.Start, node.End = tok.Start, tok.End
		return node, nil
	case lexer.LPAREN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, evalerr.NewUnmatchedParen(p.cur.Start.Offset)
		}
		p.advance()
		return inner, nil
	case lexer.ILLEGAL:
		if tok.Malformed {
			return nil, evalerr.NewInvalidNumber(tok.Start.Offset)
		}
		return nil, evalerr.NewUnexpectedToken(tok.Start.Offset, "operand")
	default:
		return nil, evalerr.NewUnexpectedToken(tok.Start.Offset, "operand")
	}
}

// parseArgList parses a comma-separated list of ternary-level expressions
// up to close, assuming p.cur is the opening delimiter.
func (p *Parser) parseArgList(close lexer.TokenType) ([]*ast.Node, error) {
	p.advance()
	var args []*ast.Node
	if p.cur.Type == close {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != close {
		return nil, evalerr.NewUnmatchedParen(p.cur.Start.Offset)
	}
	p.advance()
	return args, nil
}

func (p *Parser) makeCall(name string, args []*ast.Node) (*ast.Node, error) {
	off, err := p.arena.AllocArgs(len(args))
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		p.arena.SetArg(off+i, a)
	}
	node, err := p.arena.Alloc(ast.FunctionCall)
	if err != nil {
		return nil, err
	}
	node.Name = name
	node.ArgsOff = off
	node.ArgsLen = len(args)
	return node, nil
}

func (p *Parser) binaryOp(op ast.Operator, lhs, rhs *ast.Node) (*ast.Node, error) {
	node, err := p.arena.Alloc(ast.BinaryOp)
	if err != nil {
		return nil, err
	}
	node.Op = op
	node.LHS, node.RHS = lhs, rhs
	return node, nil
}

func tokenToOp(t lexer.TokenType) ast.Operator {
	switch t {
	case lexer.PLUS:
		return ast.OpAdd
	case lexer.MINUS:
		return ast.OpSub
	case lexer.STAR:
		return ast.OpMul
	case lexer.SLASH:
		return ast.OpDiv
	case lexer.PERCENT:
		return ast.OpMod
	case lexer.CARET:
		return ast.OpPow
	case lexer.LT:
		return ast.OpLt
	case lexer.GT:
		return ast.OpGt
	case lexer.LE:
		return ast.OpLe
	case lexer.GE:
		return ast.OpGe
	case lexer.EQ:
		return ast.OpEq
	case lexer.NEQ:
		return ast.OpNeq
	default:
		return ast.OpAdd
	}
}
