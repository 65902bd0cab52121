package parser

import (
	"fmt"
	"strconv"

	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// parseExpr is the entry point of the precedence hierarchy (spec
// §4.2): or > and > equality > relational > additive > multiplicative
// > unary > cast > postfix > primary. Assignment binds looser than
// `or` since it is only legal as a statement-level construct or
// nested rvalue, and is recognized here by lookahead on `=` after a
// bare identifier.
func (p *Parser) parseExpr() (ast.Expr, error) {
	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		return p.parseAssignment()
	}
	return p.parseOr()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	nameTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	target := ast.NewReference(nameTok.Pos, nameTok.Literal)
	return ast.NewAssignment(nameTok.Pos, target, value), nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, token.OR, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, token.AND, left, right)
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.EQ) || p.curIs(token.NOT_EQ) {
		op := p.cur.Type
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.LESS) || p.curIs(token.LESS_EQ) || p.curIs(token.GREATER) || p.curIs(token.GREATER_EQ) {
		op := p.cur.Type
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := p.cur.Type
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) || p.curIs(token.PERCENT) {
		op := p.cur.Type
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(pos, op, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.curIs(token.NOT) || p.curIs(token.MINUS) || p.curIs(token.PLUS) {
		op := p.cur.Type
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(pos, op, operand), nil
	}
	return p.parseCast()
}

// parseCast recognizes "(T) expr" by lookahead: '(' followed by a
// type keyword followed by ')' is a cast, otherwise it falls through
// to postfix/primary (which itself handles parenthesized
// sub-expressions).
func (p *Parser) parseCast() (ast.Expr, error) {
	if p.curIs(token.LPAREN) && isTypeKeyword(p.peek.Type) {
		pos := p.cur.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		typTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		if !p.curIs(token.RPAREN) {
			return nil, &Error{Pos: p.cur.Pos, Message: "expected ')' to close cast"}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return ast.NewCast(pos, typeFromToken(typTok), operand), nil
	}
	return p.parsePostfix()
}

// parsePostfix desugars `x++`/`x--` to `x = x + 1`/`x = x - 1` with a
// literal Int 1 (spec §4.2), and parses call-argument lists.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.curIs(token.INC) || p.curIs(token.DEC):
			ref, ok := expr.(*ast.Reference)
			if !ok {
				return nil, &Error{Pos: p.cur.Pos, Message: "++/-- require an lvalue"}
			}
			op := token.PLUS
			if p.curIs(token.DEC) {
				op = token.MINUS
			}
			pos := p.cur.Pos
			if err := p.next(); err != nil {
				return nil, err
			}
			one := ast.NewConst(pos, int64(1), types.Int)
			sum := ast.NewBinaryOp(pos, op, ast.NewReference(ref.Pos(), ref.Name), one)
			expr = ast.NewAssignment(pos, ast.NewReference(ref.Pos(), ref.Name), sum)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	switch tok.Type {
	case token.INT:
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Pos: tok.Pos, Message: fmt.Sprintf("invalid integer literal %q", tok.Literal)}
		}
		return ast.NewConst(tok.Pos, v, types.Int), nil
	case token.DOUBLE:
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &Error{Pos: tok.Pos, Message: fmt.Sprintf("invalid double literal %q", tok.Literal)}
		}
		return ast.NewConst(tok.Pos, v, types.Double), nil
	case token.TRUE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewConst(tok.Pos, true, types.Boolean), nil
	case token.FALSE:
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewConst(tok.Pos, false, types.Boolean), nil
	case token.STRING:
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewConst(tok.Pos, tok.Literal, types.String), nil
	case token.IDENT:
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.curIs(token.LPAREN) {
			return p.parseCall(tok)
		}
		return ast.NewReference(tok.Pos, tok.Literal), nil
	case token.LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, &Error{Pos: tok.Pos, Message: fmt.Sprintf("unexpected token %s %q", tok.Type, tok.Literal)}
	}
}

func (p *Parser) parseCall(nameTok token.Token) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.curIs(token.RPAREN) {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	callee := ast.NewReference(nameTok.Pos, nameTok.Literal)
	return ast.NewCall(nameTok.Pos, callee, args), nil
}
