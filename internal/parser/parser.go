// Package parser implements Javalette's LALR-equivalent recursive
// descent parser: a token stream becomes an AST with every node
// positioned and every Reference unresolved (spec §3 invariants).
package parser

import (
	"fmt"

	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/lexer"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// Error is a fatal syntax error: the first one aborts parsing (spec
// §4.2).
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Pos, e.Message)
}

// Parser turns a token stream into an ast.Program.
type Parser struct {
	l   *lexer.Lexer
	cur token.Token
	peek token.Token
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// next advances cur/peek by one token, aborting on a lex error.
func (p *Parser) next() error {
	p.cur = p.peek
	tok, err := p.l.NextToken()
	if err != nil {
		return &Error{Pos: tok.Pos, Message: err.Error()}
	}
	p.peek = tok
	return nil
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.curIs(t) {
		return token.Token{}, &Error{Pos: p.cur.Pos, Message: fmt.Sprintf("expected %s, found %s %q", t, p.cur.Type, p.cur.Literal)}
	}
	tok := p.cur
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// isTypeKeyword reports whether t begins a type name.
func isTypeKeyword(t token.Type) bool {
	switch t {
	case token.INT_T, token.DOUBLE_T, token.BOOLEAN_T, token.STRING_T, token.VOID_T:
		return true
	default:
		return false
	}
}

func typeFromToken(t token.Token) types.Type {
	switch t.Type {
	case token.INT_T:
		return types.Int
	case token.DOUBLE_T:
		return types.Double
	case token.BOOLEAN_T:
		return types.Boolean
	case token.STRING_T:
		return types.String
	case token.VOID_T:
		return types.Void
	default:
		return nil
	}
}

// ParseProgram parses the whole token stream. On the first syntax
// error it aborts and returns that error (spec §4.2); there is no
// multi-error accumulation at this stage, unlike semantic analysis.
func ParseProgram(l *lexer.Lexer) (*ast.Program, error) {
	p := New(l)
	prog := &ast.Program{}

	for !p.curIs(token.EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	pos := p.cur.Pos
	if !isTypeKeyword(p.cur.Type) {
		return nil, &Error{Pos: p.cur.Pos, Message: fmt.Sprintf("expected return type, found %s %q", p.cur.Type, p.cur.Literal)}
	}
	retTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	retType := typeFromToken(retTok)

	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []*ast.Variable
	var argTypes []types.Type
	for !p.curIs(token.RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		if !isTypeKeyword(p.cur.Type) {
			return nil, &Error{Pos: p.cur.Pos, Message: fmt.Sprintf("expected parameter type, found %s %q", p.cur.Type, p.cur.Literal)}
		}
		pTypeTok := p.cur
		if err := p.next(); err != nil {
			return nil, err
		}
		pNameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		pt := typeFromToken(pTypeTok)
		params = append(params, &ast.Variable{Name: pNameTok.Literal, Decl: pt, PosV: pNameTok.Pos})
		argTypes = append(argTypes, pt)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	// Prepend the implicit Argv declaration (spec §3: "an implicit
	// Argv declaration is prepended to the body"), with no source
	// position.
	argv := &ast.Variable{Name: "Argv", Decl: types.String, Argv: true}
	body.Stmts = append([]ast.Stmt{ast.NewDeclaration(token.Position{}, []*ast.Variable{argv})}, body.Stmts...)

	return &ast.Function{
		Name:   nameTok.Literal,
		Sig:    &types.Function{Return: retType, Args: argTypes},
		Params: params,
		Body:   body,
		PosV:   pos,
	}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{PosV: lbrace.Pos}
	for !p.curIs(token.RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch {
	case isTypeKeyword(p.cur.Type):
		return p.parseDeclaration()
	case p.curIs(token.LBRACE):
		return p.parseBlock()
	case p.curIs(token.IF):
		return p.parseIf()
	case p.curIs(token.WHILE):
		return p.parseWhile()
	case p.curIs(token.FOR):
		return p.parseFor()
	case p.curIs(token.RETURN):
		return p.parseReturn()
	default:
		return p.parseEvaluation()
	}
}

// parseDeclaration parses "T x [= e] (, x [= e])* ;" (spec §4.2).
func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	pos := p.cur.Pos
	typTok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	declType := typeFromToken(typTok)

	var vars []*ast.Variable
	for {
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		v := &ast.Variable{Name: nameTok.Literal, Decl: declType, PosV: nameTok.Pos}
		if p.curIs(token.ASSIGN) {
			if err := p.next(); err != nil {
				return nil, err
			}
			init, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			v.Init = init
		}
		vars = append(vars, v)
		if p.curIs(token.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewDeclaration(pos, vars), nil
}

func (p *Parser) parseEvaluation() (ast.Stmt, error) {
	pos := p.cur.Pos
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewEvaluation(pos, expr), nil
}

// parseIf resolves dangling-else by right-associative precedence on
// ELSE (spec §4.2): each `if` greedily consumes the next `else`.
func (p *Parser) parseIf() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.curIs(token.ELSE) {
		if err := p.next(); err != nil {
			return nil, err
		}
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfThenElse(pos, cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileLoop(pos, cond, body, nil), nil
}

// parseFor desugars `for (init; cond; post) body` to
// `{ init; while (cond) finally: post; body }` (spec §4.2).
func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var initStmt ast.Stmt
	var err error
	if isTypeKeyword(p.cur.Type) {
		initStmt, err = p.parseDeclaration()
	} else {
		initPos := p.cur.Pos
		var initExpr ast.Expr
		initExpr, err = p.parseExpr()
		if err == nil {
			if _, serr := p.expect(token.SEMICOLON); serr != nil {
				err = serr
			} else {
				initStmt = ast.NewEvaluation(initPos, initExpr)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	postPos := p.cur.Pos
	postExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	finally := &ast.Block{PosV: postPos, Stmts: []ast.Stmt{ast.NewEvaluation(postPos, postExpr)}}
	loop := ast.NewWhileLoop(pos, cond, body, finally)

	return &ast.Block{PosV: pos, Stmts: []ast.Stmt{initStmt, loop}}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.curIs(token.SEMICOLON) {
		if err := p.next(); err != nil {
			return nil, err
		}
		return ast.NewReturn(pos, nil), nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewReturn(pos, expr), nil
}
