// Package ast defines the Javalette abstract syntax tree: a single
// polymorphic Node hierarchy shared, unmodified, by both code
// generators (spec §3/§9). Semantic analysis and code generation live
// in their own packages and pattern-match on these node types rather
// than attaching behavior methods here — see semantic and bytecode/x86.
package ast

import (
	"fmt"
	"strings"

	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// Node is implemented by every AST node: expressions, statements, and
// declarations alike.
type Node interface {
	Pos() token.Position
	String() string
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

// Stmt is any node that performs an action but yields no value.
type Stmt interface {
	Node
	stmtNode()
}

// baseExpr factors the position/type bookkeeping shared by every
// expression variant.
type baseExpr struct {
	pos token.Position
	typ types.Type
}

func (b *baseExpr) Pos() token.Position  { return b.pos }
func (b *baseExpr) Type() types.Type     { return b.typ }
func (b *baseExpr) SetType(t types.Type) { b.typ = t }
func (*baseExpr) exprNode()              {}

type baseStmt struct {
	pos token.Position
}

func (b *baseStmt) Pos() token.Position { return b.pos }
func (*baseStmt) stmtNode()             {}

// ---------------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------------

// Program is the root node: an ordered sequence of top-level function
// declarations, plus the source filename recorded after parsing
// (used as the module filename in emitted bytecode, spec §6).
type Program struct {
	Functions []*Function
	Filename  string
}

func (p *Program) Pos() token.Position { return token.Position{} }

func (p *Program) String() string {
	var sb strings.Builder
	for i, f := range p.Functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Variable is a name/type binding: a function parameter or a local
// declared by a Declaration statement. ID is assigned by semantic
// analysis and is the local slot name used by both backends.
type Variable struct {
	Name string
	Decl types.Type // declared type (types.String for the implicit Argv)
	Init Expr       // optional initializer, nil for parameters/Argv
	PosV token.Position

	ID   int // unique id, assigned by semantic analysis
	Argv bool
}

func (v *Variable) Pos() token.Position { return v.PosV }

func (v *Variable) String() string {
	s := v.Decl.String() + " " + v.Name
	if v.Init != nil {
		s += " = " + v.Init.String()
	}
	return s
}

// Function is a top-level declaration: name, signature, formal
// parameters, and a body with an implicit Argv variable prepended
// (spec §3).
type Function struct {
	Name    string
	Sig     *types.Function
	Params  []*Variable
	Body    *Block
	PosV    token.Position
	IsBuiltin bool
}

func (f *Function) Pos() token.Position { return f.PosV }

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Sig.Return.String())
	sb.WriteString(" ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Decl.String())
		sb.WriteString(" ")
		sb.WriteString(p.Name)
	}
	sb.WriteString(") ")
	sb.WriteString(f.Body.String())
	return sb.String()
}

// Block is an ordered sequence of statements. Entering a Block pushes
// a fresh name-resolution scope (spec §3 Scoping).
type Block struct {
	Stmts []Stmt
	PosV  token.Position
}

func (b *Block) Pos() token.Position { return b.PosV }
func (*Block) stmtNode()             {}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		for _, line := range strings.Split(s.String(), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Declaration introduces one or more variables of the same declared
// type within the current block.
type Declaration struct {
	baseStmt
	Vars []*Variable
}

func (d *Declaration) String() string {
	if len(d.Vars) == 0 {
		return ";"
	}
	parts := make([]string, len(d.Vars))
	for i, v := range d.Vars {
		if v.Init != nil {
			parts[i] = v.Name + " = " + v.Init.String()
		} else {
			parts[i] = v.Name
		}
	}
	return d.Vars[0].Decl.String() + " " + strings.Join(parts, ", ") + ";"
}

// NewDeclaration builds a Declaration at pos.
func NewDeclaration(pos token.Position, vars []*Variable) *Declaration {
	d := &Declaration{Vars: vars}
	d.pos = pos
	return d
}

// Evaluation is an expression evaluated for effect, its result
// discarded.
type Evaluation struct {
	baseStmt
	Expr Expr
}

func (e *Evaluation) String() string { return e.Expr.String() + ";" }

// NewEvaluation builds an Evaluation at pos.
func NewEvaluation(pos token.Position, expr Expr) *Evaluation {
	e := &Evaluation{Expr: expr}
	e.pos = pos
	return e
}

// IfThenElse is `if (Cond) Then else Else`; Else is nil when absent.
type IfThenElse struct {
	baseStmt
	Cond Expr
	Then Stmt
	Else Stmt
}

func (i *IfThenElse) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// NewIfThenElse builds an IfThenElse at pos.
func NewIfThenElse(pos token.Position, cond Expr, then, els Stmt) *IfThenElse {
	i := &IfThenElse{Cond: cond, Then: then, Else: els}
	i.pos = pos
	return i
}

// WhileLoop is a while loop, optionally carrying a Finally block
// (spec §4.2/§4.5/glossary): the per-iteration post-statement used to
// desugar `for`, run after Body and before the next Cond test.
type WhileLoop struct {
	baseStmt
	Cond    Expr
	Body    Stmt
	Finally *Block // nil unless desugared from a `for`
}

func (w *WhileLoop) String() string {
	s := "while (" + w.Cond.String() + ") "
	if w.Finally != nil {
		s += "finally: " + w.Finally.String() + " "
	}
	return s + w.Body.String()
}

// NewWhileLoop builds a WhileLoop at pos.
func NewWhileLoop(pos token.Position, cond Expr, body Stmt, finally *Block) *WhileLoop {
	w := &WhileLoop{Cond: cond, Body: body, Finally: finally}
	w.pos = pos
	return w
}

// Return is `return;` or `return Expr;`. Function is set by semantic
// analysis to the enclosing function (needed for return-type
// checking).
type Return struct {
	baseStmt
	Expr     Expr // nil for a bare `return;`
	Function *Function
}

func (r *Return) String() string {
	if r.Expr == nil {
		return "return;"
	}
	return "return " + r.Expr.String() + ";"
}

// NewReturn builds a Return at pos.
func NewReturn(pos token.Position, expr Expr) *Return {
	r := &Return{Expr: expr}
	r.pos = pos
	return r
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Const is a literal int, double, boolean, or string value.
type Const struct {
	baseExpr
	Value interface{} // int64, float64, bool, or string
}

func NewConst(pos token.Position, value interface{}, t types.Type) *Const {
	c := &Const{Value: value}
	c.pos, c.typ = pos, t
	return c
}

func (c *Const) String() string {
	switch v := c.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Reference is an identifier use. Bind is nil until semantic analysis
// resolves it to the enclosing Variable (or the callee Function, for
// a Call's callee).
type Reference struct {
	baseExpr
	Name string
	Bind *Variable
	Func *Function // set instead of Bind when the reference names a function
}

func NewReference(pos token.Position, name string) *Reference {
	r := &Reference{Name: name}
	r.pos = pos
	return r
}

func (r *Reference) String() string { return r.Name }

// UnaryOp is a prefix `!`, `+`, or `-` applied to Operand.
type UnaryOp struct {
	baseExpr
	Op      token.Type
	Operand Expr
}

func (u *UnaryOp) String() string {
	return "(" + opLiteral(u.Op) + u.Operand.String() + ")"
}

// NewUnaryOp builds a UnaryOp at pos; its Type is set later by
// semantic analysis.
func NewUnaryOp(pos token.Position, op token.Type, operand Expr) *UnaryOp {
	u := &UnaryOp{Op: op, Operand: operand}
	u.pos = pos
	return u
}

// BinaryOp is any of the arithmetic, relational, equality, or logical
// operators applied to Left and Right.
type BinaryOp struct {
	baseExpr
	Op    token.Type
	Left  Expr
	Right Expr
}

func (b *BinaryOp) String() string {
	return "(" + b.Left.String() + " " + opLiteral(b.Op) + " " + b.Right.String() + ")"
}

// NewBinaryOp builds a BinaryOp at pos; its Type is set later by
// semantic analysis.
func NewBinaryOp(pos token.Position, op token.Type, left, right Expr) *BinaryOp {
	b := &BinaryOp{Op: op, Left: left, Right: right}
	b.pos = pos
	return b
}

// Cast is `(T) Operand`.
type Cast struct {
	baseExpr
	Target   types.Type
	Operand  Expr
}

func (c *Cast) String() string {
	return "(" + c.Target.String() + ")" + c.Operand.String()
}

// NewCast builds a Cast at pos with its target type already known
// (the cast's own Type equals Target once validated).
func NewCast(pos token.Position, target types.Type, operand Expr) *Cast {
	c := &Cast{Target: target, Operand: operand}
	c.pos = pos
	return c
}

// Call is a function call; Callee is always a Reference to a
// function (spec §3).
type Call struct {
	baseExpr
	Callee *Reference
	Args   []Expr
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee.Name + "(" + strings.Join(parts, ", ") + ")"
}

// NewCall builds a Call at pos.
func NewCall(pos token.Position, callee *Reference, args []Expr) *Call {
	c := &Call{Callee: callee, Args: args}
	c.pos = pos
	return c
}

// Assignment is `lvalue = rvalue`; as an expression it yields the
// assigned value, so it may be used in expression position as well
// as at statement position (spec §4.3).
type Assignment struct {
	baseExpr
	Target *Reference
	Value  Expr
}

func (a *Assignment) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// NewAssignment builds an Assignment at pos.
func NewAssignment(pos token.Position, target *Reference, value Expr) *Assignment {
	a := &Assignment{Target: target, Value: value}
	a.pos = pos
	return a
}

func opLiteral(t token.Type) string {
	return t.String()
}
