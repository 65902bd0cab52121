package semantic

import (
	"strconv"

	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/diag"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// validateFunction runs Pass C over a single function: type checking,
// returns-on-every-path, and use-before-assignment (spec §4.3 Pass C).
func (a *Analyzer) validateFunction(fn *ast.Function) {
	a.currentFunction = fn

	if fn.Name == "main" {
		if fn.Sig.Return != types.Int || len(fn.Sig.Args) != 0 {
			a.diags.Add(diag.TypeMismatch, fn.Pos(), "\"main\" must have type () -> int")
		}
	}

	for _, stmt := range fn.Body.Stmts {
		a.checkStmt(stmt)
	}

	if fn.Sig.Return != types.Void && !blockReturns(fn.Body) {
		a.diags.Add(diag.MissingReturn, fn.Pos(), "function \""+fn.Name+"\" does not return on every path")
	}

	fs := newFlowState()
	for _, p := range fn.Params {
		fs.assign(p.ID)
	}
	if d, ok := fn.Body.Stmts[0].(*ast.Declaration); ok && len(d.Vars) == 1 && d.Vars[0].Argv {
		fs.assign(d.Vars[0].ID)
	}
	for _, stmt := range fn.Body.Stmts {
		a.checkFlowStmt(stmt, fs)
	}
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

func (a *Analyzer) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Block:
		for _, stmt := range st.Stmts {
			a.checkStmt(stmt)
		}
	case *ast.Declaration:
		for _, v := range st.Vars {
			if v.Init == nil {
				continue
			}
			t := a.checkExpr(v.Init)
			if t != nil && v.Decl != nil && !t.Equals(v.Decl) {
				a.diags.Add(diag.TypeMismatch, v.Init.Pos(), "cannot initialize \""+v.Name+"\" ("+v.Decl.String()+") with "+t.String())
			}
		}
	case *ast.Evaluation:
		t := a.checkExpr(st.Expr)
		if t == nil {
			return
		}
		if _, isAssign := st.Expr.(*ast.Assignment); isAssign {
			return
		}
		if t != types.Void {
			a.diags.Add(diag.TypeMismatch, st.Expr.Pos(), "result of this expression is discarded")
		}
	case *ast.IfThenElse:
		a.checkCondition(st.Cond)
		a.checkStmt(st.Then)
		if st.Else != nil {
			a.checkStmt(st.Else)
		}
	case *ast.WhileLoop:
		a.checkCondition(st.Cond)
		a.checkStmt(st.Body)
		if st.Finally != nil {
			for _, stmt := range st.Finally.Stmts {
				a.checkStmt(stmt)
			}
		}
	case *ast.Return:
		a.checkReturn(st)
	}
}

func (a *Analyzer) checkCondition(cond ast.Expr) {
	t := a.checkExpr(cond)
	if t != nil && t != types.Boolean {
		a.diags.Add(diag.TypeMismatch, cond.Pos(), "condition must be boolean, found "+t.String())
	}
}

func (a *Analyzer) checkReturn(r *ast.Return) {
	ret := a.currentFunction.Sig.Return
	if ret == types.Void {
		if r.Expr != nil {
			a.diags.Add(diag.TypeMismatch, r.Pos(), "function \""+a.currentFunction.Name+"\" is void and cannot return a value")
		}
		return
	}
	if r.Expr == nil {
		a.diags.Add(diag.TypeMismatch, r.Pos(), "function \""+a.currentFunction.Name+"\" must return a value")
		return
	}
	t := a.checkExpr(r.Expr)
	if t != nil && !t.Equals(ret) {
		a.diags.Add(diag.TypeMismatch, r.Expr.Pos(), "returned "+t.String()+", expected "+ret.String())
	}
}

// checkExpr computes and sets e's type, leaving it nil on a mismatch
// (spec §4.3 Pass C: "the expression's type is left null and an error
// is emitted").
func (a *Analyzer) checkExpr(e ast.Expr) types.Type {
	switch ex := e.(type) {
	case *ast.Const:
		return ex.Type()
	case *ast.Reference:
		if ex.Bind == nil {
			return nil
		}
		ex.SetType(ex.Bind.Decl)
		return ex.Bind.Decl
	case *ast.UnaryOp:
		return a.checkUnary(ex)
	case *ast.BinaryOp:
		return a.checkBinary(ex)
	case *ast.Cast:
		return a.checkCast(ex)
	case *ast.Call:
		return a.checkCall(ex)
	case *ast.Assignment:
		return a.checkAssignment(ex)
	}
	return nil
}

func (a *Analyzer) checkUnary(u *ast.UnaryOp) types.Type {
	t := a.checkExpr(u.Operand)
	if t == nil {
		return nil
	}
	switch u.Op {
	case token.NOT:
		if t != types.Boolean {
			a.diags.Add(diag.TypeMismatch, u.Pos(), "operand of ! must be boolean, found "+t.String())
			return nil
		}
		u.SetType(types.Boolean)
		return types.Boolean
	case token.PLUS, token.MINUS:
		if !t.IsNumeric() {
			a.diags.Add(diag.TypeMismatch, u.Pos(), "operand of unary "+u.Op.String()+" must be numeric, found "+t.String())
			return nil
		}
		u.SetType(t)
		return t
	}
	return nil
}

func (a *Analyzer) checkBinary(b *ast.BinaryOp) types.Type {
	lt := a.checkExpr(b.Left)
	rt := a.checkExpr(b.Right)
	if lt == nil || rt == nil {
		return nil
	}
	switch b.Op {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT:
		if !lt.IsNumeric() || !rt.IsNumeric() || !lt.Equals(rt) {
			a.diags.Add(diag.TypeMismatch, b.Pos(), "operands of \""+b.Op.String()+"\" must share a numeric type, found "+lt.String()+" and "+rt.String())
			return nil
		}
		b.SetType(lt)
		return lt
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		if !lt.IsIneqComparable() || !rt.IsIneqComparable() || !lt.Equals(rt) {
			a.diags.Add(diag.TypeMismatch, b.Pos(), "operands of \""+b.Op.String()+"\" must share an inequality-comparable type, found "+lt.String()+" and "+rt.String())
			return nil
		}
		b.SetType(types.Boolean)
		return types.Boolean
	case token.EQ, token.NOT_EQ:
		if !lt.IsEqComparable() || !rt.IsEqComparable() || !lt.Equals(rt) {
			a.diags.Add(diag.TypeMismatch, b.Pos(), "operands of \""+b.Op.String()+"\" must share an equality-comparable type, found "+lt.String()+" and "+rt.String())
			return nil
		}
		b.SetType(types.Boolean)
		return types.Boolean
	case token.AND, token.OR:
		if lt != types.Boolean || rt != types.Boolean {
			a.diags.Add(diag.TypeMismatch, b.Pos(), "operands of \""+b.Op.String()+"\" must be boolean, found "+lt.String()+" and "+rt.String())
			return nil
		}
		b.SetType(types.Boolean)
		return types.Boolean
	}
	return nil
}

func (a *Analyzer) checkCast(c *ast.Cast) types.Type {
	t := a.checkExpr(c.Operand)
	if t == nil {
		return nil
	}
	if !t.IsCastableTo(c.Target) {
		a.diags.Add(diag.TypeMismatch, c.Pos(), "cannot cast "+t.String()+" to "+c.Target.String())
		return nil
	}
	c.SetType(c.Target)
	return c.Target
}

func (a *Analyzer) checkCall(c *ast.Call) types.Type {
	if c.Callee.Func == nil {
		return nil
	}
	sig := c.Callee.Func.Sig
	if len(c.Args) != len(sig.Args) {
		a.diags.Add(diag.ArityMismatch, c.Pos(), "\""+c.Callee.Name+"\" expects "+strconv.Itoa(len(sig.Args))+" argument(s), found "+strconv.Itoa(len(c.Args)))
	}
	for i, arg := range c.Args {
		t := a.checkExpr(arg)
		if t == nil || i >= len(sig.Args) {
			continue
		}
		if !t.Equals(sig.Args[i]) {
			a.diags.Add(diag.TypeMismatch, arg.Pos(), "argument "+strconv.Itoa(i+1)+" of \""+c.Callee.Name+"\" expects "+sig.Args[i].String()+", found "+t.String())
		}
	}
	c.SetType(sig.Return)
	return sig.Return
}

func (a *Analyzer) checkAssignment(asn *ast.Assignment) types.Type {
	valType := a.checkExpr(asn.Value)
	if asn.Target.Bind == nil {
		return nil
	}
	targetType := asn.Target.Bind.Decl
	asn.Target.SetType(targetType)
	if valType == nil {
		return nil
	}
	if !valType.Equals(targetType) {
		a.diags.Add(diag.TypeMismatch, asn.Pos(), "cannot assign "+valType.String()+" to \""+asn.Target.Name+"\" ("+targetType.String()+")")
		return nil
	}
	asn.SetType(targetType)
	return targetType
}

// ---------------------------------------------------------------------------
// Returns-on-every-path
// ---------------------------------------------------------------------------

func blockReturns(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockReturns(st)
	case *ast.IfThenElse:
		return st.Else != nil && stmtReturns(st.Then) && stmtReturns(st.Else)
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Use-before-assignment
// ---------------------------------------------------------------------------

// flowState tracks, per function, the variables definitely assigned
// on every path reaching this point (lsv) and the variables ever
// referenced (rsv) — spec §4.3 Pass C.
type flowState struct {
	lsv map[int]bool
	rsv map[int]bool
}

func newFlowState() *flowState {
	return &flowState{lsv: make(map[int]bool), rsv: make(map[int]bool)}
}

func (fs *flowState) clone() *flowState {
	n := newFlowState()
	for id := range fs.lsv {
		n.lsv[id] = true
	}
	for id := range fs.rsv {
		n.rsv[id] = true
	}
	return n
}

func (fs *flowState) assign(id int) { fs.lsv[id] = true }
func (fs *flowState) use(id int)    { fs.rsv[id] = true }

// intersectLsv replaces fs's lsv with the intersection of a and b,
// the merge rule spec §4.3 mandates at an IfThenElse.
func (fs *flowState) intersectLsv(a, b *flowState) {
	fs.lsv = make(map[int]bool)
	for id := range a.lsv {
		if b.lsv[id] {
			fs.lsv[id] = true
		}
	}
}

func (a *Analyzer) checkFlowStmt(s ast.Stmt, fs *flowState) {
	switch st := s.(type) {
	case *ast.Block:
		for _, stmt := range st.Stmts {
			a.checkFlowStmt(stmt, fs)
		}
	case *ast.Declaration:
		for _, v := range st.Vars {
			if v.Init != nil {
				a.checkFlowExpr(v.Init, fs)
				fs.assign(v.ID)
			}
		}
	case *ast.Evaluation:
		a.checkFlowExpr(st.Expr, fs)
	case *ast.IfThenElse:
		a.checkFlowExpr(st.Cond, fs)
		thenFs := fs.clone()
		a.checkFlowStmt(st.Then, thenFs)
		elseFs := fs.clone()
		if st.Else != nil {
			a.checkFlowStmt(st.Else, elseFs)
		}
		fs.intersectLsv(thenFs, elseFs)
	case *ast.WhileLoop:
		a.checkFlowExpr(st.Cond, fs)
		bodyFs := fs.clone()
		a.checkFlowStmt(st.Body, bodyFs)
		if st.Finally != nil {
			for _, stmt := range st.Finally.Stmts {
				a.checkFlowStmt(stmt, bodyFs)
			}
		}
		// Pre-loop lsv only: assignments made solely inside the loop
		// are not considered definite after it (spec §4.3 Pass C).
	case *ast.Return:
		if st.Expr != nil {
			a.checkFlowExpr(st.Expr, fs)
		}
	}
}

func (a *Analyzer) checkFlowExpr(e ast.Expr, fs *flowState) {
	switch ex := e.(type) {
	case *ast.Const:
	case *ast.Reference:
		if ex.Bind == nil {
			return
		}
		if !fs.lsv[ex.Bind.ID] {
			a.diags.Add(diag.ReferenceBeforeAssignment, ex.Pos(), "possible reference to \""+ex.Name+"\" before assignment")
		}
		fs.use(ex.Bind.ID)
	case *ast.UnaryOp:
		a.checkFlowExpr(ex.Operand, fs)
	case *ast.BinaryOp:
		a.checkFlowExpr(ex.Left, fs)
		a.checkFlowExpr(ex.Right, fs)
	case *ast.Cast:
		a.checkFlowExpr(ex.Operand, fs)
	case *ast.Call:
		for _, arg := range ex.Args {
			a.checkFlowExpr(arg, fs)
		}
	case *ast.Assignment:
		a.checkFlowExpr(ex.Value, fs)
		if ex.Target.Bind != nil {
			fs.assign(ex.Target.Bind.ID)
		}
	}
}
