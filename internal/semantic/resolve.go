package semantic

import (
	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/diag"
	"github.com/javalette-lang/jtc/internal/token"
)

// buildFunctionTable populates a.funcs, catching a duplicate
// top-level name and a missing main (spec §4.3 Pass B).
func (a *Analyzer) buildFunctionTable(prog *ast.Program) {
	for _, fn := range prog.Functions {
		if _, dup := a.funcs[fn.Name]; dup {
			a.diags.Add(diag.InspectError, fn.Pos(), "duplicate function \""+fn.Name+"\"")
			continue
		}
		a.funcs[fn.Name] = fn
	}
	if _, ok := a.funcs["main"]; !ok {
		a.diags.Add(diag.InspectError, token.Position{}, "missing function \"main\"")
	}
}

// resolveFunction runs Pass B over a single function body: params and
// the (already-prepended) Argv declaration share the function's
// outermost scope; nested blocks get their own.
func (a *Analyzer) resolveFunction(fn *ast.Function) {
	a.currentFunction = fn
	a.nextID = 0
	a.symbols = NewSymbolTable()

	for _, p := range fn.Params {
		a.defineVar(p)
	}
	for _, stmt := range fn.Body.Stmts {
		a.resolveStmt(stmt)
	}
}

// defineVar assigns v a fresh per-function unique id and binds it in
// the current scope, reporting a redeclaration error if the name is
// already bound in this exact block (spec §4.3 Pass B).
func (a *Analyzer) defineVar(v *ast.Variable) {
	if a.symbols.IsDeclaredInCurrentScope(v.Name) {
		a.diags.Add(diag.InspectError, v.Pos(), "redeclaration of \""+v.Name+"\" in the same block")
	}
	v.ID = a.nextID
	a.nextID++
	a.symbols.Define(v.Name, v)
}

// resolveBranch resolves a statement used as the body of an if/while
// arm in its own scope, whether or not it is itself a Block — a bare
// `if (c) int x = 1;` declares x only for that arm.
func (a *Analyzer) resolveBranch(s ast.Stmt) {
	if s == nil {
		return
	}
	outer := a.symbols
	a.symbols = NewEnclosedSymbolTable(outer)
	if b, ok := s.(*ast.Block); ok {
		for _, stmt := range b.Stmts {
			a.resolveStmt(stmt)
		}
	} else {
		a.resolveStmt(s)
	}
	a.symbols = outer
}

func (a *Analyzer) resolveStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Block:
		a.resolveBranch(st)
	case *ast.Declaration:
		for _, v := range st.Vars {
			if v.Init != nil {
				a.resolveExpr(v.Init)
			}
			a.defineVar(v)
		}
	case *ast.Evaluation:
		a.resolveExpr(st.Expr)
	case *ast.IfThenElse:
		a.resolveExpr(st.Cond)
		a.resolveBranch(st.Then)
		a.resolveBranch(st.Else)
	case *ast.WhileLoop:
		a.resolveExpr(st.Cond)
		a.resolveBranch(st.Body)
		if st.Finally != nil {
			a.resolveBranch(st.Finally)
		}
	case *ast.Return:
		st.Function = a.currentFunction
		if st.Expr != nil {
			a.resolveExpr(st.Expr)
		}
	}
}

func (a *Analyzer) resolveExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Const:
		// no references to resolve
	case *ast.Reference:
		a.resolveReference(ex)
	case *ast.UnaryOp:
		a.resolveExpr(ex.Operand)
	case *ast.BinaryOp:
		a.resolveExpr(ex.Left)
		a.resolveExpr(ex.Right)
	case *ast.Cast:
		a.resolveExpr(ex.Operand)
	case *ast.Call:
		a.resolveCallee(ex.Callee)
		for _, arg := range ex.Args {
			a.resolveExpr(arg)
		}
	case *ast.Assignment:
		a.resolveExpr(ex.Value)
		a.resolveReference(ex.Target)
	}
}

// resolveReference binds a variable use against the current scope
// chain (spec §4.3 Pass B: "set bind to the current top of its name's
// stack; if absent, emit an error and continue").
func (a *Analyzer) resolveReference(ref *ast.Reference) {
	v, ok := a.symbols.Resolve(ref.Name)
	if !ok {
		a.diags.Add(diag.InspectError, ref.Pos(), "undeclared variable \""+ref.Name+"\"")
		return
	}
	ref.Bind = v
}

// resolveCallee binds a Call's callee against the function table
// rather than the variable scope chain.
func (a *Analyzer) resolveCallee(ref *ast.Reference) {
	fn, ok := a.funcs[ref.Name]
	if !ok {
		a.diags.Add(diag.InspectError, ref.Pos(), "undeclared function \""+ref.Name+"\"")
		return
	}
	ref.Func = fn
}
