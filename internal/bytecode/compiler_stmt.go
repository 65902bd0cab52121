package bytecode

import "github.com/javalette-lang/jtc/internal/ast"

// compileStmt lowers one statement (spec §4.5 "Statement lowering").
func (fc *funcCompiler) compileStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Block:
		for _, stmt := range st.Stmts {
			fc.compileStmt(stmt)
		}
	case *ast.Declaration:
		fc.compileDeclaration(st)
	case *ast.Evaluation:
		fc.compileExpr(st.Expr)
		fc.emit(OP_POP_TOP, 0)
	case *ast.IfThenElse:
		fc.compileIf(st)
	case *ast.WhileLoop:
		fc.compileWhile(st)
	case *ast.Return:
		fc.compileReturn(st)
	}
}

func (fc *funcCompiler) compileDeclaration(d *ast.Declaration) {
	for _, v := range d.Vars {
		switch {
		case v.Argv:
			// The implicit Argv carries no source initializer; bind it
			// to the empty string so it satisfies use-before-assignment
			// without the bytecode needing a real argv source (spec §3:
			// "an implicit Argv declaration is prepended to the body").
			fc.emit(OP_LOAD_CONST, fc.addConst(""))
			fc.storeVar(v)
		case v.Init != nil:
			fc.compileExpr(v.Init)
			fc.storeVar(v)
		}
	}
}

// compileIf follows the legacy JUMP_IF_FALSE convention: the jump
// never pops its operand, so both the fallthrough (cond true) and the
// target (cond false) arms begin with an explicit POP_TOP (spec §4.5:
// "else-label; pop (legacy mode needs an extra pop after
// conditional-jump variants that preserve the condition)").
func (fc *funcCompiler) compileIf(st *ast.IfThenElse) {
	fc.compileExpr(st.Cond)
	toElse := fc.emit(OP_JUMP_IF_FALSE, 0)
	fc.emit(OP_POP_TOP, 0)
	fc.compileStmt(st.Then)
	toEnd := fc.emit(OP_JUMP_ABSOLUTE, 0)
	fc.patch(toElse, fc.here())
	fc.emit(OP_POP_TOP, 0)
	if st.Else != nil {
		fc.compileStmt(st.Else)
	}
	fc.patch(toEnd, fc.here())
}

// compileWhile lowers a while loop together with its optional
// Finally ("post") block (spec §4.5): a forward jump skips the post
// block on the first iteration only, so steady state runs
// cond → body → post → cond, matching "for"'s desugared semantics.
func (fc *funcCompiler) compileWhile(st *ast.WhileLoop) {
	toCond := fc.emit(OP_JUMP_ABSOLUTE, 0)
	top := fc.here()
	if st.Finally != nil {
		for _, stmt := range st.Finally.Stmts {
			fc.compileStmt(stmt)
		}
	}
	fc.patch(toCond, fc.here())
	fc.compileExpr(st.Cond)
	toEnd := fc.emit(OP_JUMP_IF_FALSE, 0)
	fc.emit(OP_POP_TOP, 0)
	fc.compileStmt(st.Body)
	fc.emit(OP_JUMP_ABSOLUTE, top)
	fc.patch(toEnd, fc.here())
	fc.emit(OP_POP_TOP, 0)
}

func (fc *funcCompiler) compileReturn(r *ast.Return) {
	if r.Expr != nil {
		fc.compileExpr(r.Expr)
	} else {
		fc.emit(OP_LOAD_CONST, fc.addConst(nil))
	}
	fc.emit(OP_RETURN_VALUE, 0)
}
