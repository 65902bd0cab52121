// Package semantic implements the three-pass analyzer of spec §4.3:
// built-in injection, name resolution (with per-function unique
// variable ids and scoped shadowing), and validation (type checking,
// returns-on-every-path, use-before-assignment).
package semantic

import (
	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/diag"
)

// Analyzer holds the state threaded through all three passes.
type Analyzer struct {
	funcs map[string]*ast.Function
	diags diag.Bag

	symbols         *SymbolTable
	currentFunction *ast.Function
	nextID          int
}

// Analyze runs all three passes over prog in place, mutating its AST
// (Reference.Bind/Func, Variable.ID, Expr.Type, Return.Function) and
// returns the accumulated diagnostics. The caller must check
// diags.HasErrors() before proceeding to code generation (spec §7:
// "the driver aborts if any error was reported").
func Analyze(prog *ast.Program) *diag.Bag {
	a := &Analyzer{funcs: make(map[string]*ast.Function)}

	injectBuiltins(prog)
	a.buildFunctionTable(prog)
	for _, fn := range prog.Functions {
		if fn.IsBuiltin {
			continue
		}
		a.resolveFunction(fn)
	}
	if a.diags.HasErrors() {
		return &a.diags
	}
	for _, fn := range prog.Functions {
		if fn.IsBuiltin {
			continue
		}
		a.validateFunction(fn)
	}
	return &a.diags
}
