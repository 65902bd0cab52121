package bytecode

import "github.com/javalette-lang/jtc/internal/ast"

// ExitStyle selects the shape of the module epilogue's "run main and
// exit" sequence (spec §9 Open Question, resolved here): two real
// Javalette-to-host toolchains disagree on whether sys.exit is pulled
// in via a plain `import sys` (legacy, 4 instructions) or `from sys
// import exit` (modern, 5 instructions counting the IMPORT_FROM). Both
// are wired; --legacy-exit on the CLI selects ExitStyleLegacy.
type ExitStyle int

const (
	ExitStyleModern ExitStyle = iota
	ExitStyleLegacy
)

// Compile lowers an analyzed program into a single module-level
// CodeObject (spec §4.5): a prologue binding the five starred runtime
// aliases, one nested CodeObject per declared function (including the
// injected builtins) stored to a module-level global of the same
// name, and an epilogue that runs main() when the module is executed
// as a script.
func Compile(prog *ast.Program, filename string, exitStyle ExitStyle) *Module {
	mc := newFuncCompiler()

	emitPrologue(mc)
	for _, fn := range prog.Functions {
		code := compileFunction(fn, filename)
		mc.emit(OP_LOAD_CONST, mc.addConst(code))
		mc.emit(OP_MAKE_FUNCTION, 0)
		mc.emit(OP_STORE_GLOBAL, mc.addName(fn.Name))
	}
	emitEpilogue(mc, exitStyle)

	return &Module{Code: &CodeObject{
		Name:      "<module>",
		Filename:  filename,
		FirstLine: 0,
		NewLocals: false,
		Consts:    mc.consts,
		Names:     mc.names,
		Varnames:  mc.varnames,
		Code:      mc.code,
	}}
}

// emitPrologue rebinds each runtime global under its starred alias
// (spec §4.5 point 1), so later code — including the builtin bodies
// compiled below — always goes through the alias rather than a name
// user-defined functions could otherwise shadow.
func emitPrologue(mc *funcCompiler) {
	for _, a := range prologueAliases {
		mc.emit(OP_LOAD_GLOBAL, mc.addName(a.global))
		mc.emit(OP_STORE_GLOBAL, mc.addName(a.starred))
	}
}

// emitEpilogue appends `__all__ = []`, then, guarded by `if __name__
// == "__main__":`, the sys.exit(main()) call (spec §4.5 point 4). The
// legacy shape imports the sys module and reads its exit attribute off
// the module object; the modern shape imports exit directly.
func emitEpilogue(mc *funcCompiler, style ExitStyle) {
	mc.emit(OP_LOAD_CONST, mc.addConst([]interface{}{}))
	mc.emit(OP_STORE_GLOBAL, mc.addName("__all__"))

	mc.emit(OP_LOAD_GLOBAL, mc.addName("__name__"))
	mc.emit(OP_LOAD_CONST, mc.addConst("__main__"))
	mc.emit(OP_COMPARE_OP, int32(CmpEQ))
	skip := mc.emit(OP_JUMP_IF_FALSE, 0)
	mc.emit(OP_POP_TOP, 0)

	switch style {
	case ExitStyleLegacy:
		mc.emit(OP_IMPORT_NAME, mc.addName("sys"))
		mc.emit(OP_STORE_GLOBAL, mc.addName("sys"))
		mc.emit(OP_LOAD_GLOBAL, mc.addName("sys"))
		mc.emit(OP_LOAD_GLOBAL, mc.addName("exit")) // attribute lookup on sys, name pool reused
	default:
		mc.emit(OP_IMPORT_NAME, mc.addName("sys"))
		mc.emit(OP_IMPORT_FROM, mc.addName("exit"))
		mc.emit(OP_STORE_GLOBAL, mc.addName("exit"))
		mc.emit(OP_POP_TOP, 0)
		mc.emit(OP_LOAD_GLOBAL, mc.addName("exit"))
	}
	mc.emit(OP_LOAD_GLOBAL, mc.addName("main"))
	mc.emit(OP_CALL_FUNCTION, 0)
	mc.emit(OP_CALL_FUNCTION, 1)
	mc.emit(OP_POP_TOP, 0)

	mc.patch(skip, mc.here())
	mc.emit(OP_POP_TOP, 0)

	mc.emit(OP_LOAD_CONST, mc.addConst(nil))
	mc.emit(OP_RETURN_VALUE, 0)
}

// compileFunction dispatches to the literal builtin-body emitter or
// to a normal AST walk, per spec §4.5's split between injected and
// user-declared functions.
func compileFunction(fn *ast.Function, filename string) *CodeObject {
	if fn.IsBuiltin {
		return compileBuiltinBody(fn, filename)
	}

	fc := newFuncCompiler()
	args := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		args[i] = paramSlot(i)
		fc.paramIndex[p] = i
		fc.addVarname(args[i])
	}

	fc.compileStmt(fn.Body)

	// Every code object ends in an explicit return, even when the
	// analyzer has already proven every path returns; a void function
	// falls through here with None.
	fc.emit(OP_LOAD_CONST, fc.addConst(nil))
	fc.emit(OP_RETURN_VALUE, 0)

	return &CodeObject{
		Name:      fn.Name,
		Filename:  filename,
		FirstLine: fn.PosV.Line,
		Args:      args,
		NewLocals: true,
		Consts:    fc.consts,
		Names:     fc.names,
		Varnames:  fc.varnames,
		Code:      fc.code,
	}
}
