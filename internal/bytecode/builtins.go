package bytecode

import (
	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/types"
)

// compileBuiltinBody emits the literal instruction sequence for one
// of the six injected intrinsics (spec §4.3 Pass A, §4.5 "Built-in
// bodies are supplied as literal instruction sequences referencing
// the aliased intrinsics"). Every body leaves its result (or nothing,
// for a void builtin) on the stack before the shared RETURN_VALUE
// trailer.
func compileBuiltinBody(fn *ast.Function, filename string) *CodeObject {
	fc := newFuncCompiler()
	args := make([]string, len(fn.Params))
	for i := range fn.Params {
		args[i] = paramSlot(i)
		fc.addVarname(args[i])
	}

	switch fn.Name {
	case "printInt", "printDouble", "printString":
		// print(arg); the caller's own value is already of the right
		// runtime type, so no coercion is needed here.
		fc.emit(OP_LOAD_GLOBAL, fc.addName("print"))
		fc.emit(OP_LOAD_LOCAL, fc.addVarname(paramSlot(0)))
		fc.emit(OP_CALL_FUNCTION, 1)
		fc.emit(OP_POP_TOP, 0)
	case "error":
		// *error is the aliased RuntimeError constructor/raiser; calling
		// it with no arguments is the runtime's own "assertion failure"
		// convention (spec §7: "the bytecode backend raises a
		// RuntimeError instead").
		fc.emit(OP_LOAD_GLOBAL, fc.addName(aliasError))
		fc.emit(OP_CALL_FUNCTION, 0)
		fc.emit(OP_POP_TOP, 0)
	case "readInt":
		emitRead(fc, types.Int)
	case "readDouble":
		emitRead(fc, types.Double)
	}

	if fn.Sig.Return == types.Void {
		fc.emit(OP_LOAD_CONST, fc.addConst(nil))
	}
	fc.emit(OP_RETURN_VALUE, 0)

	return &CodeObject{
		Name:      fn.Name,
		Filename:  filename,
		FirstLine: 0,
		Args:      args,
		NewLocals: true,
		Consts:    fc.consts,
		Names:     fc.names,
		Varnames:  fc.varnames,
		Code:      fc.code,
	}
}

// emitRead lowers readInt/readDouble as "load the coercion intrinsic,
// call 1-arg" applied to the raw line read from *input (spec
// §4.4 Bytecode "cast_from"): LOAD_GLOBAL coercion; LOAD_GLOBAL
// *input; CALL_FUNCTION 0 leaves [coercion, rawString] on the stack,
// ready for CALL_FUNCTION 1.
func emitRead(fc *funcCompiler, to types.Type) {
	fc.emit(OP_LOAD_GLOBAL, fc.addName(coercionIntrinsic[to]))
	fc.emit(OP_LOAD_GLOBAL, fc.addName(aliasInput))
	fc.emit(OP_CALL_FUNCTION, 0)
	fc.emit(OP_CALL_FUNCTION, 1)
}
