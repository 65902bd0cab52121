package bytecode

import (
	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// compileExpr lowers e, leaving its value on top of the stack (spec
// §4.5 "Expression lowering").
func (fc *funcCompiler) compileExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Const:
		fc.emit(OP_LOAD_CONST, fc.addConst(ex.Value))
	case *ast.Reference:
		if ex.Func != nil {
			fc.emit(OP_LOAD_GLOBAL, fc.addName(ex.Func.Name))
			return
		}
		fc.loadVar(ex.Bind)
	case *ast.UnaryOp:
		fc.compileUnary(ex)
	case *ast.BinaryOp:
		fc.compileBinary(ex)
	case *ast.Cast:
		fc.compileCast(ex)
	case *ast.Call:
		fc.compileCall(ex)
	case *ast.Assignment:
		fc.compileAssignment(ex)
	}
}

func (fc *funcCompiler) compileUnary(u *ast.UnaryOp) {
	fc.compileExpr(u.Operand)
	switch u.Op {
	case token.NOT:
		fc.emit(OP_UNARY_NOT, 0)
	case token.MINUS:
		fc.emit(OP_UNARY_NEGATIVE, 0)
	case token.PLUS:
		fc.emit(OP_UNARY_POSITIVE, 0)
	}
}

// compileBinary lowers arithmetic/comparison eagerly (both operands
// always evaluated) and `&&`/`||` via the short-circuit helper: lower
// the left operand, emit a JUMP_*_OR_POP targeting a fresh label that
// both skips the right operand and keeps the left value as the
// result, lower the right operand, then place the label (spec §4.5).
func (fc *funcCompiler) compileBinary(b *ast.BinaryOp) {
	switch b.Op {
	case token.AND:
		fc.compileExpr(b.Left)
		skip := fc.emit(OP_JUMP_IF_FALSE_OR_POP, 0)
		fc.compileExpr(b.Right)
		fc.patch(skip, fc.here())
		return
	case token.OR:
		fc.compileExpr(b.Left)
		skip := fc.emit(OP_JUMP_IF_TRUE_OR_POP, 0)
		fc.compileExpr(b.Right)
		fc.patch(skip, fc.here())
		return
	}

	fc.compileExpr(b.Left)
	fc.compileExpr(b.Right)

	switch b.Op {
	case token.PLUS:
		fc.emit(OP_BINARY_ADD, 0)
	case token.MINUS:
		fc.emit(OP_BINARY_SUBTRACT, 0)
	case token.ASTERISK:
		fc.emit(OP_BINARY_MULTIPLY, 0)
	case token.SLASH:
		// Int/Int selects floor division, Double/Double true division
		// (spec §4.5); the type checker guarantees both operands share
		// a numeric type, so the left operand's type decides.
		if b.Left.Type() == types.Int {
			fc.emit(OP_BINARY_FLOOR_DIVIDE, 0)
		} else {
			fc.emit(OP_BINARY_TRUE_DIVIDE, 0)
		}
	case token.PERCENT:
		fc.emit(OP_BINARY_MODULO, 0)
	case token.LESS:
		fc.emit(OP_COMPARE_OP, int32(CmpLT))
	case token.LESS_EQ:
		fc.emit(OP_COMPARE_OP, int32(CmpLE))
	case token.GREATER:
		fc.emit(OP_COMPARE_OP, int32(CmpGT))
	case token.GREATER_EQ:
		fc.emit(OP_COMPARE_OP, int32(CmpGE))
	case token.EQ:
		fc.emit(OP_COMPARE_OP, int32(CmpEQ))
	case token.NOT_EQ:
		fc.emit(OP_COMPARE_OP, int32(CmpNE))
	}
}

// compileCast lowers the operand, then the type's cast sequence
// (spec §4.4 Bytecode): identity for a same-type cast, a generic
// pop-and-push-None for cast-to-void, otherwise "load the coercion
// intrinsic, rotate, call 1-arg".
func (fc *funcCompiler) compileCast(c *ast.Cast) {
	from := c.Operand.Type()
	fc.compileExpr(c.Operand)
	fc.emitCoercion(from, c.Target)
}

func (fc *funcCompiler) emitCoercion(from, to types.Type) {
	if to == types.Void {
		fc.emit(OP_POP_TOP, 0)
		fc.emit(OP_LOAD_CONST, fc.addConst(nil))
		return
	}
	if from.Equals(to) {
		return
	}
	name, ok := coercionIntrinsic[to]
	if !ok {
		// Unreachable given the capability matrix in spec §3: string
		// only casts to void or itself, both handled above.
		return
	}
	fc.emit(OP_LOAD_GLOBAL, fc.addName(name))
	fc.emit(OP_ROT_TWO, 0)
	fc.emit(OP_CALL_FUNCTION, 1)
}

func (fc *funcCompiler) compileCall(c *ast.Call) {
	fc.emit(OP_LOAD_GLOBAL, fc.addName(c.Callee.Func.Name))
	for _, arg := range c.Args {
		fc.compileExpr(arg)
	}
	fc.emit(OP_CALL_FUNCTION, int32(len(c.Args)))
}

// compileAssignment lowers the rvalue, duplicates it so the
// expression still has a value once the store consumes one copy, and
// stores into the target's slot (spec §4.5).
func (fc *funcCompiler) compileAssignment(a *ast.Assignment) {
	fc.compileExpr(a.Value)
	fc.emit(OP_DUP_TOP, 0)
	fc.storeVar(a.Target.Bind)
}
