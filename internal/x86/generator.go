package x86

import (
	"fmt"

	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// Generator walks an analyzed AST and builds one Listing for the
// whole module: a fixed prologue stub plus one labeled function body
// each (spec §4.6). A single constant pool and label counter are
// shared across every function, so dedup and uniqueness hold
// module-wide rather than per-function.
type Generator struct {
	pool   *ConstPool
	labelN int
}

func NewGenerator() *Generator {
	return &Generator{pool: NewConstPool()}
}

func (g *Generator) freshLabel(prefix string) string {
	g.labelN++
	return fmt.Sprintf("_%s_%d", prefix, g.labelN)
}

// Generate lowers prog to a flat Listing ready for Flatten, plus the
// constant pool Flatten needs to emit the trailing data section.
func (g *Generator) Generate(prog *ast.Program) (Listing, *ConstPool) {
	b := NewBuilder(g.pool)
	g.emitPrologueStub(b)
	for _, fn := range prog.Functions {
		g.genFunction(b, fn)
	}
	return b.Listing(), g.pool
}

// emitPrologueStub is the fixed stub every module carries: the two
// shared error messages, the externs every built-in or trampoline
// needs, the public `main` trampoline into `_f_main`, and the two
// shared error trampolines (spec §4.6 "Prologue").
func (g *Generator) emitPrologueStub(b *Builder) {
	ioMsg := b.ConstBytes([]byte("IOError\n\x00"))
	zeroMsg := b.ConstBytes([]byte("ZeroDivisionError\n\x00"))

	b.Extern("stderr")
	b.Extern("fputs")
	b.Extern("exit")
	b.Extern("printf")
	b.Extern("snprintf")
	b.Extern("puts")
	b.Extern("scanf")

	b.SyncESP()
	b.Label("main", true)
	b.Line("jmp _f_main")

	g.emitErrorTrampoline(b, "_l_io_error", ioMsg)
	g.emitErrorTrampoline(b, "_l_0div_error", zeroMsg)
}

// emitErrorTrampoline prints msg to stderr and exits with status 1;
// both runtime traps (I/O failure, division by zero) share this
// shape and differ only in which constant they print.
func (g *Generator) emitErrorTrampoline(b *Builder, name, msg string) {
	b.SyncESP()
	b.Label(name, false)
	b.Line("push dword [stderr]")
	b.Line("push %s", msg)
	b.Line("call fputs")
	b.AddESP(8)
	b.Line("push dword 1")
	b.Line("call exit")
}

func (g *Generator) genFunction(b *Builder, fn *ast.Function) {
	e := newEnv()
	for i, p := range fn.Params {
		e.bindParam(p.ID, i)
	}
	fg := &funcGen{gen: g, b: b, env: e}

	b.SyncESP()
	b.Label("_f_"+fn.Name, false)

	if fn.IsBuiltin {
		fg.genBuiltinBody(fn)
		return
	}

	fg.genBlock(fn.Body)
	// A void function (or one the analyzer otherwise let fall off the
	// end) needs an explicit trailing return.
	b.Return()
}

// funcGen threads one function's builder and local environment
// through the statement/expression walk.
type funcGen struct {
	gen *Generator
	b   *Builder
	env *env
}

func (fg *funcGen) label(prefix string) string { return fg.gen.freshLabel(prefix) }

func (fg *funcGen) withTemp(size int, body func(slot string)) {
	slot := fg.env.allocTemp(size)
	fg.b.SubESP(size)
	body(slot)
	fg.b.AddESP(size)
	fg.env.freeTemp(size)
}

func (fg *funcGen) read(t types.Type, slot string) {
	if isDouble(t) {
		fg.b.Line("fld qword [%s]", slot)
	} else {
		fg.b.Line("mov eax, [%s]", slot)
	}
}

func (fg *funcGen) write(t types.Type, slot string) {
	if isDouble(t) {
		fg.b.Line("fstp qword [%s]", slot)
	} else {
		fg.b.Line("mov [%s], eax", slot)
	}
}

func (fg *funcGen) discard(t types.Type) {
	if isDouble(t) {
		fg.b.Line("fstp st0")
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (fg *funcGen) genBlock(blk *ast.Block) {
	saved := fg.env.mark()
	for _, s := range blk.Stmts {
		fg.genStmt(s)
	}
	if delta := fg.env.restore(saved); delta != 0 {
		fg.b.AddESP(delta)
	}
}

func (fg *funcGen) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Block:
		fg.genBlock(st)
	case *ast.Declaration:
		fg.genDeclaration(st)
	case *ast.Evaluation:
		fg.genExpr(st.Expr)
		fg.discard(st.Expr.Type())
	case *ast.IfThenElse:
		fg.genIf(st)
	case *ast.WhileLoop:
		fg.genWhile(st)
	case *ast.Return:
		fg.genReturn(st)
	}
}

func (fg *funcGen) genDeclaration(d *ast.Declaration) {
	for _, v := range d.Vars {
		size := sizeBytes(v.Decl)
		fg.env.declare(v.ID, size)
		fg.b.SubESP(size)
		slot := fg.env.slotToken(v.ID)

		switch {
		case v.Argv:
			// No real source initializer; bind it to the empty string
			// (spec §3: "an implicit Argv declaration is prepended").
			empty := fg.b.ConstBytes([]byte{0})
			fg.b.Line("mov eax, %s", empty)
			fg.b.Line("mov [%s], eax", slot)
		case v.Init != nil:
			fg.genExpr(v.Init)
			fg.write(v.Decl, slot)
		}
	}
}

// genIf mirrors the bytecode shape: lower cond into eax, test it,
// jump over the then-arm on false (spec §4.6 "Statements").
func (fg *funcGen) genIf(st *ast.IfThenElse) {
	elseLabel := fg.label("if_else")
	endLabel := fg.label("if_end")

	fg.genExpr(st.Cond)
	fg.b.Line("or eax, eax")
	fg.b.Line("jz %s", elseLabel)
	fg.genStmt(st.Then)
	fg.b.Line("jmp %s", endLabel)
	fg.b.Label(elseLabel, false)
	if st.Else != nil {
		fg.genStmt(st.Else)
	}
	fg.b.Label(endLabel, false)
}

func (fg *funcGen) genWhile(st *ast.WhileLoop) {
	condLabel := fg.label("while_cond")
	topLabel := fg.label("while_top")
	endLabel := fg.label("while_end")

	fg.b.Line("jmp %s", condLabel)
	fg.b.Label(topLabel, false)
	if st.Finally != nil {
		for _, s := range st.Finally.Stmts {
			fg.genStmt(s)
		}
	}
	fg.b.Label(condLabel, false)
	fg.genExpr(st.Cond)
	fg.b.Line("or eax, eax")
	fg.b.Line("jz %s", endLabel)
	fg.genStmt(st.Body)
	fg.b.Line("jmp %s", topLabel)
	fg.b.Label(endLabel, false)
}

func (fg *funcGen) genReturn(r *ast.Return) {
	if r.Expr != nil {
		fg.genExpr(r.Expr)
	}
	fg.b.Return()
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (fg *funcGen) genExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Const:
		fg.genConst(ex)
	case *ast.Reference:
		fg.read(ex.Bind.Decl, fg.env.slotToken(ex.Bind.ID))
	case *ast.UnaryOp:
		fg.genUnary(ex)
	case *ast.BinaryOp:
		fg.genBinary(ex)
	case *ast.Cast:
		fg.genCast(ex)
	case *ast.Call:
		fg.genCall(ex)
	case *ast.Assignment:
		fg.genAssignment(ex)
	}
}

func (fg *funcGen) genConst(c *ast.Const) {
	switch v := c.Value.(type) {
	case int64:
		fg.b.Line("mov eax, %d", v)
	case bool:
		n := 0
		if v {
			n = 1
		}
		fg.b.Line("mov eax, %d", n)
	case float64:
		fg.b.loadDouble(v)
	case string:
		label := fg.b.ConstBytes(append([]byte(v), 0))
		fg.b.Line("mov eax, %s", label)
	}
}

func (fg *funcGen) genUnary(u *ast.UnaryOp) {
	fg.genExpr(u.Operand)
	switch u.Op {
	case token.MINUS:
		if isDouble(u.Operand.Type()) {
			fg.b.Line("fchs")
		} else {
			fg.b.Line("neg eax")
		}
	case token.NOT:
		fg.b.Line("xor eax, 1")
	}
}

// nonCommutative reports whether evaluation order matters for op, so
// the int binary-op lowering knows when it must restore left/right
// into eax/ecx rather than leaving them as evaluated.
func nonCommutative(op token.Type) bool {
	switch op {
	case token.MINUS, token.SLASH, token.PERCENT,
		token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		return true
	default:
		return false
	}
}

func setcc(op token.Type) string {
	switch op {
	case token.LESS:
		return "setl"
	case token.LESS_EQ:
		return "setle"
	case token.GREATER:
		return "setg"
	case token.GREATER_EQ:
		return "setge"
	case token.EQ:
		return "sete"
	default:
		return "setne"
	}
}

func isComparison(op token.Type) bool {
	switch op {
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ, token.EQ, token.NOT_EQ:
		return true
	default:
		return false
	}
}

func (fg *funcGen) genBinary(b *ast.BinaryOp) {
	switch b.Op {
	case token.AND:
		fg.genShortCircuit(b, true)
		return
	case token.OR:
		fg.genShortCircuit(b, false)
		return
	}

	if isDouble(b.Left.Type()) {
		fg.genBinaryDouble(b)
	} else {
		fg.genBinaryInt(b)
	}
}

// genShortCircuit lowers && (skipOnFalse=true) / || (skipOnFalse=false):
// evaluate the left operand, test it, and jump over the right operand
// when the result is already decided, leaving the surviving value in
// eax (spec §4.6: "Logical ops short-circuit by testing eax and
// jumping over the RHS evaluation").
func (fg *funcGen) genShortCircuit(b *ast.BinaryOp, skipOnFalse bool) {
	skip := fg.label("shortcircuit")
	fg.genExpr(b.Left)
	fg.b.Line("or eax, eax")
	if skipOnFalse {
		fg.b.Line("jz %s", skip)
	} else {
		fg.b.Line("jnz %s", skip)
	}
	fg.genExpr(b.Right)
	fg.b.Label(skip, false)
}

func (fg *funcGen) genBinaryInt(b *ast.BinaryOp) {
	fg.genExpr(b.Left)
	fg.b.Line("push eax")
	fg.genExpr(b.Right)
	fg.b.Line("pop ecx")
	// eax = right, ecx = left.
	if nonCommutative(b.Op) {
		fg.b.Line("xchg eax, ecx")
		// eax = left, ecx = right.
	}

	switch b.Op {
	case token.PLUS:
		fg.b.Line("add eax, ecx")
	case token.MINUS:
		fg.b.Line("sub eax, ecx")
	case token.ASTERISK:
		fg.b.Line("imul eax, ecx")
	case token.SLASH:
		fg.b.Line("cmp ecx, 0")
		fg.b.Line("je _l_0div_error")
		fg.b.Line("cdq")
		fg.b.Line("idiv ecx")
	case token.PERCENT:
		fg.b.Line("cmp ecx, 0")
		fg.b.Line("je _l_0div_error")
		fg.b.Line("cdq")
		fg.b.Line("idiv ecx")
		fg.b.Line("mov eax, edx")
	default:
		if isComparison(b.Op) {
			fg.b.Line("cmp eax, ecx")
			fg.b.Line("%s al", setcc(b.Op))
			fg.b.Line("movzx eax, al")
		}
	}
}

func (fg *funcGen) genBinaryDouble(b *ast.BinaryOp) {
	fg.genExpr(b.Left)  // -> st0
	fg.genExpr(b.Right) // -> st0, left demoted to st1

	switch b.Op {
	case token.PLUS:
		fg.b.Line("faddp st1, st0")
	case token.MINUS:
		fg.b.Line("fsubp st1, st0")
	case token.ASTERISK:
		fg.b.Line("fmulp st1, st0")
	case token.SLASH:
		fg.b.Line("fdivp st1, st0")
	case token.PERCENT:
		fg.genFMod()
	default:
		if isComparison(b.Op) {
			fg.b.Line("fcomip st0, st1")
			fg.b.Line("fstp st0")
			fg.b.Line("%s al", setcc(b.Op))
			fg.b.Line("movzx eax, al")
		}
	}
}

// genFMod lowers `%` on doubles via fprem1, looping while the partial
// remainder flag (C2, reflected into PF by fstsw/sahf) is set, then
// applies the sign correction spec §4.6 mandates: fprem1's
// round-to-nearest remainder can have either sign, but Javalette `%`
// follows the divisor's, so the divisor is added back in whenever the
// two disagree and the remainder isn't exactly zero.
func (fg *funcGen) genFMod() {
	// ST(0)=B (divisor, pushed last), ST(1)=A (dividend); fprem1 always
	// divides ST(0) by ST(1), so swap into dividend-on-top order first.
	fg.b.Line("fxch st1")

	loop := fg.label("fmod_loop")
	fg.b.Label(loop, false)
	fg.b.Line("fprem1")
	fg.b.Line("fstsw ax")
	fg.b.Line("sahf")
	fg.b.Line("jp %s", loop)
	// ST(0) = remainder (A rem B, either sign), ST(1) = B.

	skipAdjust := fg.label("fmod_skip")
	done := fg.label("fmod_done")

	fg.b.Line("ftst")
	fg.b.Line("fstsw ax")
	fg.b.Line("sahf")
	fg.b.Line("jz %s", skipAdjust) // remainder is exactly zero

	fg.b.Line("fld st0")         // ST0=rem, ST1=rem, ST2=B
	fg.b.Line("fld st2")         // ST0=B,   ST1=rem, ST2=rem, ST3=B
	fg.b.Line("fmulp st1, st0")  // ST0=rem*B, ST1=rem, ST2=B
	fg.b.Line("ftst")
	fg.b.Line("fstsw ax")
	fg.b.Line("sahf")
	fg.b.Line("fstp st0")        // discard the sign probe -> ST0=rem, ST1=B
	fg.b.Line("jnc %s", skipAdjust) // same sign (or a zero operand): no correction
	fg.b.Line("faddp st1, st0") // ST0 = B + rem, B consumed
	fg.b.Line("jmp %s", done)

	fg.b.Label(skipAdjust, false)
	fg.b.Line("fstp st1") // discard B, leaving the uncorrected remainder

	fg.b.Label(done, false)
}

func (fg *funcGen) genCast(c *ast.Cast) {
	from := c.Operand.Type()
	fg.genExpr(c.Operand)
	fg.castTo(from, c.Target)
}

func (fg *funcGen) castTo(from, to types.Type) {
	if to == types.Void {
		fg.discard(from)
		return
	}
	if from.Equals(to) {
		return
	}

	switch {
	case from == types.Int && to == types.Double:
		fg.withTemp(4, func(slot string) {
			fg.b.Line("mov [%s], eax", slot)
			fg.b.Line("fild dword [%s]", slot)
		})
	case from == types.Double && to == types.Int:
		fg.withTemp(8, func(s string) {
			fg.b.Line("fnstcw [%s]", s)
			fg.b.Line("movzx eax, word [%s]", s)
			fg.b.Line("or eax, 0x0C00")
			fg.b.Line("mov [%s+2], ax", s)
			fg.b.Line("fldcw [%s+2]", s)
			fg.b.Line("fistp dword [%s+4]", s)
			fg.b.Line("fldcw [%s]", s)
			fg.b.Line("mov eax, [%s+4]", s)
		})
	case to == types.Boolean && isDouble(from):
		fg.b.Line("fldz")
		fg.b.Line("fucomip st0, st1")
		fg.b.Line("fstp st0")
		fg.b.Line("setne al")
		fg.b.Line("movzx eax, al")
	case to == types.Boolean:
		fg.b.Line("cmp eax, 0")
		fg.b.Line("setne al")
		fg.b.Line("movzx eax, al")
	case to == types.Int && from == types.Boolean:
		// already a 0/1 dword in eax
	}
}

func (fg *funcGen) genCall(c *ast.Call) {
	total := 0
	for i := len(c.Args) - 1; i >= 0; i-- {
		arg := c.Args[i]
		fg.genExpr(arg)
		if isDouble(arg.Type()) {
			fg.b.Line("sub esp, 8")
			fg.b.Line("fstp qword [esp]")
			total += 8
		} else {
			fg.b.Line("push eax")
			total += 4
		}
	}
	fg.b.Line("call _f_%s", c.Callee.Func.Name)
	if total > 0 {
		fg.b.AddESP(total)
	}
}

func (fg *funcGen) genAssignment(a *ast.Assignment) {
	fg.genExpr(a.Value)
	slot := fg.env.slotToken(a.Target.Bind.ID)
	if isDouble(a.Target.Bind.Decl) {
		fg.b.Line("fld st0")
		fg.b.Line("fstp qword [%s]", slot)
	} else {
		fg.b.Line("mov [%s], eax", slot)
	}
}
