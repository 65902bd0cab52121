package x86

import "github.com/javalette-lang/jtc/internal/ast"

// genBuiltinBody emits the literal x86 sequence for one of the six
// injected intrinsics (spec §4.6 "Prologue": "Built-in bodies are
// literal x86 sequences referencing these trampolines and externs").
// Every built-in's single parameter lives at its cdecl offset, `##(4)`.
func (fg *funcGen) genBuiltinBody(fn *ast.Function) {
	var argSlot string
	if len(fn.Params) > 0 {
		argSlot = fg.env.slotToken(fn.Params[0].ID)
	}

	switch fn.Name {
	case "printInt":
		fmtStr := fg.b.ConstBytes([]byte("%d\x00"))
		fg.b.Line("push dword [%s]", argSlot)
		fg.b.Line("push %s", fmtStr)
		fg.b.Line("call printf")
		fg.b.AddESP(8)
	case "printDouble":
		fg.genPrintDouble(argSlot)
	case "printString":
		fg.b.Line("push dword [%s]", argSlot)
		fg.b.Line("call puts")
		fg.b.AddESP(4)
	case "error":
		fg.b.Line("jmp _l_io_error")
	case "readInt":
		fg.genRead("%d\x00", 4)
	case "readDouble":
		fg.genRead("%lf\x00", 8)
	}
	fg.b.Return()
}

// genPrintDouble formats the argument via snprintf("%.12g") into a
// scratch buffer and, when the result looks like an integer (no `.`
// and no exponent marker), appends a literal ".0" before printing —
// the formatting quirk spec §4.6/§9 calls out to faithfully preserve.
func (fg *funcGen) genPrintDouble(argSlot string) {
	fmtG := fg.b.ConstBytes([]byte("%.12g\x00"))
	fmtS := fg.b.ConstBytes([]byte("%s\x00"))

	fg.withTemp(32, func(buf string) {
		fg.b.Line("fld qword [%s]", argSlot)
		fg.b.Line("sub esp, 8")
		fg.b.Line("fstp qword [esp]")
		fg.b.Line("push %s", fmtG)
		fg.b.Line("push dword 32")
		fg.b.Line("lea eax, [%s]", buf)
		fg.b.Line("push eax")
		fg.b.Line("call snprintf")
		fg.b.AddESP(20)

		scanLoop := fg.label("printdouble_scan")
		appendDot := fg.label("printdouble_append")
		done := fg.label("printdouble_done")

		fg.b.Line("lea eax, [%s]", buf)
		fg.b.Label(scanLoop, false)
		fg.b.Line("mov cl, [eax]")
		fg.b.Line("cmp cl, 0")
		fg.b.Line("je %s", appendDot) // end of string reached without a '.' or exponent
		fg.b.Line("cmp cl, '.'")
		fg.b.Line("je %s", done)
		fg.b.Line("cmp cl, 'e'")
		fg.b.Line("je %s", done)
		fg.b.Line("cmp cl, 'E'")
		fg.b.Line("je %s", done)
		fg.b.Line("inc eax")
		fg.b.Line("jmp %s", scanLoop)

		// eax points at the buffer's null terminator; splice ".0" in
		// over it (spec §9: "faithfully reimplement" this quirk).
		fg.b.Label(appendDot, false)
		fg.b.Line("mov byte [eax], '.'")
		fg.b.Line("mov byte [eax+1], '0'")
		fg.b.Line("mov byte [eax+2], 0")

		fg.b.Label(done, false)
		fg.b.Line("lea eax, [%s]", buf)
		fg.b.Line("push eax")
		fg.b.Line("push %s", fmtS)
		fg.b.Line("call printf")
		fg.b.AddESP(8)
	})
}

// genRead scans one value of the given byte width from stdin via
// scanf into a scratch slot and leaves it in eax (int/bool-shaped) or
// st0 (double), matching the runtime's read-int/read-double contract.
func (fg *funcGen) genRead(format string, size int) {
	fmtStr := fg.b.ConstBytes([]byte(format))
	fg.withTemp(size, func(slot string) {
		fg.b.Line("lea eax, [%s]", slot)
		fg.b.Line("push eax")
		fg.b.Line("push %s", fmtStr)
		fg.b.Line("call scanf")
		fg.b.AddESP(8)
		if size == 8 {
			fg.b.Line("fld qword [%s]", slot)
		} else {
			fg.b.Line("mov eax, [%s]", slot)
		}
	})
}
