package bytecode

import (
	"fmt"
	"io"
)

// Disassembler renders a CodeObject's instruction stream as human-
// readable text, one module header per code object plus a recursive
// pass over any nested code object sitting in the constant pool.
type Disassembler struct {
	writer io.Writer
}

func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{writer: w}
}

// Disassemble prints the module's top-level code object and every
// function nested in its constant pool.
func (d *Disassembler) Disassemble(m *Module) {
	d.disassembleCode(m.Code)
}

func (d *Disassembler) disassembleCode(co *CodeObject) {
	fmt.Fprintf(d.writer, "== %s ==\n", co.Name)

	if len(co.Consts) > 0 {
		fmt.Fprintf(d.writer, "Constants:\n")
		for i, c := range co.Consts {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, formatConst(c))
		}
	}
	if len(co.Names) > 0 {
		fmt.Fprintf(d.writer, "Names: %v\n", co.Names)
	}
	if len(co.Varnames) > 0 {
		fmt.Fprintf(d.writer, "Varnames: %v\n", co.Varnames)
	}

	fmt.Fprintf(d.writer, "Bytecode:\n")
	for offset, instr := range co.Code {
		d.disassembleInstruction(co, offset, instr)
	}
	fmt.Fprintln(d.writer)

	for _, c := range co.Consts {
		if nested, ok := c.(*CodeObject); ok {
			d.disassembleCode(nested)
		}
	}
}

func (d *Disassembler) disassembleInstruction(co *CodeObject, offset int, instr Instruction) {
	fmt.Fprintf(d.writer, "  %04d %-24s", offset, instr.Op.String())

	switch instr.Op {
	case OP_LOAD_CONST:
		fmt.Fprintf(d.writer, " %d (%s)", instr.Arg, formatConst(co.Consts[instr.Arg]))
	case OP_LOAD_LOCAL, OP_STORE_LOCAL:
		fmt.Fprintf(d.writer, " %d (%s)", instr.Arg, co.Varnames[instr.Arg])
	case OP_LOAD_GLOBAL, OP_STORE_GLOBAL, OP_IMPORT_NAME, OP_IMPORT_FROM:
		fmt.Fprintf(d.writer, " %d (%s)", instr.Arg, co.Names[instr.Arg])
	case OP_JUMP_ABSOLUTE, OP_JUMP_IF_FALSE, OP_JUMP_IF_TRUE,
		OP_JUMP_IF_FALSE_OR_POP, OP_JUMP_IF_TRUE_OR_POP:
		fmt.Fprintf(d.writer, " -> %d", instr.Arg)
	case OP_COMPARE_OP:
		fmt.Fprintf(d.writer, " %s", CompareOp(instr.Arg))
	case OP_CALL_FUNCTION:
		fmt.Fprintf(d.writer, " %d", instr.Arg)
	default:
		if instr.Op.hasArg() {
			fmt.Fprintf(d.writer, " %d", instr.Arg)
		}
	}
	fmt.Fprintln(d.writer)
}

func formatConst(c interface{}) string {
	switch v := c.(type) {
	case nil:
		return "None"
	case string:
		return fmt.Sprintf("%q", v)
	case *CodeObject:
		return fmt.Sprintf("<code %s>", v.Name)
	default:
		return fmt.Sprintf("%v", v)
	}
}
