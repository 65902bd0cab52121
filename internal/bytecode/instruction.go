package bytecode

import "strconv"

// Instruction is one bytecode instruction: an opcode plus a single
// operand whose meaning depends on the opcode (a pool index, a jump
// target, an argument count, ...).
type Instruction struct {
	Op  OpCode
	Arg int32
}

// String renders an instruction the way the disassembler's per-line
// format does, without resolving pool indices to their values.
func (i Instruction) String() string {
	if !i.Op.hasArg() {
		return i.Op.String()
	}
	return i.Op.String() + " " + strconv.Itoa(int(i.Arg))
}
