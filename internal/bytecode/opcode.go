// Package bytecode compiles a Javalette AST into the instruction
// stream and code-object records consumed by the external host-runtime
// writer (spec §4.5/§6): a single top-level module whose constants pool
// holds one nested code object per declared function.
package bytecode

// OpCode identifies a single bytecode instruction. Names follow the
// host runtime's own instruction set rather than an invented one, so
// the disassembly reads the way the runtime's own tools would print it.
type OpCode byte

const (
	// Stack and constant loading.
	OP_LOAD_CONST  OpCode = iota // push Consts[arg]
	OP_POP_TOP                   // discard the top of stack
	OP_DUP_TOP                   // duplicate the top of stack
	OP_ROT_TWO                   // swap the top two stack entries

	// Name access. Locals are addressed by the function's own slot
	// table; globals share the module's single namespace.
	OP_LOAD_LOCAL   // push the local named Varnames[arg]
	OP_STORE_LOCAL  // pop into the local named Varnames[arg]
	OP_LOAD_GLOBAL  // push the global named Names[arg]
	OP_STORE_GLOBAL // pop into the global named Names[arg]

	// Functions.
	OP_MAKE_FUNCTION // pop a code object, push a callable closing over no free variables (arg always 0)
	OP_CALL_FUNCTION // pop arg args and the callee, push the call's result

	// Arithmetic, comparison, unary.
	OP_BINARY_ADD
	OP_BINARY_SUBTRACT
	OP_BINARY_MULTIPLY
	OP_BINARY_FLOOR_DIVIDE // Int / Int
	OP_BINARY_TRUE_DIVIDE  // Double / Double
	OP_BINARY_MODULO
	OP_UNARY_NEGATIVE
	OP_UNARY_POSITIVE
	OP_UNARY_NOT
	OP_COMPARE_OP // arg selects a CompareOp

	// Control flow. Every jump's arg is an absolute instruction index,
	// resolved by the compiler's own label-patching pass rather than
	// left for a separate linker.
	OP_JUMP_ABSOLUTE       // unconditional jump
	OP_JUMP_IF_FALSE       // jump if TOS is falsy; never pops
	OP_JUMP_IF_TRUE        // jump if TOS is truthy; never pops
	OP_JUMP_IF_FALSE_OR_POP // jump (keeping TOS) if falsy, else pop
	OP_JUMP_IF_TRUE_OR_POP  // jump (keeping TOS) if truthy, else pop

	// Module wiring and imports.
	OP_IMPORT_NAME
	OP_IMPORT_FROM

	OP_RETURN_VALUE
)

var opcodeNames = map[OpCode]string{
	OP_LOAD_CONST:           "LOAD_CONST",
	OP_POP_TOP:              "POP_TOP",
	OP_DUP_TOP:              "DUP_TOP",
	OP_ROT_TWO:              "ROT_TWO",
	OP_LOAD_LOCAL:           "LOAD_LOCAL",
	OP_STORE_LOCAL:          "STORE_LOCAL",
	OP_LOAD_GLOBAL:          "LOAD_GLOBAL",
	OP_STORE_GLOBAL:         "STORE_GLOBAL",
	OP_MAKE_FUNCTION:        "MAKE_FUNCTION",
	OP_CALL_FUNCTION:        "CALL_FUNCTION",
	OP_BINARY_ADD:           "BINARY_ADD",
	OP_BINARY_SUBTRACT:      "BINARY_SUBTRACT",
	OP_BINARY_MULTIPLY:      "BINARY_MULTIPLY",
	OP_BINARY_FLOOR_DIVIDE:  "BINARY_FLOOR_DIVIDE",
	OP_BINARY_TRUE_DIVIDE:   "BINARY_TRUE_DIVIDE",
	OP_BINARY_MODULO:        "BINARY_MODULO",
	OP_UNARY_NEGATIVE:       "UNARY_NEGATIVE",
	OP_UNARY_POSITIVE:       "UNARY_POSITIVE",
	OP_UNARY_NOT:            "UNARY_NOT",
	OP_COMPARE_OP:           "COMPARE_OP",
	OP_JUMP_ABSOLUTE:        "JUMP_ABSOLUTE",
	OP_JUMP_IF_FALSE:        "JUMP_IF_FALSE",
	OP_JUMP_IF_TRUE:         "JUMP_IF_TRUE",
	OP_JUMP_IF_FALSE_OR_POP: "JUMP_IF_FALSE_OR_POP",
	OP_JUMP_IF_TRUE_OR_POP:  "JUMP_IF_TRUE_OR_POP",
	OP_IMPORT_NAME:          "IMPORT_NAME",
	OP_IMPORT_FROM:          "IMPORT_FROM",
	OP_RETURN_VALUE:         "RETURN_VALUE",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "UNKNOWN_OP"
}

// hasArg reports whether op's operand is meaningful; a handful of
// opcodes (stack shuffles, arithmetic, return) ignore it.
func (op OpCode) hasArg() bool {
	switch op {
	case OP_POP_TOP, OP_DUP_TOP, OP_ROT_TWO,
		OP_BINARY_ADD, OP_BINARY_SUBTRACT, OP_BINARY_MULTIPLY,
		OP_BINARY_FLOOR_DIVIDE, OP_BINARY_TRUE_DIVIDE, OP_BINARY_MODULO,
		OP_UNARY_NEGATIVE, OP_UNARY_POSITIVE, OP_UNARY_NOT,
		OP_RETURN_VALUE:
		return false
	default:
		return true
	}
}

// CompareOp selects the relational/equality test COMPARE_OP performs.
type CompareOp int32

const (
	CmpLT CompareOp = iota
	CmpLE
	CmpEQ
	CmpNE
	CmpGT
	CmpGE
)

var compareOpNames = map[CompareOp]string{
	CmpLT: "<",
	CmpLE: "<=",
	CmpEQ: "==",
	CmpNE: "!=",
	CmpGT: ">",
	CmpGE: ">=",
}

func (c CompareOp) String() string {
	if n, ok := compareOpNames[c]; ok {
		return n
	}
	return "?"
}
