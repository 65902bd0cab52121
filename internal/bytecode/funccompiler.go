package bytecode

import (
	"strconv"

	"github.com/javalette-lang/jtc/internal/ast"
)

// funcCompiler assembles one CodeObject's instruction stream and its
// three name pools (constants, globals, locals). Each Javalette
// function — and each built-in body, and the top-level module itself
// — gets its own funcCompiler; nothing is shared across them except
// the slot-naming convention (spec §4.5: "Parameters are named
// _0, _1, …; local variables use their unique ids as slot names").
type funcCompiler struct {
	code []Instruction

	consts   []interface{}
	constIdx map[interface{}]int

	names   []string
	nameIdx map[string]int

	varnames []string
	varIdx   map[string]int

	paramIndex map[*ast.Variable]int
}

func newFuncCompiler() *funcCompiler {
	return &funcCompiler{
		constIdx:   make(map[interface{}]int),
		nameIdx:    make(map[string]int),
		varIdx:     make(map[string]int),
		paramIndex: make(map[*ast.Variable]int),
	}
}

func (fc *funcCompiler) addConst(v interface{}) int32 {
	if _, isList := v.([]interface{}); isList {
		// A list is not a valid map key; give it its own slot.
		fc.consts = append(fc.consts, v)
		return int32(len(fc.consts) - 1)
	}
	if idx, ok := fc.constIdx[v]; ok {
		return int32(idx)
	}
	idx := len(fc.consts)
	fc.consts = append(fc.consts, v)
	fc.constIdx[v] = idx
	return int32(idx)
}

func (fc *funcCompiler) addName(n string) int32 {
	if idx, ok := fc.nameIdx[n]; ok {
		return int32(idx)
	}
	idx := len(fc.names)
	fc.names = append(fc.names, n)
	fc.nameIdx[n] = idx
	return int32(idx)
}

func (fc *funcCompiler) addVarname(n string) int32 {
	if idx, ok := fc.varIdx[n]; ok {
		return int32(idx)
	}
	idx := len(fc.varnames)
	fc.varnames = append(fc.varnames, n)
	fc.varIdx[n] = idx
	return int32(idx)
}

// emit appends an instruction and returns its index, so callers can
// patch a forward jump's argument once the target position is known.
func (fc *funcCompiler) emit(op OpCode, arg int32) int {
	fc.code = append(fc.code, Instruction{Op: op, Arg: arg})
	return len(fc.code) - 1
}

func (fc *funcCompiler) here() int32 { return int32(len(fc.code)) }

func (fc *funcCompiler) patch(index int, target int32) {
	fc.code[index].Arg = target
}

// slotName is the opaque local-slot token a Reference to v compiles
// to: "_i" for the i-th parameter, v's unique id otherwise (spec
// §4.5, "Function code objects").
func (fc *funcCompiler) slotName(v *ast.Variable) string {
	if i, ok := fc.paramIndex[v]; ok {
		return paramSlot(i)
	}
	return strconv.Itoa(v.ID)
}

func paramSlot(i int) string { return "_" + strconv.Itoa(i) }

func (fc *funcCompiler) loadVar(v *ast.Variable) {
	fc.emit(OP_LOAD_LOCAL, fc.addVarname(fc.slotName(v)))
}

func (fc *funcCompiler) storeVar(v *ast.Variable) {
	fc.emit(OP_STORE_LOCAL, fc.addVarname(fc.slotName(v)))
}
