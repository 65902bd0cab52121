package bytecode

// CodeObject is the record shape the host-runtime code-object writer
// accepts (spec §6): one per compiled function, plus one for the
// top-level module itself.
type CodeObject struct {
	Name        string
	Filename    string
	FirstLine   int
	Args        []string // parameter slot names, "_0", "_1", ...
	Varargs     bool
	Varkwargs   bool
	NewLocals   bool
	Freevars    []string
	Docstring   *string

	Consts   []interface{} // int64, float64, bool, string, nil (None), *CodeObject
	Names    []string      // global names referenced by LOAD_GLOBAL/STORE_GLOBAL/IMPORT_*
	Varnames []string      // local slot names referenced by LOAD_LOCAL/STORE_LOCAL
	Code     []Instruction
}

// Module is the compiled unit handed to the serializer: the top-level
// code object, whose Filename records the source it was compiled from.
type Module struct {
	Code *CodeObject
}
