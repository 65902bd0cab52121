package bytecode

import "github.com/javalette-lang/jtc/internal/types"

// coercionIntrinsic maps a primitive type to the aliased global name
// the prologue binds it under (spec §4.5 point 1): the runtime's own
// `int`/`float`/`bool` builtins, renamed so user code can never shadow
// them.
var coercionIntrinsic = map[types.Type]string{
	types.Int:     "*int",
	types.Double:  "*float",
	types.Boolean: "*bool",
}

// aliasedGlobal names a prologue alias together with the runtime
// global it is bound from (spec §4.5 point 1).
type aliasedGlobal struct {
	global  string
	starred string
}

// prologueAliases lists every name the module prologue rebinds under
// its starred form, so built-in bodies can reference the alias rather
// than a name user code could otherwise shadow.
var prologueAliases = []aliasedGlobal{
	{"bool", "*bool"},
	{"int", "*int"},
	{"float", "*float"},
	{"raw_input", "*input"},
	{"RuntimeError", "*error"},
}

const (
	aliasInput = "*input"
	aliasError = "*error"
)
