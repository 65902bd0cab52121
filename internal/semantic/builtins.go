package semantic

import (
	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/token"
	"github.com/javalette-lang/jtc/internal/types"
)

// builtinSpec names one of the six runtime intrinsics Pass A injects
// (spec §4.3 Pass A) along with its signature.
type builtinSpec struct {
	name   string
	ret    types.Type
	params []types.Type
}

// Builtins lists the six intrinsics every program implicitly
// declares. Both code generators key their literal emission bodies
// off these same names (spec §4.5/§4.6); semantic analysis only needs
// the signatures.
var Builtins = []builtinSpec{
	{"printInt", types.Void, []types.Type{types.Int}},
	{"printDouble", types.Void, []types.Type{types.Double}},
	{"printString", types.Void, []types.Type{types.String}},
	{"error", types.Void, nil},
	{"readInt", types.Int, nil},
	{"readDouble", types.Double, nil},
}

// injectBuiltins appends the intrinsic declarations to prog ahead of
// the user's own functions, so Pass B's duplicate-name check also
// catches a user function that shadows a built-in.
func injectBuiltins(prog *ast.Program) {
	injected := make([]*ast.Function, 0, len(Builtins))
	for _, b := range Builtins {
		params := make([]*ast.Variable, len(b.params))
		for i, pt := range b.params {
			params[i] = &ast.Variable{Name: builtinParamName(i), Decl: pt}
		}
		injected = append(injected, &ast.Function{
			Name:      b.name,
			Sig:       &types.Function{Return: b.ret, Args: b.params},
			Params:    params,
			Body:      &ast.Block{},
			PosV:      token.Position{},
			IsBuiltin: true,
		})
	}
	prog.Functions = append(injected, prog.Functions...)
}

func builtinParamName(i int) string {
	names := []string{"a", "b", "c"}
	if i < len(names) {
		return names[i]
	}
	return "_"
}
