package x86

import "github.com/javalette-lang/jtc/internal/ast"

// Compile lowers an analyzed program straight to NASM source text: one
// Generator pass to build the pseudo-op listing, one Flatten pass to
// resolve it against the lazy-ESP engine and append the data section.
func Compile(prog *ast.Program) string {
	g := NewGenerator()
	listing, pool := g.Generate(prog)
	return Flatten(listing, pool)
}
