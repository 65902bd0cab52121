package semantic

import "github.com/javalette-lang/jtc/internal/ast"

// SymbolTable is a stack-of-stacks name-resolution scope (spec §4.3
// Pass B): one map per block, chained to its enclosing block's table
// so a lookup walks outward until it finds a binding or runs out of
// scopes.
type SymbolTable struct {
	vars  map[string]*ast.Variable
	outer *SymbolTable
}

// NewSymbolTable creates a function's outermost scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{vars: make(map[string]*ast.Variable)}
}

// NewEnclosedSymbolTable creates a scope nested inside outer, entered
// on a Block and discarded on leaving it.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	return &SymbolTable{vars: make(map[string]*ast.Variable), outer: outer}
}

// IsDeclaredInCurrentScope reports whether name is already bound in
// this exact block, the condition that makes a declaration a
// redeclaration error.
func (st *SymbolTable) IsDeclaredInCurrentScope(name string) bool {
	_, ok := st.vars[name]
	return ok
}

// Define binds name to v in the current scope. Callers must have
// checked IsDeclaredInCurrentScope first.
func (st *SymbolTable) Define(name string, v *ast.Variable) {
	st.vars[name] = v
}

// Resolve looks up name in this scope and, failing that, every
// enclosing scope.
func (st *SymbolTable) Resolve(name string) (*ast.Variable, bool) {
	if v, ok := st.vars[name]; ok {
		return v, true
	}
	if st.outer != nil {
		return st.outer.Resolve(name)
	}
	return nil, false
}
