package bytecode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/javalette-lang/jtc/internal/diag"
	"github.com/javalette-lang/jtc/internal/lexer"
	"github.com/javalette-lang/jtc/internal/parser"
	"github.com/javalette-lang/jtc/internal/semantic"
)

func compileSource(t *testing.T, src string) *Module {
	t.Helper()
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bag := semantic.Analyze(prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected semantic errors: %s", diag.Format(bag.All()))
	}
	return Compile(prog, "test.jl", ExitStyleModern)
}

func findFunc(t *testing.T, m *Module, name string) *CodeObject {
	t.Helper()
	for _, c := range m.Code.Consts {
		if co, ok := c.(*CodeObject); ok && co.Name == name {
			return co
		}
	}
	t.Fatalf("no compiled function named %q", name)
	return nil
}

func TestCompileReturnsLiteral(t *testing.T) {
	m := compileSource(t, `int main(){ return 42; }`)
	main := findFunc(t, m, "main")

	last := main.Code[len(main.Code)-1]
	if last.Op != OP_RETURN_VALUE {
		t.Fatalf("expected trailing RETURN_VALUE, got %s", last.Op)
	}
	// The explicit `return 42;` sits just before the implicit
	// LOAD_CONST None; RETURN_VALUE trailer every code object ends with.
	ret := main.Code[len(main.Code)-3]
	if ret.Op != OP_RETURN_VALUE {
		t.Fatalf("expected RETURN_VALUE for the explicit return, got %s", ret.Op)
	}
	prev := main.Code[len(main.Code)-4]
	if prev.Op != OP_LOAD_CONST {
		t.Fatalf("expected LOAD_CONST before return, got %s", prev.Op)
	}
	if main.Consts[prev.Arg] != int64(42) {
		t.Fatalf("expected constant 42, got %v", main.Consts[prev.Arg])
	}
}

func TestCompileIfEmitsLegacyPopPattern(t *testing.T) {
	m := compileSource(t, `int main(){ if (true) { return 1; } return 0; }`)
	main := findFunc(t, m, "main")

	foundJump := false
	for i, instr := range main.Code {
		if instr.Op == OP_JUMP_IF_FALSE {
			foundJump = true
			if main.Code[i+1].Op != OP_POP_TOP {
				t.Fatalf("JUMP_IF_FALSE must be followed by POP_TOP on the fallthrough edge")
			}
		}
	}
	if !foundJump {
		t.Fatal("expected a JUMP_IF_FALSE in the compiled if")
	}
}

func TestCompileShortCircuitAnd(t *testing.T) {
	m := compileSource(t, `
		boolean f(){ return true; }
		int main(){ if (f() && f()) { return 1; } return 0; }
	`)
	main := findFunc(t, m, "main")

	found := false
	for _, instr := range main.Code {
		if instr.Op == OP_JUMP_IF_FALSE_OR_POP {
			found = true
		}
	}
	if !found {
		t.Fatal("expected && to lower via JUMP_IF_FALSE_OR_POP")
	}
}

func TestCompileWhileLoopsBackToCondition(t *testing.T) {
	m := compileSource(t, `int main(){ int i = 0; while (i < 10) { i = i + 1; } return i; }`)
	main := findFunc(t, m, "main")

	backEdge := false
	for i, instr := range main.Code {
		if instr.Op == OP_JUMP_ABSOLUTE && int(instr.Arg) < i {
			backEdge = true
		}
	}
	if !backEdge {
		t.Fatal("expected a backward JUMP_ABSOLUTE closing the while loop")
	}
}

func TestCompileCastEmitsCoercionCall(t *testing.T) {
	m := compileSource(t, `int main(){ double d = (double)1; return 0; }`)
	main := findFunc(t, m, "main")

	found := false
	for i, instr := range main.Code {
		if instr.Op == OP_LOAD_GLOBAL && main.Names[instr.Arg] == "*float" {
			if main.Code[i+1].Op != OP_ROT_TWO {
				t.Fatalf("coercion call must rotate the operand under the callee")
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected a cast to double to load the *float coercion intrinsic")
	}
}

func TestCompileModulePrologueAliasesRuntimeGlobals(t *testing.T) {
	m := compileSource(t, `int main(){ return 0; }`)

	seen := map[string]bool{}
	for i, instr := range m.Code.Code {
		if instr.Op == OP_STORE_GLOBAL {
			seen[m.Code.Names[instr.Arg]] = true
		}
		if i > 40 {
			break
		}
	}
	for _, alias := range []string{"*bool", "*int", "*float", "*input", "*error"} {
		if !seen[alias] {
			t.Errorf("expected prologue to bind alias %q", alias)
		}
	}
}

func compileSourceWithStyle(t *testing.T, src string, style ExitStyle) *Module {
	t.Helper()
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bag := semantic.Analyze(prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected semantic errors: %s", diag.Format(bag.All()))
	}
	return Compile(prog, "test.jl", style)
}

func TestCompileLegacyExitStyleImportsSysModule(t *testing.T) {
	m := compileSourceWithStyle(t, `int main(){ return 0; }`, ExitStyleModern)
	legacy := compileSourceWithStyle(t, `int main(){ return 0; }`, ExitStyleLegacy)

	wantName := func(mod *Module, name string) bool {
		for _, n := range mod.Code.Names {
			if n == name {
				return true
			}
		}
		return false
	}
	if !wantName(m, "exit") {
		t.Fatal("modern exit style should import exit directly")
	}
	if !wantName(legacy, "sys") {
		t.Fatal("legacy exit style should bind the sys module")
	}
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	m := compileSource(t, `int main(){ printInt(1+2); return 0; }`)
	var buf bytes.Buffer
	NewDisassembler(&buf).Disassemble(m)
	if !strings.Contains(buf.String(), "main") {
		t.Fatal("expected disassembly to mention the main function")
	}
}

func TestSerializeModuleStartsWithMagic(t *testing.T) {
	m := compileSource(t, `int main(){ return 0; }`)
	data, err := NewSerializer().SerializeModule(m)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(MagicNumber)) {
		t.Fatal("serialized module must start with the magic number")
	}
}
