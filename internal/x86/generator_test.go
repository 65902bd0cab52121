package x86

import (
	"strings"
	"testing"

	"github.com/javalette-lang/jtc/internal/diag"
	"github.com/javalette-lang/jtc/internal/lexer"
	"github.com/javalette-lang/jtc/internal/parser"
	"github.com/javalette-lang/jtc/internal/semantic"
)

func compileListing(t *testing.T, src string) (Listing, *ConstPool) {
	t.Helper()
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bag := semantic.Analyze(prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected semantic errors: %s", diag.Format(bag.All()))
	}
	g := NewGenerator()
	return g.Generate(prog)
}

func asmText(t *testing.T, src string) string {
	t.Helper()
	listing, pool := compileListing(t, src)
	return Flatten(listing, pool)
}

func TestGeneratePublicMainTrampoline(t *testing.T) {
	out := asmText(t, `int main(){ return 0; }`)
	if !strings.Contains(out, "GLOBAL main") {
		t.Fatal("expected the public main trampoline to be emitted")
	}
	if !strings.Contains(out, "_f_main:") {
		t.Fatal("expected main's Javalette body to be labeled _f_main")
	}
}

func TestGenerateIfEmitsTestAndJumpZero(t *testing.T) {
	out := asmText(t, `int main(){ if (true) { return 1; } return 0; }`)
	if !strings.Contains(out, "or eax, eax") || !strings.Contains(out, "jz ") {
		t.Fatal("expected if to lower via or eax,eax / jz")
	}
}

func TestGenerateWhileJumpsForwardToCondition(t *testing.T) {
	out := asmText(t, `int main(){ int i = 0; while (i < 10) { i = i + 1; } return i; }`)
	if !strings.Contains(out, "while_cond") || !strings.Contains(out, "while_top") {
		t.Fatal("expected while to emit both a condition and top label")
	}
	jmpIdx := strings.Index(out, "jmp _while_cond_")
	if jmpIdx < 0 || jmpIdx > strings.Index(out, "_while_top_") {
		t.Fatal("expected the loop to jump to its condition before the top label")
	}
}

func TestGenerateIntDivisionGuardsZero(t *testing.T) {
	out := asmText(t, `int main(){ int a = 4; int b = 2; return a / b; }`)
	if !strings.Contains(out, "_l_0div_error") {
		t.Fatal("expected integer division to guard against a zero divisor")
	}
	if !strings.Contains(out, "idiv ecx") {
		t.Fatal("expected integer division to use idiv")
	}
}

func TestGenerateDoubleArithmeticUsesX87Pair(t *testing.T) {
	out := asmText(t, `double f(){ double a = 1.5; double b = 2.5; return a + b; } int main(){ return 0; }`)
	if !strings.Contains(out, "faddp") {
		t.Fatal("expected double addition to lower via faddp")
	}
}

func TestGenerateCastIntToDoubleUsesFild(t *testing.T) {
	out := asmText(t, `double f(){ int x = 3; return (double)x; } int main(){ return 0; }`)
	if !strings.Contains(out, "fild dword") {
		t.Fatal("expected an int-to-double cast to use fild")
	}
}

func TestGenerateCastDoubleToIntUsesTruncateControlWord(t *testing.T) {
	out := asmText(t, `int main(){ double x = 3.5; return (int)x; }`)
	if !strings.Contains(out, "fnstcw") || !strings.Contains(out, "fldcw") {
		t.Fatal("expected a double-to-int cast to save/restore the FPU control word")
	}
}

func TestGenerateCallPushesArgumentsRightToLeft(t *testing.T) {
	src := `
		int add(int a, int b){ return a + b; }
		int main(){ return add(1, 2); }
	`
	out := asmText(t, src)
	if !strings.Contains(out, "call _f_add") {
		t.Fatal("expected a call into _f_add")
	}
	second, first := strings.Index(out, "mov eax, 2"), strings.Index(out, "mov eax, 1")
	if second < 0 || first < 0 || second > first {
		t.Fatal("expected the second argument to be evaluated and pushed before the first")
	}
}

func TestGenerateDoubleCallArgumentUsesRawStackPush(t *testing.T) {
	src := `
		double id(double x){ return x; }
		int main(){ double d = id(1.5); return 0; }
	`
	out := asmText(t, src)
	if !strings.Contains(out, "sub esp, 8") || !strings.Contains(out, "fstp qword [esp]") {
		t.Fatal("expected a double argument to be pushed via sub esp,8 / fstp qword [esp]")
	}
}

func TestGenerateShortCircuitAndSkipsRHS(t *testing.T) {
	src := `
		boolean f(){ return true; }
		int main(){ if (f() && f()) { return 1; } return 0; }
	`
	out := asmText(t, src)
	if !strings.Contains(out, "shortcircuit") {
		t.Fatal("expected && to lower via a short-circuit label")
	}
}

func TestGenerateDoesNotPanicOnPrintBuiltins(t *testing.T) {
	src := `
		int main(){
			printInt(1 + 2);
			printDouble(1.5);
			printString("hi");
			return 0;
		}
	`
	out := asmText(t, src)
	if !strings.Contains(out, "call printf") || !strings.Contains(out, "call puts") {
		t.Fatal("expected printInt/printString to call printf/puts")
	}
}
