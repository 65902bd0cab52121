package x86

import (
	"strings"
	"testing"
)

func TestGeneratePrintDoubleAppendsDotZeroQuirk(t *testing.T) {
	out := asmText(t, `int main(){ printDouble(1.0); return 0; }`)
	if !strings.Contains(out, "printdouble_append") {
		t.Fatal("expected printDouble to scan for a missing '.'/'e' and splice in \".0\"")
	}
	if !strings.Contains(out, "call snprintf") {
		t.Fatal("expected printDouble to format via snprintf")
	}
}

func TestGenerateReadIntUsesScanf(t *testing.T) {
	out := asmText(t, `int main(){ int x = readInt(); return x; }`)
	if !strings.Contains(out, "call scanf") {
		t.Fatal("expected readInt to call scanf")
	}
}

func TestGenerateReadDoubleLeavesValueOnFPUStack(t *testing.T) {
	out := asmText(t, `double f(){ double x = readDouble(); return x; } int main(){ return 0; }`)
	if !strings.Contains(out, "call scanf") {
		t.Fatal("expected readDouble to call scanf")
	}
	if !strings.Contains(out, "fld qword") {
		t.Fatal("expected readDouble to reload the scanned value via fld")
	}
}

func TestGenerateErrorJumpsToIOTrampoline(t *testing.T) {
	out := asmText(t, `int main(){ error(); return 0; }`)
	if !strings.Contains(out, "jmp _l_io_error") {
		t.Fatal("expected error() to jump into the shared I/O error trampoline")
	}
}
