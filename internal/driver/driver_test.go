package driver

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/javalette-lang/jtc/internal/bytecode"
)

func withCapturedStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.Bytes()
}

func notATerminal(*os.File) bool { return false }

func TestRunASTPrintsTree(t *testing.T) {
	out := withCapturedStdout(t, func() {
		if err := Run(`int main(){ return 0; }`, "t.jl", Options{Mode: ModeAST, IsTerminal: notATerminal}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	})
	if !strings.Contains(string(out), "main") {
		t.Fatalf("expected AST dump to mention main, got %q", out)
	}
}

func TestRunBytecodeWritesMagic(t *testing.T) {
	out := withCapturedStdout(t, func() {
		err := Run(`int main(){ return 0; }`, "t.jl", Options{Mode: ModeBytecode, IsTerminal: notATerminal})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	})
	if !bytes.HasPrefix(out, []byte(bytecode.MagicNumber)) {
		t.Fatalf("expected output to start with the module magic number, got %x", out[:4])
	}
}

func TestRunRefusesBinaryOnTerminal(t *testing.T) {
	err := Run(`int main(){ return 0; }`, "t.jl", Options{
		Mode:       ModeBytecode,
		IsTerminal: func(*os.File) bool { return true },
	})
	exitErr, ok := err.(*ExitError)
	if !ok {
		t.Fatalf("expected *ExitError, got %v (%T)", err, err)
	}
	if exitErr.Code != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.Code)
	}
}

func TestRunSemanticErrorExitsTwo(t *testing.T) {
	err := Run(`int f(){}`, "t.jl", Options{Mode: ModeAST, IsTerminal: notATerminal})
	exitErr, ok := err.(*ExitError)
	if !ok {
		t.Fatalf("expected *ExitError, got %v (%T)", err, err)
	}
	if exitErr.Code != 2 {
		t.Fatalf("expected exit code 2 for MissingReturn, got %d", exitErr.Code)
	}
}

func TestRunParseErrorExitsTwo(t *testing.T) {
	err := Run(`int main( { return 0; }`, "t.jl", Options{Mode: ModeAST, IsTerminal: notATerminal})
	exitErr, ok := err.(*ExitError)
	if !ok {
		t.Fatalf("expected *ExitError, got %v (%T)", err, err)
	}
	if exitErr.Code != 2 {
		t.Fatalf("expected exit code 2 for a parse failure, got %d", exitErr.Code)
	}
}

func TestDefaultOutputName(t *testing.T) {
	cases := []struct{ in, ext, want string }{
		{"foo.jl", ".dwc", "foo.dwc"},
		{"dir/foo.jl", "", "dir/foo"},
		{"noext", ".dwc", "noext.dwc"},
	}
	for _, c := range cases {
		if got := defaultOutputName(c.in, c.ext); got != c.want {
			t.Errorf("defaultOutputName(%q, %q) = %q, want %q", c.in, c.ext, got, c.want)
		}
	}
}
