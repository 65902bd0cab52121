package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveModeDefaultsToBytecode(t *testing.T) {
	mode, err := resolveMode(false, false, false)
	if err != nil {
		t.Fatalf("resolveMode: %v", err)
	}
	if mode != 0 {
		t.Fatalf("expected ModeBytecode (0), got %v", mode)
	}
}

func TestResolveModeRejectsMultipleFlags(t *testing.T) {
	if _, err := resolveMode(true, true, false); err == nil {
		t.Fatal("expected an error when -T and -P are both set")
	}
}

// resetFlags restores the package-level flag variables cobra binds
// to, since rootCmd is a package-level singleton reused across tests.
func resetFlags() {
	printAST, emitBC, emitNative = false, false, false
	output, assembler, linker = "", "", ""
	legacyExit, verbose = false, false
}

func TestExecuteWritesBytecodeFile(t *testing.T) {
	defer resetFlags()
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.jl")
	if err := os.WriteFile(src, []byte("int main(){ return 0; }"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "prog.dwc")

	code := Execute([]string{"-P", "-o", out, src})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected %s to exist: %v", out, err)
	}
}

func TestExecuteMissingFileExitsOne(t *testing.T) {
	defer resetFlags()
	code := Execute([]string{"/no/such/file.jl"})
	if code != 1 {
		t.Fatalf("expected exit code 1 for a missing source file, got %d", code)
	}
}

func TestExecuteSemanticFailureExitsTwo(t *testing.T) {
	defer resetFlags()
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.jl")
	if err := os.WriteFile(src, []byte("int f(){}"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	code := Execute([]string{"-T", src})
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestExecuteMutuallyExclusiveFlagsExitsOne(t *testing.T) {
	defer resetFlags()
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.jl")
	if err := os.WriteFile(src, []byte("int main(){ return 0; }"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	code := Execute([]string{"-T", "-P", src})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
