// Package driver wires the lexer, parser, semantic analyzer and the
// two code generators into the three output stages the CLI exposes
// (spec §4.7/§6): pretty-printed AST, serialized bytecode module, or
// an assembled-and-linked native executable. It owns none of the
// compiler's internal state — it only sequences the stages and
// translates their errors into the exit-code contract (spec §7).
package driver

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/javalette-lang/jtc/internal/ast"
	"github.com/javalette-lang/jtc/internal/bytecode"
	"github.com/javalette-lang/jtc/internal/diag"
	"github.com/javalette-lang/jtc/internal/lexer"
	"github.com/javalette-lang/jtc/internal/parser"
	"github.com/javalette-lang/jtc/internal/semantic"
	"github.com/javalette-lang/jtc/internal/x86"
)

// Mode selects which of the three output stages (spec §4.7) a Run
// produces.
type Mode int

const (
	// ModeBytecode serializes the compiled module to the host
	// runtime's on-disk bytecode form (CLI default, spec §6).
	ModeBytecode Mode = iota
	// ModeAST pretty-prints the decorated AST to stdout.
	ModeAST
	// ModeNative assembles and links a 32-bit ELF executable.
	ModeNative
)

// Options configures one compilation run (spec §6 CLI).
type Options struct {
	Mode       Mode
	Output     string // "": -T/-P write to stdout, -X derives a file name from the source
	ExitStyle  bytecode.ExitStyle
	Assembler  string // defaults to "nasm"
	Linker     string // defaults to "gcc"
	IsTerminal func(*os.File) bool
}

// ExitError carries the process exit code a failed Run should
// terminate with (spec §5/§7: 1 for usage errors, 2 for compilation
// failures).
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Run executes the full pipeline over src (named filename for
// diagnostics and for the emitted bytecode module's own Filename
// field), writing output per opts. It returns an *ExitError on any
// failure; the caller's only job is to report it and exit with its
// Code.
func Run(src, filename string, opts Options) error {
	prog, err := parseSource(src, filename)
	if err != nil {
		return err
	}

	if bag := semantic.Analyze(prog); bag.HasErrors() {
		fmt.Fprintln(os.Stderr, diag.Format(bag.All()))
		return &ExitError{Code: 2, Message: "semantic analysis failed"}
	}

	switch opts.Mode {
	case ModeAST:
		return runAST(prog, opts)
	case ModeNative:
		return runNative(prog, filename, opts)
	default:
		return runBytecode(prog, filename, opts)
	}
}

// parseSource runs the lexer and parser, translating either's fatal
// error into a diagnostic line on stderr and a compile-failure exit
// (spec §7: lex/parse errors abort immediately).
func parseSource(src, filename string) (*ast.Program, error) {
	l := lexer.New(src)
	prog, err := parser.ParseProgram(l)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		return nil, &ExitError{Code: 2, Message: "parsing failed"}
	}
	prog.Filename = filename
	return prog, nil
}

// runAST pretty-prints the decorated tree. Always textual, so it is
// never refused for writing to a terminal (spec §4.7).
func runAST(prog *ast.Program, opts Options) error {
	return writeOutput(opts, []byte(prog.String()), false)
}

// runBytecode compiles and serializes the module in the host
// runtime's binary format (spec §4.5/§6).
func runBytecode(prog *ast.Program, filename string, opts Options) error {
	module := bytecode.Compile(prog, filename, opts.ExitStyle)
	data, err := bytecode.NewSerializer().SerializeModule(module)
	if err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("bytecode serialization failed: %s", err)}
	}
	return writeOutput(opts, data, true)
}

// runNative emits NASM text, then hands it to the external assembler
// and linker (spec §4.7/§6): the core never touches object or
// executable bytes itself, only the listing.
func runNative(prog *ast.Program, filename string, opts Options) error {
	listing := x86.Compile(prog)

	out := opts.Output
	if out == "" {
		out = defaultOutputName(filename, "")
	}

	return assembleAndLink(listing, out, opts)
}

// assembleAndLink writes listing to a scoped temporary .asm file,
// invokes the assembler to produce a .o, then the linker to produce
// out, releasing the temporary files on every exit path (spec §5/§6).
func assembleAndLink(listing, out string, opts Options) error {
	asmFile, aerr := os.CreateTemp("", "jtc-*.asm")
	if aerr != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("failed to create temp asm file: %s", aerr)}
	}
	asmPath := asmFile.Name()
	defer os.Remove(asmPath)

	if _, werr := asmFile.WriteString(listing); werr != nil {
		asmFile.Close()
		return &ExitError{Code: 2, Message: fmt.Sprintf("failed to write asm file: %s", werr)}
	}
	asmFile.Close()

	objFile, operr := os.CreateTemp("", "jtc-*.o")
	if operr != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("failed to create temp object file: %s", operr)}
	}
	objPath := objFile.Name()
	objFile.Close()
	defer os.Remove(objPath)

	assembler := opts.Assembler
	if assembler == "" {
		assembler = "nasm"
	}
	linker := opts.Linker
	if linker == "" {
		linker = "gcc"
	}

	asmCmd := exec.Command(assembler, "-O3", "-f", "elf", asmPath, "-o", objPath)
	asmCmd.Stderr = os.Stderr
	if runErr := asmCmd.Run(); runErr != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("assemble failed: %s", runErr)}
	}

	linkCmd := exec.Command(linker, "-m32", objPath, "-o", out)
	linkCmd.Stderr = os.Stderr
	if runErr := linkCmd.Run(); runErr != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("link failed: %s", runErr)}
	}
	return nil
}

// withOutput returns a copy of opts with Output overridden.
func withOutput(opts Options, out string) Options {
	opts.Output = out
	return opts
}

// writeOutput sends data to opts.Output, or to stdout when no output
// path was given — refusing the binary stages when stdout is a
// terminal (spec §4.7).
func writeOutput(opts Options, data []byte, binary bool) error {
	if opts.Output == "" {
		if err := refuseTTYIfBinary(opts, binary); err != nil {
			return err
		}
		_, err := os.Stdout.Write(data)
		if err != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("failed to write stdout: %s", err)}
		}
		return nil
	}
	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("failed to write %s: %s", opts.Output, err)}
	}
	return nil
}

// refuseTTYIfBinary implements spec §4.7's refusal: writing -P output
// to a terminal with no -o given is a fatal usage error. -X never
// writes to stdout (with no -o it writes a file named after the
// source), so it never reaches this check. -T is always textual and
// is never refused (§9 Open Question decisions).
func refuseTTYIfBinary(opts Options, binary bool) error {
	if !binary {
		return nil
	}
	isTerm := opts.IsTerminal
	if isTerm == nil {
		isTerm = isTerminal
	}
	if isTerm(os.Stdout) {
		return &ExitError{Code: 1, Message: "refusing to write binary output to a terminal; redirect or use -o"}
	}
	return nil
}

// isTerminal reports whether f is a character device, the stdlib-only
// substitute for a terminal-detection library (spec §6 has no such
// dependency; go-dws carries none either — see DESIGN.md).
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// defaultOutputName derives an output path from the source filename
// when -o is absent: replace its extension (if any) with ext, or
// append it.
func defaultOutputName(filename, ext string) string {
	base := filename
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			base = filename[:i]
			break
		}
		if filename[i] == '/' {
			break
		}
	}
	if ext == "" {
		return base
	}
	return base + ext
}
