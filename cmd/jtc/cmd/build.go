package cmd

import (
	"fmt"
	"os"

	"github.com/javalette-lang/jtc/internal/bytecode"
	"github.com/javalette-lang/jtc/internal/driver"
	"github.com/spf13/cobra"
)

// runBuild is the root command's RunE: it resolves the selected
// output stage, reads the source file, and hands both to the driver
// (modeled on the teacher's compileScript in cmd/dwscript/cmd/compile.go).
func runBuild(_ *cobra.Command, args []string) error {
	mode, err := resolveMode(printAST, emitBC, emitNative)
	if err != nil {
		return err
	}

	filename := args[0]
	content, rerr := os.ReadFile(filename)
	if rerr != nil {
		return &driver.ExitError{Code: 1, Message: fmt.Sprintf("cannot read %s: %s", filename, rerr)}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "compiling %s\n", filename)
	}

	exitStyle := bytecode.ExitStyleModern
	if legacyExit {
		exitStyle = bytecode.ExitStyleLegacy
	}

	return driver.Run(string(content), filename, driver.Options{
		Mode:      mode,
		Output:    output,
		ExitStyle: exitStyle,
		Assembler: assembler,
		Linker:    linker,
	})
}

// resolveMode enforces that -T/-P/-X are mutually exclusive (spec §6:
// "jtc [-T|-P|-X]"), defaulting to bytecode emission when none is
// given.
func resolveMode(printAST, emitBC, emitNative bool) (driver.Mode, error) {
	count := 0
	mode := driver.ModeBytecode
	if printAST {
		count++
		mode = driver.ModeAST
	}
	if emitBC {
		count++
		mode = driver.ModeBytecode
	}
	if emitNative {
		count++
		mode = driver.ModeNative
	}
	if count > 1 {
		return 0, &driver.ExitError{Code: 1, Message: "at most one of -T, -P, -X may be given"}
	}
	return mode, nil
}
