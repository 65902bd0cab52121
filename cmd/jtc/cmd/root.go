// Package cmd is the jtc command-line surface: a single spf13/cobra
// root command exposing the three output stages of spec §6 as flags
// (there is no exploration subcommand tree the way the teacher's
// lex/parse/run verbs form one, since Javalette compilation is a
// single verb).
package cmd

import (
	"fmt"
	"os"

	"github.com/javalette-lang/jtc/internal/driver"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var (
	printAST   bool
	emitBC     bool
	emitNative bool
	output     string
	legacyExit bool
	assembler  string
	linker     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "jtc [-T|-P|-X] [-o output_file] source_file",
	Short: "Javalette compiler",
	Long: `jtc compiles a Javalette source file (spec §1) through a shared
lexer/parser/semantic pipeline into one of three artifacts: a
pretty-printed AST (-T), a bytecode module for the host runtime (-P,
the default), or a native 32-bit ELF executable assembled and linked
by external tools (-X).`,
	Version:       Version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuild,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
`, GitCommit))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().BoolVarP(&printAST, "print-ast", "T", false, "pretty-print the decorated AST to stdout")
	rootCmd.Flags().BoolVarP(&emitBC, "bytecode", "P", false, "emit a bytecode module (default)")
	rootCmd.Flags().BoolVarP(&emitNative, "native", "X", false, "assemble and link a native executable")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	rootCmd.Flags().BoolVar(&legacyExit, "legacy-exit", false, "use the legacy sys.exit import shape in bytecode modules (spec §4.5.3)")
	rootCmd.Flags().StringVar(&assembler, "assembler", "", "override the external assembler (default nasm)")
	rootCmd.Flags().StringVar(&linker, "linker", "", "override the external linker (default gcc)")
}

// Execute runs the root command and maps its error, if any, to the
// process exit code mandated by spec §5/§7: 1 for usage errors, 2 for
// compilation failures, 0 on success.
func Execute(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*driver.ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, "Error:", exitErr.Message)
			}
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
