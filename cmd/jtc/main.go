// Command jtc is the Javalette compiler driver (spec §6).
package main

import (
	"os"

	"github.com/javalette-lang/jtc/cmd/jtc/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:]))
}
