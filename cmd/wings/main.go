// Command wings is the shell collaborator around the embeddable
// interpreter: run/eval a script, inspect lexer/parser/compiler output,
// or precompile to a `.wingsc` bytecode file.
package main

import (
	"os"

	"github.com/wings-lang/wings/cmd/wings/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
