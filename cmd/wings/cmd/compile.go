package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/parser"
)

var (
	compileOutputFile string
	compileDisasm     bool
	compileVerbose    bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a wings file to bytecode",
	Long: `Compile a wings program to bytecode and save it as a .wingsc file,
the precompiled format pkg/wings.Engine.LoadChunkFile reads back via mmap.

Examples:
  wings compile script.wings
  wings compile script.wings -o out.wingsc
  wings compile script.wings --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutputFile, "output", "o", "", "output file (default: <input>.wingsc)")
	compileCmd.Flags().BoolVar(&compileDisasm, "disassemble", false, "print disassembled bytecode after compiling")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	prog, errs := parser.Parse(string(content))
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		return fmt.Errorf("parsing failed")
	}

	chunk, errs := compiler.Compile(prog, filename)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		return fmt.Errorf("compilation failed")
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiled %s: %d instructions, %d constants\n", filename, len(chunk.Code), len(chunk.Consts))
	}
	if compileDisasm {
		fmt.Fprint(os.Stderr, compiler.DisassembleToString(chunk))
	}

	data, err := compiler.SerializeChunk(chunk)
	if err != nil {
		return fmt.Errorf("failed to serialize bytecode: %w", err)
	}

	outFile := compileOutputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".wingsc"
		} else {
			outFile = filename + ".wingsc"
		}
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	return nil
}
