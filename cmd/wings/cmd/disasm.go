package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wings-lang/wings/internal/compiler"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.wingsc>",
	Short: "Disassemble a compiled bytecode file",
	Long:  `Load a .wingsc file (written by "wings compile") and print its bytecode listing.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	chunk, err := compiler.DeserializeChunk(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize %s: %w", args[0], err)
	}
	fmt.Print(compiler.DisassembleToString(chunk))
	return nil
}
