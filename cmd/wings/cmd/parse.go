package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/parser"
)

var (
	parseExpression bool
	parseDumpAST    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse wings source and display the AST",
	Long: `Parse wings source code and print it back out (or, with --dump-ast,
its full statement tree).

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full statement tree")
}

func runParse(_ *cobra.Command, args []string) error {
	var input string
	switch {
	case parseExpression:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	prog, errs := parser.Parse(input)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		return fmt.Errorf("parsing failed")
	}

	if parseDumpAST {
		fmt.Printf("Program (%d statements)\n", len(prog.Statements))
		for _, stmt := range prog.Statements {
			dumpASTNode(stmt, 1)
		}
		return nil
	}
	for _, stmt := range prog.Statements {
		fmt.Println(stmt.String())
	}
	return nil
}

func dumpASTNode(node ast.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%T: %s\n", indent, node, node.String())
}
