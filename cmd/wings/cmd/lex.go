package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wings-lang/wings/internal/lexer"
)

var (
	lexEvalExpr string
	showPos     bool
	showType    bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a wings file or expression",
	Long: `Tokenize a wings program and print its indentation-block tree.

Examples:
  wings lex script.wings
  wings lex -e "x = 1 + 2"
  wings lex --show-type --show-pos script.wings`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token kind names")
}

func lexScript(_ *cobra.Command, args []string) error {
	input, _, err := resolveInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	tree, errs := lexer.Lex(input)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		return fmt.Errorf("lexing failed")
	}

	printBlock(tree.Root, 0)
	return nil
}

func printBlock(b *lexer.Block, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, tok := range b.Tokens {
		printToken(tok, indent)
	}
	for _, child := range b.Children {
		printBlock(child, depth+1)
	}
}

func printToken(tok lexer.Token, indent string) {
	line := indent
	if showType {
		line += fmt.Sprintf("[%-8s] ", tok.Kind)
	}
	if tok.Literal != "" {
		line += fmt.Sprintf("%q", tok.Literal)
	} else {
		line += tok.Kind.String()
	}
	if showPos {
		line += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(line)
}
