package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wings-lang/wings/pkg/wings"
)

var (
	runEvalExpr   string
	runImportPath string
	runOSAccess   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a wings script",
	Long: `Execute a wings program from a file or inline expression.

Examples:
  # Run a script file
  wings run script.wings

  # Evaluate an inline expression
  wings run -e "print('Hello, World!')"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().StringVar(&runImportPath, "import-path", "", "directory `import` resolves modules against (default: the script's own directory)")
	runCmd.Flags().BoolVar(&runOSAccess, "os-access", false, "enable filesystem-touching builtins (open(), os/time modules)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := resolveInput(runEvalExpr, args)
	if err != nil {
		return err
	}

	importPath := runImportPath
	if importPath == "" && filename != "<eval>" {
		importPath = filepath.Dir(filename)
	}

	e, newErr := wings.New(
		wings.WithOutput(os.Stdout),
		wings.WithImportPath(importPath),
		wings.WithOSAccess(runOSAccess),
		wings.WithArgv(args),
	)
	if newErr != nil {
		fmt.Fprintln(os.Stderr, newErr)
		os.Exit(2)
	}
	defer e.Close()

	_, err = e.Eval(input)
	if err != nil {
		if se, ok := err.(*wings.ScriptError); ok {
			fmt.Fprintln(os.Stderr, e.FormatTraceback(se))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("execution failed")
	}
	return nil
}

// resolveInput picks the source text from the -e flag or, failing that,
// a single file argument; stdin is not read, and with neither it returns
// an error.
func resolveInput(evalExpr string, args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}

