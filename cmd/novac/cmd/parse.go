package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/parser"
	"github.com/spf13/cobra"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Nova file and display its AST",
	Long: `Parse Nova source code and display the Abstract Syntax Tree.

Reads from stdin if no file is given. Parse errors are reported with
source context but do not stop the dump: the tolerant parser's partial
tree is still shown, matching how the editor's semantic index treats a
syntax error as non-fatal.

Examples:
  novac parse Main.nova
  novac parse --dump-ast Main.nova`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", true, "dump the full AST tree (otherwise, print one line per top-level declaration)")
}

func runParse(_ *cobra.Command, args []string) error {
	filename, src, err := readInput(args)
	if err != nil {
		return err
	}

	prog, parseErrs, lexErrs := parser.Parse(filename, src)

	if len(lexErrs) > 0 || len(parseErrs) > 0 {
		var compilerErrors []*errors.CompilerError
		for _, e := range lexErrs {
			compilerErrors = append(compilerErrors, &errors.CompilerError{
				Pos: e.Pos, Message: e.Message, Source: src, File: filename,
				Kind: errors.KindParse, Severity: errors.SeverityError,
			})
		}
		for _, e := range parseErrs {
			compilerErrors = append(compilerErrors, errors.NewCompilerError(e.Pos, e.Message, src, filename))
		}
		fmt.Fprint(os.Stderr, errors.FormatErrors(compilerErrors, true))
	}

	if parseDumpAST {
		dumpNode(prog, 0)
	} else {
		for _, d := range prog.Declarations {
			fmt.Println(d.String())
		}
	}

	if len(lexErrs) > 0 || len(parseErrs) > 0 {
		return fmt.Errorf("parsing produced %d error(s)", len(lexErrs)+len(parseErrs))
	}
	return nil
}

// dumpNode prints node and its children (via ast.Children, the same
// traversal internal/index's expression-offset builder walks) as an
// indented tree.
func dumpNode(n ast.Node, indent int) {
	if n == nil {
		return
	}
	fmt.Printf("%s%T %s\n", strings.Repeat("  ", indent), n, n.String())
	for _, c := range ast.Children(n) {
		dumpNode(c, indent+1)
	}
}
