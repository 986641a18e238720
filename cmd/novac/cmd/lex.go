package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/novalang/novac/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexShowPos    bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Nova file and print the resulting tokens",
	Long: `Tokenize (lex) a Nova source file and print the resulting tokens,
one per line. Reads from stdin if no file is given.

Examples:
  novac lex Main.nova
  novac lex --show-pos Main.nova
  novac lex --only-errors Main.nova`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	filename, input, err := readInput(args)
	if err != nil {
		return err
	}

	l := lexer.New(filename, input)
	errorCount := 0
	for {
		tok := l.NextToken()
		isIllegal := tok.Type == lexer.ILLEGAL
		if isIllegal {
			errorCount++
		}
		if !lexOnlyErrors || isIllegal {
			printToken(tok)
		}
		if tok.Type == lexer.EOF {
			break
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	out := fmt.Sprintf("[%-20s]", tok.Type)
	if tok.Literal != "" {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}

// readInput resolves the (filename, content) pair for the lex/parse/
// lower debug subcommands: a path argument, or stdin with the
// conventional "<stdin>" file name when no argument is given.
func readInput(args []string) (filename, content string, err error) {
	if len(args) == 1 {
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		return filename, string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return "<stdin>", string(data), nil
}
