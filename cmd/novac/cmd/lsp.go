package cmd

import (
	"context"
	"os"

	"github.com/novalang/novac/internal/lsp"
	"github.com/spf13/cobra"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Nova language server over stdio",
	Long: `lsp runs novac as an LSP 3.17 server, communicating over stdin/stdout.
Editors should launch it directly; it is not meant for interactive use.`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

// stdioReadWriteCloser adapts os.Stdin/os.Stdout to io.ReadWriteCloser
// for jsonrpc2's stream, closing both on Close.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error {
	_ = os.Stdin.Close()
	return os.Stdout.Close()
}

func runLSP(_ *cobra.Command, _ []string) error {
	server := lsp.NewServer()
	return server.Serve(context.Background(), stdioReadWriteCloser{})
}
