package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/novalang/novac/internal/emit"
	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/hir"
	"github.com/novalang/novac/internal/mir"
	"github.com/novalang/novac/internal/parser"
	"github.com/novalang/novac/internal/semantic"
	"github.com/spf13/cobra"
)

var (
	outputDir      string
	skipTypeCheck  bool
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Nova source file straight to JVM class files",
	Long: `Compile lowers a .nova file through AST -> HIR -> MIR and emits
one .class file per declared class plus the module's top-level-function
holder class, writing them to the output directory.

Examples:
  novac compile Main.nova
  novac compile Main.nova -o build/classes
  novac compile Main.nova --skip-type-check`,
	Args: cobra.ExactArgs(1),
	RunE: compileFile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: alongside the input file)")
	compileCmd.Flags().BoolVar(&skipTypeCheck, "skip-type-check", false, "skip semantic analysis (emit even with type errors)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileFile(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	src := string(content)

	prog, parseErrs, lexErrs := parser.Parse(filename, src)
	if len(parseErrs) > 0 || len(lexErrs) > 0 {
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
		return fmt.Errorf("parsing failed with %d error(s)", len(compilerErrors))
	}

	if !skipTypeCheck {
		analyzer := semantic.New(prog)
		analyzer.Analyze()
		var compilerErrors []*errors.CompilerError
		for _, d := range analyzer.Diagnostics() {
			if d.Severity != errors.SeverityError {
				continue
			}
			compilerErrors = append(compilerErrors, &errors.CompilerError{
				Pos: d.Pos, Message: d.Message, Source: src, File: filename,
				Kind: errors.KindSemantic, Severity: d.Severity,
			})
		}
		if len(compilerErrors) > 0 {
			fmt.Fprint(os.Stderr, errors.FormatErrors(compilerErrors, true))
			return fmt.Errorf("semantic analysis failed with %d error(s)", len(compilerErrors))
		}
	}

	hirMod := hir.Lower(prog)
	mirMod := mir.Lower(hirMod)
	classes, err := emit.Emit(mirMod)
	if err != nil {
		return fmt.Errorf("bytecode emission failed: %w", err)
	}

	outDir := outputDir
	if outDir == "" {
		outDir = filepath.Dir(filename)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	for name, bytes := range classes {
		path := filepath.Join(outDir, name+".class")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, bytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if compileVerbose {
			fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", path, len(bytes))
		}
	}

	fmt.Printf("Compiled %s -> %d class file(s) in %s\n", filename, len(classes), outDir)
	return nil
}
