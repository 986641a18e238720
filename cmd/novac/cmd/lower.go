package cmd

import (
	"fmt"
	"strings"

	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/hir"
	"github.com/novalang/novac/internal/mir"
	"github.com/novalang/novac/internal/parser"
	"github.com/spf13/cobra"
)

var lowerTo string

var lowerCmd = &cobra.Command{
	Use:   "lower [file]",
	Short: "Lower a Nova file to HIR or MIR and dump it",
	Long: `Lower parses a .nova file and runs it through AST -> HIR (and,
with --to mir, HIR -> MIR), printing a human-readable disassembly of
the result. This is the debugging counterpart to "novac compile": it
stops one or two stages short of bytecode so the desugaring and
register-allocation output can be inspected directly.

Examples:
  novac lower --to hir Main.nova
  novac lower --to mir Main.nova`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLower,
}

func init() {
	rootCmd.AddCommand(lowerCmd)

	lowerCmd.Flags().StringVar(&lowerTo, "to", "hir", `target IR to dump: "hir" or "mir"`)
}

func runLower(_ *cobra.Command, args []string) error {
	filename, src, err := readInput(args)
	if err != nil {
		return err
	}

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
		return fmt.Errorf("parsing failed:\n%s", errors.FormatErrors(compilerErrors, true))
	}

	hirMod := hir.Lower(prog)

	switch lowerTo {
	case "hir":
		dumpHIR(hirMod)
	case "mir":
		dumpMIR(mir.Lower(hirMod))
	default:
		return fmt.Errorf("unknown --to target %q (want \"hir\" or \"mir\")", lowerTo)
	}
	return nil
}

func dumpHIR(mod *hir.Module) {
	if mod.Package != nil {
		fmt.Println(mod.Package.String())
	}
	for _, imp := range mod.Imports {
		fmt.Println(imp.String())
	}
	for _, fn := range mod.Functions {
		dumpHIRFunction(fn, "")
	}
	for _, c := range mod.Classes {
		dumpHIRClass(c, "")
	}
}

func dumpHIRClass(c *hir.Class, indent string) {
	fmt.Printf("%sclass %s (kind=%v, modifiers=%v)\n", indent, c.Name, c.Kind, c.Modifiers)
	for _, f := range c.Fields {
		mut := "val"
		if f.Mutable {
			mut = "var"
		}
		fmt.Printf("%s  %s %s\n", indent, mut, f.Name)
	}
	for _, init := range c.InstanceInitializers {
		if init.Field != nil {
			fmt.Printf("%s  <init-field %s>\n", indent, init.Field.Name)
		} else {
			fmt.Printf("%s  <init-block>\n", indent)
		}
	}
	for _, ctor := range c.Constructors {
		dumpHIRFunction(ctor, indent+"  ")
	}
	for _, m := range c.Methods {
		dumpHIRFunction(m, indent+"  ")
	}
	for _, nc := range c.NestedClasses {
		dumpHIRClass(nc, indent+"  ")
	}
}

func dumpHIRFunction(fn *hir.Function, indent string) {
	kind := "fun"
	if fn.IsConstructor {
		kind = "<init>"
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}
	fmt.Printf("%s%s %s(%s)\n", indent, kind, fn.Name, strings.Join(params, ", "))
}

func dumpMIR(mod *mir.Module) {
	for _, fn := range mod.TopLevelFuncs {
		dumpMIRFunction(fn)
	}
	for _, c := range mod.Classes {
		fmt.Printf("class %s extends %s (kind=%v)\n", c.InternalName, orObject(c.SuperClass), c.Kind)
		for _, ctor := range c.Constructors {
			dumpMIRFunction(ctor)
		}
		for _, m := range c.Methods {
			dumpMIRFunction(m)
		}
	}
}

func orObject(name string) string {
	if name == "" {
		return "java/lang/Object"
	}
	return name
}

func dumpMIRFunction(fn *mir.Function) {
	fmt.Printf("  fun %s (locals=%d, entry=b%d)\n", fn.Name, len(fn.Locals), fn.Entry)
	for _, l := range fn.Locals {
		fmt.Printf("    local %d %s: %s\n", l.Index, l.Name, l.Type)
	}
	for _, blk := range fn.Blocks {
		fmt.Printf("    b%d:\n", blk.ID)
		for _, inst := range blk.Instructions {
			fmt.Printf("      %s d%d %v %v\n", inst.Op, inst.Dest, inst.Operands, inst.Extra)
		}
		fmt.Printf("      %s\n", dumpTerminator(blk.Term))
	}
}

func dumpTerminator(t mir.Terminator) string {
	switch t.Kind {
	case mir.TermGoto:
		return fmt.Sprintf("goto b%d", t.Target)
	case mir.TermBranch:
		return fmt.Sprintf("branch d%d ? b%d : b%d", t.Cond, t.Then, t.Else)
	case mir.TermReturn:
		return fmt.Sprintf("return d%d", t.ReturnLocal)
	case mir.TermThrow:
		return fmt.Sprintf("throw d%d", t.ThrowLocal)
	case mir.TermSwitch:
		return fmt.Sprintf("switch d%d -> %d case(s), default b%d", t.SwitchKey, len(t.SwitchCases), t.SwitchDefault)
	case mir.TermTailCall:
		return fmt.Sprintf("tailcall b%d", t.Target)
	default:
		return "unreachable"
	}
}
