// Package emit lowers MIR into JVM class files (spec.md §4.3, "The
// bytecode emitter"). It owns the constant pool, code, and class-file
// layout decisions; internal/mir's job stops at a typed, basic-block
// IR free of any JVM encoding concerns.
package emit

import (
	"fmt"

	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// Emit lowers every class (and, if the module has any, the synthesized
// $Module holder for top-level functions) into its serialized class
// file, keyed by internal name.
func Emit(mod *mir.Module) (map[string][]byte, error) {
	scan := BuildPrescan(mod)
	out := map[string][]byte{}

	for _, c := range mod.Classes {
		classes, err := EmitClass(scan, c)
		if err != nil {
			return nil, err
		}
		for _, co := range classes {
			out[co.name] = co.bytes
		}
	}

	if mod.TopLevelClassName != "" {
		bs, err := emitModuleClass(scan, mod)
		if err != nil {
			return nil, err
		}
		out[mod.TopLevelClassName] = bs
	}

	return out, nil
}

// emitModuleClass synthesizes the $Module holder class a source file's
// top-level functions land on (§4.3 "Top-level functions"): a default
// constructor plus one public static method per function.
func emitModuleClass(scan *Prescan, mod *mir.Module) ([]byte, error) {
	cp := classfile.NewPool()
	cw := classfile.NewClassWriter(cp, classfile.AccPublic|classfile.AccFinal|classfile.AccSuper, mod.TopLevelClassName, "")

	ctorCb := classfile.NewCodeBuilder(cp)
	ctorCb.SetMaxLocals(1)
	ctorCb.Load('A', 0)
	ctorCb.InvokeSpecial("java/lang/Object", "<init>", "()V")
	ctorCb.Return('V')
	if err := addBuiltMethod(cw, cp, ctorCb, classfile.AccPublic, "<init>", "()V"); err != nil {
		return nil, err
	}

	for _, fn := range mod.TopLevelFuncs {
		m, err := EmitMethod(cp, scan, fn, mod.TopLevelClassName, classfile.AccPublic|classfile.AccStatic)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", mod.TopLevelClassName, err)
		}
		cw.AddMethod(m)
	}

	return cw.Bytes()
}
