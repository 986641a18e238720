package emit

import (
	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// intLocals computes §4.3.4's int-local promotion set: locals whose
// declared MIR type is INT and that no instruction disqualifies by
// writing a non-int-producing value into them.
func intLocals(fn *mir.Function, scan *Prescan) map[int]bool {
	candidates := map[int]bool{}
	for _, l := range fn.Locals {
		if l.Type.Kind == mir.KindInt {
			candidates[l.Index] = true
		}
	}

	for _, blk := range fn.Blocks {
		for _, inst := range blk.Instructions {
			if inst.Dest == mir.NoDest || !candidates[inst.Dest] {
				continue
			}
			if !safeWrite(fn, inst, scan) {
				delete(candidates, inst.Dest)
			}
		}
	}

	// Primary constructors that delegate (this(...)) cannot unbox
	// parameters at entry: the arguments may be read before the
	// super/delegate call runs (§4.3.4 "Parameters only stay
	// promoted...").
	if fn.IsConstructor && fn.DelegatesThis {
		for i := 0; i < fn.ParamCount; i++ {
			delete(candidates, i)
		}
	}

	return candidates
}

func localType(fn *mir.Function, idx int) mir.Type {
	if idx < 0 || idx >= len(fn.Locals) {
		return mir.TObject
	}
	return fn.Locals[idx].Type
}

func safeWrite(fn *mir.Function, inst mir.Instruction, scan *Prescan) bool {
	switch inst.Op {
	case mir.OpConstInt:
		return true
	case mir.OpMove:
		if len(inst.Operands) != 1 {
			return false
		}
		return localType(fn, inst.Operands[0]).Kind == mir.KindInt
	case mir.OpBinary:
		op, _ := inst.Extra.(mir.BinOp)
		if op.IsComparison() {
			return false
		}
		if len(inst.Operands) != 2 {
			return false
		}
		lt, rt := localType(fn, inst.Operands[0]), localType(fn, inst.Operands[1])
		if op == mir.BinAdd {
			if isStringOrObject(lt) || isStringOrObject(rt) {
				return false
			}
		}
		return lt.Kind == mir.KindInt && rt.Kind == mir.KindInt
	case mir.OpUnary:
		uop, _ := inst.Extra.(mir.UnOp)
		if uop != mir.UnNeg && uop != mir.UnBNot {
			return false
		}
		if len(inst.Operands) != 1 {
			return false
		}
		return localType(fn, inst.Operands[0]).Kind == mir.KindInt
	case mir.OpIndexGet:
		if len(inst.Operands) != 2 {
			return false
		}
		target := localType(fn, inst.Operands[0])
		return target.Kind == mir.KindArray && target.Elem != nil && target.Elem.Kind == mir.KindInt
	case mir.OpGetField:
		fr, _ := inst.Extra.(mir.FieldRef)
		if fr.Name == "size" || fr.Name == "length" {
			if len(inst.Operands) == 1 && localType(fn, inst.Operands[0]).Kind == mir.KindArray {
				return true
			}
		}
		desc, ok := scan.FieldDescriptor(fr.Owner, fr.Name)
		if !ok {
			desc = fr.Desc
		}
		return desc == "I"
	case mir.OpInvokeVirtual, mir.OpInvokeStatic, mir.OpInvokeInterface:
		mr, _ := inst.Extra.(mir.MethodRef)
		return mr.Desc != "" && classfile.ReturnType(mr.Desc) == "I"
	default:
		return false
	}
}

func isStringOrObject(t mir.Type) bool {
	return t.Kind == mir.KindObject
}
