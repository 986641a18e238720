package emit

import "github.com/novalang/novac/internal/mir"

// fusedInfo describes a compare-branch fusion ready to emit: the
// comparison operator, its two operand locals, and the resolved
// dispatch kind (§4.3.5 "Compare-branch fusion").
type fusedInfo struct {
	op    mir.BinOp
	left  int
	right int
	kind  mir.Kind // numeric kind for INT/LONG/FLOAT/DOUBLE, KindObject for reference compares
}

// detectFusion implements §4.3.5/§4.3 step 8's peephole: either trust
// an upstream-annotated Terminator.Fused, or notice that blk's last
// instruction is the BINARY comparison feeding the Branch condition
// and is not read anywhere else. Returns the (possibly trimmed)
// instruction slice and a non-nil fusedInfo when fusion applies.
func (mb *methodBuilder) detectFusion(blk *mir.BasicBlock, instrs []mir.Instruction) (trimmed []mir.Instruction, info *fusedInfo) {
	term := blk.Term
	if term.Kind != mir.TermBranch {
		return instrs, nil
	}
	if term.Fused != nil {
		return instrs, &fusedInfo{op: term.Fused.Op, left: term.Fused.Left, right: term.Fused.Right, kind: term.Fused.OperandType.Kind}
	}
	if len(instrs) == 0 {
		return instrs, nil
	}
	last := instrs[len(instrs)-1]
	if last.Op != mir.OpBinary || last.Dest != term.Cond || len(last.Operands) != 2 {
		return instrs, nil
	}
	op, ok := last.Extra.(mir.BinOp)
	if !ok || !op.IsComparison() || op == mir.BinAnd || op == mir.BinOr {
		return instrs, nil
	}
	if mb.usageCount(last.Dest) != 1 {
		return instrs, nil // condition local read elsewhere; can't elide its materialization
	}
	lt := localType(mb.fn, last.Operands[0])
	rt := localType(mb.fn, last.Operands[1])
	kind := dispatchKind(lt, rt)
	return instrs[:len(instrs)-1], &fusedInfo{op: op, left: last.Operands[0], right: last.Operands[1], kind: kind}
}

// dispatchKind resolves which of the five fusion lowerings applies:
// the numeric ladder when both operands are primitive-numeric-typed,
// otherwise KindObject (Objects.equals / Comparable.compareTo path).
func dispatchKind(lt, rt mir.Type) mir.Kind {
	if isNumeric(lt.Kind) && isNumeric(rt.Kind) {
		return resolveNumericKind(lt.Kind, rt.Kind)
	}
	return mir.KindObject
}

func isNumeric(k mir.Kind) bool {
	switch k {
	case mir.KindInt, mir.KindLong, mir.KindFloat, mir.KindDouble, mir.KindChar, mir.KindBoolean:
		return true
	default:
		return false
	}
}

// usageCount counts every operand reference to local across the whole
// function's instructions and terminators (used to decide whether a
// CONST_INT or the fused comparison's own destination is read from
// anywhere else).
func (mb *methodBuilder) usageCount(local int) int {
	n := 0
	for _, b := range mb.fn.Blocks {
		for _, inst := range b.Instructions {
			for _, op := range inst.Operands {
				if op == local {
					n++
				}
			}
		}
		t := b.Term
		switch t.Kind {
		case mir.TermBranch:
			if t.Cond == local {
				n++
			}
		case mir.TermReturn:
			if t.ReturnLocal == local {
				n++
			}
		case mir.TermThrow:
			if t.ThrowLocal == local {
				n++
			}
		case mir.TermSwitch:
			if t.SwitchKey == local {
				n++
			}
		}
	}
	return n
}

// constIntValue returns the literal int32 value local holds if it was
// produced by a single, unambiguous CONST_INT instruction.
func (mb *methodBuilder) constIntValue(local int) (int32, bool) {
	for _, b := range mb.fn.Blocks {
		for _, inst := range b.Instructions {
			if inst.Op == mir.OpConstInt && inst.Dest == local {
				switch v := inst.Extra.(type) {
				case int64:
					return int32(v), true
				case int32:
					return v, true
				case int:
					return int32(v), true
				}
				return 0, false
			}
		}
	}
	return 0, false
}

// emitZeroCompare maps a BinOp to the single-operand comparison-to-zero
// opcode family (IFEQ-style) used once the other side is LCMP/FCMP/
// DCMP'd to an int, or once an INT comparison is special-cased to a
// constant-zero form.
func (mb *methodBuilder) emitZeroCompare(op mir.BinOp, label int) {
	switch op {
	case mir.BinEq:
		mb.cb.IfEq(label)
	case mir.BinNeq:
		mb.cb.IfNe(label)
	case mir.BinLt:
		mb.cb.IfLt(label)
	case mir.BinLe:
		mb.cb.IfLe(label)
	case mir.BinGt:
		mb.cb.IfGt(label)
	case mir.BinGe:
		mb.cb.IfGe(label)
	}
}

func reverseOp(op mir.BinOp) mir.BinOp {
	switch op {
	case mir.BinLt:
		return mir.BinGt
	case mir.BinLe:
		return mir.BinGe
	case mir.BinGt:
		return mir.BinLt
	case mir.BinGe:
		return mir.BinLe
	default:
		return op // EQ/NE are symmetric
	}
}

func (mb *methodBuilder) emitIIcmp(op mir.BinOp, label int) {
	switch op {
	case mir.BinEq:
		mb.cb.IfIcmpEq(label)
	case mir.BinNeq:
		mb.cb.IfIcmpNe(label)
	case mir.BinLt:
		mb.cb.IfIcmpLt(label)
	case mir.BinLe:
		mb.cb.IfIcmpLe(label)
	case mir.BinGt:
		mb.cb.IfIcmpGt(label)
	case mir.BinGe:
		mb.cb.IfIcmpGe(label)
	}
}

// emitFusedBranch emits info's direct conditional jump to thenLabel,
// falling through to an unconditional jump to elseLabel, dispatching
// by numeric kind per §4.3.5.
func (mb *methodBuilder) emitFusedBranch(info *fusedInfo, thenLabel, elseLabel int) {
	switch info.kind {
	case mir.KindInt, mir.KindChar, mir.KindBoolean:
		mb.emitIntFusedBranch(info, thenLabel)
	case mir.KindLong:
		mb.loadNumeric(info.left, mir.KindLong)
		mb.loadNumeric(info.right, mir.KindLong)
		mb.cb.Lcmp()
		mb.emitZeroCompare(info.op, thenLabel)
	case mir.KindFloat:
		mb.loadNumeric(info.left, mir.KindFloat)
		mb.loadNumeric(info.right, mir.KindFloat)
		if info.op == mir.BinLt || info.op == mir.BinLe {
			mb.cb.Fcmpg()
		} else {
			mb.cb.Fcmpl()
		}
		mb.emitZeroCompare(info.op, thenLabel)
	case mir.KindDouble:
		mb.loadNumeric(info.left, mir.KindDouble)
		mb.loadNumeric(info.right, mir.KindDouble)
		if info.op == mir.BinLt || info.op == mir.BinLe {
			mb.cb.Dcmpg()
		} else {
			mb.cb.Dcmpl()
		}
		mb.emitZeroCompare(info.op, thenLabel)
	default: // KindObject
		if info.op == mir.BinEq || info.op == mir.BinNeq {
			mb.loadAsObject(info.left)
			mb.loadAsObject(info.right)
			mb.cb.InvokeStatic("java/util/Objects", "equals", "(Ljava/lang/Object;Ljava/lang/Object;)Z")
			if info.op == mir.BinEq {
				mb.cb.IfNe(thenLabel)
			} else {
				mb.cb.IfEq(thenLabel)
			}
		} else {
			mb.loadAsObject(info.left)
			mb.cb.CheckCast("java/lang/Comparable")
			mb.loadAsObject(info.right)
			mb.cb.InvokeInterface("java/lang/Comparable", "compareTo", "(Ljava/lang/Object;)I")
			mb.emitZeroCompare(info.op, thenLabel)
		}
	}
	mb.cb.Goto(elseLabel)
}

// emitIntFusedBranch implements the INT case's constant-zero
// special-casing and operand reversal (§4.3.5).
func (mb *methodBuilder) emitIntFusedBranch(info *fusedInfo, thenLabel int) {
	if v, ok := mb.constIntValue(info.right); ok && v == 0 {
		mb.loadNumeric(info.left, mir.KindInt)
		mb.emitZeroCompare(info.op, thenLabel)
		return
	}
	if v, ok := mb.constIntValue(info.left); ok && v == 0 {
		mb.loadNumeric(info.right, mir.KindInt)
		mb.emitZeroCompare(reverseOp(info.op), thenLabel)
		return
	}
	mb.loadNumeric(info.left, mir.KindInt)
	mb.loadNumeric(info.right, mir.KindInt)
	mb.emitIIcmp(info.op, thenLabel)
}

// loadNumeric loads local and coerces it to a primitive of kind,
// whether it is a promoted int slot or a boxed Object slot of any
// numeric wrapper.
func (mb *methodBuilder) loadNumeric(local int, kind mir.Kind) {
	if mb.intSet[local] {
		mb.cb.Load('I', local)
		if kind != mir.KindInt {
			mb.convertFromInt(kind)
		}
		return
	}
	mb.cb.Load('A', local)
	mb.unboxTOS(kind)
}

func (mb *methodBuilder) convertFromInt(kind mir.Kind) {
	switch kind {
	case mir.KindLong:
		mb.cb.I2L()
	case mir.KindFloat:
		mb.cb.I2F()
	case mir.KindDouble:
		mb.cb.I2D()
	}
}
