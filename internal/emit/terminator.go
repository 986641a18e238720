package emit

import (
	"sort"

	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// emitTerminator closes out blk, consuming a non-nil fused when
// detectFusion found a compare-branch to elide (§4.3 "Terminators").
func (mb *methodBuilder) emitTerminator(blk *mir.BasicBlock, fused *fusedInfo) {
	t := blk.Term
	switch t.Kind {
	case mir.TermGoto:
		mb.cb.Goto(mb.labels[t.Target])

	case mir.TermTailCall:
		// Same-function self-recursion collapsed to a loop back-edge:
		// Target names the block id to re-enter (spec.md's Terminator
		// comment groups this with TermGoto's block-id Target).
		mb.cb.Goto(mb.labels[t.Target])

	case mir.TermBranch:
		mb.emitBranchTerm(t, fused)

	case mir.TermReturn:
		mb.emitReturnTerm(t)

	case mir.TermThrow:
		mb.loadAsObject(t.ThrowLocal)
		mb.cb.AThrow()

	case mir.TermSwitch:
		mb.emitSwitchTerm(t)

	case mir.TermUnreachable:
		// No instruction needed; MIR guarantees this block is never
		// reached at runtime (exhaustive prior branch/switch).
	}
}

func (mb *methodBuilder) emitBranchTerm(t mir.Terminator, fused *fusedInfo) {
	thenLbl := mb.labels[t.Then]
	elseLbl := mb.labels[t.Else]
	if fused != nil {
		mb.emitFusedBranch(fused, thenLbl, elseLbl)
		return
	}
	mb.loadAsObject(t.Cond)
	mb.cb.InvokeStatic("nova/lang/NovaValue", "truthyCheck", "(Ljava/lang/Object;)Z")
	mb.cb.IfNe(thenLbl)
	mb.cb.Goto(elseLbl)
}

// emitReturnTerm returns ReturnLocal, converting it to the method
// descriptor's declared return sort: unboxing numeric wrappers via
// java.lang.Number's xxxValue() accessors ahead of the matching xRETURN,
// and boxing nothing for the default Object-returning case (§4.3
// "Terminators").
func (mb *methodBuilder) emitReturnTerm(t mir.Terminator) {
	if t.ReturnLocal == mir.NoDest {
		mb.cb.Return('V')
		return
	}
	desc := methodDescriptor(mb.fn)
	retSort := classfile.Sort(classfile.ReturnType(desc))
	switch retSort {
	case 'I':
		if mb.intSet[t.ReturnLocal] {
			mb.cb.Load('I', t.ReturnLocal)
		} else {
			mb.loadNumeric(t.ReturnLocal, mir.KindInt)
		}
		mb.cb.Return('I')
	case 'J':
		mb.loadNumeric(t.ReturnLocal, mir.KindLong)
		mb.cb.Return('J')
	case 'F':
		mb.loadNumeric(t.ReturnLocal, mir.KindFloat)
		mb.cb.Return('F')
	case 'D':
		mb.loadNumeric(t.ReturnLocal, mir.KindDouble)
		mb.cb.Return('D')
	default:
		mb.loadAsObject(t.ReturnLocal)
		mb.cb.Return('A')
	}
}

// emitSwitchTerm lowers the equals-chain every MIR switch compiles to:
// the key's toString() compared via String.equals against each case's
// literal string form (§3 "no native switch opcode" — every receiver
// kind, int included, goes through this one path). Cases are visited in
// sorted-key order so the emitted bytecode is deterministic across runs.
func (mb *methodBuilder) emitSwitchTerm(t mir.Terminator) {
	keys := make([]string, 0, len(t.SwitchCases))
	for k := range t.SwitchCases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		target := mb.labels[t.SwitchCases[k]]
		mb.loadAsObject(t.SwitchKey)
		mb.cb.InvokeVirtual("java/lang/Object", "toString", "()Ljava/lang/String;")
		mb.cb.PushString(k)
		mb.cb.InvokeVirtual("java/lang/String", "equals", "(Ljava/lang/Object;)Z")
		mb.cb.IfNe(target)
	}
	mb.cb.Goto(mb.labels[t.SwitchDefault])
}
