package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type branchFixup struct {
	opcodeOffset int // offset of the opcode byte (base for the relative jump)
	operandPos   int // offset of the 2-byte signed operand to patch
	label        int
}

// ExceptionEntry is one exception_table row, recorded against block
// labels; PCs are resolved once Finish has fixed every label's offset.
type ExceptionEntry struct {
	TryStart, TryEnd, Handler int // label ids
	CatchType                 string // internal class name, "" for finally (any)
}

// ResolvedException is one exception_table row with concrete offsets.
type ResolvedException struct {
	StartPC, EndPC, HandlerPC int
	CatchType                 string
}

// CodeBuilder assembles one method's Code attribute: raw bytecode,
// label-relative jumps resolved on Finish, and running max-stack
// tracking (the "COMPUTE_MAXS" half of the library contract spec.md
// §9 assumes; COMPUTE_FRAMES is handled by buildStackMapTable, see
// frames.go).
type CodeBuilder struct {
	cp *Pool

	buf        bytes.Buffer
	stack      int
	maxStack   int
	maxLocals  int
	labelPos   map[int]int
	nextLabel  int
	fixups     []branchFixup
	exceptions []ExceptionEntry

	// FrameLabels are block-start labels (other than the entry block)
	// that need a StackMapTable entry; LocalsVerif is the steady-state
	// per-slot verification type array shared by every such frame
	// (see frames.go — every local carries one stable type for the
	// method's whole body once any entry-unboxing prologue runs).
	FrameLabels []int
	LocalsVerif []VerifType
}

// NewCodeBuilder starts a builder for one method body.
func NewCodeBuilder(cp *Pool) *CodeBuilder {
	return &CodeBuilder{cp: cp, labelPos: map[int]int{}}
}

// NewLabel allocates a fresh, unresolved label id.
func (cb *CodeBuilder) NewLabel() int {
	id := cb.nextLabel
	cb.nextLabel++
	return id
}

// MarkLabel resolves label to the current bytecode offset.
func (cb *CodeBuilder) MarkLabel(label int) {
	cb.labelPos[label] = cb.buf.Len()
}

// Offset returns the current bytecode offset.
func (cb *CodeBuilder) Offset() int { return cb.buf.Len() }

// SetMaxLocals fixes the method's local-variable array size. Every
// MIR local occupies exactly one JVM slot in this representation
// (object refs and the only promoted primitive, int, are both single
// word), so this is simply the MIR function's local count.
func (cb *CodeBuilder) SetMaxLocals(n int) {
	if n > cb.maxLocals {
		cb.maxLocals = n
	}
}

func (cb *CodeBuilder) adjust(pop, push int) {
	cb.stack -= pop
	if cb.stack < 0 {
		cb.stack = 0
	}
	cb.stack += push
	if cb.stack > cb.maxStack {
		cb.maxStack = cb.stack
	}
}

// StackDepth returns the current tracked operand-stack depth in
// words; callers use it to assert "empty at block boundary" before
// marking a frame.
func (cb *CodeBuilder) StackDepth() int { return cb.stack }

func (cb *CodeBuilder) u1(b byte)   { cb.buf.WriteByte(b) }
func (cb *CodeBuilder) u2(v uint16) { binary.Write(&cb.buf, binary.BigEndian, v) }

// --- constants -------------------------------------------------------

func (cb *CodeBuilder) AconstNull() {
	cb.u1(OpAconstNull)
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) PushInt(v int32) {
	switch {
	case v >= -1 && v <= 5:
		cb.u1(byte(OpIconst0 + v))
	case v >= -128 && v <= 127:
		cb.u1(OpBipush)
		cb.u1(byte(v))
	case v >= -32768 && v <= 32767:
		cb.u1(OpSipush)
		cb.u2(uint16(int16(v)))
	default:
		cb.ldc(cb.cp.Integer(v))
	}
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) PushLong(v int64) {
	switch v {
	case 0:
		cb.u1(OpLconst0)
	case 1:
		cb.u1(OpLconst1)
	default:
		cb.ldc2w(cb.cp.Long(v))
	}
	cb.adjust(0, 2)
}

func (cb *CodeBuilder) PushFloat(v float32) {
	switch v {
	case 0:
		cb.u1(OpFconst0)
	case 1:
		cb.u1(OpFconst1)
	case 2:
		cb.u1(OpFconst2)
	default:
		cb.ldc(cb.cp.Float(v))
	}
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) PushDouble(v float64) {
	switch v {
	case 0:
		cb.u1(OpDconst0)
	case 1:
		cb.u1(OpDconst1)
	default:
		cb.ldc2w(cb.cp.Double(v))
	}
	cb.adjust(0, 2)
}

func (cb *CodeBuilder) PushString(s string) {
	cb.ldc(cb.cp.String(s))
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) PushClass(internalName string) {
	cb.ldc(cb.cp.Class(internalName))
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) ldc(idx uint16) {
	if idx <= 0xff {
		cb.u1(OpLdc)
		cb.u1(byte(idx))
	} else {
		cb.u1(OpLdcW)
		cb.u2(idx)
	}
}

func (cb *CodeBuilder) ldc2w(idx uint16) {
	cb.u1(OpLdc2W)
	cb.u2(idx)
}

// --- locals ------------------------------------------------------------

func (cb *CodeBuilder) slotOp(baseWide, base0 int, slot int) {
	if slot <= 3 {
		cb.u1(byte(base0 + slot))
		return
	}
	if slot <= 0xff {
		cb.u1(byte(baseWide))
		cb.u1(byte(slot))
		return
	}
	cb.u1(0xc4) // wide
	cb.u1(byte(baseWide))
	cb.u2(uint16(slot))
}

// Load emits the sort-appropriate *load instruction for slot.
func (cb *CodeBuilder) Load(sort byte, slot int) {
	cb.SetMaxLocals(slot + 1)
	switch sort {
	case 'I':
		cb.slotOp(OpIload, 0x1a, slot)
		cb.adjust(0, 1)
	case 'J':
		cb.slotOp(OpLload, 0x1e, slot)
		cb.adjust(0, 2)
	case 'F':
		cb.slotOp(OpFload, 0x22, slot)
		cb.adjust(0, 1)
	case 'D':
		cb.slotOp(OpDload, 0x26, slot)
		cb.adjust(0, 2)
	default:
		cb.slotOp(OpAload, 0x2a, slot)
		cb.adjust(0, 1)
	}
}

// Store emits the sort-appropriate *store instruction for slot.
func (cb *CodeBuilder) Store(sort byte, slot int) {
	cb.SetMaxLocals(slot + 1)
	switch sort {
	case 'I':
		cb.slotOp(OpIstore, 0x3b, slot)
		cb.adjust(1, 0)
	case 'J':
		cb.slotOp(OpLstore, 0x3f, slot)
		cb.adjust(2, 0)
	case 'F':
		cb.slotOp(OpFstore, 0x43, slot)
		cb.adjust(1, 0)
	case 'D':
		cb.slotOp(OpDstore, 0x47, slot)
		cb.adjust(2, 0)
	default:
		cb.slotOp(OpAstore, 0x4b, slot)
		cb.adjust(1, 0)
	}
}

// --- stack manipulation -------------------------------------------------

func (cb *CodeBuilder) Pop()        { cb.u1(OpPop); cb.adjust(1, 0) }
func (cb *CodeBuilder) Pop2()       { cb.u1(OpPop2); cb.adjust(2, 0) }
func (cb *CodeBuilder) Dup()        { cb.u1(OpDup); cb.adjust(0, 1) }
func (cb *CodeBuilder) DupX1()      { cb.u1(OpDupX1); cb.adjust(0, 1) }
func (cb *CodeBuilder) Swap()       { cb.u1(OpSwap) }

// --- arithmetic ----------------------------------------------------------

func (cb *CodeBuilder) binArith(i, l, f, d byte, kind byte) {
	w := 1
	if kind == 'J' || kind == 'D' {
		w = 2
	}
	switch kind {
	case 'I':
		cb.u1(i)
	case 'J':
		cb.u1(l)
	case 'F':
		cb.u1(f)
	case 'D':
		cb.u1(d)
	}
	cb.adjust(2*w, w)
}

func (cb *CodeBuilder) Add(kind byte) { cb.binArith(OpIadd, OpLadd, OpFadd, OpDadd, kind) }
func (cb *CodeBuilder) Sub(kind byte) { cb.binArith(OpIsub, OpLsub, OpFsub, OpDsub, kind) }
func (cb *CodeBuilder) Mul(kind byte) { cb.binArith(OpImul, OpLmul, OpFmul, OpDmul, kind) }
func (cb *CodeBuilder) Div(kind byte) { cb.binArith(OpIdiv, OpLdiv, OpFdiv, OpDdiv, kind) }
func (cb *CodeBuilder) Rem(kind byte) { cb.binArith(OpIrem, OpLrem, OpFrem, OpDrem, kind) }
func (cb *CodeBuilder) And(kind byte) { cb.binArith(OpIand, OpLand, 0, 0, kind) }
func (cb *CodeBuilder) Or(kind byte)  { cb.binArith(OpIor, OpLor, 0, 0, kind) }
func (cb *CodeBuilder) Xor(kind byte) { cb.binArith(OpIxor, OpLxor, 0, 0, kind) }

// Shl/Shr/Ushr take an int shift amount regardless of kind (spec.md
// §4.3 "Instruction emission": the right operand is always reloaded
// as int).
func (cb *CodeBuilder) Shl(kind byte) { cb.shift(OpIshl, OpLshl, kind) }
func (cb *CodeBuilder) Shr(kind byte) { cb.shift(OpIshr, OpLshr, kind) }
func (cb *CodeBuilder) Ushr(kind byte) { cb.shift(OpIushr, OpLushr, kind) }

func (cb *CodeBuilder) shift(i, l byte, kind byte) {
	w := 1
	if kind == 'J' {
		w = 2
	}
	if kind == 'J' {
		cb.u1(l)
	} else {
		cb.u1(i)
	}
	cb.adjust(w+1, w)
}

func (cb *CodeBuilder) Neg(kind byte) {
	w := 1
	if kind == 'J' || kind == 'D' {
		w = 2
	}
	switch kind {
	case 'I':
		cb.u1(OpIneg)
	case 'J':
		cb.u1(OpLneg)
	case 'F':
		cb.u1(OpFneg)
	case 'D':
		cb.u1(OpDneg)
	}
	cb.adjust(w, w)
}

// --- conversions ----------------------------------------------------------

func (cb *CodeBuilder) convert(op byte, popW, pushW int) {
	cb.u1(op)
	cb.adjust(popW, pushW)
}

func (cb *CodeBuilder) I2L() { cb.convert(OpI2l, 1, 2) }
func (cb *CodeBuilder) I2F() { cb.convert(OpI2f, 1, 1) }
func (cb *CodeBuilder) I2D() { cb.convert(OpI2d, 1, 2) }
func (cb *CodeBuilder) L2I() { cb.convert(OpL2i, 2, 1) }
func (cb *CodeBuilder) L2F() { cb.convert(OpL2f, 2, 1) }
func (cb *CodeBuilder) L2D() { cb.convert(OpL2d, 2, 2) }
func (cb *CodeBuilder) F2I() { cb.convert(OpF2i, 1, 1) }
func (cb *CodeBuilder) F2L() { cb.convert(OpF2l, 1, 2) }
func (cb *CodeBuilder) F2D() { cb.convert(OpF2d, 1, 2) }
func (cb *CodeBuilder) D2I() { cb.convert(OpD2i, 2, 1) }
func (cb *CodeBuilder) D2L() { cb.convert(OpD2l, 2, 2) }
func (cb *CodeBuilder) D2F() { cb.convert(OpD2f, 2, 1) }
func (cb *CodeBuilder) I2B() { cb.convert(OpI2b, 1, 1) }
func (cb *CodeBuilder) I2C() { cb.convert(OpI2c, 1, 1) }
func (cb *CodeBuilder) I2S() { cb.convert(OpI2s, 1, 1) }

// --- comparisons -----------------------------------------------------------

func (cb *CodeBuilder) Lcmp()  { cb.u1(OpLcmp); cb.adjust(4, 1) }
func (cb *CodeBuilder) Fcmpl() { cb.u1(OpFcmpl); cb.adjust(2, 1) }
func (cb *CodeBuilder) Fcmpg() { cb.u1(OpFcmpg); cb.adjust(2, 1) }
func (cb *CodeBuilder) Dcmpl() { cb.u1(OpDcmpl); cb.adjust(4, 1) }
func (cb *CodeBuilder) Dcmpg() { cb.u1(OpDcmpg); cb.adjust(4, 1) }

// --- branches --------------------------------------------------------------

func (cb *CodeBuilder) branch(opcode byte, label int, pop int) {
	opcodeOffset := cb.buf.Len()
	cb.u1(opcode)
	operandPos := cb.buf.Len()
	cb.u2(0) // placeholder, patched in Finish
	cb.fixups = append(cb.fixups, branchFixup{opcodeOffset: opcodeOffset, operandPos: operandPos, label: label})
	cb.adjust(pop, 0)
}

func (cb *CodeBuilder) Goto(label int)      { cb.branch(OpGoto, label, 0) }
func (cb *CodeBuilder) IfEq(label int)      { cb.branch(OpIfeq, label, 1) }
func (cb *CodeBuilder) IfNe(label int)      { cb.branch(OpIfne, label, 1) }
func (cb *CodeBuilder) IfLt(label int)      { cb.branch(OpIflt, label, 1) }
func (cb *CodeBuilder) IfGe(label int)      { cb.branch(OpIfge, label, 1) }
func (cb *CodeBuilder) IfGt(label int)      { cb.branch(OpIfgt, label, 1) }
func (cb *CodeBuilder) IfLe(label int)      { cb.branch(OpIfle, label, 1) }
func (cb *CodeBuilder) IfIcmpEq(label int)  { cb.branch(OpIfIcmpeq, label, 2) }
func (cb *CodeBuilder) IfIcmpNe(label int)  { cb.branch(OpIfIcmpne, label, 2) }
func (cb *CodeBuilder) IfIcmpLt(label int)  { cb.branch(OpIfIcmplt, label, 2) }
func (cb *CodeBuilder) IfIcmpGe(label int)  { cb.branch(OpIfIcmpge, label, 2) }
func (cb *CodeBuilder) IfIcmpGt(label int)  { cb.branch(OpIfIcmpgt, label, 2) }
func (cb *CodeBuilder) IfIcmpLe(label int)  { cb.branch(OpIfIcmple, label, 2) }
func (cb *CodeBuilder) IfAcmpEq(label int)  { cb.branch(OpIfAcmpeq, label, 2) }
func (cb *CodeBuilder) IfAcmpNe(label int)  { cb.branch(OpIfAcmpne, label, 2) }
func (cb *CodeBuilder) IfNull(label int)    { cb.branch(OpIfnull, label, 1) }
func (cb *CodeBuilder) IfNonnull(label int) { cb.branch(OpIfnonnull, label, 1) }

// Finish patches every forward/backward branch's relative offset now
// that all labels are resolved.
func (cb *CodeBuilder) Finish() ([]byte, error) {
	code := cb.buf.Bytes()
	for _, f := range cb.fixups {
		target, ok := cb.labelPos[f.label]
		if !ok {
			return nil, fmt.Errorf("classfile: unresolved label %d", f.label)
		}
		rel := target - f.opcodeOffset
		if rel < -32768 || rel > 32767 {
			return nil, fmt.Errorf("classfile: branch offset %d out of int16 range", rel)
		}
		binary.BigEndian.PutUint16(code[f.operandPos:f.operandPos+2], uint16(int16(rel)))
	}
	return code, nil
}

// LabelOffset returns the resolved offset of a label, after Finish or
// once MarkLabel has been called for it.
func (cb *CodeBuilder) LabelOffset(label int) (int, bool) {
	v, ok := cb.labelPos[label]
	return v, ok
}

// --- objects, fields, arrays, calls -----------------------------------------

func (cb *CodeBuilder) New(internalName string) {
	cb.u1(OpNew)
	cb.u2(cb.cp.Class(internalName))
	cb.adjust(0, 1)
}

func (cb *CodeBuilder) NewArray(primType byte) {
	cb.u1(OpNewarray)
	cb.u1(primType)
	cb.adjust(1, 1)
}

func (cb *CodeBuilder) ANewArray(internalName string) {
	cb.u1(OpAnewarray)
	cb.u2(cb.cp.Class(internalName))
	cb.adjust(1, 1)
}

func (cb *CodeBuilder) ArrayLength() {
	cb.u1(OpArraylength)
	cb.adjust(1, 1)
}

func arrayOps(sort byte) (load, store byte, w int) {
	switch sort {
	case 'I':
		return OpIaload, OpIastore, 1
	case 'J':
		return OpLaload, OpLastore, 2
	case 'F':
		return OpFaload, OpFastore, 1
	case 'D':
		return OpDaload, OpDastore, 2
	case 'B':
		return OpBaload, OpBastore, 1
	case 'C':
		return OpCaload, OpCastore, 1
	case 'S':
		return OpSaload, OpSastore, 1
	default:
		return OpAaload, OpAastore, 1
	}
}

func (cb *CodeBuilder) ArrayLoad(sort byte) {
	op, _, w := arrayOps(sort)
	cb.u1(op)
	cb.adjust(2, w)
}

func (cb *CodeBuilder) ArrayStore(sort byte) {
	_, op, w := arrayOps(sort)
	cb.u1(op)
	cb.adjust(2+w, 0)
}

func (cb *CodeBuilder) GetField(owner, name, desc string) {
	cb.u1(OpGetfield)
	cb.u2(cb.cp.Fieldref(owner, name, desc))
	cb.adjust(1, WordSize(desc))
}

func (cb *CodeBuilder) PutField(owner, name, desc string) {
	cb.u1(OpPutfield)
	cb.u2(cb.cp.Fieldref(owner, name, desc))
	cb.adjust(1+WordSize(desc), 0)
}

func (cb *CodeBuilder) GetStatic(owner, name, desc string) {
	cb.u1(OpGetstatic)
	cb.u2(cb.cp.Fieldref(owner, name, desc))
	cb.adjust(0, WordSize(desc))
}

func (cb *CodeBuilder) PutStatic(owner, name, desc string) {
	cb.u1(OpPutstatic)
	cb.u2(cb.cp.Fieldref(owner, name, desc))
	cb.adjust(WordSize(desc), 0)
}

func (cb *CodeBuilder) InvokeVirtual(owner, name, desc string) {
	cb.u1(OpInvokevirtual)
	cb.u2(cb.cp.Methodref(owner, name, desc))
	cb.invokeAdjust(desc, true)
}

func (cb *CodeBuilder) InvokeSpecial(owner, name, desc string) {
	cb.u1(OpInvokespecial)
	cb.u2(cb.cp.Methodref(owner, name, desc))
	cb.invokeAdjust(desc, true)
}

func (cb *CodeBuilder) InvokeStatic(owner, name, desc string) {
	cb.u1(OpInvokestatic)
	cb.u2(cb.cp.Methodref(owner, name, desc))
	cb.invokeAdjust(desc, false)
}

func (cb *CodeBuilder) InvokeInterface(owner, name, desc string) {
	cb.u1(OpInvokeinterface)
	cb.u2(cb.cp.InterfaceMethodref(owner, name, desc))
	argWords := ArgWords(desc) + 1 // + receiver
	cb.u1(byte(argWords))
	cb.u1(0)
	cb.invokeAdjust(desc, true)
}

func (cb *CodeBuilder) invokeAdjust(desc string, hasReceiver bool) {
	pop := ArgWords(desc)
	if hasReceiver {
		pop++
	}
	ret := ReturnType(desc)
	push := 0
	if ret != "V" {
		push = WordSize(ret)
	}
	cb.adjust(pop, push)
}

func (cb *CodeBuilder) CheckCast(internalName string) {
	cb.u1(OpCheckcast)
	cb.u2(cb.cp.Class(internalName))
	cb.adjust(1, 1)
}

func (cb *CodeBuilder) InstanceOf(internalName string) {
	cb.u1(OpInstanceof)
	cb.u2(cb.cp.Class(internalName))
	cb.adjust(1, 1)
}

func (cb *CodeBuilder) AThrow() {
	cb.u1(OpAthrow)
	cb.adjust(1, 0)
}

// Return emits the sort-appropriate return; sort "V" emits a bare
// `return`.
func (cb *CodeBuilder) Return(sort byte) {
	switch sort {
	case 'V':
		cb.u1(OpReturn)
	case 'I':
		cb.u1(OpIreturn)
		cb.adjust(1, 0)
	case 'J':
		cb.u1(OpLreturn)
		cb.adjust(2, 0)
	case 'F':
		cb.u1(OpFreturn)
		cb.adjust(1, 0)
	case 'D':
		cb.u1(OpDreturn)
		cb.adjust(2, 0)
	default:
		cb.u1(OpAreturn)
		cb.adjust(1, 0)
	}
}

// MaxStack/MaxLocals expose the tracked values for the Code attribute.
func (cb *CodeBuilder) MaxStack() int  { return cb.maxStack }
func (cb *CodeBuilder) MaxLocals() int { return cb.maxLocals }

// AddException records one exception_table row; the entry holds label
// ids, which BuildCode resolves to PCs.
func (cb *CodeBuilder) AddException(e ExceptionEntry) {
	cb.exceptions = append(cb.exceptions, e)
}

// Exceptions returns the accumulated exception_table rows.
func (cb *CodeBuilder) Exceptions() []ExceptionEntry { return cb.exceptions }

// MarkFrame records label as a block start needing a StackMapTable
// frame (every block but the method's entry block, per frames.go).
func (cb *CodeBuilder) MarkFrame(label int) {
	cb.FrameLabels = append(cb.FrameLabels, label)
}
