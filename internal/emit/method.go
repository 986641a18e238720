package emit

import (
	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// methodBuilder threads the per-method state the emitter's shared
// mutable state (§5 "scoped to the in-progress method") is limited
// to: the code builder, the function being emitted, its int-local
// promotion set, and block-id→label bookkeeping.
type methodBuilder struct {
	cb        *classfile.CodeBuilder
	fn        *mir.Function
	scan      *Prescan
	intSet    map[int]bool
	labels    map[int]int // mir block id -> classfile label id
	selfClass string      // internal name this method is emitted on

	// entrySkip is how many of the entry block's leading instructions
	// were already emitted by emitConstructorPrologue (the argument-
	// computing instructions that precede the super/delegation call);
	// emitBlock skips them when it reaches the entry block.
	entrySkip int
}

func methodDescriptor(fn *mir.Function) string {
	if fn.DescriptorOverride != "" {
		return fn.DescriptorOverride
	}
	ret := "Ljava/lang/Object;"
	if fn.IsConstructor || fn.ReturnType.Kind == mir.KindUnit {
		ret = "V"
	}
	arity := fn.ParamCount
	if !fn.IsStatic {
		arity-- // slot 0 is `this`, not a descriptor parameter
	}
	return allObjectDescriptor(arity, ret)
}

func methodName(fn *mir.Function) string {
	if fn.IsConstructor {
		return "<init>"
	}
	return fn.Name
}

// EmitMethod lowers one MIR function into a classfile.MethodResult,
// emitted against cp (the owning ClassWriter's shared constant pool,
// so field/method/class references across all of a class's methods
// land in one pool) with the given JVM access flags (spec.md §4.3
// "Method emission").
func EmitMethod(cp *classfile.Pool, scan *Prescan, fn *mir.Function, selfClass string, access int) (classfile.MethodResult, error) {
	desc := methodDescriptor(fn)
	intSet := intLocals(fn, scan)

	cb := classfile.NewCodeBuilder(cp)
	mb := &methodBuilder{cb: cb, fn: fn, scan: scan, intSet: intSet, labels: map[int]int{}, selfClass: selfClass}
	mb.build()

	code, exceptions, stackMap, err := classfile.BuildCode(cp, cb)
	if err != nil {
		return classfile.MethodResult{}, err
	}

	return classfile.MethodResult{
		Access:     access,
		Name:       methodName(fn),
		Descriptor: desc,
		Code:       code,
		MaxStack:   cb.MaxStack(),
		MaxLocals:  cb.MaxLocals(),
		Exceptions: exceptions,
		StackMap:   stackMap,
	}, nil
}

// build emits the method's full body into mb.cb.
func (mb *methodBuilder) build() {
	fn := mb.fn
	cb := mb.cb

	for _, b := range fn.Blocks {
		mb.labels[b.ID] = cb.NewLabel()
	}
	cb.SetMaxLocals(len(fn.Locals))

	isClinit := fn.Name == "<clinit>"
	skipUnboxPrologue := isClinit || (fn.IsConstructor && fn.DelegatesThis)
	if !skipUnboxPrologue {
		for slot := 0; slot < fn.ParamCount; slot++ {
			if slot == 0 && !fn.IsStatic {
				continue // slot 0 is `this`, never promoted
			}
			if !mb.intSet[slot] {
				continue
			}
			cb.Load('A', slot)
			mb.unboxTOS(mir.KindInt)
			cb.Store('I', slot)
		}
	}

	for i := 0; i < len(fn.Locals); i++ {
		if i < fn.ParamCount {
			continue
		}
		if mb.intSet[i] {
			cb.PushInt(0)
			cb.Store('I', i)
		} else {
			cb.AconstNull()
			cb.Store('A', i)
		}
	}

	if fn.IsConstructor {
		if entry := fn.Block(fn.Entry); entry != nil {
			mb.emitConstructorPrologue(entry)
		}
	}

	for _, b := range fn.Blocks {
		mb.emitBlock(b)
	}

	// StackMapTable: every block but the entry needs a frame (every
	// non-entry block is a jump target in this codegen, since Goto
	// terminators are always emitted explicitly — see classfile/frames.go).
	verif := make([]classfile.VerifType, len(fn.Locals))
	for i := range verif {
		if mb.intSet[i] {
			verif[i] = classfile.Integer
		} else {
			verif[i] = classfile.Object("java/lang/Object")
		}
	}
	cb.LocalsVerif = verif
	for _, b := range fn.Blocks {
		if b.ID != fn.Entry {
			cb.MarkFrame(mb.labels[b.ID])
		}
	}

	for _, t := range fn.TryTable {
		startLbl, sok := mb.labels[t.TryStart]
		endLbl, eok := mb.labels[t.TryEnd]
		handlerLbl, hok := mb.labels[t.Handler]
		if !sok || !eok || !hok {
			continue // block deleted by an earlier optimization pass (§4.3 step 6)
		}
		cb.AddException(classfile.ExceptionEntry{TryStart: startLbl, TryEnd: endLbl, Handler: handlerLbl, CatchType: t.ExceptionType})
	}
}

// emitConstructorPrologue emits the delegation/super-constructor call
// at the correct point in the entry block's instruction stream: right
// after the instructions that compute its argument locals (those were
// lowered first into block 0 by internal/mir's lowerConstructor),
// before the rest of the body (§4.3 step 5).
func (mb *methodBuilder) emitConstructorPrologue(entry *mir.BasicBlock) {
	fn := mb.fn
	var argLocals []int
	if fn.DelegatesThis {
		argLocals = fn.DelegationArgLocals
	} else {
		argLocals = fn.SuperArgLocals
	}

	n := len(argLocals)
	if n > len(entry.Instructions) {
		n = len(entry.Instructions)
	}
	for i := 0; i < n; i++ {
		mb.emitInstruction(entry.Instructions[i])
	}
	mb.entrySkip = n

	mb.cb.Load('A', 0) // aload_0
	for _, loc := range argLocals {
		mb.loadAsObject(loc)
	}

	if fn.DelegatesThis {
		mb.cb.InvokeSpecial(mb.selfClass, "<init>", allObjectDescriptor(n, "V"))
	} else {
		super := fn.SuperClass
		if super == "" {
			super = "java/lang/Object"
		}
		mb.cb.InvokeSpecial(super, "<init>", allObjectDescriptor(n, "V"))
	}
}

// emitBlock binds blk's label, handles catch-handler entry, walks its
// instructions (with the compare-branch fusion peephole), and emits
// its terminator (§4.3 step 8-9).
func (mb *methodBuilder) emitBlock(blk *mir.BasicBlock) {
	mb.cb.MarkLabel(mb.labels[blk.ID])

	if handler, ok := mb.handlerLocal(blk.ID); ok {
		mb.cb.Store('A', handler)
	}

	instrs := blk.Instructions
	skip := 0
	if blk.ID == mb.fn.Entry && mb.fn.IsConstructor {
		skip = mb.entrySkip
	}
	if skip > len(instrs) {
		skip = len(instrs)
	}
	instrs = instrs[skip:]

	instrs, fused := mb.detectFusion(blk, instrs)

	for _, inst := range instrs {
		mb.emitInstruction(inst)
	}

	mb.emitTerminator(blk, fused)
}

// handlerLocal returns the exception-local this block is configured
// to receive, if it is some try entry's handler block.
func (mb *methodBuilder) handlerLocal(blockID int) (int, bool) {
	for _, t := range mb.fn.TryTable {
		if t.Handler == blockID {
			return t.ExceptionLocal, true
		}
	}
	return 0, false
}

// loadAsObject loads local slot and, if it is a promoted int local,
// boxes it to Integer — used wherever a call site's descriptor is
// fixed at all-Object (super/delegation calls, unresolved invokes).
func (mb *methodBuilder) loadAsObject(slot int) {
	if mb.intSet[slot] {
		mb.cb.Load('I', slot)
		mb.boxTOS(mir.KindInt)
		return
	}
	mb.cb.Load('A', slot)
}

// loadTyped loads local slot onto the stack in its "natural" emitted
// form: unboxed int if promoted, Object otherwise. Most instruction
// lowerings want this; call sites that need a specific primitive kind
// unbox further themselves.
func (mb *methodBuilder) loadTyped(slot int) (sort byte) {
	if mb.intSet[slot] {
		mb.cb.Load('I', slot)
		return 'I'
	}
	mb.cb.Load('A', slot)
	return 'A'
}

// storeResult stores a value of the given MIR kind, already on the
// operand stack as kind's natural primitive form (or Object for a
// non-numeric kind), into dest — boxing first unless dest is promoted
// and kind is int.
func (mb *methodBuilder) storeResult(dest int, kind mir.Kind, alreadyBoxed bool) {
	if dest == mir.NoDest {
		mb.discard(kind, alreadyBoxed)
		return
	}
	if mb.intSet[dest] && kind == mir.KindInt && !alreadyBoxed {
		mb.cb.Store('I', dest)
		return
	}
	if !alreadyBoxed {
		mb.boxIfPrimitive(kind)
	}
	mb.cb.Store('A', dest)
}

func (mb *methodBuilder) boxIfPrimitive(kind mir.Kind) {
	if _, ok := boxTable[kind]; ok {
		mb.boxTOS(kind)
	}
}

func (mb *methodBuilder) discard(kind mir.Kind, alreadyBoxed bool) {
	if alreadyBoxed {
		mb.cb.Pop()
		return
	}
	if kind == mir.KindLong || kind == mir.KindDouble {
		mb.cb.Pop2()
	} else {
		mb.cb.Pop()
	}
}
