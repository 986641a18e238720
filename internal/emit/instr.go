package emit

import (
	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// emitInstruction lowers one MIR instruction into its classfile
// bytecode sequence (spec.md §4.3 "Instruction emission").
func (mb *methodBuilder) emitInstruction(inst mir.Instruction) {
	switch inst.Op {
	case mir.OpConstInt:
		mb.cb.PushInt(int32(inst.Extra.(int64)))
		mb.storeResult(inst.Dest, mir.KindInt, false)
	case mir.OpConstLong:
		mb.cb.PushLong(inst.Extra.(int64))
		mb.storeResult(inst.Dest, mir.KindLong, false)
	case mir.OpConstFloat:
		mb.cb.PushFloat(inst.Extra.(float32))
		mb.storeResult(inst.Dest, mir.KindFloat, false)
	case mir.OpConstDouble:
		mb.cb.PushDouble(inst.Extra.(float64))
		mb.storeResult(inst.Dest, mir.KindDouble, false)
	case mir.OpConstString:
		mb.cb.PushString(inst.Extra.(string))
		mb.storeResult(inst.Dest, mir.KindObject, true)
	case mir.OpConstChar:
		mb.cb.PushInt(int32(inst.Extra.(rune)))
		mb.storeResult(inst.Dest, mir.KindChar, false)
	case mir.OpConstBool:
		if inst.Extra.(bool) {
			mb.cb.PushInt(1)
		} else {
			mb.cb.PushInt(0)
		}
		mb.storeResult(inst.Dest, mir.KindBoolean, false)
	case mir.OpConstNull:
		mb.cb.AconstNull()
		mb.storeResult(inst.Dest, mir.KindObject, true)
	case mir.OpConstClass:
		mb.cb.PushClass(inst.Extra.(string))
		mb.storeResult(inst.Dest, mir.KindObject, true)

	case mir.OpMove:
		mb.emitMove(inst)

	case mir.OpBinary:
		mb.emitBinary(inst)
	case mir.OpUnary:
		mb.emitUnary(inst)

	case mir.OpNewObject:
		mb.emitNewObject(inst)
	case mir.OpNewArray:
		mb.emitNewArray(inst)

	case mir.OpGetField:
		mb.emitGetField(inst)
	case mir.OpSetField:
		mb.emitSetField(inst)
	case mir.OpGetStatic:
		mb.emitGetStatic(inst)
	case mir.OpSetStatic:
		mb.emitSetStatic(inst)

	case mir.OpInvokeVirtual:
		mb.emitInvoke(inst, invokeVirtual)
	case mir.OpInvokeStatic:
		mb.emitInvoke(inst, invokeStatic)
	case mir.OpInvokeInterface:
		mb.emitInvoke(inst, invokeInterface)

	case mir.OpTypeCheck:
		mb.emitTypeCheck(inst)
	case mir.OpTypeCast:
		mb.emitTypeCast(inst)

	case mir.OpIndexGet:
		mb.emitIndexGet(inst)
	case mir.OpIndexSet:
		mb.emitIndexSet(inst)
	}
}

// emitMove copies a local's value, re-coercing across the int/Object
// representational boundary when source and destination disagree on
// promotion (§4.3.4: a promoted int local moved into a boxed-Object
// local must be boxed, and vice versa).
func (mb *methodBuilder) emitMove(inst mir.Instruction) {
	src := inst.Operands[0]
	dest := inst.Dest
	srcIsInt := mb.intSet[src]
	destIsInt := mb.intSet[dest]
	switch {
	case srcIsInt && destIsInt:
		mb.cb.Load('I', src)
		mb.cb.Store('I', dest)
	case srcIsInt && !destIsInt:
		mb.cb.Load('I', src)
		mb.boxTOS(mir.KindInt)
		mb.cb.Store('A', dest)
	case !srcIsInt && destIsInt:
		mb.cb.Load('A', src)
		mb.unboxTOS(mir.KindInt)
		mb.cb.Store('I', dest)
	default:
		mb.cb.Load('A', src)
		mb.cb.Store('A', dest)
	}
}

func isStringType(t mir.Type) bool {
	return t.Kind == mir.KindObject && t.ClassName == "java/lang/String"
}

// binSort resolves the operand kind two BINARY operands should be
// loaded/computed at for an arithmetic op: the wider of their declared
// types on the DOUBLE>FLOAT>LONG>INT ladder (§4.3 "Arithmetic/logic
// binary").
func (mb *methodBuilder) binSort(a, b int) mir.Kind {
	return resolveNumericKind(localType(mb.fn, a).Kind, localType(mb.fn, b).Kind)
}

func (mb *methodBuilder) emitBinary(inst mir.Instruction) {
	op := inst.Extra.(mir.BinOp)
	l, r := inst.Operands[0], inst.Operands[1]

	if op == mir.BinAdd {
		lt, rt := localType(mb.fn, l), localType(mb.fn, r)
		if isStringType(lt) || isStringType(rt) {
			mb.loadAsObject(l)
			mb.cb.InvokeStatic("java/lang/String", "valueOf", "(Ljava/lang/Object;)Ljava/lang/String;")
			mb.loadAsObject(r)
			mb.cb.InvokeStatic("java/lang/String", "valueOf", "(Ljava/lang/Object;)Ljava/lang/String;")
			mb.cb.InvokeVirtual("java/lang/String", "concat", "(Ljava/lang/String;)Ljava/lang/String;")
			mb.storeResult(inst.Dest, mir.KindObject, true)
			return
		}
		if isStringOrObject(lt) || isStringOrObject(rt) {
			mb.loadAsObject(l)
			mb.loadAsObject(r)
			mb.cb.InvokeStatic("nova/lang/NovaOps", "add", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
			mb.storeResult(inst.Dest, mir.KindObject, true)
			return
		}
	}

	if op.IsComparison() && op != mir.BinAnd && op != mir.BinOr {
		mb.emitComparisonMaterialized(op, l, r, inst.Dest)
		return
	}

	if op == mir.BinAnd || op == mir.BinOr {
		// These only reach here if not short-circuit-lowered upstream
		// (e.g. both operands already boolean locals): plain bitwise.
		mb.loadNumeric(l, mir.KindInt)
		mb.loadNumeric(r, mir.KindInt)
		if op == mir.BinAnd {
			mb.cb.And('I')
		} else {
			mb.cb.Or('I')
		}
		mb.storeResult(inst.Dest, mir.KindInt, false)
		return
	}

	kind := mb.binSort(l, r)
	sort := sortOf(kind)
	mb.loadNumeric(l, kind)
	if op == mir.BinShl || op == mir.BinShr || op == mir.BinUshr {
		mb.loadNumeric(r, mir.KindInt)
	} else {
		mb.loadNumeric(r, kind)
	}
	switch op {
	case mir.BinSub:
		mb.cb.Sub(sort)
	case mir.BinMul:
		mb.cb.Mul(sort)
	case mir.BinDiv:
		mb.cb.Div(sort)
	case mir.BinMod:
		mb.cb.Rem(sort)
	case mir.BinBitAnd:
		mb.cb.And(sort)
	case mir.BinBitOr:
		mb.cb.Or(sort)
	case mir.BinBitXor:
		mb.cb.Xor(sort)
	case mir.BinShl:
		mb.cb.Shl(sort)
	case mir.BinShr:
		mb.cb.Shr(sort)
	case mir.BinUshr:
		mb.cb.Ushr(sort)
	default: // BinAdd (neither side string/object)
		mb.cb.Add(sort)
	}
	mb.storeResult(inst.Dest, kind, false)
}

// emitComparisonMaterialized handles a BINARY comparison that was NOT
// elided by compare-branch fusion: it must leave a real boolean value
// (0/1 int, stored per the int-local rules) rather than jump directly.
func (mb *methodBuilder) emitComparisonMaterialized(op mir.BinOp, l, r, dest int) {
	kind := dispatchKind(localType(mb.fn, l), localType(mb.fn, r))
	trueLbl := mb.cb.NewLabel()
	falseLbl := mb.cb.NewLabel()
	endLbl := mb.cb.NewLabel()
	mb.emitFusedBranch(&fusedInfo{op: op, left: l, right: r, kind: kind}, trueLbl, falseLbl)
	mb.cb.MarkLabel(falseLbl)
	mb.cb.PushInt(0)
	mb.cb.Goto(endLbl)
	mb.cb.MarkLabel(trueLbl)
	mb.cb.PushInt(1)
	mb.cb.MarkLabel(endLbl)
	mb.storeResult(dest, mir.KindBoolean, false)
}

func (mb *methodBuilder) emitUnary(inst mir.Instruction) {
	op := inst.Extra.(mir.UnOp)
	v := inst.Operands[0]
	switch op {
	case mir.UnNeg:
		kind := localType(mb.fn, v).Kind
		if !isNumeric(kind) {
			kind = mir.KindInt
		}
		mb.loadNumeric(v, kind)
		mb.cb.Neg(sortOf(kind))
		mb.storeResult(inst.Dest, kind, false)
	case mir.UnBNot:
		mb.loadNumeric(v, mir.KindInt)
		mb.cb.PushInt(-1)
		mb.cb.Xor('I')
		mb.storeResult(inst.Dest, mir.KindInt, false)
	case mir.UnNot:
		mb.loadNumeric(v, mir.KindBoolean)
		mb.cb.PushInt(1)
		mb.cb.Xor('I')
		mb.storeResult(inst.Dest, mir.KindBoolean, false)
	}
}

// emitNewObject resolves the constructor descriptor via Prescan when
// the target class is module-local (unboxing each argument to its
// declared parameter type), falling back to an all-Object descriptor
// for external/unresolved classes (§4.3 "NEW_OBJECT").
func (mb *methodBuilder) emitNewObject(inst mir.Instruction) {
	class := inst.Extra.(string)
	mb.cb.New(class)
	mb.cb.Dup()

	arity := len(inst.Operands)
	if desc, params, ok := mb.scan.ConstructorDescriptor(class, arity); ok {
		for i, loc := range inst.Operands {
			if i < len(params) && params[i].IsPrimitive() {
				mb.loadNumeric(loc, params[i].Kind)
			} else {
				mb.loadAsObject(loc)
			}
		}
		mb.cb.InvokeSpecial(class, "<init>", desc)
	} else {
		for _, loc := range inst.Operands {
			mb.loadAsObject(loc)
		}
		mb.cb.InvokeSpecial(class, "<init>", allObjectDescriptor(arity, "V"))
	}
	mb.storeResult(inst.Dest, mir.KindObject, true)
}

// emitNewArray builds a fixed-length array of the destination local's
// declared element type: int[] is the sole primitive array this
// representation keeps unboxed (NEWARRAY T_INT); every other element
// type, primitive or not, is stored boxed in an Object[] (§4.3
// "Arrays").
func (mb *methodBuilder) emitNewArray(inst mir.Instruction) {
	elemType := mir.TObject
	if t := localType(mb.fn, inst.Dest); t.Kind == mir.KindArray && t.Elem != nil {
		elemType = *t.Elem
	}
	mb.loadNumeric(inst.Operands[0], mir.KindInt)
	if elemType.Kind == mir.KindInt {
		mb.cb.NewArray(classfile.TInt)
	} else {
		mb.cb.ANewArray("java/lang/Object")
	}
	mb.storeResult(inst.Dest, mir.KindObject, true)
}

// fieldOwner resolves a FieldRef's owning internal class name: the
// explicit Owner when the lowerer set one, otherwise the receiver
// local's declared object type, otherwise the enclosing class itself
// (covers unresolved top-level/static-field references, §4.3 "Field
// ops").
func (mb *methodBuilder) fieldOwner(fr mir.FieldRef, receiver int, hasReceiver bool) string {
	if fr.Owner != "" {
		return fr.Owner
	}
	if hasReceiver {
		if t := localType(mb.fn, receiver); t.ClassName != "" {
			return t.ClassName
		}
	}
	return mb.selfClass
}

func (mb *methodBuilder) fieldDesc(owner, name, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if d, ok := mb.scan.FieldDescriptor(owner, name); ok {
		return d
	}
	return "Ljava/lang/Object;"
}

func (mb *methodBuilder) emitGetField(inst mir.Instruction) {
	fr := inst.Extra.(mir.FieldRef)
	recv := inst.Operands[0]
	owner := mb.fieldOwner(fr, recv, true)
	desc := mb.fieldDesc(owner, fr.Name, fr.Desc)

	mb.loadAsObject(recv)
	mb.cb.GetField(owner, fr.Name, desc)
	mb.storeFieldResult(inst.Dest, desc)
}

func (mb *methodBuilder) emitSetField(inst mir.Instruction) {
	fr := inst.Extra.(mir.FieldRef)
	recv, val := inst.Operands[0], inst.Operands[1]
	owner := mb.fieldOwner(fr, recv, true)
	desc := mb.fieldDesc(owner, fr.Name, fr.Desc)

	mb.loadAsObject(recv)
	mb.loadValueForDesc(val, desc)
	mb.cb.PutField(owner, fr.Name, desc)
}

func (mb *methodBuilder) emitGetStatic(inst mir.Instruction) {
	fr := inst.Extra.(mir.FieldRef)
	owner := mb.fieldOwner(fr, 0, false)
	desc := mb.fieldDesc(owner, fr.Name, fr.Desc)

	mb.cb.GetStatic(owner, fr.Name, desc)
	mb.storeFieldResult(inst.Dest, desc)
}

func (mb *methodBuilder) emitSetStatic(inst mir.Instruction) {
	fr := inst.Extra.(mir.FieldRef)
	owner := mb.fieldOwner(fr, 0, false)
	desc := mb.fieldDesc(owner, fr.Name, fr.Desc)

	val := inst.Operands[0]
	mb.loadValueForDesc(val, desc)
	mb.cb.PutStatic(owner, fr.Name, desc)
}

// loadValueForDesc loads local so it matches desc's JVM shape exactly:
// unboxed int if desc is "I" and local is promoted, else a boxed
// Object (which CHECKCAST/unbox rules on the other side of GetField
// ignore for non-primitive descriptors).
func (mb *methodBuilder) loadValueForDesc(local int, desc string) {
	if desc == "I" {
		mb.loadNumeric(local, mir.KindInt)
		return
	}
	mb.loadAsObject(local)
}

func (mb *methodBuilder) storeFieldResult(dest int, desc string) {
	if desc == "I" {
		mb.storeResult(dest, mir.KindInt, false)
		return
	}
	mb.storeResult(dest, mir.KindObject, true)
}

type invokeKind int

const (
	invokeVirtual invokeKind = iota
	invokeStatic
	invokeInterface
)

// emitInvoke resolves a MethodRef's owner (explicit, else the
// receiver's declared type, else the enclosing class) and emits an
// all-Object-descriptor call when the lowerer left Desc unresolved —
// the uniform-boxed representation's default for anything pre-scan
// can't type (§4.3.4's int-local promotion never applies to unresolved
// call results, so this is always safe).
func (mb *methodBuilder) emitInvoke(inst mir.Instruction, kind invokeKind) {
	mr := inst.Extra.(mir.MethodRef)
	operands := inst.Operands
	hasReceiver := kind != invokeStatic

	var receiver int
	args := operands
	if hasReceiver {
		receiver = operands[0]
		args = operands[1:]
	}

	owner := mr.Owner
	if owner == "" {
		if hasReceiver {
			if t := localType(mb.fn, receiver); t.ClassName != "" {
				owner = t.ClassName
			}
		}
		if owner == "" {
			owner = mb.selfClass
		}
	}

	desc := mr.Desc
	if desc == "" {
		desc = allObjectDescriptor(len(args), "Ljava/lang/Object;")
	}
	params := classfile.ParseParams(desc)

	if hasReceiver {
		mb.loadAsObject(receiver)
	}
	for i, loc := range args {
		if i < len(params) && classfile.Sort(params[i]) != 'A' {
			mb.loadNumeric(loc, kindForSort(classfile.Sort(params[i])))
		} else {
			mb.loadAsObject(loc)
		}
	}

	switch kind {
	case invokeVirtual:
		mb.cb.InvokeVirtual(owner, mr.Name, desc)
	case invokeStatic:
		mb.cb.InvokeStatic(owner, mr.Name, desc)
	case invokeInterface:
		mb.cb.InvokeInterface(owner, mr.Name, desc)
	}

	ret := classfile.ReturnType(desc)
	if ret == "V" {
		return // no value produced; any Dest is NoDest by construction
	}
	if ret == "I" {
		mb.storeResult(inst.Dest, mir.KindInt, false)
	} else {
		mb.storeResult(inst.Dest, mir.KindObject, true)
	}
}

func kindForSort(sort byte) mir.Kind {
	switch sort {
	case 'I':
		return mir.KindInt
	case 'J':
		return mir.KindLong
	case 'F':
		return mir.KindFloat
	case 'D':
		return mir.KindDouble
	default:
		return mir.KindObject
	}
}

// resultPredicate maps a Result/Ok/Err type-check's TypeName to the
// runtime predicate that tests it, since those are a tagged library
// wrapper rather than distinct JVM classes INSTANCEOF can see through
// (§4.3 "Type check/cast": "Result/Ok/Err delegate to runtime
// predicates").
func resultPredicate(name string) (string, bool) {
	switch name {
	case "Result":
		return "checkIsResult", true
	case "Ok":
		return "checkIsOk", true
	case "Err":
		return "checkIsErr", true
	default:
		return "", false
	}
}

func (mb *methodBuilder) emitTypeCheck(inst mir.Instruction) {
	tc := inst.Extra.(mir.TypeCheckExtra)
	mb.loadAsObject(inst.Operands[0])
	if mth, ok := resultPredicate(tc.TypeName); ok {
		mb.cb.InvokeStatic("nova/lang/NovaResult", mth, "(Ljava/lang/Object;)Z")
	} else {
		mb.cb.InstanceOf(tc.TypeName)
	}
	if tc.Negate {
		mb.cb.PushInt(1)
		mb.cb.Xor('I')
	}
	mb.storeResult(inst.Dest, mir.KindBoolean, false)
}

func (mb *methodBuilder) emitTypeCast(inst mir.Instruction) {
	className := inst.Extra.(string)
	mb.loadAsObject(inst.Operands[0])
	mb.cb.CheckCast(className)
	destKind := localType(mb.fn, inst.Dest).Kind
	if destKind == mir.KindInt {
		mb.unboxTOS(mir.KindInt)
		mb.storeResult(inst.Dest, mir.KindInt, false)
	} else {
		mb.storeResult(inst.Dest, mir.KindObject, true)
	}
}

// receiverFamily classifies target's declared type for INDEX_GET/SET
// dispatch (§4.3 "INDEX_GET/INDEX_SET"): a primitive int array, a
// Map-family/List-family class, java.lang.String, or unknown (the
// runtime-fallback path).
type receiverFamily int

const (
	famIntArray receiverFamily = iota
	famMap
	famList
	famString
	famUnknown
)

func classifyReceiver(t mir.Type) receiverFamily {
	if t.Kind == mir.KindArray && t.Elem != nil && t.Elem.Kind == mir.KindInt {
		return famIntArray
	}
	switch t.ClassName {
	case "java/lang/String":
		return famString
	case "java/util/Map", "java/util/HashMap", "java/util/LinkedHashMap", "java/util/TreeMap":
		return famMap
	case "java/util/List", "java/util/ArrayList", "java/util/LinkedList":
		return famList
	default:
		return famUnknown
	}
}

func (mb *methodBuilder) emitIndexGet(inst mir.Instruction) {
	target, index := inst.Operands[0], inst.Operands[1]
	switch classifyReceiver(localType(mb.fn, target)) {
	case famIntArray:
		mb.loadAsObject(target)
		mb.cb.CheckCast("[I")
		mb.loadNumeric(index, mir.KindInt)
		mb.cb.ArrayLoad('I')
		mb.storeResult(inst.Dest, mir.KindInt, false)
	case famMap:
		mb.loadAsObject(target)
		mb.loadAsObject(index)
		mb.cb.InvokeInterface("java/util/Map", "get", "(Ljava/lang/Object;)Ljava/lang/Object;")
		mb.storeResult(inst.Dest, mir.KindObject, true)
	case famList:
		mb.loadAsObject(target)
		mb.loadNumeric(index, mir.KindInt)
		mb.cb.InvokeInterface("java/util/List", "get", "(I)Ljava/lang/Object;")
		mb.storeResult(inst.Dest, mir.KindObject, true)
	case famString:
		mb.loadAsObject(target)
		mb.loadNumeric(index, mir.KindInt)
		mb.cb.InvokeVirtual("java/lang/String", "charAt", "(I)C")
		mb.cb.InvokeStatic("java/lang/String", "valueOf", "(C)Ljava/lang/String;")
		mb.storeResult(inst.Dest, mir.KindObject, true)
	default:
		mb.loadAsObject(target)
		mb.loadAsObject(index)
		mb.cb.InvokeStatic("nova/lang/NovaCollections", "getIndex", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
		mb.storeResult(inst.Dest, mir.KindObject, true)
	}
}

func (mb *methodBuilder) emitIndexSet(inst mir.Instruction) {
	target, index, value := inst.Operands[0], inst.Operands[1], inst.Operands[2]
	switch classifyReceiver(localType(mb.fn, target)) {
	case famIntArray:
		mb.loadAsObject(target)
		mb.cb.CheckCast("[I")
		mb.loadNumeric(index, mir.KindInt)
		mb.loadNumeric(value, mir.KindInt)
		mb.cb.ArrayStore('I')
	case famMap:
		mb.loadAsObject(target)
		mb.loadAsObject(index)
		mb.loadAsObject(value)
		mb.cb.InvokeInterface("java/util/Map", "put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
		mb.cb.Pop()
	case famList:
		mb.loadAsObject(target)
		mb.loadNumeric(index, mir.KindInt)
		mb.loadAsObject(value)
		mb.cb.InvokeInterface("java/util/List", "set", "(ILjava/lang/Object;)Ljava/lang/Object;")
		mb.cb.Pop()
	default:
		mb.loadAsObject(target)
		mb.loadAsObject(index)
		mb.loadAsObject(value)
		mb.cb.InvokeStatic("nova/lang/NovaCollections", "setIndex", "(Ljava/lang/Object;Ljava/lang/Object;Ljava/lang/Object;)V")
	}
}
