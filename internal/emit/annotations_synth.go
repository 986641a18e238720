package emit

import (
	"fmt"

	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

const stringBuilderClass = "java/lang/StringBuilder"

// nonStaticFields returns c's instance fields in declaration order,
// the "record" shape data/builder synthesis operates over.
func nonStaticFields(c *mir.Class) []mir.FieldDef {
	var out []mir.FieldDef
	for _, f := range c.Fields {
		if !f.IsStatic {
			out = append(out, f)
		}
	}
	return out
}

// primaryCtorArity is the argument count a synthesized copy()/build()
// forwards to <init>: the first constructor's parameter count clamped
// to the field count (GetField-based forwarding makes no sense past
// what was declared), or the field count when the class has no
// constructor.
func primaryCtorArity(c *mir.Class, fieldCount int) int {
	if len(c.Constructors) == 0 {
		return fieldCount
	}
	arity := c.Constructors[0].ParamCount - 1
	if arity > fieldCount {
		arity = fieldCount
	}
	return arity
}

func boxFieldIfPrimitive(cb *classfile.CodeBuilder, t mir.Type) {
	if !t.IsPrimitive() {
		return
	}
	if info, ok := boxTable[t.Kind]; ok {
		cb.InvokeStatic(info.wrapper, "valueOf", info.valueOfDsc)
	}
}

// emitStringBuilderAppend appends a value already on the operand stack
// (in desc's natural emitted form) via the narrowest applicable
// StringBuilder.append overload, boxing byte/short first since
// StringBuilder has no dedicated overload for either.
func emitStringBuilderAppend(cb *classfile.CodeBuilder, desc string) {
	switch desc {
	case "I":
		cb.InvokeVirtual(stringBuilderClass, "append", "(I)Ljava/lang/StringBuilder;")
	case "J":
		cb.InvokeVirtual(stringBuilderClass, "append", "(J)Ljava/lang/StringBuilder;")
	case "F":
		cb.InvokeVirtual(stringBuilderClass, "append", "(F)Ljava/lang/StringBuilder;")
	case "D":
		cb.InvokeVirtual(stringBuilderClass, "append", "(D)Ljava/lang/StringBuilder;")
	case "Z":
		cb.InvokeVirtual(stringBuilderClass, "append", "(Z)Ljava/lang/StringBuilder;")
	case "C":
		cb.InvokeVirtual(stringBuilderClass, "append", "(C)Ljava/lang/StringBuilder;")
	case "B":
		cb.InvokeStatic("java/lang/Byte", "valueOf", "(B)Ljava/lang/Byte;")
		cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/Object;)Ljava/lang/StringBuilder;")
	case "S":
		cb.InvokeStatic("java/lang/Short", "valueOf", "(S)Ljava/lang/Short;")
		cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/Object;)Ljava/lang/StringBuilder;")
	default:
		cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/Object;)Ljava/lang/StringBuilder;")
	}
}

// emitDataMembers synthesizes toString/equals/hashCode/componentN/copy
// over c's instance fields (§4.3 "data"), skipping any the user already
// wrote by hand.
func emitDataMembers(cw *classfile.ClassWriter, c *mir.Class) error {
	cp := cw.Pool()
	fields := nonStaticFields(c)

	if !hasUserMethod(c, "toString", 0) {
		if err := emitDataToString(cw, cp, c, fields); err != nil {
			return err
		}
	}
	if !hasUserMethod(c, "equals", 1) {
		if err := emitDataEquals(cw, cp, c, fields); err != nil {
			return err
		}
	}
	if !hasUserMethod(c, "hashCode", 0) {
		if err := emitDataHashCode(cw, cp, c, fields); err != nil {
			return err
		}
	}
	for i, f := range fields {
		name := fmt.Sprintf("component%d", i+1)
		if hasUserMethod(c, name, 0) {
			continue
		}
		if err := emitDataComponent(cw, cp, c, name, f); err != nil {
			return err
		}
	}
	if !hasUserMethod(c, "copy", 0) {
		if err := emitDataCopy(cw, cp, c, fields); err != nil {
			return err
		}
	}
	return nil
}

func emitDataToString(cw *classfile.ClassWriter, cp *classfile.Pool, c *mir.Class, fields []mir.FieldDef) error {
	cb := classfile.NewCodeBuilder(cp)
	cb.SetMaxLocals(1)
	cb.New(stringBuilderClass)
	cb.Dup()
	cb.InvokeSpecial(stringBuilderClass, "<init>", "()V")
	cb.PushString(c.InternalName + "(")
	cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/String;)Ljava/lang/StringBuilder;")
	for i, f := range fields {
		prefix := f.Name + "="
		if i > 0 {
			prefix = ", " + prefix
		}
		cb.PushString(prefix)
		cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/String;)Ljava/lang/StringBuilder;")
		cb.Load('A', 0)
		desc := fieldEmittedDescriptor(f)
		cb.GetField(c.InternalName, f.Name, desc)
		emitStringBuilderAppend(cb, desc)
	}
	cb.PushString(")")
	cb.InvokeVirtual(stringBuilderClass, "append", "(Ljava/lang/String;)Ljava/lang/StringBuilder;")
	cb.InvokeVirtual(stringBuilderClass, "toString", "()Ljava/lang/String;")
	cb.Return('A')
	return addBuiltMethod(cw, cp, cb, classfile.AccPublic, "toString", "()Ljava/lang/String;")
}

// emitDataEquals builds: same-reference short circuit, instanceof
// check, then Objects.equals per field (§4.3 "data").
func emitDataEquals(cw *classfile.ClassWriter, cp *classfile.Pool, c *mir.Class, fields []mir.FieldDef) error {
	cb := classfile.NewCodeBuilder(cp)
	cb.SetMaxLocals(3) // 0=this, 1=other, 2=cast other

	sameLbl := cb.NewLabel()
	falseLbl := cb.NewLabel()

	cb.Load('A', 0)
	cb.Load('A', 1)
	cb.IfAcmpEq(sameLbl)

	cb.Load('A', 1)
	cb.InstanceOf(c.InternalName)
	cb.IfEq(falseLbl)

	cb.Load('A', 1)
	cb.CheckCast(c.InternalName)
	cb.Store('A', 2)

	for _, f := range fields {
		desc := fieldEmittedDescriptor(f)
		cb.Load('A', 0)
		cb.GetField(c.InternalName, f.Name, desc)
		boxFieldIfPrimitive(cb, f.Type)
		cb.Load('A', 2)
		cb.GetField(c.InternalName, f.Name, desc)
		boxFieldIfPrimitive(cb, f.Type)
		cb.InvokeStatic("java/util/Objects", "equals", "(Ljava/lang/Object;Ljava/lang/Object;)Z")
		cb.IfEq(falseLbl)
	}

	cb.MarkLabel(sameLbl)
	cb.PushInt(1)
	cb.Return('I')

	cb.MarkLabel(falseLbl)
	cb.PushInt(0)
	cb.Return('I')

	return addBuiltMethod(cw, cp, cb, classfile.AccPublic, "equals", "(Ljava/lang/Object;)Z")
}

func emitDataHashCode(cw *classfile.ClassWriter, cp *classfile.Pool, c *mir.Class, fields []mir.FieldDef) error {
	cb := classfile.NewCodeBuilder(cp)
	cb.SetMaxLocals(1)
	cb.PushInt(int32(len(fields)))
	cb.ANewArray("java/lang/Object")
	for i, f := range fields {
		cb.Dup()
		cb.PushInt(int32(i))
		cb.Load('A', 0)
		desc := fieldEmittedDescriptor(f)
		cb.GetField(c.InternalName, f.Name, desc)
		boxFieldIfPrimitive(cb, f.Type)
		cb.ArrayStore('A')
	}
	cb.InvokeStatic("java/util/Objects", "hash", "([Ljava/lang/Object;)I")
	cb.Return('I')
	return addBuiltMethod(cw, cp, cb, classfile.AccPublic, "hashCode", "()I")
}

func emitDataComponent(cw *classfile.ClassWriter, cp *classfile.Pool, c *mir.Class, name string, f mir.FieldDef) error {
	cb := classfile.NewCodeBuilder(cp)
	cb.SetMaxLocals(1)
	cb.Load('A', 0)
	desc := fieldEmittedDescriptor(f)
	cb.GetField(c.InternalName, f.Name, desc)
	boxFieldIfPrimitive(cb, f.Type)
	cb.Return('A')
	return addBuiltMethod(cw, cp, cb, classfile.AccPublic, name, "()Ljava/lang/Object;")
}

func emitDataCopy(cw *classfile.ClassWriter, cp *classfile.Pool, c *mir.Class, fields []mir.FieldDef) error {
	arity := primaryCtorArity(c, len(fields))
	cb := classfile.NewCodeBuilder(cp)
	cb.SetMaxLocals(1)
	cb.New(c.InternalName)
	cb.Dup()
	for _, f := range fields[:arity] {
		cb.Load('A', 0)
		desc := fieldEmittedDescriptor(f)
		cb.GetField(c.InternalName, f.Name, desc)
		boxFieldIfPrimitive(cb, f.Type)
	}
	cb.InvokeSpecial(c.InternalName, "<init>", allObjectDescriptor(arity, "V"))
	cb.Return('A')
	return addBuiltMethod(cw, cp, cb, classfile.AccPublic, "copy", "()Ljava/lang/Object;")
}

func addBuiltMethod(cw *classfile.ClassWriter, cp *classfile.Pool, cb *classfile.CodeBuilder, access int, name, desc string) error {
	code, _, _, err := classfile.BuildCode(cp, cb)
	if err != nil {
		return fmt.Errorf("synthesized %s%s: %w", name, desc, err)
	}
	cw.AddMethod(classfile.MethodResult{
		Access: access, Name: name, Descriptor: desc,
		Code: code, MaxStack: cb.MaxStack(), MaxLocals: cb.MaxLocals(),
	})
	return nil
}

// emitBuilder synthesizes a static builder() factory on cw plus a
// separate fluent inner builder class (§4.3 "builder"): one
// Object-typed field and chainable setter per data field, and a
// build() that forwards to the primary constructor (whose descriptor
// is all-Object regardless, so no unboxing is needed at the call site).
func emitBuilder(cw *classfile.ClassWriter, scan *Prescan, c *mir.Class) ([]classOut, error) {
	fields := nonStaticFields(c)
	builderName := c.InternalName + "$Builder"

	if err := emitBuilderFactory(cw, builderName); err != nil {
		return nil, err
	}

	bcp := classfile.NewPool()
	bcw := classfile.NewClassWriter(bcp, classfile.AccPublic|classfile.AccSuper, builderName, "")

	for _, f := range fields {
		bcw.AddField(classfile.FieldInfo{Access: classfile.AccPublic, Name: f.Name, Descriptor: "Ljava/lang/Object;"})
	}

	ctorCb := classfile.NewCodeBuilder(bcp)
	ctorCb.SetMaxLocals(1)
	ctorCb.Load('A', 0)
	ctorCb.InvokeSpecial("java/lang/Object", "<init>", "()V")
	ctorCb.Return('V')
	if err := addBuiltMethod(bcw, bcp, ctorCb, classfile.AccPublic, "<init>", "()V"); err != nil {
		return nil, err
	}

	for _, f := range fields {
		setCb := classfile.NewCodeBuilder(bcp)
		setCb.SetMaxLocals(2)
		setCb.Load('A', 0)
		setCb.Load('A', 1)
		setCb.PutField(builderName, f.Name, "Ljava/lang/Object;")
		setCb.Load('A', 0)
		setCb.Return('A')
		if err := addBuiltMethod(bcw, bcp, setCb, classfile.AccPublic, f.Name, "(Ljava/lang/Object;)Ljava/lang/Object;"); err != nil {
			return nil, err
		}
	}

	arity := primaryCtorArity(c, len(fields))
	buildCb := classfile.NewCodeBuilder(bcp)
	buildCb.SetMaxLocals(1)
	buildCb.New(c.InternalName)
	buildCb.Dup()
	for _, f := range fields[:arity] {
		buildCb.Load('A', 0)
		buildCb.GetField(builderName, f.Name, "Ljava/lang/Object;")
	}
	buildCb.InvokeSpecial(c.InternalName, "<init>", allObjectDescriptor(arity, "V"))
	buildCb.Return('A')
	if err := addBuiltMethod(bcw, bcp, buildCb, classfile.AccPublic, "build", "()Ljava/lang/Object;"); err != nil {
		return nil, err
	}

	bs, err := bcw.Bytes()
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", builderName, err)
	}
	return []classOut{{name: builderName, bytes: bs}}, nil
}

func emitBuilderFactory(cw *classfile.ClassWriter, builderName string) error {
	cp := cw.Pool()
	cb := classfile.NewCodeBuilder(cp)
	cb.New(builderName)
	cb.Dup()
	cb.InvokeSpecial(builderName, "<init>", "()V")
	cb.Return('A')
	return addBuiltMethod(cw, cp, cb, classfile.AccPublic|classfile.AccStatic, "builder", "()Ljava/lang/Object;")
}
