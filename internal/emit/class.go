package emit

import (
	"fmt"

	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/mir"
)

// classOut is one emitted class file: its internal name and serialized
// bytes. A single mir.Class can produce more than one classOut (nested
// classes, a synthesized builder inner class).
type classOut struct {
	name  string
	bytes []byte
}

// EmitClass lowers one MIR class (dispatching on its kind, §4.3 "Class
// emission") plus any nested/synthesized classes it needs, into their
// serialized JVM class files.
func EmitClass(scan *Prescan, c *mir.Class) ([]classOut, error) {
	cp := classfile.NewPool()
	access := classKindAccess(c)
	cw := classfile.NewClassWriter(cp, access, c.InternalName, c.SuperClass)
	for _, iface := range c.Interfaces {
		cw.AddInterface(iface)
	}

	for _, f := range c.Fields {
		cw.AddField(classfile.FieldInfo{
			Access:     fieldAccess(f),
			Name:       f.Name,
			Descriptor: fieldEmittedDescriptor(f),
		})
	}

	var out []classOut
	isData, isBuilder, triggers := classifyAnnotations(c)

	switch c.Kind {
	case mir.KindAnnotationDecl:
		if err := emitAnnotationMembers(cw, c); err != nil {
			return nil, err
		}
		cw.AddClassAnnotations(classfile.BuildRetentionTargetAnnotations(cp, []string{"TYPE", "FIELD", "METHOD"}))

	case mir.KindObjectDecl:
		cw.AddField(classfile.FieldInfo{
			Access:     classfile.AccPublic | classfile.AccStatic | classfile.AccFinal,
			Name:       "INSTANCE",
			Descriptor: "L" + c.InternalName + ";",
		})
		if err := emitMethods(cw, scan, c); err != nil {
			return nil, err
		}
		if err := emitObjectClinit(cw, scan, c, triggers); err != nil {
			return nil, err
		}

	case mir.KindEnumDecl:
		if err := emitMethods(cw, scan, c); err != nil {
			return nil, err
		}
		if err := emitEnumSupport(cw, scan, c, triggers); err != nil {
			return nil, err
		}

	default: // KindClassDecl, KindInterfaceDecl
		if err := emitMethods(cw, scan, c); err != nil {
			return nil, err
		}
		if len(triggers) > 0 {
			if err := emitTriggerClinit(cw, triggers, c.InternalName); err != nil {
				return nil, err
			}
		}
	}

	for _, ctor := range c.Constructors {
		m, err := EmitMethod(cp, scan, ctor, c.InternalName, classfile.AccPublic)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.InternalName, err)
		}
		cw.AddMethod(m)
	}

	if c.Kind != mir.KindAnnotationDecl {
		if isData {
			if err := emitDataMembers(cw, c); err != nil {
				return nil, err
			}
		}
		if isBuilder {
			nested, err := emitBuilder(cw, scan, c)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}

	for _, nc := range c.NestedClasses {
		sub, err := EmitClass(scan, nc)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	bs, err := cw.Bytes()
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", c.InternalName, err)
	}
	out = append([]classOut{{name: c.InternalName, bytes: bs}}, out...)
	return out, nil
}

func classKindAccess(c *mir.Class) int {
	switch c.Kind {
	case mir.KindAnnotationDecl:
		return classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract | classfile.AccAnnotation
	case mir.KindInterfaceDecl:
		return classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract
	case mir.KindObjectDecl:
		return classfile.AccPublic | classfile.AccFinal | classfile.AccSuper
	case mir.KindEnumDecl:
		return classfile.AccPublic | classfile.AccSuper
	default:
		access := classfile.AccPublic | classfile.AccSuper
		if hasModifier(c.Modifiers, "final") {
			access |= classfile.AccFinal
		}
		if hasModifier(c.Modifiers, "abstract") {
			access |= classfile.AccAbstract
		}
		return access
	}
}

func hasModifier(mods []string, name string) bool {
	for _, m := range mods {
		if m == name {
			return true
		}
	}
	return false
}

func fieldAccess(f mir.FieldDef) int {
	access := classfile.AccPublic
	if f.IsStatic {
		access |= classfile.AccStatic
	}
	if f.IsFinal {
		access |= classfile.AccFinal
	}
	return access
}

// emitMethods emits c.Methods, tagging an interface's empty-body
// methods ABSTRACT (no Code attribute) rather than running them
// through EmitMethod (§4.3 "Class/Interface: interfaces tag
// empty-body methods as ABSTRACT").
func emitMethods(cw *classfile.ClassWriter, scan *Prescan, c *mir.Class) error {
	for _, fn := range c.Methods {
		if c.Kind == mir.KindInterfaceDecl && len(fn.Blocks) == 0 {
			cw.AddMethod(classfile.MethodResult{
				Access:     classfile.AccPublic | classfile.AccAbstract,
				Name:       methodName(fn),
				Descriptor: methodDescriptor(fn),
			})
			continue
		}
		access := classfile.AccPublic
		if fn.IsStatic {
			access |= classfile.AccStatic
		}
		m, err := EmitMethod(cw.Pool(), scan, fn, c.InternalName, access)
		if err != nil {
			return fmt.Errorf("class %s: %w", c.InternalName, err)
		}
		cw.AddMethod(m)
	}
	return nil
}

// emitAnnotationMembers emits one abstract element method per
// non-static field of an @interface (§4.3 "Annotation").
func emitAnnotationMembers(cw *classfile.ClassWriter, c *mir.Class) error {
	for _, f := range c.Fields {
		if f.IsStatic {
			continue
		}
		cw.AddMethod(classfile.MethodResult{
			Access:     classfile.AccPublic | classfile.AccAbstract,
			Name:       f.Name,
			Descriptor: "()" + f.Type.Descriptor(),
		})
	}
	return nil
}

// emitObjectClinit assigns the singleton's INSTANCE field (§4.3
// "Object (singleton)"), then runs the annotation triggers. No user
// static-initializer instructions are merged into it; this lowering
// puts no "<clinit>" into c.Methods (module-level `const val`/
// static-field initializers are folded at field-init time upstream).
func emitObjectClinit(cw *classfile.ClassWriter, scan *Prescan, c *mir.Class, triggers []string) error {
	cp := cw.Pool()
	cb := classfile.NewCodeBuilder(cp)

	cb.New(c.InternalName)
	cb.Dup()
	desc, _, ok := scan.ConstructorDescriptor(c.InternalName, 0)
	if !ok {
		desc = "()V"
	}
	cb.InvokeSpecial(c.InternalName, "<init>", desc)
	cb.PutStatic(c.InternalName, "INSTANCE", "L"+c.InternalName+";")
	emitAnnotationTriggers(cb, triggers, c.InternalName)
	cb.Return('V')

	code, _, _, err := classfile.BuildCode(cp, cb)
	if err != nil {
		return err
	}
	cw.AddMethod(classfile.MethodResult{
		Access:     classfile.AccStatic,
		Name:       "<clinit>",
		Descriptor: "()V",
		Code:       code,
		MaxStack:   cb.MaxStack(),
		MaxLocals:  cb.MaxLocals(),
	})
	return nil
}

// emitEnumSupport synthesizes each entry's backing field and static
// initializer call, the class's <clinit>, a synthetic static values(),
// and a toString() walking the entries by identity (§4.3 "Enum").
func emitEnumSupport(cw *classfile.ClassWriter, scan *Prescan, c *mir.Class, triggers []string) error {
	cp := cw.Pool()
	selfDesc := "L" + c.InternalName + ";"

	for _, e := range c.EnumEntries {
		cw.AddField(classfile.FieldInfo{
			Access:     classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum,
			Name:       e.Name,
			Descriptor: selfDesc,
		})
		m, err := EmitMethod(cp, scan, e.Ctor, c.InternalName, classfile.AccPrivate|classfile.AccStatic)
		if err != nil {
			return fmt.Errorf("enum entry %s: %w", e.Name, err)
		}
		cw.AddMethod(m)
	}

	cb := classfile.NewCodeBuilder(cp)
	for _, e := range c.EnumEntries {
		cb.InvokeStatic(c.InternalName, methodName(e.Ctor), methodDescriptor(e.Ctor))
		cb.CheckCast(c.InternalName)
		cb.PutStatic(c.InternalName, e.Name, selfDesc)
	}
	emitAnnotationTriggers(cb, triggers, c.InternalName)
	cb.Return('V')
	code, _, _, err := classfile.BuildCode(cp, cb)
	if err != nil {
		return err
	}
	cw.AddMethod(classfile.MethodResult{
		Access: classfile.AccStatic, Name: "<clinit>", Descriptor: "()V",
		Code: code, MaxStack: cb.MaxStack(), MaxLocals: cb.MaxLocals(),
	})

	valuesCb := classfile.NewCodeBuilder(cp)
	valuesCb.PushInt(int32(len(c.EnumEntries)))
	valuesCb.ANewArray("java/lang/Object")
	for i, e := range c.EnumEntries {
		valuesCb.Dup()
		valuesCb.PushInt(int32(i))
		valuesCb.GetStatic(c.InternalName, e.Name, selfDesc)
		valuesCb.ArrayStore('A')
	}
	valuesCb.Return('A')
	vcode, _, _, err := classfile.BuildCode(cp, valuesCb)
	if err != nil {
		return err
	}
	cw.AddMethod(classfile.MethodResult{
		Access: classfile.AccPublic | classfile.AccStatic, Name: "values", Descriptor: "()[Ljava/lang/Object;",
		Code: vcode, MaxStack: valuesCb.MaxStack(), MaxLocals: valuesCb.MaxLocals(),
	})

	if hasUserMethod(c, "toString", 0) {
		return nil
	}
	tsCb := classfile.NewCodeBuilder(cp)
	tsCb.SetMaxLocals(1)
	for _, e := range c.EnumEntries {
		nextLbl := tsCb.NewLabel()
		tsCb.Load('A', 0)
		tsCb.GetStatic(c.InternalName, e.Name, selfDesc)
		tsCb.IfAcmpNe(nextLbl)
		tsCb.PushString(e.Name)
		tsCb.Return('A')
		tsCb.MarkLabel(nextLbl)
	}
	tsCb.PushString("")
	tsCb.Return('A')
	tscode, _, _, err := classfile.BuildCode(cp, tsCb)
	if err != nil {
		return err
	}
	cw.AddMethod(classfile.MethodResult{
		Access: classfile.AccPublic, Name: "toString", Descriptor: "()Ljava/lang/String;",
		Code: tscode, MaxStack: tsCb.MaxStack(), MaxLocals: tsCb.MaxLocals(),
	})
	return nil
}

// classifyAnnotations splits a class's runtime annotations into the
// two library-known kinds that get bespoke synthesis (§4.3's "after
// emitting user methods" list) and everything else, which triggers a
// generic runtime hook.
func classifyAnnotations(c *mir.Class) (isData, isBuilder bool, triggers []string) {
	for _, a := range c.Annotations {
		switch a.Name {
		case "data":
			isData = true
		case "builder":
			isBuilder = true
		default:
			triggers = append(triggers, a.Name)
		}
	}
	return
}

// emitAnnotationTriggers appends one NovaAnnotations.trigger(String,
// Class, Map) call per trigger name to a <clinit> already under
// construction (§4.3 "any runtime annotation other than data/builder").
func emitAnnotationTriggers(cb *classfile.CodeBuilder, triggers []string, internalName string) {
	for _, name := range triggers {
		cb.PushString(name)
		cb.PushClass(internalName)
		cb.InvokeStatic("java/util/Collections", "emptyMap", "()Ljava/util/Map;")
		cb.InvokeStatic("nova/lang/NovaAnnotations", "trigger", "(Ljava/lang/String;Ljava/lang/Class;Ljava/util/Map;)V")
	}
}

// emitTriggerClinit builds a standalone <clinit> for ordinary
// class/interface declarations that carry a non-data/builder runtime
// annotation but otherwise need no static initializer.
func emitTriggerClinit(cw *classfile.ClassWriter, triggers []string, internalName string) error {
	cp := cw.Pool()
	cb := classfile.NewCodeBuilder(cp)
	emitAnnotationTriggers(cb, triggers, internalName)
	cb.Return('V')
	code, _, _, err := classfile.BuildCode(cp, cb)
	if err != nil {
		return err
	}
	cw.AddMethod(classfile.MethodResult{
		Access: classfile.AccStatic, Name: "<clinit>", Descriptor: "()V",
		Code: code, MaxStack: cb.MaxStack(), MaxLocals: cb.MaxLocals(),
	})
	return nil
}

func hasUserMethod(c *mir.Class, name string, arity int) bool {
	for _, fn := range c.Methods {
		if fn.Name == name && fn.ParamCount-1 == arity {
			return true
		}
	}
	return false
}
