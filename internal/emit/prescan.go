package emit

import (
	"fmt"

	"github.com/novalang/novac/internal/mir"
	"github.com/samber/lo"
)

// Prescan is the module-wide lookup tables built once, before any
// class is emitted (spec.md §4.3 "Pre-scan"): a class→field→
// descriptor table (for GET_FIELD/SET_FIELD resolution up the
// inheritance chain) and a (class, arity)→constructor descriptor
// table (for NEW_OBJECT dispatch), plus the module's own superclass
// links.
type Prescan struct {
	// fieldDesc[class][name] is the descriptor the field is actually
	// emitted with: Ljava/lang/Object; for reference instance fields,
	// the natural primitive descriptor for primitive instance fields,
	// and the declared descriptor for static fields (§4.3
	// "Representation contract").
	fieldDesc map[string]map[string]string
	// ctorDesc[class][arity] is the constructor descriptor to use for
	// a NEW_OBJECT with that many arguments.
	ctorDesc map[string]map[int]string
	// ctorParamTypes[class][arity] holds each parameter's MIR type so
	// NEW_OBJECT can unbox each argument to match (§4.3 "NEW_OBJECT").
	ctorParamTypes map[string]map[int][]mir.Type
	superOf        map[string]string
	classKinds     map[string]mir.ClassKind
}

func newPrescan() *Prescan {
	return &Prescan{
		fieldDesc:      map[string]map[string]string{},
		ctorDesc:       map[string]map[int]string{},
		ctorParamTypes: map[string]map[int][]mir.Type{},
		superOf:        map[string]string{},
		classKinds:     map[string]mir.ClassKind{},
	}
}

// BuildPrescan walks every class (and nested class) in mod, recording
// field descriptors, constructor descriptors, and superclass links.
func BuildPrescan(mod *mir.Module) *Prescan {
	p := newPrescan()
	for _, c := range mod.Classes {
		p.visitClass(c)
	}
	return p
}

func (p *Prescan) visitClass(c *mir.Class) {
	p.superOf[c.InternalName] = c.SuperClass
	p.classKinds[c.InternalName] = c.Kind

	fields := map[string]string{}
	for _, f := range c.Fields {
		fields[f.Name] = fieldEmittedDescriptor(f)
	}
	p.fieldDesc[c.InternalName] = fields

	ctors := map[int]string{}
	params := map[int][]mir.Type{}
	for _, ctor := range c.Constructors {
		arity := ctor.ParamCount - 1 // exclude `this`
		ctors[arity] = ctorDescriptor(ctor)
		params[arity] = paramTypes(ctor)
	}
	if len(c.Constructors) == 0 {
		// Implicit zero-arg constructor for classes the lowerer didn't
		// give an explicit primary constructor (e.g. interfaces never
		// reach here; objects/enums always synthesize one upstream).
		ctors[0] = "()V"
		params[0] = nil
	}
	p.ctorDesc[c.InternalName] = ctors
	p.ctorParamTypes[c.InternalName] = params

	for _, nc := range c.NestedClasses {
		p.visitClass(nc)
	}
}

func paramTypes(fn *mir.Function) []mir.Type {
	if fn.ParamCount <= 1 {
		return nil
	}
	return lo.Map(fn.Locals[1:fn.ParamCount], func(l mir.Local, _ int) mir.Type { // skip `this`
		return l.Type
	})
}

func fieldEmittedDescriptor(f mir.FieldDef) string {
	if f.IsStatic {
		return f.Type.Descriptor()
	}
	if f.Type.IsPrimitive() {
		return f.Type.Descriptor()
	}
	return "Ljava/lang/Object;"
}

func ctorDescriptor(fn *mir.Function) string {
	if fn.DescriptorOverride != "" {
		return fn.DescriptorOverride
	}
	return allObjectDescriptor(fn.ParamCount-1, "V")
}

func allObjectDescriptor(arity int, ret string) string {
	s := "("
	for i := 0; i < arity; i++ {
		s += "Ljava/lang/Object;"
	}
	return s + ")" + ret
}

// ConstructorDescriptor resolves the descriptor and declared parameter
// types for class/arity, or ("", nil, false) if unknown (an external
// or unresolved class — the emitter then calls <init> directly with an
// all-Object descriptor; no method-handle cache is used).
func (p *Prescan) ConstructorDescriptor(class string, arity int) (string, []mir.Type, bool) {
	m, ok := p.ctorDesc[class]
	if !ok {
		return "", nil, false
	}
	d, ok := m[arity]
	if !ok {
		return "", nil, false
	}
	return d, p.ctorParamTypes[class][arity], true
}

// FieldDescriptor resolves a field's emitted descriptor by walking
// class's Nova inheritance chain, then returns ("", false); the caller
// then uses Ljava/lang/Object; as the descriptor, with no reflective
// lookup of the field.
func (p *Prescan) FieldDescriptor(class, name string) (string, bool) {
	for cur := class; cur != ""; {
		if fields, ok := p.fieldDesc[cur]; ok {
			if d, ok := fields[name]; ok {
				return d, true
			}
		}
		next, ok := p.superOf[cur]
		if !ok || next == cur {
			break
		}
		cur = next
	}
	return "", false
}

// IsModuleClass reports whether class was declared in this module
// (vs. an external Java class).
func (p *Prescan) IsModuleClass(class string) bool {
	_, ok := p.classKinds[class]
	return ok
}

func (p *Prescan) String() string {
	return fmt.Sprintf("Prescan{classes=%d}", len(p.classKinds))
}
