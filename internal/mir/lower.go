package mir

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/hir"
)

// moduleCtx tracks module-wide facts the per-function lowerCtx needs:
// the set of class simple names declared in this module, used to
// disambiguate a HirCall against a bare/qualified name as either
// NEW_OBJECT or an invocation (spec.md's HirNew decision was deferred
// to this stage, since it is the first stage with a full view of the
// module's declared classes).
type moduleCtx struct {
	classNames map[string]bool
}

// Lower converts a desugared hir.Module into MIR, satisfying §4.2's
// contract (a)-(e): one local per named variable plus temporaries,
// a stable type per local, delegating/chaining <init> bodies with
// explicit argument locals, a try/catch table recording exception
// type and handler local per region, and instance initializers
// threaded into the primary constructor in source order after the
// super/delegation call.
func Lower(mod *hir.Module) *Module {
	mctx := &moduleCtx{classNames: map[string]bool{}}
	collectClassNames(mctx, mod.Classes)

	out := &Module{}
	for _, c := range mod.Classes {
		out.Classes = append(out.Classes, lowerClass(mctx, c))
	}
	for _, fn := range mod.Functions {
		out.TopLevelFuncs = append(out.TopLevelFuncs, lowerFunction(mctx, fn, "", true))
	}
	if len(out.TopLevelFuncs) > 0 {
		out.TopLevelClassName = "$Module"
	}
	return out
}

func collectClassNames(mctx *moduleCtx, classes []*hir.Class) {
	for _, c := range classes {
		mctx.classNames[c.Name] = true
		collectClassNames(mctx, c.NestedClasses)
	}
}

func lowerClass(mctx *moduleCtx, c *hir.Class) *Class {
	mc := &Class{
		Kind:         FromClassKind(c.Kind),
		InternalName: c.Name,
		Modifiers:    c.Modifiers,
		SuperClass:   superInternalName(c.SuperClass),
	}
	for _, i := range c.Interfaces {
		mc.Interfaces = append(mc.Interfaces, FromTypeRef(i).ClassName)
	}
	for _, a := range c.Annotations {
		ann := AnnotationRef{Name: a.Name}
		mc.Annotations = append(mc.Annotations, ann)
	}
	for _, f := range c.Fields {
		mc.Fields = append(mc.Fields, FieldDef{Name: f.Name, Type: FromTypeRef(f.Type), IsStatic: hasMod(f.Modifiers, "static"), IsFinal: !f.Mutable})
	}
	for _, m := range c.Methods {
		mc.Methods = append(mc.Methods, lowerFunction(mctx, m, c.Name, hasMod(m.Modifiers, "static")))
	}
	for _, ctor := range c.Constructors {
		mc.Constructors = append(mc.Constructors, lowerConstructor(mctx, ctor, c))
	}
	for _, e := range c.EnumEntries {
		mc.EnumEntries = append(mc.EnumEntries, EnumEntryDef{Name: e.Name, Ctor: lowerEnumEntryCtor(mctx, c, e)})
	}
	for _, nc := range c.NestedClasses {
		mc.NestedClasses = append(mc.NestedClasses, lowerClass(mctx, nc))
	}
	return mc
}

func hasMod(mods []string, name string) bool {
	for _, m := range mods {
		if m == name {
			return true
		}
	}
	return false
}

func superInternalName(t ast.TypeRef) string {
	if t == nil {
		return ""
	}
	mt := FromTypeRef(t)
	return mt.ClassName
}

// lowerConstructor builds <init>'s body, threading super/delegation
// calls and instance initializers per §4.2(c)/(e).
func lowerConstructor(mctx *moduleCtx, fn *hir.Function, owner *hir.Class) *Function {
	b := NewBuilder()
	lc := &lowerCtx{mctx: mctx, b: b, scopes: []map[string]int{{}}}

	thisLocal := b.NewLocal("this", NamedObject(owner.Name))
	lc.bind("this", thisLocal)
	for _, p := range fn.Params {
		idx := b.NewLocal(p.Name, FromTypeRef(p.Type))
		lc.bind(p.Name, idx)
	}
	b.fn.ParamCount = len(fn.Params) + 1
	b.fn.IsConstructor = true
	b.fn.OwnerClass = owner.Name

	if fn.DelegatesThis {
		b.fn.DelegatesThis = true
		for _, a := range fn.DelegationArgs {
			b.fn.DelegationArgLocals = append(b.fn.DelegationArgLocals, lc.lowerExpr(a))
		}
	} else {
		b.fn.SuperClass = superInternalName(owner.SuperClass)
		for _, a := range owner.SuperArgs {
			b.fn.SuperArgLocals = append(b.fn.SuperArgLocals, lc.lowerExpr(a))
		}
		// Instance initializers run after the super call, in source
		// order, in every constructor that does not delegate to
		// this(...).
		if !fn.DelegatesThis {
			for _, init := range owner.InstanceInitializers {
				lc.lowerInstanceInitializer(thisLocal, init)
			}
		}
	}

	if fn.Body != nil {
		lc.lowerBlock(fn.Body)
	}
	lc.finish()
	return b.fn
}

func (lc *lowerCtx) lowerInstanceInitializer(thisLocal int, init hir.InstanceInitializer) {
	if init.Field != nil {
		if init.Field.Initializer == nil {
			return
		}
		val := lc.lowerExpr(init.Field.Initializer)
		lc.b.Emit(Instruction{Op: OpSetField, Operands: []int{thisLocal, val}, Extra: FieldRef{Owner: lc.ownerClass(), Name: init.Field.Name, Desc: FromTypeRef(init.Field.Type).Descriptor()}})
		return
	}
	if init.Body != nil {
		lc.lowerBlock(init.Body)
	}
}

func lowerEnumEntryCtor(mctx *moduleCtx, owner *hir.Class, e *ast.EnumEntryDecl) *Function {
	b := NewBuilder()
	lc := &lowerCtx{mctx: mctx, b: b, scopes: []map[string]int{{}}}
	var args []int
	for _, a := range e.Args {
		args = append(args, lc.lowerExpr(a))
	}
	dest := b.NewLocal("", NamedObject(owner.Name))
	b.Emit(Instruction{Op: OpNewObject, Dest: dest, Operands: args, Extra: owner.Name})
	b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: dest})
	b.fn.Name = "$entry$" + e.Name
	b.fn.IsStatic = true
	b.fn.ReturnType = NamedObject(owner.Name)
	return b.fn
}

func lowerFunction(mctx *moduleCtx, fn *hir.Function, owner string, isStatic bool) *Function {
	b := NewBuilder()
	lc := &lowerCtx{mctx: mctx, b: b, scopes: []map[string]int{{}}}

	if !isStatic {
		thisLocal := b.NewLocal("this", NamedObject(owner))
		lc.bind("this", thisLocal)
	}
	for _, p := range fn.Params {
		idx := b.NewLocal(p.Name, FromTypeRef(p.Type))
		lc.bind(p.Name, idx)
	}
	if isStatic {
		b.fn.ParamCount = len(fn.Params)
	} else {
		b.fn.ParamCount = len(fn.Params) + 1
	}
	b.fn.Name = fn.Name
	b.fn.OwnerClass = owner
	b.fn.IsStatic = isStatic
	b.fn.ReturnType = FromTypeRef(fn.ReturnType)

	if fn.Body != nil {
		lc.lowerBlock(fn.Body)
	}
	lc.finish()
	return b.fn
}

func (lc *lowerCtx) ownerClass() string { return lc.b.fn.OwnerClass }

// finish terminates any still-open trailing block with a Unit return
// (a function whose last statement isn't itself a return/throw/loop
// falls off the end implicitly, same as the surface language).
func (lc *lowerCtx) finish() {
	cur := lc.b.Current()
	if !cur.Terminated {
		lc.b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: NoDest})
	}
}
