package hir

import (
	"fmt"
	"sort"

	"github.com/novalang/novac/internal/ast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Lower desugars a parsed Program into a Module per §4.1's exhaustive
// table. Program-level field/main interleaving, companion hoisting,
// and instance-initializer ordering are handled here; per-class and
// per-function bodies recurse through lowerStmt/lowerExpr.
func Lower(prog *ast.Program) *Module {
	ctx := NewContext()
	mod := &Module{Package: prog.Package, Imports: prog.Imports}

	var topFields []*ast.PropertyDecl
	var topFieldDecls []ast.Declaration
	var mainFn *ast.FunctionDecl
	var rest []ast.Declaration

	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.PropertyDecl:
			topFields = append(topFields, decl)
			topFieldDecls = append(topFieldDecls, decl)
		case *ast.FunctionDecl:
			if decl.Name == "main" && decl.ReceiverType == nil {
				mainFn = decl
				continue
			}
			rest = append(rest, decl)
		default:
			rest = append(rest, decl)
		}
	}

	for _, d := range rest {
		switch decl := d.(type) {
		case *ast.ClassDecl:
			mod.Classes = append(mod.Classes, lowerClass(ctx, decl))
		case *ast.FunctionDecl:
			mod.Functions = append(mod.Functions, lowerFunction(ctx, decl))
		case *ast.TypeAliasDecl:
			mod.TypeAliases = append(mod.TypeAliases, decl)
		}
	}

	if len(topFields) > 0 || mainFn != nil {
		mod.Functions = append(mod.Functions, lowerProgramEntry(ctx, topFieldDecls, mainFn))
	}

	mod.Classes = append(mod.Classes, ctx.Synthetic...)

	return mod
}

// lowerProgramEntry merges top-level field declarations into main's
// body sorted by source position (script mode synthesizes main when
// absent), per §4.1's program-level rule.
func lowerProgramEntry(ctx *Context, fields []ast.Declaration, mainFn *ast.FunctionDecl) *Function {
	var stmts []ast.Statement
	for _, f := range fields {
		stmts = append(stmts, &ast.DeclStmt{Decl: f, P: f.Pos()})
	}
	var bodyStmts []ast.Statement
	if mainFn != nil && mainFn.Body != nil {
		bodyStmts = mainFn.Body.Statements
	}
	merged := append(stmts, bodyStmts...)
	sort.SliceStable(merged, func(i, j int) bool {
		pi, pj := merged[i].Pos(), merged[j].Pos()
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})

	lowered := make([]ast.Statement, 0, len(merged))
	for _, s := range merged {
		lowered = append(lowered, lowerStmt(ctx, s))
	}

	return &Function{
		Name: "main",
		Body: &ast.BlockStmt{Statements: lowered},
	}
}

func lowerClass(ctx *Context, decl *ast.ClassDecl) *Class {
	c := &Class{
		Kind:        decl.Kind,
		Name:        decl.Name,
		Modifiers:   decl.Modifiers,
		Annotations: decl.Annotations,
		TypeParams:  decl.TypeParams,
		SuperClass:  decl.SuperClass,
		Interfaces:  decl.Interfaces,
		EnumEntries: lowerEnumEntries(ctx, decl.EnumEntries),
	}
	for _, arg := range decl.SuperArgs {
		c.SuperArgs = append(c.SuperArgs, lowerExpr(ctx, arg))
	}

	// Members are assembled into name-keyed ordered maps rather than
	// appended straight to slices: a companion member hoisted in below
	// can shadow an own member of the same name/arity, and Set on an
	// existing key keeps that key's original slot instead of moving it
	// to the back, so the final flatten stays in declaration order
	// without a second sort pass.
	methods := orderedmap.New[string, *Function]()
	fields := orderedmap.New[string, *Field]()

	// Property-promoted primary-constructor params also produce a field.
	if decl.PrimaryCtor != nil {
		ctorParams := make([]*Param, 0, len(decl.PrimaryCtor.Params))
		for _, p := range decl.PrimaryCtor.Params {
			ctorParams = append(ctorParams, lowerParam(ctx, p))
			if p.PropertyOf {
				field := &Field{Name: p.Name, Mutable: p.Mutable, Type: p.Type}
				fields.Set(field.Name, field)
				c.InstanceInitializers = append(c.InstanceInitializers, InstanceInitializer{Field: field})
			}
		}
		ctorBody := lowerBlock(ctx, decl.PrimaryCtor.Body)
		c.Constructors = append(c.Constructors, &Function{
			Name:          "<init>",
			Params:        ctorParams,
			Body:          ctorBody,
			IsConstructor: true,
		})
	}

	for _, f := range decl.Fields {
		field := lowerField(ctx, f)
		fields.Set(field.Name, field)
		if field.Initializer != nil {
			c.InstanceInitializers = append(c.InstanceInitializers, InstanceInitializer{Field: field})
		}
	}
	for _, ib := range decl.InitBlocks {
		body := lowerBlock(ctx, ib.Body)
		c.InstanceInitializers = append(c.InstanceInitializers, InstanceInitializer{Body: body})
	}

	for _, m := range decl.Methods {
		fn := lowerFunction(ctx, m)
		methods.Set(methodKey(fn), fn)
	}
	for _, ctor := range decl.Constructors {
		c.Constructors = append(c.Constructors, lowerConstructor(ctx, ctor))
	}
	for _, nc := range decl.NestedClasses {
		if nc.Name == "Companion" {
			// Hoist companion members into the enclosing class with `static`.
			for _, m := range nc.Methods {
				fn := lowerFunction(ctx, m)
				fn.Modifiers = append(fn.Modifiers, "static")
				methods.Set(methodKey(fn), fn)
			}
			for _, f := range nc.Fields {
				field := lowerField(ctx, f)
				field.Modifiers = append(field.Modifiers, "static")
				fields.Set(field.Name, field)
				if field.Initializer != nil {
					c.InstanceInitializers = append(c.InstanceInitializers, InstanceInitializer{Field: field})
				}
			}
			continue
		}
		c.NestedClasses = append(c.NestedClasses, lowerClass(ctx, nc))
	}

	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		c.Fields = append(c.Fields, pair.Value)
	}
	for pair := methods.Oldest(); pair != nil; pair = pair.Next() {
		c.Methods = append(c.Methods, pair.Value)
	}

	return c
}

// methodKey identifies a method for companion-hoisting dedup purposes:
// same name and arity overload each other, same as the JVM would see
// them once both land as methods on one class.
func methodKey(fn *Function) string {
	return fmt.Sprintf("%s/%d", fn.Name, len(fn.Params))
}

func lowerConstructor(ctx *Context, ctor *ast.ConstructorDecl) *Function {
	params := make([]*Param, 0, len(ctor.Params))
	for _, p := range ctor.Params {
		params = append(params, lowerParam(ctx, p))
	}
	var delegationArgs []ast.Expression
	for _, a := range ctor.DelegationArgs {
		delegationArgs = append(delegationArgs, lowerExpr(ctx, a))
	}
	return &Function{
		Name:           "<init>",
		Params:         params,
		Body:           lowerBlock(ctx, ctor.Body),
		IsConstructor:  true,
		DelegatesThis:  ctor.DelegatesThis,
		DelegationArgs: delegationArgs,
	}
}

func lowerFunction(ctx *Context, decl *ast.FunctionDecl) *Function {
	fn := &Function{
		Name:             decl.Name,
		Modifiers:        decl.Modifiers,
		TypeParams:       decl.TypeParams,
		ReceiverType:     decl.ReceiverType,
		ReturnType:       decl.ReturnType,
		ReifiedTypeNames: decl.ReifiedTypeNames,
	}
	for _, p := range decl.Params {
		fn.Params = append(fn.Params, lowerParam(ctx, p))
	}
	if decl.Body != nil {
		fn.Body = lowerBlock(ctx, decl.Body)
	} else if decl.ExprBody != nil {
		e := lowerExpr(ctx, decl.ExprBody)
		fn.Body = &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: e, P: decl.ExprBody.Pos()}}}
	}
	return fn
}

func lowerParam(ctx *Context, p *ast.ParameterDecl) *Param {
	param := &Param{Name: p.Name, Type: p.Type, Vararg: p.Vararg}
	if p.Default != nil {
		param.Default = lowerExpr(ctx, p.Default)
	}
	return param
}

func lowerField(ctx *Context, p *ast.PropertyDecl) *Field {
	f := &Field{
		Name:         p.Name,
		Mutable:      p.Mutable,
		Type:         p.Type,
		ReceiverType: p.ReceiverType,
		Modifiers:    p.Modifiers,
		SetterParam:  p.SetterParamName,
	}
	if p.Initializer != nil {
		f.Initializer = lowerExpr(ctx, p.Initializer)
	}
	if p.GetterBody != nil {
		f.GetterBody = lowerBlock(ctx, p.GetterBody)
	}
	if p.SetterBody != nil {
		f.SetterBody = lowerBlock(ctx, p.SetterBody)
	}
	return f
}

// lowerEnumEntries lowers each entry's constructor-call args and any
// per-entry member bodies (anonymous enum-entry class bodies).
func lowerEnumEntries(ctx *Context, entries []*ast.EnumEntryDecl) []*ast.EnumEntryDecl {
	out := make([]*ast.EnumEntryDecl, 0, len(entries))
	for _, e := range entries {
		lowered := &ast.EnumEntryDecl{Name: e.Name, P: e.P}
		for _, a := range e.Args {
			lowered.Args = append(lowered.Args, lowerExpr(ctx, a))
		}
		for _, member := range e.Body {
			switch m := member.(type) {
			case *ast.FunctionDecl:
				fn := *m
				if m.Body != nil {
					fn.Body = lowerBlock(ctx, m.Body)
				}
				lowered.Body = append(lowered.Body, &fn)
			case *ast.PropertyDecl:
				pd := *m
				if m.Initializer != nil {
					pd.Initializer = lowerExpr(ctx, m.Initializer)
				}
				lowered.Body = append(lowered.Body, &pd)
			default:
				lowered.Body = append(lowered.Body, member)
			}
		}
		out = append(out, lowered)
	}
	return out
}

