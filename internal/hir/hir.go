// Package hir implements Nova's desugared intermediate tree: the AST
// with every surface sugar form (when, guard, use, destructuring,
// safe-call, safe-index, elvis, pipeline, compound-assign, if-let,
// scope-shorthand, string-interpolation) rewritten away, ready for
// HIR→MIR lowering. Most expression/statement node kinds are reused
// directly from internal/ast for convenience, per the node-kind table
// this package's doc comments mirror; only the handful of forms that
// have no sugar-free AST equivalent get dedicated Hir* node types.
package hir

import "github.com/novalang/novac/internal/ast"

// Module is the root of a lowered compilation unit. Declarations are
// split by concrete kind rather than held behind one interface value:
// HIR's own Class/Function types don't implement ast.Declaration (they
// aren't AST nodes), and every later stage (§4.2/§4.3) dispatches on
// kind anyway, so a shared Node interface would buy nothing.
type Module struct {
	Package     *ast.PackageDecl
	Imports     []*ast.ImportDecl
	Classes     []*Class
	Functions   []*Function
	TypeAliases []*ast.TypeAliasDecl
}

// Class mirrors ast.ClassDecl but with ordered instance initializers
// captured separately for the HIR→MIR stage, and companion members
// already hoisted in with a synthesized "static" modifier.
type Class struct {
	Kind         ast.ClassKind
	Name         string
	Modifiers    []string
	Annotations  []*ast.AnnotationRef
	TypeParams   []*ast.TypeParam
	Fields       []*Field
	Methods      []*Function
	Constructors []*Function // is-constructor flag set; name "<init>"
	SuperClass   ast.TypeRef
	SuperArgs    []ast.Expression
	Interfaces   []ast.TypeRef
	EnumEntries  []*ast.EnumEntryDecl
	NestedClasses []*Class

	// InstanceInitializers holds field initializers and init-block
	// bodies in source order, for threading into <init> by the next
	// lowering stage (HIR→MIR §4.2(e)).
	InstanceInitializers []InstanceInitializer
}

// InstanceInitializer is one source-order entry: either a field
// assignment (Field != nil) or a bare init-block body.
type InstanceInitializer struct {
	Field *Field
	Body  *ast.BlockStmt
}

// Function covers top-level functions, methods, and constructors
// (IsConstructor true, Name "<init>").
type Function struct {
	Name             string
	Modifiers        []string
	TypeParams       []*ast.TypeParam
	ReceiverType     ast.TypeRef
	Params           []*Param
	ReturnType       ast.TypeRef
	Body             *ast.BlockStmt
	IsConstructor    bool
	DelegatesThis    bool
	DelegationArgs   []ast.Expression
	ReifiedTypeNames []string
}

// Param is a lowered parameter; property-promoted constructor params
// have already produced a sibling Field by the time lowering finishes.
type Param struct {
	Name    string
	Type    ast.TypeRef
	Default ast.Expression
	Vararg  bool
}

// Field covers both declared properties and primary-constructor
// property params (which also appear as a Param on the owning <init>).
type Field struct {
	Name           string
	Mutable        bool
	Type           ast.TypeRef
	Initializer    ast.Expression
	GetterBody     *ast.BlockStmt
	SetterBody     *ast.BlockStmt
	SetterParam    string
	ReceiverType   ast.TypeRef // non-nil for extension properties
	Modifiers      []string
}

// TypeAlias and EnumEntry pass through unchanged; kept as aliases so
// callers can name them under the hir package.
type TypeAlias = ast.TypeAliasDecl
type EnumEntry = ast.EnumEntryDecl
type Annotation = ast.AnnotationRef
type Import = ast.ImportDecl
