package ast

import "github.com/novalang/novac/internal/source"

func (*PackageDecl) DeclNode()       {}
func (*ImportDecl) DeclNode()        {}
func (*ClassDecl) DeclNode()         {}
func (*FunctionDecl) DeclNode()      {}
func (*ConstructorDecl) DeclNode()   {}
func (*InitBlock) DeclNode()         {}
func (*PropertyDecl) DeclNode()      {}
func (*ParameterDecl) DeclNode()     {}
func (*TypeAliasDecl) DeclNode()     {}
func (*DestructuringDecl) DeclNode() {}
func (*EnumEntryDecl) DeclNode()     {}

// PackageDecl is the `package a.b.c` header.
type PackageDecl struct {
	Name string
	P    source.Position
}

func (d *PackageDecl) Pos() source.Position { return d.P }
func (d *PackageDecl) String() string       { return "package " + d.Name }

// ImportDecl is a single `import` clause.
type ImportDecl struct {
	Qualified string
	Alias     string // "" if none
	Wildcard  bool
	Java      bool // imports a host JVM class rather than a Nova module
	Static    bool
	P         source.Position
}

func (d *ImportDecl) Pos() source.Position { return d.P }
func (d *ImportDecl) String() string       { return "import " + d.Qualified }

// ClassKind distinguishes the four annotation-directed class shapes
// spec.md §4.3 gives special emission rules for, plus the plain forms.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindObject
	KindAnnotation
)

// TypeParam is a declared generic type parameter.
type TypeParam struct {
	Name  string
	Bound TypeRef // nil if unbounded
}

// AnnotationRef is `@Name(arg1 = expr1, ...)` attached to a
// declaration. The well-known names `data` and `builder` drive
// synthetic-member generation in the emitter; any other name triggers
// the `NovaAnnotations.trigger` runtime hook.
type AnnotationRef struct {
	Name string
	Args map[string]Expression
	P    source.Position
}

// ClassDecl covers class / interface / enum / object / annotation
// declarations uniformly, matching HIR's class node (spec.md §3 HIR).
type ClassDecl struct {
	Kind          ClassKind
	Name          string
	Modifiers     []string
	Annotations   []*AnnotationRef
	TypeParams    []*TypeParam
	PrimaryCtor   *ConstructorDecl // nil if no primary constructor
	SuperClass    TypeRef
	SuperArgs     []Expression
	Interfaces    []TypeRef
	Fields        []*PropertyDecl
	Methods       []*FunctionDecl
	Constructors  []*ConstructorDecl
	InitBlocks    []*InitBlock
	EnumEntries   []*EnumEntryDecl
	NestedClasses []*ClassDecl // companion object members live here, kind==KindObject
	P             source.Position
}

func (d *ClassDecl) Pos() source.Position { return d.P }
func (d *ClassDecl) String() string       { return "class " + d.Name }

// FunctionDecl covers top-level functions, methods, and lambdas'
// named-declaration form.
type FunctionDecl struct {
	Name             string
	Modifiers        []string
	Annotations      []*AnnotationRef
	TypeParams       []*TypeParam
	ReceiverType     TypeRef // non-nil for extension functions/properties
	Params           []*ParameterDecl
	ReturnType       TypeRef // nil if inferred/unit
	Body             *BlockStmt
	ExprBody         Expression // non-nil for `fun f() = expr`
	ReifiedTypeNames []string
	P                source.Position
}

func (d *FunctionDecl) Pos() source.Position { return d.P }
func (d *FunctionDecl) String() string       { return "fun " + d.Name }

// ConstructorDecl is a secondary (or, via HIR, primary) constructor.
type ConstructorDecl struct {
	Params         []*ParameterDecl
	Body           *BlockStmt
	DelegatesThis  bool // `this(...)`
	DelegationArgs []Expression
	P              source.Position
}

func (d *ConstructorDecl) Pos() source.Position { return d.P }
func (d *ConstructorDecl) String() string       { return "constructor" }

// InitBlock is a bare `init { ... }` member.
type InitBlock struct {
	Body *BlockStmt
	P    source.Position
}

func (d *InitBlock) Pos() source.Position { return d.P }
func (d *InitBlock) String() string       { return "init" }

// PropertyDecl is a field/property: `val`/`var` with an optional
// initializer and custom accessor bodies.
type PropertyDecl struct {
	Name             string
	Mutable          bool // var vs val
	Type             TypeRef
	Initializer      Expression
	GetterBody       *BlockStmt
	SetterBody       *BlockStmt
	SetterParamName  string
	ReceiverType     TypeRef // non-nil for extension properties
	Modifiers        []string
	Annotations      []*AnnotationRef
	IsPrimaryCtorArg bool // promoted from a `val`/`var` constructor parameter
	P                source.Position
}

func (d *PropertyDecl) Pos() source.Position { return d.P }
func (d *PropertyDecl) String() string       { return "val " + d.Name }

// ParameterDecl is a function/constructor/lambda parameter.
type ParameterDecl struct {
	Name       string
	Type       TypeRef
	Default    Expression
	Vararg     bool
	PropertyOf bool // `val`/`var` prefix promotes this to a field too
	Mutable    bool
	P          source.Position
}

func (d *ParameterDecl) Pos() source.Position { return d.P }
func (d *ParameterDecl) String() string       { return d.Name }

// TypeAliasDecl is `typealias Name = Type`.
type TypeAliasDecl struct {
	Name string
	Type TypeRef
	P    source.Position
}

func (d *TypeAliasDecl) Pos() source.Position { return d.P }
func (d *TypeAliasDecl) String() string       { return "typealias " + d.Name }

// DestructuringDecl is the surface `val (a, b) = e` form; HIR lowering
// (internal/hir) eliminates it per spec.md §4.1's desugaring table.
type DestructuringDecl struct {
	Mutable     bool
	Names       []string // "_" marks a skipped component
	Initializer Expression
	P           source.Position
}

func (d *DestructuringDecl) Pos() source.Position { return d.P }
func (d *DestructuringDecl) String() string       { return "val (...)" }

// EnumEntryDecl is one `NAME(args)` member of an enum class.
type EnumEntryDecl struct {
	Name string
	Args []Expression
	Body []Declaration // entry-specific member overrides, rare but legal
	P    source.Position
}

func (d *EnumEntryDecl) Pos() source.Position { return d.P }
func (d *EnumEntryDecl) String() string       { return d.Name }
