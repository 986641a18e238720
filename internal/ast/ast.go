// Package ast defines Nova's Abstract Syntax Tree: the parser's
// output, one-to-one with source constructs, consumed by the HIR
// lowering pass (internal/hir) and read directly by the semantic
// index (internal/index) for editor queries.
//
// Every node is immutable once built and exposes its source Position;
// positions feed diagnostics and the expression-offset index but are
// never part of node equality.
package ast

import "github.com/novalang/novac/internal/source"

// Node is the capability every AST node exposes.
type Node interface {
	Pos() source.Position
	String() string
}

// Declaration is a top-level or member declaration.
type Declaration interface {
	Node
	DeclNode()
}

// Statement performs an action; it may or may not produce a value.
type Statement interface {
	Node
	StmtNode()
}

// Expression produces a value.
type Expression interface {
	Node
	ExprNode()
}

// TypeRef is a syntactic type reference (simple / nullable / generic /
// function), as opposed to a resolved semantic type.
type TypeRef interface {
	Node
	TypeRefNode()
}

// Visitor is the capability-dispatch interface every tree kind exposes
// (spec.md §9: "a fixed set of node kinds... a single visit capability").
// It returns `any` rather than a generic parameter: per spec.md §9 the
// visitor shape itself carries no semantic weight, so the simplest Go
// encoding — one method per node kind, `any` result — is preferred over
// a generic interface that would only add ceremony.
type Visitor interface {
	VisitProgram(*Program, any) any
	VisitPackageDecl(*PackageDecl, any) any
	VisitImportDecl(*ImportDecl, any) any
	VisitClassDecl(*ClassDecl, any) any
	VisitFunctionDecl(*FunctionDecl, any) any
	VisitConstructorDecl(*ConstructorDecl, any) any
	VisitInitBlock(*InitBlock, any) any
	VisitPropertyDecl(*PropertyDecl, any) any
	VisitParameterDecl(*ParameterDecl, any) any
	VisitTypeAliasDecl(*TypeAliasDecl, any) any
	VisitDestructuringDecl(*DestructuringDecl, any) any
	VisitEnumEntryDecl(*EnumEntryDecl, any) any

	VisitBlockStmt(*BlockStmt, any) any
	VisitExpressionStmt(*ExpressionStmt, any) any
	VisitDeclStmt(*DeclStmt, any) any
	VisitIfStmt(*IfStmt, any) any
	VisitWhenStmt(*WhenStmt, any) any
	VisitForStmt(*ForStmt, any) any
	VisitWhileStmt(*WhileStmt, any) any
	VisitDoWhileStmt(*DoWhileStmt, any) any
	VisitTryStmt(*TryStmt, any) any
	VisitReturnStmt(*ReturnStmt, any) any
	VisitBreakStmt(*BreakStmt, any) any
	VisitContinueStmt(*ContinueStmt, any) any
	VisitThrowStmt(*ThrowStmt, any) any
	VisitGuardStmt(*GuardStmt, any) any
	VisitUseStmt(*UseStmt, any) any

	VisitLiteral(*Literal, any) any
	VisitIdentifier(*Identifier, any) any
	VisitThisExpr(*ThisExpr, any) any
	VisitSuperExpr(*SuperExpr, any) any
	VisitBinaryExpr(*BinaryExpr, any) any
	VisitUnaryExpr(*UnaryExpr, any) any
	VisitCallExpr(*CallExpr, any) any
	VisitIndexExpr(*IndexExpr, any) any
	VisitMemberExpr(*MemberExpr, any) any
	VisitAssignExpr(*AssignExpr, any) any
	VisitLambdaExpr(*LambdaExpr, any) any
	VisitIfExpr(*IfExpr, any) any
	VisitWhenExpr(*WhenExpr, any) any
	VisitTryExpr(*TryExpr, any) any
	VisitAwaitExpr(*AwaitExpr, any) any
	VisitTypeCheckExpr(*TypeCheckExpr, any) any
	VisitTypeCastExpr(*TypeCastExpr, any) any
	VisitRangeExpr(*RangeExpr, any) any
	VisitSliceExpr(*SliceExpr, any) any
	VisitSpreadExpr(*SpreadExpr, any) any
	VisitPipelineExpr(*PipelineExpr, any) any
	VisitMethodRefExpr(*MethodRefExpr, any) any
	VisitObjectLiteralExpr(*ObjectLiteralExpr, any) any
	VisitCollectionLiteralExpr(*CollectionLiteralExpr, any) any
	VisitStringInterpolationExpr(*StringInterpolationExpr, any) any
	VisitPlaceholderExpr(*PlaceholderExpr, any) any
	VisitElvisExpr(*ElvisExpr, any) any
	VisitSafeCallExpr(*SafeCallExpr, any) any
	VisitSafeIndexExpr(*SafeIndexExpr, any) any
	VisitNotNullExpr(*NotNullExpr, any) any
	VisitErrorPropagationExpr(*ErrorPropagationExpr, any) any
	VisitScopeShorthandExpr(*ScopeShorthandExpr, any) any
	VisitJumpAsExpr(*JumpAsExpr, any) any
	VisitCompoundAssignExpr(*CompoundAssignExpr, any) any

	VisitSimpleType(*SimpleType, any) any
	VisitNullableType(*NullableType, any) any
	VisitGenericType(*GenericType, any) any
	VisitFunctionType(*FunctionType, any) any
}

// Program is the root node: a module's top-level declarations.
type Program struct {
	Package      *PackageDecl
	Imports      []*ImportDecl
	Declarations []Declaration
	P            source.Position
}

func (p *Program) Pos() source.Position { return p.P }
func (p *Program) String() string       { return "Program" }
