package ast

// Walk dispatches n to the matching Visitor method via a single type
// switch rather than a per-node Accept method. spec.md §9 calls the
// per-node-Accept shape "an accidental shape of the source" and
// recommends a tagged-variant match instead; Walk is that match.
// HIR lowering and the editor's semantic tokens / inlay-hint /
// folding-range walks do not call Walk: they use Children or their
// own type switches.
//
// Walk returns nil for a node kind with no declared visitor case
// (e.g. an unknown or synthesized node slipping through); callers that
// need to distinguish "visited, returned nil" from "not a known kind"
// should check the type switch themselves.
func Walk(v Visitor, n Node, ctx any) any {
	switch node := n.(type) {
	case *Program:
		return v.VisitProgram(node, ctx)
	case *PackageDecl:
		return v.VisitPackageDecl(node, ctx)
	case *ImportDecl:
		return v.VisitImportDecl(node, ctx)
	case *ClassDecl:
		return v.VisitClassDecl(node, ctx)
	case *FunctionDecl:
		return v.VisitFunctionDecl(node, ctx)
	case *ConstructorDecl:
		return v.VisitConstructorDecl(node, ctx)
	case *InitBlock:
		return v.VisitInitBlock(node, ctx)
	case *PropertyDecl:
		return v.VisitPropertyDecl(node, ctx)
	case *ParameterDecl:
		return v.VisitParameterDecl(node, ctx)
	case *TypeAliasDecl:
		return v.VisitTypeAliasDecl(node, ctx)
	case *DestructuringDecl:
		return v.VisitDestructuringDecl(node, ctx)
	case *EnumEntryDecl:
		return v.VisitEnumEntryDecl(node, ctx)

	case *BlockStmt:
		return v.VisitBlockStmt(node, ctx)
	case *ExpressionStmt:
		return v.VisitExpressionStmt(node, ctx)
	case *DeclStmt:
		return v.VisitDeclStmt(node, ctx)
	case *IfStmt:
		return v.VisitIfStmt(node, ctx)
	case *WhenStmt:
		return v.VisitWhenStmt(node, ctx)
	case *ForStmt:
		return v.VisitForStmt(node, ctx)
	case *WhileStmt:
		return v.VisitWhileStmt(node, ctx)
	case *DoWhileStmt:
		return v.VisitDoWhileStmt(node, ctx)
	case *TryStmt:
		return v.VisitTryStmt(node, ctx)
	case *ReturnStmt:
		return v.VisitReturnStmt(node, ctx)
	case *BreakStmt:
		return v.VisitBreakStmt(node, ctx)
	case *ContinueStmt:
		return v.VisitContinueStmt(node, ctx)
	case *ThrowStmt:
		return v.VisitThrowStmt(node, ctx)
	case *GuardStmt:
		return v.VisitGuardStmt(node, ctx)
	case *UseStmt:
		return v.VisitUseStmt(node, ctx)

	case *Literal:
		return v.VisitLiteral(node, ctx)
	case *Identifier:
		return v.VisitIdentifier(node, ctx)
	case *ThisExpr:
		return v.VisitThisExpr(node, ctx)
	case *SuperExpr:
		return v.VisitSuperExpr(node, ctx)
	case *BinaryExpr:
		return v.VisitBinaryExpr(node, ctx)
	case *UnaryExpr:
		return v.VisitUnaryExpr(node, ctx)
	case *CallExpr:
		return v.VisitCallExpr(node, ctx)
	case *IndexExpr:
		return v.VisitIndexExpr(node, ctx)
	case *MemberExpr:
		return v.VisitMemberExpr(node, ctx)
	case *AssignExpr:
		return v.VisitAssignExpr(node, ctx)
	case *CompoundAssignExpr:
		return v.VisitCompoundAssignExpr(node, ctx)
	case *LambdaExpr:
		return v.VisitLambdaExpr(node, ctx)
	case *IfExpr:
		return v.VisitIfExpr(node, ctx)
	case *WhenExpr:
		return v.VisitWhenExpr(node, ctx)
	case *TryExpr:
		return v.VisitTryExpr(node, ctx)
	case *AwaitExpr:
		return v.VisitAwaitExpr(node, ctx)
	case *TypeCheckExpr:
		return v.VisitTypeCheckExpr(node, ctx)
	case *TypeCastExpr:
		return v.VisitTypeCastExpr(node, ctx)
	case *RangeExpr:
		return v.VisitRangeExpr(node, ctx)
	case *SliceExpr:
		return v.VisitSliceExpr(node, ctx)
	case *SpreadExpr:
		return v.VisitSpreadExpr(node, ctx)
	case *PipelineExpr:
		return v.VisitPipelineExpr(node, ctx)
	case *MethodRefExpr:
		return v.VisitMethodRefExpr(node, ctx)
	case *ObjectLiteralExpr:
		return v.VisitObjectLiteralExpr(node, ctx)
	case *CollectionLiteralExpr:
		return v.VisitCollectionLiteralExpr(node, ctx)
	case *StringInterpolationExpr:
		return v.VisitStringInterpolationExpr(node, ctx)
	case *PlaceholderExpr:
		return v.VisitPlaceholderExpr(node, ctx)
	case *ElvisExpr:
		return v.VisitElvisExpr(node, ctx)
	case *SafeCallExpr:
		return v.VisitSafeCallExpr(node, ctx)
	case *SafeIndexExpr:
		return v.VisitSafeIndexExpr(node, ctx)
	case *NotNullExpr:
		return v.VisitNotNullExpr(node, ctx)
	case *ErrorPropagationExpr:
		return v.VisitErrorPropagationExpr(node, ctx)
	case *ScopeShorthandExpr:
		return v.VisitScopeShorthandExpr(node, ctx)
	case *JumpAsExpr:
		return v.VisitJumpAsExpr(node, ctx)

	case *SimpleType:
		return v.VisitSimpleType(node, ctx)
	case *NullableType:
		return v.VisitNullableType(node, ctx)
	case *GenericType:
		return v.VisitGenericType(node, ctx)
	case *FunctionType:
		return v.VisitFunctionType(node, ctx)
	}
	return nil
}

// Children returns the direct child nodes of n, used by the semantic
// index's expression-offset builder and by folding-range/semantic-
// token walks (spec.md §4.4) to recurse without every consumer
// reimplementing per-kind traversal.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch node := n.(type) {
	case *Program:
		if node.Package != nil {
			add(node.Package)
		}
		for _, i := range node.Imports {
			add(i)
		}
		for _, d := range node.Declarations {
			add(d)
		}
	case *ClassDecl:
		if node.PrimaryCtor != nil {
			add(node.PrimaryCtor)
		}
		for _, f := range node.Fields {
			add(f)
		}
		for _, m := range node.Methods {
			add(m)
		}
		for _, c := range node.Constructors {
			add(c)
		}
		for _, ib := range node.InitBlocks {
			add(ib)
		}
		for _, e := range node.EnumEntries {
			add(e)
		}
		for _, nc := range node.NestedClasses {
			add(nc)
		}
	case *FunctionDecl:
		for _, p := range node.Params {
			add(p)
		}
		if node.Body != nil {
			add(node.Body)
		}
		if node.ExprBody != nil {
			add(node.ExprBody)
		}
	case *ConstructorDecl:
		for _, p := range node.Params {
			add(p)
		}
		for _, a := range node.DelegationArgs {
			add(a)
		}
		if node.Body != nil {
			add(node.Body)
		}
	case *InitBlock:
		add(node.Body)
	case *PropertyDecl:
		if node.Initializer != nil {
			add(node.Initializer)
		}
		if node.GetterBody != nil {
			add(node.GetterBody)
		}
		if node.SetterBody != nil {
			add(node.SetterBody)
		}
	case *ParameterDecl:
		if node.Default != nil {
			add(node.Default)
		}
	case *EnumEntryDecl:
		for _, a := range node.Args {
			add(a)
		}
	case *BlockStmt:
		for _, s := range node.Statements {
			add(s)
		}
	case *ExpressionStmt:
		add(node.Expr)
	case *DeclStmt:
		add(node.Decl)
	case *IfStmt:
		add(node.Cond)
		add(node.Then)
		if node.Else != nil {
			add(node.Else)
		}
	case *WhenStmt:
		if node.Subject != nil {
			add(node.Subject)
		}
		for _, b := range node.Branches {
			addWhenBranchChildren(add, b)
		}
	case *ForStmt:
		add(node.Iterable)
		add(node.Body)
	case *WhileStmt:
		add(node.Cond)
		add(node.Body)
	case *DoWhileStmt:
		add(node.Body)
		add(node.Cond)
	case *TryStmt:
		add(node.Body)
		for _, c := range node.Catches {
			add(c.Body)
		}
		if node.Finally != nil {
			add(node.Finally)
		}
	case *ReturnStmt:
		if node.Value != nil {
			add(node.Value)
		}
	case *ThrowStmt:
		add(node.Value)
	case *GuardStmt:
		add(node.Initializer)
		add(node.ElseBody)
	case *UseStmt:
		for _, b := range node.Bindings {
			add(b.Initializer)
		}
		add(node.Body)
	case *BinaryExpr:
		add(node.Left)
		add(node.Right)
	case *UnaryExpr:
		add(node.Operand)
	case *CallExpr:
		add(node.Callee)
		for _, a := range node.Args {
			add(a)
		}
		for _, a := range node.NamedArgs {
			add(a)
		}
		if node.TrailingLambda != nil {
			add(node.TrailingLambda)
		}
	case *IndexExpr:
		add(node.Target)
		add(node.Index)
	case *MemberExpr:
		add(node.Target)
	case *AssignExpr:
		add(node.Target)
		add(node.Value)
	case *CompoundAssignExpr:
		add(node.Target)
		add(node.Value)
	case *LambdaExpr:
		for _, p := range node.Params {
			add(p)
		}
		if node.Body != nil {
			add(node.Body)
		}
		if node.Expr != nil {
			add(node.Expr)
		}
	case *IfExpr:
		add(node.Cond)
		add(node.Then)
		if node.Else != nil {
			add(node.Else)
		}
	case *WhenExpr:
		if node.Subject != nil {
			add(node.Subject)
		}
		for _, b := range node.Branches {
			addWhenBranchChildren(add, b)
		}
	case *TryExpr:
		add(node.Body)
		for _, c := range node.Catches {
			add(c.Body)
		}
		if node.Finally != nil {
			add(node.Finally)
		}
	case *AwaitExpr:
		add(node.Value)
	case *TypeCheckExpr:
		add(node.Value)
	case *TypeCastExpr:
		add(node.Value)
	case *RangeExpr:
		add(node.Start)
		add(node.End)
	case *SliceExpr:
		add(node.Target)
		add(node.Start)
		if node.End != nil {
			add(node.End)
		}
	case *SpreadExpr:
		add(node.Value)
	case *PipelineExpr:
		add(node.Left)
		add(node.Right)
	case *ObjectLiteralExpr:
		for _, a := range node.SuperArgs {
			add(a)
		}
		for _, f := range node.Fields {
			add(f)
		}
		for _, m := range node.Methods {
			add(m)
		}
	case *CollectionLiteralExpr:
		for _, e := range node.Elements {
			add(e)
		}
		for _, k := range node.Keys {
			add(k)
		}
		for _, v := range node.Values {
			add(v)
		}
	case *StringInterpolationExpr:
		for _, p := range node.Parts {
			if p.Expr != nil {
				add(p.Expr)
			}
		}
	case *ElvisExpr:
		add(node.Left)
		add(node.Right)
	case *SafeCallExpr:
		add(node.Target)
		for _, a := range node.Args {
			add(a)
		}
	case *SafeIndexExpr:
		add(node.Target)
		add(node.Index)
	case *NotNullExpr:
		add(node.Value)
	case *ErrorPropagationExpr:
		add(node.Value)
	case *ScopeShorthandExpr:
		add(node.Target)
		add(node.Body)
	case *JumpAsExpr:
		if node.Value != nil {
			add(node.Value)
		}
	}
	return out
}

func addWhenBranchChildren(add func(Node), b *WhenBranch) {
	for _, v := range b.Values {
		add(v)
	}
	if b.RangeTest != nil {
		add(b.RangeTest)
	}
	if b.Body != nil {
		add(b.Body)
	}
	if b.BodyExpr != nil {
		add(b.BodyExpr)
	}
}
