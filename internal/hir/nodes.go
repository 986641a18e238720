package hir

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// CollectionKind mirrors ast.CollectionLiteralKind for HIR collection
// literals (the AST node survives lowering except for its spread
// entries, which HirCollectionLiteral keeps track of the same way).
type CollectionKind = ast.CollectionLiteralKind

// Call is the lowered call form: the static/virtual/interface dispatch
// family is NOT decided here (that is a MIR-lowering concern), but
// named/spread/trailing-lambda argument
// sugar has been flattened into a single positional Args vector.
type Call struct {
	Callee   ast.Expression
	Args     []ast.Expression
	SpreadAt map[int]bool
	P        source.Position
}

func (c *Call) Pos() source.Position { return c.P }
func (c *Call) String() string       { return fmt.Sprintf("HirCall(%s)", exprString(c.Callee)) }
func (*Call) ExprNode()              {}

// Lambda is a lowered closure literal; unlike ast.LambdaExpr its body
// is always a block (expression-bodied lambdas get an implicit return
// wrapped in during lowering).
type Lambda struct {
	Params []*Param
	Body   *ast.BlockStmt
	P      source.Position
}

func (l *Lambda) Pos() source.Position { return l.P }
func (l *Lambda) String() string       { return "HirLambda" }
func (*Lambda) ExprNode()              {}

// CollectionLiteral lowers ast.CollectionLiteralExpr, keeping the
// element/key/value vectors and which positions were spread.
type CollectionLiteral struct {
	Kind     CollectionKind
	Elements []ast.Expression
	Keys     []ast.Expression
	Values   []ast.Expression
	SpreadAt map[int]bool
	P        source.Position
}

func (c *CollectionLiteral) Pos() source.Position { return c.P }
func (c *CollectionLiteral) String() string       { return "HirCollectionLiteral" }
func (*CollectionLiteral) ExprNode()              {}

// ObjectLiteral lowers an anonymous ast.ObjectLiteralExpr into a
// synthetic Class; the ObjectLiteral node itself stands for the
// instantiation (MIR lowering turns it into a NEW_OBJECT of that
// class). Synthetic holds the generated class so the enclosing
// lowering pass can splice it into the module's declaration list.
type ObjectLiteral struct {
	Synthetic *Class
	SuperArgs []ast.Expression
	P         source.Position
}

func (o *ObjectLiteral) Pos() source.Position { return o.P }
func (o *ObjectLiteral) String() string       { return "HirObjectLiteral" }
func (*ObjectLiteral) ExprNode()              {}

// New is an explicit constructor invocation of Type with Args. HIR
// lowering does not build one itself: a `T(args)` call stays a Call.
type New struct {
	Type ast.TypeRef
	Args []ast.Expression
	P    source.Position
}

func (n *New) Pos() source.Position { return n.P }
func (n *New) String() string       { return "HirNew" }
func (*New) ExprNode()              {}

// Loop unifies while/do-while: PostTest true means the condition is
// tested after Body (do-while), false means before (while).
type Loop struct {
	Cond     ast.Expression
	Body     ast.Statement
	PostTest bool
	P        source.Position
}

func (l *Loop) Pos() source.Position { return l.P }
func (l *Loop) String() string       { return "HirLoop" }
func (*Loop) StmtNode()              {}

// CatchClause is the lowered form of ast.CatchClause; identical shape,
// named separately so Try doesn't reach back into the ast package's
// sugar-bearing TryStmt/TryExpr types.
type CatchClause struct {
	ParamName string
	ParamType ast.TypeRef
	Body      *ast.BlockStmt
}

// Try lowers both ast.TryStmt and expression-form try (the latter
// rewritten per §4.1's `try`-as-expression rule before reaching here,
// so by the time a Try node exists it is always used as a statement).
type Try struct {
	Body    *ast.BlockStmt
	Catches []*CatchClause
	Finally *ast.BlockStmt
	P       source.Position
}

func (t *Try) Pos() source.Position { return t.P }
func (t *Try) String() string       { return "HirTry" }
func (*Try) StmtNode()              {}

// DeclStmt wraps a lowered Field reached in statement position (a
// local `val`/`var`), distinct from ast.DeclStmt; other local
// declarations (nested class/fun) stay as the original ast.DeclStmt.
type DeclStmt struct {
	Field *Field
	P     source.Position
}

func (d *DeclStmt) Pos() source.Position { return d.P }
func (d *DeclStmt) String() string       { return "HirDeclStmt" }
func (*DeclStmt) StmtNode()              {}

func exprString(e ast.Expression) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
