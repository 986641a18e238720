package hir

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// BlockExpr sequences Statements then yields Result's value. The
// desugarings for `?:`, `?.`, `?[`, `obj?.{ }`, and pipeline-with-
// placeholder all read as "bind a temp, branch on it, yield a value"
// in §4.1's table, which has no AST expression shape — this node is
// the HIR-only block-as-expression that carries it.
type BlockExpr struct {
	Statements []ast.Statement
	Result     ast.Expression
	P          source.Position
}

func (b *BlockExpr) Pos() source.Position { return b.P }
func (b *BlockExpr) String() string       { return "HirBlockExpr" }
func (*BlockExpr) ExprNode()              {}
