package hir

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// Context is the mutable state threaded through lowering: a monotonic
// counter for temp names, plus small constructors for the `val tmp = e`
// / `tmp` / `null` fragments every desugaring rule in §4.1 needs.
type Context struct {
	counter int

	// Synthetic collects classes generated mid-expression-lowering
	// (anonymous object literals) so Lower can splice them into the
	// module's class list once traversal finishes.
	Synthetic []*Class
}

// NewContext creates a fresh lowering context for one module.
func NewContext() *Context {
	return &Context{}
}

// FreshName returns a temp name guaranteed unique within this module;
// the `$` prefix can't collide with a surface identifier.
func (c *Context) FreshName() string {
	c.counter++
	return fmt.Sprintf("$t%d", c.counter)
}

// TempDecl builds the `val tmp = init` declaration statement and the
// Identifier expression that reads it back.
func (c *Context) TempDecl(init ast.Expression, pos source.Position) (*DeclStmt, *ast.Identifier) {
	name := c.FreshName()
	decl := &DeclStmt{
		Field: &Field{Name: name, Mutable: false, Type: nil, Initializer: init},
		P:     pos,
	}
	ref := &ast.Identifier{Name: name, P: pos}
	return decl, ref
}

// MutableTempDecl is TempDecl's `var` counterpart, used when the
// desugaring later reassigns the temp (try-as-expression).
func (c *Context) MutableTempDecl(init ast.Expression, pos source.Position) (*DeclStmt, *ast.Identifier) {
	name := c.FreshName()
	decl := &DeclStmt{
		Field: &Field{Name: name, Mutable: true, Type: nil, Initializer: init},
		P:     pos,
	}
	ref := &ast.Identifier{Name: name, P: pos}
	return decl, ref
}

// NullLiteral builds a synthetic `null` at pos.
func (c *Context) NullLiteral(pos source.Position) *ast.Literal {
	return &ast.Literal{Kind: ast.LitNull, P: pos}
}

// NotNull builds `ident != null`.
func (c *Context) NotNull(ident ast.Expression, pos source.Position) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: ast.OpNeq, Left: ident, Right: c.NullLiteral(pos), P: pos}
}

// IsNull builds `ident == null`.
func (c *Context) IsNull(ident ast.Expression, pos source.Position) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: ast.OpEq, Left: ident, Right: c.NullLiteral(pos), P: pos}
}
