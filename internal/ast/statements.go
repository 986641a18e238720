package ast

import "github.com/novalang/novac/internal/source"

func (*BlockStmt) StmtNode()      {}
func (*ExpressionStmt) StmtNode() {}
func (*DeclStmt) StmtNode()       {}
func (*IfStmt) StmtNode()         {}
func (*WhenStmt) StmtNode()       {}
func (*ForStmt) StmtNode()        {}
func (*WhileStmt) StmtNode()      {}
func (*DoWhileStmt) StmtNode()    {}
func (*TryStmt) StmtNode()        {}
func (*ReturnStmt) StmtNode()     {}
func (*BreakStmt) StmtNode()      {}
func (*ContinueStmt) StmtNode()   {}
func (*ThrowStmt) StmtNode()      {}
func (*GuardStmt) StmtNode()      {}
func (*UseStmt) StmtNode()        {}

// BlockStmt is `{ stmt... }`.
type BlockStmt struct {
	Statements []Statement
	P          source.Position
}

func (s *BlockStmt) Pos() source.Position { return s.P }
func (s *BlockStmt) String() string       { return "{...}" }

// ExpressionStmt wraps an expression used for its side effect.
type ExpressionStmt struct {
	Expr Expression
	P    source.Position
}

func (s *ExpressionStmt) Pos() source.Position { return s.P }
func (s *ExpressionStmt) String() string       { return s.Expr.String() }

// DeclStmt wraps a declaration (val/var/destructuring/nested class or
// function) appearing in statement position.
type DeclStmt struct {
	Decl Declaration
	P    source.Position
}

func (s *DeclStmt) Pos() source.Position { return s.P }
func (s *DeclStmt) String() string       { return s.Decl.String() }

// IfStmt is `if (cond) Then [else Else]`. LetBindingName is non-empty for
// the `if (val x = e) ...` surface form (spec.md §4.1 desugaring
// table); HIR lowering eliminates it.
type IfStmt struct {
	LetBindingName string
	LetMutable     bool
	Cond           Expression
	Then           Statement
	Else           Statement
	P              source.Position
}

func (s *IfStmt) Pos() source.Position { return s.P }
func (s *IfStmt) String() string       { return "if" }

// WhenBranch is one arm of a `when` statement/expression.
type WhenBranch struct {
	// Exactly one of Values (equality test), TypeTest, RangeTest, or
	// Else is set.
	Values    []Expression
	TypeTest  TypeRef
	RangeTest Expression // a RangeExpr; membership test "in r"
	NotIn     bool
	Else      bool
	Body      Statement
	BodyExpr  Expression // set when When is used as an expression
}

// WhenStmt is Nova's multi-way branch (spec.md §4.1 desugaring table).
type WhenStmt struct {
	SubjectName string // synthesized binding name for the subject, if any
	Subject     Expression
	Branches    []*WhenBranch
	P           source.Position
}

func (s *WhenStmt) Pos() source.Position { return s.P }
func (s *WhenStmt) String() string       { return "when" }

// ForStmt is `for (x in iterable) Body`.
type ForStmt struct {
	VarName  string
	Iterable Expression
	Body     Statement
	P        source.Position
}

func (s *ForStmt) Pos() source.Position { return s.P }
func (s *ForStmt) String() string       { return "for" }

// WhileStmt is `while (cond) Body`.
type WhileStmt struct {
	Cond Expression
	Body Statement
	P    source.Position
}

func (s *WhileStmt) Pos() source.Position { return s.P }
func (s *WhileStmt) String() string       { return "while" }

// DoWhileStmt is `do Body while (cond)`.
type DoWhileStmt struct {
	Body Statement
	Cond Expression
	P    source.Position
}

func (s *DoWhileStmt) Pos() source.Position { return s.P }
func (s *DoWhileStmt) String() string       { return "do-while" }

// CatchClause is one `catch (name: Type) Body` arm.
type CatchClause struct {
	ParamName string
	ParamType TypeRef
	Body      *BlockStmt
}

// TryStmt is `try Body catch(...)... [finally Finally]`.
type TryStmt struct {
	Body    *BlockStmt
	Catches []*CatchClause
	Finally *BlockStmt
	P       source.Position
}

func (s *TryStmt) Pos() source.Position { return s.P }
func (s *TryStmt) String() string       { return "try" }

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Value Expression // nil for bare `return`
	P     source.Position
}

func (s *ReturnStmt) Pos() source.Position { return s.P }
func (s *ReturnStmt) String() string       { return "return" }

// BreakStmt is `break`.
type BreakStmt struct{ P source.Position }

func (s *BreakStmt) Pos() source.Position { return s.P }
func (s *BreakStmt) String() string       { return "break" }

// ContinueStmt is `continue`.
type ContinueStmt struct{ P source.Position }

func (s *ContinueStmt) Pos() source.Position { return s.P }
func (s *ContinueStmt) String() string       { return "continue" }

// ThrowStmt is `throw expr`.
type ThrowStmt struct {
	Value Expression
	P     source.Position
}

func (s *ThrowStmt) Pos() source.Position { return s.P }
func (s *ThrowStmt) String() string       { return "throw" }

// GuardStmt is `guard val x = e else ElseBody` (spec.md §4.1); ElseBody
// must be jump-like (return/break/continue/throw), enforced by the
// semantic analyzer, not by this node.
type GuardStmt struct {
	Name        string
	Mutable     bool
	Initializer Expression
	ElseBody    Statement
	P           source.Position
}

func (s *GuardStmt) Pos() source.Position { return s.P }
func (s *GuardStmt) String() string       { return "guard" }

// UseBinding is one `val r = e` clause inside a `use(...)` header.
type UseBinding struct {
	Name        string
	Initializer Expression
}

// UseStmt is `use(val r = e, ...) Body`, lowered to nested
// try/finally-close blocks (spec.md §4.1).
type UseStmt struct {
	Bindings []*UseBinding
	Body     *BlockStmt
	P        source.Position
}

func (s *UseStmt) Pos() source.Position { return s.P }
func (s *UseStmt) String() string       { return "use" }
