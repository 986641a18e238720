package semantic

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/source"
)

// Diagnostic is one semantic finding: location-bearing and
// severity-graded per spec §7's second error kind.
type Diagnostic struct {
	Pos      source.Position
	Message  string
	Severity errors.Severity
}

// Analyzer walks a parsed Program building a symbol table and a
// diagnostics list. It also holds a per-expression type map that
// TypeOf reads; Analyze records no entries in it, so TypeOf reports
// no type for any expression. internal/index drives this directly.
type Analyzer struct {
	prog    *ast.Program
	Globals *SymbolTable
	types   map[ast.Expression]string
	diags   []Diagnostic
}

// New creates an Analyzer over a parsed Program.
func New(prog *ast.Program) *Analyzer {
	return &Analyzer{
		prog:    prog,
		Globals: NewSymbolTable(),
		types:   make(map[ast.Expression]string),
	}
}

// Diagnostics returns every diagnostic recorded by Analyze.
func (a *Analyzer) Diagnostics() []Diagnostic { return a.diags }

// TypeOf returns the declared type name recorded for expr, if any.
func (a *Analyzer) TypeOf(expr ast.Expression) (string, bool) {
	t, ok := a.types[expr]
	return t, ok
}

func (a *Analyzer) errorAt(pos source.Position, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...), Severity: errors.SeverityError})
}

func (a *Analyzer) warnAt(pos source.Position, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...), Severity: errors.SeverityWarning})
}

// Analyze runs the full pass: a forward-declaration sweep over
// top-level classes/functions/vals so mutually-recursive references
// resolve, then a scoped recursive walk doing the checks spec.md §4.4
// names for zero-parse-error documents: method-call arity, val
// reassignment, const-val constraints, and Array<T>(...) constructor
// arity. Whether a member exists on a receiver is not checked.
func (a *Analyzer) Analyze() {
	a.declareTopLevel()
	for _, d := range a.prog.Declarations {
		a.walkDecl(d, a.Globals)
	}
}

func (a *Analyzer) declareTopLevel() {
	for _, d := range a.prog.Declarations {
		switch decl := d.(type) {
		case *ast.ClassDecl:
			a.Globals.DefineClass(decl.Name, decl)
		case *ast.FunctionDecl:
			a.Globals.DefineFunction(decl.Name, decl)
		case *ast.PropertyDecl:
			a.declareProperty(decl, a.Globals)
		}
	}
}

func (a *Analyzer) declareProperty(p *ast.PropertyDecl, scope *SymbolTable) {
	isConst := hasModifier(p.Modifiers, "const")
	if isConst {
		if p.Mutable {
			a.errorAt(p.P, "const declaration %q must be val, not var", p.Name)
		}
		if p.Initializer == nil {
			a.errorAt(p.P, "const val %q must have an initializer", p.Name)
			scope.DefineReadOnly(p.Name, p.Type, p)
			return
		}
		val, ok := a.evalConst(p.Initializer, scope)
		if !ok {
			a.errorAt(p.Initializer.Pos(), "initializer for const val %q is not a compile-time constant", p.Name)
			scope.DefineReadOnly(p.Name, p.Type, p)
			return
		}
		scope.DefineConst(p.Name, p.Type, val, p)
		return
	}
	if p.Mutable {
		scope.Define(p.Name, p.Type, p)
	} else {
		scope.DefineReadOnly(p.Name, p.Type, p)
	}
}

func hasModifier(mods []string, name string) bool {
	for _, m := range mods {
		if m == name {
			return true
		}
	}
	return false
}

// evalConst folds an initializer per spec.md §4.4's closed rule: a
// literal, a +/- of another constant, or a reference to a known const.
func (a *Analyzer) evalConst(e ast.Expression, scope *SymbolTable) (any, bool) {
	switch expr := e.(type) {
	case *ast.Literal:
		switch expr.Kind {
		case ast.LitInt:
			return expr.Int, true
		case ast.LitFloat:
			return expr.Flt, true
		case ast.LitString:
			return expr.Str, true
		case ast.LitBool:
			return expr.Bool, true
		case ast.LitChar:
			return expr.Chr, true
		}
		return nil, false
	case *ast.UnaryExpr:
		if expr.Op != ast.OpNeg {
			return nil, false
		}
		v, ok := a.evalConst(expr.Operand, scope)
		if !ok {
			return nil, false
		}
		return negate(v)
	case *ast.BinaryExpr:
		if expr.Op != ast.OpAdd && expr.Op != ast.OpSub {
			return nil, false
		}
		l, ok := a.evalConst(expr.Left, scope)
		if !ok {
			return nil, false
		}
		r, ok := a.evalConst(expr.Right, scope)
		if !ok {
			return nil, false
		}
		return foldArith(expr.Op, l, r)
	case *ast.Identifier:
		sym, ok := scope.Resolve(expr.Name)
		if !ok || !sym.IsConst {
			return nil, false
		}
		return sym.ConstValue, true
	}
	return nil, false
}

func negate(v any) (any, bool) {
	switch n := v.(type) {
	case int64:
		return -n, true
	case float64:
		return -n, true
	default:
		return nil, false
	}
}

func foldArith(op ast.BinaryOp, l, r any) (any, bool) {
	li, lIsInt := l.(int64)
	ri, rIsInt := r.(int64)
	if lIsInt && rIsInt {
		if op == ast.OpAdd {
			return li + ri, true
		}
		return li - ri, true
	}
	lf, lOk := toFloat(l)
	rf, rOk := toFloat(r)
	if lOk && rOk {
		if op == ast.OpAdd {
			return lf + rf, true
		}
		return lf - rf, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
