// Package semantic implements the thin, contract-shaped analysis pass
// the editor backend (internal/index) drives: a symbol table, a
// per-expression type map (which Analyze leaves empty), and a
// diagnostics list. It does not attempt Nova type inference.
package semantic

import "github.com/novalang/novac/internal/ast"

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymFunc
	SymClass
	SymParam
)

// Symbol is a single named entity visible in some lexical scope.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Type       ast.TypeRef // declared type, nil if omitted/inferred
	ReadOnly   bool        // val vs var
	IsConst    bool        // const val
	ConstValue any         // compile-time constant value, nil unless IsConst
	Decl       ast.Node    // declaring node, for goto-definition
}

// SymbolTable is a chain of lexical scopes. Unlike the teacher's
// case-insensitive DWScript table, Nova is case-sensitive, so names are
// stored as-is.
type SymbolTable struct {
	symbols map[string]*Symbol
	outer   *SymbolTable
}

// NewSymbolTable creates a root (global) scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// NewEnclosedSymbolTable creates a child scope nested inside outer.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol), outer: outer}
}

// Define installs a mutable variable symbol in the current scope.
func (st *SymbolTable) Define(name string, typ ast.TypeRef, decl ast.Node) *Symbol {
	sym := &Symbol{Name: name, Kind: SymVar, Type: typ, Decl: decl}
	st.symbols[name] = sym
	return sym
}

// DefineReadOnly installs a val (non-reassignable) symbol.
func (st *SymbolTable) DefineReadOnly(name string, typ ast.TypeRef, decl ast.Node) *Symbol {
	sym := st.Define(name, typ, decl)
	sym.ReadOnly = true
	return sym
}

// DefineConst installs a const val symbol with its folded value.
func (st *SymbolTable) DefineConst(name string, typ ast.TypeRef, value any, decl ast.Node) *Symbol {
	sym := st.DefineReadOnly(name, typ, decl)
	sym.IsConst = true
	sym.ConstValue = value
	return sym
}

// DefineFunction installs a function/method symbol.
func (st *SymbolTable) DefineFunction(name string, decl ast.Node) *Symbol {
	sym := &Symbol{Name: name, Kind: SymFunc, ReadOnly: true, Decl: decl}
	st.symbols[name] = sym
	return sym
}

// DefineClass installs a class/interface/enum/object symbol.
func (st *SymbolTable) DefineClass(name string, decl ast.Node) *Symbol {
	sym := &Symbol{Name: name, Kind: SymClass, ReadOnly: true, Decl: decl}
	st.symbols[name] = sym
	return sym
}

// Resolve looks up name in this scope, then each enclosing scope.
func (st *SymbolTable) Resolve(name string) (*Symbol, bool) {
	if st == nil {
		return nil, false
	}
	if sym, ok := st.symbols[name]; ok {
		return sym, true
	}
	return st.outer.Resolve(name)
}

// ResolveLocal looks up name only in this exact scope, used by
// redeclaration checks that shouldn't see shadowed outer bindings.
func (st *SymbolTable) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}
