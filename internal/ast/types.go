package ast

import (
	"strings"

	"github.com/novalang/novac/internal/source"
)

func (*SimpleType) TypeRefNode()   {}
func (*NullableType) TypeRefNode() {}
func (*GenericType) TypeRefNode()  {}
func (*FunctionType) TypeRefNode() {}

// SimpleType is a bare name, `Int`, `String`, `com.foo.Bar`.
type SimpleType struct {
	Name string
	P    source.Position
}

func (t *SimpleType) Pos() source.Position { return t.P }
func (t *SimpleType) String() string       { return t.Name }

// NullableType is `T?`.
type NullableType struct {
	Inner TypeRef
	P     source.Position
}

func (t *NullableType) Pos() source.Position { return t.P }
func (t *NullableType) String() string       { return t.Inner.String() + "?" }

// GenericType is `Name<Arg, ...>`.
type GenericType struct {
	Name string
	Args []TypeRef
	P    source.Position
}

func (t *GenericType) Pos() source.Position { return t.P }
func (t *GenericType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// FunctionType is `(Param, ...) -> Return`.
type FunctionType struct {
	Params []TypeRef
	Return TypeRef
	P      source.Position
}

func (t *FunctionType) Pos() source.Position { return t.P }
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	ret := "Unit"
	if t.Return != nil {
		ret = t.Return.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + ret
}
