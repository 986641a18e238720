package mir

import "github.com/novalang/novac/internal/ast"

// primitiveNames maps Nova's built-in scalar type names to their MIR
// primitive kind. Anything else resolves to an object type (nullable
// wrappers erase to the same underlying kind — MIR has no separate
// nullable tag, matching the representation contract's "every local
// occupies one reference slot unless promoted" rule).
var primitiveNames = map[string]Type{
	"Int":     TInt,
	"Long":    TLong,
	"Float":   TFloat,
	"Double":  TDouble,
	"Boolean": TBoolean,
	"Char":    TChar,
	"Unit":    TUnit,
	"Nothing": TNothing,
}

// FromTypeRef resolves a surface TypeRef to its MIR type. nil (an
// inferred/unit return) resolves to Unit.
func FromTypeRef(t ast.TypeRef) Type {
	if t == nil {
		return TUnit
	}
	switch tr := t.(type) {
	case *ast.SimpleType:
		if prim, ok := primitiveNames[tr.Name]; ok {
			return prim
		}
		return NamedObject(internalName(tr.Name))
	case *ast.NullableType:
		return FromTypeRef(tr.Inner)
	case *ast.GenericType:
		if tr.Name == "Array" && len(tr.Args) == 1 {
			return ArrayOf(FromTypeRef(tr.Args[0]))
		}
		return NamedObject(internalName(tr.Name))
	case *ast.FunctionType:
		return TObject
	default:
		return TObject
	}
}

// internalName converts a dotted surface name to a JVM internal name
// (slash-separated). Unqualified names are left bare; the emitter's
// pre-scan resolves them against the module's own class table.
func internalName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out[i] = '/'
		} else {
			out[i] = name[i]
		}
	}
	return string(out)
}

// FromClassKind maps ast.ClassKind to its MIR equivalent.
func FromClassKind(k ast.ClassKind) ClassKind {
	switch k {
	case ast.KindClass:
		return KindClassDecl
	case ast.KindInterface:
		return KindInterfaceDecl
	case ast.KindEnum:
		return KindEnumDecl
	case ast.KindObject:
		return KindObjectDecl
	case ast.KindAnnotation:
		return KindAnnotationDecl
	default:
		return KindClassDecl
	}
}
