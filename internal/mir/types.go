// Package mir implements Nova's mid-level IR: typed locals, basic
// blocks with a single terminator each, and an opcode set that maps
// close to JVM bytecode shapes without committing to stack-machine
// encoding yet. It is the input to internal/emit.
package mir

import "fmt"

// Kind is the closed tag set MIR types form (spec.md §3 "MIR types").
type Kind int

const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindChar
	KindUnit
	KindNothing
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "INT"
	case KindLong:
		return "LONG"
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindBoolean:
		return "BOOLEAN"
	case KindChar:
		return "CHAR"
	case KindUnit:
		return "UNIT"
	case KindNothing:
		return "NOTHING"
	case KindObject:
		return "OBJECT"
	case KindArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Type is a MIR value type: a primitive kind, an object (optionally
// naming its internal JVM class name), or an array of a component
// type. Each knows its own JVM field descriptor.
type Type struct {
	Kind      Kind
	ClassName string // internal name, e.g. "java/lang/String"; empty for a bare Object
	Elem      *Type  // non-nil when Kind == KindArray
}

var (
	TInt     = Type{Kind: KindInt}
	TLong    = Type{Kind: KindLong}
	TFloat   = Type{Kind: KindFloat}
	TDouble  = Type{Kind: KindDouble}
	TBoolean = Type{Kind: KindBoolean}
	TChar    = Type{Kind: KindChar}
	TUnit    = Type{Kind: KindUnit}
	TNothing = Type{Kind: KindNothing}
	TObject  = Type{Kind: KindObject}
)

// NamedObject builds an object type carrying an internal class name.
func NamedObject(internalName string) Type {
	return Type{Kind: KindObject, ClassName: internalName}
}

// ArrayOf builds an array type with the given component.
func ArrayOf(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// Descriptor returns the JVM field descriptor for t.
func (t Type) Descriptor() string {
	switch t.Kind {
	case KindInt:
		return "I"
	case KindLong:
		return "J"
	case KindFloat:
		return "F"
	case KindDouble:
		return "D"
	case KindBoolean:
		return "Z"
	case KindChar:
		return "C"
	case KindUnit:
		return "V"
	case KindNothing:
		return "Ljava/lang/Object;" // bottom type erased to Object; never instantiated
	case KindArray:
		if t.Elem == nil {
			return "[Ljava/lang/Object;"
		}
		return "[" + t.Elem.Descriptor()
	case KindObject:
		if t.ClassName == "" {
			return "Ljava/lang/Object;"
		}
		return "L" + t.ClassName + ";"
	default:
		return "Ljava/lang/Object;"
	}
}

// IsPrimitive reports whether t is one of the eight primitive kinds.
func (t Type) IsPrimitive() bool {
	switch t.Kind {
	case KindInt, KindLong, KindFloat, KindDouble, KindBoolean, KindChar:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	if t.Kind == KindObject && t.ClassName != "" {
		return t.ClassName
	}
	if t.Kind == KindArray && t.Elem != nil {
		return t.Elem.String() + "[]"
	}
	return t.Kind.String()
}

// Local is one typed slot in a function's local-variable space. Slot 0
// is `this` for instance methods/constructors.
type Local struct {
	Index int
	Name  string // empty for compiler-generated temporaries
	Type  Type
}

// OpCode enumerates MIR instruction opcodes (spec.md §3 "Instructions").
type OpCode int

const (
	OpConstInt OpCode = iota
	OpConstLong
	OpConstFloat
	OpConstDouble
	OpConstString
	OpConstBool
	OpConstChar
	OpConstNull
	OpConstClass
	OpMove
	OpBinary
	OpUnary
	OpNewObject
	OpNewArray
	OpGetField
	OpSetField
	OpGetStatic
	OpSetStatic
	OpInvokeVirtual
	OpInvokeStatic
	OpInvokeInterface
	OpTypeCheck
	OpTypeCast
	OpIndexGet
	OpIndexSet
)

func (o OpCode) String() string {
	names := [...]string{
		"CONST_INT", "CONST_LONG", "CONST_FLOAT", "CONST_DOUBLE", "CONST_STRING",
		"CONST_BOOL", "CONST_CHAR", "CONST_NULL", "CONST_CLASS", "MOVE", "BINARY",
		"UNARY", "NEW_OBJECT", "NEW_ARRAY", "GET_FIELD", "SET_FIELD", "GET_STATIC",
		"SET_STATIC", "INVOKE_VIRTUAL", "INVOKE_STATIC", "INVOKE_INTERFACE",
		"TYPE_CHECK", "TYPE_CAST", "INDEX_GET", "INDEX_SET",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "UNKNOWN"
}

// BinOp discriminates a BINARY instruction's operator.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinUshr
)

// IsComparison reports whether op yields a BOOLEAN result.
func (op BinOp) IsComparison() bool {
	switch op {
	case BinEq, BinNeq, BinLt, BinLe, BinGt, BinGe, BinAnd, BinOr:
		return true
	default:
		return false
	}
}

// UnOp discriminates a UNARY instruction's operator.
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
	UnBNot
)

// FieldRef names a field access target in `owner|name|desc` form, per
// §4.3's field/static-field-op convention; Desc is empty when not yet
// resolved by pre-scan (the emitter then falls back to Object).
type FieldRef struct {
	Owner string
	Name  string
	Desc  string
}

func (f FieldRef) String() string { return fmt.Sprintf("%s|%s|%s", f.Owner, f.Name, f.Desc) }

// MethodRef names an invocation target, same `owner|name|desc` shape.
type MethodRef struct {
	Owner string
	Name  string
	Desc  string
}

func (m MethodRef) String() string { return fmt.Sprintf("%s|%s|%s", m.Owner, m.Name, m.Desc) }

// Instruction is one MIR op: an opcode, optional destination local, an
// operand-local vector, and an opaque Extra payload whose concrete
// type depends on Op (constant value, FieldRef, MethodRef, type name,
// BinOp/UnOp, ...).
type Instruction struct {
	Op       OpCode
	Dest     int // local index, or -1 if the op has no destination
	Operands []int
	Extra    interface{}
}

// NoDest marks an Instruction with no destination local.
const NoDest = -1

// BasicBlock is an ordered instruction list plus exactly one
// terminator, identified by an integer id unique within its function.
type BasicBlock struct {
	ID           int
	Instructions []Instruction
	Term         Terminator
	Terminated   bool
}

// TermKind discriminates a Terminator's shape.
type TermKind int

const (
	TermGoto TermKind = iota
	TermBranch
	TermReturn
	TermThrow
	TermSwitch
	TermTailCall
	TermUnreachable
)

// FusedCompare carries a compare-branch-fusion annotation computed by
// an earlier peephole pass (or left nil for the emitter to fuse itself
// per §4.3.5): the BINARY instruction immediately preceding the branch
// whose destination is Cond, already known not to be read elsewhere.
type FusedCompare struct {
	Op         BinOp
	Left       int
	Right      int
	OperandType Type
}

// Terminator is a basic block's single control-flow exit.
type Terminator struct {
	Kind TermKind

	// TermGoto, TermTailCall
	Target int

	// TermBranch
	Cond        int
	Then        int
	Else        int
	Fused       *FusedCompare

	// TermReturn
	ReturnLocal int // -1 for a Unit return

	// TermThrow
	ThrowLocal int

	// TermSwitch
	SwitchKey     int
	SwitchCases   map[string]int // literal key's canonical string form -> block id
	SwitchDefault int
}

// TryEntry is one try/catch table row (spec.md §3 "a try/catch table").
type TryEntry struct {
	TryStart     int
	TryEnd       int
	Handler      int
	ExceptionType string // internal JVM class name, e.g. "java/lang/Exception"
	ExceptionLocal int
}

// Function is one MIR function: locals, basic blocks, and the
// try/catch table, plus the bits the emitter needs that don't fit
// cleanly in either (delegation/super-call argument locals, an
// explicit descriptor override).
type Function struct {
	Name          string
	OwnerClass    string // internal name of the enclosing class, "" for top-level
	IsStatic      bool
	IsConstructor bool
	Locals        []Local
	ParamCount    int // locals [0, ParamCount) are parameters; slot 0 is `this` for instance methods
	Blocks        []*BasicBlock
	Entry         int // id of the entry block
	TryTable      []TryEntry

	// DescriptorOverride, if non-empty, replaces the default
	// all-Object descriptor computed from Locals/ReturnType.
	DescriptorOverride string
	ReturnType         Type

	// DelegatesThis / SuperArgs mirror hir.Function's DelegatesThis /
	// DelegationArgs, translated into locals materialized just before
	// the INVOKESPECIAL (spec.md §4.2(c), §4.3 step 5).
	DelegatesThis bool
	DelegationArgLocals []int
	SuperArgLocals      []int
	SuperClass          string // internal name, "" defaults to java/lang/Object
}

// Block looks up a function's basic block by id, or nil if absent
// (the try/catch table may reference a block an optimization deleted;
// callers use the ok-pattern implicitly via a nil check).
func (f *Function) Block(id int) *BasicBlock {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// ClassKind mirrors ast.ClassKind for the module's MIR classes.
type ClassKind int

const (
	KindClassDecl ClassKind = iota
	KindInterfaceDecl
	KindEnumDecl
	KindObjectDecl
	KindAnnotationDecl
)

// AnnotationArg is one named argument of an annotation application.
type AnnotationArg struct {
	Name  string
	Value interface{}
}

// AnnotationRef is a resolved annotation application on a class.
type AnnotationRef struct {
	Name string
	Args []AnnotationArg
}

// FieldDef is one MIR class field.
type FieldDef struct {
	Name      string
	Type      Type
	IsStatic  bool
	IsFinal   bool
}

// EnumEntryDef is one enum constant: its field name and the argument
// locals/instructions materializing the entry's constructor call,
// threaded into <clinit> by the emitter.
type EnumEntryDef struct {
	Name string
	Ctor *Function // a synthetic zero-param function whose body computes and returns the constructed instance
}

// Class is one MIR class, interface, enum, object, or annotation.
type Class struct {
	Kind         ClassKind
	InternalName string // e.g. "com/example/Foo"
	SuperClass   string // internal name, "" defaults to java/lang/Object
	Interfaces   []string
	Modifiers    []string
	Annotations  []AnnotationRef
	Fields       []FieldDef
	Methods      []*Function
	Constructors []*Function
	EnumEntries  []EnumEntryDef
	NestedClasses []*Class
}

// Module is one compilation unit's worth of MIR classes, plus any
// top-level functions collected for $Module synthesis (spec.md §4.3
// "Top-level functions").
type Module struct {
	Classes         []*Class
	TopLevelFuncs   []*Function
	TopLevelClassName string // defaults to "$Module" when TopLevelFuncs is non-empty
}
