package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorPrimitives(t *testing.T) {
	assert.Equal(t, "I", TInt.Descriptor())
	assert.Equal(t, "J", TLong.Descriptor())
	assert.Equal(t, "F", TFloat.Descriptor())
	assert.Equal(t, "D", TDouble.Descriptor())
	assert.Equal(t, "Z", TBoolean.Descriptor())
	assert.Equal(t, "C", TChar.Descriptor())
	assert.Equal(t, "V", TUnit.Descriptor())
}

func TestDescriptorObjectAndArray(t *testing.T) {
	assert.Equal(t, "Ljava/lang/Object;", TObject.Descriptor())
	named := NamedObject("java/lang/String")
	assert.Equal(t, "Ljava/lang/String;", named.Descriptor())

	arr := ArrayOf(TInt)
	assert.Equal(t, "[I", arr.Descriptor())

	nested := ArrayOf(ArrayOf(named))
	assert.Equal(t, "[[Ljava/lang/String;", nested.Descriptor())
}

func TestDescriptorNothingErasesToObject(t *testing.T) {
	assert.Equal(t, "Ljava/lang/Object;", TNothing.Descriptor())
}

func TestIsPrimitive(t *testing.T) {
	for _, p := range []Type{TInt, TLong, TFloat, TDouble, TBoolean, TChar} {
		assert.True(t, p.IsPrimitive(), "%s should be primitive", p)
	}
	for _, p := range []Type{TObject, NamedObject("java/lang/String"), ArrayOf(TInt), TUnit, TNothing} {
		assert.False(t, p.IsPrimitive(), "%s should not be primitive", p)
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "java/lang/String", NamedObject("java/lang/String").String())
	assert.Equal(t, "INT[]", ArrayOf(TInt).String())
	assert.Equal(t, "INT", TInt.String())
}

func TestBinOpIsComparison(t *testing.T) {
	comparisons := []BinOp{BinEq, BinNeq, BinLt, BinLe, BinGt, BinGe, BinAnd, BinOr}
	for _, op := range comparisons {
		assert.True(t, op.IsComparison())
	}
	arithmetic := []BinOp{BinAdd, BinSub, BinMul, BinDiv, BinMod, BinBitAnd, BinBitOr, BinBitXor, BinShl, BinShr, BinUshr}
	for _, op := range arithmetic {
		assert.False(t, op.IsComparison())
	}
}

func TestFunctionBlockLookup(t *testing.T) {
	fn := &Function{Blocks: []*BasicBlock{{ID: 0}, {ID: 1}, {ID: 2}}}
	assert.Same(t, fn.Blocks[1], fn.Block(1))
	assert.Nil(t, fn.Block(99), "a deleted block id should resolve to nil rather than panic")
}

func TestFieldRefAndMethodRefString(t *testing.T) {
	f := FieldRef{Owner: "com/example/Foo", Name: "bar", Desc: "I"}
	assert.Equal(t, "com/example/Foo|bar|I", f.String())
	m := MethodRef{Owner: "com/example/Foo", Name: "baz", Desc: "()V"}
	assert.Equal(t, "com/example/Foo|baz|()V", m.String())
}

func TestOpCodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "CONST_INT", OpConstInt.String())
	assert.Equal(t, "INDEX_SET", OpIndexSet.String())
	assert.Equal(t, "UNKNOWN", OpCode(999).String())
}
