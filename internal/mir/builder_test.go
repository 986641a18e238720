package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilderStartsWithOneEntryBlock(t *testing.T) {
	b := NewBuilder()
	fn := b.Function()
	require.Len(t, fn.Blocks, 1)
	assert.Equal(t, fn.Blocks[0].ID, fn.Entry)
	assert.Same(t, fn.Blocks[0], b.Current())
}

func TestNewBlockAllocatesSequentialIDs(t *testing.T) {
	b := NewBuilder()
	b2 := b.NewBlock()
	b3 := b.NewBlock()
	assert.Equal(t, 1, b2.ID)
	assert.Equal(t, 2, b3.ID)
	assert.Len(t, b.Function().Blocks, 3)
}

func TestNewLocalAllocatesSequentialIndices(t *testing.T) {
	b := NewBuilder()
	i0 := b.NewLocal("this", TObject)
	i1 := b.NewLocal("x", TInt)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	require.Len(t, b.Function().Locals, 2)
	assert.Equal(t, "x", b.Function().Locals[1].Name)
	assert.Equal(t, TInt, b.Function().Locals[1].Type)
}

func TestEmitAppendsToCurrentBlock(t *testing.T) {
	b := NewBuilder()
	b.Emit(Instruction{Op: OpConstInt, Dest: 0, Extra: int64(1)})
	b.Emit(Instruction{Op: OpConstInt, Dest: 1, Extra: int64(2)})
	assert.Len(t, b.Current().Instructions, 2)
}

func TestSetCurrentRedirectsEmit(t *testing.T) {
	b := NewBuilder()
	entry := b.Current()
	blk2 := b.NewBlock()
	b.SetCurrent(blk2)
	b.Emit(Instruction{Op: OpConstInt})
	assert.Empty(t, entry.Instructions)
	assert.Len(t, blk2.Instructions, 1)
}

func TestTerminateMarksBlockTerminated(t *testing.T) {
	b := NewBuilder()
	b.Terminate(Terminator{Kind: TermReturn, ReturnLocal: NoDest})
	assert.True(t, b.Current().Terminated)
	assert.Equal(t, TermReturn, b.Current().Term.Kind)
}

func TestAddTryAppendsTableEntry(t *testing.T) {
	b := NewBuilder()
	b.AddTry(TryEntry{TryStart: 0, TryEnd: 1, Handler: 2, ExceptionType: "java/lang/Exception", ExceptionLocal: 3})
	require.Len(t, b.Function().TryTable, 1)
	assert.Equal(t, "java/lang/Exception", b.Function().TryTable[0].ExceptionType)
}
