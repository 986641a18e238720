package mir

import (
	"testing"

	"github.com/novalang/novac/internal/hir"
	"github.com/novalang/novac/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) *Module {
	t.Helper()
	prog, perrs, lerrs := parser.Parse("t.nova", src)
	require.Empty(t, perrs)
	require.Empty(t, lerrs)
	return Lower(hir.Lower(prog))
}

func findTopFunc(t *testing.T, mod *Module, name string) *Function {
	t.Helper()
	for _, fn := range mod.TopLevelFuncs {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("no top-level function %q in %+v", name, mod.TopLevelFuncs)
	return nil
}

func TestLowerStraightLineFunction(t *testing.T) {
	mod := lowerSource(t, `
fun add(a: Int, b: Int): Int {
	val c = a + b
	return c
}
`)
	fn := findTopFunc(t, mod, "add")
	require.NotEmpty(t, fn.Blocks)
	entry := fn.Block(fn.Entry)
	require.NotNil(t, entry)
	assert.True(t, entry.Terminated)
	assert.Equal(t, TermReturn, entry.Term.Kind)
	assert.NotEqual(t, NoDest, entry.Term.ReturnLocal)
}

func TestLowerIfStmtProducesThreeExtraBlocks(t *testing.T) {
	mod := lowerSource(t, `
fun classify(n: Int): Int {
	if (n > 0) {
		return 1
	} else {
		return 0
	}
}
`)
	fn := findTopFunc(t, mod, "classify")
	entry := fn.Block(fn.Entry)
	require.Equal(t, TermBranch, entry.Term.Kind)

	thenBlock := fn.Block(entry.Term.Then)
	elseBlock := fn.Block(entry.Term.Else)
	require.NotNil(t, thenBlock)
	require.NotNil(t, elseBlock)
	assert.Equal(t, TermReturn, thenBlock.Term.Kind)
	assert.Equal(t, TermReturn, elseBlock.Term.Kind)
}

func TestLowerWhileLoopBranchesBackToCond(t *testing.T) {
	mod := lowerSource(t, `
fun sumTo(n: Int): Int {
	var i = 0
	var total = 0
	while (i < n) {
		total += i
		i += 1
	}
	return total
}
`)
	fn := findTopFunc(t, mod, "sumTo")

	var condBlock *BasicBlock
	for _, b := range fn.Blocks {
		if b.Term.Kind == TermBranch {
			condBlock = b
			break
		}
	}
	require.NotNil(t, condBlock, "expected a branching block for the loop condition")

	bodyBlock := fn.Block(condBlock.Term.Then)
	require.NotNil(t, bodyBlock)
	// Walk gotos forward from the body until we either loop back to
	// condBlock or run out of gotos, confirming the loop actually
	// closes instead of falling through.
	seen := map[int]bool{}
	cur := bodyBlock
	found := false
	for cur != nil && !seen[cur.ID] {
		seen[cur.ID] = true
		if cur.Term.Kind == TermGoto {
			if cur.Term.Target == condBlock.ID {
				found = true
				break
			}
			cur = fn.Block(cur.Term.Target)
			continue
		}
		break
	}
	assert.True(t, found, "expected the loop body to eventually goto back to the condition block")
}

func TestLowerForStmtUsesIteratorProtocol(t *testing.T) {
	mod := lowerSource(t, `
fun run(items: List) {
	for (x in items) {
		consume(x)
	}
}
`)
	fn := findTopFunc(t, mod, "run")
	var sawIterator, sawHasNext, sawNext bool
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if mr, ok := inst.Extra.(MethodRef); ok {
				switch mr.Name {
				case "iterator":
					sawIterator = true
				case "hasNext":
					sawHasNext = true
				case "next":
					sawNext = true
				}
			}
		}
	}
	assert.True(t, sawIterator, "expected an .iterator() call")
	assert.True(t, sawHasNext, "expected a .hasNext() call")
	assert.True(t, sawNext, "expected a .next() call")
}

func TestLowerTryCatchRecordsTryTableEntry(t *testing.T) {
	mod := lowerSource(t, `
fun run() {
	try {
		risky()
	} catch (e: Exception) {
		handle(e)
	}
}
`)
	fn := findTopFunc(t, mod, "run")
	require.Len(t, fn.TryTable, 1)
	entry := fn.TryTable[0]
	assert.NotNil(t, fn.Block(entry.TryStart))
	assert.NotNil(t, fn.Block(entry.Handler))
}

func TestLowerBreakContinueTargetLoopBlocks(t *testing.T) {
	mod := lowerSource(t, `
fun run(n: Int) {
	while (n > 0) {
		if (n == 1) {
			break
		}
		continue
	}
}
`)
	fn := findTopFunc(t, mod, "run")
	// Every goto in the function must target a block id that actually
	// exists: a break/continue wired to a stale or out-of-range target
	// would otherwise pass silently until the emitter walks it.
	for _, b := range fn.Blocks {
		if b.Term.Kind == TermGoto {
			assert.NotNil(t, fn.Block(b.Term.Target), "goto target %d does not exist", b.Term.Target)
		}
	}
}
