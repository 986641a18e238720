package emit

import (
	"testing"

	"github.com/novalang/novac/internal/mir"
)

func TestDispatchKindNumericLadder(t *testing.T) {
	if got := dispatchKind(mir.TInt, mir.TInt); got != mir.KindInt {
		t.Errorf("int,int: got %v", got)
	}
	if got := dispatchKind(mir.TInt, mir.TLong); got != mir.KindLong {
		t.Errorf("int,long: got %v", got)
	}
	if got := dispatchKind(mir.TFloat, mir.TDouble); got != mir.KindDouble {
		t.Errorf("float,double: got %v", got)
	}
}

func TestDispatchKindObjectFallback(t *testing.T) {
	str := mir.NamedObject("java/lang/String")
	if got := dispatchKind(str, str); got != mir.KindObject {
		t.Errorf("two strings should dispatch as object, got %v", got)
	}
	if got := dispatchKind(mir.TInt, str); got != mir.KindObject {
		t.Errorf("mixed int/object should dispatch as object, got %v", got)
	}
}

func TestReverseOpSwapsOrderedComparisons(t *testing.T) {
	cases := map[mir.BinOp]mir.BinOp{
		mir.BinLt: mir.BinGt,
		mir.BinLe: mir.BinGe,
		mir.BinGt: mir.BinLt,
		mir.BinGe: mir.BinLe,
	}
	for in, want := range cases {
		if got := reverseOp(in); got != want {
			t.Errorf("reverseOp(%v): got %v, want %v", in, got, want)
		}
	}
}

func TestReverseOpLeavesEqNeSymmetric(t *testing.T) {
	if reverseOp(mir.BinEq) != mir.BinEq {
		t.Error("EQ must stay EQ")
	}
	if reverseOp(mir.BinNeq) != mir.BinNeq {
		t.Error("NEQ must stay NEQ")
	}
}

func TestDetectFusionElidesTrailingComparison(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "x", Type: mir.TInt},
			{Index: 1, Name: "cond", Type: mir.TBoolean},
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpBinary, Dest: 1, Operands: []int{0, 0}, Extra: mir.BinLt},
			},
			Term: mir.Terminator{Kind: mir.TermBranch, Cond: 1, Then: 1, Else: 2},
		}},
	}
	mb := &methodBuilder{fn: fn}
	instrs := fn.Blocks[0].Instructions
	trimmed, info := mb.detectFusion(fn.Blocks[0], instrs)

	if info == nil {
		t.Fatal("expected a fusion to be detected")
	}
	if len(trimmed) != 0 {
		t.Errorf("expected the comparison instruction to be trimmed, got %v", trimmed)
	}
	if info.op != mir.BinLt || info.left != 0 || info.right != 0 {
		t.Errorf("unexpected fusedInfo: %+v", info)
	}
}

func TestDetectFusionSkipsWhenConditionReadElsewhere(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "x", Type: mir.TInt},
			{Index: 1, Name: "cond", Type: mir.TBoolean},
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpBinary, Dest: 1, Operands: []int{0, 0}, Extra: mir.BinLt},
			},
			Term: mir.Terminator{Kind: mir.TermBranch, Cond: 1, Then: 1, Else: 2},
		}, {
			ID: 1,
			// cond is also read here (e.g. returned), so it can't be elided
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 1},
		}},
	}
	mb := &methodBuilder{fn: fn}
	instrs := fn.Blocks[0].Instructions
	_, info := mb.detectFusion(fn.Blocks[0], instrs)
	if info != nil {
		t.Error("expected no fusion when the condition local is read elsewhere")
	}
}

func TestDetectFusionNoneWithoutBranchTerminator(t *testing.T) {
	fn := &mir.Function{
		Blocks: []*mir.BasicBlock{{
			ID:   0,
			Term: mir.Terminator{Kind: mir.TermGoto, Target: 1},
		}},
	}
	mb := &methodBuilder{fn: fn}
	_, info := mb.detectFusion(fn.Blocks[0], nil)
	if info != nil {
		t.Error("expected no fusion for a non-branch terminator")
	}
}

func TestConstIntValueFindsLiteralProducer(t *testing.T) {
	fn := &mir.Function{
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpConstInt, Dest: 3, Extra: int64(42)},
			},
		}},
	}
	mb := &methodBuilder{fn: fn}
	v, ok := mb.constIntValue(3)
	if !ok || v != 42 {
		t.Errorf("got (%d, %v), want (42, true)", v, ok)
	}
	if _, ok := mb.constIntValue(99); ok {
		t.Error("expected no constant for an unproduced local")
	}
}
