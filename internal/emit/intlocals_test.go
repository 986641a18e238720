package emit

import (
	"testing"

	"github.com/novalang/novac/internal/mir"
)

func TestIntLocalsPromotesPlainIntArithmetic(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "x", Type: mir.TInt},
			{Index: 1, Name: "y", Type: mir.TInt},
		},
		ParamCount: 0,
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpConstInt, Dest: 0, Extra: int64(1)},
				{Op: mir.OpBinary, Dest: 1, Operands: []int{0, 0}, Extra: mir.BinAdd},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 1},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if !got[0] || !got[1] {
		t.Fatalf("expected both locals promoted, got %v", got)
	}
}

func TestIntLocalsDisqualifiesComparisonDestination(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "x", Type: mir.TInt},
			{Index: 1, Name: "cond", Type: mir.TInt}, // mis-declared as INT but fed by a comparison
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpConstInt, Dest: 0, Extra: int64(1)},
				{Op: mir.OpBinary, Dest: 1, Operands: []int{0, 0}, Extra: mir.BinLt},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 1},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if got[1] {
		t.Error("comparison destination must not be promoted (produces Boolean)")
	}
	if !got[0] {
		t.Error("unrelated int local should stay promoted")
	}
}

func TestIntLocalsDisqualifiesMoveFromNonIntSource(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "s", Type: mir.TObject},
			{Index: 1, Name: "x", Type: mir.TInt},
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpMove, Dest: 1, Operands: []int{0}},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 1},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if got[1] {
		t.Error("MOVE from a non-INT source must disqualify the destination")
	}
}

func TestIntLocalsDisqualifiesStringAdd(t *testing.T) {
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "x", Type: mir.TInt},
			{Index: 1, Name: "s", Type: mir.Type{Kind: mir.KindObject, ClassName: "java/lang/String"}},
			{Index: 2, Name: "r", Type: mir.TInt}, // mis-declared; destination of a dynamic string concat
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpBinary, Dest: 2, Operands: []int{0, 1}, Extra: mir.BinAdd},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 2},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if got[2] {
		t.Error("ADD with a string operand must disqualify the destination")
	}
}

func TestIntLocalsDemotesDelegatingConstructorParams(t *testing.T) {
	fn := &mir.Function{
		IsConstructor: true,
		DelegatesThis: true,
		ParamCount:    2,
		Locals: []mir.Local{
			{Index: 0, Name: "this", Type: mir.TObject},
			{Index: 1, Name: "a", Type: mir.TInt},
		},
		Blocks: []*mir.BasicBlock{{
			ID:   0,
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: mir.NoDest},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if got[1] {
		t.Error("a delegating constructor's parameters can't be unboxed at entry and must be demoted")
	}
}

func TestIntLocalsArrayLengthOnIntArrayStaysPromoted(t *testing.T) {
	arr := mir.ArrayOf(mir.TInt)
	fn := &mir.Function{
		Locals: []mir.Local{
			{Index: 0, Name: "arr", Type: arr},
			{Index: 1, Name: "n", Type: mir.TInt},
		},
		Blocks: []*mir.BasicBlock{{
			ID: 0,
			Instructions: []mir.Instruction{
				{Op: mir.OpGetField, Dest: 1, Operands: []int{0}, Extra: mir.FieldRef{Name: "length"}},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, ReturnLocal: 1},
		}},
	}
	scan := BuildPrescan(&mir.Module{})

	got := intLocals(fn, scan)
	if !got[1] {
		t.Error("reading .length off an int[] should keep the destination promoted")
	}
}
