package index

import (
	"strings"
	"testing"

	"github.com/novalang/novac/internal/parser"
)

func mustParse(t *testing.T, src string) *indexTestProgram {
	t.Helper()
	prog, perrs, lerrs := parser.Parse("t.nova", src)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	if len(lerrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lerrs)
	}
	return &indexTestProgram{src: src, ei: buildExprIndex(prog)}
}

type indexTestProgram struct {
	src string
	ei  *ExprIndex
}

func TestInnermostAtFindsSmallestCoveringExpression(t *testing.T) {
	src := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	p := mustParse(t, src)

	// offset inside the identifier "a" of the "a + b" expression
	off := strings.Index(src, "a + b")
	expr, ok := p.ei.InnermostAt(off)
	if !ok {
		t.Fatal("expected an expression to cover the offset")
	}
	if expr.Pos().Length >= len("a + b") {
		t.Errorf("expected the innermost identifier, got a %d-byte span: %q", expr.Pos().Length, expr.String())
	}
}

func TestInnermostAtReturnsBinaryExprForMiddleOffset(t *testing.T) {
	src := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	p := mustParse(t, src)

	off := strings.Index(src, "+")
	expr, ok := p.ei.InnermostAt(off)
	if !ok {
		t.Fatal("expected an expression to cover the '+' offset")
	}
	if off < expr.Pos().Offset || off >= expr.Pos().End() {
		t.Errorf("returned expression %q (span %d..%d) does not cover offset %d", expr.String(), expr.Pos().Offset, expr.Pos().End(), off)
	}
}

func TestInnermostAtOutOfRangeReturnsFalse(t *testing.T) {
	src := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	p := mustParse(t, src)

	_, ok := p.ei.InnermostAt(len(src) + 100)
	if ok {
		t.Error("expected no expression to cover an offset past the end of the file")
	}
}

func TestExactAtMatchesOffsetAndLength(t *testing.T) {
	src := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	p := mustParse(t, src)

	off := strings.Index(src, "a + b")
	expr, ok := p.ei.ExactAt(off, len("a + b"))
	if !ok {
		t.Fatal("expected an exact match for the full binary expression span")
	}
	if expr.Pos().Offset != off || expr.Pos().Length != len("a + b") {
		t.Errorf("got span (%d,%d), want (%d,%d)", expr.Pos().Offset, expr.Pos().Length, off, len("a + b"))
	}
}

func TestExactAtRejectsMismatchedLength(t *testing.T) {
	src := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	p := mustParse(t, src)

	off := strings.Index(src, "a + b")
	if _, ok := p.ei.ExactAt(off, 1); ok {
		t.Error("expected no match when the length doesn't correspond to any expression")
	}
}
