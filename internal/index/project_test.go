package index

import (
	"strconv"
	"testing"

	"github.com/novalang/novac/internal/parser"
)

func TestProjectIndexUpdateAndLookup(t *testing.T) {
	prog, perrs, lerrs := parser.Parse("a.nova", "fun foo() {}\nclass Bar {}\n")
	if len(perrs) != 0 || len(lerrs) != 0 {
		t.Fatalf("unexpected errors: %v %v", perrs, lerrs)
	}
	pi := NewProjectIndex()
	pi.Update("a.nova", prog)

	entries := pi.Lookup("foo")
	if len(entries) != 1 || entries[0].URI != "a.nova" {
		t.Fatalf("got %v", entries)
	}
	if len(pi.Lookup("Bar")) != 1 {
		t.Error("expected Bar class entry")
	}
	if len(pi.Lookup("nonexistent")) != 0 {
		t.Error("expected no entries for an undeclared name")
	}
}

func TestProjectIndexUpdateReplacesPriorEntriesForSameURI(t *testing.T) {
	prog1, _, _ := parser.Parse("a.nova", "fun foo() {}\n")
	prog2, _, _ := parser.Parse("a.nova", "fun bar() {}\n")
	pi := NewProjectIndex()
	pi.Update("a.nova", prog1)
	pi.Update("a.nova", prog2)

	if len(pi.Lookup("foo")) != 0 {
		t.Error("expected the stale 'foo' entry to be gone after re-Update")
	}
	if len(pi.Lookup("bar")) != 1 {
		t.Error("expected the new 'bar' entry to be present")
	}
}

func TestProjectIndexRemoveURILeavesNoEntries(t *testing.T) {
	progA, _, _ := parser.Parse("a.nova", "fun shared() {}\n")
	progB, _, _ := parser.Parse("b.nova", "fun shared() {}\n")
	pi := NewProjectIndex()
	pi.Update("a.nova", progA)
	pi.Update("b.nova", progB)

	pi.RemoveURI("a.nova")

	entries := pi.Lookup("shared")
	for _, e := range entries {
		if e.URI == "a.nova" {
			t.Fatalf("found a removed URI's entry still reachable: %+v", e)
		}
	}
	if len(entries) != 1 || entries[0].URI != "b.nova" {
		t.Fatalf("expected only b.nova's entry to remain, got %v", entries)
	}
}

func TestProjectIndexSearchIsCaseInsensitiveSubstring(t *testing.T) {
	prog, _, _ := parser.Parse("a.nova", "fun calculateTotal() {}\n")
	pi := NewProjectIndex()
	pi.Update("a.nova", prog)

	if got := pi.Search("TOTAL"); len(got) != 1 {
		t.Errorf("expected a case-insensitive substring match, got %v", got)
	}
	if got := pi.Search("zzz"); len(got) != 0 {
		t.Errorf("expected no match for an unrelated query, got %v", got)
	}
}

func TestProjectIndexSearchCapsAt200(t *testing.T) {
	pi := NewProjectIndex()
	// Build one program with 250 distinct top-level functions, since
	// Update replaces a URI's entire entry set on each call.
	src := ""
	for i := 0; i < 250; i++ {
		src += "fun f" + strconv.Itoa(i) + "() {}\n"
	}
	prog, perrs, lerrs := parser.Parse("many.nova", src)
	if len(perrs) != 0 || len(lerrs) != 0 {
		t.Fatalf("unexpected errors: %v %v", perrs, lerrs)
	}
	pi.Update("many.nova", prog)

	got := pi.Search("f")
	if len(got) != 200 {
		t.Errorf("expected Search to cap at 200 hits, got %d", len(got))
	}
}

