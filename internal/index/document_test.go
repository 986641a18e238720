package index

import "testing"

func TestOpenAnalyzesSynchronously(t *testing.T) {
	idx := New(nil)
	idx.Open("a.nova", "fun foo() {}\n")

	if idx.Version("a.nova") != 1 {
		t.Fatalf("expected version 1 after Open, got %d", idx.Version("a.nova"))
	}
	if _, ok := idx.Bundle("a.nova"); !ok {
		t.Fatal("expected a bundle to be ready synchronously after Open")
	}
}

func TestChangeInvalidatesBundleBeforeReanalysis(t *testing.T) {
	idx := New(nil)
	idx.Open("a.nova", "fun foo() {}\n")
	idx.Change("a.nova", "fun bar() {}\n")

	// The debounced timer hasn't fired yet: the stale bundle must
	// already be gone so in-flight queries never see it (spec.md §4.4
	// "Change" - "Invalidate the cached analysis immediately").
	if _, ok := idx.Bundle("a.nova"); ok {
		t.Error("expected the cached bundle to be cleared immediately on Change")
	}
	if idx.Version("a.nova") != 2 {
		t.Errorf("expected version 2 after one Change, got %d", idx.Version("a.nova"))
	}
	idx.cancelPending("a.nova")
}

func TestCloseDropsAllPerURIState(t *testing.T) {
	idx := New(nil)
	idx.Open("a.nova", "fun foo() {}\n")
	idx.Close("a.nova")

	if idx.Content("a.nova") != "" {
		t.Error("expected empty content after Close")
	}
	if _, ok := idx.Bundle("a.nova"); ok {
		t.Error("expected no bundle after Close")
	}
	if entries := idx.Project.Lookup("foo"); len(entries) != 0 {
		t.Errorf("expected Close to remove project-index entries, got %v", entries)
	}
}

func TestReanalyzeDropsStaleVersionCallback(t *testing.T) {
	idx := New(nil)
	idx.Open("a.nova", "fun foo() {}\n") // version 1

	idx.mu.Lock()
	idx.docs["a.nova"].Version = 3 // simulate two further edits already landed
	idx.mu.Unlock()

	// A late callback for version 2 (superseded by the version-3 edit
	// above) must not clobber the current bundle (spec.md §8 invariant
	// 8, "version monotonicity").
	before, _ := idx.Bundle("a.nova")
	idx.reanalyze("a.nova", 2)

	if idx.Version("a.nova") != 3 {
		t.Fatalf("test setup broke: version should still be 3, got %d", idx.Version("a.nova"))
	}
	if after, _ := idx.Bundle("a.nova"); after != before {
		t.Error("expected the stale-version callback not to replace the current bundle")
	}
}

func TestIncrementalEditMatchesFullReplacement(t *testing.T) {
	idx := New(nil)
	original := "fun add(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	idx.Open("a.nova", original)

	// Replace "add" with "sum" via an incremental edit...
	idx.ChangeIncremental("a.nova", 0, 4, 0, 7, "sum")
	gotIncremental := idx.Content("a.nova")

	// ...and compare against the equivalent full-text replacement
	// (spec.md §8 invariant 7, "incremental edit law").
	want := "fun sum(a: Int, b: Int): Int {\n\treturn a + b\n}\n"
	if gotIncremental != want {
		t.Errorf("incremental edit: got %q, want %q", gotIncremental, want)
	}
	idx.cancelPending("a.nova")
}
