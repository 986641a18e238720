package classfile

import "testing"

func TestParseParamsSplitsMixedDescriptor(t *testing.T) {
	got := ParseParams("(ILjava/lang/String;[I)V")
	want := []string{"I", "Ljava/lang/String;", "[I"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseParamsEmptyArgList(t *testing.T) {
	if got := ParseParams("()V"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestParseParamsRejectsNonMethodDescriptor(t *testing.T) {
	if got := ParseParams("Ljava/lang/Object;"); got != nil {
		t.Errorf("expected nil for a bare field descriptor, got %v", got)
	}
}

func TestReturnType(t *testing.T) {
	cases := map[string]string{
		"()V":                                "V",
		"(I)Ljava/lang/Object;":              "Ljava/lang/Object;",
		"(Ljava/lang/Object;)[Ljava/lang/Object;": "[Ljava/lang/Object;",
	}
	for desc, want := range cases {
		if got := ReturnType(desc); got != want {
			t.Errorf("ReturnType(%q): got %q, want %q", desc, got, want)
		}
	}
}

func TestWordSize(t *testing.T) {
	if WordSize("J") != 2 || WordSize("D") != 2 {
		t.Error("long/double should be width 2")
	}
	if WordSize("I") != 1 || WordSize("Ljava/lang/Object;") != 1 || WordSize("") != 1 {
		t.Error("everything else should be width 1")
	}
}

func TestSortClassifiesFieldDescriptors(t *testing.T) {
	cases := map[string]byte{
		"I": 'I', "Z": 'I', "C": 'I', "B": 'I', "S": 'I',
		"J": 'J', "F": 'F', "D": 'D',
		"Ljava/lang/Object;": 'A', "[I": 'A', "": 'A',
	}
	for desc, want := range cases {
		if got := Sort(desc); got != want {
			t.Errorf("Sort(%q): got %c, want %c", desc, got, want)
		}
	}
}

func TestArgWordsSumsParameterWidths(t *testing.T) {
	if got := ArgWords("(IJLjava/lang/Object;D)V"); got != 1+2+1+2 {
		t.Errorf("got %d, want %d", got, 6)
	}
	if got := ArgWords("()V"); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestIsObjectDesc(t *testing.T) {
	if !IsObjectDesc("Ljava/lang/String;") {
		t.Error("expected true for an object descriptor")
	}
	if IsObjectDesc("[Ljava/lang/String;") || IsObjectDesc("I") || IsObjectDesc("") {
		t.Error("expected false for array/primitive/empty descriptors")
	}
}
