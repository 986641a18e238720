package emit

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/novalang/novac/internal/classfile"
	"github.com/novalang/novac/internal/hir"
	"github.com/novalang/novac/internal/mir"
	"github.com/novalang/novac/internal/parser"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// compileToClasses drives the real pipeline (parse -> HIR -> MIR ->
// emit) a source file goes through in cmd/novac/cmd/compile.go, so the
// golden tests below exercise emit.Emit itself rather than only its
// helper analyses.
func compileToClasses(t *testing.T, src string) map[string][]byte {
	t.Helper()
	prog, perrs, lerrs := parser.Parse("golden.nova", src)
	require.Empty(t, perrs)
	require.Empty(t, lerrs)
	mirMod := mir.Lower(hir.Lower(prog))
	classes, err := Emit(mirMod)
	require.NoError(t, err)
	return classes
}

// disassembleAll renders every emitted class in a deterministic,
// name-sorted order so the snapshot doesn't flap on map iteration.
func disassembleAll(t *testing.T, classes map[string][]byte) string {
	t.Helper()
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "=== %s ===\n", name)
		text, err := classfile.Disassemble(classes[name])
		require.NoError(t, err)
		b.WriteString(text)
	}
	return b.String()
}

// Scenario 1 (spec.md §8): a script-mode top-level `val` gets folded
// into a synthesized main, and int arithmetic never boxes.
func TestGoldenScriptModeSynthesizesMain(t *testing.T) {
	classes := compileToClasses(t, `
val x = 1 + 2
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}

// Scenario 2: a data class synthesizes equals/hashCode/toString/
// componentN/copy off its primary-constructor fields.
func TestGoldenDataClassMemberSynthesis(t *testing.T) {
	classes := compileToClasses(t, `
data class Point(val a: Int, val b: String)
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}

// Scenario 3: an enum synthesizes values()/toString() and
// one singleton-returning static field per entry.
func TestGoldenEnumSynthesizesValuesAndToString(t *testing.T) {
	classes := compileToClasses(t, `
enum Color {
	RED, GREEN, BLUE
}
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}

// Scenario 4: object declarations synthesize a single INSTANCE field
// assigned in <clinit> (singleton pattern).
func TestGoldenObjectSynthesizesSingletonInstance(t *testing.T) {
	classes := compileToClasses(t, `
object Registry {
	val size: Int = 0
}
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}

// Scenario 5 (spec.md §8 property #5, "fusion semantics"): a
// comparison feeding an if condition fuses straight into IF_ICMPxx
// with no boxed intermediate Boolean.
func TestGoldenIfComparisonFusesIntoBranch(t *testing.T) {
	classes := compileToClasses(t, `
fun classify(x: Int): Int {
	if (x < 10) {
		return 0
	} else {
		return 1
	}
}
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}

// Scenario 6 (spec.md §8 property #6, "switch semantics"): a when
// expression over a sealed set of branches lowers to an equals-chain,
// not a native JVM tableswitch/lookupswitch.
func TestGoldenWhenLowersToEqualsChain(t *testing.T) {
	classes := compileToClasses(t, `
fun describe(n: Int): String {
	when (n) {
		0 -> return "zero"
		1 -> return "one"
		else -> return "many"
	}
}
`)
	snaps.MatchSnapshot(t, disassembleAll(t, classes))
}
