package emit

import "github.com/novalang/novac/internal/mir"

// boxInfo names the wrapper class and unwrap/wrap method pair the
// uniform-boxed representation uses for one primitive kind.
type boxInfo struct {
	wrapper   string
	unwrapMth string
	unwrapDsc string
	valueOfDsc string
	sort      byte
}

var boxTable = map[mir.Kind]boxInfo{
	mir.KindInt:     {"java/lang/Integer", "intValue", "()I", "(I)Ljava/lang/Integer;", 'I'},
	mir.KindLong:    {"java/lang/Long", "longValue", "()J", "(J)Ljava/lang/Long;", 'J'},
	mir.KindFloat:   {"java/lang/Float", "floatValue", "()F", "(F)Ljava/lang/Float;", 'F'},
	mir.KindDouble:  {"java/lang/Double", "doubleValue", "()D", "(D)Ljava/lang/Double;", 'D'},
	mir.KindBoolean: {"java/lang/Boolean", "booleanValue", "()Z", "(Z)Ljava/lang/Boolean;", 'I'},
	mir.KindChar:    {"java/lang/Character", "charValue", "()C", "(C)Ljava/lang/Character;", 'I'},
}

// unboxFromSlot loads the Object-typed local at slot and leaves a primitive of
// kind on the operand stack. Numeric kinds CHECKCAST to
// java/lang/Number (so any numeric wrapper unboxes uniformly);
// Boolean/Character CHECKCAST to their own wrapper.
func (mb *methodBuilder) unboxFromSlot(slot int, kind mir.Kind) {
	mb.cb.Load('A', slot)
	mb.unboxTOS(kind)
}

// unboxTOS converts an Object already on the operand stack to a
// primitive of kind, in place.
func (mb *methodBuilder) unboxTOS(kind mir.Kind) {
	info, ok := boxTable[kind]
	if !ok {
		return
	}
	switch kind {
	case mir.KindInt, mir.KindLong, mir.KindFloat, mir.KindDouble:
		mb.cb.CheckCast("java/lang/Number")
		mb.cb.InvokeVirtual("java/lang/Number", info.unwrapMth, info.unwrapDsc)
	default:
		mb.cb.CheckCast(info.wrapper)
		mb.cb.InvokeVirtual(info.wrapper, info.unwrapMth, info.unwrapDsc)
	}
}

// boxTOS wraps a primitive of kind already on the operand stack into
// its Object box via a static valueOf.
func (mb *methodBuilder) boxTOS(kind mir.Kind) {
	info, ok := boxTable[kind]
	if !ok {
		return
	}
	mb.cb.InvokeStatic(info.wrapper, "valueOf", info.valueOfDsc)
}

// sortOf maps a MIR kind to the load/store/return family it needs on
// the JVM operand stack once unboxed ('I','J','F','D'); object/array
// kinds (and Unit/Nothing, erased to Object) use 'A'.
func sortOf(k mir.Kind) byte {
	switch k {
	case mir.KindInt, mir.KindBoolean, mir.KindChar:
		return 'I'
	case mir.KindLong:
		return 'J'
	case mir.KindFloat:
		return 'F'
	case mir.KindDouble:
		return 'D'
	default:
		return 'A'
	}
}

// numericRank orders the "DOUBLE > FLOAT > LONG > INT" ladder spec.md
// §4.3 "Arithmetic/logic binary" resolves a binary op's working kind
// from. Non-numeric kinds rank below INT (ties resolve to INT, which
// the caller overrides with the string/object special case).
func numericRank(k mir.Kind) int {
	switch k {
	case mir.KindDouble:
		return 4
	case mir.KindFloat:
		return 3
	case mir.KindLong:
		return 2
	case mir.KindInt, mir.KindChar, mir.KindBoolean:
		return 1
	default:
		return 0
	}
}

// resolveNumericKind picks the wider of two operand kinds per the
// ladder, defaulting to INT when both are non-numeric (the caller is
// expected to have already special-cased the string/object paths).
func resolveNumericKind(a, b mir.Kind) mir.Kind {
	ranks := map[mir.Kind]int{mir.KindDouble: 4, mir.KindFloat: 3, mir.KindLong: 2, mir.KindInt: 1}
	ra, oka := ranks[a]
	rb, okb := ranks[b]
	if !oka {
		ra = 1
	}
	if !okb {
		rb = 1
	}
	if ra >= rb {
		if oka {
			return a
		}
		return mir.KindInt
	}
	if okb {
		return b
	}
	return mir.KindInt
}
