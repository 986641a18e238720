package classfile

import "bytes"

// VerifType is a StackMapTable verification_type_info tag plus the
// class-index payload Object variants need.
type VerifType struct {
	Tag   byte // VTTop, VTInteger, VTObject, ...
	Class string // internal class name, only meaningful when Tag == VTObject
}

// verification_type_info tags (JVM spec §4.7.4).
const (
	VTTop     = 0
	VTInteger = 1
	VTFloat   = 2
	VTDouble  = 3
	VTLong    = 4
	VTNull    = 5
	VTObject  = 7
)

// Object builds an Object verification type referencing internalName
// ("java/lang/Object" for the uniform-boxed representation's ordinary
// locals).
func Object(internalName string) VerifType { return VerifType{Tag: VTObject, Class: internalName} }

// Integer is the primitive-int verification type used for int-local
// promotion's steady-state slots.
var Integer = VerifType{Tag: VTInteger}

func (v VerifType) encode(cp *Pool, buf *bytes.Buffer) {
	buf.WriteByte(v.Tag)
	if v.Tag == VTObject {
		writeU2(buf, cp.Class(v.Class))
	}
}

// buildStackMapTable emits a StackMapTable attribute body (without the
// outer attribute name/length header) from a sequence of full_frame
// entries — one per block-start label other than the method entry.
// full_frame is the simplest legal encoding and is always valid
// regardless of the delta from the previous frame's locals/stack,
// which is what a hand-rolled "COMPUTE_FRAMES" substitute wants: MIR's
// per-local stable typing (§3 "each local has ... a single declared
// type") means the same locals-verification array is correct at every
// block boundary once any entry unboxing prologue has run, and the
// representation contract guarantees an empty operand stack at every
// block boundary (values are always stored to a local, or consumed by
// a terminator, before control crosses a block edge) — so no frame
// needs the peephole's fused-compare push to still be live.
func buildStackMapTable(cp *Pool, entries []frameEntry) []byte {
	buf := &bytes.Buffer{}
	writeU2(buf, uint16(len(entries)))
	prevOffset := -1
	for _, e := range entries {
		delta := e.offset - prevOffset - 1
		if prevOffset == -1 {
			delta = e.offset
		}
		prevOffset = e.offset
		buf.WriteByte(255) // full_frame
		writeU2(buf, uint16(delta))
		writeU2(buf, uint16(len(e.locals)))
		for _, l := range e.locals {
			l.encode(cp, buf)
		}
		writeU2(buf, 0) // empty operand stack at every block boundary
	}
	return buf.Bytes()
}

type frameEntry struct {
	offset int
	locals []VerifType
}
