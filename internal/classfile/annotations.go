package classfile

import "bytes"

// enumElement is one enum_const_value element_value: a type descriptor
// and constant name, e.g. ("Ljava/lang/annotation/RetentionPolicy;",
// "RUNTIME").
type enumElement struct {
	typeDesc string
	constant string
}

func writeEnumElementValue(buf *bytes.Buffer, cp *Pool, e enumElement) {
	buf.WriteByte('e')
	writeU2(buf, cp.Utf8(e.typeDesc))
	writeU2(buf, cp.Utf8(e.constant))
}

// BuildRetentionTargetAnnotations encodes the RuntimeVisibleAnnotations
// attribute body a generated `@interface` carries: `@Retention(RUNTIME)`
// plus `@Target({TYPE, FIELD, METHOD})` (spec.md §4.3 "Class emission").
// elementTypes are the simple names of java.lang.annotation.ElementType
// constants (e.g. "TYPE", "FIELD", "METHOD").
func BuildRetentionTargetAnnotations(cp *Pool, elementTypes []string) []byte {
	buf := &bytes.Buffer{}
	writeU2(buf, 2) // num_annotations

	// @Retention(value = RUNTIME)
	writeU2(buf, cp.Utf8("Ljava/lang/annotation/Retention;"))
	writeU2(buf, 1) // num_element_value_pairs
	writeU2(buf, cp.Utf8("value"))
	writeEnumElementValue(buf, cp, enumElement{"Ljava/lang/annotation/RetentionPolicy;", "RUNTIME"})

	// @Target(value = {TYPE, FIELD, METHOD})
	writeU2(buf, cp.Utf8("Ljava/lang/annotation/Target;"))
	writeU2(buf, 1)
	writeU2(buf, cp.Utf8("value"))
	buf.WriteByte('[')
	writeU2(buf, uint16(len(elementTypes)))
	for _, et := range elementTypes {
		writeEnumElementValue(buf, cp, enumElement{"Ljava/lang/annotation/ElementType;", et})
	}

	return buf.Bytes()
}

// AddClassAnnotations attaches a RuntimeVisibleAnnotations attribute
// (already-encoded body, see BuildRetentionTargetAnnotations) to cw's
// whole-class attribute list.
func (cw *ClassWriter) AddClassAnnotations(body []byte) {
	cw.classAttrs = append(cw.classAttrs, attribute{name: cw.cp.Utf8("RuntimeVisibleAnnotations"), body: body})
}
