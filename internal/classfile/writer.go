package classfile

import (
	"bytes"
	"fmt"
)

// Magic/version constants (spec.md §6 "version 1.8 (major 52)").
const (
	Magic       = 0xCAFEBABE
	MinorVer    = 0
	MajorVer52  = 52
)

type attribute struct {
	name uint16
	body []byte
}

func writeAttribute(buf *bytes.Buffer, a attribute) {
	writeU2(buf, a.name)
	writeU4(buf, uint32(len(a.body)))
	buf.Write(a.body)
}

// FieldInfo is one field_info entry.
type FieldInfo struct {
	Access     int
	Name       string
	Descriptor string
}

// MethodResult is a fully assembled method, ready to be appended to a
// ClassWriter.
type MethodResult struct {
	Access     int
	Name       string
	Descriptor string
	Code       []byte // nil for abstract/native methods (no Code attribute)
	MaxStack   int
	MaxLocals  int
	Exceptions []ResolvedException
	StackMap   []byte // StackMapTable attribute body, nil if no frames
}

// ClassWriter accumulates one JVM class's structure and serializes it.
type ClassWriter struct {
	cp         *Pool
	access     int
	thisClass  string
	superClass string
	interfaces []string
	fields     []FieldInfo
	methods    []MethodResult
	// classAttrs carries whole-class attributes, such as the
	// RuntimeVisibleAnnotations the emitter attaches through
	// AddClassAnnotations.
	classAttrs []attribute
}

// NewClassWriter starts a class with the given internal name,
// superclass (internal name, "java/lang/Object" if empty), and access
// flags.
func NewClassWriter(cp *Pool, access int, thisClass, superClass string) *ClassWriter {
	if superClass == "" {
		superClass = "java/lang/Object"
	}
	return &ClassWriter{cp: cp, access: access, thisClass: thisClass, superClass: superClass}
}

// Pool exposes the class's constant pool so callers can intern
// constants before method bodies reference them.
func (cw *ClassWriter) Pool() *Pool { return cw.cp }

func (cw *ClassWriter) AddInterface(internalName string) {
	cw.interfaces = append(cw.interfaces, internalName)
}

func (cw *ClassWriter) AddField(f FieldInfo) { cw.fields = append(cw.fields, f) }

func (cw *ClassWriter) AddMethod(m MethodResult) { cw.methods = append(cw.methods, m) }

// Bytes serializes the complete class file.
func (cw *ClassWriter) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	writeU4(buf, Magic)
	writeU2(buf, MinorVer)
	writeU2(buf, MajorVer52)

	// Force interning of structural names before the pool is
	// serialized: this_class/super_class/interfaces.
	thisIdx := cw.cp.Class(cw.thisClass)
	superIdx := cw.cp.Class(cw.superClass)
	ifaceIdxs := make([]uint16, len(cw.interfaces))
	for i, n := range cw.interfaces {
		ifaceIdxs[i] = cw.cp.Class(n)
	}

	fieldBufs := make([][]byte, len(cw.fields))
	for i, f := range cw.fields {
		fb := &bytes.Buffer{}
		writeU2(fb, uint16(f.Access))
		writeU2(fb, cw.cp.Utf8(f.Name))
		writeU2(fb, cw.cp.Utf8(f.Descriptor))
		writeU2(fb, 0) // attributes_count
		fieldBufs[i] = fb.Bytes()
	}

	methodBufs := make([][]byte, len(cw.methods))
	for i, m := range cw.methods {
		mb, err := cw.encodeMethod(m)
		if err != nil {
			return nil, fmt.Errorf("classfile: method %s%s: %w", m.Name, m.Descriptor, err)
		}
		methodBufs[i] = mb
	}

	writeU2(buf, cw.cp.Count())
	buf.Write(cw.cp.Bytes())

	writeU2(buf, uint16(cw.access))
	writeU2(buf, thisIdx)
	writeU2(buf, superIdx)

	writeU2(buf, uint16(len(ifaceIdxs)))
	for _, idx := range ifaceIdxs {
		writeU2(buf, idx)
	}

	writeU2(buf, uint16(len(fieldBufs)))
	for _, fb := range fieldBufs {
		buf.Write(fb)
	}

	writeU2(buf, uint16(len(methodBufs)))
	for _, mb := range methodBufs {
		buf.Write(mb)
	}

	writeU2(buf, uint16(len(cw.classAttrs)))
	for _, a := range cw.classAttrs {
		writeAttribute(buf, a)
	}

	return buf.Bytes(), nil
}

func (cw *ClassWriter) encodeMethod(m MethodResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	writeU2(buf, uint16(m.Access))
	writeU2(buf, cw.cp.Utf8(m.Name))
	writeU2(buf, cw.cp.Utf8(m.Descriptor))

	var attrs []attribute
	if m.Code != nil {
		attrs = append(attrs, attribute{name: cw.cp.Utf8("Code"), body: cw.encodeCodeAttr(m)})
	}
	writeU2(buf, uint16(len(attrs)))
	for _, a := range attrs {
		writeAttribute(buf, a)
	}
	return buf.Bytes(), nil
}

func (cw *ClassWriter) encodeCodeAttr(m MethodResult) []byte {
	body := &bytes.Buffer{}
	writeU2(body, uint16(m.MaxStack))
	writeU2(body, uint16(m.MaxLocals))
	writeU4(body, uint32(len(m.Code)))
	body.Write(m.Code)

	writeU2(body, uint16(len(m.Exceptions)))
	for _, e := range m.Exceptions {
		writeU2(body, uint16(e.StartPC))
		writeU2(body, uint16(e.EndPC))
		writeU2(body, uint16(e.HandlerPC))
		if e.CatchType == "" {
			writeU2(body, 0)
		} else {
			writeU2(body, cw.cp.Class(e.CatchType))
		}
	}

	var codeAttrs []attribute
	if len(m.StackMap) > 0 {
		codeAttrs = append(codeAttrs, attribute{name: cw.cp.Utf8("StackMapTable"), body: m.StackMap})
	}
	writeU2(body, uint16(len(codeAttrs)))
	for _, a := range codeAttrs {
		writeAttribute(body, a)
	}
	return body.Bytes()
}

// BuildCode finishes a CodeBuilder into a MethodResult's Code-related
// fields: fixes up branch offsets, resolves exception-table labels to
// offsets, and builds the StackMapTable from the recorded frame
// labels. A try/catch entry whose start/end/handler label was never
// marked (the block was deleted by an earlier optimization pass) is
// silently dropped, per spec.md §4.3 step 6 / §9's open question.
func BuildCode(cp *Pool, cb *CodeBuilder) (code []byte, exceptions []ResolvedException, stackMap []byte, err error) {
	code, err = cb.Finish()
	if err != nil {
		return nil, nil, nil, err
	}
	for _, e := range cb.Exceptions() {
		start, ok1 := cb.LabelOffset(e.TryStart)
		end, ok2 := cb.LabelOffset(e.TryEnd)
		handler, ok3 := cb.LabelOffset(e.Handler)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		exceptions = append(exceptions, ResolvedException{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: e.CatchType})
	}
	if len(cb.FrameLabels) > 0 {
		var entries []frameEntry
		for _, lbl := range cb.FrameLabels {
			off, ok := cb.LabelOffset(lbl)
			if !ok {
				continue
			}
			entries = append(entries, frameEntry{offset: off, locals: cb.LocalsVerif})
		}
		stackMap = buildStackMapTable(cp, entries)
	}
	return code, exceptions, stackMap, nil
}
