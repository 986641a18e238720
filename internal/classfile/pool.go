package classfile

import (
	"bytes"
	"encoding/binary"
)

// Constant pool tags (JVM spec §4.4).
const (
	tagUtf8              = 1
	tagInteger           = 3
	tagFloat             = 4
	tagLong              = 5
	tagDouble            = 6
	tagClass             = 7
	tagString            = 8
	tagFieldref          = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType       = 12
)

type poolKey struct {
	tag  byte
	a, b string
	n    int64
}

// Pool accumulates and deduplicates constant-pool entries, emitting
// them in JVM order on Bytes(). Index 0 is reserved (entries are
// 1-indexed, matching the class file format); Long/Double entries
// additionally consume the following index per the format's "two
// entries in the table" quirk.
type Pool struct {
	entries []poolEntry
	index   map[poolKey]uint16
}

type poolEntry struct {
	tag  byte
	data []byte
}

// NewPool returns an empty constant pool.
func NewPool() *Pool {
	return &Pool{index: map[poolKey]uint16{}}
}

func (p *Pool) add(key poolKey, tag byte, data []byte) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	p.entries = append(p.entries, poolEntry{tag: tag, data: data})
	idx := uint16(len(p.entries)) // 1-indexed
	p.index[key] = idx
	if tag == tagLong || tag == tagDouble {
		// Long/Double occupy two constant-pool indices; push a dummy
		// so the next add gets the correct (skipped) index.
		p.entries = append(p.entries, poolEntry{})
	}
	return idx
}

// Utf8 interns a UTF-8 constant, returning its index.
func (p *Pool) Utf8(s string) uint16 {
	key := poolKey{tag: tagUtf8, a: s}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	buf := &bytes.Buffer{}
	writeU2(buf, uint16(len(s)))
	buf.WriteString(s)
	return p.add(key, tagUtf8, buf.Bytes())
}

// Class interns a CONSTANT_Class referencing internal name (slash
// separated, no leading "L"/trailing ";").
func (p *Pool) Class(internalName string) uint16 {
	key := poolKey{tag: tagClass, a: internalName}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	nameIdx := p.Utf8(internalName)
	buf := &bytes.Buffer{}
	writeU2(buf, nameIdx)
	return p.add(key, tagClass, buf.Bytes())
}

// NameAndType interns a CONSTANT_NameAndType entry.
func (p *Pool) NameAndType(name, desc string) uint16 {
	key := poolKey{tag: tagNameAndType, a: name, b: desc}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	n := p.Utf8(name)
	d := p.Utf8(desc)
	buf := &bytes.Buffer{}
	writeU2(buf, n)
	writeU2(buf, d)
	return p.add(key, tagNameAndType, buf.Bytes())
}

func (p *Pool) ref(tag byte, owner, name, desc string) uint16 {
	key := poolKey{tag: tag, a: owner, b: name + ":" + desc}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	classIdx := p.Class(owner)
	ntIdx := p.NameAndType(name, desc)
	buf := &bytes.Buffer{}
	writeU2(buf, classIdx)
	writeU2(buf, ntIdx)
	return p.add(key, tag, buf.Bytes())
}

// Fieldref interns a CONSTANT_Fieldref.
func (p *Pool) Fieldref(owner, name, desc string) uint16 {
	return p.ref(tagFieldref, owner, name, desc)
}

// Methodref interns a CONSTANT_Methodref.
func (p *Pool) Methodref(owner, name, desc string) uint16 {
	return p.ref(tagMethodref, owner, name, desc)
}

// InterfaceMethodref interns a CONSTANT_InterfaceMethodref.
func (p *Pool) InterfaceMethodref(owner, name, desc string) uint16 {
	return p.ref(tagInterfaceMethodref, owner, name, desc)
}

// String interns a CONSTANT_String referencing a Utf8 value.
func (p *Pool) String(s string) uint16 {
	key := poolKey{tag: tagString, a: s}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	utf8 := p.Utf8(s)
	buf := &bytes.Buffer{}
	writeU2(buf, utf8)
	return p.add(key, tagString, buf.Bytes())
}

// Integer interns a CONSTANT_Integer.
func (p *Pool) Integer(v int32) uint16 {
	key := poolKey{tag: tagInteger, n: int64(v)}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, v)
	return p.add(key, tagInteger, buf.Bytes())
}

// Long interns a CONSTANT_Long.
func (p *Pool) Long(v int64) uint16 {
	key := poolKey{tag: tagLong, n: v}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, v)
	return p.add(key, tagLong, buf.Bytes())
}

// Float interns a CONSTANT_Float.
func (p *Pool) Float(v float32) uint16 {
	key := poolKey{tag: tagFloat, n: int64(int32frombits(v))}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, v)
	return p.add(key, tagFloat, buf.Bytes())
}

// Double interns a CONSTANT_Double.
func (p *Pool) Double(v float64) uint16 {
	key := poolKey{tag: tagDouble, n: int64(int64frombits(v))}
	if idx, ok := p.index[key]; ok {
		return idx
	}
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, v)
	return p.add(key, tagDouble, buf.Bytes())
}

// Count returns the constant_pool_count field value (entries+1).
func (p *Pool) Count() uint16 { return uint16(len(p.entries) + 1) }

// Bytes serializes the pool body (no count prefix).
func (p *Pool) Bytes() []byte {
	buf := &bytes.Buffer{}
	for _, e := range p.entries {
		if e.data == nil && e.tag == 0 {
			continue // dummy slot following a Long/Double
		}
		buf.WriteByte(e.tag)
		buf.Write(e.data)
	}
	return buf.Bytes()
}

func writeU2(buf *bytes.Buffer, v uint16) { binary.Write(buf, binary.BigEndian, v) }
func writeU4(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.BigEndian, v) }

func int32frombits(f float32) int32 {
	bits := int32(0)
	for i, b := range floatBytes(f) {
		bits |= int32(b) << (8 * (3 - i))
	}
	return bits
}

func floatBytes(f float32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, f)
	return buf.Bytes()
}

func int64frombits(d float64) int64 {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, d)
	b := buf.Bytes()
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(b[i]) << (8 * (7 - i))
	}
	return v
}
