package classfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Disassemble renders a serialized class file back into deterministic,
// human-readable text: access flags, this/super/interfaces, fields,
// and one block per method with its bytecode listed as offset:mnemonic
// lines. It exists so internal/emit's golden tests have something
// readable to snapshot instead of raw bytes — spec.md §8's testable
// properties (uniform boxing, fusion semantics, switch semantics, the
// @data/enum/singleton round-trip scenarios) are otherwise unobservable
// without decoding the binary format by hand.
func Disassemble(data []byte) (string, error) {
	d, err := parseDisasmClass(data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "class %s %s extends %s\n", accessFlagsString(d.access), d.thisName, orObject(d.superName))
	if len(d.interfaces) > 0 {
		fmt.Fprintf(&b, "  implements %s\n", strings.Join(d.interfaces, ", "))
	}
	if len(d.fields) > 0 {
		b.WriteString("  fields:\n")
		for _, f := range d.fields {
			fmt.Fprintf(&b, "    %s %s %s\n", accessFlagsString(f.Access), f.Name, f.Descriptor)
		}
	}
	b.WriteString("  methods:\n")
	for _, m := range d.methods {
		fmt.Fprintf(&b, "    %s %s%s\n", accessFlagsString(m.access), m.name, m.descriptor)
		if m.code == nil {
			continue
		}
		fmt.Fprintf(&b, "      maxStack=%d maxLocals=%d\n", m.maxStack, m.maxLocals)
		for _, line := range disassembleCode(m.code, d) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		for _, e := range m.exceptions {
			fmt.Fprintf(&b, "      exception %d-%d -> %d type=%s\n", e.StartPC, e.EndPC, e.HandlerPC, orAny(e.CatchType))
		}
	}
	return b.String(), nil
}

func orObject(s string) string {
	if s == "" {
		return "java/lang/Object"
	}
	return s
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func accessFlagsString(access int) string {
	order := []struct {
		bit  int
		name string
	}{
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccSuper, "super"},
		{AccInterface, "interface"}, {AccAbstract, "abstract"},
		{AccSynthetic, "synthetic"}, {AccAnnotation, "annotation"}, {AccEnum, "enum"},
	}
	var flags []string
	for _, o := range order {
		if access&o.bit != 0 {
			flags = append(flags, o.name)
		}
	}
	if len(flags) == 0 {
		return "()"
	}
	return "[" + strings.Join(flags, " ") + "]"
}

// --- constant pool reading -------------------------------------------------

// dpEntry is one constant-pool entry kept in the shape the
// disassembler needs to resolve operands back to readable text; tag
// meanings and the a/b index fields mirror Pool's own tag constants.
type dpEntry struct {
	tag  byte
	utf8 string
	a, b uint16 // Class: a=name idx. NameAndType/refs: a,b per entry kind. String: a=utf8 idx.
	ival int32
	lval int64
	fval float32
	dval float64
}

type disasmClass struct {
	pool       []dpEntry
	access     int
	thisName   string
	superName  string
	interfaces []string
	fields     []FieldInfo
	methods    []disasmMethod
}

type disasmMethod struct {
	access     int
	name       string
	descriptor string
	code       []byte
	maxStack   int
	maxLocals  int
	exceptions []ResolvedException
}

// cpReader is a minimal big-endian cursor over raw .class bytes,
// matching internal/index's javaresolver cursor shape.
type cpReader struct {
	data []byte
	pos  int
}

func (c *cpReader) u1() byte {
	v := c.data[c.pos]
	c.pos++
	return v
}

func (c *cpReader) u2() uint16 {
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v
}

func (c *cpReader) u4() uint32 {
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v
}

func (c *cpReader) skip(n int) { c.pos += n }

func skipDisasmAttributes(c *cpReader) {
	n := int(c.u2())
	for i := 0; i < n; i++ {
		c.skip(2) // attribute_name_index
		length := int(c.u4())
		c.skip(length)
	}
}

func parseDisasmClass(data []byte) (*disasmClass, error) {
	if len(data) < 10 || binary.BigEndian.Uint32(data[0:4]) != Magic {
		return nil, fmt.Errorf("classfile: not a class file")
	}
	c := &cpReader{data: data, pos: 8} // skip magic, minor, major

	count := int(c.u2())
	pool := make([]dpEntry, count) // pool[0] unused
	for i := 1; i < count; i++ {
		tag := c.u1()
		e := dpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(c.u2())
			e.utf8 = string(c.data[c.pos : c.pos+n])
			c.skip(n)
		case tagClass:
			e.a = c.u2()
		case tagString:
			e.a = c.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			e.a = c.u2()
			e.b = c.u2()
		case tagNameAndType:
			e.a = c.u2()
			e.b = c.u2()
		case tagInteger:
			e.ival = int32(c.u4())
		case tagFloat:
			e.fval = math.Float32frombits(c.u4())
		case tagLong:
			hi, lo := c.u4(), c.u4()
			e.lval = int64(hi)<<32 | int64(lo)
			pool[i] = e
			i++ // long/double occupy two constant-pool slots
			continue
		case tagDouble:
			hi, lo := c.u4(), c.u4()
			e.dval = math.Float64frombits(uint64(hi)<<32 | uint64(lo))
			pool[i] = e
			i++
			continue
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d", tag)
		}
		pool[i] = e
	}

	utf8At := func(idx uint16) string {
		if int(idx) >= len(pool) {
			return ""
		}
		return pool[idx].utf8
	}
	classNameAt := func(idx uint16) string {
		if idx == 0 || int(idx) >= len(pool) {
			return ""
		}
		return utf8At(pool[idx].a)
	}

	access := int(c.u2())
	thisName := classNameAt(c.u2())
	superName := classNameAt(c.u2())

	ifaceCount := int(c.u2())
	interfaces := make([]string, ifaceCount)
	for i := range interfaces {
		interfaces[i] = classNameAt(c.u2())
	}

	fieldCount := int(c.u2())
	fields := make([]FieldInfo, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		facc := int(c.u2())
		fname := utf8At(c.u2())
		fdesc := utf8At(c.u2())
		skipDisasmAttributes(c)
		fields = append(fields, FieldInfo{Access: facc, Name: fname, Descriptor: fdesc})
	}

	methodCount := int(c.u2())
	methods := make([]disasmMethod, 0, methodCount)
	for i := 0; i < methodCount; i++ {
		macc := int(c.u2())
		mname := utf8At(c.u2())
		mdesc := utf8At(c.u2())
		dm := disasmMethod{access: macc, name: mname, descriptor: mdesc}

		attrCount := int(c.u2())
		for j := 0; j < attrCount; j++ {
			attrNameIdx := c.u2()
			length := int(c.u4())
			if utf8At(attrNameIdx) != "Code" {
				c.skip(length)
				continue
			}
			dm.maxStack = int(c.u2())
			dm.maxLocals = int(c.u2())
			codeLen := int(c.u4())
			dm.code = append([]byte(nil), c.data[c.pos:c.pos+codeLen]...)
			c.skip(codeLen)
			excCount := int(c.u2())
			for k := 0; k < excCount; k++ {
				start := int(c.u2())
				end := int(c.u2())
				handler := int(c.u2())
				catchType := classNameAt(c.u2())
				dm.exceptions = append(dm.exceptions, ResolvedException{
					StartPC: start, EndPC: end, HandlerPC: handler, CatchType: catchType,
				})
			}
			skipDisasmAttributes(c) // Code's own attributes (StackMapTable, ...)
		}
		methods = append(methods, dm)
	}

	return &disasmClass{
		pool: pool, access: access, thisName: thisName, superName: superName,
		interfaces: interfaces, fields: fields, methods: methods,
	}, nil
}

func (d *disasmClass) utf8(idx uint16) string {
	if int(idx) >= len(d.pool) {
		return ""
	}
	return d.pool[idx].utf8
}

func (d *disasmClass) className(idx uint16) string {
	if idx == 0 || int(idx) >= len(d.pool) {
		return ""
	}
	e := d.pool[idx]
	if e.tag != tagClass {
		return ""
	}
	return d.utf8(e.a)
}

func (d *disasmClass) ref(idx uint16) (owner, name, desc string) {
	if int(idx) >= len(d.pool) {
		return "", "", ""
	}
	e := d.pool[idx]
	owner = d.className(e.a)
	nt := d.pool[e.b]
	return owner, d.utf8(nt.a), d.utf8(nt.b)
}

func (d *disasmClass) constText(idx uint16) string {
	if int(idx) >= len(d.pool) {
		return "?"
	}
	e := d.pool[idx]
	switch e.tag {
	case tagInteger:
		return fmt.Sprintf("%d", e.ival)
	case tagFloat:
		return fmt.Sprintf("%gf", e.fval)
	case tagLong:
		return fmt.Sprintf("%dL", e.lval)
	case tagDouble:
		return fmt.Sprintf("%gd", e.dval)
	case tagString:
		return fmt.Sprintf("%q", d.utf8(e.a))
	case tagClass:
		return d.className(idx) + ".class"
	default:
		return "?"
	}
}

// --- instruction decoding ---------------------------------------------------

func disassembleCode(code []byte, d *disasmClass) []string {
	var lines []string
	pos := 0
	for pos < len(code) {
		mnemonic, operand, length := decodeInstr(code, pos, d)
		line := fmt.Sprintf("      %4d: %s", pos, mnemonic)
		if operand != "" {
			line += " " + operand
		}
		lines = append(lines, line)
		if length <= 0 {
			break // malformed stream; avoid looping forever
		}
		pos += length
	}
	return lines
}

// decodeInstr decodes the instruction at code[pos], returning its
// mnemonic, an operand rendering (empty if none), and its total
// length in bytes. Covers the opcode set opcodes.go declares, plus
// the short-form load/store opcodes (iload_0..aload_3 etc.) and the
// wide prefix, which have no named constant because slotOp only ever
// emits them numerically.
func decodeInstr(code []byte, pos int, d *disasmClass) (string, string, int) {
	op := code[pos]
	u1 := func(o int) byte { return code[pos+o] }
	u2 := func(o int) uint16 { return binary.BigEndian.Uint16(code[pos+o:]) }
	s2 := func(o int) int16 { return int16(u2(o)) }

	switch op {
	case OpNop:
		return "nop", "", 1
	case OpAconstNull:
		return "aconst_null", "", 1
	case OpIconstM1, OpIconst0, OpIconst1, OpIconst2, OpIconst3, OpIconst4, OpIconst5:
		return fmt.Sprintf("iconst_%d", int(op)-OpIconst0), "", 1
	case OpLconst0, OpLconst1:
		return fmt.Sprintf("lconst_%d", int(op)-OpLconst0), "", 1
	case OpFconst0, OpFconst1, OpFconst2:
		return fmt.Sprintf("fconst_%d", int(op)-OpFconst0), "", 1
	case OpDconst0, OpDconst1:
		return fmt.Sprintf("dconst_%d", int(op)-OpDconst0), "", 1
	case OpBipush:
		return "bipush", fmt.Sprintf("%d", int8(u1(1))), 2
	case OpSipush:
		return "sipush", fmt.Sprintf("%d", s2(1)), 3
	case OpLdc:
		idx := uint16(u1(1))
		return "ldc", fmt.Sprintf("#%d <%s>", idx, d.constText(idx)), 2
	case OpLdcW:
		return "ldc_w", fmt.Sprintf("#%d <%s>", u2(1), d.constText(u2(1))), 3
	case OpLdc2W:
		return "ldc2_w", fmt.Sprintf("#%d <%s>", u2(1), d.constText(u2(1))), 3
	case OpIload:
		return "iload", fmt.Sprintf("%d", u1(1)), 2
	case OpLload:
		return "lload", fmt.Sprintf("%d", u1(1)), 2
	case OpFload:
		return "fload", fmt.Sprintf("%d", u1(1)), 2
	case OpDload:
		return "dload", fmt.Sprintf("%d", u1(1)), 2
	case OpAload:
		return "aload", fmt.Sprintf("%d", u1(1)), 2
	case 0x1a, 0x1b, 0x1c, 0x1d:
		return fmt.Sprintf("iload_%d", int(op)-0x1a), "", 1
	case 0x1e, 0x1f, 0x20, 0x21:
		return fmt.Sprintf("lload_%d", int(op)-0x1e), "", 1
	case 0x22, 0x23, 0x24, 0x25:
		return fmt.Sprintf("fload_%d", int(op)-0x22), "", 1
	case 0x26, 0x27, 0x28, 0x29:
		return fmt.Sprintf("dload_%d", int(op)-0x26), "", 1
	case 0x2a, 0x2b, 0x2c, 0x2d:
		return fmt.Sprintf("aload_%d", int(op)-0x2a), "", 1
	case OpIaload:
		return "iaload", "", 1
	case OpLaload:
		return "laload", "", 1
	case OpFaload:
		return "faload", "", 1
	case OpDaload:
		return "daload", "", 1
	case OpAaload:
		return "aaload", "", 1
	case OpBaload:
		return "baload", "", 1
	case OpCaload:
		return "caload", "", 1
	case OpSaload:
		return "saload", "", 1
	case OpIstore:
		return "istore", fmt.Sprintf("%d", u1(1)), 2
	case OpLstore:
		return "lstore", fmt.Sprintf("%d", u1(1)), 2
	case OpFstore:
		return "fstore", fmt.Sprintf("%d", u1(1)), 2
	case OpDstore:
		return "dstore", fmt.Sprintf("%d", u1(1)), 2
	case OpAstore:
		return "astore", fmt.Sprintf("%d", u1(1)), 2
	case 0x3b, 0x3c, 0x3d, 0x3e:
		return fmt.Sprintf("istore_%d", int(op)-0x3b), "", 1
	case 0x3f, 0x40, 0x41, 0x42:
		return fmt.Sprintf("lstore_%d", int(op)-0x3f), "", 1
	case 0x43, 0x44, 0x45, 0x46:
		return fmt.Sprintf("fstore_%d", int(op)-0x43), "", 1
	case 0x47, 0x48, 0x49, 0x4a:
		return fmt.Sprintf("dstore_%d", int(op)-0x47), "", 1
	case 0x4b, 0x4c, 0x4d, 0x4e:
		return fmt.Sprintf("astore_%d", int(op)-0x4b), "", 1
	case OpIastore:
		return "iastore", "", 1
	case OpLastore:
		return "lastore", "", 1
	case OpFastore:
		return "fastore", "", 1
	case OpDastore:
		return "dastore", "", 1
	case OpAastore:
		return "aastore", "", 1
	case OpBastore:
		return "bastore", "", 1
	case OpCastore:
		return "castore", "", 1
	case OpSastore:
		return "sastore", "", 1
	case OpPop:
		return "pop", "", 1
	case OpPop2:
		return "pop2", "", 1
	case OpDup:
		return "dup", "", 1
	case OpDupX1:
		return "dup_x1", "", 1
	case OpDupX2:
		return "dup_x2", "", 1
	case OpSwap:
		return "swap", "", 1
	case OpIadd:
		return "iadd", "", 1
	case OpLadd:
		return "ladd", "", 1
	case OpFadd:
		return "fadd", "", 1
	case OpDadd:
		return "dadd", "", 1
	case OpIsub:
		return "isub", "", 1
	case OpLsub:
		return "lsub", "", 1
	case OpFsub:
		return "fsub", "", 1
	case OpDsub:
		return "dsub", "", 1
	case OpImul:
		return "imul", "", 1
	case OpLmul:
		return "lmul", "", 1
	case OpFmul:
		return "fmul", "", 1
	case OpDmul:
		return "dmul", "", 1
	case OpIdiv:
		return "idiv", "", 1
	case OpLdiv:
		return "ldiv", "", 1
	case OpFdiv:
		return "fdiv", "", 1
	case OpDdiv:
		return "ddiv", "", 1
	case OpIrem:
		return "irem", "", 1
	case OpLrem:
		return "lrem", "", 1
	case OpFrem:
		return "frem", "", 1
	case OpDrem:
		return "drem", "", 1
	case OpIneg:
		return "ineg", "", 1
	case OpLneg:
		return "lneg", "", 1
	case OpFneg:
		return "fneg", "", 1
	case OpDneg:
		return "dneg", "", 1
	case OpIshl:
		return "ishl", "", 1
	case OpLshl:
		return "lshl", "", 1
	case OpIshr:
		return "ishr", "", 1
	case OpLshr:
		return "lshr", "", 1
	case OpIushr:
		return "iushr", "", 1
	case OpLushr:
		return "lushr", "", 1
	case OpIand:
		return "iand", "", 1
	case OpLand:
		return "land", "", 1
	case OpIor:
		return "ior", "", 1
	case OpLor:
		return "lor", "", 1
	case OpIxor:
		return "ixor", "", 1
	case OpLxor:
		return "lxor", "", 1
	case OpI2l:
		return "i2l", "", 1
	case OpI2f:
		return "i2f", "", 1
	case OpI2d:
		return "i2d", "", 1
	case OpL2i:
		return "l2i", "", 1
	case OpL2f:
		return "l2f", "", 1
	case OpL2d:
		return "l2d", "", 1
	case OpF2i:
		return "f2i", "", 1
	case OpF2l:
		return "f2l", "", 1
	case OpF2d:
		return "f2d", "", 1
	case OpD2i:
		return "d2i", "", 1
	case OpD2l:
		return "d2l", "", 1
	case OpD2f:
		return "d2f", "", 1
	case OpI2b:
		return "i2b", "", 1
	case OpI2c:
		return "i2c", "", 1
	case OpI2s:
		return "i2s", "", 1
	case OpLcmp:
		return "lcmp", "", 1
	case OpFcmpl:
		return "fcmpl", "", 1
	case OpFcmpg:
		return "fcmpg", "", 1
	case OpDcmpl:
		return "dcmpl", "", 1
	case OpDcmpg:
		return "dcmpg", "", 1
	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpIfnull, OpIfnonnull:
		target := pos + int(s2(1))
		return branchMnemonic(op), fmt.Sprintf("-> %d", target), 3
	case OpIreturn:
		return "ireturn", "", 1
	case OpLreturn:
		return "lreturn", "", 1
	case OpFreturn:
		return "freturn", "", 1
	case OpDreturn:
		return "dreturn", "", 1
	case OpAreturn:
		return "areturn", "", 1
	case OpReturn:
		return "return", "", 1
	case OpGetstatic:
		owner, name, desc := d.ref(u2(1))
		return "getstatic", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpPutstatic:
		owner, name, desc := d.ref(u2(1))
		return "putstatic", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpGetfield:
		owner, name, desc := d.ref(u2(1))
		return "getfield", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpPutfield:
		owner, name, desc := d.ref(u2(1))
		return "putfield", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpInvokevirtual:
		owner, name, desc := d.ref(u2(1))
		return "invokevirtual", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpInvokespecial:
		owner, name, desc := d.ref(u2(1))
		return "invokespecial", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpInvokestatic:
		owner, name, desc := d.ref(u2(1))
		return "invokestatic", fmt.Sprintf("%s.%s:%s", owner, name, desc), 3
	case OpInvokeinterface:
		owner, name, desc := d.ref(u2(1))
		return "invokeinterface", fmt.Sprintf("%s.%s:%s count=%d", owner, name, desc, u1(3)), 5
	case OpNew:
		return "new", d.className(u2(1)), 3
	case OpNewarray:
		return "newarray", newarrayTypeName(u1(1)), 2
	case OpAnewarray:
		return "anewarray", d.className(u2(1)), 3
	case OpArraylength:
		return "arraylength", "", 1
	case OpAthrow:
		return "athrow", "", 1
	case OpCheckcast:
		return "checkcast", d.className(u2(1)), 3
	case OpInstanceof:
		return "instanceof", d.className(u2(1)), 3
	case 0xc4: // wide
		sub := u1(1)
		slot := u2(2)
		return "wide", fmt.Sprintf("%s %d", wideSubMnemonic(sub), slot), 4
	default:
		return fmt.Sprintf("unknown_0x%02x", op), "", 1
	}
}

func branchMnemonic(op byte) string {
	switch op {
	case OpIfeq:
		return "ifeq"
	case OpIfne:
		return "ifne"
	case OpIflt:
		return "iflt"
	case OpIfge:
		return "ifge"
	case OpIfgt:
		return "ifgt"
	case OpIfle:
		return "ifle"
	case OpIfIcmpeq:
		return "if_icmpeq"
	case OpIfIcmpne:
		return "if_icmpne"
	case OpIfIcmplt:
		return "if_icmplt"
	case OpIfIcmpge:
		return "if_icmpge"
	case OpIfIcmpgt:
		return "if_icmpgt"
	case OpIfIcmple:
		return "if_icmple"
	case OpIfAcmpeq:
		return "if_acmpeq"
	case OpIfAcmpne:
		return "if_acmpne"
	case OpGoto:
		return "goto"
	case OpIfnull:
		return "ifnull"
	case OpIfnonnull:
		return "ifnonnull"
	default:
		return "?"
	}
}

func newarrayTypeName(code byte) string {
	switch code {
	case TBoolean:
		return "boolean"
	case TChar:
		return "char"
	case TFloat:
		return "float"
	case TDouble:
		return "double"
	case TByte:
		return "byte"
	case TShort:
		return "short"
	case TInt:
		return "int"
	case TLong:
		return "long"
	default:
		return fmt.Sprintf("?%d", code)
	}
}

func wideSubMnemonic(op byte) string {
	switch op {
	case OpIload:
		return "iload"
	case OpLload:
		return "lload"
	case OpFload:
		return "fload"
	case OpDload:
		return "dload"
	case OpAload:
		return "aload"
	case OpIstore:
		return "istore"
	case OpLstore:
		return "lstore"
	case OpFstore:
		return "fstore"
	case OpDstore:
		return "dstore"
	case OpAstore:
		return "astore"
	default:
		return fmt.Sprintf("?%d", op)
	}
}
