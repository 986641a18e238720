package index

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// JavaMethod is one public method read from a .class file, enough for
// completion/hover/signature-help over an imported JVM class (spec.md
// §4.4 "Java interop resolution").
type JavaMethod struct {
	Name       string
	Descriptor string
	Static     bool
	// TypeParamIndex is the slot for the index of the class's formal
	// type parameter that a generic return type corresponds to. The
	// resolver does not read generic signatures and always sets it to -1.
	TypeParamIndex int
}

// JavaClass is the structural information JavaResolver extracts from
// one .class file: enough surface for member completion, not a full
// bytecode model (internal/emit owns writing class files; this only
// reads the public shape of pre-existing ones).
type JavaClass struct {
	InternalName string
	SuperName    string // "" for java/lang/Object itself
	Interfaces   []string
	Methods      []JavaMethod
	TypeParams   []string
}

type classLocation struct {
	jarPath string // "" if a loose .class file
	entry   string // zip entry name, or filesystem path when jarPath == ""
}

// JavaResolver lazily indexes a classpath's .jar and directory entries
// by binary class name, parsing and caching each .class file's
// structure only on first use.
type JavaResolver struct {
	classpath []string

	indexOnce sync.Once
	locations map[string]classLocation

	mu     sync.Mutex
	parsed map[string]*JavaClass
}

// NewJavaResolver builds a resolver over classpath, the jar/directory
// list the LSP server's `classpath` initialization option supplies.
func NewJavaResolver(classpath []string) *JavaResolver {
	return &JavaResolver{classpath: classpath, parsed: map[string]*JavaClass{}}
}

func (r *JavaResolver) ensureIndexed() {
	r.indexOnce.Do(func() {
		r.locations = map[string]classLocation{}
		for _, entry := range r.classpath {
			if strings.HasSuffix(strings.ToLower(entry), ".jar") {
				r.indexJar(entry)
			} else {
				r.indexDir(entry)
			}
		}
	})
}

func (r *JavaResolver) indexJar(path string) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return
	}
	defer zr.Close()
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".class")
		r.locations[name] = classLocation{jarPath: path, entry: f.Name}
	}
}

func (r *JavaResolver) indexDir(root string) {
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".class")
		r.locations[name] = classLocation{entry: path}
		return nil
	})
}

// Resolve returns the parsed structure for a binary class name
// (slash-separated, e.g. "java/util/List"), reading and caching it on
// first request.
func (r *JavaResolver) Resolve(internalName string) (*JavaClass, bool) {
	r.mu.Lock()
	if c, ok := r.parsed[internalName]; ok {
		r.mu.Unlock()
		return c, c != nil
	}
	r.mu.Unlock()

	r.ensureIndexed()
	loc, ok := r.locations[internalName]
	if !ok {
		r.mu.Lock()
		r.parsed[internalName] = nil
		r.mu.Unlock()
		return nil, false
	}
	data, err := r.readClassBytes(loc)
	if err != nil {
		return nil, false
	}
	cls, err := parseClassFile(data)

	r.mu.Lock()
	if err == nil {
		r.parsed[internalName] = cls
	} else {
		r.parsed[internalName] = nil
	}
	r.mu.Unlock()
	return cls, err == nil
}

// ResolveMembers collects every public (and public static) method
// reachable from internalName, including those inherited from its
// superclass and interfaces, deduplicated by name+descriptor so an
// override only appears once.
func (r *JavaResolver) ResolveMembers(internalName string) []JavaMethod {
	seen := map[string]bool{}
	var out []JavaMethod
	var visit func(name string)
	visit = func(name string) {
		if name == "" || name == "java/lang/Object" && len(out) > 0 {
			return
		}
		cls, ok := r.Resolve(name)
		if !ok {
			return
		}
		for _, m := range cls.Methods {
			key := m.Name + m.Descriptor
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
		if cls.SuperName != "" {
			visit(cls.SuperName)
		}
		for _, i := range cls.Interfaces {
			visit(i)
		}
	}
	visit(internalName)
	return out
}

func (r *JavaResolver) readClassBytes(loc classLocation) ([]byte, error) {
	if loc.jarPath == "" {
		return os.ReadFile(loc.entry)
	}
	zr, err := zip.OpenReader(loc.jarPath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != loc.entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", loc.entry, loc.jarPath)
}

const (
	cpUtf8              = 1
	cpInteger           = 3
	cpFloat             = 4
	cpLong              = 5
	cpDouble            = 6
	cpClass             = 7
	cpString            = 8
	cpFieldref          = 9
	cpMethodref         = 10
	cpInterfaceMethodref = 11
	cpNameAndType       = 12
	cpMethodHandle      = 15
	cpMethodType        = 16
	cpDynamic           = 17
	cpInvokeDynamic     = 18
	cpModule            = 19
	cpPackage           = 20
)

const (
	accPublic = 0x0001
	accStatic = 0x0008
)

// classReader is a minimal big-endian cursor over raw .class bytes,
// only as much of the JVM class file format (JVM spec §4) as member
// resolution needs: the constant pool, this/super/interfaces, and each
// method's name/descriptor/access flags. Field and method attributes
// are skipped by their declared length rather than interpreted.
type classReader struct {
	data []byte
	pos  int
}

func (c *classReader) u1() byte {
	v := c.data[c.pos]
	c.pos++
	return v
}

func (c *classReader) u2() uint16 {
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v
}

func (c *classReader) u4() uint32 {
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v
}

func (c *classReader) skip(n int) { c.pos += n }

type cpEntry struct {
	tag        byte
	utf8       string
	classIdx   uint16
	natNameIdx uint16
	natDescIdx uint16
}

func parseClassFile(data []byte) (*JavaClass, error) {
	if len(data) < 10 || binary.BigEndian.Uint32(data[0:4]) != 0xCAFEBABE {
		return nil, fmt.Errorf("not a class file")
	}
	c := &classReader{data: data, pos: 8} // skip magic, minor, major

	count := int(c.u2())
	pool := make([]cpEntry, count) // pool[0] unused
	for i := 1; i < count; i++ {
		tag := c.u1()
		entry := cpEntry{tag: tag}
		switch tag {
		case cpUtf8:
			n := int(c.u2())
			entry.utf8 = string(c.data[c.pos : c.pos+n])
			c.skip(n)
		case cpClass, cpMethodType, cpModule, cpPackage:
			entry.classIdx = c.u2()
		case cpFieldref, cpMethodref, cpInterfaceMethodref, cpDynamic, cpInvokeDynamic:
			c.skip(4)
		case cpNameAndType:
			entry.natNameIdx = c.u2()
			entry.natDescIdx = c.u2()
		case cpString:
			c.skip(2)
		case cpMethodHandle:
			c.skip(3)
		case cpInteger, cpFloat:
			c.skip(4)
		case cpLong, cpDouble:
			c.skip(8)
			pool[i] = entry
			i++ // long/double occupy two constant-pool slots
			continue
		default:
			return nil, fmt.Errorf("unknown constant pool tag %d", tag)
		}
		pool[i] = entry
	}
	utf8At := func(idx uint16) string { return pool[idx].utf8 }
	classNameAt := func(idx uint16) string {
		if idx == 0 {
			return ""
		}
		return utf8At(pool[idx].classIdx)
	}

	c.skip(2) // access_flags: irrelevant, member visibility is checked per-method below
	thisClass := classNameAt(c.u2())
	superClass := classNameAt(c.u2())

	ifaceCount := int(c.u2())
	interfaces := make([]string, ifaceCount)
	for i := range interfaces {
		interfaces[i] = classNameAt(c.u2())
	}

	fieldCount := int(c.u2())
	for i := 0; i < fieldCount; i++ {
		c.skip(6) // access_flags, name_index, descriptor_index
		skipAttributes(c)
	}

	methodCount := int(c.u2())
	methods := make([]JavaMethod, 0, methodCount)
	for i := 0; i < methodCount; i++ {
		access := c.u2()
		nameIdx := c.u2()
		descIdx := c.u2()
		skipAttributes(c)
		if access&accPublic == 0 {
			continue
		}
		name := utf8At(nameIdx)
		if name == "<clinit>" {
			continue
		}
		methods = append(methods, JavaMethod{
			Name:           name,
			Descriptor:     utf8At(descIdx),
			Static:         access&accStatic != 0,
			TypeParamIndex: -1,
		})
	}

	return &JavaClass{
		InternalName: thisClass,
		SuperName:    superClass,
		Interfaces:   interfaces,
		Methods:      methods,
	}, nil
}

func skipAttributes(c *classReader) {
	n := int(c.u2())
	for i := 0; i < n; i++ {
		c.skip(2) // attribute_name_index
		length := int(c.u4())
		c.skip(length)
	}
}
