package classfile

import "strings"

// ParseParams splits a method descriptor's parameter section into its
// individual field descriptors, e.g. "(ILjava/lang/String;[I)V" ->
// ["I", "Ljava/lang/String;", "[I"].
func ParseParams(desc string) []string {
	if len(desc) == 0 || desc[0] != '(' {
		return nil
	}
	end := strings.IndexByte(desc, ')')
	if end < 0 {
		return nil
	}
	body := desc[1:end]
	var out []string
	for i := 0; i < len(body); {
		start := i
		for body[i] == '[' {
			i++
		}
		switch body[i] {
		case 'L':
			j := strings.IndexByte(body[i:], ';')
			i += j + 1
		default:
			i++
		}
		out = append(out, body[start:i])
	}
	return out
}

// ReturnType returns the descriptor's return-type segment, e.g. "V" or
// "Ljava/lang/Object;".
func ReturnType(desc string) string {
	end := strings.IndexByte(desc, ')')
	if end < 0 || end+1 >= len(desc) {
		return "V"
	}
	return desc[end+1:]
}

// WordSize returns the JVM operand-stack/local-slot width of a field
// descriptor: 2 for long/double, 1 for everything else (including V,
// which never appears as an operand).
func WordSize(fieldDesc string) int {
	if len(fieldDesc) == 0 {
		return 1
	}
	switch fieldDesc[0] {
	case 'J', 'D':
		return 2
	default:
		return 1
	}
}

// Sort classifies a field descriptor's first character into the load/
// store/return opcode family it needs: 'I' for int/boolean/char/byte/
// short, 'J', 'F', 'D', or 'A' for everything reference-shaped
// (objects and arrays).
func Sort(fieldDesc string) byte {
	if len(fieldDesc) == 0 {
		return 'A'
	}
	switch fieldDesc[0] {
	case 'I', 'Z', 'C', 'B', 'S':
		return 'I'
	case 'J':
		return 'J'
	case 'F':
		return 'F'
	case 'D':
		return 'D'
	default:
		return 'A'
	}
}

// ArgWords sums the operand-stack width of a method descriptor's
// parameters (for stack-depth/pop-count bookkeeping).
func ArgWords(desc string) int {
	n := 0
	for _, p := range ParseParams(desc) {
		n += WordSize(p)
	}
	return n
}

// IsObjectDesc reports whether fieldDesc is a non-array, non-primitive
// class type (starts with 'L').
func IsObjectDesc(fieldDesc string) bool {
	return len(fieldDesc) > 0 && fieldDesc[0] == 'L'
}
