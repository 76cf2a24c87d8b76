package format

// Scalar is the semantic kind a primitive value is cast to.
type Scalar int

// Scalar kinds.
const (
	Int Scalar = iota
	Bool
	Bytes
	Float
)

var scalarStr = []string{
	Int:   "int",
	Bool:  "bool",
	Bytes: "bytes",
	Float: "float",
}

// String implements the Stringer interface.
func (s Scalar) String() string {
	return scalarStr[s]
}

// String is the NUL-terminated byte string primitive. It has no fixed size.
const String = 's'

type primInfo struct {
	size   int
	signed bool
	scalar Scalar
}

var primitives = map[byte]primInfo{
	'?': {1, false, Bool},
	'c': {1, false, Bytes},
	's': {0, false, Bytes},
	'b': {1, true, Int},
	'B': {1, false, Int},
	'h': {2, true, Int},
	'H': {2, false, Int},
	'i': {4, true, Int},
	'I': {4, false, Int},
	'l': {4, true, Int},
	'L': {4, false, Int},
	'q': {8, true, Int},
	'Q': {8, false, Int},
	'f': {4, true, Float},
	'd': {8, true, Float},
}

// IsPrimitive reports whether c is a primitive type character.
func IsPrimitive(c byte) bool {
	_, ok := primitives[c]
	return ok
}

// IsInteger reports whether c is an integer primitive. Only integer
// primitives are valid as size_t.
func IsInteger(c byte) bool {
	p, ok := primitives[c]
	return ok && p.scalar == Int
}

// ScalarOf returns the cast kind of a primitive. Unknown characters cast to
// Int.
func ScalarOf(c byte) Scalar {
	return primitives[c].scalar
}

// SizeOf returns the encoded size of a fixed width primitive. The string
// primitive and unknown characters report 0.
func SizeOf(c byte) int {
	return primitives[c].size
}

// IsSigned reports whether an integer primitive is signed.
func IsSigned(c byte) bool {
	return primitives[c].signed
}
