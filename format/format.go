// Package format parses simpleRPC type signatures.
//
// A signature is a compact string of single character primitives, where
// brackets build composite types:
//
//	B        unsigned 8 bit integer
//	[i]      list of 32 bit integers
//	(cf)     tuple of a byte and a float
//	[(cf)]   list of such tuples
//
// Primitive characters follow the Python struct module conventions used by
// the device side.
package format

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTupleRequired is returned when a top level signature holds more than
	// one type without surrounding brackets.
	ErrTupleRequired = errors.New("Top level type can not be tuple")

	// ErrUnbalanced is returned for missing or superfluous brackets.
	ErrUnbalanced = errors.New("Unbalanced brackets")

	// ErrUnknownType is returned for characters outside of the primitive
	// alphabet.
	ErrUnknownType = errors.New("Unknown type")
)

// Kind is the kind of a type node.
type Kind int

// Node kinds.
const (
	Empty Kind = iota
	Primitive
	List
	Tuple
)

var kindStr = []string{
	Empty:     "empty",
	Primitive: "primitive",
	List:      "list",
	Tuple:     "tuple",
}

// String implements the Stringer interface.
func (k Kind) String() string {
	return kindStr[k]
}

// Node describes the wire shape of a value.
type Node struct {
	Kind Kind
	// primitive character, only for Kind Primitive
	Prim byte
	// List: body pattern repeated count times (usually one element)
	// Tuple: members in declaration order
	Elems []*Node
}

// Arity returns the number of values one repetition of a list body (or a
// tuple) consumes.
func (n *Node) Arity() int {
	switch n.Kind {
	case List, Tuple:
		return len(n.Elems)
	case Primitive:
		return 1
	}
	return 0
}

// IsEmpty reports whether the node denotes no value.
func (n *Node) IsEmpty() bool {
	return n == nil || n.Kind == Empty
}

// String returns the canonical signature of the node. Parse(n.String())
// yields an equal tree.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n *Node) writeTo(sb *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Primitive:
		sb.WriteByte(n.Prim)
	case List:
		sb.WriteByte('[')
		for _, e := range n.Elems {
			e.writeTo(sb)
		}
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('(')
		for _, e := range n.Elems {
			e.writeTo(sb)
		}
		sb.WriteByte(')')
	}
}

// TypeName returns a display name for the node: bool, bytes, float or int for
// primitives, bracketed lists of names for composites and an empty string for
// Empty. The name has no wire meaning.
func (n *Node) TypeName() string {
	if n.IsEmpty() {
		return ""
	}
	switch n.Kind {
	case Primitive:
		return ScalarOf(n.Prim).String()
	case List:
		return "[" + joinNames(n.Elems) + "]"
	case Tuple:
		return "(" + joinNames(n.Elems) + ")"
	}
	return ""
}

func joinNames(ns []*Node) string {
	names := make([]string, len(ns))
	for i, e := range ns {
		names[i] = e.TypeName()
	}
	return strings.Join(names, ", ")
}

// MarshalText implements encoding.TextMarshaler.
func (n *Node) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Node) UnmarshalText(text []byte) error {
	p, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = *p
	return nil
}

// Prim creates a primitive node. It panics on an unknown character and is
// meant for literals.
func Prim(c byte) *Node {
	if !IsPrimitive(c) {
		panic(fmt.Sprintf("format: unknown primitive %q", c))
	}
	return &Node{Kind: Primitive, Prim: c}
}

// ListOf creates a list node.
func ListOf(elems ...*Node) *Node {
	return &Node{Kind: List, Elems: elems}
}

// TupleOf creates a tuple node.
func TupleOf(elems ...*Node) *Node {
	return &Node{Kind: Tuple, Elems: elems}
}
