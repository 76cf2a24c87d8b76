package format

import (
	"errors"
	"fmt"
)

// ErrEmptyComposite is returned for brackets without content.
var ErrEmptyComposite = errors.New("Empty composite type")

// Parse parses a type signature. An empty signature yields an Empty node.
// Several types on the top level must be wrapped in a tuple.
func Parse(sig string) (*Node, error) {
	p := parser{s: sig}
	elems, err := p.sequence(0)
	if err != nil {
		return nil, fmt.Errorf("Invalid type signature %q: %w", sig, err)
	}
	switch len(elems) {
	case 0:
		return &Node{Kind: Empty}, nil
	case 1:
		return elems[0], nil
	}
	return nil, fmt.Errorf("Invalid type signature %q: %w", sig, ErrTupleRequired)
}

// MustParse is like Parse but panics on error.
func MustParse(sig string) *Node {
	n, err := Parse(sig)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	s   string
	pos int
}

// sequence reads nodes until closer (or the end of input, if closer is 0).
func (p *parser) sequence(closer byte) ([]*Node, error) {
	var elems []*Node
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '[', '(':
			end := byte(']')
			if c == '(' {
				end = ')'
			}
			sub, err := p.sequence(end)
			if err != nil {
				return nil, err
			}
			if len(sub) == 0 {
				return nil, fmt.Errorf("%w at offset %d", ErrEmptyComposite, p.pos-1)
			}
			if c == '[' {
				elems = append(elems, ListOf(sub...))
			} else {
				elems = append(elems, TupleOf(sub...))
			}
		case ']', ')':
			if c != closer {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrUnbalanced, c, p.pos-1)
			}
			return elems, nil
		default:
			if !IsPrimitive(c) {
				return nil, fmt.Errorf("%w %q at offset %d", ErrUnknownType, c, p.pos-1)
			}
			elems = append(elems, &Node{Kind: Primitive, Prim: c})
		}
	}
	if closer != 0 {
		return nil, fmt.Errorf("%w: missing %q", ErrUnbalanced, closer)
	}
	return elems, nil
}
