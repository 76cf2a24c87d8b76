package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfjlaros/arduino-simple-rpc/format"
)

// upper bound for preallocation of decoded lists
const maxPrealloc = 1024

// Decoder reads simpleRPC values. It reads exactly the bytes a type demands
// and never buffers ahead.
type Decoder struct {
	r      io.Reader
	params Params
	order  binary.ByteOrder
	scr    [8]byte
}

// NewDecoder creates a decoder for the given wire parameters.
func NewDecoder(r io.Reader, p Params) *Decoder {
	return &Decoder{r: r, params: p, order: p.ByteOrder()}
}

// ReadString reads a NUL-terminated byte string. The terminator is consumed
// but not returned.
func (d *Decoder) ReadString() ([]byte, error) {
	s := []byte{}
	b := d.scr[:1]
	for {
		_, err := io.ReadFull(d.r, b)
		if err != nil {
			return nil, fmt.Errorf("Reading of string failed: %w", err)
		}
		if b[0] == endOfString {
			return s, nil
		}
		s = append(s, b[0])
	}
}

// Decode reads a value with shape t. Primitives decode to sized Go types
// (uint8, int16, float32, ...), bool or []byte. Lists decode to a flat
// []interface{} holding count repetitions of the body, tuples to a
// []interface{} with one entry per member. Empty decodes to nil.
func (d *Decoder) Decode(t *format.Node) (interface{}, error) {
	switch t.Kind {
	case format.Empty:
		return nil, nil
	case format.Primitive:
		return d.decodePrimitive(t.Prim)
	case format.List:
		cnt, err := d.decodeCount()
		if err != nil {
			return nil, fmt.Errorf("Reading of list length failed: %w", err)
		}
		prealloc := cnt * len(t.Elems)
		if prealloc > maxPrealloc {
			prealloc = maxPrealloc
		}
		vals := make([]interface{}, 0, prealloc)
		for i := 0; i < cnt; i++ {
			for _, e := range t.Elems {
				v, err := d.Decode(e)
				if err != nil {
					return nil, fmt.Errorf("Failed to decode list item %d: %w", i, err)
				}
				vals = append(vals, v)
			}
		}
		return vals, nil
	case format.Tuple:
		vals := make([]interface{}, len(t.Elems))
		for i, e := range t.Elems {
			v, err := d.Decode(e)
			if err != nil {
				return nil, fmt.Errorf("Failed to decode tuple member %d: %w", i, err)
			}
			vals[i] = v
		}
		return vals, nil
	}
	return nil, fmt.Errorf("Invalid type node kind: %v", t.Kind)
}

func (d *Decoder) decodeCount() (int, error) {
	v, err := d.decodePrimitive(d.params.SizeT)
	if err != nil {
		return 0, err
	}
	n, err := castInt(v)
	if err != nil {
		return 0, err
	}
	if (format.IsSigned(d.params.SizeT) && int64(n) < 0) || n > math.MaxInt32 {
		return 0, fmt.Errorf("Invalid list length: %v", v)
	}
	return int(n), nil
}

func (d *Decoder) decodePrimitive(c byte) (interface{}, error) {
	if c == format.String {
		return d.ReadString()
	}
	size := format.SizeOf(c)
	if size == 0 {
		return nil, fmt.Errorf("Invalid primitive type: %q", c)
	}
	b := d.scr[:size]
	_, err := io.ReadFull(d.r, b)
	if err != nil {
		return nil, fmt.Errorf("Reading of %q value failed: %w", c, err)
	}
	switch c {
	case '?':
		return b[0] != 0, nil
	case 'c':
		return []byte{b[0]}, nil
	case 'b':
		return int8(b[0]), nil
	case 'B':
		return b[0], nil
	case 'h':
		return int16(d.order.Uint16(b)), nil
	case 'H':
		return d.order.Uint16(b), nil
	case 'i', 'l':
		return int32(d.order.Uint32(b)), nil
	case 'I', 'L':
		return d.order.Uint32(b), nil
	case 'q':
		return int64(d.order.Uint64(b)), nil
	case 'Q':
		return d.order.Uint64(b), nil
	case 'f':
		return math.Float32frombits(d.order.Uint32(b)), nil
	case 'd':
		return math.Float64frombits(d.order.Uint64(b)), nil
	}
	return nil, fmt.Errorf("Invalid primitive type: %q", c)
}
