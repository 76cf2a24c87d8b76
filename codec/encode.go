package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfjlaros/arduino-simple-rpc/format"
)

const endOfString = 0

// Encoder writes simpleRPC values. Output is buffered until Flush is called.
type Encoder struct {
	w      *bufio.Writer
	params Params
	order  binary.ByteOrder
	scr    [8]byte
}

// NewEncoder creates an encoder for the given wire parameters.
func NewEncoder(w io.Writer, p Params) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), params: p, order: p.ByteOrder()}
}

// Flush writes buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// EncodeIndex writes n as size_t, e.g. a method selector.
func (e *Encoder) EncodeIndex(n int) error {
	return e.encodeInt(e.params.SizeT, uint64(n))
}

// Encode writes value v with shape t. Lists expect a sequence holding count
// repetitions of the list body, tuples a sequence of exactly one value per
// member.
func (e *Encoder) Encode(t *format.Node, v interface{}) error {
	switch t.Kind {
	case format.Empty:
		return nil
	case format.Primitive:
		return e.encodePrimitive(t.Prim, v)
	case format.List:
		vals, err := castSlice(v)
		if err != nil {
			return err
		}
		if len(vals)%len(t.Elems) != 0 {
			return fmt.Errorf("Number of values (%d) for list %s is not a multiple of %d", len(vals), t, len(t.Elems))
		}
		err = e.EncodeIndex(len(vals) / len(t.Elems))
		if err != nil {
			return fmt.Errorf("Writing of list length failed: %w", err)
		}
		return e.encodeSeq(t.Elems, vals)
	case format.Tuple:
		vals, err := castSlice(v)
		if err != nil {
			return err
		}
		if len(vals) != len(t.Elems) {
			return fmt.Errorf("Tuple %s expects %d values, got %d", t, len(t.Elems), len(vals))
		}
		return e.encodeSeq(t.Elems, vals)
	}
	return fmt.Errorf("Invalid type node kind: %v", t.Kind)
}

// encodeSeq writes vals cycling through the element pattern.
func (e *Encoder) encodeSeq(elems []*format.Node, vals []interface{}) error {
	for i, v := range vals {
		err := e.Encode(elems[i%len(elems)], v)
		if err != nil {
			return fmt.Errorf("Failed to encode element %d: %w", i, err)
		}
	}
	return nil
}

func (e *Encoder) encodePrimitive(c byte, v interface{}) error {
	switch format.ScalarOf(c) {
	case format.Bool:
		b, err := castBool(v)
		if err != nil {
			return err
		}
		if b {
			return e.w.WriteByte(1)
		}
		return e.w.WriteByte(0)
	case format.Bytes:
		if c == format.String {
			return e.encodeString(v)
		}
		b, err := castByte(v)
		if err != nil {
			return err
		}
		return e.w.WriteByte(b)
	case format.Float:
		f, err := castFloat(v)
		if err != nil {
			return err
		}
		if c == 'f' {
			return e.encodeInt('I', uint64(math.Float32bits(float32(f))))
		}
		return e.encodeInt('Q', math.Float64bits(f))
	}
	n, err := castInt(v)
	if err != nil {
		return err
	}
	return e.encodeInt(c, n)
}

func (e *Encoder) encodeString(v interface{}) error {
	b, err := castBytes(v)
	if err != nil {
		return err
	}
	if bytes.IndexByte(b, endOfString) >= 0 {
		return fmt.Errorf("String %q contains a NUL byte", b)
	}
	_, err = e.w.Write(b)
	if err != nil {
		return err
	}
	return e.w.WriteByte(endOfString)
}

// encodeInt writes the low bytes of a two's complement bit pattern.
func (e *Encoder) encodeInt(c byte, n uint64) error {
	size := format.SizeOf(c)
	buf := e.scr[:size]
	switch size {
	case 1:
		buf[0] = byte(n)
	case 2:
		e.order.PutUint16(buf, uint16(n))
	case 4:
		e.order.PutUint32(buf, uint32(n))
	case 8:
		e.order.PutUint64(buf, n)
	default:
		return fmt.Errorf("Invalid integer type: %q", c)
	}
	_, err := e.w.Write(buf)
	return err
}
