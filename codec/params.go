// Package codec reads and writes simpleRPC values on a byte stream.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/jfjlaros/arduino-simple-rpc/format"
)

// Endianness characters as announced by a device.
const (
	LittleEndian = '<'
	BigEndian    = '>'
	NetworkOrder = '!'
)

// Params are the wire parameters negotiated per connection.
type Params struct {
	// byte order character: <, > or !
	Endianness byte
	// integer primitive used for list counts and the method selector
	SizeT byte
}

// DefaultParams are used until a device announced its own parameters.
var DefaultParams = Params{Endianness: LittleEndian, SizeT: 'H'}

// ParseParams parses the two character wire parameter string sent by a
// device during discovery.
func ParseParams(s []byte) (Params, error) {
	if len(s) != 2 {
		return Params{}, fmt.Errorf("Invalid wire parameters %q: expected 2 characters", s)
	}
	p := Params{Endianness: s[0], SizeT: s[1]}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks the endianness and size_t characters.
func (p Params) Validate() error {
	switch p.Endianness {
	case LittleEndian, BigEndian, NetworkOrder:
	default:
		return fmt.Errorf("Invalid endianness: %q", p.Endianness)
	}
	if !format.IsInteger(p.SizeT) {
		return fmt.Errorf("Invalid size_t type: %q", p.SizeT)
	}
	return nil
}

// ByteOrder returns the byte order for fixed width primitives.
func (p Params) ByteOrder() binary.ByteOrder {
	if p.Endianness == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// String returns the wire representation, e.g. "<H".
func (p Params) String() string {
	return string([]byte{p.Endianness, p.SizeT})
}
