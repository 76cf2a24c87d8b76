// Package protocol implements the simpleRPC method catalog: the parser for
// catalog lines sent by a device, the device descriptor built from them and
// its YAML representation.
package protocol

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jfjlaros/arduino-simple-rpc/codec"
)

const (
	// Tag is the protocol header a device sends first during discovery.
	Tag = "simpleRPC"

	// ListRequest is the reserved selector that requests the method catalog.
	ListRequest = 0xff
)

// ClientVersion is the protocol version implemented by this package.
var ClientVersion = Version{3, 0, 0}

// ErrProtocolMismatch is returned if a device does not speak simpleRPC.
var ErrProtocolMismatch = errors.New("Invalid protocol header")

// Version is a semantic version (major, minor, patch).
type Version [3]uint8

// String implements the Stringer interface.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// VersionError is returned for an incompatible device version.
type VersionError struct {
	Device Version
	Client Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("Version mismatch (device: %s, client: %s)", e.Device, e.Client)
}

// CheckTag checks the protocol header of a device.
func CheckTag(tag string) error {
	if tag != Tag {
		return fmt.Errorf("%w: %q", ErrProtocolMismatch, tag)
	}
	return nil
}

// CheckVersion checks whether the device version is compatible with
// ClientVersion: the major versions must be equal and the device minor
// version must not exceed the client minor version. The patch level is not
// checked.
func CheckVersion(v Version) error {
	if v[0] != ClientVersion[0] || v[1] > ClientVersion[1] {
		return &VersionError{Device: v, Client: ClientVersion}
	}
	return nil
}

// Device describes a connected device.
type Device struct {
	Protocol string
	Version  Version
	Params   codec.Params
	// methods by name
	Methods map[string]*Method
}

// NewDevice creates an empty device descriptor with default wire
// parameters.
func NewDevice() *Device {
	return &Device{
		Params:  codec.DefaultParams,
		Methods: make(map[string]*Method),
	}
}

// Add adds a method. A method with the same name is replaced.
func (d *Device) Add(m *Method) {
	if prev, ok := d.Methods[m.Name]; ok {
		log.Warningf("Method %s (index %d) is replaced by index %d", m.Name, prev.Index, m.Index)
	}
	d.Methods[m.Name] = m
}

// Method looks up a method by name.
func (d *Device) Method(name string) (*Method, bool) {
	m, ok := d.Methods[name]
	return m, ok
}

// Sorted returns the methods ordered by index.
func (d *Device) Sorted() []*Method {
	ms := make([]*Method, 0, len(d.Methods))
	for _, m := range d.Methods {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].Index < ms[j].Index })
	return ms
}
