// Package transporttest provides a scripted transport for testing simpleRPC
// clients without hardware.
package transporttest

import (
	"bytes"
	"errors"
	"io"
)

var errNotOpen = errors.New("Transport is not open")

// Device is an in-memory transport. Reads are served from the scripted
// replies, writes are captured. Reading beyond the script returns io.EOF.
type Device struct {
	// error returned by Open, if set
	OpenErr error
	// host to device bytes
	Written bytes.Buffer
	// number of Open/Close calls that changed the state
	Opened, Closed int

	replies bytes.Buffer
	open    bool
}

// New creates a device with scripted replies.
func New(replies ...[]byte) *Device {
	d := &Device{}
	d.Reply(replies...)
	return d
}

// Reply appends raw bytes to the script.
func (d *Device) Reply(bs ...[]byte) {
	for _, b := range bs {
		d.replies.Write(b)
	}
}

// ReplyString appends NUL-terminated strings to the script.
func (d *Device) ReplyString(ss ...string) {
	for _, s := range ss {
		d.replies.WriteString(s)
		d.replies.WriteByte(0)
	}
}

// Pending returns the number of scripted bytes not read yet.
func (d *Device) Pending() int {
	return d.replies.Len()
}

// Open implements transport.Transport.
func (d *Device) Open() error {
	if d.OpenErr != nil {
		return d.OpenErr
	}
	if !d.open {
		d.open = true
		d.Opened++
	}
	return nil
}

// Close implements transport.Transport.
func (d *Device) Close() error {
	if d.open {
		d.open = false
		d.Closed++
	}
	return nil
}

// IsOpen implements transport.Transport.
func (d *Device) IsOpen() bool {
	return d.open
}

// Read implements io.Reader.
func (d *Device) Read(p []byte) (int, error) {
	if !d.open {
		return 0, errNotOpen
	}
	if d.replies.Len() == 0 {
		return 0, io.EOF
	}
	return d.replies.Read(p)
}

// Write implements io.Writer.
func (d *Device) Write(p []byte) (int, error) {
	if !d.open {
		return 0, errNotOpen
	}
	return d.Written.Write(p)
}

// Handshake builds the reply of a device to the catalog request: protocol
// tag, version, wire parameters, catalog lines and the terminating empty
// line.
func Handshake(tag string, version [3]byte, params string, lines ...string) []byte {
	var b bytes.Buffer
	b.WriteString(tag)
	b.WriteByte(0)
	b.Write(version[:])
	b.WriteString(params)
	b.WriteByte(0)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte(0)
	}
	b.WriteByte(0)
	return b.Bytes()
}
