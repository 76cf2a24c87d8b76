// Package itf implements the client side of the simpleRPC protocol: method
// discovery and remote procedure calls over a transport.
//
// An Interface is not safe for concurrent use. Every operation blocks until
// its bytes are exchanged, only one call can be in flight.
package itf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jfjlaros/arduino-simple-rpc/codec"
	"github.com/jfjlaros/arduino-simple-rpc/format"
	"github.com/jfjlaros/arduino-simple-rpc/protocol"
	"github.com/jfjlaros/arduino-simple-rpc/transport"
	"github.com/mdzio/go-logging"
)

// DefaultWait is the default settle delay after opening a transport. Many
// boards reset when the serial port is opened.
const DefaultWait = 2 * time.Second

var log = logging.Get("simplerpc-itf")

var (
	// ErrNotOpen is returned for calls on a closed interface.
	ErrNotOpen = errors.New("Interface is not open")

	// ErrAlreadyOpen is returned when opening an open interface.
	ErrAlreadyOpen = errors.New("Interface is already open")

	// ErrInvalidName is returned for calls of unknown methods.
	ErrInvalidName = errors.New("Invalid method name")

	// ErrArgumentCount matches every ArgumentCountError.
	ErrArgumentCount = errors.New("Wrong number of arguments")
)

// ArgumentCountError is returned if a call does not match the number of
// method parameters.
type ArgumentCountError struct {
	Method   string
	Expected int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("%s expected %d arguments, got %d", e.Method, e.Expected, e.Got)
}

// Is reports whether target is ErrArgumentCount.
func (e *ArgumentCountError) Is(target error) bool {
	return target == ErrArgumentCount
}

// State is the connection state of an Interface.
type State int

// Connection states.
const (
	Closed State = iota
	Discovering
	Ready
)

var stateStr = []string{
	Closed:      "closed",
	Discovering: "discovering",
	Ready:       "ready",
}

// String implements the Stringer interface.
func (s State) String() string {
	return stateStr[s]
}

// Interface is a connection to a simpleRPC device.
type Interface struct {
	// device address: serial device path or socket://host:port
	Addr     string
	BaudRate int
	// settle delay after opening the transport
	Wait time.Duration
	// 0 blocks reads indefinitely
	ReadTimeout time.Duration
	// created from Addr on Open, if not set
	Transport transport.Transport

	state  State
	device *protocol.Device
}

// New creates an interface with default settings. The device is not opened.
func New(addr string) *Interface {
	return &Interface{
		Addr:     addr,
		BaudRate: transport.DefaultBaudRate,
		Wait:     DefaultWait,
	}
}

// Open opens the transport, waits the settle delay and discovers the methods
// of the device.
func (i *Interface) Open() error {
	return i.open(i.discover)
}

// OpenCatalog opens the transport and waits the settle delay like Open, but
// loads the methods from a saved catalog (see Save) instead of querying the
// device.
func (i *Interface) OpenCatalog(r io.Reader) error {
	return i.open(func() (*protocol.Device, error) {
		return protocol.LoadDevice(r)
	})
}

func (i *Interface) open(load func() (*protocol.Device, error)) error {
	if i.state != Closed {
		return ErrAlreadyOpen
	}
	if i.Transport == nil {
		t, err := transport.New(i.Addr, transport.Options{BaudRate: i.BaudRate, ReadTimeout: i.ReadTimeout})
		if err != nil {
			return err
		}
		i.Transport = t
	}
	log.Debugf("Opening %s", i.Addr)
	err := i.Transport.Open()
	if err != nil {
		return err
	}
	if i.Wait > 0 {
		log.Tracef("Waiting %v for %s to settle", i.Wait, i.Addr)
		time.Sleep(i.Wait)
	}

	i.state = Discovering
	d, err := load()
	if err != nil {
		i.state = Closed
		if cerr := i.Transport.Close(); cerr != nil {
			log.Warningf("Closing of %s failed: %v", i.Addr, cerr)
		}
		return err
	}
	i.device = d
	i.state = Ready
	log.Debugf("Device %s ready, protocol version %s, %d methods", i.Addr, d.Version, len(d.Methods))
	return nil
}

// discover runs the catalog request.
func (i *Interface) discover() (*protocol.Device, error) {
	// the wire parameters are not known yet
	err := i.send(codec.DefaultParams, func(e *codec.Encoder) error {
		return e.EncodeIndex(protocol.ListRequest)
	})
	if err != nil {
		return nil, err
	}
	dec := codec.NewDecoder(i.Transport, codec.DefaultParams)

	tag, err := dec.ReadString()
	if err != nil {
		return nil, fmt.Errorf("Reading of protocol header from %s failed: %w", i.Addr, err)
	}
	err = protocol.CheckTag(string(tag))
	if err != nil {
		return nil, err
	}

	var v protocol.Version
	for k := range v {
		x, err := dec.Decode(format.Prim('B'))
		if err != nil {
			return nil, fmt.Errorf("Reading of version from %s failed: %w", i.Addr, err)
		}
		v[k] = x.(uint8)
	}
	err = protocol.CheckVersion(v)
	if err != nil {
		return nil, err
	}

	ps, err := dec.ReadString()
	if err != nil {
		return nil, fmt.Errorf("Reading of wire parameters from %s failed: %w", i.Addr, err)
	}
	params, err := codec.ParseParams(ps)
	if err != nil {
		return nil, err
	}

	d := protocol.NewDevice()
	d.Protocol = string(tag)
	d.Version = v
	d.Params = params
	for idx := 0; ; idx++ {
		line, err := dec.ReadString()
		if err != nil {
			return nil, fmt.Errorf("Reading of method catalog from %s failed: %w", i.Addr, err)
		}
		if len(line) == 0 {
			break
		}
		log.Tracef("Catalog line %d: %q", idx, line)
		m, err := protocol.ParseLine(idx, line)
		if err != nil {
			return nil, err
		}
		d.Add(m)
	}
	return d, nil
}

// send encodes a request completely before anything is written.
func (i *Interface) send(p codec.Params, enc func(*codec.Encoder) error) error {
	buf := bytes.Buffer{}
	e := codec.NewEncoder(&buf, p)
	err := enc(e)
	if err != nil {
		return err
	}
	err = e.Flush()
	if err != nil {
		return err
	}
	_, err = i.Transport.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("Sending of request to %s failed: %w", i.Addr, err)
	}
	return nil
}

// Close drops the method catalog and closes the transport. Closing a closed
// interface is not an error.
func (i *Interface) Close() error {
	if i.state == Closed {
		return nil
	}
	log.Debugf("Closing %s", i.Addr)
	i.state = Closed
	i.device = nil
	return i.Transport.Close()
}

// State returns the connection state.
func (i *Interface) State() State {
	return i.state
}

// IsOpen reports whether methods can be called.
func (i *Interface) IsOpen() bool {
	return i.state == Ready
}

// Device returns the device descriptor. A closed interface returns an empty
// descriptor with default wire parameters.
func (i *Interface) Device() *protocol.Device {
	if i.device == nil {
		return protocol.NewDevice()
	}
	return i.device
}

// Save writes the method catalog, see OpenCatalog.
func (i *Interface) Save(w io.Writer) error {
	if i.state != Ready {
		return ErrNotOpen
	}
	return i.device.Save(w)
}

// Call executes a remote procedure. The result is nil for methods without
// return value. Invalid names and argument counts are detected before
// anything is sent.
func (i *Interface) Call(name string, args ...interface{}) (interface{}, error) {
	if i.state != Ready {
		return nil, ErrNotOpen
	}
	m, ok := i.device.Method(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	if len(args) != len(m.Parameters) {
		return nil, &ArgumentCountError{Method: name, Expected: len(m.Parameters), Got: len(args)}
	}
	log.Debugf("Calling method %s on %s with parameters %v", name, i.Addr, args)

	params := i.device.Params
	err := i.send(params, func(e *codec.Encoder) error {
		err := e.EncodeIndex(m.Index)
		if err != nil {
			return err
		}
		for k, p := range m.Parameters {
			err = e.Encode(p.Type, args[k])
			if err != nil {
				return fmt.Errorf("Encoding of parameter %s of %s failed: %w", p.Name, name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.Return.Type.IsEmpty() {
		return nil, nil
	}
	v, err := codec.NewDecoder(i.Transport, params).Decode(m.Return.Type)
	if err != nil {
		return nil, fmt.Errorf("Decoding of result of %s from %s failed: %w", name, i.Addr, err)
	}
	log.Tracef("Result: %v", v)
	return v, nil
}

// With opens the interface (from a saved catalog, if catalog is not nil),
// runs fn and closes the interface on every return path.
func With(i *Interface, catalog io.Reader, fn func(*Interface) error) (err error) {
	if catalog != nil {
		err = i.OpenCatalog(catalog)
	} else {
		err = i.Open()
	}
	if err != nil {
		return err
	}
	defer func() {
		cerr := i.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(i)
}
