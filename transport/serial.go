package transport

import (
	"errors"
	"time"

	"github.com/tarm/serial"
)

var errNotOpen = errors.New("Transport is not open")

// Serial is a serial line, e.g. /dev/ttyUSB0 or COM3.
type Serial struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration

	port *serial.Port
}

// Open opens the serial port.
func (s *Serial) Open() error {
	if s.port != nil {
		return nil
	}
	log.Debugf("Opening serial port %s with %d baud", s.Name, s.BaudRate)
	port, err := serial.OpenPort(&serial.Config{
		Name:        s.Name,
		Baud:        s.BaudRate,
		Parity:      serial.ParityNone,
		ReadTimeout: s.ReadTimeout,
	})
	if err != nil {
		return &ConnectionError{Addr: s.Name, Err: err}
	}
	s.port = port
	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	log.Debugf("Closing serial port %s", s.Name)
	err := s.port.Close()
	s.port = nil
	return err
}

// IsOpen implements Transport.
func (s *Serial) IsOpen() bool {
	return s.port != nil
}

// Read implements io.Reader.
func (s *Serial) Read(p []byte) (int, error) {
	if s.port == nil {
		return 0, errNotOpen
	}
	return s.port.Read(p)
}

// Write implements io.Writer.
func (s *Serial) Write(p []byte) (int, error) {
	if s.port == nil {
		return 0, errNotOpen
	}
	if log.TraceEnabled() {
		log.Tracef("Writing to %s: % x", s.Name, p)
	}
	return s.port.Write(p)
}
