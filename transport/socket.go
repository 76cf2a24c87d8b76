package transport

import (
	"net"
	"time"
)

// dial timeout for sockets
const connectTimeout = 10 * time.Second

// Socket is a raw TCP connection to a device (host:port).
type Socket struct {
	Addr        string
	ReadTimeout time.Duration

	conn net.Conn
}

// Open connects to the device.
func (s *Socket) Open() error {
	if s.conn != nil {
		return nil
	}
	log.Debugf("Connecting to %s", s.Addr)
	conn, err := net.DialTimeout("tcp", s.Addr, connectTimeout)
	if err != nil {
		return &ConnectionError{Addr: s.Addr, Err: err}
	}
	s.conn = conn
	return nil
}

// Close closes the connection.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	log.Debugf("Closing connection to %s", s.Addr)
	err := s.conn.Close()
	s.conn = nil
	return err
}

// IsOpen implements Transport.
func (s *Socket) IsOpen() bool {
	return s.conn != nil
}

// Read implements io.Reader. A ReadTimeout applies to each read.
func (s *Socket) Read(p []byte) (int, error) {
	if s.conn == nil {
		return 0, errNotOpen
	}
	if s.ReadTimeout > 0 {
		err := s.conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		if err != nil {
			return 0, err
		}
	}
	return s.conn.Read(p)
}

// Write implements io.Writer.
func (s *Socket) Write(p []byte) (int, error) {
	if s.conn == nil {
		return 0, errNotOpen
	}
	if log.TraceEnabled() {
		log.Tracef("Writing to %s: % x", s.Addr, p)
	}
	return s.conn.Write(p)
}
