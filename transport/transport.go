// Package transport provides the byte streams simpleRPC devices are reached
// over: serial lines and raw TCP sockets.
package transport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mdzio/go-logging"
)

// SocketScheme prefixes socket addresses, e.g. socket://192.168.1.50:1025.
const SocketScheme = "socket://"

// DefaultBaudRate is used for serial lines if no baud rate is specified.
const DefaultBaudRate = 9600

var log = logging.Get("simplerpc-transport")

// Transport is a byte stream to a device. Read blocks until data is
// available or the transport specific timeout expires.
type Transport interface {
	io.ReadWriter
	Open() error
	// Close releases the stream. Closing a closed transport is not an error.
	Close() error
	IsOpen() bool
}

// ConnectionError is returned if a transport can not be opened.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("Connecting to %s failed: %v", e.Addr, e.Err)
}

// Unwrap returns the cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Options configure a transport.
type Options struct {
	// serial lines only, 0 selects DefaultBaudRate
	BaudRate int
	// 0 blocks reads indefinitely
	ReadTimeout time.Duration
}

// New creates an unopened transport for an address. Addresses starting with
// socket:// select a TCP socket, everything else is a serial device path.
func New(addr string, opts Options) (Transport, error) {
	if strings.HasPrefix(addr, SocketScheme) {
		hostPort := strings.TrimPrefix(addr, SocketScheme)
		if hostPort == "" {
			return nil, fmt.Errorf("Missing host in address %s", addr)
		}
		return &Socket{Addr: hostPort, ReadTimeout: opts.ReadTimeout}, nil
	}
	if strings.Contains(addr, "://") {
		return nil, fmt.Errorf("Unsupported address scheme: %s", addr)
	}
	if addr == "" {
		return nil, fmt.Errorf("Missing device address")
	}
	baud := opts.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	return &Serial{Name: addr, BaudRate: baud, ReadTimeout: opts.ReadTimeout}, nil
}
