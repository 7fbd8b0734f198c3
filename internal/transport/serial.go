// internal/transport/serial.go
package transport

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/goburrow/serial"
)

// SerialConfig describes the serial line. The zero value of a field means
// the 8N1 default; BaudRate and Device are required.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string // "N", "E", "O"
	StopBits int

	// ReadTimeout is the inter-byte timer of one read. A read in progress
	// cannot be cut short, so Recv on a silent line may return up to one
	// ReadTimeout after its own timeout.
	ReadTimeout time.Duration
	// MinBytes makes Recv return as soon as this many bytes arrived.
	MinBytes int
}

// Serial is a Transport over a serial line.
type Serial struct {
	port     io.ReadWriteCloser
	minBytes int
	closed   atomic.Bool
	buf      [256]byte
}

// openPort is replaced in tests.
var openPort = func(c *serial.Config) (io.ReadWriteCloser, error) {
	return serial.Open(c)
}

// OpenSerial opens and configures the serial device.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Device == "" {
		return nil, &Error{Op: "open", Err: errors.New("device required")}
	}
	if cfg.BaudRate <= 0 {
		return nil, &Error{Op: "open", Err: errors.New("baud rate required")}
	}

	sc := &serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
		Timeout:  cfg.ReadTimeout,
	}
	if cfg.DataBits != 0 {
		sc.DataBits = cfg.DataBits
	}
	if cfg.Parity != "" {
		sc.Parity = cfg.Parity
	}
	if cfg.StopBits != 0 {
		sc.StopBits = cfg.StopBits
	}
	if sc.Timeout <= 0 {
		sc.Timeout = time.Second
	}

	p, err := openPort(sc)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	return newSerial(p, cfg.MinBytes), nil
}

func newSerial(p io.ReadWriteCloser, minBytes int) *Serial {
	if minBytes <= 0 {
		minBytes = 1
	}
	return &Serial{port: p, minBytes: minBytes}
}

func (s *Serial) Send(b []byte) error {
	if s.closed.Load() {
		return &Error{Op: "send", Err: ErrClosed}
	}
	for len(b) > 0 {
		n, err := s.port.Write(b)
		if err != nil {
			return &Error{Op: "send", Err: err}
		}
		b = b[n:]
	}
	return nil
}

// Recv collects bytes until MinBytes arrived or the line goes quiet for
// one read timeout after the first byte. With nothing received it keeps
// waiting until timeout, overrunning it by at most one read timeout.
func (s *Serial) Recv(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	var out []byte

	for {
		if s.closed.Load() {
			return nil, &Error{Op: "recv", Err: ErrClosed}
		}

		n, err := s.port.Read(s.buf[:])
		out = append(out, s.buf[:n]...)
		if len(out) >= s.minBytes {
			return out, nil
		}

		switch {
		case err == nil:
		case errors.Is(err, serial.ErrTimeout):
			if len(out) > 0 {
				return out, nil
			}
		default:
			if s.closed.Load() {
				return nil, &Error{Op: "recv", Err: ErrClosed}
			}
			return nil, &Error{Op: "recv", Err: err}
		}

		if len(out) == 0 && !time.Now().Before(deadline) {
			return nil, &Error{Op: "recv", Err: ErrTimeout}
		}
	}
}

// Close closes the serial port.
func (s *Serial) Close() error {
	if s == nil || s.port == nil {
		return nil
	}
	if s.closed.Swap(true) {
		return nil
	}
	return s.port.Close()
}
