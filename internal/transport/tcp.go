// internal/transport/tcp.go
package transport

import (
	"errors"
	"net"
	"sync/atomic"
	"time"
)

// TCPConfig is minimal connection config.
type TCPConfig struct {
	Endpoint string // host:port
	Timeout  time.Duration
}

// TCP is a Transport over one Modbus TCP connection.
type TCP struct {
	conn    net.Conn
	timeout time.Duration
	closed  atomic.Bool
	buf     [512]byte
}

// DialTCP connects to cfg.Endpoint.
func DialTCP(cfg TCPConfig) (*TCP, error) {
	if cfg.Endpoint == "" {
		return nil, &Error{Op: "open", Err: errors.New("endpoint required")}
	}

	conn, err := net.DialTimeout("tcp", cfg.Endpoint, cfg.Timeout)
	if err != nil {
		return nil, opError("open", err)
	}
	return NewTCP(conn, cfg.Timeout), nil
}

// NewTCP wraps an established connection. timeout bounds each write.
func NewTCP(conn net.Conn, timeout time.Duration) *TCP {
	return &TCP{conn: conn, timeout: timeout}
}

func (t *TCP) Send(b []byte) error {
	if t.closed.Load() {
		return &Error{Op: "send", Err: ErrClosed}
	}
	if t.timeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}
	for len(b) > 0 {
		n, err := t.conn.Write(b)
		if err != nil {
			return opError("send", err)
		}
		b = b[n:]
	}
	return nil
}

func (t *TCP) Recv(timeout time.Duration) ([]byte, error) {
	if t.closed.Load() {
		return nil, &Error{Op: "recv", Err: ErrClosed}
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, opError("recv", err)
	}

	n, err := t.conn.Read(t.buf[:])
	if n > 0 {
		out := make([]byte, n)
		copy(out, t.buf[:n])
		return out, nil
	}
	if err == nil {
		err = errors.New("empty read")
	}
	return nil, opError("recv", err)
}

// Close closes the TCP connection.
func (t *TCP) Close() error {
	if t == nil || t.conn == nil {
		return nil
	}
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}
