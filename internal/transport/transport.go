// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Transport is a byte-stream endpoint to one device.
// A Transport is used by one caller at a time; the caller owns its lifecycle.
type Transport interface {
	// Send writes one complete frame.
	Send(b []byte) error
	// Recv returns the next bytes available, at least one, waiting up to
	// timeout. A timeout is reported as an error matching ErrTimeout.
	Recv(timeout time.Duration) ([]byte, error)
	// Close releases the endpoint. Later calls fail with ErrClosed.
	Close() error
}

var (
	ErrTimeout = errors.New("transport: timeout")
	ErrClosed  = errors.New("transport: closed")
)

// Error wraps every open, send and recv failure.
type Error struct {
	Op  string // "open", "send", "recv"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, net.ErrClosed) {
		return &Error{Op: op, Err: ErrClosed}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Op: op, Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}
	return &Error{Op: op, Err: err}
}
