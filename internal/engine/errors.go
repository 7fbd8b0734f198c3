// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"

	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/transport"
)

// Kind classifies a failed transaction.
type Kind int

const (
	KindIO        Kind = iota + 1 // transport-level failure, including timeout
	KindProtocol                  // malformed or mismatched reply
	KindException                 // device-reported exception
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindException:
		return "exception"
	default:
		return "unknown"
	}
}

// Codes reported by Error.Code for non-exception kinds. Exception
// failures report the device exception code (1..255).
const (
	CodeIO       uint16 = 0x100
	CodeTimeout  uint16 = 0x101
	CodeProtocol uint16 = 0x200
)

// Error is the single error type returned by Execute.
type Error struct {
	Kind  Kind
	Stage string // "encode", "send", "recv", "decode"
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("modbus %s error at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the transaction failed waiting for the reply.
func (e *Error) Timeout() bool {
	return e.Kind == KindIO && transport.IsTimeout(e.Err)
}

// Code returns a stable numeric code for status reporting.
func (e *Error) Code() uint16 {
	switch e.Kind {
	case KindException:
		var exc *frame.ExceptionError
		if errors.As(e.Err, &exc) {
			return uint16(exc.Code)
		}
		return CodeProtocol
	case KindIO:
		if e.Timeout() {
			return CodeTimeout
		}
		return CodeIO
	default:
		return CodeProtocol
	}
}

// KindOf returns the Kind of an engine error, or 0 for other errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func ioError(stage string, err error) error {
	return &Error{Kind: KindIO, Stage: stage, Err: err}
}

func decodeError(err error) error {
	if errors.Is(err, frame.ErrExceptionResponse) {
		return &Error{Kind: KindException, Stage: "decode", Err: err}
	}
	return &Error{Kind: KindProtocol, Stage: "decode", Err: err}
}

// CodeOf extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func CodeOf(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return 1
}
