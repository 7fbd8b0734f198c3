// internal/frame/errors.go
package frame

import (
	"errors"
	"fmt"

	"github.com/goburrow/modbus"
)

// ErrInvalidArgument reports malformed request parameters.
var ErrInvalidArgument = errors.New("modbus: invalid argument")

// Decode errors. Every failure returned by the Decode* functions matches
// exactly one of these with errors.Is.
var (
	ErrShortFrame          = errors.New("modbus: short frame")
	ErrChecksumMismatch    = errors.New("modbus: checksum mismatch")
	ErrUnexpectedFunction  = errors.New("modbus: unexpected function code")
	ErrExceptionResponse   = errors.New("modbus: exception response")
	ErrUnitMismatch        = errors.New("modbus: unit id mismatch")
	ErrTransactionMismatch = errors.New("modbus: transaction id mismatch")
	ErrMalformed           = errors.New("modbus: malformed frame")
)

// ExceptionCode is the single byte carried by an exception response.
type ExceptionCode byte

const (
	IllegalFunction         = ExceptionCode(modbus.ExceptionCodeIllegalFunction)
	IllegalDataAddress      = ExceptionCode(modbus.ExceptionCodeIllegalDataAddress)
	IllegalDataValue        = ExceptionCode(modbus.ExceptionCodeIllegalDataValue)
	ServerDeviceFailure     = ExceptionCode(modbus.ExceptionCodeServerDeviceFailure)
	Acknowledge             = ExceptionCode(modbus.ExceptionCodeAcknowledge)
	ServerDeviceBusy        = ExceptionCode(modbus.ExceptionCodeServerDeviceBusy)
	MemoryParityError       = ExceptionCode(modbus.ExceptionCodeMemoryParityError)
	GatewayPathUnavailable  = ExceptionCode(modbus.ExceptionCodeGatewayPathUnavailable)
	GatewayTargetNoResponse = ExceptionCode(modbus.ExceptionCodeGatewayTargetDeviceFailedToRespond)
)

func (c ExceptionCode) String() string {
	switch c {
	case IllegalFunction:
		return "illegal function"
	case IllegalDataAddress:
		return "illegal data address"
	case IllegalDataValue:
		return "illegal data value"
	case ServerDeviceFailure:
		return "server device failure"
	case Acknowledge:
		return "acknowledge"
	case ServerDeviceBusy:
		return "server device busy"
	case MemoryParityError:
		return "memory parity error"
	case GatewayPathUnavailable:
		return "gateway path unavailable"
	case GatewayTargetNoResponse:
		return "gateway target device failed to respond"
	default:
		return fmt.Sprintf("exception 0x%02x", byte(c))
	}
}

// ExceptionError is a device-reported error: the reply carried the
// exception flag on the requested function code.
type ExceptionError struct {
	Function FuncCode
	Code     ExceptionCode
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%s code=%d (%s)", e.Function, byte(e.Code), e.Code)
}

// Is reports ErrExceptionResponse as a match.
func (e *ExceptionError) Is(target error) bool {
	return target == ErrExceptionResponse
}

// Unwrap exposes the exception as a goburrow ModbusError.
func (e *ExceptionError) Unwrap() error {
	return &modbus.ModbusError{
		FunctionCode:  byte(e.Function),
		ExceptionCode: byte(e.Code),
	}
}
