// internal/frame/constants.go
package frame

import (
	"fmt"

	"github.com/goburrow/modbus"
)

// FuncCode is a Modbus function code.
type FuncCode byte

// Function codes understood by the codec.
const (
	ReadHoldingRegisters   = FuncCode(modbus.FuncCodeReadHoldingRegisters)   // FC 3
	ReadInputRegisters     = FuncCode(modbus.FuncCodeReadInputRegisters)     // FC 4
	WriteSingleRegister    = FuncCode(modbus.FuncCodeWriteSingleRegister)    // FC 6
	WriteMultipleRegisters = FuncCode(modbus.FuncCodeWriteMultipleRegisters) // FC 16
)

// ExceptionFlag is set on the function code of an exception response.
const ExceptionFlag byte = 0x80

// ---- GEOMETRY ----

// MaxReadCount is the largest register count one read request may ask for.
const MaxReadCount = 125

// MaxWriteCount is the largest register count one write-multiple request may carry.
const MaxWriteCount = 123

// ---- SIZES (bytes) ----

const (
	MaxPDU = 253
	MaxADU = 260

	rtuHeaderSize = 1 // unit id
	rtuCRCSize    = 2
	rtuMinSize    = 5 // unit + fc + exception code + crc

	tcpHeaderSize = 7 // MBAP
)

func (fc FuncCode) String() string {
	switch fc {
	case ReadHoldingRegisters:
		return "read-holding-registers"
	case ReadInputRegisters:
		return "read-input-registers"
	case WriteSingleRegister:
		return "write-single-register"
	case WriteMultipleRegisters:
		return "write-multiple-registers"
	default:
		return fmt.Sprintf("fc-0x%02x", byte(fc))
	}
}

func (fc FuncCode) isRead() bool {
	return fc == ReadHoldingRegisters || fc == ReadInputRegisters
}

func (fc FuncCode) isWrite() bool {
	return fc == WriteSingleRegister || fc == WriteMultipleRegisters
}
