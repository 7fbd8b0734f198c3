// internal/frame/response.go
package frame

import (
	"encoding/binary"
	"fmt"
)

// Response is the decoded reply to one Request.
//
// Reads fill Registers. Write echoes fill Address and Count; a
// write-single echo also carries the written value in Registers.
type Response struct {
	UnitID    uint8
	Function  FuncCode
	Address   uint16
	Count     uint16
	Registers []uint16
}

// Equal compares the decoded field set.
func (r Response) Equal(o Response) bool {
	if r.UnitID != o.UnitID || r.Function != o.Function ||
		r.Address != o.Address || r.Count != o.Count {
		return false
	}
	if len(r.Registers) != len(o.Registers) {
		return false
	}
	for i := range r.Registers {
		if r.Registers[i] != o.Registers[i] {
			return false
		}
	}
	return true
}

// Int16 returns register i reinterpreted as a signed word.
func (r Response) Int16(i int) int16 {
	return int16(r.Registers[i])
}

// decodeResponsePDU parses a response PDU. The PDU length must be exact.
func decodeResponsePDU(unitID uint8, pdu []byte, expect FuncCode) (Response, error) {
	if len(pdu) < 2 {
		return Response{}, fmt.Errorf("%w: response pdu has %d bytes", ErrShortFrame, len(pdu))
	}

	if pdu[0]&ExceptionFlag != 0 {
		fc := FuncCode(pdu[0] &^ ExceptionFlag)
		if fc != expect {
			return Response{}, fmt.Errorf("%w: exception for %s, want %s", ErrUnexpectedFunction, fc, expect)
		}
		if len(pdu) != 2 {
			return Response{}, fmt.Errorf("%w: exception pdu has %d bytes, want 2", ErrMalformed, len(pdu))
		}
		return Response{}, &ExceptionError{Function: fc, Code: ExceptionCode(pdu[1])}
	}

	fc := FuncCode(pdu[0])
	if fc != expect {
		return Response{}, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedFunction, fc, expect)
	}

	res := Response{UnitID: unitID, Function: fc}

	switch fc {
	case ReadHoldingRegisters, ReadInputRegisters:
		// payload[0] = byte count, remaining = registers big-endian
		byteCount := int(pdu[1])
		if byteCount%2 != 0 {
			return Response{}, fmt.Errorf("%w: read byte count %d not even", ErrMalformed, byteCount)
		}
		got := len(pdu) - 2
		if got < byteCount {
			return Response{}, fmt.Errorf("%w: registers: got %d bytes, want %d", ErrShortFrame, got, byteCount)
		}
		if got > byteCount {
			return Response{}, fmt.Errorf("%w: %d bytes after declared registers", ErrMalformed, got-byteCount)
		}
		res.Registers = unpackRegisters(pdu[2 : 2+byteCount])
		res.Count = uint16(byteCount / 2)

	case WriteSingleRegister, WriteMultipleRegisters:
		// echo: address(2) + quantity or value(2)
		if len(pdu) < 5 {
			return Response{}, fmt.Errorf("%w: write echo has %d bytes, want 5", ErrShortFrame, len(pdu))
		}
		if len(pdu) > 5 {
			return Response{}, fmt.Errorf("%w: write echo has %d bytes, want 5", ErrMalformed, len(pdu))
		}
		res.Address = binary.BigEndian.Uint16(pdu[1:3])
		word := binary.BigEndian.Uint16(pdu[3:5])
		if fc == WriteSingleRegister {
			res.Count = 1
			res.Registers = []uint16{word}
		} else {
			res.Count = word
		}

	default:
		return Response{}, fmt.Errorf("%w: cannot decode %s", ErrUnexpectedFunction, fc)
	}

	return res, nil
}

// responsePDUSize returns the full size of a response PDU given at least
// its first two bytes (function code and byte count or address high).
func responsePDUSize(pdu []byte) (int, error) {
	if pdu[0]&ExceptionFlag != 0 {
		return 2, nil
	}
	switch FuncCode(pdu[0]) {
	case ReadHoldingRegisters, ReadInputRegisters:
		return 2 + int(pdu[1]), nil
	case WriteSingleRegister, WriteMultipleRegisters:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: cannot size %s", ErrUnexpectedFunction, FuncCode(pdu[0]))
	}
}
