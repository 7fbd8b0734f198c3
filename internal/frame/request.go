// internal/frame/request.go
package frame

import (
	"encoding/binary"
	"fmt"
)

// Request is one register read or write addressed to a unit.
// Requests are immutable: constructors copy caller-provided values.
type Request struct {
	UnitID   uint8
	Function FuncCode
	Address  uint16
	Count    uint16

	values []uint16 // writes only
}

// EncodeRead builds a read-registers request (FC 3 or 4).
func EncodeRead(unitID uint8, fc FuncCode, addr, count uint16) (Request, error) {
	if !fc.isRead() {
		return Request{}, fmt.Errorf("%w: %s is not a register read", ErrInvalidArgument, fc)
	}
	if count < 1 || count > MaxReadCount {
		return Request{}, fmt.Errorf("%w: read count %d outside [1,%d]", ErrInvalidArgument, count, MaxReadCount)
	}
	if int(addr)+int(count) > 0x10000 {
		return Request{}, fmt.Errorf("%w: range %d+%d overflows address space", ErrInvalidArgument, addr, count)
	}
	return Request{
		UnitID:   unitID,
		Function: fc,
		Address:  addr,
		Count:    count,
	}, nil
}

// EncodeWrite builds a write request. FC 16 takes 1..123 values,
// FC 6 takes exactly one.
func EncodeWrite(unitID uint8, fc FuncCode, addr uint16, values []uint16) (Request, error) {
	switch fc {
	case WriteMultipleRegisters:
		if len(values) < 1 || len(values) > MaxWriteCount {
			return Request{}, fmt.Errorf("%w: write count %d outside [1,%d]", ErrInvalidArgument, len(values), MaxWriteCount)
		}
	case WriteSingleRegister:
		if len(values) != 1 {
			return Request{}, fmt.Errorf("%w: %s takes exactly one value, got %d", ErrInvalidArgument, fc, len(values))
		}
	default:
		return Request{}, fmt.Errorf("%w: %s is not a register write", ErrInvalidArgument, fc)
	}
	if int(addr)+len(values) > 0x10000 {
		return Request{}, fmt.Errorf("%w: range %d+%d overflows address space", ErrInvalidArgument, addr, len(values))
	}

	v := make([]uint16, len(values))
	copy(v, values)

	return Request{
		UnitID:   unitID,
		Function: fc,
		Address:  addr,
		Count:    uint16(len(v)),
		values:   v,
	}, nil
}

// Values returns a copy of the register values carried by a write request.
func (r Request) Values() []uint16 {
	if r.values == nil {
		return nil
	}
	out := make([]uint16, len(r.values))
	copy(out, r.values)
	return out
}

// PDU returns the protocol data unit: function code and payload.
//
//	FC 3/4:  FC(1) Address(2) Quantity(2)
//	FC 6:    FC(1) Address(2) Value(2)
//	FC 16:   FC(1) Address(2) Quantity(2) ByteCount(1) Values(2*n)
func (r Request) PDU() []byte {
	switch r.Function {
	case WriteSingleRegister:
		pdu := make([]byte, 5)
		pdu[0] = byte(r.Function)
		binary.BigEndian.PutUint16(pdu[1:3], r.Address)
		binary.BigEndian.PutUint16(pdu[3:5], r.values[0])
		return pdu

	case WriteMultipleRegisters:
		pdu := make([]byte, 6, 6+2*len(r.values))
		pdu[0] = byte(r.Function)
		binary.BigEndian.PutUint16(pdu[1:3], r.Address)
		binary.BigEndian.PutUint16(pdu[3:5], r.Count)
		pdu[5] = byte(2 * len(r.values))
		return packRegisters(pdu, r.values)

	default:
		pdu := make([]byte, 5)
		pdu[0] = byte(r.Function)
		binary.BigEndian.PutUint16(pdu[1:3], r.Address)
		binary.BigEndian.PutUint16(pdu[3:5], r.Count)
		return pdu
	}
}

// decodeRequestPDU parses a request PDU for unit.
func decodeRequestPDU(unitID uint8, pdu []byte) (Request, error) {
	if len(pdu) < 5 {
		return Request{}, fmt.Errorf("%w: request pdu has %d bytes", ErrShortFrame, len(pdu))
	}

	fc := FuncCode(pdu[0])
	addr := binary.BigEndian.Uint16(pdu[1:3])
	word := binary.BigEndian.Uint16(pdu[3:5])

	switch fc {
	case ReadHoldingRegisters, ReadInputRegisters:
		if len(pdu) != 5 {
			return Request{}, fmt.Errorf("%w: read request pdu has %d bytes, want 5", ErrMalformed, len(pdu))
		}
		return EncodeRead(unitID, fc, addr, word)

	case WriteSingleRegister:
		if len(pdu) != 5 {
			return Request{}, fmt.Errorf("%w: write-single request pdu has %d bytes, want 5", ErrMalformed, len(pdu))
		}
		return EncodeWrite(unitID, fc, addr, []uint16{word})

	case WriteMultipleRegisters:
		if len(pdu) < 6 {
			return Request{}, fmt.Errorf("%w: write-multiple request pdu has %d bytes", ErrShortFrame, len(pdu))
		}
		byteCount := int(pdu[5])
		if byteCount != 2*int(word) {
			return Request{}, fmt.Errorf("%w: byte count %d does not match quantity %d", ErrMalformed, byteCount, word)
		}
		if len(pdu)-6 < byteCount {
			return Request{}, fmt.Errorf("%w: write-multiple values: got %d bytes, want %d", ErrShortFrame, len(pdu)-6, byteCount)
		}
		return EncodeWrite(unitID, fc, addr, unpackRegisters(pdu[6:6+byteCount]))

	default:
		return Request{}, fmt.Errorf("%w: request %s", ErrUnexpectedFunction, fc)
	}
}

// ---- helpers (big-endian words) ----

func packRegisters(dst []byte, regs []uint16) []byte {
	for _, r := range regs {
		dst = append(dst, byte(r>>8), byte(r))
	}
	return dst
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
