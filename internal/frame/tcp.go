// internal/frame/tcp.go
package frame

import (
	"encoding/binary"
	"fmt"
)

// Header is the MBAP header of a Modbus TCP ADU.
type Header struct {
	TransactionID uint16
	ProtocolID    uint16
	Length        uint16 // bytes from UnitID onward
	UnitID        uint8
}

// EncodeTCP builds a Modbus TCP ADU.
//
// MBAP:
//
//	TID(2) PID(2=0) LEN(2) UID(1)
//
// followed by the PDU. LEN counts UID plus the PDU.
func EncodeTCP(tid uint16, req Request) Frame {
	pdu := req.PDU()

	adu := make([]byte, tcpHeaderSize, tcpHeaderSize+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[2:4], 0)
	binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(pdu)))
	adu[6] = req.UnitID

	return Frame(append(adu, pdu...))
}

// DecodeTCP decodes a Modbus TCP response ADU.
func DecodeTCP(adu []byte, expect FuncCode) (Header, Response, error) {
	hdr, err := decodeMBAP(adu)
	if err != nil {
		return Header{}, Response{}, err
	}
	res, err := decodeResponsePDU(hdr.UnitID, adu[tcpHeaderSize:], expect)
	if err != nil {
		return hdr, Response{}, err
	}
	return hdr, res, nil
}

// TCPRemaining returns the bytes still missing from the partially
// received TCP response in partial.
func TCPRemaining(partial []byte) (int, error) {
	if len(partial) < tcpHeaderSize {
		return tcpHeaderSize + 1 - len(partial), nil
	}
	length, err := mbapLength(partial)
	if err != nil {
		return 0, err
	}
	return 6 + int(length) - len(partial), nil
}

// decodeMBAP validates the header against the bytes present in adu.
func decodeMBAP(adu []byte) (Header, error) {
	if len(adu) < tcpHeaderSize {
		return Header{}, fmt.Errorf("%w: mbap header has %d bytes, want %d", ErrShortFrame, len(adu), tcpHeaderSize)
	}
	length, err := mbapLength(adu)
	if err != nil {
		return Header{}, err
	}

	hdr := Header{
		TransactionID: binary.BigEndian.Uint16(adu[0:2]),
		ProtocolID:    binary.BigEndian.Uint16(adu[2:4]),
		Length:        length,
		UnitID:        adu[6],
	}

	got := len(adu) - 6
	if got < int(length) {
		return hdr, fmt.Errorf("%w: mbap length %d, got %d bytes", ErrShortFrame, length, got)
	}
	if got > int(length) {
		return hdr, fmt.Errorf("%w: mbap length %d, got %d bytes", ErrMalformed, length, got)
	}
	return hdr, nil
}

func mbapLength(adu []byte) (uint16, error) {
	if pid := binary.BigEndian.Uint16(adu[2:4]); pid != 0 {
		return 0, fmt.Errorf("%w: protocol id %d, want 0", ErrMalformed, pid)
	}
	length := binary.BigEndian.Uint16(adu[4:6])
	// UID + FC at minimum, UID + full PDU at most
	if length < 2 || int(length) > 1+MaxPDU {
		return 0, fmt.Errorf("%w: mbap length %d outside [2,%d]", ErrMalformed, length, 1+MaxPDU)
	}
	return length, nil
}
