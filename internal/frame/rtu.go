// internal/frame/rtu.go
package frame

import "fmt"

// EncodeRTU builds a serial ADU:
//
//	UnitID(1) PDU(n) CRC(2, low byte first)
func EncodeRTU(req Request) Frame {
	pdu := req.PDU()
	adu := make([]byte, 0, rtuHeaderSize+len(pdu)+rtuCRCSize)
	adu = append(adu, req.UnitID)
	adu = append(adu, pdu...)
	return Frame(appendCRC(adu))
}

// DecodeRTU decodes a serial response ADU.
//
// The CRC is checked before any field is trusted, so corruption anywhere
// in the frame reports ErrChecksumMismatch.
func DecodeRTU(adu []byte, expect FuncCode) (Response, error) {
	if len(adu) < rtuMinSize {
		return Response{}, fmt.Errorf("%w: rtu frame has %d bytes, want at least %d", ErrShortFrame, len(adu), rtuMinSize)
	}
	if !checkCRC(adu) {
		return Response{}, fmt.Errorf("%w: rtu frame % x", ErrChecksumMismatch, adu)
	}
	return decodeResponsePDU(adu[0], adu[rtuHeaderSize:len(adu)-rtuCRCSize], expect)
}

// DecodeRTURequest decodes a serial request ADU.
func DecodeRTURequest(adu []byte) (Request, error) {
	if len(adu) < rtuHeaderSize+5+rtuCRCSize {
		return Request{}, fmt.Errorf("%w: rtu request has %d bytes", ErrShortFrame, len(adu))
	}
	if !checkCRC(adu) {
		return Request{}, fmt.Errorf("%w: rtu request % x", ErrChecksumMismatch, adu)
	}
	return decodeRequestPDU(adu[0], adu[rtuHeaderSize:len(adu)-rtuCRCSize])
}

// RTURemaining returns the bytes still missing from the partially
// received serial response in partial.
func RTURemaining(partial []byte) (int, error) {
	if len(partial) < 3 {
		return rtuMinSize - len(partial), nil
	}
	n, err := responsePDUSize(partial[rtuHeaderSize:])
	if err != nil {
		return 0, err
	}
	return rtuHeaderSize + n + rtuCRCSize - len(partial), nil
}
