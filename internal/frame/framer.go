// internal/frame/framer.go
package frame

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame is one complete protocol message (ADU) as sent on the wire.
// Frames are never modified after construction.
type Frame []byte

func (f Frame) String() string {
	return fmt.Sprintf("% x", []byte(f))
}

// Framer is the transport-specific framing strategy used by the engine.
// A Framer handles one transaction at a time.
type Framer interface {
	// Encode wraps req into an ADU ready to send.
	Encode(req Request) Frame
	// Remaining reports how many more bytes complete the response ADU that
	// starts with partial. Zero means complete; negative means partial
	// holds that many excess bytes.
	Remaining(partial []byte) (int, error)
	// Decode validates adu as the reply to the last encoded req.
	Decode(req Request, adu []byte) (Response, error)
}

// ---- RTU ----

// RTUFramer frames requests for a serial line.
type RTUFramer struct{}

func (RTUFramer) Encode(req Request) Frame { return EncodeRTU(req) }

func (RTUFramer) Remaining(partial []byte) (int, error) { return RTURemaining(partial) }

func (RTUFramer) Decode(req Request, adu []byte) (Response, error) {
	res, err := DecodeRTU(adu, req.Function)
	if err != nil && !errors.Is(err, ErrExceptionResponse) {
		return Response{}, err
	}
	if adu[0] != req.UnitID {
		return Response{}, fmt.Errorf("%w: got=%d want=%d", ErrUnitMismatch, adu[0], req.UnitID)
	}
	return res, err
}

// ---- TCP ----

// TCPFramer frames requests with an MBAP header. It owns the
// transaction id counter of one connection.
type TCPFramer struct {
	tid     uint16
	pending uint16
}

// NewTCPFramer returns a framer whose transaction ids start at a random value.
func NewTCPFramer() *TCPFramer {
	f := &TCPFramer{}

	// Randomize starting TID (best effort).
	var b [2]byte
	if _, err := rand.Read(b[:]); err == nil {
		f.tid = binary.BigEndian.Uint16(b[:])
	}
	return f
}

// NewTCPFramerAt returns a framer whose next transaction id is next.
func NewTCPFramerAt(next uint16) *TCPFramer {
	return &TCPFramer{tid: next - 1}
}

func (f *TCPFramer) Encode(req Request) Frame {
	f.tid++
	f.pending = f.tid
	return EncodeTCP(f.pending, req)
}

func (f *TCPFramer) Remaining(partial []byte) (int, error) { return TCPRemaining(partial) }

func (f *TCPFramer) Decode(req Request, adu []byte) (Response, error) {
	hdr, err := decodeMBAP(adu)
	if err != nil {
		return Response{}, err
	}
	// Correlate before decoding the PDU.
	if hdr.TransactionID != f.pending {
		return Response{}, fmt.Errorf("%w: got=%d want=%d", ErrTransactionMismatch, hdr.TransactionID, f.pending)
	}
	if hdr.UnitID != req.UnitID {
		return Response{}, fmt.Errorf("%w: got=%d want=%d", ErrUnitMismatch, hdr.UnitID, req.UnitID)
	}
	return decodeResponsePDU(hdr.UnitID, adu[tcpHeaderSize:], req.Function)
}
