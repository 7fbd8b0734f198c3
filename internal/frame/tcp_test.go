// internal/frame/tcp_test.go
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/goburrow/modbus"
)

// Requests the robot controller answers on port 502.
var (
	poseRequestADU   = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x00, 0x04, 0x01, 0x90, 0x00, 0x06}
	jointsRequestADU = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x00, 0x04, 0x01, 0x0e, 0x00, 0x06}
)

// tcpReply builds a valid read response ADU.
func tcpReply(tid uint16, unit uint8, fc FuncCode, regs ...uint16) []byte {
	pdu := packRegisters([]byte{byte(fc), byte(2 * len(regs))}, regs)
	adu := make([]byte, 7, 7+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(pdu)))
	adu[6] = unit
	return append(adu, pdu...)
}

func TestEncodeTCP_CapturedFrames(t *testing.T) {
	if got := EncodeTCP(1, mustRead(t, 0, ReadInputRegisters, 400, 6)); !bytes.Equal(got, poseRequestADU) {
		t.Fatalf("pose request mismatch:\n got=% x\nwant=% x", []byte(got), poseRequestADU)
	}
	if got := EncodeTCP(1, mustRead(t, 0, ReadInputRegisters, 270, 6)); !bytes.Equal(got, jointsRequestADU) {
		t.Fatalf("joints request mismatch:\n got=% x\nwant=% x", []byte(got), jointsRequestADU)
	}
}

func TestEncodeTCP_LengthCountsFromUnitID(t *testing.T) {
	reqs := []Request{
		mustRead(t, 1, ReadHoldingRegisters, 0, 10),
		mustWrite(t, 1, 0, 1, 2, 3, 4),
	}
	for _, req := range reqs {
		adu := EncodeTCP(42, req)
		length := binary.BigEndian.Uint16(adu[4:6])
		if int(length) != len(adu)-6 {
			t.Fatalf("%s: length field %d, bytes after it %d", req.Function, length, len(adu)-6)
		}
	}
}

func TestEncodeTCP_MatchesGoburrowPackager(t *testing.T) {
	h := modbus.NewTCPClientHandler("localhost:502")
	h.SlaveId = 0

	req := mustRead(t, 0, ReadInputRegisters, 400, 6)
	pdu := req.PDU()

	want, err := h.Encode(&modbus.ProtocolDataUnit{FunctionCode: pdu[0], Data: pdu[1:]})
	if err != nil {
		t.Fatalf("goburrow Encode err=%v", err)
	}
	got := EncodeTCP(binary.BigEndian.Uint16(want[0:2]), req)
	if !bytes.Equal(got, want) {
		t.Fatalf("adu mismatch:\n got=% x\nwant=% x", []byte(got), want)
	}
}

func TestDecodeTCP_RoundTrip(t *testing.T) {
	regs := []uint16{0xfe0c, 0x0123, 0x7fff, 0x8000, 0x0000, 0xffff}

	hdr, res, err := DecodeTCP(tcpReply(5, 0, ReadInputRegisters, regs...), ReadInputRegisters)
	if err != nil {
		t.Fatalf("DecodeTCP err=%v", err)
	}
	if hdr.TransactionID != 5 || hdr.Length != 15 {
		t.Fatalf("header mismatch: %+v", hdr)
	}
	if !equalRegs(res.Registers, regs) {
		t.Fatalf("registers mismatch: got=%04x want=%04x", res.Registers, regs)
	}
	if res.Int16(0) != -500 {
		t.Fatalf("signed view: got=%d want=-500", res.Int16(0))
	}
}

func TestDecodeTCP_ShortFrame(t *testing.T) {
	adu := tcpReply(1, 0, ReadInputRegisters, 1, 2, 3)

	if _, _, err := DecodeTCP(adu[:len(adu)-1], ReadInputRegisters); !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
	if _, _, err := DecodeTCP(adu[:5], ReadInputRegisters); !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame for partial header, got %v", err)
	}
}

func TestDecodeTCP_ProtocolIDMustBeZero(t *testing.T) {
	adu := tcpReply(1, 0, ReadInputRegisters, 1)
	adu[3] = 1

	if _, _, err := DecodeTCP(adu, ReadInputRegisters); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestDecodeTCP_Exception(t *testing.T) {
	adu := []byte{0x00, 0x09, 0x00, 0x00, 0x00, 0x03, 0x00, 0x84, 0x06}

	_, _, err := DecodeTCP(adu, ReadInputRegisters)
	var exc *ExceptionError
	if !errors.As(err, &exc) || exc.Code != ServerDeviceBusy {
		t.Fatalf("expected server-busy exception, got %v", err)
	}
}

func TestTCPFramer_Correlation(t *testing.T) {
	f := NewTCPFramerAt(100)
	req := mustRead(t, 3, ReadHoldingRegisters, 0, 2)

	adu := f.Encode(req)
	if tid := binary.BigEndian.Uint16(adu[0:2]); tid != 100 {
		t.Fatalf("first tid: got=%d want=100", tid)
	}

	if _, err := f.Decode(req, tcpReply(99, 3, ReadHoldingRegisters, 1, 2)); !errors.Is(err, ErrTransactionMismatch) {
		t.Fatalf("expected ErrTransactionMismatch, got %v", err)
	}
	if _, err := f.Decode(req, tcpReply(100, 4, ReadHoldingRegisters, 1, 2)); !errors.Is(err, ErrUnitMismatch) {
		t.Fatalf("expected ErrUnitMismatch, got %v", err)
	}
	res, err := f.Decode(req, tcpReply(100, 3, ReadHoldingRegisters, 1, 2))
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if !equalRegs(res.Registers, []uint16{1, 2}) {
		t.Fatalf("registers mismatch: %v", res.Registers)
	}

	if adu := f.Encode(req); binary.BigEndian.Uint16(adu[0:2]) != 101 {
		t.Fatalf("tid did not advance")
	}
}

func TestTCPRemaining(t *testing.T) {
	adu := tcpReply(1, 0, ReadInputRegisters, 1, 2, 3, 4, 5, 6)

	for i := 0; i <= len(adu); i++ {
		nrem, err := TCPRemaining(adu[:i])
		if err != nil {
			t.Fatalf("@%d: err=%v", i, err)
		}
		if nrem > len(adu)-i {
			t.Fatalf("@%d: remaining %d > %d", i, nrem, len(adu)-i)
		}
		if nrem == 0 && i != len(adu) {
			t.Fatalf("reported complete at %d, want %d", i, len(adu))
		}
	}
}
