// internal/transport/serial_test.go
package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goburrow/serial"
)

// fakePort replays scripted reads. An entry with nil data returns
// serial.ErrTimeout, like the port does when its read timer expires.
type fakePort struct {
	reads     [][]byte
	readErr   error
	readDelay time.Duration // per read on a silent line
	written   []byte
	closed    bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.closed {
		return 0, errors.New("bad file descriptor")
	}
	if len(p.reads) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		delay := p.readDelay
		if delay == 0 {
			delay = time.Millisecond
		}
		time.Sleep(delay)
		return 0, serial.ErrTimeout
	}
	next := p.reads[0]
	p.reads = p.reads[1:]
	if next == nil {
		return 0, serial.ErrTimeout
	}
	return copy(b, next), nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestOpenSerial_Defaults8N1(t *testing.T) {
	var got *serial.Config
	orig := openPort
	openPort = func(c *serial.Config) (io.ReadWriteCloser, error) {
		got = c
		return &fakePort{}, nil
	}
	defer func() { openPort = orig }()

	s, err := OpenSerial(SerialConfig{
		Device:      "/dev/ttyUSB0",
		BaudRate:    115200,
		ReadTimeout: time.Second,
		MinBytes:    4,
	})
	if err != nil {
		t.Fatalf("OpenSerial err=%v", err)
	}
	defer s.Close()

	if got.Address != "/dev/ttyUSB0" || got.BaudRate != 115200 {
		t.Fatalf("unexpected line: %+v", got)
	}
	if got.DataBits != 8 || got.Parity != "N" || got.StopBits != 1 {
		t.Fatalf("expected 8N1, got %d%s%d", got.DataBits, got.Parity, got.StopBits)
	}
	if got.Timeout != time.Second {
		t.Fatalf("timeout: got=%v want=1s", got.Timeout)
	}
}

func TestOpenSerial_RequiresDeviceAndBaud(t *testing.T) {
	if _, err := OpenSerial(SerialConfig{BaudRate: 9600}); err == nil {
		t.Fatalf("expected error without device")
	}
	if _, err := OpenSerial(SerialConfig{Device: "/dev/ttyS0"}); err == nil {
		t.Fatalf("expected error without baud rate")
	}
}

func TestSerial_RecvReturnsAtMinBytes(t *testing.T) {
	p := &fakePort{reads: [][]byte{{0x09, 0x03}, {0x02, 0x00}, {0x00, 0x59, 0x85}}}
	s := newSerial(p, 4)

	got, err := s.Recv(time.Second)
	if err != nil {
		t.Fatalf("Recv err=%v", err)
	}
	if !bytes.Equal(got, []byte{0x09, 0x03, 0x02, 0x00}) {
		t.Fatalf("first chunk: got=% x", got)
	}

	got, err = s.Recv(time.Second)
	if err != nil {
		t.Fatalf("Recv err=%v", err)
	}
	if !bytes.Equal(got, []byte{0x00, 0x59, 0x85}) {
		t.Fatalf("second chunk: got=% x", got)
	}
}

func TestSerial_RecvReturnsOnLineGap(t *testing.T) {
	p := &fakePort{reads: [][]byte{{0x09, 0x83}, nil, {0x02}}}
	s := newSerial(p, 4)

	got, err := s.Recv(time.Second)
	if err != nil {
		t.Fatalf("Recv err=%v", err)
	}
	if !bytes.Equal(got, []byte{0x09, 0x83}) {
		t.Fatalf("got=% x, want bytes before the gap", got)
	}
}

func TestSerial_RecvTimeout(t *testing.T) {
	s := newSerial(&fakePort{}, 4)

	start := time.Now()
	_, err := s.Recv(30 * time.Millisecond)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatalf("returned before the timeout elapsed")
	}
}

func TestSerial_RecvOverrunBoundedByReadTimeout(t *testing.T) {
	const readTimeout = 40 * time.Millisecond
	s := newSerial(&fakePort{readDelay: readTimeout}, 4)

	start := time.Now()
	_, err := s.Recv(50 * time.Millisecond)
	elapsed := time.Since(start)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	// two reads: 80ms, under 50ms + one read timeout + slack
	if elapsed > 50*time.Millisecond+readTimeout+50*time.Millisecond {
		t.Fatalf("Recv took %v", elapsed)
	}
}

func TestSerial_ReadErrorIsNotTimeout(t *testing.T) {
	s := newSerial(&fakePort{readErr: errors.New("input/output error")}, 4)

	_, err := s.Recv(time.Second)
	var te *Error
	if !errors.As(err, &te) || te.Op != "recv" {
		t.Fatalf("expected recv *Error, got %v", err)
	}
	if IsTimeout(err) {
		t.Fatalf("i/o error reported as timeout")
	}
}

func TestSerial_UseAfterClose(t *testing.T) {
	p := &fakePort{}
	s := newSerial(p, 4)

	if err := s.Send([]byte{0x09, 0x03, 0x07, 0xd0, 0x00, 0x01, 0x85, 0xcf}); err != nil {
		t.Fatalf("Send err=%v", err)
	}
	if len(p.written) != 8 {
		t.Fatalf("written %d bytes, want 8", len(p.written))
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if !p.closed {
		t.Fatalf("port not closed")
	}
	if _, err := s.Recv(time.Second); !errors.Is(err, ErrClosed) {
		t.Fatalf("Recv after Close: expected ErrClosed, got %v", err)
	}
	if err := s.Send([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after Close: expected ErrClosed, got %v", err)
	}
}
