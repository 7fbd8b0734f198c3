// internal/transport/transporttest/script.go

// Package transporttest provides an in-memory Transport for tests.
package transporttest

import (
	"sync"
	"time"

	"github.com/tamzrod/modbus-gripper/internal/transport"
)

// Responder returns the chunks a device sends back for one request.
// Returning nil leaves the line silent, so the next Recv times out.
type Responder func(req []byte) [][]byte

// Script is a Transport driven by a Responder.
type Script struct {
	mu      sync.Mutex
	respond Responder
	pending [][]byte
	sent    [][]byte
	closed  bool
}

// New returns a Script transport answering with respond.
func New(respond Responder) *Script {
	return &Script{respond: respond}
}

// Replies answers the n-th request with the n-th reply, then stays silent.
func Replies(replies ...[]byte) *Script {
	n := 0
	return New(func([]byte) [][]byte {
		if n >= len(replies) {
			return nil
		}
		r := replies[n]
		n++
		return [][]byte{r}
	})
}

func (s *Script) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &transport.Error{Op: "send", Err: transport.ErrClosed}
	}
	req := append([]byte(nil), b...)
	s.sent = append(s.sent, req)
	s.pending = append(s.pending, s.respond(req)...)
	return nil
}

// Recv returns the next pending chunk; a silent line times out at once.
func (s *Script) Recv(time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, &transport.Error{Op: "recv", Err: transport.ErrClosed}
	}
	if len(s.pending) == 0 {
		return nil, &transport.Error{Op: "recv", Err: transport.ErrTimeout}
	}
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk, nil
}

func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sent returns every frame written so far.
func (s *Script) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}
