// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/transport"
)

// DefaultTimeout bounds one transaction when Options.Timeout is zero.
const DefaultTimeout = time.Second

// Options tune an Engine.
type Options struct {
	// Timeout bounds the wait for a complete reply, counted from the end
	// of the request transmission.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Engine pairs one request with its reply over a caller-owned Transport.
// One transaction is in flight at a time; Execute never retries.
type Engine struct {
	mu      sync.Mutex
	tr      transport.Transport
	framer  frame.Framer
	timeout time.Duration
	log     logrus.FieldLogger
}

// New creates an engine. The engine does not own tr: closing it is the
// caller's job, and closing it aborts a pending Execute.
func New(tr transport.Transport, framer frame.Framer, opts Options) (*Engine, error) {
	if tr == nil {
		return nil, errors.New("engine: transport required")
	}
	if framer == nil {
		return nil, errors.New("engine: framer required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Engine{
		tr:      tr,
		framer:  framer,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}, nil
}

// Execute sends req, waits for the matching reply and decodes it.
//
// Failures are *Error values: KindIO for send/recv failures (timeouts
// included), KindProtocol for replies that cannot be decoded or do not
// match req, KindException for device exception replies.
func (e *Engine) Execute(ctx context.Context, req frame.Request) (frame.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return frame.Response{}, ioError("send", err)
	}

	adu := e.framer.Encode(req)
	log := e.log.WithFields(logrus.Fields{
		"unit": req.UnitID,
		"fc":   req.Function.String(),
		"addr": req.Address,
	})
	log.WithField("adu", adu.String()).Debug("modbus: send")

	if err := e.tr.Send(adu); err != nil {
		return frame.Response{}, ioError("send", err)
	}

	raw, err := e.receive(ctx, req)
	if err != nil {
		return frame.Response{}, err
	}
	log.WithField("adu", frame.Frame(raw).String()).Debug("modbus: recv")

	res, err := e.framer.Decode(req, raw)
	if err != nil {
		return frame.Response{}, decodeError(err)
	}
	return res, nil
}

// receive accumulates chunks until the framer reports a complete ADU.
//
// Sizing reads fields that the checksum has not covered yet. When that
// fails, or the line goes quiet with bytes pending, the bytes are decoded
// anyway so a corrupted reply reports ErrChecksumMismatch instead of a
// sizing error or a timeout.
func (e *Engine) receive(ctx context.Context, req frame.Request) ([]byte, error) {
	deadline := time.Now().Add(e.timeout)
	buf := make([]byte, 0, frame.MaxADU)

	for {
		nrem, err := e.framer.Remaining(buf)
		if err != nil {
			if cerr := e.corrupt(req, buf); cerr != nil {
				return nil, cerr
			}
			return nil, decodeError(err)
		}
		if nrem <= 0 {
			if nrem < 0 {
				e.log.WithField("excess", -nrem).Debug("modbus: discarding bytes after reply")
				buf = buf[:len(buf)+nrem]
			}
			return buf, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, ioError("recv", err)
		}
		left := time.Until(deadline)
		if left <= 0 {
			if cerr := e.corrupt(req, buf); cerr != nil {
				return nil, cerr
			}
			return nil, ioError("recv", &transport.Error{
				Op:  "recv",
				Err: fmt.Errorf("%w: %d bytes of reply missing", transport.ErrTimeout, nrem),
			})
		}

		chunk, err := e.tr.Recv(left)
		if err != nil {
			if transport.IsTimeout(err) {
				if cerr := e.corrupt(req, buf); cerr != nil {
					return nil, cerr
				}
			}
			return nil, ioError("recv", err)
		}
		buf = append(buf, chunk...)
	}
}

// corrupt returns a protocol error when buf fails its checksum, nil otherwise.
func (e *Engine) corrupt(req frame.Request, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	_, err := e.framer.Decode(req, buf)
	if !errors.Is(err, frame.ErrChecksumMismatch) {
		return nil
	}
	e.log.WithField("adu", frame.Frame(buf).String()).Debug("modbus: corrupted reply")
	return decodeError(err)
}
