// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-gripper/internal/frame"
)

// ErrExhausted is returned when the predicate never held within MaxAttempts.
var ErrExhausted = errors.New("poller: attempts exhausted")

// Executor runs one request/reply transaction.
// *engine.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, req frame.Request) (frame.Response, error)
}

// Poller repeats a status read until its predicate holds.
// One Poller serves one sequence; it is not reusable after Run.
type Poller struct {
	spec  Spec
	exec  Executor
	log   logrus.FieldLogger
	state State
}

// New creates a poller with immutable spec.
func New(spec Spec, exec Executor, log logrus.FieldLogger) (*Poller, error) {
	if exec == nil {
		return nil, errors.New("poller: executor required")
	}
	if spec.IsComplete == nil {
		return nil, errors.New("poller: completion predicate required")
	}
	if spec.MaxAttempts <= 0 {
		return nil, errors.New("poller: max attempts must be > 0")
	}
	if spec.Delay < 0 {
		return nil, errors.New("poller: delay must be >= 0")
	}
	if spec.Request.Function == 0 {
		return nil, errors.New("poller: status request required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{spec: spec, exec: exec, log: log}, nil
}

// State returns the current state.
func (p *Poller) State() State { return p.state }

// Run drives the sequence to a terminal state.
//
// Completed returns a nil error. Exhausted returns ErrExhausted after exactly
// MaxAttempts unsatisfied replies. Failed returns the first transaction error
// (or ctx.Err during the delay) wrapped with the attempt number; nothing is retried.
func (p *Poller) Run(ctx context.Context) (Result, error) {
	if p.state.Terminal() {
		return Result{State: p.state}, fmt.Errorf("poller: sequence already %s", p.state)
	}

	var res Result
	for {
		res.Attempts++
		log := p.log.WithField("attempt", res.Attempts)

		got, err := p.exec.Execute(ctx, p.spec.Request)
		if err != nil {
			log.WithError(err).Debug("poller: status read failed")
			return p.finish(res, Failed, fmt.Errorf("poller: attempt %d: %w", res.Attempts, err))
		}
		res.Response = got

		if p.spec.IsComplete(got) {
			log.Debug("poller: completed")
			return p.finish(res, Completed, nil)
		}
		log.WithField("registers", fmt.Sprintf("%04x", got.Registers)).Debug("poller: not yet")

		if res.Attempts >= p.spec.MaxAttempts {
			return p.finish(res, Exhausted, ErrExhausted)
		}

		if err := sleep(ctx, p.spec.Delay); err != nil {
			return p.finish(res, Failed, fmt.Errorf("poller: attempt %d: %w", res.Attempts, err))
		}
	}
}

func (p *Poller) finish(res Result, s State, err error) (Result, error) {
	p.state = s
	res.State = s
	return res, err
}

// Until builds and runs a single sequence.
func Until(ctx context.Context, exec Executor, spec Spec, log logrus.FieldLogger) (Result, error) {
	p, err := New(spec, exec, log)
	if err != nil {
		return Result{State: Failed}, err
	}
	return p.Run(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ---- predicates ----

// Matches holds when the reply decodes to the same fields as expected.
func Matches(expected frame.Response) Predicate {
	return func(r frame.Response) bool {
		return r.Equal(expected)
	}
}

// RegistersEqual holds when the reply carries exactly values.
func RegistersEqual(values ...uint16) Predicate {
	want := append([]uint16(nil), values...)
	return func(r frame.Response) bool {
		if len(r.Registers) != len(want) {
			return false
		}
		for i := range want {
			if r.Registers[i] != want[i] {
				return false
			}
		}
		return true
	}
}
