// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/modbus-gripper/internal/frame"
)

// State of a poll-until sequence.
type State int

const (
	Polling State = iota
	Completed
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further attempt follows s.
func (s State) Terminal() bool {
	return s != Polling
}

// Predicate decides whether a decoded status reply means "done".
type Predicate func(frame.Response) bool

// Policy bounds a poll-until sequence.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Spec describes one poll-until sequence. Created per operation.
type Spec struct {
	Request     frame.Request
	MaxAttempts int
	Delay       time.Duration
	IsComplete  Predicate
}

// Result is the outcome of Run.
type Result struct {
	State    State
	Attempts int // status reads issued, the failing one included

	// Response is the last decoded status reply; zero if none was decoded.
	Response frame.Response
}

// Reading is one result produced by the fixed-interval sampler.
type Reading struct {
	At       time.Time
	Response frame.Response
	Err      error // non-nil means this tick failed
}
