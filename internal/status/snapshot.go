// internal/status/snapshot.go
package status

import (
	"fmt"
	"time"

	"github.com/tamzrod/modbus-gripper/internal/engine"
)

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy link.
const HealthOK uint16 = 1

// HealthError represents a failing link.
const HealthError uint16 = 2

// maxSeconds caps SecondsInError.
const maxSeconds = 65535

// Snapshot is the link health derived from a stream of transaction outcomes.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

func (s Snapshot) String() string {
	var h string
	switch s.Health {
	case HealthOK:
		h = "ok"
	case HealthError:
		h = "error"
	default:
		h = "unknown"
	}
	if s.Health == HealthError {
		return fmt.Sprintf("%s code=0x%04x for=%ds", h, s.LastErrorCode, s.SecondsInError)
	}
	return h
}

// Tracker folds transaction outcomes into a Snapshot.
// Not safe for concurrent use.
type Tracker struct {
	snap       Snapshot
	errorSince time.Time
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe records the outcome of one transaction at time at and reports
// whether health or error code changed. Seconds in error only advance;
// they do not by themselves count as a change.
func (t *Tracker) Observe(at time.Time, err error) bool {
	if err == nil {
		changed := t.snap.Health != HealthOK || t.snap.LastErrorCode != 0
		// Reset on recovery.
		t.snap = Snapshot{Health: HealthOK}
		t.errorSince = time.Time{}
		return changed
	}

	code := engine.CodeOf(err)
	changed := t.snap.Health != HealthError || t.snap.LastErrorCode != code

	if t.snap.Health != HealthError {
		t.errorSince = at
	}
	t.snap.Health = HealthError
	t.snap.LastErrorCode = code

	secs := int64(at.Sub(t.errorSince) / time.Second)
	if secs > maxSeconds {
		secs = maxSeconds
	}
	if secs < 0 {
		secs = 0
	}
	t.snap.SecondsInError = uint16(secs)
	return changed
}
