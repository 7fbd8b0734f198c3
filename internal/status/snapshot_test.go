// internal/status/snapshot_test.go
package status

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tamzrod/modbus-gripper/internal/engine"
	"github.com/tamzrod/modbus-gripper/internal/transport"
)

func TestTracker_Transitions(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(1000, 0)

	if tr.Snapshot().Health != HealthUnknown {
		t.Fatalf("initial health: %d", tr.Snapshot().Health)
	}

	if !tr.Observe(t0, nil) {
		t.Fatalf("unknown -> ok not reported")
	}
	if tr.Observe(t0.Add(time.Second), nil) {
		t.Fatalf("ok -> ok reported as change")
	}

	timeout := &engine.Error{Kind: engine.KindIO, Stage: "recv", Err: &transport.Error{Op: "recv", Err: transport.ErrTimeout}}
	if !tr.Observe(t0.Add(2*time.Second), timeout) {
		t.Fatalf("ok -> error not reported")
	}
	s := tr.Snapshot()
	if s.Health != HealthError || s.LastErrorCode != engine.CodeTimeout || s.SecondsInError != 0 {
		t.Fatalf("after first error: %+v", s)
	}

	if tr.Observe(t0.Add(5*time.Second), fmt.Errorf("robot: pose: %w", timeout)) {
		t.Fatalf("same error reported as change")
	}
	if got := tr.Snapshot().SecondsInError; got != 3 {
		t.Fatalf("seconds in error: got=%d want=3", got)
	}

	if !tr.Observe(t0.Add(6*time.Second), errors.New("other")) {
		t.Fatalf("error code change not reported")
	}
	if tr.Snapshot().LastErrorCode != 1 {
		t.Fatalf("generic code: %d", tr.Snapshot().LastErrorCode)
	}

	if !tr.Observe(t0.Add(7*time.Second), nil) {
		t.Fatalf("recovery not reported")
	}
	if s := tr.Snapshot(); s != (Snapshot{Health: HealthOK}) {
		t.Fatalf("after recovery: %+v", s)
	}
}

func TestTracker_SecondsCapped(t *testing.T) {
	var tr Tracker
	t0 := time.Unix(0, 0)
	err := errors.New("down")

	tr.Observe(t0, err)
	tr.Observe(t0.Add(100000*time.Second), err)
	if got := tr.Snapshot().SecondsInError; got != 65535 {
		t.Fatalf("got=%d want=65535", got)
	}
}

func TestSnapshot_String(t *testing.T) {
	if s := (Snapshot{Health: HealthOK}).String(); s != "ok" {
		t.Fatalf("got=%q", s)
	}
	if s := (Snapshot{Health: HealthError, LastErrorCode: 0x101, SecondsInError: 4}).String(); s != "error code=0x0101 for=4s" {
		t.Fatalf("got=%q", s)
	}
}
