// cmd/gripper/main_test.go
package main

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tamzrod/modbus-gripper/internal/engine"
	"github.com/tamzrod/modbus-gripper/internal/transport"
	"github.com/tamzrod/modbus-gripper/internal/transport/transporttest"
)

func TestFail_ClosesTransportBeforeExit(t *testing.T) {
	var code int
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	logger, hook := test.NewNullLogger()
	tr := transporttest.Replies()

	fail(logger.WithField("command", "x"), &engine.Error{Kind: engine.KindProtocol, Stage: "decode", Err: errors.New("bad")}, tr)

	if code != 1 {
		t.Fatalf("exit code: got=%d want=1", code)
	}
	if err := tr.Send([]byte{0x00}); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("transport still open: %v", err)
	}
	last := hook.LastEntry()
	if last == nil || last.Message != "fail" || last.Data["code"] != engine.CodeProtocol {
		t.Fatalf("unexpected log entry: %+v", last)
	}
}
