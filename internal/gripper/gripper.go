// internal/gripper/gripper.go
package gripper

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/poller"
)

// Register map of the gripper.
const (
	DefaultUnitID uint8 = 9

	CommandAddress uint16 = 0x03e8 // 3 command registers
	StatusAddress  uint16 = 0x07d0 // up to 3 status registers
	StatusCount    uint16 = 3
)

// Command blocks written to CommandAddress.
var (
	activateCommand = []uint16{0x0000, 0x0000, 0x0000}
	closeCommand    = []uint16{0x0900, 0x00ff, 0xffff} // full speed, full force
	openCommand     = []uint16{0x0900, 0x0000, 0xffff} // full speed, full force
)

// Status words that mark a finished motion.
var (
	activatedStatus = []uint16{0x0000}
	closedStatus    = []uint16{0xf900}
	openedStatus    = []uint16{0xf900, 0x0000, 0x0300}
)

// ErrEchoMismatch is returned when the write echo does not repeat the command.
var ErrEchoMismatch = errors.New("gripper: write echo mismatch")

// Options configure a Gripper.
type Options struct {
	UnitID uint8 // 0 means DefaultUnitID
	Poll   poller.Policy
	Logger logrus.FieldLogger
}

// Gripper drives one gripper over a Modbus RTU engine.
type Gripper struct {
	exec   poller.Executor
	unitID uint8
	policy poller.Policy
	log    logrus.FieldLogger
}

// New creates a gripper driver. It does not talk to the device.
func New(exec poller.Executor, opts Options) (*Gripper, error) {
	if exec == nil {
		return nil, errors.New("gripper: executor required")
	}
	if opts.UnitID == 0 {
		opts.UnitID = DefaultUnitID
	}
	if opts.Poll.MaxAttempts <= 0 {
		return nil, errors.New("gripper: poll max attempts must be > 0")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Gripper{
		exec:   exec,
		unitID: opts.UnitID,
		policy: opts.Poll,
		log:    opts.Logger.WithField("unit", opts.UnitID),
	}, nil
}

// Activate resets the gripper and waits until activation completes.
func (g *Gripper) Activate(ctx context.Context) (poller.Result, error) {
	return g.run(ctx, "activate", activateCommand, 1, activatedStatus)
}

// Close grips with full speed and force and waits for the motion to end.
func (g *Gripper) Close(ctx context.Context) (poller.Result, error) {
	return g.run(ctx, "close", closeCommand, 1, closedStatus)
}

// Open releases with full speed and force and waits for the motion to end.
func (g *Gripper) Open(ctx context.Context) (poller.Result, error) {
	return g.run(ctx, "open", openCommand, StatusCount, openedStatus)
}

// Status reads the full status block once.
func (g *Gripper) Status(ctx context.Context) (Status, error) {
	req, err := frame.EncodeRead(g.unitID, frame.ReadHoldingRegisters, StatusAddress, StatusCount)
	if err != nil {
		return Status{}, err
	}
	res, err := g.exec.Execute(ctx, req)
	if err != nil {
		return Status{}, fmt.Errorf("gripper: status: %w", err)
	}
	if len(res.Registers) != int(StatusCount) {
		return Status{}, fmt.Errorf("gripper: status: got %d registers, want %d", len(res.Registers), StatusCount)
	}
	var s Status
	copy(s.Registers[:], res.Registers)
	return s, nil
}

func (g *Gripper) run(ctx context.Context, op string, command []uint16, statusCount uint16, done []uint16) (poller.Result, error) {
	log := g.log.WithField("op", op)

	if err := g.write(ctx, command); err != nil {
		return poller.Result{State: poller.Failed}, fmt.Errorf("gripper: %s: %w", op, err)
	}
	log.Debug("gripper: command accepted")

	status, err := frame.EncodeRead(g.unitID, frame.ReadHoldingRegisters, StatusAddress, statusCount)
	if err != nil {
		return poller.Result{State: poller.Failed}, err
	}

	res, err := poller.Until(ctx, g.exec, g.policy.Build(status, poller.RegistersEqual(done...)), log)
	if err != nil {
		return res, fmt.Errorf("gripper: %s: %w", op, err)
	}
	log.WithField("attempts", res.Attempts).Info("gripper: done")
	return res, nil
}

// write sends one command block and checks the echo.
func (g *Gripper) write(ctx context.Context, values []uint16) error {
	req, err := frame.EncodeWrite(g.unitID, frame.WriteMultipleRegisters, CommandAddress, values)
	if err != nil {
		return err
	}
	echo, err := g.exec.Execute(ctx, req)
	if err != nil {
		return err
	}
	if echo.Address != req.Address || echo.Count != req.Count {
		return fmt.Errorf("%w: got addr=%d count=%d, want addr=%d count=%d",
			ErrEchoMismatch, echo.Address, echo.Count, req.Address, req.Count)
	}
	return nil
}
