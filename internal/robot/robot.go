// internal/robot/robot.go
package robot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/modbus-gripper/internal/frame"
	"github.com/tamzrod/modbus-gripper/internal/poller"
)

// Input register map of the robot controller.
const (
	DefaultUnitID uint8 = 0

	PoseAddress   uint16 = 400 // x, y, z, rx, ry, rz
	JointsAddress uint16 = 270 // base, shoulder, elbow, wrist1, wrist2, wrist3
	axisCount     uint16 = 6
)

// Pose is the tool position in base coordinates.
// Position in 0.1 mm, rotation in mrad; all signed.
type Pose struct {
	X, Y, Z    int16
	RX, RY, RZ int16
}

func (p Pose) String() string {
	return fmt.Sprintf("x=%.1fmm y=%.1fmm z=%.1fmm rx=%dmrad ry=%dmrad rz=%dmrad",
		float64(p.X)/10, float64(p.Y)/10, float64(p.Z)/10, p.RX, p.RY, p.RZ)
}

// Joints are the six joint angles in mrad, as unsigned words.
type Joints [6]uint16

func (j Joints) String() string {
	return fmt.Sprintf("base=%d shoulder=%d elbow=%d wrist1=%d wrist2=%d wrist3=%d",
		j[0], j[1], j[2], j[3], j[4], j[5])
}

// Robot reads state from the controller over a Modbus TCP engine.
type Robot struct {
	exec   poller.Executor
	unitID uint8
}

func New(exec poller.Executor, unitID uint8) (*Robot, error) {
	if exec == nil {
		return nil, errors.New("robot: executor required")
	}
	return &Robot{exec: exec, unitID: unitID}, nil
}

// ReadPose reads the tool pose.
func (r *Robot) ReadPose(ctx context.Context) (Pose, error) {
	res, err := r.read(ctx, PoseAddress)
	if err != nil {
		return Pose{}, fmt.Errorf("robot: pose: %w", err)
	}
	return poseFrom(res), nil
}

// ReadJoints reads the joint angles.
func (r *Robot) ReadJoints(ctx context.Context) (Joints, error) {
	res, err := r.read(ctx, JointsAddress)
	if err != nil {
		return Joints{}, fmt.Errorf("robot: joints: %w", err)
	}
	var j Joints
	copy(j[:], res.Registers)
	return j, nil
}

// WatchPose samples the pose every interval until ctx is done.
// A failed tick is delivered with a non-nil error; the stream continues.
// fn is not called once ctx is done.
func (r *Robot) WatchPose(ctx context.Context, interval time.Duration, fn func(time.Time, Pose, error)) error {
	req, err := r.request(PoseAddress)
	if err != nil {
		return err
	}

	out := make(chan poller.Reading)
	done := make(chan error, 1)
	go func() { done <- poller.Sample(ctx, r.exec, req, interval, out) }()

	for {
		select {
		case err := <-done:
			return err
		case s := <-out:
			if ctx.Err() != nil {
				continue
			}
			if s.Err == nil {
				s.Err = checkAxes(s.Response)
			}
			if s.Err != nil {
				fn(s.At, Pose{}, fmt.Errorf("robot: pose: %w", s.Err))
				continue
			}
			fn(s.At, poseFrom(s.Response), nil)
		}
	}
}

func (r *Robot) request(addr uint16) (frame.Request, error) {
	return frame.EncodeRead(r.unitID, frame.ReadInputRegisters, addr, axisCount)
}

func (r *Robot) read(ctx context.Context, addr uint16) (frame.Response, error) {
	req, err := r.request(addr)
	if err != nil {
		return frame.Response{}, err
	}
	res, err := r.exec.Execute(ctx, req)
	if err != nil {
		return frame.Response{}, err
	}
	return res, checkAxes(res)
}

func checkAxes(res frame.Response) error {
	if len(res.Registers) != int(axisCount) {
		return fmt.Errorf("got %d registers, want %d", len(res.Registers), axisCount)
	}
	return nil
}

func poseFrom(res frame.Response) Pose {
	return Pose{
		X: res.Int16(0), Y: res.Int16(1), Z: res.Int16(2),
		RX: res.Int16(3), RY: res.Int16(4), RZ: res.Int16(5),
	}
}
