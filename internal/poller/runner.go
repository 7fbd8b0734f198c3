// internal/poller/runner.go
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/modbus-gripper/internal/frame"
)

// Sample starts the ticker loop and emits one Reading per tick on out.
// No overlap. No retries: a failed tick is reported and the next tick
// tries again. Returns when ctx is done.
func Sample(ctx context.Context, exec Executor, req frame.Request, interval time.Duration, out chan<- Reading) error {
	if exec == nil {
		return errors.New("poller: executor required")
	}
	if interval <= 0 {
		return errors.New("poller: interval must be > 0")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res, err := exec.Execute(ctx, req)
			s := Reading{At: time.Now(), Response: res, Err: err}
			select {
			case out <- s:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
