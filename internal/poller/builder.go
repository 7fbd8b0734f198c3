// internal/poller/builder.go
package poller

import (
	cfg "github.com/tamzrod/modbus-gripper/internal/config"
	"github.com/tamzrod/modbus-gripper/internal/frame"
)

// PolicyFrom maps normalized poll config to a Policy.
func PolicyFrom(p cfg.PollConfig) Policy {
	return Policy{
		MaxAttempts: p.MaxAttempts,
		Delay:       p.Interval(),
	}
}

// Build constructs the Spec for one sequence under policy p.
// No validation here; New rejects a bad Spec.
func (p Policy) Build(req frame.Request, isComplete Predicate) Spec {
	return Spec{
		Request:     req,
		MaxAttempts: p.MaxAttempts,
		Delay:       p.Delay,
		IsComplete:  isComplete,
	}
}
