// internal/config/normalize.go
package config

import (
	"net"
	"time"
)

// Defaults applied by Normalize.
const (
	DefaultBaudRate      = 115200
	DefaultDataBits      = 8
	DefaultParity        = "N"
	DefaultStopBits      = 1
	DefaultReadTimeoutDs = 10
	DefaultMinBytes      = 4

	DefaultGripperUnitID uint8 = 9
	DefaultRobotUnitID   uint8 = 0
	DefaultRobotPort           = "502"

	DefaultTimeoutMs   = 1000
	DefaultMaxAttempts = 200
	DefaultIntervalMs  = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if g := cfg.Gripper; g != nil {
		s := &g.Serial
		if s.BaudRate == 0 {
			s.BaudRate = DefaultBaudRate
		}
		if s.DataBits == 0 {
			s.DataBits = DefaultDataBits
		}
		if s.Parity == "" {
			s.Parity = DefaultParity
		}
		if s.StopBits == 0 {
			s.StopBits = DefaultStopBits
		}
		if s.ReadTimeoutDs == 0 {
			s.ReadTimeoutDs = DefaultReadTimeoutDs
		}
		if s.MinBytes == 0 {
			s.MinBytes = DefaultMinBytes
		}

		if g.UnitID == nil {
			id := DefaultGripperUnitID
			g.UnitID = &id
		}
		if g.TimeoutMs == 0 {
			g.TimeoutMs = DefaultTimeoutMs
		}
		normalizePoll(&g.Poll)
	}

	if r := cfg.Robot; r != nil {
		// bare host: default Modbus TCP port
		if _, _, err := net.SplitHostPort(r.Endpoint); err != nil {
			r.Endpoint = net.JoinHostPort(r.Endpoint, DefaultRobotPort)
		}
		if r.UnitID == nil {
			id := DefaultRobotUnitID
			r.UnitID = &id
		}
		if r.TimeoutMs == 0 {
			r.TimeoutMs = DefaultTimeoutMs
		}
		normalizePoll(&r.Poll)
	}
}

func normalizePoll(p *PollConfig) {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.IntervalMs == 0 {
		p.IntervalMs = DefaultIntervalMs
	}
}

// ---- derived durations ----

func (s SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutDs) * 100 * time.Millisecond
}

func (g GripperConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

func (r RobotConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}
