// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if cfg.Gripper == nil && cfg.Robot == nil {
		return errors.New("config: at least one of gripper, robot must be configured")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: %v", err)
		}
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// GRIPPER
	// ------------------------------------------------------------

	if g := cfg.Gripper; g != nil {
		if err := validateSerial(g.Serial); err != nil {
			return fmt.Errorf("gripper: %w", err)
		}
		if g.UnitID != nil && (*g.UnitID == 0 || *g.UnitID > 247) {
			return fmt.Errorf("gripper: unit_id %d out of range 1..247", *g.UnitID)
		}
		if g.TimeoutMs < 0 {
			return errors.New("gripper: timeout_ms must be >= 0")
		}
		if err := validatePoll(g.Poll); err != nil {
			return fmt.Errorf("gripper: %w", err)
		}
	}

	// ------------------------------------------------------------
	// ROBOT
	// ------------------------------------------------------------

	if r := cfg.Robot; r != nil {
		if r.Endpoint == "" {
			return errors.New("robot: endpoint required")
		}
		if host, port, err := net.SplitHostPort(r.Endpoint); err == nil {
			if host == "" {
				return fmt.Errorf("robot: endpoint %q has no host", r.Endpoint)
			}
			if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("robot: endpoint %q has invalid port", r.Endpoint)
			}
		}
		if r.TimeoutMs < 0 {
			return errors.New("robot: timeout_ms must be >= 0")
		}
		if err := validatePoll(r.Poll); err != nil {
			return fmt.Errorf("robot: %w", err)
		}
	}

	return nil
}

func validateSerial(s SerialConfig) error {
	if s.Device == "" {
		return errors.New("serial: device required")
	}
	if s.BaudRate < 0 {
		return fmt.Errorf("serial: invalid baud_rate %d", s.BaudRate)
	}
	if s.DataBits != 0 && (s.DataBits < 5 || s.DataBits > 8) {
		return fmt.Errorf("serial: data_bits %d out of range 5..8", s.DataBits)
	}
	switch s.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("serial: parity %q must be N, E or O", s.Parity)
	}
	if s.StopBits != 0 && s.StopBits != 1 && s.StopBits != 2 {
		return fmt.Errorf("serial: stop_bits %d must be 1 or 2", s.StopBits)
	}
	if s.ReadTimeoutDs < 0 || s.ReadTimeoutDs > 255 {
		return fmt.Errorf("serial: read_timeout_ds %d out of range 0..255", s.ReadTimeoutDs)
	}
	if s.MinBytes < 0 || s.MinBytes > 255 {
		return fmt.Errorf("serial: min_bytes %d out of range 0..255", s.MinBytes)
	}
	return nil
}

func validatePoll(p PollConfig) error {
	if p.MaxAttempts < 0 {
		return errors.New("poll: max_attempts must be >= 0")
	}
	if p.IntervalMs < 0 {
		return errors.New("poll: interval_ms must be >= 0")
	}
	return nil
}
