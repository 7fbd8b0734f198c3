// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     LogConfig      `yaml:"log"`
	Gripper *GripperConfig `yaml:"gripper"`
	Robot   *RobotConfig   `yaml:"robot"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" | "json"
}

// ---- GRIPPER (RTU over serial) ----

type GripperConfig struct {
	Serial    SerialConfig `yaml:"serial"`
	UnitID    *uint8       `yaml:"unit_id"`
	TimeoutMs int          `yaml:"timeout_ms"`
	Poll      PollConfig   `yaml:"poll"`
}

type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // "N" | "E" | "O"
	StopBits int    `yaml:"stop_bits"`

	// Line timing, as termios VTIME/VMIN.
	ReadTimeoutDs int `yaml:"read_timeout_ds"`
	MinBytes      int `yaml:"min_bytes"`
}

// ---- ROBOT (Modbus TCP) ----

type RobotConfig struct {
	Endpoint  string     `yaml:"endpoint"`
	UnitID    *uint8     `yaml:"unit_id"`
	TimeoutMs int        `yaml:"timeout_ms"`
	Poll      PollConfig `yaml:"poll"`
}

// ---- POLL ----

type PollConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	IntervalMs  int `yaml:"interval_ms"`
}

// Load reads a YAML config file. It does not validate.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes YAML config bytes. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
