// internal/gripper/status.go
package gripper

import "fmt"

// Status is the raw status block at StatusAddress, reported as read.
type Status struct {
	Registers [StatusCount]uint16
}

// Word returns status register i (0-based).
func (s Status) Word(i int) uint16 { return s.Registers[i] }

func (s Status) String() string {
	return fmt.Sprintf("%04x %04x %04x", s.Registers[0], s.Registers[1], s.Registers[2])
}
