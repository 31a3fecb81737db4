// Package bubble tracks LDR readings to detect an air bubble fully
// transiting the tubing. A single threshold crossing would false-trigger
// on noise; the machine requires a full low-then-high transition, which
// models a physical object occluding and then clearing the beam.
package bubble

// State is the position of the detector in the passage sequence.
type State int

const (
	// Idle is the baseline: the sensor reads above threshold, clear path.
	Idle State = iota
	// Entering means the reading dropped below threshold, an object is
	// occluding the beam.
	Entering
	// Triggered means the reading returned above threshold after
	// Entering: a bubble fully transited. Terminal until Reset.
	Triggered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entering:
		return "entering"
	case Triggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Machine advances on LDR crossing events and latches once a bubble has
// passed. Owned by the control loop; not safe for concurrent use.
type Machine struct {
	threshold int
	state     State
}

// NewMachine creates a Machine with the given LDR occlusion threshold.
func NewMachine(threshold int) *Machine {
	return &Machine{threshold: threshold}
}

// Process consumes one LDR reading and returns the resulting state.
// Transitions only move forward: Idle to Entering when the beam is
// occluded, Entering to Triggered when it clears again.
func (m *Machine) Process(reading int) State {
	switch m.state {
	case Idle:
		if reading < m.threshold {
			m.state = Entering
		}
	case Entering:
		if reading >= m.threshold {
			m.state = Triggered
		}
	case Triggered:
		// Latched until an explicit reset.
	}

	return m.state
}

// State returns the current state without consuming a reading.
func (m *Machine) State() State {
	return m.state
}

// Triggered reports whether the alarm latch is asserted.
func (m *Machine) Triggered() bool {
	return m.state == Triggered
}

// Reset returns the machine to Idle and clears the alarm latch.
func (m *Machine) Reset() {
	m.state = Idle
}
