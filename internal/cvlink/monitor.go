// Package cvlink tracks liveness of the external computer-vision feed.
// The CV process is an external collaborator; the core only sees its state
// codes and when they last arrived.
package cvlink

import "time"

// Code is the patient-state code reported by the CV process.
type Code int

const (
	Unknown  Code = -1
	Normal   Code = 0
	Possible Code = 1
	Alarm    Code = 2
	Missing  Code = 3
)

func (c Code) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case Normal:
		return "normal"
	case Possible:
		return "possible"
	case Alarm:
		return "alarm"
	case Missing:
		return "missing"
	default:
		return "invalid"
	}
}

// Valid reports whether the code is one the CV process can legitimately send.
func (c Code) Valid() bool {
	return c >= Normal && c <= Missing
}

const (
	// Timeout is how long without a message before the feed is declared dead.
	Timeout = 5000 * time.Millisecond
	// WarnAfter is the advisory gap: the operator is warned but actuation
	// does not change.
	WarnAfter = 2000 * time.Millisecond
)

// Monitor tracks the feed's last-message time and state code. There is no
// terminal disconnected state: once connected, silence only ever manifests
// as a timeout.
type Monitor struct {
	lastMessage time.Time
	connected   bool
	timedOut    bool
	code        Code
}

// NewMonitor creates a Monitor with no connection and an unknown CV state.
func NewMonitor() *Monitor {
	return &Monitor{code: Unknown}
}

// HandleReady records the ready handshake from the CV process.
func (m *Monitor) HandleReady(now time.Time) {
	m.touch(now)
}

// HandleState records a state update. Invalid codes still count as
// liveness but do not change the stored state.
func (m *Monitor) HandleState(code Code, now time.Time) {
	m.touch(now)
	if code.Valid() {
		m.code = code
	}
}

func (m *Monitor) touch(now time.Time) {
	m.connected = true
	m.lastMessage = now
	m.timedOut = false
}

// Check recomputes the timeout flag for this cycle.
func (m *Monitor) Check(now time.Time) {
	if !m.connected {
		return
	}

	m.timedOut = now.Sub(m.lastMessage) > Timeout
}

// Warning reports the advisory early-warning condition: the feed has been
// quiet beyond the warning gap but is not yet timed out.
func (m *Monitor) Warning(now time.Time) bool {
	if !m.connected || m.timedOut {
		return false
	}

	return now.Sub(m.lastMessage) > WarnAfter
}

// Connected reports whether any message has ever been received.
func (m *Monitor) Connected() bool {
	return m.connected
}

// TimedOut reports whether the feed exceeded the liveness window.
func (m *Monitor) TimedOut() bool {
	return m.timedOut
}

// Code returns the last valid state code received.
func (m *Monitor) Code() Code {
	return m.code
}
