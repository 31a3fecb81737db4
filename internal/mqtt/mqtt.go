// Package mqtt publishes status heartbeats and alarm transitions to a
// broker for remote monitoring. Publishing is best-effort: a failed
// publish is logged, never allowed to disturb the control loop.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/akatsukimed/dialyctl/internal/alarm"
)

// Topic is the MQTT topic for periodic status snapshots.
const Topic = "dialysis/safety/status"

// TopicAlarm is the MQTT topic for alarm state transitions.
const TopicAlarm = "dialysis/safety/alarms"

// Publisher publishes core state to the broker.
type Publisher interface {
	// PublishStatus sends a periodic status snapshot.
	PublishStatus(status StatusEvent) error

	// PublishAlarm sends an alarm state transition (retained).
	PublishAlarm(event AlarmEvent) error

	// Close disconnects from the broker.
	Close() error
}

// StatusEvent mirrors the serial STATUS heartbeat for remote consumers.
type StatusEvent struct {
	Timestamp     time.Time
	SystemState   alarm.SystemState
	CVState       int
	TempC         float64
	LDR           int
	Confidence    int
	LeakConfirmed bool
	PumpsEnabled  bool
}

// AlarmEvent represents a change of arbitrated system state.
type AlarmEvent struct {
	Timestamp time.Time
	State     alarm.SystemState
	Cause     alarm.Cause
}

// StatusPayload is the JSON wire form of a StatusEvent.
type StatusPayload struct {
	Timestamp     string  `json:"timestamp"`
	State         string  `json:"state"`
	CVState       int     `json:"cv_state"`
	TempC         float64 `json:"temp_c"`
	LDR           int     `json:"ldr"`
	Confidence    int     `json:"confidence"`
	LeakConfirmed bool    `json:"leak_confirmed"`
	PumpsEnabled  bool    `json:"pumps_enabled"`
}

// AlarmPayload is the JSON wire form of an AlarmEvent.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
	Cause     string `json:"cause,omitempty"`
}

// FormatStatusPayload creates the JSON payload for a status snapshot.
func FormatStatusPayload(status StatusEvent) ([]byte, error) {
	payload := StatusPayload{
		Timestamp:     status.Timestamp.UTC().Format(time.RFC3339),
		State:         status.SystemState.String(),
		CVState:       status.CVState,
		TempC:         status.TempC,
		LDR:           status.LDR,
		Confidence:    status.Confidence,
		LeakConfirmed: status.LeakConfirmed,
		PumpsEnabled:  status.PumpsEnabled,
	}
	return json.Marshal(payload)
}

// FormatAlarmPayload creates the JSON payload for an alarm transition.
func FormatAlarmPayload(event AlarmEvent) ([]byte, error) {
	payload := AlarmPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		State:     event.State.String(),
	}
	if event.Cause != alarm.CauseNone {
		payload.Cause = event.Cause.String()
	}
	return json.Marshal(payload)
}
