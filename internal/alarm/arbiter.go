// Package alarm resolves every alarm source into a single prioritized
// system state and actuator command. Arbitration is a pure function,
// recomputed from scratch each cycle; all memory lives in the subordinate
// trackers that feed it.
package alarm

import "github.com/akatsukimed/dialyctl/internal/cvlink"

// SystemState is the arbitrated state of the whole machine.
type SystemState int

const (
	StateNormal SystemState = iota
	StateWarning
	StateAlarm
	StateLinkLost
)

func (s SystemState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWarning:
		return "warning"
	case StateAlarm:
		return "alarm"
	case StateLinkLost:
		return "link_lost"
	default:
		return "unknown"
	}
}

// Cause identifies which source raised an alarm.
type Cause int

const (
	CauseNone Cause = iota
	CauseBloodLeak
	CauseAirBubble
	CauseHighTemp
	CauseCVAlarmOrMissing
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseBloodLeak:
		return "blood_leak"
	case CauseAirBubble:
		return "air_bubble"
	case CauseHighTemp:
		return "high_temp"
	case CauseCVAlarmOrMissing:
		return "cv_alarm_or_missing"
	default:
		return "unknown"
	}
}

// DisplayState is the screen-selector index consumed by the external
// display renderer. The indices are part of the renderer contract.
type DisplayState int

const (
	DisplayNormal         DisplayState = 0
	DisplayBloodLeak      DisplayState = 1
	DisplayPersistentLeak DisplayState = 2
	DisplayAirBubble      DisplayState = 3
	DisplayHighTemp       DisplayState = 4
	DisplayLinkLost       DisplayState = 5
	DisplayPatientAlarm   DisplayState = 6
	DisplayPossibleIssue  DisplayState = 7
)

// Inputs is the flag set gathered from every subordinate component for
// one control cycle.
type Inputs struct {
	LeakConfirmed  bool
	PersistentLeak bool
	Confidence     int

	BubbleTriggered bool

	HighTemp    bool
	Temperature float64

	LinkConnected bool
	LinkTimedOut  bool
	CVCode        cvlink.Code
}

// Decision is the resolved actuator command plus display selection.
type Decision struct {
	State SystemState
	Cause Cause

	PumpsEnabled bool
	BuzzerOn     bool
	IndicatorOn  bool

	Display DisplayState
}

// Decide arbitrates all alarm sources. First match wins; a higher priority
// overrides everything below it regardless of other flags.
func Decide(in Inputs) Decision {
	// Priority 1: hard sensor alarms stop the pumps.
	if in.LeakConfirmed || in.BubbleTriggered || in.HighTemp {
		d := Decision{
			State:        StateAlarm,
			PumpsEnabled: false,
			BuzzerOn:     true,
			IndicatorOn:  true,
		}
		switch {
		case in.LeakConfirmed:
			d.Cause = CauseBloodLeak
			if in.PersistentLeak {
				d.Display = DisplayPersistentLeak
			} else {
				d.Display = DisplayBloodLeak
			}
		case in.BubbleTriggered:
			d.Cause = CauseAirBubble
			d.Display = DisplayAirBubble
		default:
			d.Cause = CauseHighTemp
			d.Display = DisplayHighTemp
		}

		return d
	}

	// Priority 2: losing the external monitor alone is degraded
	// monitoring, not a physical hazard. Pumps keep running.
	if in.LinkTimedOut {
		return Decision{
			State:        StateLinkLost,
			PumpsEnabled: true,
			BuzzerOn:     true,
			IndicatorOn:  true,
			Display:      DisplayLinkLost,
		}
	}

	// Priority 3: the CV process reports head droop or a missing patient.
	if in.CVCode == cvlink.Alarm || in.CVCode == cvlink.Missing {
		return Decision{
			State:        StateAlarm,
			Cause:        CauseCVAlarmOrMissing,
			PumpsEnabled: false,
			BuzzerOn:     true,
			IndicatorOn:  true,
			Display:      DisplayPatientAlarm,
		}
	}

	// Priority 4: possible issue, operator attention only.
	if in.CVCode == cvlink.Possible {
		return Decision{
			State:        StateWarning,
			PumpsEnabled: true,
			IndicatorOn:  true,
			Display:      DisplayPossibleIssue,
		}
	}

	return Decision{
		State:        StateNormal,
		PumpsEnabled: true,
		Display:      DisplayNormal,
	}
}
