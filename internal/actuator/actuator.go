// Package actuator carries the arbitrated command to the pump, buzzer and
// indicator drivers. The pin-level drivers are external collaborators
// behind the Driver interface.
package actuator

import (
	"github.com/akatsukimed/dialyctl/internal/alarm"
	"github.com/akatsukimed/dialyctl/internal/logger"
)

// Command is the full actuator output of one control cycle.
type Command struct {
	PumpsEnabled bool
	PumpASpeed   int // 0-255
	PumpBSpeed   int // 0-255
	BuzzerOn     bool
	IndicatorOn  bool
	Display      alarm.DisplayState
}

// Driver applies a Command to the hardware.
type Driver interface {
	Apply(cmd Command) error
}

// FromDecision expands an arbitration decision into a Command using the
// configured pump speeds. Disabled pumps always run at zero.
func FromDecision(d alarm.Decision, pumpA, pumpB int) Command {
	cmd := Command{
		PumpsEnabled: d.PumpsEnabled,
		BuzzerOn:     d.BuzzerOn,
		IndicatorOn:  d.IndicatorOn,
		Display:      d.Display,
	}
	if d.PumpsEnabled {
		cmd.PumpASpeed = clampSpeed(pumpA)
		cmd.PumpBSpeed = clampSpeed(pumpB)
	}

	return cmd
}

func clampSpeed(speed int) int {
	if speed < 0 {
		return 0
	}
	if speed > 255 {
		return 255
	}

	return speed
}

// LogDriver logs every applied command instead of driving hardware. Used
// on the bench and as the fallback when no driver is wired.
type LogDriver struct{}

func (LogDriver) Apply(cmd Command) error {
	logger.Debug().
		Bool("pumps_enabled", cmd.PumpsEnabled).
		Int("pump_a", cmd.PumpASpeed).
		Int("pump_b", cmd.PumpBSpeed).
		Bool("buzzer", cmd.BuzzerOn).
		Bool("indicator", cmd.IndicatorOn).
		Int("display", int(cmd.Display)).
		Msg("actuator command")

	return nil
}
