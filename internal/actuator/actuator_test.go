package actuator

import (
	"testing"

	"github.com/akatsukimed/dialyctl/internal/alarm"
	"github.com/stretchr/testify/assert"
)

func TestFromDecision(t *testing.T) {
	running := alarm.Decision{State: alarm.StateNormal, PumpsEnabled: true, Display: alarm.DisplayNormal}
	cmd := FromDecision(running, 180, 200)

	assert.True(t, cmd.PumpsEnabled)
	assert.Equal(t, 180, cmd.PumpASpeed)
	assert.Equal(t, 200, cmd.PumpBSpeed)
	assert.False(t, cmd.BuzzerOn)

	stopped := alarm.Decision{State: alarm.StateAlarm, Cause: alarm.CauseBloodLeak, BuzzerOn: true, IndicatorOn: true, Display: alarm.DisplayBloodLeak}
	cmd = FromDecision(stopped, 180, 200)

	assert.False(t, cmd.PumpsEnabled)
	assert.Equal(t, 0, cmd.PumpASpeed, "disabled pumps run at zero")
	assert.Equal(t, 0, cmd.PumpBSpeed)
	assert.True(t, cmd.BuzzerOn)
	assert.Equal(t, alarm.DisplayBloodLeak, cmd.Display)
}

func TestFromDecisionClampsSpeeds(t *testing.T) {
	running := alarm.Decision{PumpsEnabled: true}

	cmd := FromDecision(running, -5, 400)
	assert.Equal(t, 0, cmd.PumpASpeed)
	assert.Equal(t, 255, cmd.PumpBSpeed)
}

func TestFakeDriverRecords(t *testing.T) {
	f := &FakeDriver{}

	assert.Equal(t, Command{}, f.Last())

	first := Command{PumpsEnabled: true, PumpASpeed: 100}
	second := Command{BuzzerOn: true}
	assert.NoError(t, f.Apply(first))
	assert.NoError(t, f.Apply(second))

	assert.Len(t, f.Applied, 2)
	assert.Equal(t, second, f.Last())
}
