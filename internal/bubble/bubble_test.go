package bubble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const threshold = 400

func TestFullPassageTriggers(t *testing.T) {
	m := NewMachine(threshold)

	assert.Equal(t, Idle, m.Process(800), "above threshold stays idle")
	assert.Equal(t, Entering, m.Process(200), "drop below threshold starts passage")
	assert.Equal(t, Triggered, m.Process(800), "return above threshold completes passage")
	assert.True(t, m.Triggered())
}

func TestOcclusionAloneDoesNotTrigger(t *testing.T) {
	m := NewMachine(threshold)

	m.Process(800)
	m.Process(200)
	state := m.Process(150)

	assert.Equal(t, Entering, state, "still occluded, no trigger")
	assert.False(t, m.Triggered())
}

func TestTriggeredIsLatched(t *testing.T) {
	m := NewMachine(threshold)

	m.Process(800)
	m.Process(200)
	m.Process(800)

	// Further readings in either direction must not clear the latch.
	assert.Equal(t, Triggered, m.Process(100))
	assert.Equal(t, Triggered, m.Process(900))
	assert.True(t, m.Triggered())
}

func TestReset(t *testing.T) {
	m := NewMachine(threshold)

	m.Process(200)
	m.Process(800)
	assert.True(t, m.Triggered())

	m.Reset()
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.Triggered())

	// Detector works again after reset.
	m.Process(200)
	assert.Equal(t, Entering, m.State())
}

func TestBoundaryReadingIsClear(t *testing.T) {
	m := NewMachine(threshold)

	assert.Equal(t, Idle, m.Process(threshold), "reading equal to threshold counts as clear")
	m.Process(threshold - 1)
	assert.Equal(t, Triggered, m.Process(threshold))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "entering", Entering.String())
	assert.Equal(t, "triggered", Triggered.String())
	assert.Equal(t, "unknown", State(9).String())
}
