package blood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestSingleDetectionConfirms(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)

	assert.True(t, tr.LeakConfirmed(), "default threshold of 1 confirms on first cycle")
	assert.False(t, tr.PersistentLeak())
	assert.Equal(t, 1, tr.Confidence())
	assert.Equal(t, 1, tr.ConsecutiveDetections())
}

func TestHigherThresholdNeedsMoreCycles(t *testing.T) {
	tr := NewTracker(5, 3)

	tr.Update(true, t0)
	tr.Update(true, t0.Add(100*time.Millisecond))
	assert.False(t, tr.LeakConfirmed(), "two cycles below threshold of 3")

	tr.Update(true, t0.Add(200*time.Millisecond))
	assert.True(t, tr.LeakConfirmed())
}

func TestConfidenceSaturatesAtWindow(t *testing.T) {
	tr := NewTracker(5, 1)

	for i := 0; i < 20; i++ {
		tr.Update(true, t0.Add(time.Duration(i)*100*time.Millisecond))
	}

	assert.Equal(t, 5, tr.Confidence(), "counter saturates at the sample window")
	assert.Equal(t, 20, tr.ConsecutiveDetections())
}

func TestPersistentLeakAfterDwell(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(true, t0.Add(1900*time.Millisecond))
	assert.False(t, tr.PersistentLeak(), "dwell not yet exceeded")

	tr.Update(true, t0.Add(2001*time.Millisecond))
	assert.True(t, tr.PersistentLeak(), "confirmed leak held past the dwell")
	assert.True(t, tr.LeakConfirmed())
}

func TestNegativeCycleDoesNotDecayWithinGap(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(false, t0.Add(500*time.Millisecond))

	assert.Equal(t, 1, tr.Confidence(), "gap under 1s must not decay")
	assert.True(t, tr.LeakConfirmed())
	assert.Equal(t, 0, tr.ConsecutiveDetections(), "streak resets on any negative cycle")
}

func TestDecayAfterGapClearsLatch(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(false, t0.Add(1001*time.Millisecond))

	assert.Equal(t, 0, tr.Confidence(), "gap over 1s decrements by exactly 1")
	assert.False(t, tr.LeakConfirmed(), "confidence below threshold clears the latch")
	assert.False(t, tr.PersistentLeak())
}

func TestDecayIsGradual(t *testing.T) {
	tr := NewTracker(5, 1)

	for i := 0; i < 5; i++ {
		tr.Update(true, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	assert.Equal(t, 5, tr.Confidence())

	last := t0.Add(400 * time.Millisecond)
	tr.Update(false, last.Add(1100*time.Millisecond))
	assert.Equal(t, 4, tr.Confidence())
	assert.True(t, tr.LeakConfirmed(), "still above threshold")

	tr.Update(false, last.Add(1200*time.Millisecond))
	assert.Equal(t, 3, tr.Confidence())
}

func TestPersistentClearedWithConfirmation(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(true, t0.Add(2100*time.Millisecond))
	assert.True(t, tr.PersistentLeak())

	// Decay confidence to zero: one negative cycle per elapsed second.
	now := t0.Add(2100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		now = now.Add(1100 * time.Millisecond)
		tr.Update(false, now)
	}

	assert.False(t, tr.LeakConfirmed())
	assert.False(t, tr.PersistentLeak())
}

func TestNoPollingMeansNoDecay(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)

	// Hours pass with no Update calls at all: the latch must hold.
	assert.True(t, tr.LeakConfirmed())
	assert.Equal(t, 1, tr.Confidence())
}

func TestReset(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(true, t0.Add(2100*time.Millisecond))
	tr.Reset()

	assert.False(t, tr.LeakConfirmed())
	assert.False(t, tr.PersistentLeak())
	assert.Equal(t, 0, tr.Confidence())
	assert.Equal(t, 0, tr.ConsecutiveDetections())
}

func TestDecayOnlyCountsFromLastDetection(t *testing.T) {
	tr := NewTracker(5, 1)

	tr.Update(true, t0)
	tr.Update(true, t0.Add(900*time.Millisecond))
	tr.Update(false, t0.Add(1500*time.Millisecond))

	// 600ms since the last detection: no decay yet.
	assert.Equal(t, 2, tr.Confidence())

	tr.Update(false, t0.Add(2000*time.Millisecond))
	assert.Equal(t, 1, tr.Confidence(), "1.1s since last detection decays")
}
