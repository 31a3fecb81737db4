package blood

import "time"

const (
	// PersistDwell is how long a confirmed leak must hold continuously
	// before it is reported as persistent.
	PersistDwell = 2000 * time.Millisecond

	// decayGap is the minimum quiet period before a negative cycle is
	// allowed to decrement the confidence counter. Transient gaps in
	// detection must not instantly clear an alarm.
	decayGap = 1000 * time.Millisecond
)

// Tracker accumulates per-cycle classifier verdicts into a leak latch.
// It is owned by the control loop and must not be shared across goroutines.
type Tracker struct {
	window    int
	threshold int

	consecutive int
	confidence  int

	firstDetection time.Time
	lastDetection  time.Time

	leakConfirmed  bool
	persistentLeak bool
}

// NewTracker creates a Tracker with the given saturation window and
// confirmation threshold. Out-of-range arguments fall back to a window of
// 5 and a threshold of 1 rather than failing.
func NewTracker(window, threshold int) *Tracker {
	if window <= 0 {
		window = 5
	}
	if threshold <= 0 || threshold > window {
		threshold = 1
	}

	return &Tracker{window: window, threshold: threshold}
}

// Update consumes one cycle's verdict. Time comes from the caller so the
// tracker is deterministic under test; there is no background timer, so a
// tracker that stops being polled stays latched.
func (t *Tracker) Update(detected bool, now time.Time) {
	if detected {
		t.consecutive++
		if t.consecutive == 1 {
			t.firstDetection = now
		}
		t.lastDetection = now

		if t.confidence < t.window {
			t.confidence++
		}
		if t.confidence >= t.threshold {
			t.leakConfirmed = true
		}
		if t.leakConfirmed && now.Sub(t.firstDetection) > PersistDwell {
			t.persistentLeak = true
		}

		return
	}

	t.consecutive = 0

	if t.confidence > 0 && now.Sub(t.lastDetection) > decayGap {
		t.confidence--
	}
	if t.confidence < t.threshold {
		t.leakConfirmed = false
		t.persistentLeak = false
	}
}

// Reset zeroes all state unconditionally, regardless of detection state.
func (t *Tracker) Reset() {
	t.consecutive = 0
	t.confidence = 0
	t.firstDetection = time.Time{}
	t.lastDetection = time.Time{}
	t.leakConfirmed = false
	t.persistentLeak = false
}

// LeakConfirmed reports whether the confidence counter has reached the
// confirmation threshold.
func (t *Tracker) LeakConfirmed() bool {
	return t.leakConfirmed
}

// PersistentLeak reports whether a confirmed leak has held continuously
// beyond the persistence dwell.
func (t *Tracker) PersistentLeak() bool {
	return t.persistentLeak
}

// Confidence returns the current confidence counter value.
func (t *Tracker) Confidence() int {
	return t.confidence
}

// ConsecutiveDetections returns the current positive-cycle streak.
func (t *Tracker) ConsecutiveDetections() int {
	return t.consecutive
}
