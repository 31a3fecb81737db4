// Package blood converts raw color-sensor samples into a hysteretic
// blood-leak verdict. Classification is a pure function of one sample;
// the Tracker turns per-cycle verdicts into a confirmed/persistent latch.
package blood

// Sample is one control cycle's reading from the color sensor collaborator.
// Values are 0-255 channel intensities; frequencies are the raw pulse
// counts they were derived from. A zero frequency means no valid pulse was
// measured on that channel.
type Sample struct {
	RedVal   int
	GreenVal int
	BlueVal  int

	RedFreq   uint32
	GreenFreq uint32
	BlueFreq  uint32
}

// ChannelRange is the calibrated frequency span of one color channel.
type ChannelRange struct {
	Min int
	Max int
}

// Calibration maps raw channel frequencies to 0-255 intensities.
type Calibration struct {
	Red   ChannelRange
	Green ChannelRange
	Blue  ChannelRange
}

// Thresholds are the tunable limits of the classifier heuristics.
type Thresholds struct {
	RedMin   int
	RedMax   int
	GreenMax int
	BlueMax  int
}

const (
	heuristicCount = 5
	agreeRequired  = 3

	ratioLimit    = 1.5
	patternRedMin = 100
	patternFactor = 0.7
)

// MapFrequency converts a raw frequency count to a 0-255 intensity using
// the calibrated range. Lower frequency means stronger color, so the map
// is inverted. Degenerate ranges and zero frequencies map to 0.
func MapFrequency(freq uint32, r ChannelRange) int {
	if freq == 0 || r.Max <= r.Min {
		return 0
	}

	span := r.Max - r.Min
	value := 255 - (int(freq)-r.Min)*255/span

	return clamp(value, 0, 255)
}

// Classify runs the five detection heuristics against one sample and
// returns whether blood is detected this cycle plus the number of
// agreeing heuristics, for diagnostics. Pure function, no side effects.
func Classify(s Sample, thr Thresholds) (bool, int) {
	score := 0

	if redDominant(s, thr) {
		score++
	}
	if greenBlueLow(s, thr) {
		score++
	}
	if redGreenRatio(s) {
		score++
	}
	if redBlueRatio(s) {
		score++
	}
	if patternMatch(s) {
		score++
	}

	return score >= agreeRequired, score
}

// Heuristic 1: red value in range and red pulses faster than both other
// channels. Skipped when any frequency is zero (no valid pulse measured).
func redDominant(s Sample, thr Thresholds) bool {
	if s.RedFreq == 0 || s.GreenFreq == 0 || s.BlueFreq == 0 {
		return false
	}

	return s.RedVal >= thr.RedMin && s.RedVal <= thr.RedMax &&
		s.RedFreq < s.GreenFreq && s.RedFreq < s.BlueFreq
}

// Heuristic 2: green and blue both suppressed.
func greenBlueLow(s Sample, thr Thresholds) bool {
	return s.GreenVal <= thr.GreenMax && s.BlueVal <= thr.BlueMax
}

// Heuristic 3: red clearly dominates green.
func redGreenRatio(s Sample) bool {
	return s.GreenVal > 0 && float64(s.RedVal)/float64(s.GreenVal) > ratioLimit
}

// Heuristic 4: red clearly dominates blue.
func redBlueRatio(s Sample) bool {
	return s.BlueVal > 0 && float64(s.RedVal)/float64(s.BlueVal) > ratioLimit
}

// Heuristic 5: strong red with both other channels well below it.
func patternMatch(s Sample) bool {
	return s.RedVal > patternRedMin &&
		float64(s.GreenVal) < patternFactor*float64(s.RedVal) &&
		float64(s.BlueVal) < patternFactor*float64(s.RedVal)
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
