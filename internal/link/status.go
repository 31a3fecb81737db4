package link

import (
	"fmt"

	"github.com/akatsukimed/dialyctl/internal/bubble"
	"github.com/akatsukimed/dialyctl/internal/cvlink"
)

// Status is one heartbeat's worth of core state for the external monitor.
type Status struct {
	CVState       cvlink.Code
	TempC         float64
	RedFreq       uint32
	RedVal        int
	LDR           int
	PumpASpeed    int
	PumpBSpeed    int
	BubbleState   bubble.State
	BloodDetected bool
	LeakConfirmed bool
	Confidence    int
}

// FormatStatus renders the fixed-order heartbeat line. Field order and
// encoding (booleans as 0/1, temperature with one decimal) are part of the
// wire contract with the monitoring process.
func FormatStatus(s Status) string {
	return fmt.Sprintf("STATUS:%d,%.1f,%d,%d,%d,%d,%d,%d,%d,%d,%d",
		int(s.CVState),
		s.TempC,
		s.RedFreq,
		s.RedVal,
		s.LDR,
		s.PumpASpeed,
		s.PumpBSpeed,
		int(s.BubbleState),
		boolToInt(s.BloodDetected),
		boolToInt(s.LeakConfirmed),
		s.Confidence,
	)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
