// Package link implements the text line protocol spoken with the external
// monitoring process: inbound commands, the outbound STATUS heartbeat, and
// a non-blocking port wrapper around the underlying stream.
package link

import (
	"strconv"
	"strings"

	"github.com/akatsukimed/dialyctl/internal/cvlink"
)

// CommandType tags the parsed command variant.
type CommandType int

const (
	CmdReady CommandType = iota
	CmdCVState
	CmdResetBubble
	CmdResetBlood
	CmdSetThreshold
	CmdSetBloodThresholds
	CmdCalibrate
)

// Command is one parsed inbound line. Only the fields of the tagged
// variant are meaningful.
type Command struct {
	Type CommandType

	// CmdCVState
	Code cvlink.Code

	// CmdSetThreshold
	RedMin int

	// CmdSetBloodThresholds: redMin,redMax,greenMax,blueMax
	Thresholds [4]int

	// CmdCalibrate: redMin,redMax,greenMin,greenMax,blueMin,blueMax
	Calibration [6]int
}

// ParseCommand parses one inbound line. Malformed or unrecognized lines
// return ok=false and are silently ignored by the caller; parsing never
// panics on any input.
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSpace(line)

	switch {
	case line == "PYTHON_READY":
		return Command{Type: CmdReady}, true

	case strings.HasPrefix(line, "CV:"):
		// The CV process sends "CV:<code>,<tilt>"; trailing fields
		// beyond the code are informational and ignored.
		payload := strings.TrimPrefix(line, "CV:")
		if i := strings.IndexByte(payload, ','); i >= 0 {
			payload = payload[:i]
		}
		code, err := strconv.Atoi(strings.TrimSpace(payload))
		if err != nil {
			return Command{}, false
		}
		return Command{Type: CmdCVState, Code: cvlink.Code(code)}, true

	case line == "RESET_BUBBLE":
		return Command{Type: CmdResetBubble}, true

	case line == "RESET_BLOOD":
		return Command{Type: CmdResetBlood}, true

	case strings.HasPrefix(line, "SET_THRESHOLD:"):
		value, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "SET_THRESHOLD:")))
		if err != nil {
			return Command{}, false
		}
		return Command{Type: CmdSetThreshold, RedMin: value}, true

	case strings.HasPrefix(line, "SET_BLOOD_THRESHOLDS:"):
		fields, ok := parseInts(strings.TrimPrefix(line, "SET_BLOOD_THRESHOLDS:"), 4)
		if !ok {
			return Command{}, false
		}
		cmd := Command{Type: CmdSetBloodThresholds}
		copy(cmd.Thresholds[:], fields)
		return cmd, true

	case strings.HasPrefix(line, "CALIBRATE:"):
		fields, ok := parseInts(strings.TrimPrefix(line, "CALIBRATE:"), 6)
		if !ok {
			return Command{}, false
		}
		cmd := Command{Type: CmdCalibrate}
		copy(cmd.Calibration[:], fields)
		return cmd, true
	}

	return Command{}, false
}

func parseInts(payload string, want int) ([]int, bool) {
	parts := strings.Split(payload, ",")
	if len(parts) != want {
		return nil, false
	}

	values := make([]int, want)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		values[i] = v
	}

	return values, true
}
