package link

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/akatsukimed/dialyctl/internal/bubble"
	"github.com/akatsukimed/dialyctl/internal/cvlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		want Command
	}{
		{
			name: "ready handshake",
			line: "PYTHON_READY",
			ok:   true,
			want: Command{Type: CmdReady},
		},
		{
			name: "cv state bare",
			line: "CV:2",
			ok:   true,
			want: Command{Type: CmdCVState, Code: cvlink.Alarm},
		},
		{
			name: "cv state with tilt field",
			line: "CV:1,45.3",
			ok:   true,
			want: Command{Type: CmdCVState, Code: cvlink.Possible},
		},
		{
			name: "cv state trailing whitespace",
			line: "CV:0\r",
			ok:   true,
			want: Command{Type: CmdCVState, Code: cvlink.Normal},
		},
		{
			name: "reset bubble",
			line: "RESET_BUBBLE",
			ok:   true,
			want: Command{Type: CmdResetBubble},
		},
		{
			name: "reset blood",
			line: "RESET_BLOOD",
			ok:   true,
			want: Command{Type: CmdResetBlood},
		},
		{
			name: "set single threshold",
			line: "SET_THRESHOLD:120",
			ok:   true,
			want: Command{Type: CmdSetThreshold, RedMin: 120},
		},
		{
			name: "set blood thresholds",
			line: "SET_BLOOD_THRESHOLDS:110,250,70,60",
			ok:   true,
			want: Command{Type: CmdSetBloodThresholds, Thresholds: [4]int{110, 250, 70, 60}},
		},
		{
			name: "calibrate",
			line: "CALIBRATE:25,72,30,90,25,70",
			ok:   true,
			want: Command{Type: CmdCalibrate, Calibration: [6]int{25, 72, 30, 90, 25, 70}},
		},
		{name: "empty line", line: "", ok: false},
		{name: "unknown command", line: "SELF_DESTRUCT", ok: false},
		{name: "cv without code", line: "CV:", ok: false},
		{name: "cv non-numeric", line: "CV:high", ok: false},
		{name: "threshold non-numeric", line: "SET_THRESHOLD:lots", ok: false},
		{name: "blood thresholds short", line: "SET_BLOOD_THRESHOLDS:1,2,3", ok: false},
		{name: "blood thresholds long", line: "SET_BLOOD_THRESHOLDS:1,2,3,4,5", ok: false},
		{name: "calibrate garbage", line: "CALIBRATE:a,b,c,d,e,f", ok: false},
		{name: "calibrate short", line: "CALIBRATE:25,72", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, cmd)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	s := Status{
		CVState:       cvlink.Normal,
		TempC:         36.6,
		RedFreq:       42,
		RedVal:        180,
		LDR:           812,
		PumpASpeed:    180,
		PumpBSpeed:    180,
		BubbleState:   bubble.Idle,
		BloodDetected: false,
		LeakConfirmed: false,
		Confidence:    0,
	}

	assert.Equal(t, "STATUS:0,36.6,42,180,812,180,180,0,0,0,0", FormatStatus(s))
}

func TestFormatStatusAlarm(t *testing.T) {
	s := Status{
		CVState:       cvlink.Missing,
		TempC:         38.25,
		RedFreq:       20,
		RedVal:        210,
		LDR:           350,
		PumpASpeed:    0,
		PumpBSpeed:    0,
		BubbleState:   bubble.Triggered,
		BloodDetected: true,
		LeakConfirmed: true,
		Confidence:    5,
	}

	// Temperature is rounded to one decimal; booleans encode as 0/1.
	assert.Equal(t, "STATUS:3,38.2,20,210,350,0,0,2,1,1,5", FormatStatus(s))
}

func TestFormatStatusUnknownCV(t *testing.T) {
	line := FormatStatus(Status{CVState: cvlink.Unknown})
	assert.True(t, strings.HasPrefix(line, "STATUS:-1,"), "unknown cv state encodes as -1")
}

// pipeRW glues a reader and writer into one io.ReadWriter.
type pipeRW struct {
	io.Reader
	io.Writer
}

func TestPortDrainAndWrite(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("PYTHON_READY\nCV:1,10.0\nnoise\n")

	p := NewPort(pipeRW{in, &out}, 8)

	// Give the reader goroutine a moment to consume the fixed input.
	waitClosed(t, p)

	lines := p.Drain()
	assert.Equal(t, []string{"PYTHON_READY", "CV:1,10.0", "noise"}, lines)
	assert.Empty(t, p.Drain(), "second drain finds nothing pending")

	require.NoError(t, p.WriteLine("ACK"))
	require.NoError(t, p.WriteLine("STATUS:0,36.6,0,0,0,0,0,0,0,0,0"))
	assert.Equal(t, "ACK\nSTATUS:0,36.6,0,0,0,0,0,0,0,0,0\n", out.String())
}

func TestPortDropsWhenBufferFull(t *testing.T) {
	var out bytes.Buffer
	var input strings.Builder
	for i := 0; i < 20; i++ {
		input.WriteString("CV:0\n")
	}

	p := NewPort(pipeRW{strings.NewReader(input.String()), &out}, 4)
	waitClosed(t, p)

	lines := p.Drain()
	assert.LessOrEqual(t, len(lines), 4, "drain is bounded by the buffer size")
	assert.NotEmpty(t, lines)
}

func waitClosed(t *testing.T, p *Port) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !p.Closed() {
		if time.Now().After(deadline) {
			t.Fatal("port reader did not finish")
		}
		time.Sleep(time.Millisecond)
	}
}
