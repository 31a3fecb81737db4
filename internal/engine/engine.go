// Package engine runs the control cycle: drain inbound commands, poll the
// sensors, advance the detectors, arbitrate alarms and drive the actuators.
// All mutable state is owned by the single loop goroutine; collaborators
// that need their own goroutines (link reader, telemetry flusher) hide them
// behind channel or mutex boundaries.
package engine

import (
	"context"
	"time"

	"github.com/akatsukimed/dialyctl/internal/actuator"
	"github.com/akatsukimed/dialyctl/internal/alarm"
	"github.com/akatsukimed/dialyctl/internal/blood"
	"github.com/akatsukimed/dialyctl/internal/bubble"
	"github.com/akatsukimed/dialyctl/internal/config"
	"github.com/akatsukimed/dialyctl/internal/cvlink"
	"github.com/akatsukimed/dialyctl/internal/link"
	"github.com/akatsukimed/dialyctl/internal/logger"
	"github.com/akatsukimed/dialyctl/internal/mqtt"
	"github.com/akatsukimed/dialyctl/internal/sensor"
	"github.com/akatsukimed/dialyctl/internal/telemetry"
)

// Engine owns all decision state and steps it once per tick.
type Engine struct {
	cfg *config.Config

	thresholds  blood.Thresholds
	calibration blood.Calibration

	tracker *blood.Tracker
	bubble  *bubble.Machine
	monitor *cvlink.Monitor

	port      *link.Port
	sensors   sensor.Suite
	driver    actuator.Driver
	collector telemetry.Collector
	publisher mqtt.Publisher

	lastSample blood.Sample
	lastScore  int
	lastDetect bool
	lastTemp   float64
	lastLDR    int

	lastState alarm.SystemState
	lastCmd   actuator.Command
	applied   bool

	lastStatus  time.Time
	lastDisplay time.Time

	linkWarned bool
	writeFail  bool
}

// New assembles an Engine from its collaborators. The publisher may be nil
// when remote publishing is disabled.
func New(cfg *config.Config, port *link.Port, sensors sensor.Suite, driver actuator.Driver, collector telemetry.Collector, publisher mqtt.Publisher) *Engine {
	return &Engine{
		cfg: cfg,
		thresholds: blood.Thresholds{
			RedMin:   cfg.RedMin,
			RedMax:   cfg.RedMax,
			GreenMax: cfg.GreenMax,
			BlueMax:  cfg.BlueMax,
		},
		calibration: blood.Calibration{
			Red:   blood.ChannelRange{Min: cfg.CalRedMin, Max: cfg.CalRedMax},
			Green: blood.ChannelRange{Min: cfg.CalGreenMin, Max: cfg.CalGreenMax},
			Blue:  blood.ChannelRange{Min: cfg.CalBlueMin, Max: cfg.CalBlueMax},
		},
		tracker:   blood.NewTracker(cfg.ConfidenceWindow, cfg.ConfidenceThreshold),
		bubble:    bubble.NewMachine(cfg.BubbleThreshold),
		monitor:   cvlink.NewMonitor(),
		port:      port,
		sensors:   sensors,
		driver:    driver,
		collector: collector,
		publisher: publisher,
		lastTemp:  sensor.TempErrValue,
	}
}

// Run executes the control loop at the configured interval until the
// context is cancelled. The pumps stay off until the first full cycle has
// produced a decision.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.driver.Apply(actuator.Command{}); err != nil {
		logger.Error().Err(err).Msg("failed to apply startup safe state")
	}

	interval := time.Duration(e.cfg.Interval) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", interval).
		Float64("temp_threshold", e.cfg.TempThreshold).
		Int("bubble_threshold", e.cfg.BubbleThreshold).
		Msg("control loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("control loop stopping")
			return nil
		case now := <-ticker.C:
			e.Step(ctx, now)
		}
	}
}

// Step performs one full control cycle at the given instant. Time comes
// from the caller so the whole decision path is deterministic under test.
func (e *Engine) Step(ctx context.Context, now time.Time) {
	e.drainCommands(now)
	e.pollSensors(now)
	e.monitor.Check(now)
	e.checkLinkWarning(now)

	decision := alarm.Decide(alarm.Inputs{
		LeakConfirmed:   e.tracker.LeakConfirmed(),
		PersistentLeak:  e.tracker.PersistentLeak(),
		Confidence:      e.tracker.Confidence(),
		BubbleTriggered: e.bubble.Triggered(),
		HighTemp:        e.highTemp(),
		Temperature:     e.lastTemp,
		LinkConnected:   e.monitor.Connected(),
		LinkTimedOut:    e.monitor.TimedOut(),
		CVCode:          e.monitor.Code(),
	})

	e.actuate(decision, now)
	e.noteTransition(decision, now)
	e.heartbeat(decision, now)
	e.record(ctx, decision, now)
}

// drainCommands consumes every pending inbound line and applies it.
// Malformed lines are dropped without affecting the cycle.
func (e *Engine) drainCommands(now time.Time) {
	for _, line := range e.port.Drain() {
		cmd, ok := link.ParseCommand(line)
		if !ok {
			logger.Debug().Str("line", line).Msg("ignoring unrecognized line")
			continue
		}

		switch cmd.Type {
		case link.CmdReady:
			e.monitor.HandleReady(now)
			e.ack()
			logger.Info().Msg("monitor process ready")

		case link.CmdCVState:
			e.monitor.HandleState(cmd.Code, now)
			e.ack()

		case link.CmdResetBubble:
			e.bubble.Reset()
			logger.Info().Msg("bubble latch reset by operator")

		case link.CmdResetBlood:
			e.tracker.Reset()
			logger.Info().Msg("blood leak latch reset by operator")

		case link.CmdSetThreshold:
			e.thresholds.RedMin = cmd.RedMin
			logger.Info().Int("red_min", cmd.RedMin).Msg("red threshold updated")

		case link.CmdSetBloodThresholds:
			e.thresholds = blood.Thresholds{
				RedMin:   cmd.Thresholds[0],
				RedMax:   cmd.Thresholds[1],
				GreenMax: cmd.Thresholds[2],
				BlueMax:  cmd.Thresholds[3],
			}
			logger.Info().
				Int("red_min", e.thresholds.RedMin).
				Int("red_max", e.thresholds.RedMax).
				Int("green_max", e.thresholds.GreenMax).
				Int("blue_max", e.thresholds.BlueMax).
				Msg("blood thresholds updated")

		case link.CmdCalibrate:
			e.calibration = blood.Calibration{
				Red:   blood.ChannelRange{Min: cmd.Calibration[0], Max: cmd.Calibration[1]},
				Green: blood.ChannelRange{Min: cmd.Calibration[2], Max: cmd.Calibration[3]},
				Blue:  blood.ChannelRange{Min: cmd.Calibration[4], Max: cmd.Calibration[5]},
			}
			logger.Info().Msg("color calibration updated")
		}
	}
}

func (e *Engine) ack() {
	if err := e.port.WriteLine("ACK"); err != nil {
		logger.Debug().Err(err).Msg("ack write failed")
	}
}

// pollSensors reads every probe once. A failed read leaves the matching
// detector untouched this cycle rather than feeding it a fabricated value.
func (e *Engine) pollSensors(now time.Time) {
	temp, err := e.sensors.Temp.ReadTemp()
	if err != nil {
		logger.Warn().Err(err).Msg("temperature read failed")
		e.lastTemp = sensor.TempErrValue
	} else {
		e.lastTemp = temp
	}

	raw, err := e.sensors.Color.ReadColor()
	if err != nil {
		logger.Warn().Err(err).Msg("color read failed")
	} else {
		s := raw
		// Bench doubles may script channel values directly without pulse
		// counts; live samples are remapped through the current calibration.
		if raw.RedFreq != 0 {
			s.RedVal = blood.MapFrequency(raw.RedFreq, e.calibration.Red)
		}
		if raw.GreenFreq != 0 {
			s.GreenVal = blood.MapFrequency(raw.GreenFreq, e.calibration.Green)
		}
		if raw.BlueFreq != 0 {
			s.BlueVal = blood.MapFrequency(raw.BlueFreq, e.calibration.Blue)
		}

		detected, score := blood.Classify(s, e.thresholds)
		e.tracker.Update(detected, now)
		e.lastSample = s
		e.lastScore = score
		e.lastDetect = detected
	}

	ldr, err := e.sensors.LDR.ReadLDR()
	if err != nil {
		logger.Warn().Err(err).Msg("ldr read failed")
	} else {
		e.lastLDR = ldr
		e.bubble.Process(ldr)
	}
}

// highTemp compares against the alarm threshold, never trusting the probe
// failure sentinel.
func (e *Engine) highTemp() bool {
	return e.lastTemp != sensor.TempErrValue && e.lastTemp > e.cfg.TempThreshold
}

func (e *Engine) checkLinkWarning(now time.Time) {
	if e.monitor.Warning(now) {
		if !e.linkWarned {
			logger.Warn().Msg("cv feed quiet beyond advisory window")
			e.linkWarned = true
		}
		return
	}
	e.linkWarned = false
}

// actuate applies the resolved command. Changes go out immediately; an
// unchanged command is refreshed at the display cadence to recover from
// transient driver glitches.
func (e *Engine) actuate(decision alarm.Decision, now time.Time) {
	cmd := actuator.FromDecision(decision, e.cfg.PumpASpeed, e.cfg.PumpBSpeed)

	refresh := now.Sub(e.lastDisplay) >= time.Duration(e.cfg.DisplayInterval)*time.Millisecond
	if e.applied && cmd == e.lastCmd && !refresh {
		return
	}

	if err := e.driver.Apply(cmd); err != nil {
		logger.Error().Err(err).Msg("actuator apply failed")
		return
	}

	e.lastCmd = cmd
	e.applied = true
	e.lastDisplay = now
}

// noteTransition logs and publishes arbitrated state changes.
func (e *Engine) noteTransition(decision alarm.Decision, now time.Time) {
	if decision.State == e.lastState {
		return
	}

	event := logger.Info()
	if decision.State == alarm.StateAlarm || decision.State == alarm.StateLinkLost {
		event = logger.Warn()
	}
	event.
		Str("from", e.lastState.String()).
		Str("to", decision.State.String()).
		Str("cause", decision.Cause.String()).
		Bool("pumps_enabled", decision.PumpsEnabled).
		Msg("system state changed")

	if e.publisher != nil {
		err := e.publisher.PublishAlarm(mqtt.AlarmEvent{
			Timestamp: now,
			State:     decision.State,
			Cause:     decision.Cause,
		})
		if err != nil {
			logger.Debug().Err(err).Msg("alarm publish failed")
		}
	}

	e.lastState = decision.State
}

// heartbeat emits the STATUS line and the remote status event at the
// configured cadence.
func (e *Engine) heartbeat(decision alarm.Decision, now time.Time) {
	if now.Sub(e.lastStatus) < time.Duration(e.cfg.StatusInterval)*time.Millisecond {
		return
	}
	e.lastStatus = now

	cmd := actuator.FromDecision(decision, e.cfg.PumpASpeed, e.cfg.PumpBSpeed)
	line := link.FormatStatus(link.Status{
		CVState:       e.monitor.Code(),
		TempC:         e.lastTemp,
		RedFreq:       e.lastSample.RedFreq,
		RedVal:        e.lastSample.RedVal,
		LDR:           e.lastLDR,
		PumpASpeed:    cmd.PumpASpeed,
		PumpBSpeed:    cmd.PumpBSpeed,
		BubbleState:   e.bubble.State(),
		BloodDetected: e.lastDetect,
		LeakConfirmed: e.tracker.LeakConfirmed(),
		Confidence:    e.tracker.Confidence(),
	})
	if err := e.port.WriteLine(line); err != nil {
		if !e.writeFail {
			logger.Warn().Err(err).Msg("status write failed")
			e.writeFail = true
		}
	} else {
		e.writeFail = false
	}

	if e.publisher != nil {
		err := e.publisher.PublishStatus(mqtt.StatusEvent{
			Timestamp:     now,
			SystemState:   decision.State,
			CVState:       int(e.monitor.Code()),
			TempC:         e.lastTemp,
			LDR:           e.lastLDR,
			Confidence:    e.tracker.Confidence(),
			LeakConfirmed: e.tracker.LeakConfirmed(),
			PumpsEnabled:  decision.PumpsEnabled,
		})
		if err != nil {
			logger.Debug().Err(err).Msg("status publish failed")
		}
	}
}

// record hands the cycle snapshot to the telemetry collector.
func (e *Engine) record(ctx context.Context, decision alarm.Decision, now time.Time) {
	snapshot := &telemetry.Snapshot{
		Timestamp: now,
		Color: telemetry.ColorReading{
			RedVal:   e.lastSample.RedVal,
			GreenVal: e.lastSample.GreenVal,
			BlueVal:  e.lastSample.BlueVal,
			RedFreq:  e.lastSample.RedFreq,
		},
		TempC: e.lastTemp,
		LDR:   e.lastLDR,
		Blood: telemetry.BloodState{
			Detected:       e.lastDetect,
			Score:          e.lastScore,
			Confidence:     e.tracker.Confidence(),
			LeakConfirmed:  e.tracker.LeakConfirmed(),
			PersistentLeak: e.tracker.PersistentLeak(),
		},
		Bubble: int(e.bubble.State()),
		Link: telemetry.LinkState{
			Connected: e.monitor.Connected(),
			TimedOut:  e.monitor.TimedOut(),
			CVCode:    int(e.monitor.Code()),
		},
		System: telemetry.SystemOutput{
			State:        int(decision.State),
			Cause:        int(decision.Cause),
			PumpsEnabled: decision.PumpsEnabled,
			BuzzerOn:     decision.BuzzerOn,
		},
	}

	if err := e.collector.Record(ctx, snapshot); err != nil {
		logger.Debug().Err(err).Msg("telemetry record failed")
	}
}
