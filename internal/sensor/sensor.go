// Package sensor defines the collaborator interfaces for the raw sensor
// peripherals. The real frequency-to-RGB sampler, temperature probe and
// LDR live outside the core; the core only consumes canonical readings.
// Scripted implementations allow the full decision path to run without
// hardware.
package sensor

import "github.com/akatsukimed/dialyctl/internal/blood"

// TempErrValue is the probe's read-failure sentinel (DS18B20 convention).
// It is reported as-is and must never be compared against the alarm
// threshold.
const TempErrValue = -127.0

// ColorSensor produces one color sample per control cycle.
type ColorSensor interface {
	ReadColor() (blood.Sample, error)
}

// TempProbe produces the dialysate temperature in °C.
type TempProbe interface {
	ReadTemp() (float64, error)
}

// LDRSensor produces the light-dependent-resistor reading used for bubble
// detection.
type LDRSensor interface {
	ReadLDR() (int, error)
}

// Suite bundles the three probes the control loop polls each cycle.
type Suite struct {
	Color ColorSensor
	Temp  TempProbe
	LDR   LDRSensor
}
