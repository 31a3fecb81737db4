package sensor

import "github.com/akatsukimed/dialyctl/internal/blood"

// Stub implementations report nominal readings forever. Used when the
// daemon runs on a bench without the peripheral board attached.

type StubColorSensor struct{}

func (StubColorSensor) ReadColor() (blood.Sample, error) {
	return blood.Sample{RedVal: 120, GreenVal: 120, BlueVal: 120}, nil
}

type StubTempProbe struct{}

func (StubTempProbe) ReadTemp() (float64, error) {
	return 36.5, nil
}

type StubLDRSensor struct{}

func (StubLDRSensor) ReadLDR() (int, error) {
	return 800, nil
}

// StubSuite returns a Suite of nominal stub sensors.
func StubSuite() Suite {
	return Suite{
		Color: StubColorSensor{},
		Temp:  StubTempProbe{},
		LDR:   StubLDRSensor{},
	}
}
