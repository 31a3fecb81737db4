package sensor

import "github.com/akatsukimed/dialyctl/internal/blood"

// FakeColorSensor returns scripted samples; when exhausted it repeats the
// last one, so a steady condition is easy to script.
type FakeColorSensor struct {
	Samples []blood.Sample
	Err     error

	index int
}

func (f *FakeColorSensor) ReadColor() (blood.Sample, error) {
	if f.Err != nil {
		return blood.Sample{}, f.Err
	}
	if len(f.Samples) == 0 {
		return blood.Sample{}, nil
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return s, nil
}

// FakeTempProbe returns scripted temperatures, repeating the last.
type FakeTempProbe struct {
	Temps []float64
	Err   error

	index int
}

func (f *FakeTempProbe) ReadTemp() (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Temps) == 0 {
		return 0, nil
	}

	t := f.Temps[f.index]
	if f.index < len(f.Temps)-1 {
		f.index++
	}

	return t, nil
}

// FakeLDRSensor returns scripted LDR readings, repeating the last.
type FakeLDRSensor struct {
	Readings []int
	Err      error

	index int
}

func (f *FakeLDRSensor) ReadLDR() (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Readings) == 0 {
		return 0, nil
	}

	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}

	return r, nil
}
