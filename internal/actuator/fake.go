package actuator

// FakeDriver records every applied command for assertions in tests.
type FakeDriver struct {
	Applied []Command
	Err     error
}

func (f *FakeDriver) Apply(cmd Command) error {
	if f.Err != nil {
		return f.Err
	}
	f.Applied = append(f.Applied, cmd)

	return nil
}

// Last returns the most recently applied command, or the zero Command if
// none was applied yet.
func (f *FakeDriver) Last() Command {
	if len(f.Applied) == 0 {
		return Command{}
	}

	return f.Applied[len(f.Applied)-1]
}
