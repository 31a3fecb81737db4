package mqtt

// FakePublisher records published events for assertions in tests.
type FakePublisher struct {
	Statuses []StatusEvent
	Alarms   []AlarmEvent
	Err      error
	Closed   bool
}

func (f *FakePublisher) PublishStatus(status StatusEvent) error {
	if f.Err != nil {
		return f.Err
	}
	f.Statuses = append(f.Statuses, status)

	return nil
}

func (f *FakePublisher) PublishAlarm(event AlarmEvent) error {
	if f.Err != nil {
		return f.Err
	}
	f.Alarms = append(f.Alarms, event)

	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
