package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot captures one control cycle's sensor readings and decisions
type Snapshot struct {
	Timestamp time.Time
	Color     ColorReading
	TempC     float64
	LDR       int
	Blood     BloodState
	Bubble    int
	Link      LinkState
	System    SystemOutput
}

// Domain value objects
type ColorReading struct {
	RedVal   int
	GreenVal int
	BlueVal  int
	RedFreq  uint32
}

type BloodState struct {
	Detected       bool
	Score          int
	Confidence     int
	LeakConfirmed  bool
	PersistentLeak bool
}

type LinkState struct {
	Connected bool
	TimedOut  bool
	CVCode    int
}

type SystemOutput struct {
	State        int
	Cause        int
	PumpsEnabled bool
	BuzzerOn     bool
}
