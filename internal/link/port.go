package link

import (
	"bufio"
	"io"
	"sync"

	"github.com/akatsukimed/dialyctl/internal/errors"
	"github.com/akatsukimed/dialyctl/internal/logger"
)

// Port wraps the raw byte stream to the monitoring process. A reader
// goroutine feeds inbound lines into a bounded channel so the control loop
// can drain them without ever blocking; lines arriving while the buffer is
// full are dropped, which the protocol tolerates (the sender repeats state
// at its own cadence).
type Port struct {
	rw    io.ReadWriter
	lines chan string

	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

// NewPort starts reading from rw with the given inbound buffer size.
func NewPort(rw io.ReadWriter, buffer int) *Port {
	if buffer <= 0 {
		buffer = 32
	}

	p := &Port{
		rw:     rw,
		lines:  make(chan string, buffer),
		closed: make(chan struct{}),
	}
	go p.readLoop()

	return p
}

func (p *Port) readLoop() {
	scanner := bufio.NewScanner(p.rw)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.closed:
			return
		default:
			logger.Warn().Msg("link inbound buffer full, dropping line")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug().Err(err).Msg("link reader stopped")
	}
	p.once.Do(func() { close(p.closed) })
}

// Drain returns every line currently pending, without blocking. Bounded by
// the buffer size, so a chatty peer cannot starve the control cycle.
func (p *Port) Drain() []string {
	var pending []string
	for {
		select {
		case line := <-p.lines:
			pending = append(pending, line)
		default:
			return pending
		}
	}
}

// WriteLine sends one line to the peer, appending the newline terminator.
func (p *Port) WriteLine(line string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err := io.WriteString(p.rw, line+"\n"); err != nil {
		return errors.New().Wrap(errors.ErrLinkWrite, err)
	}

	return nil
}

// Closed reports whether the underlying stream has ended.
func (p *Port) Closed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}
