package domain

import (
	"fmt"
	"time"

	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
)

type Mode int

const (
	ModeChoosing Mode = iota
	ModeReading
)

func (m Mode) String() string {
	switch m {
	case ModeChoosing:
		return "choosing"
	case ModeReading:
		return "reading"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// EndReason tells the shell why a reading window closed.
type EndReason string

const (
	EndReasonExpired EndReason = "expired"
	EndReasonStopped EndReason = "stopped"
)

func (r EndReason) Validate() error {
	switch r {
	case EndReasonExpired, EndReasonStopped:
		return nil
	default:
		return fmt.Errorf("unsupported end reason %q", string(r))
	}
}

// State is either Choosing or Reading. The unexported marker keeps the set closed.
type State interface {
	Mode() Mode
	isState()
}

type Choosing struct{}

func (Choosing) Mode() Mode { return ModeChoosing }
func (Choosing) isState()   {}

// Reading holds the end time for the active window and the interval observed
// at the last tick.
type Reading struct {
	EndTime  time.Time
	Interval Interval
}

func (Reading) Mode() Mode { return ModeReading }
func (Reading) isState()   {}

type Interval struct {
	Start time.Time
	End   time.Time
}

// Remaining is End-Start rounded toward zero to whole seconds.
func (i Interval) Remaining() time.Duration {
	return i.End.Sub(i.Start).Truncate(time.Second)
}

type TickResult struct {
	Interval  Interval
	Remaining time.Duration
	Expired   bool
}

// Machine is the two-state reading timer. It is not safe for concurrent use;
// the caller owns it from a single goroutine or guards it.
type Machine struct {
	clock clock.Clock
	state State
}

func NewMachine(clk clock.Clock) *Machine {
	return &Machine{clock: clk, state: Choosing{}}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Mode() Mode { return m.state.Mode() }

// EndTime returns the chosen end time while Reading.
func (m *Machine) EndTime() (time.Time, bool) {
	r, ok := m.state.(Reading)
	if !ok {
		return time.Time{}, false
	}
	return r.EndTime, true
}

// SelectEndTime starts a reading window ending at candidate. Past candidates
// are accepted and expire on the next tick.
func (m *Machine) SelectEndTime(candidate time.Time) error {
	if _, ok := m.state.(Choosing); !ok {
		return m.rejected("select end time")
	}
	m.state = Reading{
		EndTime:  candidate,
		Interval: Interval{Start: m.clock.Now(), End: candidate},
	}
	return nil
}

// Tick recomputes the remaining time from the clock. When nothing is left the
// machine returns to Choosing and the result reports Expired.
func (m *Machine) Tick() (TickResult, error) {
	r, ok := m.state.(Reading)
	if !ok {
		return TickResult{}, m.rejected("tick")
	}
	interval := Interval{Start: m.clock.Now(), End: r.EndTime}
	result := TickResult{Interval: interval, Remaining: interval.Remaining()}
	if result.Remaining <= 0 {
		result.Expired = true
		m.state = Choosing{}
		return result, nil
	}
	r.Interval = interval
	m.state = r
	return result, nil
}

// Stop ends the window early and returns the state that was left.
func (m *Machine) Stop() (Reading, error) {
	r, ok := m.state.(Reading)
	if !ok {
		return Reading{}, m.rejected("stop")
	}
	m.state = Choosing{}
	return r, nil
}

func (m *Machine) rejected(op string) error {
	return fmt.Errorf("%w: %s while %s", apperrors.ErrInvalidTransition, op, m.state.Mode())
}
