package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now returns wall-clock UTC. UTC() drops the monotonic reading, so every
// comparison against a user-chosen end time is a wall-clock comparison.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Ticker is the periodic source that drives timer ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// NewSystemTicker wraps time.NewTicker, which paces itself on the monotonic clock.
func NewSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}
