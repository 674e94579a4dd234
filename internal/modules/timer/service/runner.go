package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"readtrack/internal/modules/timer/domain"
	timerout "readtrack/internal/modules/timer/port/out"
	"readtrack/internal/platform/clock"

	hclog "github.com/hashicorp/go-hclog"
)

// ErrRunnerClosed is returned by Start after Close.
var ErrRunnerClosed = errors.New("timer runner is closed")

type RunnerOptions struct {
	TickInterval time.Duration
	NewTicker    clock.TickerFunc
	Logger       hclog.Logger
}

// Runner drives a Machine from a ticker goroutine. Every transition happens
// under mu; lifecycle serializes the hook calls so a window's OnReadEnd has
// returned before the next OnStartSelected starts.
type Runner struct {
	lifecycle sync.Mutex
	mu        sync.Mutex
	machine   *domain.Machine
	clock     clock.Clock
	hooks     timerout.Hooks
	options   RunnerOptions
	hookCtx   context.Context
	events    []chan Event
	stopCh    chan struct{}
	done      chan struct{}
	remaining time.Duration
	closed    bool
}

func NewRunner(clk clock.Clock, hooks timerout.Hooks, options RunnerOptions) *Runner {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.NewTicker == nil {
		options.NewTicker = clock.NewSystemTicker
	}
	if options.Logger == nil {
		options.Logger = hclog.NewNullLogger()
	}
	done := make(chan struct{})
	close(done)
	return &Runner{
		machine: domain.NewMachine(clk),
		clock:   clk,
		hooks:   hooks,
		options: options,
		done:    done,
	}
}

// Subscribe registers an observer. Slow observers miss events rather than
// block the ticker.
func (r *Runner) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	r.mu.Lock()
	if r.closed {
		close(ch)
	} else {
		r.events = append(r.events, ch)
	}
	r.mu.Unlock()
	return ch
}

// Start opens a reading window ending at endTime and starts ticking. When
// OnStartSelected fails the machine goes back to Choosing and nothing ticks.
func (r *Runner) Start(ctx context.Context, endTime time.Time) error {
	r.acquireLifecycle()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRunnerClosed
	}
	if err := r.machine.SelectEndTime(endTime); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	hookCtx := context.WithoutCancel(ctx)
	if r.hooks != nil {
		if err := r.hooks.OnStartSelected(hookCtx, endTime); err != nil {
			r.mu.Lock()
			_, _ = r.machine.Stop()
			r.mu.Unlock()
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunnerClosed
	}
	r.hookCtx = hookCtx
	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})
	if end, ok := r.machine.State().(domain.Reading); ok {
		r.remaining = end.Interval.Remaining()
	}
	r.emitLocked(Event{Type: EventStarted, EndTime: endTime, Remaining: r.remaining, At: r.clock.Now()})
	go r.run(r.options.NewTicker(r.options.TickInterval), r.stopCh, r.done)
	return nil
}

// acquireLifecycle takes the lifecycle lock once no expired loop is still
// finishing. A loop that has left Reading but not closed done is about to run
// (or is running) OnReadEnd, which needs the lock, so wait for it unlocked.
func (r *Runner) acquireLifecycle() {
	for {
		r.lifecycle.Lock()
		r.mu.Lock()
		previous := r.done
		reading := r.machine.Mode() == domain.ModeReading
		r.mu.Unlock()
		if reading {
			return
		}
		select {
		case <-previous:
			return
		default:
		}
		r.lifecycle.Unlock()
		<-previous
	}
}

// Stop closes the window early. OnReadEnd runs once with reason stopped; a
// Stop with no open window returns ErrInvalidTransition and runs nothing.
func (r *Runner) Stop(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	reading, err := r.machine.Stop()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.haltLocked()
	r.remaining = 0
	r.mu.Unlock()

	var hookErr error
	if r.hooks != nil {
		hookErr = r.hooks.OnReadEnd(context.WithoutCancel(ctx), domain.EndReasonStopped)
	}
	r.emit(Event{Type: EventStopped, EndTime: reading.EndTime, At: r.clock.Now()})
	return hookErr
}

// Close stops ticking and releases observers without running any hook. The
// window, if one is open, stays open for a later resume.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.haltLocked()
	events := r.events
	r.events = nil
	r.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Done is closed when the current ticking loop has exited.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{Mode: r.machine.Mode(), Remaining: r.remaining}
	if end, ok := r.machine.EndTime(); ok {
		snap.EndTime = end
	}
	return snap
}

func (r *Runner) run(ticker clock.Ticker, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if finished := r.tick(stop); finished {
				return
			}
		}
	}
}

// tick advances the machine and reports whether the loop should exit.
func (r *Runner) tick(stop <-chan struct{}) bool {
	r.mu.Lock()
	select {
	case <-stop:
		r.mu.Unlock()
		return true
	default:
	}
	result, err := r.machine.Tick()
	if err != nil {
		r.mu.Unlock()
		r.options.Logger.Debug("tick after window closed", "error", err)
		return true
	}
	r.remaining = result.Remaining
	if !result.Expired {
		r.emitLocked(Event{Type: EventTick, EndTime: result.Interval.End, Remaining: result.Remaining, At: result.Interval.Start})
		r.mu.Unlock()
		return false
	}
	r.remaining = 0
	ctx := r.hookCtx
	r.mu.Unlock()

	r.expire(ctx, result)
	return true
}

func (r *Runner) expire(ctx context.Context, result domain.TickResult) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	if r.hooks != nil {
		if err := r.hooks.OnReadEnd(ctx, domain.EndReasonExpired); err != nil {
			r.options.Logger.Warn("read end hook failed", "reason", string(domain.EndReasonExpired), "error", err)
		}
	}
	r.emit(Event{Type: EventExpired, EndTime: result.Interval.End, At: result.Interval.Start})
}

func (r *Runner) haltLocked() {
	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
}

func (r *Runner) emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitLocked(event)
}

func (r *Runner) emitLocked(event Event) {
	for _, ch := range r.events {
		select {
		case ch <- event:
		default:
		}
	}
}
