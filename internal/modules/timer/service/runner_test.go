package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"readtrack/internal/modules/timer/domain"
	"readtrack/internal/modules/timer/service"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type tickerSource struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	created chan *fakeTicker
}

func newTickerSource() *tickerSource {
	return &tickerSource{created: make(chan *fakeTicker, 4)}
}

func (s *tickerSource) New(time.Duration) clock.Ticker {
	t := &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	s.mu.Lock()
	s.tickers = append(s.tickers, t)
	s.mu.Unlock()
	s.created <- t
	return t
}

type recordingHooks struct {
	mu       sync.Mutex
	starts   []time.Time
	ends     []domain.EndReason
	startErr error
}

func (h *recordingHooks) OnStartSelected(_ context.Context, endTime time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.startErr != nil {
		return h.startErr
	}
	h.starts = append(h.starts, endTime)
	return nil
}

func (h *recordingHooks) OnReadEnd(_ context.Context, reason domain.EndReason) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends = append(h.ends, reason)
	return nil
}

func (h *recordingHooks) endReasons() []domain.EndReason {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.EndReason(nil), h.ends...)
}

type fixture struct {
	clock   *manualClock
	tickers *tickerSource
	hooks   *recordingHooks
	runner  *service.Runner
	events  <-chan service.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:   &manualClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)},
		tickers: newTickerSource(),
		hooks:   &recordingHooks{},
	}
	f.runner = service.NewRunner(f.clock, f.hooks, service.RunnerOptions{TickInterval: time.Second, NewTicker: f.tickers.New})
	f.events = f.runner.Subscribe(16)
	t.Cleanup(f.runner.Close)
	return f
}

func (f *fixture) nextTicker(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case ticker := <-f.tickers.created:
		return ticker
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker was not created")
		return nil
	}
}

func (f *fixture) nextEvent(t *testing.T) service.Event {
	t.Helper()
	select {
	case event := <-f.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received")
		return service.Event{}
	}
}

// tick advances the clock by one second and delivers a tick.
func (f *fixture) tick(t *testing.T, ticker *fakeTicker) service.Event {
	t.Helper()
	f.clock.advance(time.Second)
	select {
	case ticker.ch <- f.clock.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not accept tick")
	}
	return f.nextEvent(t)
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s was not closed", what)
	}
}

func TestRunnerThreeSecondWindowExpiresOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	end := f.clock.Now().Add(3 * time.Second)
	if err := f.runner.Start(context.Background(), end); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := f.nextTicker(t)
	if started := f.nextEvent(t); started.Type != service.EventStarted || started.Remaining != 3*time.Second {
		t.Fatalf("unexpected start event: %+v", started)
	}

	for _, want := range []time.Duration{2 * time.Second, time.Second} {
		event := f.tick(t, ticker)
		if event.Type != service.EventTick || event.Remaining != want {
			t.Fatalf("expected tick with %s remaining, got %+v", want, event)
		}
	}
	if expired := f.tick(t, ticker); expired.Type != service.EventExpired {
		t.Fatalf("expected expiry, got %+v", expired)
	}
	waitClosed(t, f.runner.Done(), "done")
	waitClosed(t, ticker.stopped, "ticker")

	if got := f.hooks.endReasons(); len(got) != 1 || got[0] != domain.EndReasonExpired {
		t.Fatalf("expected a single expired end, got %v", got)
	}
	if snap := f.runner.Snapshot(); snap.Mode != domain.ModeChoosing || !snap.EndTime.IsZero() {
		t.Fatalf("expected choosing with no end time, got %+v", snap)
	}
}

func TestRunnerPastEndTimeExpiresOnFirstTick(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if err := f.runner.Start(context.Background(), f.clock.Now().Add(-10*time.Second)); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := f.nextTicker(t)
	f.nextEvent(t)
	if event := f.tick(t, ticker); event.Type != service.EventExpired {
		t.Fatalf("expected expiry on first tick, got %+v", event)
	}
	waitClosed(t, f.runner.Done(), "done")
	if got := f.hooks.endReasons(); len(got) != 1 {
		t.Fatalf("expected one end hook, got %v", got)
	}
}

func TestRunnerStopSuppressesExpiryAndSecondStopFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if err := f.runner.Start(context.Background(), f.clock.Now().Add(time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := f.nextTicker(t)
	f.nextEvent(t)
	f.tick(t, ticker)

	if err := f.runner.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if event := f.nextEvent(t); event.Type != service.EventStopped {
		t.Fatalf("expected stopped event, got %+v", event)
	}
	waitClosed(t, f.runner.Done(), "done")
	waitClosed(t, ticker.stopped, "ticker")

	err := f.runner.Stop(context.Background())
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on second stop, got %v", err)
	}
	if got := f.hooks.endReasons(); len(got) != 1 || got[0] != domain.EndReasonStopped {
		t.Fatalf("expected one stopped end, got %v", got)
	}
}

func TestRunnerStartWhileReadingIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	end := f.clock.Now().Add(time.Minute)
	if err := f.runner.Start(context.Background(), end); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.nextTicker(t)
	err := f.runner.Start(context.Background(), end.Add(time.Minute))
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if snap := f.runner.Snapshot(); !snap.EndTime.Equal(end) {
		t.Fatalf("end time changed to %s", snap.EndTime)
	}
}

func TestRunnerFailedStartHookLeavesChoosing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.hooks.startErr = apperrors.ErrActiveSessionExists
	err := f.runner.Start(context.Background(), f.clock.Now().Add(time.Minute))
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected start hook error, got %v", err)
	}
	if mode := f.runner.Snapshot().Mode; mode != domain.ModeChoosing {
		t.Fatalf("expected choosing, got %s", mode)
	}
	select {
	case <-f.tickers.created:
		t.Fatalf("ticker should not be created")
	default:
	}
}

func TestRunnerCloseRunsNoHooks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if err := f.runner.Start(context.Background(), f.clock.Now().Add(time.Minute)); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := f.nextTicker(t)
	f.runner.Close()
	waitClosed(t, f.runner.Done(), "done")
	waitClosed(t, ticker.stopped, "ticker")
	if got := f.hooks.endReasons(); len(got) != 0 {
		t.Fatalf("close must not end the window, got %v", got)
	}
	if err := f.runner.Start(context.Background(), time.Now()); !errors.Is(err, service.ErrRunnerClosed) {
		t.Fatalf("expected start after close to fail, got %v", err)
	}
}

func TestRunnerRestartsAfterExpiry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for round := 0; round < 2; round++ {
		if err := f.runner.Start(context.Background(), f.clock.Now().Add(time.Second)); err != nil {
			t.Fatalf("start round %d: %v", round, err)
		}
		ticker := f.nextTicker(t)
		f.nextEvent(t)
		if event := f.tick(t, ticker); event.Type != service.EventExpired {
			t.Fatalf("round %d: expected expiry, got %+v", round, event)
		}
		waitClosed(t, f.runner.Done(), "done")
	}
	if got := f.hooks.endReasons(); len(got) != 2 {
		t.Fatalf("expected two ends, got %v", got)
	}
}

// gatedHooks blocks the first OnReadEnd until release is closed and logs the
// order of every hook call.
type gatedHooks struct {
	mu      sync.Mutex
	calls   []string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (h *gatedHooks) OnStartSelected(context.Context, time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, "start")
	return nil
}

func (h *gatedHooks) OnReadEnd(_ context.Context, reason domain.EndReason) error {
	h.mu.Lock()
	h.calls = append(h.calls, "end:"+string(reason))
	h.mu.Unlock()
	h.once.Do(func() {
		close(h.entered)
		<-h.release
	})
	return nil
}

func (h *gatedHooks) log() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func TestRunnerStartWaitsForPreviousReadEnd(t *testing.T) {
	t.Parallel()
	clk := &manualClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
	tickers := newTickerSource()
	hooks := &gatedHooks{entered: make(chan struct{}), release: make(chan struct{})}
	runner := service.NewRunner(clk, hooks, service.RunnerOptions{TickInterval: time.Second, NewTicker: tickers.New})
	t.Cleanup(runner.Close)

	if err := runner.Start(context.Background(), clk.Now().Add(time.Second)); err != nil {
		t.Fatalf("start: %v", err)
	}
	ticker := <-tickers.created
	clk.advance(time.Second)
	ticker.ch <- clk.Now()
	waitClosed(t, hooks.entered, "read end hook")

	started := make(chan error, 1)
	go func() { started <- runner.Start(context.Background(), clk.Now().Add(5*time.Second)) }()
	select {
	case err := <-started:
		t.Fatalf("start returned while the previous read end was running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got := hooks.log(); len(got) != 2 {
		t.Fatalf("new window hook ran early: %v", got)
	}

	close(hooks.release)
	select {
	case err := <-started:
		if err != nil {
			t.Fatalf("restart: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("start did not resume after read end")
	}
	want := []string{"start", "end:expired", "start"}
	got := hooks.log()
	if len(got) != len(want) {
		t.Fatalf("hook order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", got, want)
		}
	}
}
