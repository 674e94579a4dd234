package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"readtrack/internal/modules/timer/domain"
	timerout "readtrack/internal/modules/timer/port/out"
	"readtrack/internal/modules/timer/service"
	apperrors "readtrack/internal/platform/errors"
)

type fakeGateway struct {
	active  *timerout.ActiveSession
	ended   []timerout.EndedSession
	nextID  string
	title   string
	endErr  error
	started int
}

func (g *fakeGateway) Start(_ context.Context, bookID string, plannedEnd time.Time) (timerout.ActiveSession, error) {
	if g.active != nil {
		return timerout.ActiveSession{}, apperrors.ErrActiveSessionExists
	}
	g.started++
	g.active = &timerout.ActiveSession{SessionID: g.nextID, BookID: bookID, BookTitle: g.title, PlannedEnd: plannedEnd}
	return *g.active, nil
}

func (g *fakeGateway) End(_ context.Context, sessionID string, reason domain.EndReason, pagesRead int) (timerout.EndedSession, error) {
	if g.endErr != nil {
		return timerout.EndedSession{}, g.endErr
	}
	ended := timerout.EndedSession{SessionID: sessionID, BookID: g.active.BookID, Reason: reason, PagesAfter: pagesRead, DurationSec: 60}
	g.ended = append(g.ended, ended)
	g.active = nil
	return ended, nil
}

func (g *fakeGateway) Active(context.Context) (timerout.ActiveSession, bool, error) {
	if g.active == nil {
		return timerout.ActiveSession{}, false, nil
	}
	return *g.active, true, nil
}

type fakeDispatcher struct {
	events []string
	err    error
}

func (d *fakeDispatcher) ReadStart(_ context.Context, s timerout.ActiveSession) ([]string, error) {
	d.events = append(d.events, "read_start:"+s.SessionID)
	return []string{"locked"}, d.err
}

func (d *fakeDispatcher) ReadEnd(_ context.Context, s timerout.ActiveSession, reason domain.EndReason) ([]string, error) {
	d.events = append(d.events, "read_end:"+s.SessionID+":"+string(reason))
	return []string{"unlocked"}, d.err
}

type fakeChime struct{ plays int }

func (c *fakeChime) Play(context.Context) error {
	c.plays++
	return errors.New("no audio device")
}

type staticClock struct{ now time.Time }

func (c staticClock) Now() time.Time { return c.now }

func newLifecycle(gateway *fakeGateway, dispatcher *fakeDispatcher, chime *fakeChime, now time.Time) *service.LifecycleService {
	return service.NewLifecycleService(gateway, dispatcher, chime, staticClock{now: now}, nil)
}

func TestLifecycleBeginAndFinishDispatchHooks(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	gateway := &fakeGateway{nextID: "sess-1", title: "Dune"}
	dispatcher := &fakeDispatcher{err: errors.New("hook down")}
	chime := &fakeChime{}
	svc := newLifecycle(gateway, dispatcher, chime, now)

	began, err := svc.Begin(context.Background(), "book-1", now.Add(25*time.Minute))
	if err != nil {
		t.Fatalf("begin should ignore hook failures: %v", err)
	}
	if began.Session.BookTitle != "Dune" || len(began.HookMessages) != 1 {
		t.Fatalf("unexpected begin result: %+v", began)
	}

	finished, err := svc.Finish(context.Background(), domain.EndReasonExpired, 12)
	if err != nil {
		t.Fatalf("finish should ignore hook and chime failures: %v", err)
	}
	if finished.Session.Reason != domain.EndReasonExpired || finished.Session.PagesAfter != 12 {
		t.Fatalf("unexpected finish result: %+v", finished)
	}
	want := []string{"read_start:sess-1", "read_end:sess-1:expired"}
	if len(dispatcher.events) != 2 || dispatcher.events[0] != want[0] || dispatcher.events[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, dispatcher.events)
	}
	if chime.plays != 1 {
		t.Fatalf("expected chime on expiry, got %d plays", chime.plays)
	}
}

func TestLifecycleStoppedDoesNotChime(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	gateway := &fakeGateway{nextID: "sess-1"}
	chime := &fakeChime{}
	svc := newLifecycle(gateway, &fakeDispatcher{}, chime, now)
	if _, err := svc.Begin(context.Background(), "book-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := svc.Finish(context.Background(), domain.EndReasonStopped, 0); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if chime.plays != 0 {
		t.Fatalf("stopped windows must not chime")
	}
}

func TestLifecycleValidation(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc := newLifecycle(&fakeGateway{}, &fakeDispatcher{}, &fakeChime{}, now)
	if _, err := svc.Begin(context.Background(), "", now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing book, got %v", err)
	}
	if _, err := svc.Begin(context.Background(), "book-1", time.Time{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing end time, got %v", err)
	}
	if _, err := svc.Finish(context.Background(), "paused", 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for reason, got %v", err)
	}
	if _, err := svc.Finish(context.Background(), domain.EndReasonStopped, 0); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}

func TestLifecycleActiveReportsOverdue(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	gateway := &fakeGateway{active: &timerout.ActiveSession{SessionID: "s", PlannedEnd: now.Add(-time.Second)}}
	svc := newLifecycle(gateway, &fakeDispatcher{}, &fakeChime{}, now)
	_, ok, overdue, err := svc.Active(context.Background())
	if err != nil || !ok || !overdue {
		t.Fatalf("expected overdue active session, got ok=%v overdue=%v err=%v", ok, overdue, err)
	}
}
