package out

import (
	"context"
	"time"

	"readtrack/internal/modules/timer/domain"
)

// Hooks is what the timer tells the surrounding shell. OnStartSelected runs
// once a reading window opens and OnReadEnd once it closes.
type Hooks interface {
	OnStartSelected(ctx context.Context, endTime time.Time) error
	OnReadEnd(ctx context.Context, reason domain.EndReason) error
}

type ActiveSession struct {
	SessionID  string
	BookID     string
	BookTitle  string
	PlannedEnd time.Time
}

type EndedSession struct {
	SessionID   string
	BookID      string
	Path        string
	DurationSec int
	Reason      domain.EndReason
	PagesAfter  int
}

type SessionGateway interface {
	Start(ctx context.Context, bookID string, plannedEnd time.Time) (ActiveSession, error)
	End(ctx context.Context, sessionID string, reason domain.EndReason, pagesRead int) (EndedSession, error)
	// Active reports false when no session is open.
	Active(ctx context.Context) (ActiveSession, bool, error)
}

// HookDispatcher forwards lifecycle events to the external device hooks.
type HookDispatcher interface {
	ReadStart(ctx context.Context, session ActiveSession) ([]string, error)
	ReadEnd(ctx context.Context, session ActiveSession, reason domain.EndReason) ([]string, error)
}

type Chime interface {
	Play(ctx context.Context) error
}
