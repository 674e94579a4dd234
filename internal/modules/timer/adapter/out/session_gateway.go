package out

import (
	"context"
	"errors"
	"time"

	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
	"readtrack/internal/modules/timer/domain"
	timerout "readtrack/internal/modules/timer/port/out"
	apperrors "readtrack/internal/platform/errors"
)

type SessionGateway struct {
	sessions sessionin.Usecase
}

func NewSessionGateway(sessions sessionin.Usecase) timerout.SessionGateway {
	return &SessionGateway{sessions: sessions}
}

func (g *SessionGateway) Start(ctx context.Context, bookID string, plannedEnd time.Time) (timerout.ActiveSession, error) {
	if _, err := g.sessions.Start(ctx, sessiondto.StartInput{BookID: bookID, PlannedEnd: plannedEnd}); err != nil {
		return timerout.ActiveSession{}, err
	}
	active, ok, err := g.Active(ctx)
	if err != nil {
		return timerout.ActiveSession{}, err
	}
	if !ok {
		return timerout.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return active, nil
}

func (g *SessionGateway) End(ctx context.Context, sessionID string, reason domain.EndReason, pagesRead int) (timerout.EndedSession, error) {
	out, err := g.sessions.End(ctx, sessiondto.EndInput{SessionID: sessionID, Reason: string(reason), PagesRead: pagesRead})
	if err != nil {
		return timerout.EndedSession{}, err
	}
	return timerout.EndedSession{
		SessionID:   out.SessionID,
		BookID:      out.BookID,
		Path:        out.Path,
		DurationSec: out.DurationSec,
		Reason:      domain.EndReason(out.Reason),
		PagesAfter:  out.PagesAfter,
	}, nil
}

func (g *SessionGateway) Active(ctx context.Context) (timerout.ActiveSession, bool, error) {
	active, err := g.sessions.GetActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return timerout.ActiveSession{}, false, nil
	}
	if err != nil {
		return timerout.ActiveSession{}, false, err
	}
	return timerout.ActiveSession{
		SessionID:  active.SessionID,
		BookID:     active.BookID,
		BookTitle:  active.BookTitle,
		PlannedEnd: active.PlannedEnd,
	}, true, nil
}
