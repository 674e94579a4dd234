package service

import (
	"context"
	"fmt"
	"time"

	"readtrack/internal/modules/timer/domain"
	timerout "readtrack/internal/modules/timer/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"

	hclog "github.com/hashicorp/go-hclog"
)

// LifecycleService ties a reading window to a session and to the device hooks.
// Hook and chime failures are logged and never fail the window.
type LifecycleService struct {
	sessions timerout.SessionGateway
	hooks    timerout.HookDispatcher
	chime    timerout.Chime
	clock    clock.Clock
	logger   hclog.Logger
}

func NewLifecycleService(sessions timerout.SessionGateway, hooks timerout.HookDispatcher, chime timerout.Chime, clk clock.Clock, logger hclog.Logger) *LifecycleService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LifecycleService{sessions: sessions, hooks: hooks, chime: chime, clock: clk, logger: logger}
}

type Began struct {
	Session      timerout.ActiveSession
	HookMessages []string
}

type Finished struct {
	Session      timerout.EndedSession
	HookMessages []string
}

func (s *LifecycleService) Begin(ctx context.Context, bookID string, endTime time.Time) (Began, error) {
	if bookID == "" {
		return Began{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	if endTime.IsZero() {
		return Began{}, fmt.Errorf("%w: end time is required", apperrors.ErrInvalidInput)
	}
	active, err := s.sessions.Start(ctx, bookID, endTime)
	if err != nil {
		return Began{}, err
	}
	s.logger.Info("reading started", "session", active.SessionID, "book", active.BookTitle, "until", endTime.Format(time.RFC3339))

	out := Began{Session: active}
	if s.hooks != nil {
		messages, err := s.hooks.ReadStart(ctx, active)
		if err != nil {
			s.logger.Warn("read_start hooks failed", "session", active.SessionID, "error", err)
		}
		out.HookMessages = messages
	}
	return out, nil
}

func (s *LifecycleService) Finish(ctx context.Context, reason domain.EndReason, pagesRead int) (Finished, error) {
	if err := reason.Validate(); err != nil {
		return Finished{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	active, ok, err := s.sessions.Active(ctx)
	if err != nil {
		return Finished{}, err
	}
	if !ok {
		return Finished{}, apperrors.ErrNoActiveSession
	}
	ended, err := s.sessions.End(ctx, active.SessionID, reason, pagesRead)
	if err != nil {
		return Finished{}, err
	}
	s.logger.Info("reading ended", "session", ended.SessionID, "reason", string(reason), "duration_sec", ended.DurationSec)

	out := Finished{Session: ended}
	if s.hooks != nil {
		messages, err := s.hooks.ReadEnd(ctx, active, reason)
		if err != nil {
			s.logger.Warn("read_end hooks failed", "session", active.SessionID, "error", err)
		}
		out.HookMessages = messages
	}
	if reason == domain.EndReasonExpired && s.chime != nil {
		if err := s.chime.Play(ctx); err != nil {
			s.logger.Debug("chime unavailable", "error", err)
		}
	}
	return out, nil
}

// Active returns the open session, if any, and whether its planned end has
// already passed.
func (s *LifecycleService) Active(ctx context.Context) (timerout.ActiveSession, bool, bool, error) {
	active, ok, err := s.sessions.Active(ctx)
	if err != nil || !ok {
		return timerout.ActiveSession{}, false, false, err
	}
	overdue := !active.PlannedEnd.IsZero() && !active.PlannedEnd.After(s.clock.Now())
	return active, true, overdue, nil
}
