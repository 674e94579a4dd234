package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/id"
)

const defaultHistoryLimit = 20

type SessionService struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.SessionStore
	index sessionout.SessionIndex
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore, index sessionout.SessionIndex) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, store: store, index: index}
}

func (s *SessionService) Start(_ context.Context, bookID, bookTitle string, plannedEnd time.Time, goal string) (domain.ActiveSession, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.ActiveSession{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	return domain.ActiveSession{
		SessionID:  s.idGen.New(),
		BookID:     bookID,
		BookTitle:  bookTitle,
		StartedAt:  s.clock.Now(),
		PlannedEnd: plannedEnd,
		Goal:       goal,
	}, nil
}

func (s *SessionService) End(ctx context.Context, active domain.ActiveSession, reason domain.Reason, pagesRead, pagesBefore, pagesAfter int) (domain.Session, error) {
	if err := reason.Validate(); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	endedAt := s.clock.Now()
	duration := int(endedAt.Sub(active.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	session := domain.Session{
		ID:          active.SessionID,
		BookID:      active.BookID,
		BookTitle:   active.BookTitle,
		StartedAt:   active.StartedAt,
		EndedAt:     endedAt,
		PlannedEnd:  active.PlannedEnd,
		DurationSec: duration,
		Goal:        active.Goal,
		Reason:      reason,
		PagesRead:   pagesRead,
		PagesBefore: pagesBefore,
		PagesAfter:  pagesAfter,
	}
	path, err := s.store.Save(ctx, session)
	if err != nil {
		return domain.Session{}, err
	}
	session.NotePath = path
	if s.index != nil {
		if err := s.index.UpsertSession(ctx, session); err != nil {
			return domain.Session{}, err
		}
	}
	return session, nil
}

func (s *SessionService) History(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if s.index == nil {
		return nil, nil
	}
	return s.index.Recent(ctx, limit)
}

func (s *SessionService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	if err := s.index.Reset(ctx); err != nil {
		return err
	}
	sessions, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.index.UpsertSession(ctx, session); err != nil {
			return err
		}
	}
	return nil
}
