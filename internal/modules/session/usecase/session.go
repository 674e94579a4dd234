package usecase

import (
	"context"
	"errors"
	"fmt"

	librarydto "readtrack/internal/modules/library/dto"
	libraryin "readtrack/internal/modules/library/port/in"
	"readtrack/internal/modules/session/domain"
	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/modules/session/service"
	apperrors "readtrack/internal/platform/errors"
)

type Interactor struct {
	svc         *service.SessionService
	library     libraryin.Usecase
	activeStore sessionout.ActiveSessionStore
}

func NewInteractor(svc *service.SessionService, library libraryin.Usecase, activeStore sessionout.ActiveSessionStore) sessionin.Usecase {
	return &Interactor{svc: svc, library: library, activeStore: activeStore}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	if i.activeStore != nil {
		_, err := i.activeStore.LoadActive(ctx)
		if err == nil {
			return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return sessiondto.StartOutput{}, err
		}
	}

	bookTitle := input.BookTitle
	if bookTitle == "" && i.library != nil {
		book, err := i.library.GetBook(ctx, input.BookID)
		if err != nil {
			return sessiondto.StartOutput{}, err
		}
		bookTitle = book.Title
	}

	active, err := i.svc.Start(ctx, input.BookID, bookTitle, input.PlannedEnd, input.Goal)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	if i.activeStore != nil {
		if err := i.activeStore.SaveActive(ctx, active); err != nil {
			return sessiondto.StartOutput{}, err
		}
	}
	return sessiondto.StartOutput{
		SessionID:  active.SessionID,
		BookID:     active.BookID,
		StartedAt:  active.StartedAt,
		PlannedEnd: active.PlannedEnd,
	}, nil
}

func (i *Interactor) End(ctx context.Context, input sessiondto.EndInput) (sessiondto.EndOutput, error) {
	if input.PagesRead < 0 {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: pages read must be non-negative", apperrors.ErrInvalidInput)
	}
	reason := domain.Reason(input.Reason)
	if reason == "" {
		reason = domain.ReasonStopped
	}
	if err := reason.Validate(); err != nil {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if i.activeStore == nil {
		return sessiondto.EndOutput{}, apperrors.ErrNoActiveSession
	}

	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if input.SessionID != "" && input.SessionID != active.SessionID {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: session id mismatch", apperrors.ErrInvalidInput)
	}
	if i.library == nil {
		return sessiondto.EndOutput{}, fmt.Errorf("library usecase is not configured")
	}

	book, err := i.library.GetBook(ctx, active.BookID)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	before := book.PagesRead
	after := before + input.PagesRead
	if book.PagesTotal > 0 && after > book.PagesTotal {
		after = book.PagesTotal
	}

	session, err := i.svc.End(ctx, active, reason, input.PagesRead, before, after)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if _, err := i.library.UpdateProgress(ctx, librarydto.UpdateProgressInput{
		BookID:      active.BookID,
		PagesRead:   &after,
		SessionID:   session.ID,
		SessionNote: session.NoteLink(),
	}); err != nil {
		return sessiondto.EndOutput{}, err
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.EndOutput{}, err
	}

	return sessiondto.EndOutput{
		SessionID:   session.ID,
		BookID:      session.BookID,
		Path:        session.NotePath,
		DurationSec: session.DurationSec,
		Reason:      string(session.Reason),
		PagesRead:   session.PagesRead,
		PagesBefore: session.PagesBefore,
		PagesAfter:  session.PagesAfter,
	}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	if i.activeStore == nil {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return sessiondto.ActiveSessionOutput{
		SessionID:  active.SessionID,
		BookID:     active.BookID,
		BookTitle:  active.BookTitle,
		StartedAt:  active.StartedAt,
		PlannedEnd: active.PlannedEnd,
		Goal:       active.Goal,
	}, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessiondto.SessionOutput{
			ID:          s.ID,
			BookID:      s.BookID,
			BookTitle:   s.BookTitle,
			StartedAt:   s.StartedAt,
			EndedAt:     s.EndedAt,
			DurationSec: s.DurationSec,
			Reason:      string(s.Reason),
			PagesRead:   s.PagesRead,
			NotePath:    s.NotePath,
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context, _ sessiondto.ReindexInput) error {
	return i.svc.Reindex(ctx)
}
