package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"readtrack/internal/modules/library/dto"
	sessionout "readtrack/internal/modules/session/adapter/out"
	sessiondto "readtrack/internal/modules/session/dto"
	sessionin "readtrack/internal/modules/session/port/in"
	"readtrack/internal/modules/session/service"
	"readtrack/internal/modules/session/usecase"
	apperrors "readtrack/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type fakeLibrary struct {
	book    dto.BookDetailOutput
	updates []dto.UpdateProgressInput
}

func (f *fakeLibrary) AddBook(context.Context, dto.AddBookInput) (dto.BookOutput, error) {
	return dto.BookOutput{}, nil
}
func (f *fakeLibrary) Reindex(context.Context, dto.ReindexInput) error      { return nil }
func (f *fakeLibrary) ListBooks(context.Context) ([]dto.BookOutput, error) { return nil, nil }
func (f *fakeLibrary) GetBook(_ context.Context, id string) (dto.BookDetailOutput, error) {
	if id != f.book.ID {
		return dto.BookDetailOutput{}, apperrors.ErrNotFound
	}
	return f.book, nil
}
func (f *fakeLibrary) UpdateProgress(_ context.Context, input dto.UpdateProgressInput) (dto.BookOutput, error) {
	f.updates = append(f.updates, input)
	if input.PagesRead != nil {
		f.book.PagesRead = *input.PagesRead
	}
	return dto.BookOutput{ID: input.BookID, PagesRead: f.book.PagesRead}, nil
}

func newSessions(t *testing.T, clk *fakeClock, library *fakeLibrary) (sessionin.Usecase, string) {
	t.Helper()
	vault := t.TempDir()
	index, err := sessionout.NewSQLiteSessionIndex(filepath.Join(vault, ".readtrack", "readtrack.db"))
	if err != nil {
		t.Fatalf("new session index: %v", err)
	}
	svc := service.NewSessionService(clk, fakeID{}, sessionout.NewVaultSessionStore(vault), index)
	return usecase.NewInteractor(svc, library, sessionout.NewFileActiveSessionStore(filepath.Join(vault, ".readtrack"))), vault
}

func TestSessionLifecycleWritesNoteAndAdvancesPages(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 10, 25, 30, 0, time.UTC),
	}}
	library := &fakeLibrary{book: dto.BookDetailOutput{ID: "book-1", Title: "Go Book", PagesRead: 20, PagesTotal: 300}}
	uc, _ := newSessions(t, clk, library)
	ctx := context.Background()
	planned := time.Date(2026, 2, 25, 10, 25, 0, 0, time.UTC)

	start, err := uc.Start(ctx, sessiondto.StartInput{BookID: "book-1", PlannedEnd: planned, Goal: "Chapter 1"})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	active, err := uc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active session: %v", err)
	}
	if active.SessionID != start.SessionID || active.BookTitle != "Go Book" || !active.PlannedEnd.Equal(planned) {
		t.Fatalf("unexpected active session %+v", active)
	}

	end, err := uc.End(ctx, sessiondto.EndInput{Reason: "expired", PagesRead: 35})
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if end.DurationSec != 25*60+30 || end.Reason != "expired" {
		t.Fatalf("unexpected end output %+v", end)
	}
	if end.PagesBefore != 20 || end.PagesAfter != 55 {
		t.Fatalf("expected pages 20->55, got %d->%d", end.PagesBefore, end.PagesAfter)
	}
	if len(library.updates) != 1 {
		t.Fatalf("expected one progress update, got %d", len(library.updates))
	}
	update := library.updates[0]
	if *update.PagesRead != 55 || update.SessionID != "sess-1" || update.SessionNote != "[[sessions/2026/02/25/100000-go-book]]" {
		t.Fatalf("unexpected progress update %+v", update)
	}

	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after end, got %v", err)
	}
	b, err := os.ReadFile(end.Path)
	if err != nil {
		t.Fatalf("read session note: %v", err)
	}
	note := string(b)
	if !strings.Contains(note, "pages_before: 20") || !strings.Contains(note, "reason: expired") || !strings.Contains(note, "planned_end:") {
		t.Fatalf("session note missing fields: %s", note)
	}

	history, err := uc.History(ctx, 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != "sess-1" || history[0].PagesRead != 35 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStartFailsWhenActiveExists(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)}}
	library := &fakeLibrary{book: dto.BookDetailOutput{ID: "book-1", Title: "Loaded Title"}}
	uc, _ := newSessions(t, clk, library)
	ctx := context.Background()

	if _, err := uc.Start(ctx, sessiondto.StartInput{BookID: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected unknown book to fail, got %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{BookID: "book-1"}); err != nil {
		t.Fatalf("first start should succeed: %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{BookID: "book-1", BookTitle: "Go Book"}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session exists error, got %v", err)
	}
}

func TestEndValidatesInputAndClampsToTotal(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 25, 10, 5, 0, 0, time.UTC),
	}}
	library := &fakeLibrary{book: dto.BookDetailOutput{ID: "book-1", Title: "Go Book", PagesRead: 95, PagesTotal: 100}}
	uc, _ := newSessions(t, clk, library)
	ctx := context.Background()

	if _, err := uc.End(ctx, sessiondto.EndInput{PagesRead: 10}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session error, got %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{PagesRead: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative pages must fail, got %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{Reason: "paused"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown reason must fail, got %v", err)
	}
	if _, err := uc.Start(ctx, sessiondto.StartInput{BookID: "book-1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.End(ctx, sessiondto.EndInput{SessionID: "other"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("mismatched session id should fail, got %v", err)
	}
	end, err := uc.End(ctx, sessiondto.EndInput{PagesRead: 20})
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if end.PagesAfter != 100 || end.Reason != "stopped" {
		t.Fatalf("expected clamp to 100 with default reason, got %+v", end)
	}
}
