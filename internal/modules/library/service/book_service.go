package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"readtrack/internal/modules/library/domain"
	libraryout "readtrack/internal/modules/library/port/out"
	"readtrack/internal/platform/clock"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/id"
	"readtrack/internal/platform/slug"
)

type BookService struct {
	clock     clock.Clock
	idGen     id.Generator
	store     libraryout.BookStore
	projector libraryout.BookIndexProjector
	pages     libraryout.PageCounter
}

func NewBookService(clock clock.Clock, idGen id.Generator, store libraryout.BookStore, projector libraryout.BookIndexProjector, pages libraryout.PageCounter) *BookService {
	return &BookService{clock: clock, idGen: idGen, store: store, projector: projector, pages: pages}
}

func (s *BookService) AddBook(ctx context.Context, title string, authors []string, filePath string, pagesTotal, pagesRead int) (domain.Book, string, error) {
	title = strings.TrimSpace(title)
	if title == "" && strings.TrimSpace(filePath) != "" {
		title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if title == "" {
		return domain.Book{}, "", fmt.Errorf("%w: book name is required", apperrors.ErrInvalidInput)
	}
	if pagesTotal < 0 || pagesRead < 0 {
		return domain.Book{}, "", fmt.Errorf("%w: page counts must be non-negative", apperrors.ErrInvalidInput)
	}
	if pagesTotal == 0 && s.pages != nil && strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		counted, err := s.pages.CountPages(ctx, filePath)
		if err != nil {
			return domain.Book{}, "", fmt.Errorf("count pages of %s: %w", filePath, err)
		}
		pagesTotal = counted
	}

	bookSlug, err := s.uniqueSlug(ctx, slug.Make(title))
	if err != nil {
		return domain.Book{}, "", err
	}
	now := s.clock.Now()
	book := domain.Book{
		ID:         s.idGen.New(),
		Title:      title,
		Authors:    trimAll(authors),
		FilePath:   filePath,
		Slug:       bookSlug,
		PagesTotal: pagesTotal,
		AddedAt:    now,
		UpdatedAt:  now,
	}
	book.SetPagesRead(pagesRead)
	if err := book.Validate(); err != nil {
		return domain.Book{}, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	path, err := s.store.Save(ctx, domain.BookDocument{Book: book})
	if err != nil {
		return domain.Book{}, "", err
	}
	book.NotePath = path
	if err := s.projector.UpsertBook(ctx, book); err != nil {
		return domain.Book{}, "", err
	}
	return book, path, nil
}

// UpdateProgress sets the absolute page count when pagesRead is non-nil and
// otherwise adds delta. A session id and note link are recorded on the book.
func (s *BookService) UpdateProgress(ctx context.Context, bookID string, pagesRead *int, delta int, sessionID, sessionNote string) (domain.Book, error) {
	doc, err := s.store.FindByID(ctx, bookID)
	if err != nil {
		return domain.Book{}, err
	}
	next := doc.Book.PagesRead + delta
	if pagesRead != nil {
		next = *pagesRead
	}
	doc.Book.SetPagesRead(next)
	doc.Book.RecordSession(sessionID, sessionNote)
	doc.Book.UpdatedAt = s.clock.Now()
	if _, err := s.store.Save(ctx, doc); err != nil {
		return domain.Book{}, err
	}
	if err := s.projector.UpsertBook(ctx, doc.Book); err != nil {
		return domain.Book{}, err
	}
	return doc.Book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Book)
	}
	return out, nil
}

func (s *BookService) GetBook(ctx context.Context, bookID string) (domain.BookDocument, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.BookDocument{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	return s.store.FindByID(ctx, bookID)
}

func (s *BookService) Reindex(ctx context.Context) error {
	if err := s.projector.Reset(ctx); err != nil {
		return err
	}
	docs, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.projector.UpsertBook(ctx, doc.Book); err != nil {
			return err
		}
	}
	return nil
}

func (s *BookService) uniqueSlug(ctx context.Context, base string) (string, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(docs))
	for _, doc := range docs {
		taken[doc.Book.Slug] = true
	}
	candidate := base
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
