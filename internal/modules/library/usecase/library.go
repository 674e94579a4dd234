package usecase

import (
	"context"

	"readtrack/internal/modules/library/domain"
	"readtrack/internal/modules/library/dto"
	libraryin "readtrack/internal/modules/library/port/in"
	"readtrack/internal/modules/library/service"
)

type Interactor struct {
	svc *service.BookService
}

func NewInteractor(svc *service.BookService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	book, path, err := i.svc.AddBook(ctx, input.Title, input.Authors, input.FilePath, input.PagesTotal, input.PagesRead)
	if err != nil {
		return dto.BookOutput{}, err
	}
	book.NotePath = path
	return toOutput(book), nil
}

func (i *Interactor) UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.BookOutput, error) {
	book, err := i.svc.UpdateProgress(ctx, input.BookID, input.PagesRead, input.DeltaPages, input.SessionID, input.SessionNote)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	books, err := i.svc.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toOutput(book))
	}
	return out, nil
}

func (i *Interactor) GetBook(ctx context.Context, id string) (dto.BookDetailOutput, error) {
	doc, err := i.svc.GetBook(ctx, id)
	if err != nil {
		return dto.BookDetailOutput{}, err
	}
	book := doc.Book
	return dto.BookDetailOutput{
		ID:             book.ID,
		Title:          book.Title,
		Authors:        book.Authors,
		FilePath:       book.FilePath,
		NotePath:       book.NotePath,
		Status:         string(book.Status),
		PagesRead:      book.PagesRead,
		PagesTotal:     book.PagesTotal,
		Percent:        book.Percent(),
		AddedAt:        book.AddedAt,
		UpdatedAt:      book.UpdatedAt,
		LastSessionID:  book.LastSessionID,
		RecentSessions: book.RecentSessions,
		Body:           doc.Body,
	}, nil
}

func (i *Interactor) Reindex(ctx context.Context, _ dto.ReindexInput) error {
	return i.svc.Reindex(ctx)
}

func toOutput(book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		ID:         book.ID,
		Title:      book.Title,
		Status:     string(book.Status),
		PagesRead:  book.PagesRead,
		PagesTotal: book.PagesTotal,
		Percent:    book.Percent(),
		NotePath:   book.NotePath,
	}
}
