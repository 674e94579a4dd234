package in

import (
	"context"

	"readtrack/internal/modules/library/dto"
	libraryin "readtrack/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddBook(ctx context.Context, title, filePath string, authors []string, pagesTotal, pagesRead int) (dto.BookOutput, error) {
	return h.usecase.AddBook(ctx, dto.AddBookInput{
		Title:      title,
		Authors:    authors,
		FilePath:   filePath,
		PagesTotal: pagesTotal,
		PagesRead:  pagesRead,
	})
}

func (h CLIHandler) SetPagesRead(ctx context.Context, bookID string, pagesRead int) (dto.BookOutput, error) {
	return h.usecase.UpdateProgress(ctx, dto.UpdateProgressInput{BookID: bookID, PagesRead: &pagesRead})
}

func (h CLIHandler) AddPages(ctx context.Context, bookID string, delta int) (dto.BookOutput, error) {
	return h.usecase.UpdateProgress(ctx, dto.UpdateProgressInput{BookID: bookID, DeltaPages: delta})
}

func (h CLIHandler) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx)
}

func (h CLIHandler) GetBook(ctx context.Context, id string) (dto.BookDetailOutput, error) {
	return h.usecase.GetBook(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx, dto.ReindexInput{})
}
