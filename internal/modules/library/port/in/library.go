package in

import (
	"context"

	"readtrack/internal/modules/library/dto"
)

type Usecase interface {
	AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error)
	UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.BookOutput, error)
	ListBooks(ctx context.Context) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, id string) (dto.BookDetailOutput, error)
	Reindex(ctx context.Context, input dto.ReindexInput) error
}
