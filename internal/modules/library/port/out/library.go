package out

import (
	"context"

	"readtrack/internal/modules/library/domain"
)

type BookStore interface {
	Save(ctx context.Context, document domain.BookDocument) (string, error)
	FindByID(ctx context.Context, id string) (domain.BookDocument, error)
	List(ctx context.Context) ([]domain.BookDocument, error)
}

type BookIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertBook(ctx context.Context, book domain.Book) error
}

// PageCounter reads the page count of a book file.
type PageCounter interface {
	CountPages(ctx context.Context, path string) (int, error)
}
