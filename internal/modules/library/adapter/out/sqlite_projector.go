package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"readtrack/internal/modules/library/domain"
	libraryout "readtrack/internal/modules/library/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteBookProjector struct {
	db *sql.DB
}

func NewSQLiteBookProjector(dbPath string) (libraryout.BookIndexProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteBookProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteBookProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  file_path TEXT,
  status TEXT NOT NULL,
  pages_total INTEGER NOT NULL,
  pages_read INTEGER NOT NULL,
  progress_percent REAL NOT NULL,
  last_session_id TEXT,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("reset books: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) UpsertBook(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (id, title, slug, file_path, status, pages_total, pages_read, progress_percent, last_session_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  slug=excluded.slug,
  file_path=excluded.file_path,
  status=excluded.status,
  pages_total=excluded.pages_total,
  pages_read=excluded.pages_read,
  progress_percent=excluded.progress_percent,
  last_session_id=excluded.last_session_id,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		book.ID,
		book.Title,
		book.Slug,
		book.FilePath,
		string(book.Status),
		book.PagesTotal,
		book.PagesRead,
		book.Percent(),
		book.LastSessionID,
		book.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (s *SQLiteBookProjector) Close() error {
	return s.db.Close()
}
