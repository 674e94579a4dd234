package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteSessionIndex struct {
	db *sql.DB
}

func NewSQLiteSessionIndex(dbPath string) (sessionout.SessionIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteSessionIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteSessionIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL,
  book_title TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_seconds INTEGER NOT NULL,
  reason TEXT NOT NULL,
  pages_read INTEGER NOT NULL,
  note_path TEXT
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS sessions_ended_at ON sessions(ended_at)`); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) UpsertSession(ctx context.Context, session domain.Session) error {
	const stmt = `
INSERT INTO sessions (id, book_id, book_title, started_at, ended_at, duration_seconds, reason, pages_read, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  book_id=excluded.book_id,
  book_title=excluded.book_title,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  duration_seconds=excluded.duration_seconds,
  reason=excluded.reason,
  pages_read=excluded.pages_read,
  note_path=excluded.note_path;
`
	_, err := s.db.ExecContext(ctx, stmt,
		session.ID,
		session.BookID,
		session.BookTitle,
		session.StartedAt.UTC().Format(time.RFC3339),
		session.EndedAt.UTC().Format(time.RFC3339),
		session.DurationSec,
		string(session.Reason),
		session.PagesRead,
		session.NotePath,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Recent(ctx context.Context, limit int) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, book_id, book_title, started_at, ended_at, duration_seconds, reason, pages_read, COALESCE(note_path, '')
FROM sessions
ORDER BY ended_at DESC, id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Session
	for rows.Next() {
		var (
			session        domain.Session
			started, ended string
			reason         string
		)
		if err := rows.Scan(&session.ID, &session.BookID, &session.BookTitle, &started, &ended, &session.DurationSec, &reason, &session.PagesRead, &session.NotePath); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt, _ = time.Parse(time.RFC3339, started)
		session.EndedAt, _ = time.Parse(time.RFC3339, ended)
		session.Reason = domain.Reason(reason)
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteSessionIndex) Close() error {
	return s.db.Close()
}
