package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"readtrack/internal/modules/library/domain"
	libraryout "readtrack/internal/modules/library/port/out"
	apperrors "readtrack/internal/platform/errors"
	"readtrack/internal/platform/markdown"
)

const defaultBookBody = "## Notes\n\n## Quotes\n"

type VaultBookStore struct {
	vaultPath string
}

func NewVaultBookStore(vaultPath string) libraryout.BookStore {
	return &VaultBookStore{vaultPath: vaultPath}
}

func (s *VaultBookStore) Save(_ context.Context, document domain.BookDocument) (string, error) {
	book := document.Book
	bookPath := filepath.Join(s.vaultPath, "books", book.Slug+".md")

	body := document.Body
	if strings.TrimSpace(body) == "" {
		if _, existingBody, err := markdown.ReadNote(bookPath); err == nil {
			body = existingBody
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("read existing book note: %w", err)
		}
	}
	if strings.TrimSpace(body) == "" {
		body = defaultBookBody
	}
	body = markdown.ReplaceManagedBlock(body, domain.ManagedSessionsStart, domain.ManagedSessionsEnd, renderSessions(book.RecentSessions))

	if err := markdown.WriteNote(bookPath, toFrontmatter(book), body); err != nil {
		return "", fmt.Errorf("write book note: %w", err)
	}
	return bookPath, nil
}

func (s *VaultBookStore) FindByID(ctx context.Context, id string) (domain.BookDocument, error) {
	docs, err := s.List(ctx)
	if err != nil {
		return domain.BookDocument{}, err
	}
	for _, doc := range docs {
		if doc.Book.ID == id {
			return doc, nil
		}
	}
	return domain.BookDocument{}, fmt.Errorf("book %s: %w", id, apperrors.ErrNotFound)
}

func (s *VaultBookStore) List(_ context.Context) ([]domain.BookDocument, error) {
	matches, err := filepath.Glob(filepath.Join(s.vaultPath, "books", "*.md"))
	if err != nil {
		return nil, fmt.Errorf("glob book notes: %w", err)
	}
	sort.Strings(matches)

	out := make([]domain.BookDocument, 0, len(matches))
	for _, path := range matches {
		meta, body, readErr := markdown.ReadNote(path)
		if readErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, readErr)
		}
		book, convErr := fromFrontmatter(meta, path)
		if convErr != nil {
			return nil, fmt.Errorf("decode book %s: %w", path, convErr)
		}
		out = append(out, domain.BookDocument{Book: book, Body: body})
	}
	return out, nil
}

func renderSessions(links []string) string {
	if len(links) == 0 {
		return "_No reading sessions yet._"
	}
	lines := make([]string, 0, len(links))
	for _, link := range links {
		lines = append(lines, "- "+link)
	}
	return strings.Join(lines, "\n")
}

func toFrontmatter(book domain.Book) map[string]any {
	return map[string]any{
		"schema_version":  domain.SchemaVersion,
		"id":              book.ID,
		"title":           book.Title,
		"authors":         book.Authors,
		"file_path":       book.FilePath,
		"status":          string(book.Status),
		"pages_total":     book.PagesTotal,
		"pages_read":      book.PagesRead,
		"added_at":        book.AddedAt.Format(time.RFC3339),
		"updated_at":      book.UpdatedAt.Format(time.RFC3339),
		"last_session_id": book.LastSessionID,
		"recent_sessions": book.RecentSessions,
	}
}

func fromFrontmatter(meta map[string]any, notePath string) (domain.Book, error) {
	book := domain.Book{
		ID:             asString(meta["id"]),
		Title:          asString(meta["title"]),
		Authors:        asStringSlice(meta["authors"]),
		FilePath:       asString(meta["file_path"]),
		NotePath:       notePath,
		Status:         domain.Status(asString(meta["status"])),
		PagesTotal:     asInt(meta["pages_total"]),
		PagesRead:      asInt(meta["pages_read"]),
		LastSessionID:  asString(meta["last_session_id"]),
		RecentSessions: asStringSlice(meta["recent_sessions"]),
	}
	book.Slug = strings.TrimSuffix(filepath.Base(notePath), filepath.Ext(notePath))
	if book.Status == "" {
		book.Status = domain.StatusFor(book.PagesRead, book.PagesTotal)
	}
	addedAt, _ := time.Parse(time.RFC3339, asString(meta["added_at"]))
	updatedAt, _ := time.Parse(time.RFC3339, asString(meta["updated_at"]))
	book.AddedAt = addedAt
	book.UpdatedAt = updatedAt
	if err := book.Validate(); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	default:
		return fmt.Sprint(v)
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		var out int
		_, _ = fmt.Sscanf(x, "%d", &out)
		return out
	default:
		return 0
	}
}

func asStringSlice(v any) []string {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}
