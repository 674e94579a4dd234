package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	"readtrack/internal/platform/markdown"
)

type VaultSessionStore struct {
	vaultPath string
}

func NewVaultSessionStore(vaultPath string) sessionout.SessionStore {
	return &VaultSessionStore{vaultPath: vaultPath}
}

func (s *VaultSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	path := filepath.Join(s.vaultPath, filepath.FromSlash(session.NoteName())+".md")
	meta := map[string]any{
		"schema_version":   domain.SchemaVersion,
		"id":               session.ID,
		"book_id":          session.BookID,
		"book_title":       session.BookTitle,
		"started_at":       session.StartedAt.Format(time.RFC3339),
		"ended_at":         session.EndedAt.Format(time.RFC3339),
		"duration_seconds": session.DurationSec,
		"goal":             session.Goal,
		"reason":           string(session.Reason),
		"pages_read":       session.PagesRead,
		"pages_before":     session.PagesBefore,
		"pages_after":      session.PagesAfter,
	}
	if !session.PlannedEnd.IsZero() {
		meta["planned_end"] = session.PlannedEnd.Format(time.RFC3339)
	}
	if err := markdown.WriteNote(path, meta, renderBody(session)); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func (s *VaultSessionStore) List(_ context.Context) ([]domain.Session, error) {
	root := filepath.Join(s.vaultPath, "sessions")
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") && !strings.HasPrefix(d.Name(), ".") {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk session notes: %w", err)
	}
	sort.Strings(paths)

	out := make([]domain.Session, 0, len(paths))
	for _, path := range paths {
		meta, _, err := markdown.ReadNote(path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		session, err := fromFrontmatter(meta, path)
		if err != nil {
			return nil, fmt.Errorf("decode session %s: %w", path, err)
		}
		out = append(out, session)
	}
	return out, nil
}

func renderBody(session domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Reading session %s\n\n", session.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Book: %s\n", session.BookTitle)
	fmt.Fprintf(&b, "- Duration: %d minutes\n", session.DurationMinutes())
	fmt.Fprintf(&b, "- Ended: %s\n", session.Reason)
	fmt.Fprintf(&b, "- Pages: %d (%d -> %d)\n", session.PagesRead, session.PagesBefore, session.PagesAfter)
	if strings.TrimSpace(session.Goal) != "" {
		fmt.Fprintf(&b, "\n## Goal\n\n%s\n", session.Goal)
	}
	b.WriteString("\n## Notes\n")
	return b.String()
}

func fromFrontmatter(meta map[string]any, notePath string) (domain.Session, error) {
	str := func(key string) string {
		v, _ := meta[key].(string)
		return v
	}
	num := func(key string) int {
		switch v := meta[key].(type) {
		case int:
			return v
		case float64:
			return int(v)
		default:
			return 0
		}
	}
	at := func(key string) time.Time {
		t, _ := time.Parse(time.RFC3339, str(key))
		return t
	}
	session := domain.Session{
		ID:          str("id"),
		BookID:      str("book_id"),
		BookTitle:   str("book_title"),
		StartedAt:   at("started_at"),
		EndedAt:     at("ended_at"),
		PlannedEnd:  at("planned_end"),
		DurationSec: num("duration_seconds"),
		Goal:        str("goal"),
		Reason:      domain.Reason(str("reason")),
		PagesRead:   num("pages_read"),
		PagesBefore: num("pages_before"),
		PagesAfter:  num("pages_after"),
		NotePath:    notePath,
	}
	if session.ID == "" || session.BookID == "" {
		return domain.Session{}, fmt.Errorf("id and book_id are required")
	}
	if err := session.Reason.Validate(); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}
