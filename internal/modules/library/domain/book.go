package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusUnread   Status = "unread"
	StatusReading  Status = "reading"
	StatusFinished Status = "finished"
)

const (
	ManagedSessionsStart = "<!-- readtrack:sessions:start -->"
	ManagedSessionsEnd   = "<!-- readtrack:sessions:end -->"
	SchemaVersion        = 1
	// MaxRecentSessions bounds the session links kept on a book note.
	MaxRecentSessions = 10
)

type Book struct {
	ID             string
	Title          string
	Authors        []string
	FilePath       string
	NotePath       string
	Slug           string
	Status         Status
	PagesTotal     int
	PagesRead      int
	AddedAt        time.Time
	UpdatedAt      time.Time
	LastSessionID  string
	RecentSessions []string
}

func (s Status) Validate() error {
	switch s {
	case StatusUnread, StatusReading, StatusFinished:
		return nil
	default:
		return fmt.Errorf("unsupported book status %q", string(s))
	}
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(b.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if b.PagesTotal < 0 || b.PagesRead < 0 {
		return fmt.Errorf("page counts must be non-negative")
	}
	return b.Status.Validate()
}

// Percent is PagesRead/PagesTotal in [0,100]; zero when the total is unknown.
func (b Book) Percent() float64 {
	if b.PagesTotal <= 0 {
		return 0
	}
	pct := float64(b.PagesRead) / float64(b.PagesTotal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// SetPagesRead clamps n into [0, PagesTotal] (no upper bound while the total
// is unknown) and refreshes Status.
func (b *Book) SetPagesRead(n int) {
	if n < 0 {
		n = 0
	}
	if b.PagesTotal > 0 && n > b.PagesTotal {
		n = b.PagesTotal
	}
	b.PagesRead = n
	b.Status = StatusFor(b.PagesRead, b.PagesTotal)
}

func StatusFor(read, total int) Status {
	switch {
	case read <= 0:
		return StatusUnread
	case total > 0 && read >= total:
		return StatusFinished
	default:
		return StatusReading
	}
}

// RecordSession puts link at the front of RecentSessions, dropping duplicates
// and anything past MaxRecentSessions.
func (b *Book) RecordSession(sessionID, link string) {
	if sessionID != "" {
		b.LastSessionID = sessionID
	}
	if strings.TrimSpace(link) == "" {
		return
	}
	out := []string{link}
	for _, existing := range b.RecentSessions {
		if existing == link {
			continue
		}
		if len(out) == MaxRecentSessions {
			break
		}
		out = append(out, existing)
	}
	b.RecentSessions = out
}

type BookDocument struct {
	Book Book
	Body string
}
