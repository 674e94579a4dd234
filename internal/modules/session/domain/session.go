package domain

import (
	"fmt"
	"path"
	"time"

	"readtrack/internal/platform/slug"
)

const SchemaVersion = 1

type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonStopped Reason = "stopped"
)

func (r Reason) Validate() error {
	switch r {
	case ReasonExpired, ReasonStopped:
		return nil
	default:
		return fmt.Errorf("unsupported end reason %q", string(r))
	}
}

type ActiveSession struct {
	SessionID  string    `json:"session_id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	StartedAt  time.Time `json:"started_at"`
	PlannedEnd time.Time `json:"planned_end,omitempty"`
	Goal       string    `json:"goal"`
}

// Overdue reports whether the planned end has passed at now.
func (a ActiveSession) Overdue(now time.Time) bool {
	return !a.PlannedEnd.IsZero() && !now.Before(a.PlannedEnd)
}

type Session struct {
	ID          string
	BookID      string
	BookTitle   string
	StartedAt   time.Time
	EndedAt     time.Time
	PlannedEnd  time.Time
	DurationSec int
	Goal        string
	Reason      Reason
	PagesRead   int
	PagesBefore int
	PagesAfter  int
	NotePath    string
}

// NoteName is the vault-relative note path without extension, e.g.
// sessions/2026/03/14/200000-dune.
func (s Session) NoteName() string {
	date := s.StartedAt
	return path.Join("sessions", date.Format("2006"), date.Format("01"), date.Format("02"), date.Format("150405")+"-"+slug.Make(s.BookTitle))
}

func (s Session) NoteLink() string {
	return "[[" + s.NoteName() + "]]"
}

func (s Session) DurationMinutes() int {
	return s.DurationSec / 60
}
