package dto

import "time"

type StartInput struct {
	BookID     string
	BookTitle  string
	PlannedEnd time.Time
	Goal       string
}

type StartOutput struct {
	SessionID  string
	BookID     string
	StartedAt  time.Time
	PlannedEnd time.Time
}

type EndInput struct {
	SessionID string
	Reason    string
	PagesRead int
}

type EndOutput struct {
	SessionID   string
	BookID      string
	Path        string
	DurationSec int
	Reason      string
	PagesRead   int
	PagesBefore int
	PagesAfter  int
}

type ActiveSessionOutput struct {
	SessionID  string
	BookID     string
	BookTitle  string
	StartedAt  time.Time
	PlannedEnd time.Time
	Goal       string
}

type SessionOutput struct {
	ID          string
	BookID      string
	BookTitle   string
	StartedAt   time.Time
	EndedAt     time.Time
	DurationSec int
	Reason      string
	PagesRead   int
	NotePath    string
}

type ReindexInput struct{}
