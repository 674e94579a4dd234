package dto

import "time"

type BeginInput struct {
	BookID  string
	EndTime time.Time
}

type BeginOutput struct {
	SessionID    string
	BookID       string
	BookTitle    string
	EndTime      time.Time
	HookMessages []string
}

type FinishInput struct {
	Reason    string
	PagesRead int
}

type FinishOutput struct {
	SessionID    string
	BookID       string
	Reason       string
	DurationSec  int
	NotePath     string
	PagesAfter   int
	HookMessages []string
}

type ResumeOutput struct {
	Active    bool
	Expired   bool
	SessionID string
	BookID    string
	BookTitle string
	EndTime   time.Time
}

type RunInput struct {
	BookID  string
	EndTime time.Time
}

type TickOutput struct {
	Remaining time.Duration
	Display   string
	Clock     string
	EndTime   time.Time
}

type RunOutput struct {
	SessionID   string
	BookTitle   string
	Reason      string
	DurationSec int
	NotePath    string
}
