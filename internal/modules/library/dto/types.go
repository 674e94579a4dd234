package dto

import "time"

type AddBookInput struct {
	Title      string
	Authors    []string
	FilePath   string
	PagesTotal int
	PagesRead  int
}

// UpdateProgressInput sets PagesRead when it is non-nil, otherwise adds
// DeltaPages to the current count.
type UpdateProgressInput struct {
	BookID      string
	PagesRead   *int
	DeltaPages  int
	SessionID   string
	SessionNote string
}

type ReindexInput struct{}

type BookOutput struct {
	ID         string
	Title      string
	Status     string
	PagesRead  int
	PagesTotal int
	Percent    float64
	NotePath   string
}

type BookDetailOutput struct {
	ID             string
	Title          string
	Authors        []string
	FilePath       string
	NotePath       string
	Status         string
	PagesRead      int
	PagesTotal     int
	Percent        float64
	AddedAt        time.Time
	UpdatedAt      time.Time
	LastSessionID  string
	RecentSessions []string
	Body           string
}
