package service

import (
	"time"

	"readtrack/internal/modules/timer/domain"
)

type EventType string

const (
	EventStarted EventType = "started"
	EventTick    EventType = "tick"
	EventExpired EventType = "expired"
	EventStopped EventType = "stopped"
)

// Event is a Runner update for observers.
type Event struct {
	Type      EventType
	EndTime   time.Time
	Remaining time.Duration
	At        time.Time
}

// Snapshot is the Runner state at one instant.
type Snapshot struct {
	Mode      domain.Mode
	EndTime   time.Time
	Remaining time.Duration
}
