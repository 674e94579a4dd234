package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Event names a reading lifecycle point a hook can subscribe to.
type Event string

const (
	// EventReadStart fires after a reading window opens (lock the device).
	EventReadStart Event = "read_start"
	// EventReadEnd fires after a reading window closes (unlock the device).
	EventReadEnd Event = "read_end"
)

var (
	ErrHookDisabled     = errors.New("hook is disabled")
	ErrChecksumMismatch = errors.New("hook checksum mismatch")
	ErrHookTimeout      = errors.New("hook timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

func (e Event) Validate() error {
	switch e {
	case EventReadStart, EventReadEnd:
		return nil
	default:
		return fmt.Errorf("unknown hook event: %s", e)
	}
}

type Manifest struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Binary  string  `json:"binary"`
	SHA256  string  `json:"sha256"`
	Enabled bool    `json:"enabled"`
	Events  []Event `json:"events"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("hook name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("hook version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("hook binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("hook sha256 must be lowercase 64-char hex")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("hook events are required")
	}
	seen := map[Event]struct{}{}
	for _, event := range m.Events {
		if err := event.Validate(); err != nil {
			return err
		}
		if _, ok := seen[event]; ok {
			return fmt.Errorf("duplicate event: %s", event)
		}
		seen[event] = struct{}{}
	}
	return nil
}

func (m Manifest) Subscribes(event Event) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Events  []Event
}

// Notification is what a hook receives for one event.
type Notification struct {
	Event      Event
	VaultPath  string
	SessionID  string
	BookID     string
	BookTitle  string
	EndTime    time.Time
	Reason     string
	OccurredAt time.Time
}

func (n Notification) Validate() error {
	if err := n.Event.Validate(); err != nil {
		return err
	}
	if n.VaultPath == "" {
		return fmt.Errorf("vault path is required")
	}
	if n.Event == EventReadEnd && n.Reason == "" {
		return fmt.Errorf("end reason is required for %s", EventReadEnd)
	}
	return nil
}

type Ack struct {
	Message string
}
