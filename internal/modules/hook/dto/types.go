package dto

import "time"

type HookInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Events  []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type DispatchInput struct {
	Event     string
	VaultPath string
	SessionID string
	BookID    string
	BookTitle string
	EndTime   time.Time
	Reason    string
}

type DispatchOutput struct {
	Event    string
	Notified []string
	Messages []string
}
