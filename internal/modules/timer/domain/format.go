package domain

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "1 hour 2 minutes 3 seconds", skipping zero units.
// Negative durations render as "0 seconds".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, unit(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, unit(minutes, "minute"))
	}
	if seconds > 0 {
		parts = append(parts, unit(seconds, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, " ")
}

// FormatClock renders d as HH:MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// ReadingMessage is the line shown while a window is open.
func ReadingMessage(remaining time.Duration) string {
	return FormatDuration(remaining) + " to go. Enjoy your book!"
}

func unit(n int64, name string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
