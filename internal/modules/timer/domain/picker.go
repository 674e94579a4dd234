package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "readtrack/internal/platform/errors"
)

// DefaultEndTime is the candidate offered before the user picks one.
func DefaultEndTime(now time.Time, minutes int) time.Time {
	if minutes <= 0 {
		minutes = 5
	}
	return now.Add(time.Duration(minutes) * time.Minute).Truncate(time.Second)
}

// AtClockTime returns today's instant (in now's location) for an "HH:MM" or
// "HH:MM:SS" string. A time of day already behind now stays in the past.
func AtClockTime(now time.Time, value string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("%w: time must be HH:MM, got %q", apperrors.ErrInvalidInput, value)
	}
	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return time.Time{}, fmt.Errorf("%w: time must be HH:MM, got %q", apperrors.ErrInvalidInput, value)
		}
		fields[i] = n
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d, fields[0], fields[1], fields[2], 0, now.Location()), nil
}

// AfterDuration parses a Go duration ("25m", "1h30m") and adds it to now.
func AfterDuration(now time.Time, value string) (time.Time, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("%w: duration must be positive", apperrors.ErrInvalidInput)
	}
	return now.Add(d), nil
}
