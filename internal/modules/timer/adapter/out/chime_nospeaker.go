//go:build nochime || !((linux && cgo) || darwin || windows)

package out

import timerout "readtrack/internal/modules/timer/port/out"

// NewSpeakerChime falls back to a silent chime on builds without an audio
// backend.
func NewSpeakerChime() timerout.Chime {
	return NopChime{}
}
