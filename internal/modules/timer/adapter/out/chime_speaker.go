//go:build !nochime && ((linux && cgo) || darwin || windows)

package out

import (
	"context"
	"fmt"
	"sync"
	"time"

	timerout "readtrack/internal/modules/timer/port/out"

	"github.com/gopxl/beep/speaker"
)

// SpeakerChime plays a short two-note bell when a window expires. The speaker
// is opened on first use.
type SpeakerChime struct {
	once    sync.Once
	initErr error
}

func NewSpeakerChime() timerout.Chime {
	return &SpeakerChime{}
}

func (c *SpeakerChime) Play(ctx context.Context) error {
	c.once.Do(func() {
		c.initErr = speaker.Init(chimeSampleRate, chimeSampleRate.N(100*time.Millisecond))
	})
	if c.initErr != nil {
		return fmt.Errorf("init speaker: %w", c.initErr)
	}

	done := make(chan struct{})
	speaker.Play(chimeTune(func() { close(done) }))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
