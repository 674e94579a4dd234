package out

import (
	"context"
	"math"
	"time"

	"github.com/gopxl/beep"
)

const chimeSampleRate = beep.SampleRate(44100)

// NopChime is used when the chime is turned off in the settings.
type NopChime struct{}

func (NopChime) Play(context.Context) error { return nil }

// chimeTune is the two-note bell followed by done.
func chimeTune(done func()) beep.Streamer {
	return beep.Seq(
		tone(880, 180*time.Millisecond),
		tone(1320, 320*time.Millisecond),
		beep.Callback(done),
	)
}

func tone(freq float64, d time.Duration) beep.Streamer {
	total := chimeSampleRate.N(d)
	position := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if position >= total {
				break
			}
			t := float64(position) / float64(chimeSampleRate)
			fade := 1 - float64(position)/float64(total)
			v := 0.3 * fade * math.Sin(2*math.Pi*freq*t)
			samples[i][0] = v
			samples[i][1] = v
			position++
			n++
		}
		return n, true
	})
}
