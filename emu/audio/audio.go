// Package audio turns the sound-timer signal into an audible beep.
// The Chip-8 has no audio hardware beyond "beep while the sound timer
// is nonzero", so a generated square wave through the speaker is all
// there is to it.
package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneHz     = 440
)

// Beeper plays a constant tone that the driver gates with the
// machine's sound-timer signal once per batch.
type Beeper struct {
	ctrl  *beep.Ctrl
	muted bool
}

// NewBeeper initializes the speaker and starts the (paused) tone.
// A muted beeper swallows every Set call.
func NewBeeper(muted bool) (*Beeper, error) {
	b := &Beeper{muted: muted}
	if muted {
		return b, nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	b.ctrl = &beep.Ctrl{Streamer: &squareWave{}, Paused: true}
	speaker.Play(b.ctrl)
	return b, nil
}

// Set starts or stops the tone. Safe to call every batch with the
// current signal; pausing an already paused tone is a no-op.
func (b *Beeper) Set(beeping bool) {
	if b.muted {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !beeping
	speaker.Unlock()
}

// squareWave is an endless two-channel square wave streamer.
type squareWave struct {
	phase float64
}

func (s *squareWave) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := 0.2
		if s.phase >= 0.5 {
			v = -0.2
		}
		samples[i][0] = v
		samples[i][1] = v
		s.phase += toneHz / float64(sampleRate)
		if s.phase >= 1 {
			s.phase--
		}
	}
	return len(samples), true
}

func (s *squareWave) Err() error { return nil }
