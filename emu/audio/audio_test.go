package audio

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestSquareWaveStreams(t *testing.T) {
	s := &squareWave{}
	samples := make([][2]float64, 512)

	n, ok := s.Stream(samples)
	assert.Equal(t, 512, n)
	assert.True(t, ok)
	assert.NoError(t, s.Err())

	// both half-waves occur within a few periods and the channels match
	var pos, neg bool
	for _, smp := range samples {
		assert.Equal(t, smp[0], smp[1])
		if smp[0] > 0 {
			pos = true
		}
		if smp[0] < 0 {
			neg = true
		}
	}
	assert.True(t, pos)
	assert.True(t, neg)
}

func TestMutedBeeperNeverTouchesSpeaker(t *testing.T) {
	b, err := NewBeeper(true)
	assert.NoError(t, err)

	// no speaker was initialized; these must be no-ops
	b.Set(true)
	b.Set(false)
}
