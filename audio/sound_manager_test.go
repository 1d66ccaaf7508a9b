package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/firehose/motion"
)

// attachSink marks the manager initialized without opening the speaker
func attachSink(sm *SoundManager) *[]beep.Streamer {
	var played []beep.Streamer
	sm.mu.Lock()
	sm.sink = func(s beep.Streamer) { played = append(played, s) }
	sm.initialized = true
	sm.mu.Unlock()
	return &played
}

func TestPlayBeforeInitializeIsNoop(t *testing.T) {
	sm := NewSoundManager(DefaultConfig(), clockwork.NewFakeClock())
	assert.False(t, sm.Play(SoundBlip))
	assert.False(t, sm.PlayClick())
	sm.Cleanup()
}

func TestPlayThrottlesRepeats(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sm := NewSoundManager(DefaultConfig(), clock)
	played := attachSink(sm)

	assert.True(t, sm.Play(SoundKey))
	assert.False(t, sm.Play(SoundKey), "inside MinGap")
	assert.True(t, sm.Play(SoundBlip), "other sounds are independent")

	clock.Advance(50 * time.Millisecond)
	assert.True(t, sm.Play(SoundKey))

	assert.Len(t, *played, 3)
	assert.False(t, sm.Play(SoundType(-1)))
}

func TestPlaySpawnByMode(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sm := NewSoundManager(DefaultConfig(), clock)
	played := attachSink(sm)

	assert.True(t, sm.PlaySpawn(motion.Typewriter))
	clock.Advance(time.Second)
	assert.True(t, sm.PlaySpawn(motion.Explosion))
	assert.False(t, sm.PlaySpawn(motion.Wave))
	assert.Len(t, *played, 2)
}

func TestSpawnSound(t *testing.T) {
	tests := []struct {
		mode string
		want SoundType
		ok   bool
	}{
		{motion.Typewriter, SoundKey, true},
		{motion.Redacted, SoundKey, true},
		{motion.Explosion, SoundPop, true},
		{motion.Matrix, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, ok := SpawnSound(tt.mode)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
