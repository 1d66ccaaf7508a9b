// Package audio synthesizes short feedback sounds for the terminal host
package audio

import (
	"time"

	"github.com/lixenwraith/firehose/motion"
)

// SoundType represents different sound effects
type SoundType int

const (
	SoundKey  SoundType = iota // Typewriter key strike on text-layout spawn
	SoundPop                   // Explosion burst spawn
	SoundBlip                  // Particle click
	soundTypeCount
)

func (s SoundType) String() string {
	switch s {
	case SoundKey:
		return "key"
	case SoundPop:
		return "pop"
	case SoundBlip:
		return "blip"
	}
	return "unknown"
}

// Config controls synthesis and throttling
type Config struct {
	SampleRate   int
	MasterVolume float64
	// MinGap drops repeats of the same sound closer than this
	MinGap time.Duration
}

// DefaultConfig returns the default audio settings
func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		MasterVolume: 0.5,
		MinGap:       40 * time.Millisecond,
	}
}

// SpawnSound returns the sound for a spawn in mode, false when the mode is silent
func SpawnSound(mode string) (SoundType, bool) {
	switch mode {
	case motion.Typewriter, motion.Redacted:
		return SoundKey, true
	case motion.Explosion:
		return SoundPop, true
	}
	return 0, false
}
