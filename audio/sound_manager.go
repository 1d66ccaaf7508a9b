package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/jonboulle/clockwork"
)

// SoundManager plays effects through the system speaker
// Every method is a no-op until Initialize succeeds
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	clock       clockwork.Clock
	mixer       *beep.Mixer
	sink        func(beep.Streamer)
	initialized bool
	last        [soundTypeCount]time.Time
}

// NewSoundManager creates a manager, nil clock uses the wall clock
func NewSoundManager(cfg Config, clock clockwork.Clock) *SoundManager {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SoundManager{
		cfg:   cfg,
		clock: clock,
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(sm.mixer)

	sm.sink = func(s beep.Streamer) {
		speaker.Lock()
		sm.mixer.Add(s)
		speaker.Unlock()
	}
	sm.initialized = true
	return nil
}

// Cleanup silences the mixer and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.sink = nil
	sm.initialized = false
}

// Play queues a sound, returning false when dropped
func (sm *SoundManager) Play(sound SoundType) bool {
	if sound < 0 || sound >= soundTypeCount {
		return false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.sink == nil {
		return false
	}

	now := sm.clock.Now()
	if last := sm.last[sound]; !last.IsZero() && now.Sub(last) < sm.cfg.MinGap {
		return false
	}
	sm.last[sound] = now

	sm.sink(GetSoundEffect(sound, sm.cfg))
	return true
}

// PlaySpawn plays the spawn sound for mode, if any
func (sm *SoundManager) PlaySpawn(mode string) bool {
	sound, ok := SpawnSound(mode)
	if !ok {
		return false
	}
	return sm.Play(sound)
}

// PlayClick plays the click blip
func (sm *SoundManager) PlayClick() bool {
	return sm.Play(SoundBlip)
}
