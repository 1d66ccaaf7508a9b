package flow

import (
	"time"

	"github.com/lixenwraith/firehose/motion"
	"github.com/lixenwraith/firehose/vmath"
)

// Engine tuning bounds
const (
	MinSpeed = 0.1
	MaxSpeed = 5.0

	MinSpawnInterval = 50 * time.Millisecond
	MaxSpawnInterval = 2000 * time.Millisecond

	MinCapacity = 1
	MaxCapacity = 2000

	DefaultSpeed         = 1.0
	DefaultSpawnInterval = 150 * time.Millisecond
	DefaultCapacity      = 300
	DefaultMode          = motion.Wave

	// FrameInterval is the nominal frame period and the delta of the first tick after Start
	FrameInterval = 16 * time.Millisecond

	// MaxFrameDelta caps a single tick after a stall
	MaxFrameDelta = 250 * time.Millisecond
)

// Config holds the engine's tunables
type Config struct {
	Speed                 float64       `yaml:"speed"`
	SpawnInterval         time.Duration `yaml:"spawn_interval"`
	Capacity              int           `yaml:"capacity"`
	Mode                  string        `yaml:"mode"`
	ModeSwitchClearsQueue bool          `yaml:"mode_switch_clears_queue"`
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Speed:         DefaultSpeed,
		SpawnInterval: DefaultSpawnInterval,
		Capacity:      DefaultCapacity,
		Mode:          DefaultMode,
	}
}

// Normalized clamps every value into range, zero values take defaults
func (c Config) Normalized() Config {
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.SpawnInterval == 0 {
		c.SpawnInterval = DefaultSpawnInterval
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	c.Speed = clampSpeed(c.Speed)
	c.SpawnInterval = clampInterval(c.SpawnInterval)
	c.Capacity = clampCapacity(c.Capacity)
	return c
}

func clampSpeed(v float64) float64 {
	if v != v {
		return DefaultSpeed
	}
	return vmath.Clamp(v, MinSpeed, MaxSpeed)
}

func clampInterval(d time.Duration) time.Duration {
	return min(max(d, MinSpawnInterval), MaxSpawnInterval)
}

func clampCapacity(n int) int {
	return vmath.ClampInt(n, MinCapacity, MaxCapacity)
}
