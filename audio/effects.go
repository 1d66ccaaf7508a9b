package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Shape maps a phase in [0, 1) to a sample in [-1, 1]
type Shape func(phase float64) float64

// Waveforms
var (
	Sine   Shape = func(p float64) float64 { return math.Sin(2 * math.Pi * p) }
	Square Shape = func(p float64) float64 {
		if p < 0.5 {
			return 1
		}
		return -1
	}
	Saw   Shape = func(p float64) float64 { return 2 * (p - 0.5) }
	Noise Shape = func(float64) float64 { return rand.Float64()*2 - 1 }
)

// Sound timings
const (
	keyDuration   = 18 * time.Millisecond
	keyAttack     = 1 * time.Millisecond
	keyRelease    = 14 * time.Millisecond
	popDuration   = 90 * time.Millisecond
	popAttack     = 2 * time.Millisecond
	popRelease    = 80 * time.Millisecond
	blipDuration  = 70 * time.Millisecond
	blipAttack    = 5 * time.Millisecond
	blipRelease   = 50 * time.Millisecond
	blipNote2Hold = 50 * time.Millisecond
)

// NewTone plays shape for duration while the pitch glides linearly from one frequency to another
func NewTone(from, to float64, duration time.Duration, shape Shape, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	step := 1 / float64(rate)
	pos, phase := 0, 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			if pos >= total {
				return i, i > 0
			}
			v := shape(phase)
			samples[i][0], samples[i][1] = v, v

			freq := from + (to-from)*float64(pos)/float64(total)
			phase += freq * step
			phase -= math.Floor(phase)
			pos++
		}
		return len(samples), true
	})
}

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	releaseStart int
	total        int
}

// NewEnvelope shapes s over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	return &envelope{
		streamer:     s,
		attack:       att,
		release:      rel,
		releaseStart: max(total-rel, att),
		total:        total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		samples[i][0] *= e.gain()
		samples[i][1] *= e.gain()
		e.position++
	}
	return n, ok
}

// gain returns the envelope level at the current position
func (e *envelope) gain() float64 {
	switch {
	case e.attack > 0 && e.position < e.attack:
		return float64(e.position) / float64(e.attack)
	case e.release > 0 && e.position >= e.releaseStart:
		return max(float64(e.total-e.position)/float64(e.release), 0)
	}
	return 1.0
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a linear gain, zero or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateKeySound is a dry click: noise transient over a high square
func CreateKeySound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	noise := NewEnvelope(NewTone(0, 0, keyDuration, Noise, rate), keyDuration, keyAttack, keyRelease, rate)
	tick := NewEnvelope(NewTone(2400, 1800, keyDuration, Square, rate), keyDuration, keyAttack, keyRelease/2, rate)

	return newVolume(beep.Mix(newVolume(noise, 0.6), newVolume(tick, 0.15)), 0.5*cfg.MasterVolume)
}

// CreatePopSound is a falling saw thump with a noise burst
func CreatePopSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	body := NewEnvelope(NewTone(180, 60, popDuration, Saw, rate), popDuration, popAttack, popRelease, rate)
	burst := NewEnvelope(NewTone(0, 0, popDuration/2, Noise, rate), popDuration/2, popAttack, popDuration/3, rate)

	return newVolume(beep.Mix(newVolume(body, 0.5), newVolume(burst, 0.3)), 0.6*cfg.MasterVolume)
}

// CreateBlipSound is a two-note rising sine
func CreateBlipSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	n1 := NewEnvelope(NewTone(880, 880, blipNote2Hold, Sine, rate), blipNote2Hold, blipAttack, blipNote2Hold/2, rate)
	n2 := NewEnvelope(NewTone(1320, 1320, blipDuration, Sine, rate), blipDuration, blipAttack, blipRelease, rate)

	return newVolume(beep.Seq(n1, n2), 0.7*cfg.MasterVolume)
}

// GetSoundEffect returns a fresh streamer for the sound type, nil when unknown
func GetSoundEffect(sound SoundType, cfg Config) beep.Streamer {
	switch sound {
	case SoundKey:
		return CreateKeySound(cfg)
	case SoundPop:
		return CreatePopSound(cfg)
	case SoundBlip:
		return CreateBlipSound(cfg)
	}
	return nil
}
