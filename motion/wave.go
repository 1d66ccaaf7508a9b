package motion

import (
	"math"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	waveBaseSpeed  = 0.12   // px/ms
	waveNumber     = 0.012  // rad/px
	waveOmega      = 0.0015 // rad/ms
	waveDriftStep  = 0.35   // rad per spawn
	waveFadeInMs   = 400
	waveFadeOutMs  = 600
	waveEntryInset = 10
)

// wave slots: AnchorY fraction of height, Phase, Speed multiplier, Extra amplitude fraction of height
type wave struct {
	env   Env
	drift float64
}

func newWave(env Env) Strategy {
	s := &wave{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *wave) reset() {
	s.drift = 0
}

func (s *wave) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	p.Scratch.AnchorY = between(rng, 0.15, 0.85)
	p.Scratch.Phase = rng.Float64()*2*math.Pi + s.drift
	p.Scratch.Speed = between(rng, 0.8, 1.2)
	p.Scratch.Extra = between(rng, 0.03, 0.08)
	s.drift += waveDriftStep

	p.Pos.X = -EstimateWidth(p.Text) + waveEntryInset
	p.Pos.Y = s.y(p, h)
	p.Vel = core.Vec2{X: waveBaseSpeed * p.Scratch.Speed}
	p.Opacity = 0
}

func (s *wave) y(p *core.Particle, h float64) float64 {
	return p.Scratch.AnchorY*h + p.Scratch.Extra*h*math.Sin(waveNumber*p.Pos.X+p.Scratch.Phase)
}

func (s *wave) update(p *core.Particle, dt, speed, w, h float64) bool {
	p.Vel.X = waveBaseSpeed * p.Scratch.Speed
	p.Pos.X += p.Vel.X * speed * dt
	p.Scratch.Phase += waveOmega * speed * dt
	p.Pos.Y = s.y(p, h)

	if p.Pos.X > w {
		p.Opacity = vmath.FadeOut(p.Opacity, dt*speed, waveFadeOutMs)
		return p.Opacity > 0
	}
	p.Opacity = vmath.Approach(p.Opacity, 1, dt/waveFadeInMs)
	return true
}
