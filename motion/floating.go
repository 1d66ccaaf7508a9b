package motion

import (
	"math"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	floatingSwayRate = 0.002 // rad/ms
	floatingFadeZone = 0.25  // top fraction of the viewport
	floatingFadeInMs = 600
)

// floating slots: AnchorX fraction of width, Phase sway angle, Speed px/ms, Extra sway amplitude px
type floating struct {
	env Env
}

func newFloating(env Env) Strategy {
	s := &floating{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *floating) reset() {}

func (s *floating) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	p.Scratch.AnchorX = between(rng, 0.05, 0.85)
	p.Scratch.Phase = rng.Float64() * 2 * math.Pi
	p.Scratch.Speed = between(rng, 0.04, 0.08)
	p.Scratch.Extra = between(rng, 10, 30)

	p.Pos = core.Vec2{X: p.Scratch.AnchorX * w, Y: h + LineHeight}
	p.Vel = core.Vec2{Y: -p.Scratch.Speed}
	p.Opacity = 0
}

func (s *floating) update(p *core.Particle, dt, speed, w, h float64) bool {
	p.Pos.Y -= p.Scratch.Speed * speed * dt
	p.Scratch.Phase += floatingSwayRate * speed * dt
	p.Pos.X = p.Scratch.AnchorX*w + p.Scratch.Extra*math.Sin(p.Scratch.Phase)

	if p.Pos.Y < -LineHeight {
		return false
	}
	fadeStart := h * floatingFadeZone
	if p.Pos.Y < fadeStart {
		p.Opacity = math.Min(p.Opacity, vmath.Clamp01(p.Pos.Y/fadeStart))
		return p.Opacity > 0
	}
	p.Opacity = vmath.Approach(p.Opacity, 1, dt/floatingFadeInMs)
	return true
}
