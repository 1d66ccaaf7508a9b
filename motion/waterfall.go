package motion

import (
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/physics"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	waterfallGravity       = 0.0004 // px/ms²
	waterfallRestitution   = 0.45
	waterfallSettleSpeed   = 0.05 // px/ms rebound below which the word stops bouncing
	waterfallJitter        = 0.0006
	waterfallMaxDrift      = 0.05
	waterfallFloorInset    = 8
	waterfallFadeInMs      = 200
	waterfallFadeOutMs     = 800
	waterfallMaxLifetimeMs = 15000
)

// waterfall slots: AnchorX fraction of width, Extra bounce count, Radius 1 once fading
type waterfall struct {
	env Env
}

func newWaterfall(env Env) Strategy {
	s := &waterfall{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *waterfall) reset() {}

func (s *waterfall) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	p.Scratch.AnchorX = between(rng, 0.2, 0.8)
	p.Pos.X = p.Scratch.AnchorX * w
	p.Pos.Y = -between(rng, 0, 2*LineHeight)
	p.Vel = core.Vec2{X: between(rng, -0.02, 0.02), Y: between(rng, 0.05, 0.1)}
	p.Opacity = 0
}

func (s *waterfall) update(p *core.Particle, dt, speed, w, h float64) bool {
	sdt := dt * speed

	if p.Scratch.Radius > 0 {
		p.Opacity = vmath.FadeOut(p.Opacity, sdt, waterfallFadeOutMs)
		return p.Opacity > 0
	}

	p.Vel.X = vmath.Clamp(p.Vel.X+between(s.env.Rand, -waterfallJitter, waterfallJitter)*sdt/16, -waterfallMaxDrift, waterfallMaxDrift)
	physics.Integrate(p, 0, waterfallGravity, sdt)
	physics.ReflectBoundsX(p, 0, max(0, w-EstimateWidth(p.Text)), 0.5)

	floor := h - waterfallFloorInset
	if rebound := physics.BounceFloor(p, floor, waterfallRestitution); rebound >= 0 {
		p.Scratch.Extra++
		p.Vel.X *= 0.7
		if rebound < waterfallSettleSpeed {
			p.Scratch.Radius = 1
			p.Vel = core.Vec2{}
		}
	}

	if p.Age > waterfallMaxLifetimeMs {
		p.Scratch.Radius = 1
	}
	if p.Scratch.Radius == 0 {
		p.Opacity = vmath.Approach(p.Opacity, 1, dt/waterfallFadeInMs)
	}
	return true
}
