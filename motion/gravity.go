package motion

import (
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/physics"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	gravityAccel        = 0.0008 // px/ms²
	gravityRestitution  = 0.6
	gravityFriction     = 0.8
	gravitySettleSpeed  = 0.08 // px/ms
	gravityFloorInset   = 8
	gravityFadeOutMs    = 1200
	gravityMaxLifetime  = 30000
	gravityInitialDrift = 0.05
)

// gravity slots: Extra 1 once settled on the floor and fading
type gravity struct {
	env Env
}

func newGravity(env Env) Strategy {
	s := &gravity{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *gravity) reset() {}

func (s *gravity) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	p.Pos = core.Vec2{X: between(rng, 0.05, 0.9) * w, Y: 0}
	p.Vel = core.Vec2{X: between(rng, -gravityInitialDrift, gravityInitialDrift), Y: 0}
	p.Opacity = 1
}

func (s *gravity) update(p *core.Particle, dt, speed, w, h float64) bool {
	sdt := dt * speed
	floor := h - gravityFloorInset

	if p.Scratch.Extra > 0 {
		p.Pos.Y = floor
		p.Opacity = vmath.FadeOut(p.Opacity, sdt, gravityFadeOutMs)
		return p.Opacity > 0
	}

	physics.Integrate(p, 0, gravityAccel, sdt)
	physics.ReflectBoundsX(p, 0, max(0, w-EstimateWidth(p.Text)), gravityRestitution)

	if rebound := physics.BounceFloor(p, floor, gravityRestitution); rebound >= 0 {
		p.Vel.X *= gravityFriction
		if rebound < gravitySettleSpeed {
			p.Scratch.Extra = 1
			p.Vel = core.Vec2{}
		}
	}
	if p.Age > gravityMaxLifetime {
		p.Scratch.Extra = 1
	}
	return true
}
