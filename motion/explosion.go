package motion

import (
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/physics"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	explosionDamping     = 0.985 // retention per 16ms
	explosionRestitution = 0.7
	explosionAngleJitter = 0.2
	explosionHoldMs      = 3000
	explosionFadeOutMs   = 1500
)

// explosion slots: Phase launch angle, Extra speed-scaled lifetime ms
type explosion struct {
	env   Env
	count int
}

func newExplosion(env Env) Strategy {
	s := &explosion{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *explosion) reset() {
	s.count = 0
}

func (s *explosion) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	angle := float64(s.count)*vmath.GoldenAngle + between(rng, -explosionAngleJitter, explosionAngleJitter)
	s.count++

	p.Scratch.Phase = angle
	p.Pos = core.Vec2{X: w / 2, Y: h / 2}
	p.Vel = physics.Polar(0, 0, angle, between(rng, 0.25, 0.45))
	p.Size = between(rng, 0.9, 1.4)
	p.Opacity = 1
}

func (s *explosion) update(p *core.Particle, dt, speed, w, h float64) bool {
	sdt := dt * speed
	p.Scratch.Extra += sdt

	physics.Integrate(p, 0, 0, sdt)
	physics.Damp(p, explosionDamping, sdt, 16)
	physics.ReflectBoundsX(p, 0, max(0, w-EstimateWidth(p.Text)*p.Size), explosionRestitution)
	physics.ReflectBoundsY(p, 0, max(0, h-LineHeight*p.Size), explosionRestitution)

	if p.Scratch.Extra > explosionHoldMs {
		p.Opacity = vmath.FadeOut(p.Opacity, sdt, explosionFadeOutMs)
	}
	return p.Opacity > 0
}
