package motion

import (
	"math"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/physics"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	spiralAngularRate = 0.0015 // rad/ms
	spiralGrowth      = 0.04   // px/ms
	spiralMaxFraction = 0.6    // of min(width, height)
	spiralFadeZone    = 0.2    // outer fraction of the max radius
	spiralFadeInMs    = 300
)

// spiral slots: Phase angle, Radius, Speed angular multiplier
type spiral struct {
	env   Env
	count int
}

func newSpiral(env Env) Strategy {
	s := &spiral{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *spiral) reset() {
	s.count = 0
}

// MaxSpiralRadius is the radius at which spiral words retire
func MaxSpiralRadius(w, h float64) float64 {
	return spiralMaxFraction * math.Min(w, h)
}

func (s *spiral) initialize(p *core.Particle, w, h float64) {
	p.Scratch.Phase = float64(s.count) * vmath.GoldenAngle
	p.Scratch.Radius = 0
	p.Scratch.Speed = between(s.env.Rand, 0.7, 1.3)
	s.count++

	p.Pos = physics.Polar(w/2, h/2, p.Scratch.Phase, p.Scratch.Radius)
	p.Rotation = p.Scratch.Phase
	p.Opacity = 0
}

func (s *spiral) update(p *core.Particle, dt, speed, w, h float64) bool {
	p.Scratch.Phase += spiralAngularRate * p.Scratch.Speed * speed * dt
	p.Scratch.Radius += spiralGrowth * speed * dt
	p.Pos = physics.Polar(w/2, h/2, p.Scratch.Phase, p.Scratch.Radius)
	p.Rotation = p.Scratch.Phase

	limit := MaxSpiralRadius(w, h)
	if p.Scratch.Radius > limit {
		return false
	}
	fadeStart := limit * (1 - spiralFadeZone)
	if p.Scratch.Radius > fadeStart {
		p.Opacity = math.Min(p.Opacity, (limit-p.Scratch.Radius)/(limit-fadeStart))
	} else {
		p.Opacity = vmath.Approach(p.Opacity, 1, dt/spiralFadeInMs)
	}
	return true
}
