package motion

import (
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	typewriterFadeInMs  = 300
	typewriterHoldMs    = 8000
	typewriterFadeOutMs = 1000
)

// typewriter slots: Extra 1 once fading out
type typewriter struct {
	env    Env
	cursor textCursor
}

func newTypewriter(env Env) Strategy {
	s := &typewriter{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *typewriter) reset() {
	s.cursor.reset()
}

func (s *typewriter) initialize(p *core.Particle, w, h float64) {
	p.Pos.X, p.Pos.Y = s.cursor.place(EstimateWidth(p.Text), w, h)
	p.Vel = core.Vec2{}
	p.Opacity = 0
}

func (s *typewriter) update(p *core.Particle, dt, speed, w, h float64) bool {
	if p.Scratch.Extra > 0 {
		p.Opacity = vmath.FadeOut(p.Opacity, dt*speed, typewriterFadeOutMs)
		return p.Opacity > 0
	}
	if p.Age < typewriterFadeInMs {
		p.Opacity = vmath.FadeIn(p.Age, typewriterFadeInMs)
		return true
	}
	p.Opacity = 1
	if p.Age > typewriterFadeInMs+typewriterHoldMs/speed {
		p.Scratch.Extra = 1
	}
	return true
}
