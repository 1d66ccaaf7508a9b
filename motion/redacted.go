package motion

import (
	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	redactedFadeInMs = 150
	// RedactedLifetimeMs caps how long a redacted word may persist
	RedactedLifetimeMs = 120000
)

// redacted slots: Pass screen pass the word was laid out in
// Words never fade on a timer; later passes overwrite earlier ones on screen
type redacted struct {
	env    Env
	cursor textCursor
}

func newRedacted(env Env) Strategy {
	s := &redacted{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *redacted) reset() {
	s.cursor.reset()
}

func (s *redacted) initialize(p *core.Particle, w, h float64) {
	p.Pos.X, p.Pos.Y = s.cursor.place(EstimateWidth(p.Text), w, h)
	p.Scratch.Pass = s.cursor.pass
	p.Vel = core.Vec2{}
	p.Opacity = 0
}

func (s *redacted) update(p *core.Particle, dt, speed, w, h float64) bool {
	if p.Age > RedactedLifetimeMs {
		return false
	}
	p.Opacity = vmath.Approach(p.Opacity, 1, dt*speed/redactedFadeInMs)
	return true
}
