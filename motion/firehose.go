package motion

import (
	"math"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/physics"
	"github.com/lixenwraith/firehose/vmath"
)

// Phase is a stage of the firehose strategy, ordered by elapsed time since reset
type Phase struct {
	Name string
	// Until is the elapsed ms at which the phase ends, 0 for the last phase
	Until float64
	// Rewrite is the probability a spawned word is replaced by one of Tokens
	Rewrite float64
	Tokens  [2]string
	// Thrust scales the launch speed
	Thrust float64
}

// FirehosePhases in order; source text is replaced by phase tokens regardless of content
var FirehosePhases = []Phase{
	{Name: "trickle", Until: 15000, Rewrite: 0, Thrust: 1.0},
	{Name: "surge", Until: 40000, Rewrite: 0.35, Tokens: [2]string{"MORE", "LOUDER"}, Thrust: 1.3},
	{Name: "flood", Until: 0, Rewrite: 0.7, Tokens: [2]string{"NOISE", "STATIC"}, Thrust: 1.6},
}

const (
	firehoseSpray          = math.Pi / 6 // ±30°
	firehoseGravity        = 0.0003      // px/ms²
	firehoseDamping        = 0.995
	firehoseRestitution    = 0.7
	firehoseLifetimeMs     = 6000
	firehoseFadeOutMs      = 500
	firehoseRewritePerSec  = 0.2
	firehoseLaunchMinSpeed = 0.4
	firehoseLaunchMaxSpeed = 0.8
)

// firehose slots: AnchorY launch height fraction, Extra 1 once fading
type firehose struct {
	env     Env
	resetAt float64 // unix ms
}

func newFirehose(env Env) Strategy {
	s := &firehose{env: env}
	s.reset()
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *firehose) reset() {
	s.resetAt = float64(s.env.Now().UnixMilli())
}

func (s *firehose) elapsed() float64 {
	return float64(s.env.Now().UnixMilli()) - s.resetAt
}

// PhaseAt returns the phase active after elapsedMs
func PhaseAt(elapsedMs float64) Phase {
	for _, ph := range FirehosePhases {
		if ph.Until == 0 || elapsedMs < ph.Until {
			return ph
		}
	}
	return FirehosePhases[len(FirehosePhases)-1]
}

func (s *firehose) rewrite(p *core.Particle, ph Phase, chance float64) {
	if ph.Rewrite <= 0 || chance <= 0 {
		return
	}
	if s.env.Rand.Float64() < chance {
		p.Text = ph.Tokens[s.env.Rand.IntN(len(ph.Tokens))]
	}
}

func (s *firehose) initialize(p *core.Particle, w, h float64) {
	rng := s.env.Rand
	ph := PhaseAt(s.elapsed())
	s.rewrite(p, ph, ph.Rewrite)

	p.Scratch.AnchorY = between(rng, 0.3, 0.7)
	angle := between(rng, -firehoseSpray, firehoseSpray)
	p.Pos = core.Vec2{X: 0, Y: p.Scratch.AnchorY * h}
	p.Vel = physics.Polar(0, 0, angle, between(rng, firehoseLaunchMinSpeed, firehoseLaunchMaxSpeed)*ph.Thrust)
	p.Rotation = angle
	p.Opacity = 1
}

func (s *firehose) update(p *core.Particle, dt, speed, w, h float64) bool {
	sdt := dt * speed

	if p.Scratch.Extra == 0 {
		ph := PhaseAt(s.elapsed())
		s.rewrite(p, ph, ph.Rewrite*firehoseRewritePerSec*dt/1000)
	}

	physics.Integrate(p, 0, firehoseGravity, sdt)
	physics.Damp(p, firehoseDamping, sdt, 16)
	physics.ReflectBoundsY(p, 0, max(0, h-LineHeight), firehoseRestitution)

	if p.Age > firehoseLifetimeMs || p.Pos.X > w {
		p.Scratch.Extra = 1
	}
	if p.Scratch.Extra > 0 {
		p.Opacity = vmath.FadeOut(p.Opacity, sdt, firehoseFadeOutMs)
	}
	return p.Opacity > 0
}
