// Package motion holds the word-flow motion strategies
//
// A strategy is a named triple of functions over core.Particle. Strategies own their
// layout counters (matrix column fill, typewriter cursor) and are confined to the
// engine's tick; they must not retain particles between calls.
package motion

import (
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/firehose/core"
)

// Strategy is one motion policy
// Update receives elapsed milliseconds and the global speed multiplier and reports survival
type Strategy struct {
	Name       string
	Reset      func()
	Initialize func(p *core.Particle, width, height float64)
	Update     func(p *core.Particle, dtMs, speed, width, height float64) bool
}

// Env carries strategy dependencies
type Env struct {
	Rand *rand.Rand
	Now  func() time.Time
}

// Factory builds a fresh strategy instance with zeroed layout state
type Factory func(env Env) Strategy

// Registry maps strategy names to factories, preserving registration order
type Registry struct {
	names     []string
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory
func (r *Registry) Register(name string, f Factory) {
	if _, ok := r.factories[name]; !ok {
		r.names = append(r.names, name)
	}
	r.factories[name] = f
}

// Names returns registered names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New builds the named strategy, false when unknown
func (r *Registry) New(name string, env Env) (Strategy, bool) {
	f, ok := r.factories[name]
	if !ok {
		return Strategy{}, false
	}
	env = env.withDefaults()
	s := f(env)
	s.Name = name
	return s, true
}

func (e Env) withDefaults() Env {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// Strategy names in display order
const (
	Wave       = "wave"
	Matrix     = "matrix"
	Waterfall  = "waterfall"
	Spiral     = "spiral"
	Typewriter = "typewriter"
	Explosion  = "explosion"
	Gravity    = "gravity"
	Floating   = "floating"
	Redacted   = "redacted"
	Firehose   = "firehose"
)

// Default returns a registry with every built-in strategy
func Default() *Registry {
	r := NewRegistry()
	r.Register(Wave, newWave)
	r.Register(Matrix, newMatrix)
	r.Register(Waterfall, newWaterfall)
	r.Register(Spiral, newSpiral)
	r.Register(Typewriter, newTypewriter)
	r.Register(Explosion, newExplosion)
	r.Register(Gravity, newGravity)
	r.Register(Floating, newFloating)
	r.Register(Redacted, newRedacted)
	r.Register(Firehose, newFirehose)
	return r
}

// between returns a uniform value in [lo, hi)
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
