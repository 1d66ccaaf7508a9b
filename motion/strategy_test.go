package motion

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/firehose/core"
)

const (
	testWidth  = 800.0
	testHeight = 600.0
	frameMs    = 16.0
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) Now() time.Time { return f.t }

func (f *fakeNow) Advance(d time.Duration) { f.t = f.t.Add(d) }

func testEnv(seed uint64) (Env, *fakeNow) {
	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return Env{Rand: rand.New(rand.NewPCG(seed, seed^0xabcdef)), Now: clock.Now}, clock
}

func mustNew(t *testing.T, name string, env Env) Strategy {
	t.Helper()
	s, ok := Default().New(name, env)
	require.True(t, ok, "strategy %q should be registered", name)
	return s
}

// step advances age the way the engine does, then updates
func step(s Strategy, p *core.Particle, dt, speed, w, h float64) bool {
	p.Age += dt
	return s.Update(p, dt, speed, w, h)
}

func TestDefaultRegistryNames(t *testing.T) {
	names := Default().Names()
	assert.Equal(t, []string{
		Wave, Matrix, Waterfall, Spiral, Typewriter,
		Explosion, Gravity, Floating, Redacted, Firehose,
	}, names)
}

func TestRegistryUnknownAndReplace(t *testing.T) {
	r := NewRegistry()
	_, ok := r.New("nope", Env{})
	assert.False(t, ok)

	calls := 0
	r.Register("stub", func(env Env) Strategy { calls = 1; return Strategy{} })
	r.Register("stub", func(env Env) Strategy { calls = 2; return Strategy{} })

	s, ok := r.New("stub", Env{})
	require.True(t, ok)
	assert.Equal(t, "stub", s.Name)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"stub"}, r.Names())
	assert.True(t, r.Has("stub"))
}

func TestEveryStrategyRetiresWithOpacityInRange(t *testing.T) {
	for _, name := range Default().Names() {
		t.Run(name, func(t *testing.T) {
			env, _ := testEnv(7)
			s := mustNew(t, name, env)
			s.Reset()

			p := core.NewParticle(1, "word", "truth_social")
			s.Initialize(p, testWidth, testHeight)

			alive := true
			limit := RedactedLifetimeMs + 10000.0
			for p.Age < limit && alive {
				alive = step(s, p, frameMs, 1, testWidth, testHeight)
				require.GreaterOrEqual(t, p.Opacity, 0.0, "opacity below zero at age %.0f", p.Age)
				require.LessOrEqual(t, p.Opacity, 1.0, "opacity above one at age %.0f", p.Age)
			}
			assert.False(t, alive, "%s particle should retire", name)
		})
	}
}

func TestGravityBounceDecaysToDeath(t *testing.T) {
	env, _ := testEnv(3)
	s := mustNew(t, Gravity, env)
	p := core.NewParticle(1, "drop", "")
	s.Initialize(p, testWidth, testHeight)

	require.Equal(t, 0.0, p.Vel.Y)
	require.Equal(t, 0.0, p.Pos.Y)

	prev := p.Opacity
	decaying := false
	alive := true
	for i := 0; i < 10000 && alive; i++ {
		alive = step(s, p, frameMs, 1, testWidth, testHeight)
		if p.Opacity < prev {
			decaying = true
		}
		if decaying {
			require.LessOrEqual(t, p.Opacity, prev, "opacity rose after decay began")
		}
		prev = p.Opacity
	}
	assert.True(t, decaying)
	assert.False(t, alive)
}

func TestTypewriterWrapsAtViewportWidth(t *testing.T) {
	env, _ := testEnv(1)
	s := mustNew(t, Typewriter, env)
	s.Reset()

	const w, h = 200.0, 400.0
	var placed []*core.Particle
	for i := 0; i < 6; i++ {
		p := core.NewParticle(uint64(i), "alpha", "")
		s.Initialize(p, w, h)
		placed = append(placed, p)
	}

	assert.Equal(t, core.Vec2{X: Margin, Y: Margin}, placed[0].Pos)
	wrapped := false
	for _, p := range placed[1:] {
		if p.Pos.X == Margin && p.Pos.Y == Margin+LineHeight {
			wrapped = true
		}
		assert.LessOrEqual(t, p.Pos.X+EstimateWidth(p.Text), w-Margin+1e-9)
	}
	assert.True(t, wrapped, "expected a word on the second line at the left margin")
}

func TestTypewriterRestartsAtTop(t *testing.T) {
	env, _ := testEnv(1)
	s := mustNew(t, Typewriter, env)

	const w, h = 100.0, 100.0
	var ys []float64
	for i := 0; i < 4; i++ {
		p := core.NewParticle(uint64(i), "abcdefg", "")
		s.Initialize(p, w, h)
		ys = append(ys, p.Pos.Y)
	}
	assert.Equal(t, []float64{Margin, Margin + LineHeight, Margin, Margin + LineHeight}, ys)
}

func TestTypewriterFadeScalesWithSpeed(t *testing.T) {
	lifetime := func(speed float64) float64 {
		env, _ := testEnv(1)
		s := mustNew(t, Typewriter, env)
		p := core.NewParticle(1, "tick", "")
		s.Initialize(p, testWidth, testHeight)
		for step(s, p, frameMs, speed, testWidth, testHeight) {
		}
		return p.Age
	}
	assert.Less(t, lifetime(2), lifetime(1))
}

func TestRedactedTracksPassesWithoutFading(t *testing.T) {
	env, _ := testEnv(1)
	s := mustNew(t, Redacted, env)

	const w, h = 100.0, 100.0
	var passes []int
	for i := 0; i < 5; i++ {
		p := core.NewParticle(uint64(i), "abcdefg", "")
		s.Initialize(p, w, h)
		passes = append(passes, p.Scratch.Pass)
	}
	assert.Equal(t, []int{0, 0, 1, 1, 2}, passes)

	p := core.NewParticle(9, "kept", "")
	s.Initialize(p, w, h)
	for p.Age < 60000 {
		require.True(t, step(s, p, frameMs, 1, w, h))
	}
	assert.Equal(t, 1.0, p.Opacity)

	s.Reset()
	q := core.NewParticle(10, "fresh", "")
	s.Initialize(q, w, h)
	assert.Equal(t, 0, q.Scratch.Pass)
	assert.Equal(t, core.Vec2{X: Margin, Y: Margin}, q.Pos)
}

func TestMatrixSpreadsAcrossColumns(t *testing.T) {
	env, _ := testEnv(5)
	s := mustNew(t, Matrix, env)

	const w = 550.0 // five columns
	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		p := core.NewParticle(uint64(i), "neo", "")
		s.Initialize(p, w, testHeight)
		seen[p.Scratch.Column] = true
		assert.Equal(t, float64(p.Scratch.Column)*matrixColumnWidth, p.Pos.X)
	}
	assert.Len(t, seen, 5)

	s.Reset()
	p := core.NewParticle(6, "trinity", "")
	s.Initialize(p, w, testHeight)
	assert.Equal(t, -LineHeight, p.Pos.Y, "first word in an empty column starts one line above the top")
}

func TestMatrixFollowsResize(t *testing.T) {
	env, _ := testEnv(5)
	s := mustNew(t, Matrix, env)

	p := core.NewParticle(1, "neo", "")
	s.Initialize(p, 1100, testHeight)
	p.Scratch.Column = 9

	step(s, p, frameMs, 1, 220, testHeight)
	assert.Equal(t, matrixColumnWidth, p.Pos.X)
}

func TestSpiralRetiresPastMaxRadius(t *testing.T) {
	env, _ := testEnv(2)
	s := mustNew(t, Spiral, env)
	p := core.NewParticle(1, "swirl", "")
	s.Initialize(p, testWidth, testHeight)

	assert.Equal(t, core.Vec2{X: testWidth / 2, Y: testHeight / 2}, p.Pos)
	for step(s, p, frameMs, 1, testWidth, testHeight) {
	}
	assert.Greater(t, p.Scratch.Radius, MaxSpiralRadius(testWidth, testHeight))
}

func TestWaveFadesOnlyPastRightEdge(t *testing.T) {
	env, _ := testEnv(4)
	s := mustNew(t, Wave, env)
	p := core.NewParticle(1, "ripple", "")
	s.Initialize(p, testWidth, testHeight)

	for i := 0; i < 100; i++ {
		require.True(t, step(s, p, frameMs, 1, testWidth, testHeight))
	}
	assert.Equal(t, 1.0, p.Opacity)

	p.Pos.X = testWidth + 1
	step(s, p, frameMs, 1, testWidth, testHeight)
	assert.Less(t, p.Opacity, 1.0)
}

func TestExplosionSpreadsAngles(t *testing.T) {
	env, _ := testEnv(8)
	s := mustNew(t, Explosion, env)

	a := core.NewParticle(1, "boom", "")
	b := core.NewParticle(2, "bang", "")
	s.Initialize(a, testWidth, testHeight)
	s.Initialize(b, testWidth, testHeight)

	assert.Equal(t, core.Vec2{X: testWidth / 2, Y: testHeight / 2}, a.Pos)
	assert.NotEqual(t, a.Vel, b.Vel)
	assert.InDelta(t, 2.4, b.Scratch.Phase-a.Scratch.Phase, 0.41)
}

func TestFirehosePhaseSchedule(t *testing.T) {
	assert.Equal(t, "trickle", PhaseAt(0).Name)
	assert.Equal(t, "surge", PhaseAt(20000).Name)
	assert.Equal(t, "flood", PhaseAt(50000).Name)
	assert.Equal(t, "flood", PhaseAt(1e9).Name)
}

func TestFirehoseRewritesTextInLaterPhases(t *testing.T) {
	env, clock := testEnv(11)
	s := mustNew(t, Firehose, env)
	s.Reset()

	for i := 0; i < 50; i++ {
		p := core.NewParticle(uint64(i), "original", "")
		s.Initialize(p, testWidth, testHeight)
		assert.Equal(t, "original", p.Text, "trickle phase keeps source text")
	}

	clock.Advance(60 * time.Second)
	rewritten := 0
	for i := 0; i < 200; i++ {
		p := core.NewParticle(uint64(i), "original", "")
		s.Initialize(p, testWidth, testHeight)
		switch p.Text {
		case "NOISE", "STATIC":
			rewritten++
		default:
			assert.Equal(t, "original", p.Text)
		}
		assert.Equal(t, 0.0, p.Pos.X, "launches from the left edge")
	}
	assert.Greater(t, rewritten, 100)
	assert.Less(t, rewritten, 190)

	s.Reset()
	p := core.NewParticle(1, "original", "")
	s.Initialize(p, testWidth, testHeight)
	assert.Equal(t, "original", p.Text, "reset returns to the first phase")
}

func TestEstimateWidth(t *testing.T) {
	assert.InDelta(t, 3*CharWidth, EstimateWidth("abc"), 1e-9)
	assert.InDelta(t, 4*CharWidth, EstimateWidth("日本"), 1e-9)
	assert.Equal(t, 0.0, EstimateWidth(""))
}
