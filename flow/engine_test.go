package flow

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/motion"
	"github.com/lixenwraith/firehose/render"
	"github.com/lixenwraith/firehose/status"
)

const frameMs = 16.0

// stubRegistry holds deterministic strategies
// still never retires, brief retires after 50ms, bright overshoots opacity
func stubRegistry() *motion.Registry {
	r := motion.NewRegistry()
	r.Register("still", func(motion.Env) motion.Strategy {
		return motion.Strategy{
			Reset:      func() {},
			Initialize: func(p *core.Particle, w, h float64) { p.Opacity = 1 },
			Update:     func(p *core.Particle, dt, speed, w, h float64) bool { return true },
		}
	})
	r.Register("brief", func(motion.Env) motion.Strategy {
		return motion.Strategy{
			Reset:      func() {},
			Initialize: func(p *core.Particle, w, h float64) { p.Opacity = 1 },
			Update:     func(p *core.Particle, dt, speed, w, h float64) bool { return p.Age < 50 },
		}
	})
	r.Register("bright", func(motion.Env) motion.Strategy {
		return motion.Strategy{
			Reset:      func() {},
			Initialize: func(p *core.Particle, w, h float64) { p.Opacity = 1.7 },
			Update:     func(p *core.Particle, dt, speed, w, h float64) bool { return true },
		}
	})
	return r
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder(800, 600)
	base := []Option{
		WithConfig(cfg),
		WithRegistry(stubRegistry()),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(clockwork.NewFakeClock()),
	}
	e := New(rec, append(base, opts...)...)
	t.Cleanup(e.Destroy)
	return e, rec
}

func tickFor(e *Engine, totalMs float64) {
	for elapsed := 0.0; elapsed+frameMs <= totalMs; elapsed += frameMs {
		e.Tick(frameMs)
	}
}

func texts(states []render.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Text
	}
	return out
}

func TestCapacityScenario(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", Capacity: 3, SpawnInterval: 100 * time.Millisecond})

	e.AddContent("one two three four five", "")
	tickFor(e, 5*100)

	st := e.Stats()
	assert.Equal(t, 3, st.Active)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, []string{"one", "two", "three"}, texts(rec.Elements()))
}

func TestCapacityNeverExceeded(t *testing.T) {
	e, _ := newTestEngine(t, Config{Mode: "still", Capacity: 4, SpawnInterval: MinSpawnInterval})
	e.AddContent("a b c d e f g h i j k l", "")

	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 500; i++ {
		e.Tick(rng.Float64() * 120)
		require.LessOrEqual(t, e.Stats().Active, 4)
	}
	assert.Equal(t, 4, e.Stats().Active)
}

func TestSpawnOrderIsFIFO(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval})
	e.AddContent("first second", "")
	e.AddContent("third", "")

	tickFor(e, 1000)

	els := rec.Elements()
	require.Len(t, els, 3)
	assert.Equal(t, []string{"first", "second", "third"}, texts(els))
	assert.Less(t, els[0].ID, els[1].ID)
}

func TestConcurrentProducersWhileTicking(t *testing.T) {
	const producers, perProducer = 4, 60
	const total = producers * perProducer

	var spawned []SpawnEvent
	e, _ := newTestEngine(t, Config{Mode: "still", Capacity: MaxCapacity, SpawnInterval: MinSpawnInterval},
		WithSpawnHandler(func(ev SpawnEvent) { spawned = append(spawned, ev) }))

	var producersWG sync.WaitGroup
	done := make(chan struct{})
	for k := 0; k < producers; k++ {
		producersWG.Add(1)
		go func(k int) {
			defer producersWG.Done()
			tag := "p" + strconv.Itoa(k)
			for i := 0; i < perProducer; i++ {
				e.AddContent(tag+"-"+strconv.Itoa(i), tag)
			}
		}(k)
	}

	var tickerWG sync.WaitGroup
	tickerWG.Add(1)
	go func() {
		defer tickerWG.Done()
		for {
			select {
			case <-done:
				return
			default:
				e.Tick(float64(MinSpawnInterval.Milliseconds()) + 1)
			}
		}
	}()

	producersWG.Wait()
	close(done)
	tickerWG.Wait()

	st := e.Stats()
	assert.Equal(t, total, st.Active+st.Pending)

	for st.Pending > 0 {
		e.Tick(float64(MinSpawnInterval.Milliseconds()) + 1)
		st = e.Stats()
	}
	assert.Equal(t, total, st.Active)
	require.Len(t, spawned, total)

	next := make(map[string]int, producers)
	for _, ev := range spawned {
		idx, ok := strings.CutPrefix(ev.Text, ev.Tag+"-")
		require.True(t, ok, ev.Text)
		n, err := strconv.Atoi(idx)
		require.NoError(t, err)
		assert.Equal(t, next[ev.Tag], n, "producer %s spawned out of order", ev.Tag)
		next[ev.Tag] = n + 1
	}
	for k := 0; k < producers; k++ {
		assert.Equal(t, perProducer, next["p"+strconv.Itoa(k)])
	}
}

func TestAddContentTokenizes(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval})

	assert.Equal(t, 2, e.AddContent("hello world", "truth_social"))
	assert.Equal(t, 2, e.Stats().Pending)

	assert.Equal(t, 0, e.AddContent("", "x"))
	assert.Equal(t, 0, e.AddContent(" \t\n ", "x"))
	assert.Equal(t, 2, e.Stats().Pending)

	tickFor(e, 500)
	els := rec.Elements()
	require.Len(t, els, 2)
	for _, s := range els {
		assert.Equal(t, "truth_social", s.Tag)
	}
	assert.Equal(t, []string{"hello", "world"}, texts(els))
}

func TestSettersClamp(t *testing.T) {
	e, _ := newTestEngine(t, Config{Mode: "still"})

	tests := []struct {
		name  string
		apply func()
		check func(Config) bool
	}{
		{"speed low", func() { e.SetSpeed(-5) }, func(c Config) bool { return c.Speed == MinSpeed }},
		{"speed high", func() { e.SetSpeed(999) }, func(c Config) bool { return c.Speed == MaxSpeed }},
		{"speed in range", func() { e.SetSpeed(2.5) }, func(c Config) bool { return c.Speed == 2.5 }},
		{"spawn low", func() { e.SetSpawnRate(1) }, func(c Config) bool { return c.SpawnInterval == MinSpawnInterval }},
		{"spawn overflow", func() { e.SetSpawnRate(10_000_000_000_000) }, func(c Config) bool { return c.SpawnInterval == MaxSpawnInterval }},
		{"spawn negative overflow", func() { e.SetSpawnRate(-10_000_000_000_000) }, func(c Config) bool { return c.SpawnInterval == MinSpawnInterval }},
		{"spawn high", func() { e.SetSpawnRate(60000) }, func(c Config) bool { return c.SpawnInterval == MaxSpawnInterval }},
		{"capacity low", func() { e.SetMaxWords(-3) }, func(c Config) bool { return c.Capacity == MinCapacity }},
		{"capacity high", func() { e.SetMaxWords(1 << 20) }, func(c Config) bool { return c.Capacity == MaxCapacity }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.apply()
			assert.True(t, tt.check(e.Config()), "%+v", e.Config())
		})
	}
}

func TestConfigNormalized(t *testing.T) {
	c := Config{Speed: -5, SpawnInterval: time.Hour, Capacity: 99999}.Normalized()
	assert.Equal(t, MinSpeed, c.Speed)
	assert.Equal(t, MaxSpawnInterval, c.SpawnInterval)
	assert.Equal(t, MaxCapacity, c.Capacity)
	assert.Equal(t, DefaultMode, c.Mode)

	assert.Equal(t, DefaultConfig(), Config{}.Normalized())
}

func TestSpawnTimerResetsWhenAtCapacity(t *testing.T) {
	e, _ := newTestEngine(t, Config{Mode: "still", Capacity: 1, SpawnInterval: 100 * time.Millisecond})
	e.AddContent("a b c", "")

	e.Tick(101)
	require.Equal(t, 1, e.Stats().Active)

	// Interval elapses at capacity, timer still resets
	e.Tick(101)
	e.SetMaxWords(2)
	e.Tick(60)
	assert.Equal(t, 1, e.Stats().Active)
	e.Tick(41)
	assert.Equal(t, 2, e.Stats().Active)
}

func TestRetiredParticlesRemoved(t *testing.T) {
	reg := status.NewRegistry()
	e, rec := newTestEngine(t, Config{Mode: "brief", SpawnInterval: MinSpawnInterval}, WithStatus(reg))
	e.AddContent("x y", "")

	tickFor(e, 1000)

	assert.Empty(t, rec.Elements())
	assert.Equal(t, 0, e.Stats().Active)
	assert.Equal(t, int64(2), reg.Counter(StatSpawned).Load())
	assert.Equal(t, int64(2), reg.Counter(StatRetired).Load())
	_, removes, presents := rec.Counts()
	assert.Equal(t, 2, removes)
	assert.Positive(t, presents)
}

func TestOpacityClampedBeforeDraw(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "bright", SpawnInterval: MinSpawnInterval})
	e.AddContent("glow", "")
	tickFor(e, 100)

	els := rec.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, 1.0, els[0].Opacity)
}

func TestSetModeUnknownIsNoop(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval})
	e.AddContent("keep me", "")
	tickFor(e, 100)
	require.Len(t, rec.Elements(), 1)

	assert.False(t, e.SetMode("nope"))
	assert.Equal(t, "still", e.Stats().Mode)
	assert.Len(t, rec.Elements(), 1)
	assert.Equal(t, 1, e.Stats().Pending)
}

func TestSetModeClearsParticlesKeepsQueue(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval})
	e.AddContent("a b c d", "")
	tickFor(e, 130)
	require.Equal(t, 2, e.Stats().Active)

	require.True(t, e.SetMode("brief"))
	st := e.Stats()
	assert.Equal(t, "brief", st.Mode)
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, 2, st.Pending)
	assert.Empty(t, rec.Elements())
}

func TestSetModeClearsQueueWhenConfigured(t *testing.T) {
	e, _ := newTestEngine(t, Config{Mode: "still", ModeSwitchClearsQueue: true})
	e.AddContent("a b c d", "")

	require.True(t, e.SetMode("brief"))
	assert.Equal(t, 0, e.Stats().Pending)
}

func TestSetModeResetsLayoutState(t *testing.T) {
	rec := render.NewRecorder(800, 600)
	e := New(rec,
		WithConfig(Config{Mode: motion.Typewriter, SpawnInterval: MinSpawnInterval}),
		WithRand(rand.New(rand.NewPCG(3, 4))),
		WithClock(clockwork.NewFakeClock()),
	)
	t.Cleanup(e.Destroy)

	e.AddContent("alpha beta gamma", "")
	tickFor(e, 200)
	require.Equal(t, 3, e.Stats().Active)

	require.True(t, e.SetMode(motion.Matrix))
	require.True(t, e.SetMode(motion.Typewriter))

	e.AddContent("fresh", "")
	tickFor(e, 100)

	els := rec.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, "fresh", els[0].Text)
	assert.Equal(t, motion.Margin, els[0].X)
	assert.Equal(t, motion.Margin, els[0].Y)
}

func TestClearEmptiesEverything(t *testing.T) {
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval})
	e.AddContent("a b c d e", "")
	tickFor(e, 200)
	require.NotEmpty(t, rec.Elements())

	e.Clear()

	st := e.Stats()
	assert.Equal(t, 0, st.Active)
	assert.Equal(t, 0, st.Pending)
	assert.Empty(t, rec.Elements())
}

func TestClickInvokesHandler(t *testing.T) {
	var got []ClickEvent
	e, rec := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval},
		WithClickHandler(func(ev ClickEvent) { got = append(got, ev) }))
	e.AddContent("tap", "harsh_truth_social")
	tickFor(e, 100)

	els := rec.Elements()
	require.Len(t, els, 1)

	assert.True(t, e.Click(els[0].ID))
	assert.False(t, e.Click(9999))

	require.Len(t, got, 1)
	assert.Equal(t, "tap", got[0].Text)
	assert.Equal(t, "harsh_truth_social", got[0].Tag)
	assert.Equal(t, "still", got[0].Mode)
}

func TestSpawnHandler(t *testing.T) {
	var spawned []string
	e, _ := newTestEngine(t, Config{Mode: "still", SpawnInterval: MinSpawnInterval},
		WithSpawnHandler(func(ev SpawnEvent) { spawned = append(spawned, ev.Text) }))
	e.AddContent("one two", "")
	tickFor(e, 200)

	assert.Equal(t, []string{"one", "two"}, spawned)
}

func TestUnknownInitialModeFallsBack(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	e := New(rec, WithConfig(Config{Mode: "missing"}))
	t.Cleanup(e.Destroy)

	assert.Equal(t, DefaultMode, e.Stats().Mode)
	assert.Equal(t, motion.Default().Names(), e.Modes())
}

func TestStartStopLoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := status.NewRegistry()
	e, _ := newTestEngine(t, Config{Mode: "still"}, WithClock(clock), WithStatus(reg))

	e.Start()
	e.Start()
	assert.True(t, e.Stats().Running)

	clock.BlockUntil(1)
	clock.Advance(FrameInterval)
	require.Eventually(t, func() bool {
		return reg.Counter(StatTicks).Load() >= 1
	}, time.Second, time.Millisecond)

	e.Stop()
	e.Stop()
	assert.False(t, e.Stats().Running)

	e.Start()
	assert.True(t, e.Running())
	e.Stop()
	assert.False(t, e.Running())
}

func TestTokenQueue(t *testing.T) {
	q := newTokenQueue()
	_, ok := q.pop()
	assert.False(t, ok)

	for i := 0; i < 3000; i++ {
		q.push(core.Token{Text: "w"})
	}
	for i := 0; i < 2500; i++ {
		_, ok := q.pop()
		require.True(t, ok)
	}
	assert.Equal(t, 500, q.len())

	q.clear()
	assert.Equal(t, 0, q.len())
}
