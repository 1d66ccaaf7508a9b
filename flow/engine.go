// Package flow turns a stream of text into animated word particles
//
// The engine owns a FIFO of pending tokens, the live particle set and the active motion
// strategy. One tick runs at a time under the engine mutex; producers only touch the
// token queue. Hosts either call Start to run the built-in frame loop or drive Tick
// with their own pacing.
package flow

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/motion"
	"github.com/lixenwraith/firehose/render"
	"github.com/lixenwraith/firehose/status"
	"github.com/lixenwraith/firehose/vmath"
)

// Status registry keys
const (
	StatTicks    = "engine.ticks"
	StatSpawned  = "engine.spawned"
	StatRetired  = "engine.retired"
	StatClicks   = "engine.clicks"
	StatActive   = "engine.active"
	StatPending  = "engine.pending"
	StatTickTime = "engine.tick_us"
	StatMode     = "engine.mode"
	StatSpeed    = "engine.speed"
)

// Stats is a point-in-time engine summary
type Stats struct {
	Active        int           `json:"active"`
	Pending       int           `json:"pending"`
	Mode          string        `json:"mode"`
	Running       bool          `json:"running"`
	Speed         float64       `json:"speed"`
	SpawnInterval time.Duration `json:"spawn_interval"`
	Capacity      int           `json:"capacity"`
}

// ClickEvent describes a clicked particle
type ClickEvent struct {
	ID   uint64
	Text string
	Tag  string
	Mode string
}

// SpawnEvent describes a freshly spawned particle
type SpawnEvent struct {
	ID   uint64
	Text string
	Tag  string
	Mode string
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig sets the initial tunables, values are normalized
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg.Normalized() }
}

// WithRegistry replaces the strategy registry
func WithRegistry(r *motion.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithRand sets the random source shared by strategies
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets the time source of the frame loop
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithStatus publishes engine metrics into reg
func WithStatus(reg *status.Registry) Option {
	return func(e *Engine) { e.statusReg = reg }
}

// WithClickHandler is called outside the engine lock for every accepted click
func WithClickHandler(fn func(ClickEvent)) Option {
	return func(e *Engine) { e.onClick = fn }
}

// WithSpawnHandler is called during the tick for every spawned particle
// The handler must not call back into the engine
func WithSpawnHandler(fn func(SpawnEvent)) Option {
	return func(e *Engine) { e.onSpawn = fn }
}

// Engine is the word-flow engine
type Engine struct {
	mu        sync.Mutex
	renderer  render.Renderer
	presenter render.Presenter
	registry  *motion.Registry
	rng       *rand.Rand
	clock     clockwork.Clock
	log       *zap.SugaredLogger
	statusReg *status.Registry

	cfg        Config
	strategy   motion.Strategy
	particles  []*core.Particle
	byID       map[uint64]*core.Particle
	dead       []*core.Particle
	nextID     uint64
	sinceSpawn float64

	queue *tokenQueue

	onClick func(ClickEvent)
	onSpawn func(SpawnEvent)

	// Loop control, runMu serializes Start and Stop
	runMu   sync.Mutex
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Cached metric pointers
	statTicks    *atomic.Int64
	statSpawned  *atomic.Int64
	statRetired  *atomic.Int64
	statClicks   *atomic.Int64
	statActive   *atomic.Int64
	statPending  *atomic.Int64
	statTickTime *status.AtomicFloat
	statMode     *status.AtomicString
	statSpeed    *status.AtomicFloat
}

// New creates a stopped engine drawing to renderer
func New(renderer render.Renderer, opts ...Option) *Engine {
	e := &Engine{
		renderer: renderer,
		cfg:      DefaultConfig(),
		byID:     make(map[uint64]*core.Particle),
		queue:    newTokenQueue(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = motion.Default()
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	if e.statusReg == nil {
		e.statusReg = status.NewRegistry()
	}
	if e.rng == nil {
		now := uint64(e.clock.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(now, now^0x9e3779b97f4a7c15))
	}
	if p, ok := renderer.(render.Presenter); ok {
		e.presenter = p
	}

	e.statTicks = e.statusReg.Counter(StatTicks)
	e.statSpawned = e.statusReg.Counter(StatSpawned)
	e.statRetired = e.statusReg.Counter(StatRetired)
	e.statClicks = e.statusReg.Counter(StatClicks)
	e.statActive = e.statusReg.Gauge(StatActive)
	e.statPending = e.statusReg.Gauge(StatPending)
	e.statTickTime = e.statusReg.Float(StatTickTime)
	e.statMode = e.statusReg.Label(StatMode)
	e.statSpeed = e.statusReg.Float(StatSpeed)

	if !e.registry.Has(e.cfg.Mode) {
		e.log.Warnw("unknown mode, using default", "mode", e.cfg.Mode, "default", DefaultMode)
		e.cfg.Mode = DefaultMode
		if !e.registry.Has(DefaultMode) {
			if names := e.registry.Names(); len(names) > 0 {
				e.cfg.Mode = names[0]
			}
		}
	}
	e.strategy = e.newStrategy(e.cfg.Mode)
	e.statMode.Store(e.cfg.Mode)
	e.statSpeed.Set(e.cfg.Speed)

	return e
}

func (e *Engine) newStrategy(name string) motion.Strategy {
	s, ok := e.registry.New(name, motion.Env{Rand: e.rng, Now: e.clock.Now})
	if !ok {
		// Registry without the requested mode, particles never survive
		s = motion.Strategy{
			Name:       name,
			Reset:      func() {},
			Initialize: func(*core.Particle, float64, float64) {},
			Update:     func(*core.Particle, float64, float64, float64, float64) bool { return false },
		}
	}
	s.Reset()
	return s
}

// Modes lists the available strategy names
func (e *Engine) Modes() []string {
	return e.registry.Names()
}

// AddContent splits text into words and enqueues them in order
func (e *Engine) AddContent(text, tag string) int {
	tokens := Tokenize(text, tag)
	e.queue.push(tokens...)
	e.statPending.Store(int64(e.queue.len()))
	return len(tokens)
}

// Start launches the frame loop, no-op when running
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.stopCh = make(chan struct{})
	ticker := e.clock.NewTicker(FrameInterval)
	e.wg.Add(1)
	stop := e.stopCh
	core.Go(func() { e.loop(ticker, stop) })
	e.log.Infow("engine started", "mode", e.Mode())
}

// Stop halts the frame loop and waits for it, no-op when stopped
// Must not be called from a spawn handler
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.stopCh)
	e.wg.Wait()
	e.log.Infow("engine stopped")
}

// Running reports whether the frame loop is active
func (e *Engine) Running() bool {
	return e.running.Load()
}

func (e *Engine) loop(ticker clockwork.Ticker, stop <-chan struct{}) {
	defer e.wg.Done()
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.Chan():
			delta := FrameInterval
			if !last.IsZero() {
				delta = min(max(now.Sub(last), 0), MaxFrameDelta)
			}
			last = now
			e.Tick(float64(delta) / float64(time.Millisecond))
		}
	}
}

// Tick advances the simulation by dtMs milliseconds
func (e *Engine) Tick(dtMs float64) {
	if dtMs < 0 || dtMs != dtMs {
		dtMs = 0
	}
	started := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	width, height := e.renderer.Viewport()

	e.sinceSpawn += dtMs
	if e.sinceSpawn > float64(e.cfg.SpawnInterval)/float64(time.Millisecond) {
		if len(e.particles) < e.cfg.Capacity {
			if tok, ok := e.queue.pop(); ok {
				e.spawn(tok, width, height)
			}
		}
		e.sinceSpawn = 0
	}

	speed := e.cfg.Speed
	for _, p := range e.particles {
		p.Age += dtMs
		if !e.strategy.Update(p, dtMs, speed, width, height) {
			e.dead = append(e.dead, p)
			continue
		}
		e.draw(p)
	}

	if len(e.dead) > 0 {
		e.removeDead()
	}

	if e.presenter != nil {
		e.presenter.Present()
	}

	e.statTicks.Add(1)
	e.statActive.Store(int64(len(e.particles)))
	e.statPending.Store(int64(e.queue.len()))
	e.statTickTime.Set(float64(time.Since(started).Microseconds()))
}

func (e *Engine) spawn(tok core.Token, width, height float64) {
	e.nextID++
	p := core.NewParticle(e.nextID, tok.Text, tok.Tag)
	e.strategy.Initialize(p, width, height)
	e.draw(p)
	e.particles = append(e.particles, p)
	e.byID[p.ID] = p
	e.statSpawned.Add(1)

	if e.onSpawn != nil {
		e.onSpawn(SpawnEvent{ID: p.ID, Text: p.Text, Tag: p.Tag, Mode: e.cfg.Mode})
	}
}

// removeDead drops particles marked during the update pass
func (e *Engine) removeDead() {
	for _, p := range e.dead {
		delete(e.byID, p.ID)
		e.renderer.Remove(p.ID)
	}
	e.statRetired.Add(int64(len(e.dead)))
	clear(e.dead)
	e.dead = e.dead[:0]

	live := e.particles[:0]
	for _, p := range e.particles {
		if _, ok := e.byID[p.ID]; ok {
			live = append(live, p)
		}
	}
	clear(e.particles[len(live):])
	e.particles = live
}

func (e *Engine) draw(p *core.Particle) {
	e.renderer.Draw(render.State{
		ID:       p.ID,
		Text:     p.Text,
		X:        p.Pos.X,
		Y:        p.Pos.Y,
		Opacity:  vmath.Clamp01(p.Opacity),
		Size:     p.Size,
		Tag:      p.Tag,
		Rotation: p.Rotation,
		Layer:    p.Scratch.Pass,
	})
}

// removeAllLocked removes every live particle and its element
func (e *Engine) removeAllLocked() {
	for _, p := range e.particles {
		e.renderer.Remove(p.ID)
	}
	e.statRetired.Add(int64(len(e.particles)))
	clear(e.particles)
	e.particles = e.particles[:0]
	clear(e.byID)
	e.sinceSpawn = 0
	e.statActive.Store(0)
}

// Clear removes all particles, empties the queue and resets the strategy
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeAllLocked()
	e.queue.clear()
	e.strategy.Reset()
	e.statPending.Store(0)
	if e.presenter != nil {
		e.presenter.Present()
	}
}

// SetMode switches to the named strategy with fresh layout state
// Unknown names are ignored and return false
func (e *Engine) SetMode(name string) bool {
	if !e.registry.Has(name) {
		e.log.Debugw("ignoring unknown mode", "mode", name)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeAllLocked()
	e.strategy = e.newStrategy(name)
	e.cfg.Mode = name
	if e.cfg.ModeSwitchClearsQueue {
		e.queue.clear()
		e.statPending.Store(0)
	}
	e.statMode.Store(name)
	if e.presenter != nil {
		e.presenter.Present()
	}
	e.log.Infow("mode changed", "mode", name)
	return true
}

// Mode returns the active strategy name
func (e *Engine) Mode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Mode
}

// SetSpeed sets the global speed multiplier, clamped to [MinSpeed, MaxSpeed]
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.cfg.Speed = clampSpeed(speed)
	e.statSpeed.Set(e.cfg.Speed)
	e.mu.Unlock()
}

// SetSpawnRate sets the spawn interval in milliseconds
func (e *Engine) SetSpawnRate(ms int) {
	ms = vmath.ClampInt(ms, int(MinSpawnInterval.Milliseconds()), int(MaxSpawnInterval.Milliseconds()))
	e.SetSpawnInterval(time.Duration(ms) * time.Millisecond)
}

// SetSpawnInterval sets the spawn interval, clamped to [MinSpawnInterval, MaxSpawnInterval]
func (e *Engine) SetSpawnInterval(d time.Duration) {
	e.mu.Lock()
	e.cfg.SpawnInterval = clampInterval(d)
	e.mu.Unlock()
}

// SetMaxWords sets the live particle capacity
// Lowering it never evicts, spawning pauses until natural retirement catches up
func (e *Engine) SetMaxWords(n int) {
	e.mu.Lock()
	e.cfg.Capacity = clampCapacity(n)
	e.mu.Unlock()
}

// Config returns the current tunables
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Stats returns the current engine summary
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Active:        len(e.particles),
		Pending:       e.queue.len(),
		Mode:          e.cfg.Mode,
		Running:       e.running.Load(),
		Speed:         e.cfg.Speed,
		SpawnInterval: e.cfg.SpawnInterval,
		Capacity:      e.cfg.Capacity,
	}
}

// Pending returns the queue depth without taking the engine lock
func (e *Engine) Pending() int {
	return e.queue.len()
}

// Click reports a renderer click on element id
// Returns false when the particle is no longer live
func (e *Engine) Click(id uint64) bool {
	e.mu.Lock()
	p, ok := e.byID[id]
	var ev ClickEvent
	if ok {
		ev = ClickEvent{ID: p.ID, Text: p.Text, Tag: p.Tag, Mode: e.cfg.Mode}
	}
	e.mu.Unlock()

	if !ok {
		return false
	}
	e.statClicks.Add(1)
	e.log.Debugw("particle clicked", "id", ev.ID, "text", ev.Text, "tag", ev.Tag)
	if e.onClick != nil {
		e.onClick(ev)
	}
	return true
}

// Destroy stops the loop and removes everything
func (e *Engine) Destroy() {
	e.Stop()
	e.Clear()
}
