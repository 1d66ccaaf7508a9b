package feed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lixenwraith/firehose/status"
)

// Status registry keys
const (
	StatDelivered = "feed.delivered"
	StatErrors    = "feed.errors"
)

// Sink receives entry text, typically a flow.Engine
type Sink interface {
	AddContent(text, tag string) int
	Pending() int
}

// PollerConfig tunes polling
type PollerConfig struct {
	Interval time.Duration
	// BatchSize bounds entries read per poll
	BatchSize int
	// LowWatermark pauses delivery while the sink holds at least this many tokens, zero disables
	LowWatermark int
	// AfterID starts delivery after this entry id
	AfterID int64
}

// Poller moves new store entries into a sink
type Poller struct {
	store  Store
	sink   Sink
	cfg    PollerConfig
	clock  clockwork.Clock
	log    *zap.SugaredLogger
	cursor atomic.Int64

	statDelivered *atomic.Int64
	statErrors    *atomic.Int64
}

// NewPoller creates a poller, nil clock, logger or registry take defaults
func NewPoller(store Store, sink Sink, cfg PollerConfig, clock clockwork.Clock, log *zap.SugaredLogger, reg *status.Registry) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	p := &Poller{
		store:         store,
		sink:          sink,
		cfg:           cfg,
		clock:         clock,
		log:           log,
		statDelivered: reg.Counter(StatDelivered),
		statErrors:    reg.Counter(StatErrors),
	}
	p.cursor.Store(cfg.AfterID)
	return p
}

// Cursor returns the id of the last delivered entry
func (p *Poller) Cursor() int64 {
	return p.cursor.Load()
}

// Run polls immediately and then every interval until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.pollLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			p.pollLogged(ctx)
		}
	}
}

func (p *Poller) pollLogged(ctx context.Context) {
	n, err := p.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.statErrors.Add(1)
			p.log.Warnw("feed poll failed", "error", err)
		}
		return
	}
	if n > 0 {
		p.log.Debugw("feed delivered entries", "count", n, "cursor", p.Cursor())
	}
}

// Poll delivers one batch, stopping early once the sink reaches the low watermark
func (p *Poller) Poll(ctx context.Context) (int, error) {
	if p.saturated() {
		return 0, nil
	}

	entries, err := p.store.After(ctx, p.cursor.Load(), p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, e := range entries {
		if p.saturated() {
			break
		}
		p.sink.AddContent(e.Text, e.Tag())
		p.cursor.Store(e.ID)
		delivered++
	}
	p.statDelivered.Add(int64(delivered))
	return delivered, nil
}

func (p *Poller) saturated() bool {
	return p.cfg.LowWatermark > 0 && p.sink.Pending() >= p.cfg.LowWatermark
}
