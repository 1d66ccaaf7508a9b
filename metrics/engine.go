package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/firehose/feed"
	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/status"
)

type valueKind uint8

const (
	kindCounter valueKind = iota
	kindGauge
	kindFloat
)

// statusMetric binds a status registry key to a Prometheus descriptor
type statusMetric struct {
	key  string
	kind valueKind
	desc *prometheus.Desc
}

// Status registry keys exported by EngineCollector
var statusMetrics = []struct {
	key, subsystem, name, help string
	kind                       valueKind
}{
	{flow.StatTicks, "engine", "ticks_total", "Total frames processed.", kindCounter},
	{flow.StatSpawned, "engine", "spawned_total", "Total particles spawned.", kindCounter},
	{flow.StatRetired, "engine", "retired_total", "Total particles retired or cleared.", kindCounter},
	{flow.StatClicks, "engine", "clicks_total", "Total accepted particle clicks.", kindCounter},
	{flow.StatActive, "engine", "active_particles", "Live particles.", kindGauge},
	{flow.StatPending, "engine", "pending_tokens", "Tokens waiting in the queue.", kindGauge},
	{flow.StatTickTime, "engine", "tick_duration_microseconds", "Duration of the last frame.", kindFloat},
	{flow.StatSpeed, "engine", "speed_multiplier", "Global speed multiplier.", kindFloat},
	{feed.StatDelivered, "feed", "entries_delivered_total", "Entries pushed into the engine.", kindCounter},
	{feed.StatErrors, "feed", "poll_errors_total", "Failed store polls.", kindCounter},
}

// EngineCollector exposes the status registry as Prometheus metrics
type EngineCollector struct {
	src      *status.Registry
	metrics  []statusMetric
	modeDesc *prometheus.Desc
}

// NewEngineCollector creates and registers a collector over src
func NewEngineCollector(reg prometheus.Registerer, src *status.Registry) *EngineCollector {
	c := &EngineCollector{
		src: src,
		modeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "engine", "mode_info"),
			"Active motion mode.",
			[]string{"mode"}, nil,
		),
	}
	for _, m := range statusMetrics {
		c.metrics = append(c.metrics, statusMetric{
			key:  m.key,
			kind: m.kind,
			desc: prometheus.NewDesc(prometheus.BuildFQName(namespace, m.subsystem, m.name), m.help, nil, nil),
		})
	}
	reg.MustRegister(c)
	return c
}

func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
	ch <- c.modeDesc
}

func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.metrics {
		switch m.kind {
		case kindCounter:
			ch <- prometheus.MustNewConstMetric(m.desc, prometheus.CounterValue, float64(c.src.Counter(m.key).Load()))
		case kindGauge:
			ch <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, float64(c.src.Gauge(m.key).Load()))
		case kindFloat:
			ch <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, c.src.Float(m.key).Get())
		}
	}
	if mode := c.src.Label(flow.StatMode).Load(); mode != "" {
		ch <- prometheus.MustNewConstMetric(c.modeDesc, prometheus.GaugeValue, 1, mode)
	}
}
