package status

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Kind distinguishes how a numeric metric should be exported
type Kind uint8

const (
	KindCounter Kind = iota
	KindGauge
)

// Registry is the central metrics facade
// Writers cache pointers once; hot paths write directly to atomics
type Registry struct {
	mu     sync.RWMutex
	ints   map[string]*intEntry
	floats map[string]*AtomicFloat
	labels map[string]*AtomicString
}

type intEntry struct {
	kind Kind
	v    atomic.Int64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		ints:   make(map[string]*intEntry),
		floats: make(map[string]*AtomicFloat),
		labels: make(map[string]*AtomicString),
	}
}

// Counter returns the monotonically increasing metric for key, creating it on first use
func (r *Registry) Counter(key string) *atomic.Int64 {
	return &r.intEntry(key, KindCounter).v
}

// Gauge returns the settable metric for key, creating it on first use
func (r *Registry) Gauge(key string) *atomic.Int64 {
	return &r.intEntry(key, KindGauge).v
}

func (r *Registry) intEntry(key string, kind Kind) *intEntry {
	r.mu.RLock()
	e, ok := r.ints[key]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.ints[key]; ok {
		return e
	}
	e = &intEntry{kind: kind}
	r.ints[key] = e
	return e
}

// Float returns the float gauge for key, creating it on first use
func (r *Registry) Float(key string) *AtomicFloat {
	return getOrCreate(&r.mu, r.floats, key)
}

// Label returns the string metric for key, creating it on first use
func (r *Registry) Label(key string) *AtomicString {
	return getOrCreate(&r.mu, r.labels, key)
}

func getOrCreate[T any](mu *sync.RWMutex, m map[string]*T, key string) *T {
	mu.RLock()
	ptr, ok := m[key]
	mu.RUnlock()
	if ok {
		return ptr
	}

	mu.Lock()
	defer mu.Unlock()
	if ptr, ok := m[key]; ok {
		return ptr
	}
	ptr = new(T)
	m[key] = ptr
	return ptr
}

// IntMetric is a point-in-time integer reading
type IntMetric struct {
	Key   string
	Kind  Kind
	Value int64
}

// FloatMetric is a point-in-time float reading
type FloatMetric struct {
	Key   string
	Value float64
}

// Snapshot is a sorted copy of all metrics
type Snapshot struct {
	Ints   []IntMetric
	Floats []FloatMetric
	Labels map[string]string
}

// Snapshot reads every metric, keys sorted for deterministic output
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Ints:   make([]IntMetric, 0, len(r.ints)),
		Floats: make([]FloatMetric, 0, len(r.floats)),
		Labels: make(map[string]string, len(r.labels)),
	}
	for k, e := range r.ints {
		snap.Ints = append(snap.Ints, IntMetric{Key: k, Kind: e.kind, Value: e.v.Load()})
	}
	for k, f := range r.floats {
		snap.Floats = append(snap.Floats, FloatMetric{Key: k, Value: f.Get()})
	}
	for k, s := range r.labels {
		snap.Labels[k] = s.Load()
	}
	sort.Slice(snap.Ints, func(i, j int) bool { return snap.Ints[i].Key < snap.Ints[j].Key })
	sort.Slice(snap.Floats, func(i, j int) bool { return snap.Floats[i].Key < snap.Floats[j].Key })
	return snap
}
