// Package render defines the engine's egress contract and its hosts
package render

import (
	"sort"
	"sync"
)

// State is the visual state of one element for a frame
// Coordinates are layout pixels from the viewport's top-left
type State struct {
	ID       uint64  `json:"id"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Opacity  float64 `json:"opacity"`
	Size     float64 `json:"size"`
	Tag      string  `json:"tag,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Layer    int     `json:"layer,omitempty"`
}

// Renderer receives element updates from the engine
// Remove is only called for ids previously drawn
type Renderer interface {
	Viewport() (width, height float64)
	Draw(s State)
	Remove(id uint64)
}

// Presenter is implemented by renderers that flush once per frame
type Presenter interface {
	Present()
}

// Recorder is an in-memory renderer with a fixed viewport
type Recorder struct {
	mu       sync.Mutex
	width    float64
	height   float64
	elements map[uint64]State
	draws    int
	removes  int
	presents int
}

// NewRecorder creates a recorder with the given viewport
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height, elements: make(map[uint64]State)}
}

func (r *Recorder) Viewport() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Resize changes the reported viewport
func (r *Recorder) Resize(width, height float64) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
}

func (r *Recorder) Draw(s State) {
	r.mu.Lock()
	r.elements[s.ID] = s
	r.draws++
	r.mu.Unlock()
}

func (r *Recorder) Remove(id uint64) {
	r.mu.Lock()
	delete(r.elements, id)
	r.removes++
	r.mu.Unlock()
}

func (r *Recorder) Present() {
	r.mu.Lock()
	r.presents++
	r.mu.Unlock()
}

// Elements returns the live elements ordered by id
func (r *Recorder) Elements() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.elements))
	for _, s := range r.elements {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Element returns the live element with id
func (r *Recorder) Element(id uint64) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.elements[id]
	return s, ok
}

// Counts returns the number of draw, remove and present calls seen
func (r *Recorder) Counts() (draws, removes, presents int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws, r.removes, r.presents
}
