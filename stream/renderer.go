package stream

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/lixenwraith/firehose/render"
)

// Broadcaster delivers encoded frames
type Broadcaster interface {
	Broadcast(msg []byte)
	Count() int
}

// Renderer batches engine updates and broadcasts one frame per Present
// It reports a fixed logical viewport, clients scale it to their own size
type Renderer struct {
	mu       sync.Mutex
	out      Broadcaster
	width    float64
	height   float64
	seq      uint64
	elements map[uint64]render.State
	drawn    map[uint64]struct{}
	removed  []uint64
}

// NewRenderer creates a renderer broadcasting to out
func NewRenderer(out Broadcaster, width, height float64) *Renderer {
	return &Renderer{
		out:      out,
		width:    width,
		height:   height,
		elements: make(map[uint64]render.State),
		drawn:    make(map[uint64]struct{}),
	}
}

// SetBroadcaster attaches the destination after construction
func (r *Renderer) SetBroadcaster(out Broadcaster) {
	r.mu.Lock()
	r.out = out
	r.mu.Unlock()
}

func (r *Renderer) Viewport() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// SetViewport changes the logical viewport
func (r *Renderer) SetViewport(width, height float64) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
}

func (r *Renderer) Draw(s render.State) {
	r.mu.Lock()
	r.elements[s.ID] = s
	r.drawn[s.ID] = struct{}{}
	r.mu.Unlock()
}

func (r *Renderer) Remove(id uint64) {
	r.mu.Lock()
	delete(r.elements, id)
	delete(r.drawn, id)
	r.removed = append(r.removed, id)
	r.mu.Unlock()
}

// Present broadcasts the changes since the previous Present
// Nothing is encoded while no client is connected
func (r *Renderer) Present() {
	r.mu.Lock()
	if len(r.drawn) == 0 && len(r.removed) == 0 {
		r.mu.Unlock()
		return
	}
	r.seq++
	frame := Frame{Type: TypeFrame, Seq: r.seq, Width: r.width, Height: r.height}
	out := r.out
	listening := out != nil && out.Count() > 0
	if listening {
		frame.Draw = make([]render.State, 0, len(r.drawn))
		for id := range r.drawn {
			frame.Draw = append(frame.Draw, r.elements[id])
		}
		sort.Slice(frame.Draw, func(i, j int) bool { return frame.Draw[i].ID < frame.Draw[j].ID })
		frame.Remove = r.removed
		r.removed = nil
	} else {
		r.removed = r.removed[:0]
	}
	clear(r.drawn)
	r.mu.Unlock()

	if !listening {
		return
	}
	if data, err := json.Marshal(frame); err == nil {
		out.Broadcast(data)
	}
}

// Snapshot encodes every live element for a newly connected client
func (r *Renderer) Snapshot() []byte {
	r.mu.Lock()
	frame := Frame{Type: TypeSnapshot, Seq: r.seq, Width: r.width, Height: r.height}
	frame.Draw = make([]render.State, 0, len(r.elements))
	for _, s := range r.elements {
		frame.Draw = append(frame.Draw, s)
	}
	r.mu.Unlock()

	sort.Slice(frame.Draw, func(i, j int) bool { return frame.Draw[i].ID < frame.Draw[j].ID })
	data, err := json.Marshal(frame)
	if err != nil {
		return nil
	}
	return data
}
