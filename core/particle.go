package core

// Vec2 is a point or direction in layout-pixel space
type Vec2 struct {
	X, Y float64
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v * f
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Scratch holds per-strategy private slots
// Slot meaning is owned by the active strategy, nothing is shared across strategies
type Scratch struct {
	AnchorX float64
	AnchorY float64
	Phase   float64
	Radius  float64
	Speed   float64
	Extra   float64
	Column  int
	Pass    int
}

// Particle is one animated token owned by the flow engine
type Particle struct {
	ID   uint64
	Text string
	Tag  string

	Pos Vec2
	Vel Vec2

	// Opacity is [0,1]; engine clamps before each draw
	Opacity float64
	// Age is milliseconds since spawn, only ever incremented by the engine
	Age float64

	Size     float64
	Rotation float64

	Scratch Scratch
}

// NewParticle allocates a particle with numeric fields at their defaults
func NewParticle(id uint64, text, tag string) *Particle {
	return &Particle{
		ID:   id,
		Text: text,
		Tag:  tag,
		Size: 1,
	}
}

// Token is a queued unit of text awaiting a particle
type Token struct {
	Text string
	Tag  string
}
