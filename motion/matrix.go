package motion

import (
	"math"

	"github.com/lixenwraith/firehose/core"
	"github.com/lixenwraith/firehose/vmath"
)

const (
	matrixColumnWidth = 110.0
	matrixFadeZone    = 0.2 // bottom fraction of the viewport
	matrixFadeInMs    = 200
)

// matrix slots: Column index, Speed px/ms
// fill tracks live particles per column so new words go to the emptiest column
type matrix struct {
	env  Env
	fill []int
}

func newMatrix(env Env) Strategy {
	s := &matrix{env: env}
	return Strategy{Reset: s.reset, Initialize: s.initialize, Update: s.update}
}

func (s *matrix) reset() {
	s.fill = s.fill[:0]
}

func matrixColumns(w float64) int {
	return max(1, int(math.Floor(w/matrixColumnWidth)))
}

// sync resizes the fill table to the current column count
func (s *matrix) sync(w float64) {
	cols := matrixColumns(w)
	for len(s.fill) < cols {
		s.fill = append(s.fill, 0)
	}
	if len(s.fill) > cols {
		s.fill = s.fill[:cols]
	}
}

func (s *matrix) pickColumn() int {
	best := s.fill[0]
	for _, f := range s.fill {
		best = min(best, f)
	}
	candidates := make([]int, 0, len(s.fill))
	for i, f := range s.fill {
		if f == best {
			candidates = append(candidates, i)
		}
	}
	return candidates[s.env.Rand.IntN(len(candidates))]
}

func (s *matrix) initialize(p *core.Particle, w, h float64) {
	s.sync(w)
	col := s.pickColumn()
	stacked := s.fill[col]
	s.fill[col]++

	p.Scratch.Column = col
	p.Scratch.Speed = between(s.env.Rand, 0.08, 0.16)
	p.Pos.X = float64(col) * matrixColumnWidth
	p.Pos.Y = -LineHeight * float64(stacked+1)
	p.Vel = core.Vec2{Y: p.Scratch.Speed}
	p.Opacity = 0
}

func (s *matrix) update(p *core.Particle, dt, speed, w, h float64) bool {
	cols := matrixColumns(w)
	col := vmath.ClampInt(p.Scratch.Column, 0, cols-1)
	p.Pos.X = float64(col) * matrixColumnWidth
	p.Pos.Y += p.Scratch.Speed * speed * dt

	fadeStart := h * (1 - matrixFadeZone)
	if p.Pos.Y > fadeStart {
		remaining := vmath.Clamp01((h - p.Pos.Y) / (h * matrixFadeZone))
		p.Opacity = math.Min(p.Opacity, remaining)
	} else {
		p.Opacity = vmath.Approach(p.Opacity, 1, dt/matrixFadeInMs)
	}

	if p.Pos.Y >= h || (p.Pos.Y > fadeStart && p.Opacity <= 0) {
		s.release(p.Scratch.Column)
		return false
	}
	return true
}

func (s *matrix) release(col int) {
	if col >= 0 && col < len(s.fill) && s.fill[col] > 0 {
		s.fill[col]--
	}
}
