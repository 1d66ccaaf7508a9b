package render

import (
	"math"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"
)

// Default layout pixels per terminal cell
const (
	DefaultCellWidth  = 10.0
	DefaultCellHeight = 20.0
)

// minVisibleOpacity hides elements that would blend into the background
const minVisibleOpacity = 0.04

// TerminalRenderer draws elements onto a tcell screen, reserving the last row for status
type TerminalRenderer struct {
	mu       sync.Mutex
	screen   tcell.Screen
	cellW    float64
	cellH    float64
	elements map[uint64]State
	status   func() string
}

// NewTerminalRenderer creates a renderer for screen
// Non-positive cell sizes fall back to the defaults
func NewTerminalRenderer(screen tcell.Screen, cellW, cellH float64) *TerminalRenderer {
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	return &TerminalRenderer{
		screen:   screen,
		cellW:    cellW,
		cellH:    cellH,
		elements: make(map[uint64]State),
	}
}

// SetStatus installs the status line provider
func (r *TerminalRenderer) SetStatus(fn func() string) {
	r.mu.Lock()
	r.status = fn
	r.mu.Unlock()
}

// Viewport reports the drawable area in layout pixels
func (r *TerminalRenderer) Viewport() (float64, float64) {
	cols, rows := r.screen.Size()
	rows-- // status line
	if rows < 1 {
		rows = 1
	}
	return float64(cols) * r.cellW, float64(rows) * r.cellH
}

func (r *TerminalRenderer) Draw(s State) {
	r.mu.Lock()
	r.elements[s.ID] = s
	r.mu.Unlock()
}

func (r *TerminalRenderer) Remove(id uint64) {
	r.mu.Lock()
	delete(r.elements, id)
	r.mu.Unlock()
}

// Present redraws the whole screen
func (r *TerminalRenderer) Present() {
	r.mu.Lock()
	ordered := r.ordered()
	status := r.status
	r.mu.Unlock()

	cols, rows := r.screen.Size()
	bgStyle := tcell.StyleDefault.Background(RGBBackground.Tcell())
	r.screen.Fill(' ', bgStyle)

	for _, s := range ordered {
		r.drawElement(s, cols, rows-1, bgStyle)
	}

	if status != nil && rows > 0 {
		r.drawStatus(status(), cols, rows-1)
	}
	r.screen.Show()
}

// ordered returns elements lowest layer first, older before newer within a layer
func (r *TerminalRenderer) ordered() []State {
	out := make([]State, 0, len(r.elements))
	for _, s := range r.elements {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *TerminalRenderer) drawElement(s State, cols, rows int, bgStyle tcell.Style) {
	if s.Opacity < minVisibleOpacity {
		return
	}
	col, row := r.cell(s.X, s.Y)
	if row < 0 || row >= rows {
		return
	}

	look := TagAppearance(s.Tag)
	fg := Blend(RGBBackground, look.Color, s.Opacity)
	style := bgStyle.Foreground(fg.Tcell()).Bold(look.Bold || s.Size > 1.2)
	if s.Layer > 0 {
		style = style.Italic(true)
	}

	x := col
	for _, ch := range s.Text {
		w := runeCells(ch)
		if x >= cols {
			break
		}
		if x >= 0 {
			r.screen.SetContent(x, row, ch, nil, style)
		}
		x += w
	}
}

func (r *TerminalRenderer) drawStatus(text string, cols, row int) {
	style := tcell.StyleDefault.Background(RGBStatusBar.Tcell()).Foreground(RGBStatusFg.Tcell())
	for x := 0; x < cols; x++ {
		r.screen.SetContent(x, row, ' ', nil, style)
	}
	x := 0
	for _, ch := range text {
		if x >= cols {
			break
		}
		r.screen.SetContent(x, row, ch, nil, style)
		x += runeCells(ch)
	}
}

// HitTest returns the topmost visible element covering the cell
func (r *TerminalRenderer) HitTest(col, row int) (uint64, bool) {
	r.mu.Lock()
	ordered := r.ordered()
	r.mu.Unlock()

	for i := len(ordered) - 1; i >= 0; i-- {
		s := ordered[i]
		if s.Opacity < minVisibleOpacity {
			continue
		}
		c, rr := r.cell(s.X, s.Y)
		if rr != row {
			continue
		}
		if col >= c && col < c+textCells(s.Text) {
			return s.ID, true
		}
	}
	return 0, false
}

// cell maps layout pixels to a screen cell
func (r *TerminalRenderer) cell(x, y float64) (int, int) {
	return int(math.Floor(x / r.cellW)), int(math.Floor(y / r.cellH))
}

func runeCells(ch rune) int {
	switch width.LookupRune(ch).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func textCells(text string) int {
	n := 0
	for _, ch := range text {
		n += runeCells(ch)
	}
	return n
}
