package motion

import (
	"golang.org/x/text/width"
)

// Text metrics in layout pixels
const (
	FontSize   = 16.0
	CharWidth  = FontSize * 0.6
	LineHeight = FontSize * 1.5
	Margin     = 20.0
)

// EstimateWidth approximates rendered token width from its character count
// East Asian wide and fullwidth runes occupy two columns
func EstimateWidth(text string) float64 {
	units := 0
	for _, r := range text {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			units += 2
		default:
			units++
		}
	}
	return float64(units) * CharWidth
}

// textCursor lays words out left-to-right, top-to-bottom
// pass counts restarts from the top after vertical space runs out
type textCursor struct {
	x, y    float64
	started bool
	pass    int
}

func (c *textCursor) reset() {
	*c = textCursor{}
}

// place returns the position for a word of wordW and advances the cursor
func (c *textCursor) place(wordW, w, h float64) (x, y float64) {
	if !c.started {
		c.x, c.y = Margin, Margin
		c.started = true
	}
	if c.x > Margin && c.x+wordW > w-Margin {
		c.x = Margin
		c.y += LineHeight
	}
	if c.y+LineHeight > h-Margin {
		c.x, c.y = Margin, Margin
		c.pass++
	}
	x, y = c.x, c.y
	c.x += wordW + CharWidth
	return x, y
}
