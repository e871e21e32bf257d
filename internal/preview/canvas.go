package preview

import (
	"math"
	"strings"

	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/layout"
	"github.com/muurk/tourguide/internal/tour"
)

// Canvas glyphs.
const (
	GlyphEmpty     = ' '
	GlyphElement   = '·'
	GlyphHighlight = '#'
	GlyphPanel     = '▒'
)

// Canvas is a character grid scaled from viewport pixels. Terminal cells are
// roughly twice as tall as they are wide, so rows are halved.
type Canvas struct {
	cols, rows int
	sx, sy     float64
	cells      [][]rune
}

// NewCanvas creates a canvas cols wide for a width x height viewport.
func NewCanvas(cols, width, height int) *Canvas {
	if cols < 8 {
		cols = 8
	}
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	rows := int(math.Round(float64(cols) * float64(height) / float64(width) / 2))
	if rows < 4 {
		rows = 4
	}

	c := &Canvas{
		cols:  cols,
		rows:  rows,
		sx:    float64(cols) / float64(width),
		sy:    float64(rows) / float64(height),
		cells: make([][]rune, rows),
	}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(string(GlyphEmpty), cols))
	}
	return c
}

// Size returns the grid dimensions.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// At returns the glyph at column x, row y.
func (c *Canvas) At(x, y int) rune {
	if y < 0 || y >= c.rows || x < 0 || x >= c.cols {
		return GlyphEmpty
	}
	return c.cells[y][x]
}

// cellRect maps a viewport rect to inclusive cell bounds, clipped to the grid.
func (c *Canvas) cellRect(r geom.Rect) (x0, y0, x1, y1 int, ok bool) {
	if !r.Finite() || r.Right() <= 0 || r.Bottom() <= 0 {
		return 0, 0, 0, 0, false
	}
	x0 = int(math.Floor(r.Left * c.sx))
	y0 = int(math.Floor(r.Top * c.sy))
	x1 = int(math.Ceil(r.Right()*c.sx)) - 1
	y1 = int(math.Ceil(r.Bottom()*c.sy)) - 1
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.cols-1), min(y1, c.rows-1)
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

// Outline draws the border of r.
func (c *Canvas) Outline(r geom.Rect, g rune) {
	x0, y0, x1, y1, ok := c.cellRect(r)
	if !ok {
		return
	}
	for x := x0; x <= x1; x++ {
		c.cells[y0][x] = g
		c.cells[y1][x] = g
	}
	for y := y0; y <= y1; y++ {
		c.cells[y][x0] = g
		c.cells[y][x1] = g
	}
}

// Fill paints every cell of r.
func (c *Canvas) Fill(r geom.Rect, g rune) {
	x0, y0, x1, y1, ok := c.cellRect(r)
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.cells[y][x] = g
		}
	}
}

// Label writes s inside r on its first inner row, truncated to fit.
func (c *Canvas) Label(r geom.Rect, s string) {
	x0, y0, x1, y1, ok := c.cellRect(r)
	if !ok || s == "" {
		return
	}
	row := y0
	if y1 > y0 {
		row = y0 + 1
	}
	start, end := x0+1, x1-1
	if x1-x0 < 2 {
		start, end = x0, x1
	}
	for i, ch := range []rune(s) {
		if start+i > end {
			break
		}
		c.cells[row][start+i] = ch
	}
}

// String renders the grid, one line per row.
func (c *Canvas) String() string {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// Draw renders the visible elements, the highlight ring and the panel for a
// frame. Element rects are viewport-relative; frame rects are page
// coordinates and are shifted by the frame's scroll offset.
func Draw(cols int, width, height int, elements []layout.Element, f *tour.Frame) *Canvas {
	c := NewCanvas(cols, width, height)
	for _, el := range elements {
		c.Outline(el.Rect, GlyphElement)
		label := el.Label
		if label == "" {
			label = el.Key
		}
		c.Label(el.Rect, label)
	}
	if f == nil {
		return c
	}

	toViewport := geom.Point{X: -f.Scroll.X, Y: -f.Scroll.Y}
	if f.Highlight != nil {
		c.Outline(f.Highlight.Translate(toViewport), GlyphHighlight)
	}
	if !f.Pending {
		panel := f.Placement.Rect().Translate(toViewport)
		c.Fill(panel, GlyphPanel)
		c.Label(panel, f.Step.Title)
	}
	return c
}
