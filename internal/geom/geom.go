// Package geom holds the small set of rectangle and point types shared by the
// tour engine. All values are CSS pixels.
package geom

import (
	"fmt"
	"math"
)

// Point is an x/y pair, used for scroll offsets.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned box. Whether it is viewport-relative or page-relative
// depends on the caller; the engine documents which at each use.
type Rect struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Area returns Width*Height, or 0 for degenerate boxes.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the box has no area.
func (r Rect) Empty() bool { return r.Area() == 0 }

// Finite reports whether every field is a real number.
func (r Rect) Finite() bool {
	for _, v := range []float64{r.Top, r.Left, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Within reports whether r lies completely inside a w×h box anchored at 0,0.
func (r Rect) Within(w, h float64) bool {
	return r.Top >= 0 && r.Left >= 0 && r.Bottom() <= h && r.Right() <= w
}

// Translate returns r shifted by p.
func (r Rect) Translate(p Point) Rect {
	r.Left += p.X
	r.Top += p.Y
	return r
}

// Inset grows (positive d) or shrinks (negative d) the box on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{Top: r.Top - d, Left: r.Left - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

func (r Rect) String() string {
	return fmt.Sprintf("{top:%.0f left:%.0f w:%.0f h:%.0f}", r.Top, r.Left, r.Width, r.Height)
}

// Clamp limits v to [lo, hi]. When hi < lo the lower bound wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
