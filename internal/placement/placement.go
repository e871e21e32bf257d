// Package placement computes where the tour tooltip goes.
//
// Place is a pure function: the same Input always yields the same Result, and
// nothing is cached between calls. The result is recomputed from scratch on
// every input change so rounding never accumulates.
//
// Two strategies exist. Viewports narrower than the desktop breakpoint, steps
// with a fixed-bottom anchor policy and steps without a resolved target all
// use a bottom-anchored, horizontally centered panel. Desktop steps with a
// target place the panel on the requested side of the target, flip when that
// side lacks room, and finally clamp the panel into the viewport.
package placement

import (
	"fmt"
	"math"
	"strconv"

	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/viewport"
)

// Side is the requested position of the tooltip relative to its target.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideCenter Side = "center"
)

// ParseSide converts a definition value to a Side. Empty means bottom.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case "":
		return SideBottom, nil
	case SideTop, SideBottom, SideLeft, SideRight, SideCenter:
		return Side(s), nil
	default:
		return "", fmt.Errorf("invalid side %q (want top, bottom, left, right or center)", s)
	}
}

// Layout names the strategy that produced a Result.
type Layout string

const (
	LayoutBottomAnchored Layout = "bottom-anchored"
	LayoutSide           Layout = "side"
	LayoutCentered       Layout = "centered"
	LayoutFallback       Layout = "fallback"
)

// Anchor is the origin the tooltip is positioned from.
type Anchor string

const (
	AnchorBottomCenter   Anchor = "bottom-center"
	AnchorTarget         Anchor = "target"
	AnchorViewportCenter Anchor = "viewport-center"
)

// Config holds the layout budget. The tooltip height is a fixed estimate; it
// is never measured, since measuring would require rendering before placing.
type Config struct {
	SmallMobileMargin float64
	MobileMargin      float64
	TabletMargin      float64
	DesktopMargin     float64

	// Spacing is the gap between target and tooltip.
	Spacing float64
	// TooltipWidth is the desktop panel width.
	TooltipWidth float64

	HeaderHeight    float64
	ContentHeight   float64
	ButtonRowHeight float64
}

// DefaultConfig returns the stock layout budget.
func DefaultConfig() Config {
	return Config{
		SmallMobileMargin: 10,
		MobileMargin:      15,
		TabletMargin:      20,
		DesktopMargin:     20,
		Spacing:           16,
		TooltipWidth:      360,
		HeaderHeight:      56,
		ContentHeight:     140,
		ButtonRowHeight:   64,
	}
}

// EstimatedHeight is the tooltip height budget.
func (c Config) EstimatedHeight() float64 {
	return c.HeaderHeight + c.ContentHeight + c.ButtonRowHeight
}

// Margin returns the viewport margin for a size class.
func (c Config) Margin(class viewport.SizeClass) float64 {
	switch class {
	case viewport.SmallMobile:
		return c.SmallMobileMargin
	case viewport.Mobile:
		return c.MobileMargin
	case viewport.Tablet:
		return c.TabletMargin
	default:
		return c.DesktopMargin
	}
}

// Input is everything Place depends on.
type Input struct {
	// Target is the target's bounding box relative to the viewport, or nil.
	Target   *geom.Rect
	Viewport viewport.Snapshot
	Scroll   geom.Point
	Side     Side
	// FixedBottom forces the bottom-anchored layout (menu/sidebar steps).
	FixedBottom bool
}

// Result is an absolute rectangle in page coordinates plus the CSS that
// renders it. Top+MaxHeight and Left+Width never leave the viewport.
type Result struct {
	Top       float64 `json:"top"`
	Left      float64 `json:"left"`
	Width     float64 `json:"width"`
	MaxHeight float64 `json:"max_height"`

	Layout  Layout `json:"layout"`
	Anchor  Anchor `json:"anchor"`
	Side    Side   `json:"side,omitempty"`
	Flipped bool   `json:"flipped,omitempty"`

	Style Style `json:"style"`
}

// Rect returns the result as a page-coordinate rectangle.
func (r Result) Rect() geom.Rect {
	return geom.Rect{Top: r.Top, Left: r.Left, Width: r.Width, Height: r.MaxHeight}
}

// Place computes a Result with the default configuration.
func Place(in Input) Result {
	return DefaultConfig().Place(in)
}

// Place computes a Result for the input.
func (c Config) Place(in Input) Result {
	w := float64(in.Viewport.Width)
	h := float64(in.Viewport.Height)
	scroll := in.Scroll
	if !finite(scroll.X) {
		scroll.X = 0
	}
	if !finite(scroll.Y) {
		scroll.Y = 0
	}

	if w <= 0 || h <= 0 {
		return Result{
			Top:    scroll.Y,
			Left:   scroll.X,
			Layout: LayoutFallback,
			Anchor: AnchorViewportCenter,
			Style:  absoluteStyle(scroll.Y, scroll.X, 0, 0),
		}
	}

	class := viewport.ClassFor(in.Viewport.Width)
	m := c.Margin(class)

	if in.Target != nil && !validTarget(*in.Target) {
		r := c.centered(w, h, m, scroll)
		r.Layout = LayoutFallback
		return r
	}

	if class != viewport.Desktop || in.FixedBottom || in.Target == nil {
		return c.bottomAnchored(w, h, m, scroll)
	}

	return c.side(*in.Target, in.Side, w, h, m, scroll)
}

// Fallback returns the safe default: a centered, viewport-clamped panel.
func (c Config) Fallback(snap viewport.Snapshot, scroll geom.Point) Result {
	w := float64(snap.Width)
	h := float64(snap.Height)
	if w <= 0 || h <= 0 {
		return c.Place(Input{Viewport: snap, Scroll: scroll})
	}
	r := c.centered(w, h, c.Margin(snap.Class), scroll)
	r.Layout = LayoutFallback
	return r
}

func (c Config) bottomAnchored(w, h, m float64, scroll geom.Point) Result {
	mx, my := math.Min(m, w/2), math.Min(m, h/2)
	width := w - 2*mx
	maxHeight := h - 2*my

	return Result{
		Top:       scroll.Y + my,
		Left:      scroll.X + mx,
		Width:     width,
		MaxHeight: maxHeight,
		Layout:    LayoutBottomAnchored,
		Anchor:    AnchorBottomCenter,
		Style: Style{
			Position:  "fixed",
			Bottom:    px(my),
			Left:      "50%",
			Transform: "translateX(-50%)",
			Width:     fmt.Sprintf("calc(100vw - %spx)", num(2*mx)),
			MaxHeight: fmt.Sprintf("calc(100vh - %spx)", num(2*my)),
		},
	}
}

func (c Config) box(w, h, m float64) (tw, th, mx, my float64) {
	mx, my = math.Min(m, w/2), math.Min(m, h/2)
	tw = math.Max(0, math.Min(c.TooltipWidth, w-2*mx))
	th = math.Max(0, math.Min(c.EstimatedHeight(), h-2*my))
	return tw, th, mx, my
}

func (c Config) centered(w, h, m float64, scroll geom.Point) Result {
	tw, th, mx, my := c.box(w, h, m)
	top := geom.Clamp((h-th)/2, my, h-th-my)
	left := geom.Clamp((w-tw)/2, mx, w-tw-mx)
	return c.finish(top, left, tw, th, scroll, LayoutCentered, AnchorViewportCenter, SideCenter, false)
}

func (c Config) side(t geom.Rect, side Side, w, h, m float64, scroll geom.Point) Result {
	tw, th, mx, my := c.box(w, h, m)
	sp := c.Spacing

	var top, left float64
	resolved := side
	flipped := false

	switch side {
	case SideBottom, "":
		resolved = SideBottom
		left = t.CenterX() - tw/2
		spaceBelow := h - t.Bottom()
		if t.CenterY() > h/2 || spaceBelow < th+sp {
			// Tie-break: when neither side fits we still take the flipped
			// side and let the clamp keep it on screen.
			top = t.Top - sp - th
			resolved, flipped = SideTop, true
		} else {
			top = t.Bottom() + sp
		}

	case SideTop:
		left = t.CenterX() - tw/2
		if t.Top < th+sp {
			top = t.Bottom() + sp
			resolved, flipped = SideBottom, true
		} else {
			top = t.Top - sp - th
		}

	case SideRight:
		top = t.CenterY() - th/2
		left = t.Right() + sp
		if left+tw > w-mx {
			left = t.Left - sp - tw
			resolved, flipped = SideLeft, true
			if left < mx {
				return c.centered(w, h, m, scroll)
			}
		}

	case SideLeft:
		top = t.CenterY() - th/2
		left = t.Left - sp - tw
		if left < mx {
			left = t.Right() + sp
			resolved, flipped = SideRight, true
			if left+tw > w-mx {
				return c.centered(w, h, m, scroll)
			}
		}

	default:
		return c.centered(w, h, m, scroll)
	}

	top = geom.Clamp(top, my, h-th-my)
	left = geom.Clamp(left, mx, w-tw-mx)
	return c.finish(top, left, tw, th, scroll, LayoutSide, AnchorTarget, resolved, flipped)
}

func (c Config) finish(top, left, tw, th float64, scroll geom.Point, layout Layout, anchor Anchor, side Side, flipped bool) Result {
	top += scroll.Y
	left += scroll.X
	return Result{
		Top:       top,
		Left:      left,
		Width:     tw,
		MaxHeight: th,
		Layout:    layout,
		Anchor:    anchor,
		Side:      side,
		Flipped:   flipped,
		Style:     absoluteStyle(top, left, tw, th),
	}
}

func validTarget(r geom.Rect) bool {
	return r.Finite() && r.Width >= 0 && r.Height >= 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}
