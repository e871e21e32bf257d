package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/preview"
	"github.com/muurk/tourguide/internal/viewport"
)

// PlacementBox shows a computed placement and a sketch of the viewport.
type PlacementBox struct {
	Result   placement.Result
	Viewport viewport.Snapshot
	Scroll   geom.Point
	Target   *geom.Rect // viewport-relative, nil when there is none
	Width    int
}

// NewPlacementBox creates a placement box sized to the terminal.
func NewPlacementBox(res placement.Result, snap viewport.Snapshot, scroll geom.Point, target *geom.Rect) *PlacementBox {
	return &PlacementBox{
		Result:   res,
		Viewport: snap,
		Scroll:   scroll,
		Target:   target,
		Width:    GetTerminalWidth(),
	}
}

// Details returns the placement fields in display order.
func (p *PlacementBox) Details() []Param {
	r := p.Result
	side := string(r.Side)
	if side == "" {
		side = "-"
	}
	if r.Flipped {
		side += " (flipped)"
	}
	return []Param{
		{Key: "Viewport", Value: p.Viewport.String()},
		{Key: "Layout", Value: string(r.Layout)},
		{Key: "Anchor", Value: string(r.Anchor)},
		{Key: "Side", Value: side},
		{Key: "Top", Value: fmt.Sprintf("%.0f", r.Top)},
		{Key: "Left", Value: fmt.Sprintf("%.0f", r.Left)},
		{Key: "Width", Value: fmt.Sprintf("%.0f", r.Width)},
		{Key: "Max height", Value: fmt.Sprintf("%.0f", r.MaxHeight)},
	}
}

// Sketch draws the viewport with the target ring and the panel.
func (p *PlacementBox) Sketch(cols int) string {
	c := preview.NewCanvas(cols, p.Viewport.Width, p.Viewport.Height)
	if p.Target != nil {
		c.Outline(*p.Target, preview.GlyphHighlight)
	}
	panel := p.Result.Rect().Translate(geom.Point{X: -p.Scroll.X, Y: -p.Scroll.Y})
	c.Fill(panel, preview.GlyphPanel)
	return c.String()
}

// Render returns the styled placement box as a string
func (p *PlacementBox) Render() string {
	width := clampWidth(p.Width)

	lines := []string{""}
	for _, d := range p.Details() {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	lines = append(lines, "", ResultKeyStyle.Render("   CSS:"))
	lines = append(lines, HeaderParamValueStyle.Width(width-12).PaddingLeft(3).Render(p.Result.Style.CSS()))
	lines = append(lines, "", SketchStyle.MarginLeft(3).Render(p.Sketch(min(width-14, 60))), "")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (p *PlacementBox) String() string {
	return p.Render()
}
