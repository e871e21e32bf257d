// Package layout is a host over a static page model: a document of known
// size with tagged elements at fixed page coordinates. The terminal preview
// drives tours against it, and it doubles as a deterministic host in tests.
package layout

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/host"
)

// Element is a tagged element on the page.
type Element struct {
	Key   string    `yaml:"key" json:"key"`
	Label string    `yaml:"label,omitempty" json:"label,omitempty"`
	Rect  geom.Rect `yaml:"rect" json:"rect"`
	// Fixed elements stay put when the page scrolls (position: fixed).
	Fixed bool `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	// Hidden elements are not mounted until Show is called.
	Hidden bool `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// Page is the document model.
type Page struct {
	Width    float64   `yaml:"width" json:"width"`
	Height   float64   `yaml:"height" json:"height"`
	Elements []Element `yaml:"elements" json:"elements"`
}

// Validate checks element keys and geometry.
func (p Page) Validate() error {
	if !(p.Width >= 0) || !(p.Height >= 0) {
		return fmt.Errorf("page size must be non-negative, got %vx%v", p.Width, p.Height)
	}
	for i, el := range p.Elements {
		if el.Key == "" {
			return fmt.Errorf("element %d: key is required", i+1)
		}
		if !el.Rect.Finite() || el.Rect.Width < 0 || el.Rect.Height < 0 {
			return fmt.Errorf("element %d (%s): invalid rect %v", i+1, el.Key, el.Rect)
		}
	}
	return nil
}

// Host implements host.Host over a Page. It is safe for concurrent use and
// never calls back into its caller.
type Host struct {
	mu       sync.Mutex
	page     Page
	width    int
	height   int
	scroll   geom.Point
	hidden   map[string]bool
	scrolled int
}

// NewHost creates a Host showing page in a width x height window.
func NewHost(page Page, width, height int) *Host {
	h := &Host{page: page, width: width, height: height, hidden: map[string]bool{}}
	for _, el := range page.Elements {
		if el.Hidden {
			h.hidden[el.Key] = true
		}
	}
	return h
}

// Page returns the page model.
func (h *Host) Page() Page { return h.page }

// SetViewport changes the window size and re-clamps the scroll position.
func (h *Host) SetViewport(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.scroll = h.clampLocked(h.scroll)
}

// ScrollBy scrolls by a delta, clamped to the document. Returns the new offset.
func (h *Host) ScrollBy(dx, dy float64) geom.Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scroll = h.clampLocked(geom.Point{X: h.scroll.X + dx, Y: h.scroll.Y + dy})
	return h.scroll
}

// Show mounts a hidden element.
func (h *Host) Show(key string) {
	h.mu.Lock()
	delete(h.hidden, key)
	h.mu.Unlock()
}

// Hide unmounts an element; outstanding refs to it become detached.
func (h *Host) Hide(key string) {
	h.mu.Lock()
	h.hidden[key] = true
	h.mu.Unlock()
}

// ProgrammaticScrolls counts ScrollToTop and ScrollIntoView calls.
func (h *Host) ProgrammaticScrolls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scrolled
}

// FindTargets returns mounted elements tagged key, in document order.
func (h *Host) FindTargets(key string) ([]host.Element, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []host.Element
	for i, el := range h.page.Elements {
		if el.Key != key || h.hidden[el.Key] {
			continue
		}
		out = append(out, host.Element{Ref: refFor(i), Rect: h.viewportRectLocked(el)})
	}
	return out, nil
}

// ViewportSize returns the window size.
func (h *Host) ViewportSize() (int, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height, nil
}

// Measure returns the element's viewport-relative rect.
func (h *Host) Measure(ref host.ElementRef) (geom.Rect, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	el, err := h.lookupLocked(ref)
	if err != nil {
		return geom.Rect{}, err
	}
	return h.viewportRectLocked(el), nil
}

// ScrollOffset returns the current scroll position.
func (h *Host) ScrollOffset() (geom.Point, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scroll, nil
}

// ScrollToTop jumps to the origin.
func (h *Host) ScrollToTop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolled++
	h.scroll = geom.Point{}
	return nil
}

// ScrollIntoView centers the element vertically, clamped to the document.
func (h *Host) ScrollIntoView(ref host.ElementRef) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	el, err := h.lookupLocked(ref)
	if err != nil {
		return err
	}
	h.scrolled++
	if el.Fixed {
		return nil
	}
	h.scroll = h.clampLocked(geom.Point{
		X: h.scroll.X,
		Y: el.Rect.CenterY() - float64(h.height)/2,
	})
	return nil
}

// VisibleElements returns the mounted elements intersecting the viewport,
// with viewport-relative rects, sorted top to bottom.
func (h *Host) VisibleElements() []Element {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Element
	for _, el := range h.page.Elements {
		if h.hidden[el.Key] {
			continue
		}
		r := h.viewportRectLocked(el)
		if r.Bottom() <= 0 || r.Top >= float64(h.height) || r.Right() <= 0 || r.Left >= float64(h.width) {
			continue
		}
		el.Rect = r
		out = append(out, el)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rect.Top < out[j].Rect.Top })
	return out
}

func (h *Host) viewportRectLocked(el Element) geom.Rect {
	if el.Fixed {
		return el.Rect
	}
	return el.Rect.Translate(geom.Point{X: -h.scroll.X, Y: -h.scroll.Y})
}

func (h *Host) lookupLocked(ref host.ElementRef) (Element, error) {
	var i int
	if _, err := fmt.Sscanf(string(ref), "el-%d", &i); err != nil || i < 0 || i >= len(h.page.Elements) {
		return Element{}, fmt.Errorf("unknown element %q: %w", ref, host.ErrDetached)
	}
	el := h.page.Elements[i]
	if h.hidden[el.Key] {
		return Element{}, fmt.Errorf("element %q unmounted: %w", ref, host.ErrDetached)
	}
	return el, nil
}

func (h *Host) clampLocked(p geom.Point) geom.Point {
	maxX := math.Max(0, h.page.Width-float64(h.width))
	maxY := math.Max(0, h.page.Height-float64(h.height))
	return geom.Point{X: geom.Clamp(p.X, 0, maxX), Y: geom.Clamp(p.Y, 0, maxY)}
}

func refFor(i int) host.ElementRef {
	return host.ElementRef(fmt.Sprintf("el-%d", i))
}
