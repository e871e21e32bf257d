package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/host"
)

// RefAttribute is stamped on found targets so later measurements can find
// the same element again.
const RefAttribute = "data-tourguide-ref"

// Host implements host.Host over a page.
type Host struct {
	page *rod.Page
}

// NewHost wraps a page. The page's context bounds every call.
func NewHost(page *rod.Page) *Host {
	return &Host{page: page}
}

func (h *Host) evalString(js string, args ...interface{}) (string, error) {
	res, err := h.page.Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// FindTargets queries [data-tour=key] and returns viewport-relative rects.
func (h *Host) FindTargets(key string) ([]host.Element, error) {
	raw, err := h.evalString(findTargetsJS, key, host.TargetAttribute, RefAttribute)
	if err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", key, err)
	}
	return parseElements(raw)
}

// ViewportSize returns window.innerWidth and innerHeight.
func (h *Host) ViewportSize() (int, int, error) {
	raw, err := h.evalString(viewportJS)
	if err != nil {
		return 0, 0, fmt.Errorf("browser: viewport: %w", err)
	}
	var v struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return 0, 0, fmt.Errorf("browser: viewport: %w", err)
	}
	return v.Width, v.Height, nil
}

// Measure returns the element's current bounding client rect.
func (h *Host) Measure(ref host.ElementRef) (geom.Rect, error) {
	raw, err := h.evalString(measureJS, string(ref), RefAttribute)
	if err != nil {
		return geom.Rect{}, fmt.Errorf("browser: measure %s: %w", ref, err)
	}
	return parseRect(ref, raw)
}

// ScrollOffset returns window.scrollX and scrollY.
func (h *Host) ScrollOffset() (geom.Point, error) {
	raw, err := h.evalString(scrollOffsetJS)
	if err != nil {
		return geom.Point{}, fmt.Errorf("browser: scroll offset: %w", err)
	}
	var p geom.Point
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return geom.Point{}, fmt.Errorf("browser: scroll offset: %w", err)
	}
	return p, nil
}

// ScrollToTop smooth-scrolls to the origin.
func (h *Host) ScrollToTop() error {
	if _, err := h.page.Eval(scrollToTopJS); err != nil {
		return fmt.Errorf("browser: scroll to top: %w", err)
	}
	return nil
}

// ScrollIntoView smooth-scrolls the element to the middle of the viewport.
func (h *Host) ScrollIntoView(ref host.ElementRef) error {
	ok, err := h.evalString(scrollIntoViewJS, string(ref), RefAttribute)
	if err != nil {
		return fmt.Errorf("browser: scroll into view %s: %w", ref, err)
	}
	if ok != "ok" {
		return fmt.Errorf("browser: scroll into view %s: %w", ref, host.ErrDetached)
	}
	return nil
}

func parseElements(raw string) ([]host.Element, error) {
	var els []host.Element
	if err := json.Unmarshal([]byte(raw), &els); err != nil {
		return nil, fmt.Errorf("browser: decode elements: %w", err)
	}
	return els, nil
}

func parseRect(ref host.ElementRef, raw string) (geom.Rect, error) {
	if raw == "" {
		return geom.Rect{}, fmt.Errorf("browser: measure %s: %w", ref, host.ErrDetached)
	}
	var r geom.Rect
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return geom.Rect{}, fmt.Errorf("browser: decode rect: %w", err)
	}
	return r, nil
}
