package browser

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/tour"
	"go.uber.org/zap"
)

const (
	backdropColor = "rgba(15, 23, 42, 0.55)"
	ringColor     = "#38bdf8"
	panelChrome   = "box-sizing:border-box;overflow:auto;background:#fff;color:#0f172a;" +
		"border-radius:12px;box-shadow:0 12px 32px rgba(0,0,0,.25);padding:16px;" +
		"font:14px/1.5 system-ui,sans-serif;z-index:2;"
)

// Overlay implements tour.Renderer by painting into the page.
type Overlay struct {
	page *rod.Page

	mu      sync.Mutex
	lastKey uint64
}

// NewOverlay wraps a page.
func NewOverlay(page *rod.Page) *Overlay {
	return &Overlay{page: page}
}

// overlayPayload is the argument renderJS receives.
type overlayPayload struct {
	RootID        string `json:"rootID"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	Progress      string `json:"progress"`
	First         bool   `json:"first"`
	Last          bool   `json:"last"`
	PositionKey   uint64 `json:"positionKey"`
	BackdropStyle string `json:"backdropStyle"`
	RingStyle     string `json:"ringStyle"`
	PanelStyle    string `json:"panelStyle"`
}

func buildPayload(f tour.Frame) overlayPayload {
	p := overlayPayload{
		RootID:      OverlayRootID,
		Title:       f.Step.Title,
		Body:        f.Step.Body,
		Progress:    fmt.Sprintf("%d of %d", f.Index+1, f.Total),
		First:       f.IsFirst(),
		Last:        f.IsLast(),
		PositionKey: f.PositionKey,
	}

	if f.Highlight != nil {
		h := f.Highlight
		// The ring's spread shadow doubles as the backdrop around the target.
		p.BackdropStyle = "display:none;"
		p.RingStyle = fmt.Sprintf(
			"position:absolute;top:%gpx;left:%gpx;width:%gpx;height:%gpx;border:2px solid %s;"+
				"border-radius:8px;box-sizing:border-box;pointer-events:none;box-shadow:0 0 0 9999px %s;z-index:1;",
			h.Top, h.Left, h.Width, h.Height, ringColor, backdropColor)
	} else {
		p.BackdropStyle = fmt.Sprintf("position:fixed;inset:0;background:%s;z-index:0;", backdropColor)
		p.RingStyle = "display:none;"
	}

	css := f.Placement.Style.CSS()
	if f.Pending {
		css += "visibility:hidden;"
	}
	if f.Pending || css == "" {
		css += "position:fixed;left:50%;bottom:20px;transform:translateX(-50%);"
	}
	p.PanelStyle = panelChrome + css
	return p
}

// Render paints the frame. Frames older than the last painted one are dropped.
func (o *Overlay) Render(f tour.Frame) {
	o.mu.Lock()
	if !f.Pending && f.PositionKey != 0 && f.PositionKey < o.lastKey {
		o.mu.Unlock()
		return
	}
	if f.PositionKey > o.lastKey {
		o.lastKey = f.PositionKey
	}
	o.mu.Unlock()

	if _, err := o.page.Eval(renderJS, buildPayload(f)); err != nil {
		logging.Warn("Overlay render failed", zap.String("step", f.Step.ID), zap.Error(err))
	}
}

// Clear removes the overlay root.
func (o *Overlay) Clear() {
	if _, err := o.page.Eval(clearJS, OverlayRootID); err != nil {
		logging.Warn("Overlay clear failed", zap.Error(err))
	}
}
