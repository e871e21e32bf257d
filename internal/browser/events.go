package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// EventSink receives page events. *tour.Engine implements it.
type EventSink interface {
	HandleResize(width, height int)
	HandleOrientationChange(width, height int)
	HandleScroll()
	HandleIntent(source, intent string) bool
}

// Event is one message from the page.
type Event struct {
	Type   string  `json:"type"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Intent string  `json:"intent,omitempty"`
}

// ParseEvent decodes and checks a binding payload.
func ParseEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	switch e.Type {
	case "resize", "orientation":
		if e.Width <= 0 || e.Height <= 0 {
			return Event{}, fmt.Errorf("%s event with size %dx%d", e.Type, e.Width, e.Height)
		}
	case "scroll":
	case "intent":
		if e.Intent == "" {
			return Event{}, fmt.Errorf("intent event without intent")
		}
	default:
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	return e, nil
}

// Dispatch forwards an event to sink.
func Dispatch(e Event, sink EventSink) {
	switch e.Type {
	case "resize":
		sink.HandleResize(e.Width, e.Height)
	case "orientation":
		sink.HandleOrientationChange(e.Width, e.Height)
	case "scroll":
		sink.HandleScroll()
	case "intent":
		sink.HandleIntent("page", e.Intent)
	}
}

// Listen installs the binding and page listeners, then forwards events to
// sink until ctx is done. Listeners are re-installed on every new document.
func Listen(ctx context.Context, page *rod.Page, sink EventSink) error {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(page); err != nil {
		logging.Warn("addBinding failed (may already exist)", zap.Error(err))
	}

	install := fmt.Sprintf("(%s)(%q, %q)", listenJS, BindingName, OverlayRootID)
	if _, err := page.EvalOnNewDocument(install); err != nil {
		logging.Warn("Cannot register listeners for new documents", zap.Error(err))
	}
	if _, err := page.Eval(listenJS, BindingName, OverlayRootID); err != nil {
		return fmt.Errorf("browser: install listeners: %w", err)
	}

	wait := page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		ev, err := ParseEvent(e.Payload)
		if err != nil {
			logging.Warn("Ignoring page event", zap.Error(err))
			return
		}
		Dispatch(ev, sink)
	})
	wait()
	return ctx.Err()
}
