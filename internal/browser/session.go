// Package browser runs tours in a real Chrome page over the DevTools protocol.
//
// Host measures and scrolls the page by evaluating small scripts; Overlay
// paints frames into a single overlay root appended to <html>, outside the
// page's own layout tree; Listen bridges window events and overlay buttons
// back to the engine through a CDP binding.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// Options configures Open.
type Options struct {
	// URL is the page to open.
	URL string
	// ControlURL connects to a running Chrome instead of launching one.
	ControlURL string
	// Headless launches Chrome without a window.
	Headless bool
	// NavigateTimeout bounds navigation and load.
	NavigateTimeout time.Duration
}

// Session is an open page.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	lnch    *launcher.Launcher
	host    *Host
	overlay *Overlay
}

// Open launches or connects to Chrome and navigates to opts.URL.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}

	s := &Session{}
	wsURL := opts.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(opts.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		logging.Info("Launched local Chrome", zap.String("url", wsURL), zap.Bool("headless", opts.Headless))
	} else {
		logging.Info("Connecting to Chrome", zap.String("url", wsURL))
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	s.page = page

	navCtx, cancel := context.WithTimeout(ctx, opts.NavigateTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(opts.URL); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", opts.URL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logging.Warn("Page load wait timed out", zap.String("url", opts.URL), zap.Error(err))
	}

	s.host = NewHost(page.Context(ctx))
	s.overlay = NewOverlay(page.Context(ctx))
	return s, nil
}

// Host returns the page host.
func (s *Session) Host() *Host { return s.host }

// Overlay returns the page renderer.
func (s *Session) Overlay() *Overlay { return s.overlay }

// Listen installs the event bridge and blocks until ctx is done.
func (s *Session) Listen(ctx context.Context, sink EventSink) error {
	return Listen(ctx, s.page, sink)
}

// Close closes the browser and, if it was launched here, cleans up Chrome.
func (s *Session) Close() error {
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return nil
}
