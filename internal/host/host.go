// Package host describes what the tour engine needs from the environment it
// runs in: a way to find tagged elements, measure them, read the viewport and
// scroll the page. The browser package implements it over the Chrome DevTools
// Protocol; the layout package implements it over a static page model.
package host

import (
	"errors"

	"github.com/muurk/tourguide/internal/geom"
)

// TargetAttribute is the attribute tour targets are tagged with, e.g.
// <button data-tour="leaderboard">.
const TargetAttribute = "data-tour"

// ErrDetached is returned when an element handle no longer refers to a live
// element.
var ErrDetached = errors.New("element detached")

// ElementRef is an opaque handle to a live element. Its meaning is private to
// the Host that issued it.
type ElementRef string

// Element is a query result: a handle plus its viewport-relative bounding box
// at query time.
type Element struct {
	Ref  ElementRef `json:"ref"`
	Rect geom.Rect  `json:"rect"`
}

// Finder locates tagged elements.
type Finder interface {
	// FindTargets returns every element tagged with key, in document order.
	FindTargets(key string) ([]Element, error)
	// ViewportSize returns the inner window size.
	ViewportSize() (width, height int, err error)
}

// Host is the full environment contract.
type Host interface {
	Finder
	// Measure returns the element's current viewport-relative bounding box.
	Measure(ref ElementRef) (geom.Rect, error)
	// ScrollOffset returns the page scroll position.
	ScrollOffset() (geom.Point, error)
	// ScrollToTop smooth-scrolls the page to the origin.
	ScrollToTop() error
	// ScrollIntoView smooth-scrolls the element to the middle of the viewport.
	ScrollIntoView(ref ElementRef) error
}
