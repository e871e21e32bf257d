// Package viewport tracks the host window size and its device-size class.
//
// The Tracker samples the host when started and again shortly afterwards to
// absorb late layout shifts (mobile browser chrome collapsing, fonts loading).
// Resize signals are debounced; orientation changes are published
// immediately. A snapshot is only published when the size actually changed.
package viewport

import (
	"fmt"
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/clock"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// SizeClass is a coarse device bucket derived from the viewport width.
type SizeClass int

const (
	SmallMobile SizeClass = iota
	Mobile
	Tablet
	Desktop
)

// Breakpoints (exclusive upper widths) for the size classes.
const (
	SmallMobileMaxWidth = 400
	MobileMaxWidth      = 768
	TabletMaxWidth      = 1024
)

// String returns the class name.
func (c SizeClass) String() string {
	switch c {
	case SmallMobile:
		return "small-mobile"
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	case Desktop:
		return "desktop"
	default:
		return fmt.Sprintf("SizeClass(%d)", int(c))
	}
}

// ClassFor maps a width in pixels to its size class.
func ClassFor(width int) SizeClass {
	switch {
	case width < SmallMobileMaxWidth:
		return SmallMobile
	case width < MobileMaxWidth:
		return Mobile
	case width < TabletMaxWidth:
		return Tablet
	default:
		return Desktop
	}
}

// Snapshot is an immutable view of the window size.
type Snapshot struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Class  SizeClass `json:"class"`
}

// NewSnapshot builds a Snapshot with its class filled in.
func NewSnapshot(width, height int) Snapshot {
	return Snapshot{Width: width, Height: height, Class: ClassFor(width)}
}

// SameSize reports whether two snapshots have identical dimensions.
func (s Snapshot) SameSize(o Snapshot) bool {
	return s.Width == o.Width && s.Height == o.Height
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%dx%d (%s)", s.Width, s.Height, s.Class)
}

// Sampler reads the current window size from the host.
type Sampler interface {
	ViewportSize() (width, height int, err error)
}

// Default timings.
const (
	DefaultResizeDebounce = 150 * time.Millisecond
)

// DefaultSettleSamples are the delays after Start at which the size is
// re-sampled.
var DefaultSettleSamples = []time.Duration{50 * time.Millisecond, 200 * time.Millisecond}

// Tracker owns the current Snapshot. It is the only writer of that state.
type Tracker struct {
	sampler        Sampler
	sched          clock.Scheduler
	resizeDebounce time.Duration
	settleSamples  []time.Duration

	mu        sync.Mutex
	current   Snapshot
	pending   Snapshot
	resize    clock.Timer
	settle    []clock.Timer
	gen       uint64
	stopped   bool
	listeners []func(Snapshot)
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithResizeDebounce overrides the resize debounce window.
func WithResizeDebounce(d time.Duration) Option {
	return func(t *Tracker) { t.resizeDebounce = d }
}

// WithSettleSamples overrides the post-start sampling delays.
func WithSettleSamples(d ...time.Duration) Option {
	return func(t *Tracker) { t.settleSamples = d }
}

// NewTracker creates a Tracker. Call Start to take the first sample.
func NewTracker(sampler Sampler, sched clock.Scheduler, opts ...Option) *Tracker {
	t := &Tracker{
		sampler:        sampler,
		sched:          sched,
		resizeDebounce: DefaultResizeDebounce,
		settleSamples:  DefaultSettleSamples,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers a listener for published snapshots.
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// Current returns the latest published snapshot.
func (t *Tracker) Current() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Start samples the host now and schedules the settle samples.
func (t *Tracker) Start() {
	t.mu.Lock()
	t.stopped = false
	t.gen++
	gen := t.gen
	for _, d := range t.settleSamples {
		t.settle = append(t.settle, t.sched.AfterFunc(d, func() { t.sampleIfCurrent(gen) }))
	}
	t.mu.Unlock()

	t.sample()
}

// Stop cancels every pending timer. Timers that already fired become no-ops.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.gen++
	t.stopTimersLocked()
}

func (t *Tracker) stopTimersLocked() {
	if t.resize != nil {
		t.resize.Stop()
		t.resize = nil
	}
	for _, s := range t.settle {
		s.Stop()
	}
	t.settle = nil
}

func (t *Tracker) sampleIfCurrent(gen uint64) {
	t.mu.Lock()
	live := !t.stopped && gen == t.gen
	t.mu.Unlock()
	if live {
		t.sample()
	}
}

func (t *Tracker) sample() {
	w, h, err := t.sampler.ViewportSize()
	if err != nil {
		logging.Warn("Viewport sample failed", zap.Error(err))
		return
	}
	t.publish(NewSnapshot(w, h))
}

// Resize records a resize signal. Only the last size of a burst is published,
// once the debounce window has passed without another resize.
func (t *Tracker) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending = NewSnapshot(width, height)
	if t.resize != nil {
		t.resize.Stop()
	}
	gen := t.gen
	t.resize = t.sched.AfterFunc(t.resizeDebounce, func() { t.flushResize(gen) })
}

func (t *Tracker) flushResize(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	snap := t.pending
	t.resize = nil
	t.mu.Unlock()

	t.publish(snap)
}

// OrientationChange publishes immediately and discards any pending resize,
// which would otherwise carry pre-rotation dimensions.
func (t *Tracker) OrientationChange(width, height int) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if t.resize != nil {
		t.resize.Stop()
		t.resize = nil
	}
	t.mu.Unlock()

	t.publish(NewSnapshot(width, height))
}

func (t *Tracker) publish(snap Snapshot) {
	t.mu.Lock()
	if t.stopped || snap.SameSize(t.current) {
		t.mu.Unlock()
		return
	}
	t.current = snap
	listeners := append([]func(Snapshot){}, t.listeners...)
	t.mu.Unlock()

	logging.Debug("Viewport changed",
		zap.Int("width", snap.Width),
		zap.Int("height", snap.Height),
		zap.String("class", snap.Class.String()),
	)
	for _, fn := range listeners {
		fn(snap)
	}
}
