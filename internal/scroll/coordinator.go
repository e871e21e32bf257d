// Package scroll serializes programmatic scrolling against passive
// scroll-driven re-placement.
//
// A programmatic scroll produces passive scroll events of its own. Re-placing
// the tooltip on those events would read half-settled offsets and fight the
// animation. While a programmatic scroll settles, the Coordinator holds a lock
// and passive scroll events are dropped; they are remembered, and once the
// lock releases exactly one recompute is requested. Resize and orientation
// changes are not gated here.
package scroll

import (
	"fmt"
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/clock"
	"github.com/muurk/tourguide/internal/host"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// Command is the programmatic scroll a plan issues.
type Command int

const (
	CommandNone Command = iota
	CommandToTop
	CommandIntoView
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandToTop:
		return "to-top"
	case CommandIntoView:
		return "into-view"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// StepKind is what the coordinator needs to know about a step.
type StepKind int

const (
	// KindStandard is an element-anchored step.
	KindStandard StepKind = iota
	// KindBody is a step without a target, centered in the viewport.
	KindBody
	// KindFixedBottom is a menu/sidebar step pinned to the bottom of the viewport.
	KindFixedBottom
)

// Direction is the navigation direction of a transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Plan is a scroll decision for one transition.
type Plan struct {
	Reason  string
	Command Command
	Settle  time.Duration
}

// Config holds the settle windows.
type Config struct {
	BodySettle     time.Duration
	StandardSettle time.Duration
	MenuSettle     time.Duration
}

// DefaultConfig returns 600ms/300ms/100ms settle windows.
func DefaultConfig() Config {
	return Config{
		BodySettle:     600 * time.Millisecond,
		StandardSettle: 300 * time.Millisecond,
		MenuSettle:     100 * time.Millisecond,
	}
}

// PlanTransition decides how a step transition scrolls.
//
// Forward into a body step scrolls to the top; into a menu step does not
// scroll at all; into a standard step waits for the target to resolve and
// scrolls to it afterwards. Backward navigation always scrolls to the top,
// menu steps included.
func (c Config) PlanTransition(kind StepKind, dir Direction) Plan {
	if dir == Backward {
		return Plan{Reason: "back", Command: CommandToTop, Settle: c.BodySettle}
	}
	switch kind {
	case KindBody:
		return Plan{Reason: "body-step", Command: CommandToTop, Settle: c.BodySettle}
	case KindFixedBottom:
		return Plan{Reason: "menu-step", Command: CommandNone, Settle: c.MenuSettle}
	default:
		return Plan{Reason: "standard-step", Command: CommandNone, Settle: c.StandardSettle}
	}
}

// BringIntoView is the plan used after a standard step's target resolves.
func (c Config) BringIntoView() Plan {
	return Plan{Reason: "bring-into-view", Command: CommandIntoView, Settle: c.StandardSettle}
}

// Scroller issues programmatic scroll commands.
type Scroller interface {
	ScrollToTop() error
	ScrollIntoView(ref host.ElementRef) error
}

// Coordinator owns the scroll lock.
type Coordinator struct {
	scroller Scroller
	sched    clock.Scheduler

	mu       sync.Mutex
	locked   bool
	gen      uint64
	deadline time.Time
	timer    clock.Timer
	dirty    bool
	onDirty  func()
}

// NewCoordinator creates an unlocked Coordinator.
func NewCoordinator(scroller Scroller, sched clock.Scheduler) *Coordinator {
	return &Coordinator{scroller: scroller, sched: sched}
}

// OnDirty sets the callback run when a lock without a continuation releases
// after passive scroll events were dropped. Callers that always pass a
// continuation to Begin, like tour.Engine, re-place there and leave this unset.
func (c *Coordinator) OnDirty(fn func()) {
	c.mu.Lock()
	c.onDirty = fn
	c.mu.Unlock()
}

// IsLocked reports whether passive scroll re-placement is suppressed.
func (c *Coordinator) IsLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Begin issues the plan's scroll command and holds the lock for its settle
// window. When the lock releases, then runs (if non-nil). A Begin while
// already locked supersedes the earlier continuation and can only extend the
// deadline, never shorten it.
func (c *Coordinator) Begin(plan Plan, ref host.ElementRef, then func()) {
	switch plan.Command {
	case CommandToTop:
		if err := c.scroller.ScrollToTop(); err != nil {
			logging.Warn("Scroll to top failed", zap.String("reason", plan.Reason), zap.Error(err))
		}
	case CommandIntoView:
		if err := c.scroller.ScrollIntoView(ref); err != nil {
			logging.Warn("Scroll into view failed", zap.String("reason", plan.Reason), zap.Error(err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.sched.Now()
	deadline := now.Add(plan.Settle)
	if c.locked && c.deadline.After(deadline) {
		deadline = c.deadline
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.locked = true
	c.deadline = deadline
	c.timer = c.sched.AfterFunc(deadline.Sub(now), func() { c.release(gen, then) })

	logging.Debug("Scroll lock held",
		zap.String("reason", plan.Reason),
		zap.String("command", plan.Command.String()),
		zap.Duration("settle", deadline.Sub(now)),
	)
}

func (c *Coordinator) release(gen uint64, then func()) {
	c.mu.Lock()
	if gen != c.gen || !c.locked {
		c.mu.Unlock()
		return
	}
	c.locked = false
	c.timer = nil
	dirty := c.dirty
	c.dirty = false
	onDirty := c.onDirty
	c.mu.Unlock()

	switch {
	case then != nil:
		then()
	case dirty && onDirty != nil:
		onDirty()
	}
}

// PassiveScroll reports whether a passive scroll event may trigger
// re-placement. While locked the event is dropped and remembered.
func (c *Coordinator) PassiveScroll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		c.dirty = true
		return false
	}
	return true
}

// Cancel releases the lock without running any continuation.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.locked = false
	c.dirty = false
}
