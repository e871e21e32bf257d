// Package resolver finds the element a tour step points at.
//
// Targets may not exist yet (lazy lists, menus that mount on demand), so
// resolution is a bounded retry loop rather than a single lookup. Running out
// of attempts is not an error: the caller gets no element and falls back to
// centered placement.
package resolver

import (
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/clock"
	"github.com/muurk/tourguide/internal/host"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// BodyKey is the sentinel target meaning "no element, center in viewport".
const BodyKey = "body"

// Defaults for the retry loop.
const (
	DefaultMaxAttempts = 15
	DefaultInterval    = 200 * time.Millisecond
)

// Config bounds the retry loop. Retries are spaced at a fixed Interval.
type Config struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultConfig returns 15 attempts, 200ms apart.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

func (c *Config) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
}

// Result is the outcome of one Resolve call. Element is nil when the target
// is the body sentinel or could not be found.
type Result struct {
	Element  *host.Element
	Attempts int
}

// Found reports whether an element was resolved.
func (r Result) Found() bool { return r.Element != nil }

// Resolver runs bounded lookups against a Finder.
type Resolver struct {
	finder host.Finder
	sched  clock.Scheduler
	cfg    Config
}

// New creates a Resolver.
func New(finder host.Finder, sched clock.Scheduler, cfg Config) *Resolver {
	cfg.defaults()
	return &Resolver{finder: finder, sched: sched, cfg: cfg}
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve starts looking for key and calls done exactly once, unless the
// returned cancel function runs first. done is never called synchronously
// from Resolve; the first attempt runs on the scheduler.
func (r *Resolver) Resolve(key string, done func(Result)) (cancel func()) {
	run := &lookup{r: r, key: key, done: done}
	run.schedule(0)
	return run.cancel
}

type lookup struct {
	r    *Resolver
	key  string
	done func(Result)

	mu        sync.Mutex
	attempts  int
	timer     clock.Timer
	cancelled bool
}

func (l *lookup) schedule(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancelled {
		return
	}
	l.timer = l.r.sched.AfterFunc(d, l.attempt)
}

func (l *lookup) cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelled = true
	if l.timer != nil {
		l.timer.Stop()
	}
}

func (l *lookup) attempt() {
	l.mu.Lock()
	if l.cancelled {
		l.mu.Unlock()
		return
	}
	l.attempts++
	n := l.attempts
	l.mu.Unlock()

	if l.key == BodyKey || l.key == "" {
		l.finish(Result{Attempts: n})
		return
	}

	if el, ok := l.query(); ok {
		l.finish(Result{Element: el, Attempts: n})
		return
	}

	if n >= l.r.cfg.MaxAttempts {
		l.finish(Result{Attempts: n})
		return
	}
	l.schedule(l.r.cfg.Interval)
}

func (l *lookup) query() (*host.Element, bool) {
	elements, err := l.r.finder.FindTargets(l.key)
	if err != nil {
		logging.Debug("Target query failed", zap.String("target", l.key), zap.Error(err))
		return nil, false
	}
	if len(elements) == 0 {
		return nil, false
	}
	w, h, err := l.r.finder.ViewportSize()
	if err != nil {
		logging.Debug("Viewport query failed", zap.Error(err))
		w, h = 0, 0
	}
	return Select(elements, w, h)
}

func (l *lookup) finish(res Result) {
	l.mu.Lock()
	if l.cancelled {
		l.mu.Unlock()
		return
	}
	l.cancelled = true
	l.mu.Unlock()

	l.done(res)
}

// Select picks the element a step should point at: the first one with area
// that is fully inside the viewport, else the first one with area. It returns
// false when no element has area.
func Select(elements []host.Element, viewportWidth, viewportHeight int) (*host.Element, bool) {
	var fallback *host.Element
	for i := range elements {
		el := &elements[i]
		if el.Rect.Empty() || !el.Rect.Finite() {
			continue
		}
		if viewportWidth > 0 && viewportHeight > 0 &&
			el.Rect.Within(float64(viewportWidth), float64(viewportHeight)) {
			found := *el
			return &found, true
		}
		if fallback == nil {
			fallback = el
		}
	}
	if fallback == nil {
		return nil, false
	}
	found := *fallback
	return &found, true
}
