package tour

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/tourguide/internal/clock"
	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/host"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/resolver"
	"github.com/muurk/tourguide/internal/scroll"
	"github.com/muurk/tourguide/internal/viewport"
	"go.uber.org/zap"
)

// DefaultAnimationTick is the delay between a target resolving and the
// bring-into-view scroll.
const DefaultAnimationTick = 16 * time.Millisecond

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Definition Definition
	// Host must not call back into the Engine synchronously from its methods.
	Host      host.Host
	Store     Store
	Renderers []Renderer
	Listeners []Listener
	Scheduler clock.Scheduler

	Placement       placement.Config
	Resolver        resolver.Config
	Scroll          scroll.Config
	ViewportOptions []viewport.Option
	AnimationTick   time.Duration
}

// Engine is the tour state machine.
type Engine struct {
	def       Definition
	host      host.Host
	store     Store
	sched     clock.Scheduler
	placer    placement.Config
	scrollCfg scroll.Config
	tick      time.Duration

	resolver *resolver.Resolver
	scroll   *scroll.Coordinator
	tracker  *viewport.Tracker

	mu            sync.Mutex
	started       bool
	run           Run
	gen           uint64
	resolved      bool
	cancelResolve func()
	tickTimer     clock.Timer
	positionKey   uint64
	lastScroll    geom.Point
	frame         *Frame
	last          Outcome
	renderers     []Renderer
	listeners     []Listener
}

// New validates the definition and builds an Engine in the Idle state.
func New(opts Options) (*Engine, error) {
	if opts.Host == nil {
		return nil, errors.New("tour: host is required")
	}
	if errs := ValidateDefinition(opts.Definition); len(errs) > 0 {
		return nil, fmt.Errorf("invalid tour definition: %w", errors.Join(errs...))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Store == nil {
		opts.Store = nopStore{}
	}
	if opts.Placement == (placement.Config{}) {
		opts.Placement = placement.DefaultConfig()
	}
	if opts.Scroll == (scroll.Config{}) {
		opts.Scroll = scroll.DefaultConfig()
	}
	if opts.AnimationTick <= 0 {
		opts.AnimationTick = DefaultAnimationTick
	}

	def := Normalize(opts.Definition)
	e := &Engine{
		def:       def,
		host:      opts.Host,
		store:     opts.Store,
		sched:     opts.Scheduler,
		placer:    opts.Placement,
		scrollCfg: opts.Scroll,
		tick:      opts.AnimationTick,
		resolver:  resolver.New(opts.Host, opts.Scheduler, opts.Resolver),
		scroll:    scroll.NewCoordinator(opts.Host, opts.Scheduler),
		tracker:   viewport.NewTracker(opts.Host, opts.Scheduler, opts.ViewportOptions...),
		renderers: append([]Renderer(nil), opts.Renderers...),
		listeners: append([]Listener(nil), opts.Listeners...),
	}
	e.run = e.idleRun()
	e.tracker.OnChange(e.onViewport)
	return e, nil
}

// Definition returns the normalized tour definition.
func (e *Engine) Definition() Definition { return e.def }

// AddRenderer registers a renderer. It receives frames from the next
// recompute on.
func (e *Engine) AddRenderer(r Renderer) {
	e.mu.Lock()
	e.renderers = append(e.renderers, r)
	e.mu.Unlock()
}

// Subscribe registers a listener.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Start mounts the engine: the viewport is sampled now and during the settle
// window. Activate calls it if needed.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()
	e.tracker.Start()
}

// Stop deactivates the tour and stops viewport tracking.
func (e *Engine) Stop() {
	e.Deactivate()
	e.mu.Lock()
	e.started = false
	e.mu.Unlock()
	e.tracker.Stop()
}

// State returns a copy of the current run.
func (e *Engine) State() Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.run
	r.Steps = append([]Step(nil), e.run.Steps...)
	if r.Target != nil {
		t := *r.Target
		r.Target = &t
	}
	r.ScrollLocked = e.scroll.IsLocked()
	return r
}

// CurrentFrame returns the last frame rendered for the current step.
func (e *Engine) CurrentFrame() (Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frame == nil {
		return Frame{}, false
	}
	return *e.frame, true
}

// LastOutcome returns how the most recent run ended, or "" if none ended.
func (e *Engine) LastOutcome() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Activate starts the tour at step 0. Unless force is set, a tour whose
// storage key is already marked done stays Idle. Reports whether the tour
// started.
func (e *Engine) Activate(force bool) bool {
	e.Start()

	e.mu.Lock()
	if e.run.Lifecycle == Running {
		e.mu.Unlock()
		return false
	}
	if !force {
		done, err := e.store.IsCompleted(e.def.StorageKey())
		if err != nil {
			logging.Warn("Cannot read tour completion flag, showing tour",
				zap.String("tour", e.def.StorageKey()), zap.Error(err))
		}
		if done {
			e.mu.Unlock()
			logging.Debug("Tour already done, not activating", zap.String("tour", e.def.StorageKey()))
			return false
		}
	}

	e.run = e.idleRun()
	e.run.Lifecycle = Running
	logging.Info("Tour activated", zap.String("tour", e.def.Name), zap.Bool("forced", force))
	fx := e.enterStepLocked(scroll.Forward)
	e.mu.Unlock()

	fx.run()
	return true
}

// Next advances to the next step, or completes the tour on the last step.
func (e *Engine) Next() {
	e.mu.Lock()
	if e.run.Lifecycle != Running {
		e.mu.Unlock()
		return
	}
	var fx effects
	if e.run.Index >= len(e.run.Steps)-1 {
		fx = e.finishLocked(OutcomeCompleted)
	} else {
		e.run.Index++
		fx = e.enterStepLocked(scroll.Forward)
	}
	e.mu.Unlock()
	fx.run()
}

// Back returns to the previous step. It is a no-op on the first step.
func (e *Engine) Back() {
	e.mu.Lock()
	if e.run.Lifecycle != Running || e.run.Index == 0 {
		e.mu.Unlock()
		return
	}
	e.run.Index--
	fx := e.enterStepLocked(scroll.Backward)
	e.mu.Unlock()
	fx.run()
}

// Skip ends the tour and marks it done, exactly like completion does.
// Outside a run it only records the skip when nothing is stored yet, so a
// tour can be dismissed before it shows. A late skip after a finished run
// is ignored.
func (e *Engine) Skip() {
	e.mu.Lock()
	if e.run.Lifecycle != Running {
		e.skipIdleLocked()
		e.mu.Unlock()
		return
	}
	fx := e.finishLocked(OutcomeSkipped)
	e.mu.Unlock()
	fx.run()
}

func (e *Engine) skipIdleLocked() {
	key := e.def.StorageKey()
	if e.last != "" {
		logging.Debug("Ignoring skip after finished run", zap.String("tour", key), zap.String("outcome", string(e.last)))
		return
	}
	done, err := e.store.IsCompleted(key)
	if err != nil {
		logging.Warn("Cannot read tour completion", zap.String("tour", key), zap.Error(err))
		return
	}
	if done {
		logging.Debug("Ignoring skip for finished tour", zap.String("tour", key))
		return
	}
	if err := e.store.MarkCompleted(key, OutcomeSkipped); err != nil {
		logging.Warn("Cannot persist tour completion", zap.String("tour", key), zap.Error(err))
		return
	}
	e.last = OutcomeSkipped
}

// Close is Skip.
func (e *Engine) Close() { e.Skip() }

// Deactivate returns to Idle without persisting anything.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	if e.run.Lifecycle != Running {
		e.mu.Unlock()
		return
	}
	e.gen++
	e.cancelPendingLocked()
	e.scroll.Cancel()
	e.run = e.idleRun()
	fx := e.clearLocked()
	e.mu.Unlock()

	logging.Info("Tour deactivated", zap.String("tour", e.def.Name))
	fx.run()
}

// HandleResize feeds a window resize into the debounced viewport tracker.
func (e *Engine) HandleResize(width, height int) {
	e.tracker.Resize(width, height)
}

// HandleOrientationChange applies a new window size immediately.
func (e *Engine) HandleOrientationChange(width, height int) {
	e.tracker.OrientationChange(width, height)
}

// HandleScroll reports a passive scroll event. It re-places the current step
// unless a programmatic scroll is settling.
func (e *Engine) HandleScroll() {
	e.mu.Lock()
	if e.run.Lifecycle != Running || !e.resolved {
		e.mu.Unlock()
		return
	}
	if !e.scroll.PassiveScroll() {
		e.mu.Unlock()
		return
	}
	fx := e.recomputeLocked()
	e.mu.Unlock()
	fx.run()
}

// HandleIntent dispatches a named user intent. Unknown names are ignored.
func (e *Engine) HandleIntent(source, intent string) bool {
	logging.LogIntent(source, intent)
	switch intent {
	case "next":
		e.Next()
	case "back":
		e.Back()
	case "skip":
		e.Skip()
	case "close":
		e.Close()
	default:
		logging.Warn("Unknown intent", zap.String("source", source), zap.String("intent", intent))
		return false
	}
	return true
}

func (e *Engine) idleRun() Run {
	return Run{Tour: e.def.Name, Steps: e.def.Steps, Lifecycle: Idle}
}

// enterStepLocked makes run.Index the current step and starts its pipeline.
func (e *Engine) enterStepLocked(dir scroll.Direction) effects {
	e.gen++
	gen := e.gen
	e.cancelPendingLocked()

	idx := e.run.Index
	step := e.run.Steps[idx]
	logging.LogStep(e.def.Name, idx, step.ID)

	pending := Frame{
		Tour:    e.def.Name,
		Step:    step,
		Index:   idx,
		Total:   len(e.run.Steps),
		Pending: true,
	}
	renderers, listeners := e.observersLocked()

	plan := e.scrollCfg.PlanTransition(step.scrollKind(), dir)
	e.scroll.Begin(plan, "", func() { e.afterSettle(gen) })

	return effects{
		func() {
			for _, l := range listeners {
				l.StepChanged(idx, step)
			}
		},
		func() {
			for _, r := range renderers {
				r.Render(pending)
			}
		},
	}
}

func (e *Engine) afterSettle(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.currentLocked(gen) {
		return
	}
	step := e.run.Steps[e.run.Index]
	e.cancelResolve = e.resolver.Resolve(step.Target, func(res resolver.Result) {
		e.onResolved(gen, res)
	})
}

func (e *Engine) onResolved(gen uint64, res resolver.Result) {
	e.mu.Lock()
	if !e.currentLocked(gen) {
		e.mu.Unlock()
		return
	}
	e.cancelResolve = nil
	step := e.run.Steps[e.run.Index]
	if !step.IsBody() {
		logging.LogResolve(step.ID, step.Target, res.Attempts, res.Found())
	}
	e.run.Target = res.Element
	e.resolved = true
	fx := e.recomputeLocked()

	if res.Found() && !step.FixedBottom() {
		e.tickTimer = e.sched.AfterFunc(e.tick, func() { e.bringIntoView(gen) })
	}
	e.mu.Unlock()
	fx.run()
}

func (e *Engine) bringIntoView(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.currentLocked(gen) || e.run.Target == nil {
		return
	}
	e.tickTimer = nil

	ref := e.run.Target.Ref
	rect, err := e.host.Measure(ref)
	if err != nil {
		logging.Warn("Cannot measure target before scrolling", zap.String("ref", string(ref)), zap.Error(err))
		return
	}
	snap := e.snapshotLocked()
	if rect.Within(float64(snap.Width), float64(snap.Height)) {
		return
	}
	e.scroll.Begin(e.scrollCfg.BringIntoView(), ref, func() { e.afterBringIntoView(gen) })
}

func (e *Engine) afterBringIntoView(gen uint64) {
	e.mu.Lock()
	if !e.currentLocked(gen) || !e.resolved {
		e.mu.Unlock()
		return
	}
	fx := e.recomputeLocked()
	e.mu.Unlock()
	fx.run()
}

func (e *Engine) onViewport(viewport.Snapshot) {
	e.mu.Lock()
	if e.run.Lifecycle != Running || !e.resolved {
		e.mu.Unlock()
		return
	}
	fx := e.recomputeLocked()
	e.mu.Unlock()
	fx.run()
}

func (e *Engine) currentLocked(gen uint64) bool {
	return gen == e.gen && e.run.Lifecycle == Running
}

func (e *Engine) cancelPendingLocked() {
	if e.cancelResolve != nil {
		e.cancelResolve()
		e.cancelResolve = nil
	}
	if e.tickTimer != nil {
		e.tickTimer.Stop()
		e.tickTimer = nil
	}
	e.resolved = false
	e.frame = nil
	e.run.Target = nil
}

func (e *Engine) snapshotLocked() viewport.Snapshot {
	snap := e.tracker.Current()
	if snap.Width > 0 && snap.Height > 0 {
		return snap
	}
	w, h, err := e.host.ViewportSize()
	if err != nil {
		logging.Warn("Cannot read viewport size", zap.Error(err))
		return snap
	}
	return viewport.NewSnapshot(w, h)
}

// recomputeLocked re-measures everything and builds a fresh frame.
func (e *Engine) recomputeLocked() effects {
	idx := e.run.Index
	step := e.run.Steps[idx]
	snap := e.snapshotLocked()

	pos, err := e.host.ScrollOffset()
	if err != nil {
		logging.Debug("Cannot read scroll offset, reusing last", zap.Error(err))
		pos = e.lastScroll
	}
	e.lastScroll = pos

	var target *geom.Rect
	if e.run.Target != nil {
		r, err := e.host.Measure(e.run.Target.Ref)
		if err != nil {
			logging.Warn("Target no longer measurable, centering tooltip",
				zap.String("step", step.ID), zap.Error(err))
		} else {
			target = &r
		}
	}

	res := e.placeGuarded(placement.Input{
		Target:      target,
		Viewport:    snap,
		Scroll:      pos,
		Side:        step.Side,
		FixedBottom: step.FixedBottom(),
	})
	logging.LogPlacement(step.ID, string(res.Layout), string(res.Side), res.Top, res.Left)

	e.positionKey++
	frame := Frame{
		Tour:        e.def.Name,
		Step:        step,
		Index:       idx,
		Total:       len(e.run.Steps),
		TargetFound: target != nil,
		Placement:   res,
		Viewport:    snap,
		Scroll:      pos,
		PositionKey: e.positionKey,
	}
	if target != nil {
		hl := target.Inset(HighlightPadding).Translate(pos)
		frame.Highlight = &hl
	}
	e.frame = &frame

	renderers, _ := e.observersLocked()
	return effects{func() {
		for _, r := range renderers {
			r.Render(frame)
		}
	}}
}

func (e *Engine) placeGuarded(in placement.Input) (res placement.Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Placement failed, using fallback", zap.Any("panic", r))
			res = e.placer.Fallback(in.Viewport, in.Scroll)
		}
	}()
	return e.placer.Place(in)
}

func (e *Engine) finishLocked(outcome Outcome) effects {
	e.gen++
	e.cancelPendingLocked()
	e.scroll.Cancel()

	key := e.def.StorageKey()
	if err := e.store.MarkCompleted(key, outcome); err != nil {
		logging.Warn("Cannot persist tour completion", zap.String("tour", key), zap.Error(err))
	}
	e.last = outcome
	e.run = e.idleRun()
	logging.Info("Tour finished", zap.String("tour", e.def.Name), zap.String("outcome", string(outcome)))

	_, listeners := e.observersLocked()
	fx := e.clearLocked()
	return append(fx, func() {
		for _, l := range listeners {
			if outcome == OutcomeSkipped {
				l.Skipped()
			} else {
				l.Completed()
			}
		}
	})
}

func (e *Engine) clearLocked() effects {
	renderers, _ := e.observersLocked()
	return effects{func() {
		for _, r := range renderers {
			r.Clear()
		}
	}}
}

func (e *Engine) observersLocked() ([]Renderer, []Listener) {
	return append([]Renderer(nil), e.renderers...), append([]Listener(nil), e.listeners...)
}

// effects are deferred calls run after the engine mutex is released.
type effects []func()

func (fx effects) run() {
	for _, f := range fx {
		f()
	}
}

type nopStore struct{}

func (nopStore) IsCompleted(string) (bool, error)   { return false, nil }
func (nopStore) MarkCompleted(string, Outcome) error { return nil }
