package scroll

import (
	"errors"
	"testing"
	"time"

	"github.com/muurk/tourguide/internal/clock"
	"github.com/muurk/tourguide/internal/host"
)

type recordingScroller struct {
	toTop    int
	intoView []host.ElementRef
	err      error
}

func (r *recordingScroller) ScrollToTop() error {
	r.toTop++
	return r.err
}

func (r *recordingScroller) ScrollIntoView(ref host.ElementRef) error {
	r.intoView = append(r.intoView, ref)
	return r.err
}

func TestPlanTransition(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		kind    StepKind
		dir     Direction
		command Command
		settle  time.Duration
	}{
		{"forward body", KindBody, Forward, CommandToTop, 600 * time.Millisecond},
		{"forward standard", KindStandard, Forward, CommandNone, 300 * time.Millisecond},
		{"forward menu", KindFixedBottom, Forward, CommandNone, 100 * time.Millisecond},
		{"back into menu", KindFixedBottom, Backward, CommandToTop, 600 * time.Millisecond},
		{"back into standard", KindStandard, Backward, CommandToTop, 600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cfg.PlanTransition(tt.kind, tt.dir)
			if p.Command != tt.command {
				t.Errorf("Command = %v, want %v", p.Command, tt.command)
			}
			if p.Settle != tt.settle {
				t.Errorf("Settle = %v, want %v", p.Settle, tt.settle)
			}
		})
	}
}

func TestBeginLocksForSettleWindow(t *testing.T) {
	fc := clock.NewFake()
	s := &recordingScroller{}
	c := NewCoordinator(s, fc)

	released := false
	c.Begin(DefaultConfig().PlanTransition(KindBody, Forward), "", func() { released = true })

	if s.toTop != 1 {
		t.Errorf("ScrollToTop calls = %d, want 1", s.toTop)
	}
	if !c.IsLocked() {
		t.Fatal("IsLocked() = false right after Begin")
	}

	fc.Advance(599 * time.Millisecond)
	if !c.IsLocked() || released {
		t.Fatal("lock released before 600ms")
	}
	fc.Advance(time.Millisecond)
	if c.IsLocked() {
		t.Error("IsLocked() = true after settle window")
	}
	if !released {
		t.Error("continuation did not run on release")
	}
}

func TestMenuPlanIssuesNoScroll(t *testing.T) {
	fc := clock.NewFake()
	s := &recordingScroller{}
	c := NewCoordinator(s, fc)

	c.Begin(DefaultConfig().PlanTransition(KindFixedBottom, Forward), "", nil)
	if s.toTop != 0 || len(s.intoView) != 0 {
		t.Errorf("menu plan scrolled: toTop=%d intoView=%v", s.toTop, s.intoView)
	}
	fc.Advance(99 * time.Millisecond)
	if !c.IsLocked() {
		t.Error("menu lock released before 100ms")
	}
	fc.Advance(time.Millisecond)
	if c.IsLocked() {
		t.Error("menu lock still held at 100ms")
	}
}

func TestPassiveScrollDroppedWhileLocked(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)

	dirtyCalls := 0
	c.OnDirty(func() { dirtyCalls++ })

	if !c.PassiveScroll() {
		t.Fatal("PassiveScroll() = false while unlocked")
	}

	c.Begin(Plan{Reason: "test", Settle: 300 * time.Millisecond}, "", nil)
	for i := 0; i < 5; i++ {
		if c.PassiveScroll() {
			t.Fatal("PassiveScroll() = true while locked")
		}
	}
	fc.Advance(300 * time.Millisecond)

	if dirtyCalls != 1 {
		t.Errorf("dirty callbacks = %d, want exactly 1", dirtyCalls)
	}
	if !c.PassiveScroll() {
		t.Error("PassiveScroll() = false after unlock")
	}
}

func TestNoDirtyCallbackWithoutDroppedEvents(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)
	dirtyCalls := 0
	c.OnDirty(func() { dirtyCalls++ })

	c.Begin(Plan{Settle: 100 * time.Millisecond}, "", nil)
	fc.Advance(time.Second)
	if dirtyCalls != 0 {
		t.Errorf("dirty callbacks = %d, want 0", dirtyCalls)
	}
}

func TestContinuationReplacesDirtyRecompute(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)
	dirtyCalls, thenCalls := 0, 0
	c.OnDirty(func() { dirtyCalls++ })

	c.Begin(DefaultConfig().BringIntoView(), "ref-1", func() { thenCalls++ })
	c.PassiveScroll()
	fc.Advance(time.Second)

	if thenCalls != 1 || dirtyCalls != 0 {
		t.Errorf("then=%d dirty=%d, want then=1 dirty=0", thenCalls, dirtyCalls)
	}
}

func TestStaleTimerCannotReleaseNewerLock(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)

	first, second := 0, 0
	c.Begin(Plan{Settle: 300 * time.Millisecond}, "", func() { first++ })
	fc.Advance(200 * time.Millisecond)
	c.Begin(Plan{Settle: 300 * time.Millisecond}, "", func() { second++ })

	fc.Advance(100 * time.Millisecond) // first deadline
	if !c.IsLocked() {
		t.Fatal("stale settle timer released the newer lock")
	}
	fc.Advance(200 * time.Millisecond)
	if c.IsLocked() {
		t.Error("lock still held after the newer deadline")
	}
	if first != 0 || second != 1 {
		t.Errorf("continuations first=%d second=%d, want 0 and 1", first, second)
	}
}

func TestBeginOnlyExtendsDeadline(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)

	c.Begin(Plan{Settle: 600 * time.Millisecond}, "", nil)
	c.Begin(Plan{Settle: 100 * time.Millisecond}, "", nil)

	fc.Advance(599 * time.Millisecond)
	if !c.IsLocked() {
		t.Error("shorter Begin shortened the existing lock")
	}
	fc.Advance(time.Millisecond)
	if c.IsLocked() {
		t.Error("lock held past the original deadline")
	}
}

func TestCancel(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{}, fc)
	ran := false
	c.Begin(Plan{Settle: 300 * time.Millisecond}, "", func() { ran = true })
	c.Cancel()

	if c.IsLocked() {
		t.Error("IsLocked() = true after Cancel")
	}
	fc.Advance(time.Second)
	if ran {
		t.Error("continuation ran after Cancel")
	}
}

func TestScrollErrorsAreNotFatal(t *testing.T) {
	fc := clock.NewFake()
	c := NewCoordinator(&recordingScroller{err: errors.New("page closed")}, fc)
	ran := false
	c.Begin(DefaultConfig().PlanTransition(KindBody, Forward), "", func() { ran = true })
	fc.Advance(time.Second)
	if !ran {
		t.Error("continuation skipped after scroll error")
	}
}
