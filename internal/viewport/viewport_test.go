package viewport

import (
	"errors"
	"testing"
	"time"

	"github.com/muurk/tourguide/internal/clock"
)

type fakeSampler struct {
	w, h int
	err  error
	hits int
}

func (f *fakeSampler) ViewportSize() (int, int, error) {
	f.hits++
	return f.w, f.h, f.err
}

func TestClassFor(t *testing.T) {
	tests := []struct {
		width int
		want  SizeClass
	}{
		{320, SmallMobile},
		{399, SmallMobile},
		{400, Mobile},
		{767, Mobile},
		{768, Tablet},
		{1023, Tablet},
		{1024, Desktop},
		{2560, Desktop},
	}

	for _, tt := range tests {
		if got := ClassFor(tt.width); got != tt.want {
			t.Errorf("ClassFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTrackerStartSamplesThreeTimes(t *testing.T) {
	fc := clock.NewFake()
	s := &fakeSampler{w: 375, h: 667}
	tr := NewTracker(s, fc)

	var published []Snapshot
	tr.OnChange(func(snap Snapshot) { published = append(published, snap) })

	tr.Start()
	if s.hits != 1 {
		t.Fatalf("samples after Start = %d, want 1", s.hits)
	}
	if got := tr.Current(); got.Width != 375 || got.Class != SmallMobile {
		t.Errorf("Current() = %v, want 375x667 small-mobile", got)
	}

	// Browser chrome collapses between the mount sample and the 50ms sample.
	s.h = 720
	fc.Advance(50 * time.Millisecond)
	fc.Advance(150 * time.Millisecond)

	if s.hits != 3 {
		t.Errorf("samples after settle = %d, want 3", s.hits)
	}
	if len(published) != 2 {
		t.Fatalf("published %d snapshots, want 2 (unchanged sample suppressed)", len(published))
	}
	if published[1].Height != 720 {
		t.Errorf("second snapshot height = %d, want 720", published[1].Height)
	}
}

func TestTrackerResizeDebounced(t *testing.T) {
	fc := clock.NewFake()
	tr := NewTracker(&fakeSampler{w: 1280, h: 800}, fc, WithSettleSamples())
	tr.Start()

	var published []Snapshot
	tr.OnChange(func(snap Snapshot) { published = append(published, snap) })

	tr.Resize(1200, 800)
	fc.Advance(100 * time.Millisecond)
	tr.Resize(1100, 800)
	fc.Advance(100 * time.Millisecond)
	tr.Resize(900, 700)

	if len(published) != 0 {
		t.Fatalf("published during burst: %v", published)
	}

	fc.Advance(150 * time.Millisecond)
	if len(published) != 1 {
		t.Fatalf("published %d snapshots after burst, want 1", len(published))
	}
	if got := published[0]; got.Width != 900 || got.Height != 700 || got.Class != Tablet {
		t.Errorf("snapshot = %v, want 900x700 tablet", got)
	}
}

func TestTrackerResizeNoOpSuppressed(t *testing.T) {
	fc := clock.NewFake()
	tr := NewTracker(&fakeSampler{w: 1280, h: 800}, fc, WithSettleSamples())
	tr.Start()

	calls := 0
	tr.OnChange(func(Snapshot) { calls++ })

	tr.Resize(1280, 800)
	fc.Advance(time.Second)
	if calls != 0 {
		t.Errorf("listener called %d times for unchanged size, want 0", calls)
	}
}

func TestTrackerOrientationImmediate(t *testing.T) {
	fc := clock.NewFake()
	tr := NewTracker(&fakeSampler{w: 375, h: 667}, fc, WithSettleSamples())
	tr.Start()

	var published []Snapshot
	tr.OnChange(func(snap Snapshot) { published = append(published, snap) })

	tr.Resize(380, 667)
	tr.OrientationChange(667, 375)
	if len(published) != 1 || published[0].Width != 667 {
		t.Fatalf("published = %v, want immediate 667x375", published)
	}

	// The stale resize must not fire afterwards.
	fc.Advance(time.Second)
	if len(published) != 1 {
		t.Errorf("published %d snapshots, want 1", len(published))
	}
}

func TestTrackerStopCancelsTimers(t *testing.T) {
	fc := clock.NewFake()
	s := &fakeSampler{w: 800, h: 600}
	tr := NewTracker(s, fc)
	tr.Start()
	tr.Resize(500, 500)
	tr.Stop()

	fc.Advance(time.Second)
	if s.hits != 1 {
		t.Errorf("samples = %d, want 1 (settle samples cancelled)", s.hits)
	}
	if got := tr.Current(); got.Width != 800 {
		t.Errorf("Current().Width = %d, want 800", got.Width)
	}
}

func TestTrackerSampleError(t *testing.T) {
	fc := clock.NewFake()
	tr := NewTracker(&fakeSampler{err: errors.New("detached")}, fc, WithSettleSamples())
	tr.Start()

	if got := tr.Current(); got.Width != 0 {
		t.Errorf("Current() = %v, want zero snapshot", got)
	}
}
