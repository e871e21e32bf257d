package preview

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/layout"
	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/tour"
	"github.com/muurk/tourguide/internal/viewport"
)

type fakeDriver struct {
	mu    sync.Mutex
	calls []string
}

func (d *fakeDriver) record(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, s)
}

func (d *fakeDriver) got() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDriver) Definition() tour.Definition {
	return tour.Definition{Name: "Onboarding", Key: "onboarding"}
}
func (d *fakeDriver) Activate(force bool) bool {
	if force {
		d.record("activate!")
		return true
	}
	d.record("activate")
	return false
}
func (d *fakeDriver) Next()         { d.record("next") }
func (d *fakeDriver) Back()         { d.record("back") }
func (d *fakeDriver) Close()        { d.record("close") }
func (d *fakeDriver) Deactivate()   { d.record("deactivate") }
func (d *fakeDriver) HandleScroll() { d.record("scroll") }
func (d *fakeDriver) HandleResize(w, h int) {
	d.record("resize " + (viewport.NewSnapshot(w, h)).String())
}
func (d *fakeDriver) HandleOrientationChange(w, h int) {
	d.record("rotate " + (viewport.NewSnapshot(w, h)).String())
}

func testPage() layout.Page {
	return layout.Page{
		Width:  1280,
		Height: 2400,
		Elements: []layout.Element{
			{Key: "nav", Label: "Nav", Rect: geom.Rect{Top: 0, Left: 0, Width: 1280, Height: 80}},
			{Key: "search-box", Label: "Search", Rect: geom.Rect{Top: 200, Left: 400, Width: 480, Height: 60}},
		},
	}
}

func newTestModel(t *testing.T) (Model, *fakeDriver, *layout.Host) {
	t.Helper()
	d := &fakeDriver{}
	h := layout.NewHost(testPage(), 1280, 800)
	b := NewBridge(8)
	t.Cleanup(b.Close)
	return NewModel(d, h, b, nil, 0, false), d, h
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// exec runs a command synchronously, expanding batches.
func exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		switch msg := msg.(type) {
		case tea.BatchMsg:
			for _, c := range msg {
				exec(c)
			}
		}
	case <-time.After(time.Second):
	}
}

func TestCanvasScalesViewport(t *testing.T) {
	c := NewCanvas(80, 1280, 800)
	cols, rows := c.Size()
	if cols != 80 || rows != 25 {
		t.Errorf("Size() = %dx%d, want 80x25", cols, rows)
	}

	c = NewCanvas(2, 100, 10000)
	if cols, rows = c.Size(); cols != 8 {
		t.Errorf("Size() cols = %d, want minimum 8", cols)
	}
	if rows < 4 {
		t.Errorf("Size() rows = %d, want at least 4", rows)
	}
}

func TestCanvasClipsOffscreenRects(t *testing.T) {
	c := NewCanvas(80, 1280, 800)
	c.Fill(geom.Rect{Top: -500, Left: 0, Width: 100, Height: 100}, GlyphPanel)
	c.Outline(geom.Rect{Top: 1200, Left: 1200, Width: 500, Height: 500}, GlyphHighlight)
	if strings.ContainsRune(c.String(), GlyphPanel) || strings.ContainsRune(c.String(), GlyphHighlight) {
		t.Errorf("offscreen rects drawn:\n%s", c.String())
	}

	// Partially visible rects are clipped, not dropped.
	c.Fill(geom.Rect{Top: 780, Left: 1260, Width: 200, Height: 200}, GlyphPanel)
	if got := c.At(79, 24); got != GlyphPanel {
		t.Errorf("At(79,24) = %q, want %q", got, GlyphPanel)
	}
}

func TestDrawFrame(t *testing.T) {
	els := []layout.Element{{Key: "search-box", Label: "Search", Rect: geom.Rect{Top: 200, Left: 400, Width: 480, Height: 60}}}
	hl := geom.Rect{Top: 192, Left: 392, Width: 496, Height: 76}
	f := &tour.Frame{
		Step:      tour.Step{Title: "Find"},
		Highlight: &hl,
		Placement: placement.Result{Top: 300, Left: 400, Width: 320, MaxHeight: 200},
	}

	c := Draw(80, 1280, 800, els, f)
	out := c.String()
	if !strings.ContainsRune(out, GlyphHighlight) {
		t.Errorf("Draw() missing highlight:\n%s", out)
	}
	if !strings.ContainsRune(out, GlyphPanel) {
		t.Errorf("Draw() missing panel:\n%s", out)
	}
	if !strings.Contains(out, "Find") {
		t.Errorf("Draw() missing panel title:\n%s", out)
	}

	// The panel sits at page y 300 = cell row 9.
	if got := c.At(30, 9); got != GlyphPanel {
		t.Errorf("At(30,9) = %q, want %q", got, GlyphPanel)
	}

	// Scrolled frames shift page coordinates into the viewport.
	f.Scroll = geom.Point{Y: 300}
	c = Draw(80, 1280, 800, nil, f)
	if got := c.At(30, 0); got != GlyphPanel {
		t.Errorf("scrolled At(30,0) = %q, want %q", got, GlyphPanel)
	}
}

func TestDrawPendingFrameHidesPanel(t *testing.T) {
	f := &tour.Frame{
		Step:      tour.Step{Title: "Find"},
		Pending:   true,
		Placement: placement.Result{Top: 300, Left: 400, Width: 320, MaxHeight: 200},
	}
	if out := Draw(80, 1280, 800, nil, f).String(); strings.ContainsRune(out, GlyphPanel) {
		t.Errorf("pending frame drew a panel:\n%s", out)
	}
}

func TestBridgeDeliversInOrder(t *testing.T) {
	b := NewBridge(4)
	defer b.Close()

	b.StepChanged(1, tour.Step{ID: "search"})
	b.Render(tour.Frame{Index: 1})
	b.Completed()

	wait := b.Wait()
	if msg, ok := wait().(StepMsg); !ok || msg.Index != 1 {
		t.Errorf("first message = %#v, want StepMsg index 1", msg)
	}
	if _, ok := wait().(FrameMsg); !ok {
		t.Error("second message is not a FrameMsg")
	}
	if msg, ok := wait().(FinishedMsg); !ok || msg.Outcome != tour.OutcomeCompleted {
		t.Errorf("third message = %#v, want completed", msg)
	}
}

func TestBridgeCloseUnblocks(t *testing.T) {
	b := NewBridge(1)
	b.Clear()

	sent := make(chan struct{})
	go func() {
		b.Skipped()
		close(sent)
	}()

	b.Close()
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send still blocked after Close")
	}
	b.Close()
}

func TestModelKeysDriveEngine(t *testing.T) {
	m, d, h := newTestModel(t)

	steps := []string{"right", "p", "esc", "j", "k"}
	for _, s := range steps {
		next, cmd := m.Update(keyPress(s))
		m = next.(Model)
		exec(cmd)
	}

	want := []string{"next", "back", "close", "scroll", "scroll"}
	got := d.got()
	if len(got) != len(want) {
		t.Fatalf("driver calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if off, _ := h.ScrollOffset(); off.Y != 0 {
		t.Errorf("scroll offset = %v, want back at 0", off)
	}
}

func TestModelSizeAndRotate(t *testing.T) {
	m, d, h := newTestModel(t)

	next, cmd := m.Update(keyPress("s"))
	m = next.(Model)
	exec(cmd)
	if w, hh, _ := h.ViewportSize(); w != 834 || hh != 1112 {
		t.Errorf("host viewport = %dx%d, want 834x1112", w, hh)
	}

	next, cmd = m.Update(keyPress("o"))
	m = next.(Model)
	exec(cmd)
	if w, hh, _ := h.ViewportSize(); w != 1112 || hh != 834 {
		t.Errorf("host viewport = %dx%d, want 1112x834", w, hh)
	}

	got := d.got()
	if len(got) != 2 || !strings.HasPrefix(got[0], "resize 834x1112") || !strings.HasPrefix(got[1], "rotate 1112x834") {
		t.Errorf("driver calls = %v", got)
	}
	if !strings.Contains(m.View(), "tablet 1112x834") {
		t.Errorf("View() missing size status:\n%s", m.View())
	}
}

func TestModelShowsFrameAndOutcome(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(activatedMsg{started: false})
	m = next.(Model)
	if !strings.Contains(m.View(), "already finished") {
		t.Errorf("View() missing finished status:\n%s", m.View())
	}

	next, _ = m.Update(FrameMsg{Frame: tour.Frame{
		Tour:  "onboarding",
		Step:  tour.Step{Title: "Search here", Body: "Type to find anything."},
		Index: 1,
		Total: 3,
	}})
	m = next.(Model)
	view := m.View()
	for _, want := range []string{"Search here", "Type to find anything.", "Step 2 of 3", "TOURGUIDE PREVIEW"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	next, _ = m.Update(ClearMsg{})
	m = next.(Model)
	next, _ = m.Update(FinishedMsg{Outcome: tour.OutcomeCompleted})
	m = next.(Model)
	view = m.View()
	if strings.Contains(view, "Search here") {
		t.Error("View() still shows the panel after clear")
	}
	if !strings.Contains(view, "Tour completed") {
		t.Error("View() missing completion banner")
	}
}

func TestModelReplayForcesActivation(t *testing.T) {
	m, d, _ := newTestModel(t)
	_, cmd := m.Update(keyPress("r"))
	exec(cmd)
	if got := d.got(); len(got) != 1 || got[0] != "activate!" {
		t.Errorf("driver calls = %v, want [activate!]", got)
	}
}
