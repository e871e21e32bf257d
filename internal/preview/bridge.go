package preview

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/tourguide/internal/tour"
)

// FrameMsg carries a rendered frame.
type FrameMsg struct{ Frame tour.Frame }

// ClearMsg removes the overlay.
type ClearMsg struct{}

// StepMsg reports a step change.
type StepMsg struct {
	Index int
	Step  tour.Step
}

// FinishedMsg reports the end of a run.
type FinishedMsg struct{ Outcome tour.Outcome }

// Bridge turns engine callbacks into tea messages. It implements
// tour.Renderer and tour.Listener.
//
// Sends block until the model reads them or the bridge is closed, so frames
// are never reordered or lost while the program runs.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge creates a bridge with the given queue length.
func NewBridge(buffer int) *Bridge {
	if buffer < 1 {
		buffer = 64
	}
	return &Bridge{ch: make(chan tea.Msg, buffer), done: make(chan struct{})}
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// Wait returns a command that yields the next engine message.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close unblocks pending sends and waits. Safe to call more than once.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) Render(f tour.Frame) { b.send(FrameMsg{Frame: f}) }

func (b *Bridge) Clear() { b.send(ClearMsg{}) }

func (b *Bridge) StepChanged(index int, s tour.Step) { b.send(StepMsg{Index: index, Step: s}) }

func (b *Bridge) Completed() { b.send(FinishedMsg{Outcome: tour.OutcomeCompleted}) }

func (b *Bridge) Skipped() { b.send(FinishedMsg{Outcome: tour.OutcomeSkipped}) }
