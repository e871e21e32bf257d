package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tourguide/internal/layout"
	"github.com/muurk/tourguide/internal/tour"
)

// ScrollStep is how far one scroll key moves the page, in pixels.
const ScrollStep = 120

// Driver is the engine surface the preview drives.
type Driver interface {
	Definition() tour.Definition
	Activate(force bool) bool
	Next()
	Back()
	Close()
	Deactivate()
	HandleScroll()
	HandleResize(width, height int)
	HandleOrientationChange(width, height int)
}

// Preset is a named window size.
type Preset struct {
	Name   string
	Width  int
	Height int
}

// DefaultPresets covers each size class.
var DefaultPresets = []Preset{
	{Name: "desktop", Width: 1280, Height: 800},
	{Name: "tablet", Width: 834, Height: 1112},
	{Name: "mobile", Width: 414, Height: 896},
	{Name: "small", Width: 360, Height: 640},
}

type activatedMsg struct{ started bool }

// Model is the preview program state.
type Model struct {
	driver Driver
	host   *layout.Host
	bridge *Bridge
	force  bool

	presets []Preset
	preset  int
	vw, vh  int

	frame   *tour.Frame
	outcome tour.Outcome
	status  string

	Width  int
	Height int

	keys     keyMap
	Help     help.Model
	Progress progress.Model
}

// NewModel creates a preview model. The host must already show the
// window size of presets[start].
func NewModel(driver Driver, h *layout.Host, bridge *Bridge, presets []Preset, start int, force bool) Model {
	if len(presets) == 0 {
		presets = DefaultPresets
	}
	if start < 0 || start >= len(presets) {
		start = 0
	}
	return Model{
		driver:   driver,
		host:     h,
		bridge:   bridge,
		force:    force,
		presets:  presets,
		preset:   start,
		vw:       presets[start].Width,
		vh:       presets[start].Height,
		keys:     defaultKeyMap(),
		Help:     help.New(),
		Progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Init activates the tour and starts listening for engine messages.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.activate(m.force), m.bridge.Wait())
}

func (m Model) activate(force bool) tea.Cmd {
	return func() tea.Msg {
		return activatedMsg{started: m.driver.Activate(force)}
	}
}

// drive runs an engine call off the update loop.
func drive(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// Update handles key presses and engine messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case activatedMsg:
		if !msg.started {
			m.status = "Tour already finished. Press r to replay."
		}
		return m, nil

	case StepMsg:
		m.outcome = ""
		m.status = ""
		return m, m.bridge.Wait()

	case FrameMsg:
		f := msg.Frame
		m.frame = &f
		return m, m.bridge.Wait()

	case ClearMsg:
		m.frame = nil
		return m, m.bridge.Wait()

	case FinishedMsg:
		m.outcome = msg.Outcome
		return m, m.bridge.Wait()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Sequence(drive(m.driver.Deactivate), tea.Quit)
	case key.Matches(msg, m.keys.Next):
		return m, drive(m.driver.Next)
	case key.Matches(msg, m.keys.Back):
		return m, drive(m.driver.Back)
	case key.Matches(msg, m.keys.Close):
		return m, drive(m.driver.Close)
	case key.Matches(msg, m.keys.Down):
		return m, m.scroll(ScrollStep)
	case key.Matches(msg, m.keys.Up):
		return m, m.scroll(-ScrollStep)
	case key.Matches(msg, m.keys.Size):
		m.preset = (m.preset + 1) % len(m.presets)
		p := m.presets[m.preset]
		m.vw, m.vh = p.Width, p.Height
		return m, m.resize(p.Width, p.Height, m.driver.HandleResize)
	case key.Matches(msg, m.keys.Rotate):
		m.vw, m.vh = m.vh, m.vw
		return m, m.resize(m.vw, m.vh, m.driver.HandleOrientationChange)
	case key.Matches(msg, m.keys.Replay):
		m.outcome = ""
		m.status = ""
		return m, m.activate(true)
	}
	return m, nil
}

func (m Model) resize(width, height int, notify func(int, int)) tea.Cmd {
	h := m.host
	return drive(func() {
		h.SetViewport(width, height)
		notify(width, height)
	})
}

func (m Model) scroll(dy float64) tea.Cmd {
	h, d := m.host, m.driver
	return drive(func() {
		h.ScrollBy(0, dy)
		d.HandleScroll()
	})
}

// View renders the header, the scaled viewport, the panel and help.
func (m Model) View() string {
	width := m.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	cols := min(width-4, MaxCanvasWidth)

	def := m.driver.Definition()
	sections := []string{BuildHeaderContent(def.Name)}

	canvas := Draw(cols, m.vw, m.vh, m.host.VisibleElements(), m.frame)
	sections = append(sections, CanvasStyle.Render(canvas.String()))
	sections = append(sections, StatusBarStyle.Render(m.statusLine()))

	if panel := m.panel(cols); panel != "" {
		sections = append(sections, panel)
	}

	switch m.outcome {
	case tour.OutcomeCompleted:
		sections = append(sections, SuccessStyle.Render("✓ Tour completed"))
	case tour.OutcomeSkipped:
		sections = append(sections, WarningStyle.Render("Tour skipped"))
	}
	if m.status != "" {
		sections = append(sections, SubtitleStyle.Render(m.status))
	}

	sections = append(sections, HelpStyle.Render(m.Help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	p := m.presets[m.preset]
	parts := []string{fmt.Sprintf("%s %dx%d", p.Name, m.vw, m.vh)}
	if m.frame != nil {
		f := m.frame
		parts = append(parts,
			f.Viewport.Class.String(),
			fmt.Sprintf("scroll %.0f,%.0f", f.Scroll.X, f.Scroll.Y),
			"layout "+string(f.Placement.Layout),
		)
		if !f.TargetFound && !f.Pending {
			parts = append(parts, "target missing")
		}
	}
	return strings.Join(parts, " · ")
}

func (m Model) panel(width int) string {
	if m.frame == nil {
		return ""
	}
	f := m.frame

	var lines []string
	lines = append(lines, PanelTitleStyle.Render(f.Step.Title))
	if f.Step.Body != "" {
		lines = append(lines, PanelBodyStyle.Width(width-4).Render(f.Step.Body))
	}
	if f.Pending {
		lines = append(lines, SubtitleStyle.Render("positioning..."))
	}

	percent := 0.0
	if f.Total > 0 {
		percent = float64(f.Index+1) / float64(f.Total)
	}
	m.Progress.Width = max(width-20, 10)
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Step %d of %d  %s", f.Index+1, f.Total, m.Progress.ViewAs(percent)))

	return PanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// Run drives engine through an interactive terminal preview. It blocks
// until the user quits.
func Run(engine *tour.Engine, h *layout.Host, presets []Preset, start int, force bool) error {
	bridge := NewBridge(0)
	defer bridge.Close()
	engine.AddRenderer(bridge)
	engine.Subscribe(bridge)

	model := NewModel(engine, h, bridge, presets, start, force)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
