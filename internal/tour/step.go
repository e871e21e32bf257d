package tour

import (
	"fmt"
	"strings"

	"github.com/muurk/tourguide/internal/geom"
	"github.com/muurk/tourguide/internal/host"
	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/resolver"
	"github.com/muurk/tourguide/internal/scroll"
	"github.com/muurk/tourguide/internal/viewport"
)

// HighlightPadding is how far the highlight ring extends past the target.
const HighlightPadding = 8

// AnchorPolicy selects how a step's tooltip is anchored.
type AnchorPolicy string

const (
	// AnchorStandard places the tooltip next to the target on desktop.
	AnchorStandard AnchorPolicy = "standard"
	// AnchorFixedBottom pins the tooltip to the bottom of the viewport and
	// suppresses auto-scroll. Used for menu and sidebar targets that live in
	// fixed-position containers.
	AnchorFixedBottom AnchorPolicy = "fixed-bottom"
)

// ParseAnchorPolicy parses an anchor policy. The empty string is standard.
func ParseAnchorPolicy(s string) (AnchorPolicy, error) {
	switch AnchorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnchorStandard:
		return AnchorStandard, nil
	case AnchorFixedBottom:
		return AnchorFixedBottom, nil
	default:
		return "", fmt.Errorf("unknown anchor policy %q", s)
	}
}

// Step is one immutable tour step.
type Step struct {
	ID     string         `yaml:"id" json:"id"`
	Title  string         `yaml:"title" json:"title"`
	Body   string         `yaml:"body" json:"body"`
	Target string         `yaml:"target" json:"target"`
	Side   placement.Side `yaml:"side,omitempty" json:"side,omitempty"`
	Anchor AnchorPolicy   `yaml:"anchor,omitempty" json:"anchor,omitempty"`
}

// IsBody reports whether the step has no target element.
func (s Step) IsBody() bool {
	return s.Target == "" || s.Target == resolver.BodyKey
}

// FixedBottom reports whether the step uses the fixed-bottom anchor policy.
func (s Step) FixedBottom() bool {
	return s.Anchor == AnchorFixedBottom
}

func (s Step) scrollKind() scroll.StepKind {
	switch {
	case s.IsBody():
		return scroll.KindBody
	case s.FixedBottom():
		return scroll.KindFixedBottom
	default:
		return scroll.KindStandard
	}
}

// Definition is a named, ordered list of steps. Key is the storage key the
// completion flag is kept under; it defaults to Name.
type Definition struct {
	Name  string `yaml:"name" json:"name"`
	Key   string `yaml:"key,omitempty" json:"key,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// StorageKey returns Key, or Name when Key is empty.
func (d Definition) StorageKey() string {
	if d.Key != "" {
		return d.Key
	}
	return d.Name
}

// Lifecycle is the run state. A finished run goes straight back to Idle;
// Engine.LastOutcome reports whether it was completed or skipped.
type Lifecycle int

const (
	Idle Lifecycle = iota
	Running
)

func (l Lifecycle) String() string {
	switch l {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// Outcome is what a finished run recorded.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
)

// Run is a copy of the engine's session state.
type Run struct {
	Tour         string        `json:"tour"`
	Steps        []Step        `json:"-"`
	Index        int           `json:"index"`
	Lifecycle    Lifecycle     `json:"-"`
	ScrollLocked bool          `json:"scroll_locked"`
	Target       *host.Element `json:"target,omitempty"`
}

// Step returns the current step, or false when the run is not running.
func (r Run) Step() (Step, bool) {
	if r.Lifecycle != Running || r.Index < 0 || r.Index >= len(r.Steps) {
		return Step{}, false
	}
	return r.Steps[r.Index], true
}

// Frame is what renderers paint.
//
// A Pending frame is emitted as soon as a step becomes current; it carries the
// step text and progress but no placement yet. The next frame for the same
// step carries the placement.
type Frame struct {
	Tour        string            `json:"tour"`
	Step        Step              `json:"step"`
	Index       int               `json:"index"`
	Total       int               `json:"total"`
	Pending     bool              `json:"pending,omitempty"`
	TargetFound bool              `json:"target_found"`
	Placement   placement.Result  `json:"placement"`
	Highlight   *geom.Rect        `json:"highlight,omitempty"`
	Viewport    viewport.Snapshot `json:"viewport"`
	Scroll      geom.Point        `json:"scroll"`
	PositionKey uint64            `json:"position_key"`
}

// IsFirst reports whether the frame shows the first step.
func (f Frame) IsFirst() bool { return f.Index == 0 }

// IsLast reports whether the frame shows the last step.
func (f Frame) IsLast() bool { return f.Index == f.Total-1 }

// Renderer paints frames.
type Renderer interface {
	Render(Frame)
	Clear()
}

// Listener receives run events.
type Listener interface {
	StepChanged(index int, step Step)
	Completed()
	Skipped()
}

// ListenerFuncs adapts optional functions to a Listener.
type ListenerFuncs struct {
	OnStepChanged func(index int, step Step)
	OnCompleted   func()
	OnSkipped     func()
}

func (l ListenerFuncs) StepChanged(index int, step Step) {
	if l.OnStepChanged != nil {
		l.OnStepChanged(index, step)
	}
}

func (l ListenerFuncs) Completed() {
	if l.OnCompleted != nil {
		l.OnCompleted()
	}
}

func (l ListenerFuncs) Skipped() {
	if l.OnSkipped != nil {
		l.OnSkipped()
	}
}

// Store persists the "do not show again" flag.
type Store interface {
	IsCompleted(key string) (bool, error)
	MarkCompleted(key string, outcome Outcome) error
}
