package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muurk/tourguide/internal/layout"
	"github.com/muurk/tourguide/internal/scroll"
	"github.com/muurk/tourguide/internal/tour"
	"github.com/muurk/tourguide/internal/viewport"
	"gopkg.in/yaml.v3"
)

// TourFile is a tour definition file.
type TourFile struct {
	tour.Definition `yaml:",inline"`

	Timing *Timing      `yaml:"timing,omitempty"`
	Page   *layout.Page `yaml:"page,omitempty"`
}

// Timing overrides the engine's timing constants. Zero fields keep defaults.
type Timing struct {
	ResolveAttempts int           `yaml:"resolve_attempts,omitempty"`
	ResolveInterval time.Duration `yaml:"resolve_interval,omitempty"`
	ResizeDebounce  time.Duration `yaml:"resize_debounce,omitempty"`
	BodySettle      time.Duration `yaml:"body_settle,omitempty"`
	StandardSettle  time.Duration `yaml:"standard_settle,omitempty"`
	MenuSettle      time.Duration `yaml:"menu_settle,omitempty"`
	AnimationTick   time.Duration `yaml:"animation_tick,omitempty"`
}

// Apply copies the overrides into opts. A nil Timing changes nothing.
func (t *Timing) Apply(opts *tour.Options) {
	if t == nil {
		return
	}
	if t.ResolveAttempts > 0 {
		opts.Resolver.MaxAttempts = t.ResolveAttempts
	}
	if t.ResolveInterval > 0 {
		opts.Resolver.Interval = t.ResolveInterval
	}
	if t.ResizeDebounce > 0 {
		opts.ViewportOptions = append(opts.ViewportOptions, viewport.WithResizeDebounce(t.ResizeDebounce))
	}
	if t.BodySettle > 0 || t.StandardSettle > 0 || t.MenuSettle > 0 {
		if opts.Scroll.BodySettle == 0 && opts.Scroll.StandardSettle == 0 && opts.Scroll.MenuSettle == 0 {
			opts.Scroll = scroll.DefaultConfig()
		}
		if t.BodySettle > 0 {
			opts.Scroll.BodySettle = t.BodySettle
		}
		if t.StandardSettle > 0 {
			opts.Scroll.StandardSettle = t.StandardSettle
		}
		if t.MenuSettle > 0 {
			opts.Scroll.MenuSettle = t.MenuSettle
		}
	}
	if t.AnimationTick > 0 {
		opts.AnimationTick = t.AnimationTick
	}
}

// LoadTourFile reads and validates a tour file.
func LoadTourFile(path string) (*TourFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tour file: %w", err)
	}
	f, err := ParseTourFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseTourFile decodes and validates a tour file. Unknown fields are errors.
func ParseTourFile(r io.Reader) (*TourFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f TourFile
	if err := dec.Decode(&f); err != nil {
		return nil, tour.NewParseError(err)
	}
	if errs := tour.ValidateDefinition(f.Definition); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if f.Page != nil {
		if err := f.Page.Validate(); err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
	}
	if f.Timing != nil && f.Timing.ResolveAttempts < 0 {
		return nil, fmt.Errorf("timing: resolve_attempts must not be negative")
	}
	f.Definition = tour.Normalize(f.Definition)
	return &f, nil
}
