package placement

import "strings"

// Style is the CSS a renderer applies to the tooltip panel. Empty fields are
// omitted.
type Style struct {
	Position  string `json:"position,omitempty"`
	Top       string `json:"top,omitempty"`
	Bottom    string `json:"bottom,omitempty"`
	Left      string `json:"left,omitempty"`
	Transform string `json:"transform,omitempty"`
	Width     string `json:"width,omitempty"`
	MaxHeight string `json:"max_height,omitempty"`
}

func absoluteStyle(top, left, width, maxHeight float64) Style {
	return Style{
		Position:  "absolute",
		Top:       px(top),
		Left:      px(left),
		Width:     px(width),
		MaxHeight: px(maxHeight),
	}
}

// CSS renders the declarations as an inline style string.
func (s Style) CSS() string {
	var b strings.Builder
	add := func(prop, val string) {
		if val == "" {
			return
		}
		b.WriteString(prop)
		b.WriteString(":")
		b.WriteString(val)
		b.WriteString(";")
	}
	add("position", s.Position)
	add("top", s.Top)
	add("bottom", s.Bottom)
	add("left", s.Left)
	add("transform", s.Transform)
	add("width", s.Width)
	add("max-height", s.MaxHeight)
	return b.String()
}
