package geom

import (
	"math"
	"testing"
)

func TestRectEdges(t *testing.T) {
	r := Rect{Top: 10, Left: 20, Width: 30, Height: 40}

	if got := r.Bottom(); got != 50 {
		t.Errorf("Bottom() = %v, want 50", got)
	}
	if got := r.Right(); got != 50 {
		t.Errorf("Right() = %v, want 50", got)
	}
	if got := r.CenterX(); got != 35 {
		t.Errorf("CenterX() = %v, want 35", got)
	}
	if got := r.CenterY(); got != 30 {
		t.Errorf("CenterY() = %v, want 30", got)
	}
}

func TestRectArea(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want float64
	}{
		{"normal", Rect{Width: 10, Height: 5}, 50},
		{"zero width", Rect{Width: 0, Height: 5}, 0},
		{"negative height", Rect{Width: 10, Height: -5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Area(); got != tt.want {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectWithin(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"inside", Rect{Top: 10, Left: 10, Width: 10, Height: 10}, true},
		{"touching edges", Rect{Top: 0, Left: 0, Width: 100, Height: 100}, true},
		{"above", Rect{Top: -1, Left: 10, Width: 10, Height: 10}, false},
		{"past right", Rect{Top: 10, Left: 95, Width: 10, Height: 10}, false},
		{"below", Rect{Top: 95, Left: 10, Width: 10, Height: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Within(100, 100); got != tt.want {
				t.Errorf("Within() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectFinite(t *testing.T) {
	if !(Rect{Top: 1, Left: 2, Width: 3, Height: 4}).Finite() {
		t.Error("Finite() = false for ordinary rect")
	}
	if (Rect{Top: math.NaN()}).Finite() {
		t.Error("Finite() = true for NaN top")
	}
	if (Rect{Width: math.Inf(1)}).Finite() {
		t.Error("Finite() = true for Inf width")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %v, want 5", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5, 0, 10) = %v, want 0", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15, 0, 10) = %v, want 10", got)
	}
	// Inverted bounds: lower bound wins.
	if got := Clamp(15, 8, 4); got != 8 {
		t.Errorf("Clamp(15, 8, 4) = %v, want 8", got)
	}
}

func TestRectInsetTranslate(t *testing.T) {
	r := Rect{Top: 10, Left: 10, Width: 20, Height: 20}.Inset(5).Translate(Point{X: 1, Y: 2})
	want := Rect{Top: 7, Left: 6, Width: 30, Height: 30}
	if r != want {
		t.Errorf("Inset/Translate = %v, want %v", r, want)
	}
}
