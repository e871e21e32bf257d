package main

import (
	"strings"
	"testing"

	"github.com/muurk/tourguide/internal/placement"
	"github.com/muurk/tourguide/internal/server"
	"github.com/muurk/tourguide/internal/tour"
	"github.com/muurk/tourguide/internal/viewport"
)

func TestPreviewPresets(t *testing.T) {
	tests := []struct {
		name      string
		size      string
		wantStart string
		wantW     int
		wantH     int
		wantErr   bool
	}{
		{"named preset", "tablet", "tablet", 834, 1112, false},
		{"case insensitive", "Mobile", "mobile", 414, 896, false},
		{"custom size", "390x844", "custom", 390, 844, false},
		{"bad size", "huge", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presets, start, err := previewPresets(tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("previewPresets(%q) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			p := presets[start]
			if p.Name != tt.wantStart || p.Width != tt.wantW || p.Height != tt.wantH {
				t.Errorf("previewPresets(%q) start = %+v, want %s %dx%d", tt.size, p, tt.wantStart, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDescribeMessage(t *testing.T) {
	idx := 1
	tests := []struct {
		name string
		msg  server.Message
		want string
	}{
		{
			name: "step changed",
			msg:  server.Message{Type: server.TypeStepChanged, Index: &idx, Total: 3, Step: &tour.Step{ID: "search", Title: "Search"}},
			want: "step 2/3  Search",
		},
		{
			name: "step without title uses id",
			msg:  server.Message{Type: server.TypeStepChanged, Index: &idx, Total: 3, Step: &tour.Step{ID: "search"}},
			want: "step 2/3  search",
		},
		{
			name: "pending frame",
			msg:  server.Message{Type: server.TypeFrame, Frame: &tour.Frame{Pending: true, PositionKey: 4}},
			want: "frame #4 pending",
		},
		{
			name: "placed frame",
			msg: server.Message{Type: server.TypeFrame, Frame: &tour.Frame{
				PositionKey: 5,
				TargetFound: true,
				Viewport:    viewport.NewSnapshot(1280, 800),
				Placement:   placement.Result{Top: 300, Left: 400, Layout: placement.LayoutSide},
			}},
			want: "frame #5 side at 300,400",
		},
		{"completed", server.Message{Type: server.TypeCompleted}, "completed"},
		{"cleared", server.Message{Type: server.TypeCleared}, "cleared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeMessage(tt.msg); !strings.Contains(got, tt.want) {
				t.Errorf("describeMessage() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
