package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/tourguide/internal/store"
	"github.com/muurk/tourguide/internal/tour"
)

// StatusTable lists completion records.
type StatusTable struct {
	Records []store.Record
	Source  string // store location shown in the footer
	Width   int
}

// NewStatusTable creates a status table sized to the terminal.
func NewStatusTable(records []store.Record, source string) *StatusTable {
	return &StatusTable{Records: records, Source: source, Width: GetTerminalWidth()}
}

// Render returns the styled table as a string
func (s *StatusTable) Render() string {
	width := clampWidth(s.Width)

	if len(s.Records) == 0 {
		return NewWarningResult("No finished tours", Param{Key: "Store", Value: s.Source}).
			SetWidth(width).
			Render()
	}

	keyWidth := len("TOUR")
	for _, r := range s.Records {
		keyWidth = max(keyWidth, len(r.Key))
	}
	row := func(marker, key, outcome, finished, runs string) string {
		return fmt.Sprintf("%-2s %-*s  %-10s %-20s %s", marker, keyWidth, key, outcome, finished, runs)
	}

	lines := []string{TableHeaderStyle.Render(row("", "TOUR", "OUTCOME", "FINISHED", "RUNS"))}
	for _, r := range s.Records {
		marker, style := SuccessMarker, lipgloss.NewStyle().Foreground(SuccessColor)
		if r.Outcome == tour.OutcomeSkipped {
			marker, style = SkippedMarker, lipgloss.NewStyle().Foreground(WarningColor)
		}
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Local().Format("2006-01-02 15:04:05")
		}
		lines = append(lines, style.Render(row(marker, r.Key, string(r.Outcome), finished, fmt.Sprintf("%d", r.Runs))))
	}
	lines = append(lines, "", HeaderCommandStyle.Render(fmt.Sprintf("%d tour(s) · %s", len(s.Records), s.Source)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (s *StatusTable) String() string {
	return s.Render()
}
