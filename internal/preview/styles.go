package preview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tourguide/internal/version"
)

// Application branding constants
const (
	AppName   = "TOURGUIDE PREVIEW"
	GitHubURL = "github.com/muurk/tourguide"
)

// AppVersion returns the build version.
func AppVersion() string {
	return version.Short()
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60
	MaxCanvasWidth   = 100
	DefaultWidth     = 80
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	AccentColor    = lipgloss.Color("#FF8B94") // Pink
	WarningColor   = lipgloss.Color("#FFA500") // Orange

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

var (
	// Header line
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// Secondary text next to the header
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Viewport canvas frame
	CanvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor)

	// Tour panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	PanelBodyStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// Status bar under the canvas
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 1)

	// Finished tour banners
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor)

	// Help text style
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0, 0, 0)
)

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent(tourName string) string {
	left := HeaderStyle.Render(AppName + " v" + AppVersion())
	right := SubtitleStyle.Render(tourName + "  " + GitHubURL)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}
