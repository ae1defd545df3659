package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, as hex true-color values.
const (
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorRed      lipgloss.Color = "#f38ba8"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorBase     lipgloss.Color = "#1e1e2e"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	choiceStyle  = lipgloss.NewStyle().Foreground(colorText)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(colorLavender)

	nodeIdleStyle    = lipgloss.NewStyle().Foreground(colorOverlay1).Padding(0, 1)
	nodeVisitedStyle = lipgloss.NewStyle().Foreground(colorBlue).Padding(0, 1)
	nodeActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBase).Background(colorYellow).Padding(0, 1)
	nodeCursorStyle  = lipgloss.NewStyle().Underline(true)
)
