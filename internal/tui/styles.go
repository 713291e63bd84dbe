package tui

import "github.com/charmbracelet/lipgloss"

// Exported constants.
const (
	// ProgressBarWidth is the default width of the progress bar
	ProgressBarWidth = 40
	// MaxProgressBarWidth is the maximum width the bar grows to on resize
	MaxProgressBarWidth = 100
	// TickIntervalMs is the interval for tick messages in milliseconds
	TickIntervalMs = 100
)

// TitleStyle returns the style for the screen title
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(primaryColorCode)).
		MarginBottom(1)
}

// LabelStyle returns the style for counter labels
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(highlightColorCode)).
		Bold(true)
}

// DimStyle returns the style for dimmed text
func DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(dimColorCode))
}

// SuccessStyle returns the style for success messages
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(successColorCode)).
		Bold(true)
}

// ErrorStyle returns the style for error messages
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(errorColorCode)).
		Bold(true)
}

// WarningStyle returns the style for warning messages
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(warningColorCode)).
		Bold(true)
}

// unexported constants.
const (
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	primaryColorCode   = "205" // Pink/purple
	successColorCode   = "42"  // Green
	warningColorCode   = "226" // Yellow
)
