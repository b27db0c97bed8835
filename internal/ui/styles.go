package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorCyan      = lipgloss.Color("87")
	ColorMoney     = lipgloss.Color("220") // Gold

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)
	StyleMoney   = lipgloss.NewStyle().Foreground(ColorMoney).Bold(true)

	// Components
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	// Dashboard rows
	StyleRowActive = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleRowNormal = lipgloss.NewStyle().Foreground(ColorText)
	StyleRowDone   = lipgloss.NewStyle().Foreground(ColorSecondary).Strikethrough(true)
	StyleHelp      = lipgloss.NewStyle().Foreground(ColorSecondary)
)

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}

// CheckMark renders the completion state of a task.
func CheckMark(done bool) string {
	if done {
		return Icon("✔", StyleSuccess)
	}
	return Icon("○", StyleSubtle)
}
