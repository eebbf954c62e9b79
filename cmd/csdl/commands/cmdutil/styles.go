package cmdutil

import "github.com/charmbracelet/lipgloss"

const (
	colorGreen  = "#10B981"
	colorYellow = "#F59E0B"
	colorRed    = "#EF4444"
	colorPurple = "#7C3AED"
	colorGray   = "#6B7280"
)

var (
	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPurple))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGreen)).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorYellow))

	FailureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// Verdict renders a pass or fail line.
func Verdict(ok bool, pass, fail string) string {
	if ok {
		return SuccessStyle.Render("✅ " + pass)
	}
	return FailureStyle.Render("❌ " + fail)
}
