package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "241"})

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "196"}).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Italic(true)
)

// Bold wraps text in a bold style.
func Bold(text string) string {
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// Indent indents text by level steps of two spaces.
func Indent(text string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(text)
}
