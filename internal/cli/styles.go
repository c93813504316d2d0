// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4") // Teal
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#95E1D3")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	successStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	subtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)

// FormatTitle renders a section title.
func FormatTitle(text string) string {
	return titleStyle.Render(text)
}

// FormatSuccess renders a success message.
func FormatSuccess(text string) string {
	return successStyle.Render(text)
}

// FormatWarning renders a warning message.
func FormatWarning(text string) string {
	return warningStyle.Render(text)
}

// FormatError renders an error message.
func FormatError(text string) string {
	return errorStyle.Render(text)
}

// FormatSubtle renders de-emphasized text.
func FormatSubtle(text string) string {
	return subtleStyle.Render(text)
}

// RenderBox renders titled content inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(fmt.Sprintf("%s\n\n%s", FormatTitle(title), content))
}
