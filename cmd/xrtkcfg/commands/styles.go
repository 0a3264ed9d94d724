package commands

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all command output.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// MutedStyle marks defaulted values and secondary details.
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for confirmations.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error prefixes.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle marks corrupt entries.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// NameStyle is for attribute and module names.
	NameStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

// column left-aligns s in a cell of width characters.
func column(style lipgloss.Style, s string, width int) string {
	return style.Width(width).Render(s)
}

// widest returns the length of the longest item, at least minWidth.
func widest(minWidth int, items ...string) int {
	w := minWidth
	for _, s := range items {
		if n := lipgloss.Width(s); n > w {
			w = n
		}
	}
	return w
}
