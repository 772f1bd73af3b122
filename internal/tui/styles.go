package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Green Buddy palette: leafy accent over a neutral base.
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	leafStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22c55e"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	senderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86efac")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0c1a10")).
			Background(lipgloss.Color("#4ade80")).
			Bold(true).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ade80"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))
)

func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
