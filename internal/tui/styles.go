package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#7D56F4")
	muted     = lipgloss.Color("#808080")
	success   = lipgloss.Color("#04B575")
	danger    = lipgloss.Color("#FF5F87")
	highlight = lipgloss.Color("#EE6FF8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(primary).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(highlight).Bold(true).Underline(true).Padding(0, 1)

	labelStyle  = lipgloss.NewStyle().Width(10).Foreground(muted)
	cursorStyle = lipgloss.NewStyle().Foreground(highlight).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
	descStyle   = lipgloss.NewStyle().Foreground(muted).PaddingLeft(8)
	hintStyle   = lipgloss.NewStyle().Foreground(muted)

	infoStyle  = lipgloss.NewStyle().Foreground(success)
	errorStyle = lipgloss.NewStyle().Foreground(danger)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1).
			MarginTop(1)

	spinnerStyle = lipgloss.NewStyle().Foreground(primary)
)
