package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
	surfaceColor = lipgloss.Color("#1F2937")
	textColor    = lipgloss.Color("#F9FAFB")
	bandColor    = lipgloss.Color("#312E81")

	// barColors is indexed by a hash of the task id.
	barColors = []lipgloss.Color{
		lipgloss.Color("#60A5FA"),
		lipgloss.Color("#10B981"),
		lipgloss.Color("#F472B6"),
		lipgloss.Color("#FBBF24"),
		lipgloss.Color("#A78BFA"),
		lipgloss.Color("#FB923C"),
	}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	noticeStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)

	labelStyle    = lipgloss.NewStyle().Foreground(textColor)
	selectedLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(surfaceColor)

	bandStyle     = lipgloss.NewStyle().Background(bandColor)
	boundaryStyle = lipgloss.NewStyle().Foreground(surfaceColor)
	draggingStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
)

func barStyle(taskID string) lipgloss.Style {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return lipgloss.NewStyle().Foreground(barColors[h%uint32(len(barColors))])
}
