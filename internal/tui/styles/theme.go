package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#2563EB") // blue
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Success   = lipgloss.Color("#22C55E") // green
	Warning   = lipgloss.Color("#F59E0B") // amber
	Error     = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Faint     = lipgloss.Color("#374151") // dark gray
	Text      = lipgloss.Color("#E5E7EB") // light gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(10)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	ActiveItem = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InactiveItem = lipgloss.NewStyle().
			Foreground(Muted)

	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	MapFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Faint)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Map glyphs
	DatasetDot  = lipgloss.NewStyle().Foreground(Faint)
	Pin         = lipgloss.NewStyle().Foreground(Success).Bold(true)
	SelectedPin = lipgloss.NewStyle().Foreground(Warning).Bold(true)
)
