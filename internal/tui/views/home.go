package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/markview/internal/tui/styles"
)

type menuItem struct {
	key    string
	label  string
	desc   string
	action tea.Cmd
}

func navigate(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

type HomeModel struct {
	items   []menuItem
	cursor  int
	version string
}

func NewHomeModel(version string) HomeModel {
	return HomeModel{
		version: version,
		items: []menuItem{
			{"s", "Search", "Query the catalog and show results on the map", navigate(NavigateToSearch{})},
			{"l", "Load Dataset", "Open a .json or .csv marker file", navigate(NavigateToLoad{})},
			{"r", "Recent", "Stored searches and recent files", navigate(NavigateToRecent{})},
			{"q", "Quit", "Exit markview", tea.Quit},
		},
	}
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := km.String(); k {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.items)-1)
	case "enter":
		return m, m.items[m.cursor].action
	default:
		for i, item := range m.items {
			if item.key == k {
				m.cursor = i
				return m, item.action
			}
		}
	}
	return m, nil
}

func (m HomeModel) View() string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("  markview"))
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(" " + m.version))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Secondary).Italic(true).
		Render("  Map markers without the pile-ups"))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	for i, item := range m.items {
		b.WriteString(listRow(i == m.cursor,
			fmt.Sprintf("%s %s%s",
				keyStyle.Render("["+item.key+"]"),
				itemStyle(i == m.cursor).Render(item.label),
				descStyle.Render(" - "+item.desc))))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter select • q quit"))

	return styles.Border.Render(b.String())
}

// listRow prefixes a line with the selection cursor.
func listRow(selected bool, line string) string {
	if selected {
		return "> " + line + "\n"
	}
	return "  " + line + "\n"
}

func itemStyle(selected bool) lipgloss.Style {
	if selected {
		return styles.ActiveItem
	}
	return styles.InactiveItem
}

// listWindow returns the visible [start, end) slice of a list of n items
// so that the cursor stays on screen with lead rows of context above it.
func listWindow(cursor, n, size, lead int) (start, end int) {
	if cursor > lead {
		start = cursor - lead
	}
	end = min(start+size, n)
	return start, end
}
