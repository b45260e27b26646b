package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/markview/internal/engine/dataset"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/tui/styles"
)

// RecentEntry is either a stored catalog search (SearchID > 0) or a dataset
// file opened earlier.
type RecentEntry struct {
	SearchID int64
	Title    string
	Path     string
	Markers  int
	OpenedAt time.Time
}

type recentFailedMsg struct{ err error }

type RecentModel struct {
	deps    *Deps
	entries []RecentEntry
	cursor  int
	loading bool
	err     error
}

// NewRecentModel lists the stored searches first, newest first, followed
// by the given recent files.
func NewRecentModel(deps *Deps, files []RecentEntry) RecentModel {
	m := RecentModel{deps: deps}

	if deps.Store != nil {
		searches, err := deps.Store.ListSearches()
		if err != nil {
			m.err = err
		}
		for _, s := range searches {
			m.entries = append(m.entries, RecentEntry{
				SearchID: s.ID,
				Title:    s.Query,
				Markers:  s.Markers,
				OpenedAt: parseStoredTime(s.CreatedAt),
			})
		}
	}
	m.entries = append(m.entries, files...)
	return m
}

func (m RecentModel) Init() tea.Cmd {
	return nil
}

func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recentFailedMsg:
		m.loading = false
		m.err = msg.err
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			m.cursor = max(m.cursor-1, 0)
		case "down", "j":
			m.cursor = max(min(m.cursor+1, len(m.entries)-1), 0)
		case "enter":
			if m.cursor < len(m.entries) {
				m.loading = true
				m.err = nil
				return m, openRecent(m.deps, m.entries[m.cursor])
			}
		case "esc":
			return m, navigate(NavigateToHome{})
		}
	}
	return m, nil
}

func openRecent(deps *Deps, e RecentEntry) tea.Cmd {
	return func() tea.Msg {
		var (
			markers []model.Marker
			err     error
		)
		if e.SearchID > 0 {
			markers, err = deps.Store.LoadMarkers(e.SearchID)
			if err != nil {
				return recentFailedMsg{err: err}
			}
			return NavigateToMap{Title: e.Title, Markers: markers}
		}

		markers, err = dataset.ReadFile(e.Path)
		if err != nil {
			return recentFailedMsg{err: err}
		}
		return NavigateToMap{Title: filepath.Base(e.Path), Markers: markers, Path: e.Path}
	}
}

func (m RecentModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Recent Datasets"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No recent searches or files"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	start, end := listWindow(m.cursor, len(m.entries), 12, 9)
	detailStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	for i := start; i < end; i++ {
		entry := m.entries[i]
		style := itemStyle(i == m.cursor)

		var name, detail string
		if entry.SearchID > 0 {
			name = style.Render("🔎 " + entry.Title)
			detail = fmt.Sprintf("search #%d • %d markers", entry.SearchID, entry.Markers)
		} else {
			if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
				style = lipgloss.NewStyle().Foreground(styles.Error).Strikethrough(true)
			}
			name = style.Render("📄 " + filepath.Base(entry.Path))
			detail = fmt.Sprintf("%s • %d markers", filepath.Dir(entry.Path), entry.Markers)
		}
		if !entry.OpenedAt.IsZero() {
			detail += "  " + timeAgo(entry.OpenedAt)
		}

		b.WriteString(listRow(i == m.cursor, name))
		b.WriteString(detailStyle.Render("    "+detail) + "\n")
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Render("Loading..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusBar.Render("enter open • esc back"))

	return styles.Border.Render(b.String())
}

// parseStoredTime accepts both the raw SQLite timestamp and the RFC 3339
// form the driver produces for DATETIME columns.
func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
