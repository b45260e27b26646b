package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/markview/internal/engine/dataset"
	"github.com/rendis/markview/internal/tui/styles"
)

type fileFailedMsg struct{ err error }

type FilePickerModel struct {
	dir     string
	files   []os.DirEntry
	cursor  int
	loading bool
	err     error
}

func NewFilePickerModel(dir string) FilePickerModel {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	m := FilePickerModel{dir: dir}
	m.loadDir()
	return m
}

func isDatasetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".csv":
		return true
	}
	return false
}

func (m *FilePickerModel) loadDir() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.err = err
		return
	}

	m.err = nil
	m.files = nil
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() || isDatasetFile(name) {
			m.files = append(m.files, e)
		}
	}
	m.cursor = 0
}

func (m FilePickerModel) Init() tea.Cmd {
	return nil
}

func (m FilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileFailedMsg:
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
			m.cursor = max(min(m.cursor+1, len(m.files)-1), 0)
		case "enter":
			return m.open()
		case "backspace":
			if parent := filepath.Dir(m.dir); parent != m.dir {
				m.dir = parent
				m.loadDir()
			}
		case "esc":
			return m, navigate(NavigateToHome{})
		}
	}
	return m, nil
}

// open descends into a directory or starts reading the selected dataset.
func (m FilePickerModel) open() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.files) {
		return m, nil
	}
	entry := m.files[m.cursor]
	path := filepath.Join(m.dir, entry.Name())
	if entry.IsDir() {
		m.dir = path
		m.loadDir()
		return m, nil
	}
	m.loading = true
	m.err = nil
	return m, openFile(path)
}

func openFile(path string) tea.Cmd {
	return func() tea.Msg {
		markers, err := dataset.ReadFile(path)
		if err != nil {
			return fileFailedMsg{err: err}
		}
		return NavigateToMap{Title: filepath.Base(path), Markers: markers, Path: path}
	}
}

func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Load Dataset"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(m.dir))
	b.WriteString("\n\n")

	if len(m.files) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No .json/.csv files or directories found"))
		b.WriteString("\n")
	}

	start, end := listWindow(m.cursor, len(m.files), 15, 12)
	for i := start; i < end; i++ {
		entry := m.files[i]
		icon := "📄 "
		if entry.IsDir() {
			icon = "📁 "
		}
		b.WriteString(listRow(i == m.cursor, icon+itemStyle(i == m.cursor).Render(entry.Name())))
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Render("Reading dataset..."))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusBar.Render("enter open • backspace parent dir • esc back"))

	return styles.Border.Render(b.String())
}
