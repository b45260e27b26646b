package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/tui/styles"
)

const searchTimeout = 30 * time.Second

// SearchModel is the query form on top of the map. Blank queries are
// ignored; a submitted query shows a spinner until the dataset arrives.
type SearchModel struct {
	input   textinput.Model
	spinner spinner.Model
	loading bool
	query   string
	note    string
	err     string
}

type searchSubmittedMsg struct {
	Query string
}

type datasetLoadedMsg struct {
	Query   string
	Markers []model.Marker
	Cached  bool
	Err     error
}

func NewSearchModel() SearchModel {
	ti := textinput.New()
	ti.Placeholder = "cafe, pharmacy, ..."
	ti.Prompt = "search › "
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Secondary)

	return SearchModel{input: ti, spinner: sp}
}

func (m SearchModel) Focused() bool { return m.input.Focused() }

func (m SearchModel) Loading() bool { return m.loading }

func (m *SearchModel) Focus() tea.Cmd {
	m.input.Focus()
	return textinput.Blink
}

func (m *SearchModel) Blur() {
	m.input.Blur()
}

// Finish clears the loading state once a search has completed.
func (m *SearchModel) Finish(msg datasetLoadedMsg) {
	m.loading = false
	m.note = ""
	if msg.Err != nil {
		m.err = msg.Err.Error()
		return
	}
	m.err = ""
	if msg.Cached {
		m.note = "catalog unreachable, showing cached results"
	}
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "enter" && m.input.Focused() {
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.loading {
				return m, nil
			}
			m.loading = true
			m.query = q
			m.err = ""
			m.note = ""
			m.input.Blur()
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return searchSubmittedMsg{Query: q}
			})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SearchModel) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())

	switch {
	case m.loading:
		b.WriteString("  " + m.spinner.View())
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(fmt.Sprintf(" loading %q...", m.query)))
	case m.err != "":
		b.WriteString("  " + styles.ErrorText.Render("Error: "+m.err))
	case m.note != "":
		b.WriteString("  " + lipgloss.NewStyle().Foreground(styles.Warning).Render(m.note))
	}
	return b.String()
}

// loadSearch asks the catalog first and stores the answer; when the catalog
// fails the newest stored result for the query is used instead.
func loadSearch(deps *Deps, query string) tea.Cmd {
	return func() tea.Msg {
		log := deps.Log.WithField("query", query)

		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		markers, err := deps.Catalog.Search(ctx, query)
		if err == nil {
			if deps.Store != nil {
				if _, serr := deps.Store.SaveSearch(query, markers); serr != nil {
					log.WithError(serr).Warn("caching search failed")
				}
			}
			log.WithField("markers", len(markers)).Info("catalog search done")
			return datasetLoadedMsg{Query: query, Markers: markers}
		}

		log.WithError(err).Warn("catalog search failed")
		if deps.Store != nil {
			cached, ok, cerr := deps.Store.LatestSearch(query)
			if cerr == nil && ok {
				return datasetLoadedMsg{Query: query, Markers: cached, Cached: true}
			}
		}
		return datasetLoadedMsg{Query: query, Err: err}
	}
}
