package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/rendis/markview/internal/engine/dataset"
	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/markermap"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/tui/components"
	"github.com/rendis/markview/internal/tui/styles"
)

type focusArea int

const (
	focusMap focusArea = iota
	focusSearch
	focusTable
)

// panStep is how far one arrow press moves the map, in rows. Columns move
// twice as far since cells are twice as tall as wide.
const panStep = 4

type filterDoneMsg struct {
	ID   uint64
	Kept []overlap.MarkerData
	Err  error
}

type resizeFlushMsg struct{}

// MapScreenModel shows the map surface, the search form and a table of the
// markers that survived the last filtering pass.
type MapScreenModel struct {
	deps     *Deps
	title    string
	markers  []model.Marker
	shown    []dataset.Row
	mapView  *components.MapView
	mmap     *markermap.Map
	throttle *markermap.Throttle
	search   SearchModel
	table    table.Model
	bar      progress.Model
	focus    focusArea
	lastJob  uint64
	width    int
	height   int
	err      error
}

func NewMapScreenModel(deps *Deps, title string, markers []model.Marker, searchFirst bool) MapScreenModel {
	mv := components.NewMapView(deps.Options.Viewport(80*components.CellWidth, 20*components.CellHeight))

	m := MapScreenModel{
		deps:     deps,
		title:    title,
		mapView:  mv,
		throttle: markermap.NewThrottle(markermap.ResizeInterval),
		search:   NewSearchModel(),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(24),
			progress.WithoutPercentage(),
		),
		table: table.New(
			table.WithFocused(false),
			table.WithHeight(6),
		),
	}
	m.table.SetStyles(unfocusedTableStyles())
	m.buildTable(nil)

	m.mmap, m.err = markermap.New(mv, deps.Queue, deps.Options, deps.Log.WithField("component", "markermap"))
	if m.err == nil {
		m.setDataset(markers)
	}

	if searchFirst {
		m.focus = focusSearch
		m.search.Focus()
	}
	return m
}

func (m MapScreenModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.focus == focusSearch {
		cmds = append(cmds, m.search.Focus())
	}
	if m.mmap != nil && len(m.markers) > 0 {
		cmds = append(cmds, waitFor(m.mmap.RenderMarkers()))
	}
	return tea.Batch(cmds...)
}

// waitFor turns a pending filter job into a command. There is no deadline:
// a job the worker never answers leaves the markers as they are.
func waitFor(p *jobqueue.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		kept, err := p.Wait(context.Background())
		return filterDoneMsg{ID: p.ID(), Kept: kept, Err: err}
	}
}

func (m *MapScreenModel) handle(ev markermap.Event) tea.Cmd {
	if m.mmap == nil {
		return nil
	}
	return waitFor(m.mmap.Handle(ev))
}

func (m *MapScreenModel) setDataset(markers []model.Marker) {
	m.markers = markers
	m.mapView.SetDataset(markers)
	m.mmap.SetMarkersData(markers)

	if len(markers) == 0 {
		return
	}
	bounds := m.mapView.Viewport().LatLngBounds()
	inView := lo.ContainsBy(markers, func(mk model.Marker) bool {
		return bounds.Contains(orb.Point{mk.Lon, mk.Lat})
	})
	if !inView {
		m.mapView.CenterOn(model.LatLng{Lat: markers[0].Lat, Lng: markers[0].Lon})
	}
}

func (m *MapScreenModel) zoom(delta int) tea.Cmd {
	z := m.mapView.Viewport().Zoom() + delta
	if z < geo.MinZoom || z > geo.MaxZoom {
		return nil
	}
	m.handle(markermap.ZoomStarted)
	m.mapView.Zoom(delta)
	return m.handle(markermap.ZoomEnded)
}

func (m *MapScreenModel) resized(now time.Time) tea.Cmd {
	run, trailing := m.throttle.Allow(now)
	if run {
		return m.handle(markermap.ViewportResized)
	}
	if trailing > 0 {
		return tea.Tick(trailing, func(time.Time) tea.Msg { return resizeFlushMsg{} })
	}
	return nil
}

func (m MapScreenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, m.resized(time.Now())

	case resizeFlushMsg:
		m.throttle.Flush()
		return m, m.handle(markermap.ViewportResized)

	case filterDoneMsg:
		// Each wait runs in its own command, so results can arrive out of
		// queue order. Anything older than what is drawn is stale.
		if msg.ID <= m.lastJob {
			return m, nil
		}
		m.lastJob = msg.ID
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.mmap.ShowFiltered(msg.Kept)
		m.shown = dataset.Survivors(m.markers, msg.Kept)
		m.buildTable(m.shown)
		if m.focus == focusTable {
			m.mapView.SetSelected(m.table.Cursor())
		}
		return m, nil

	case searchSubmittedMsg:
		if m.mmap != nil {
			m.mmap.RemoveMarkers()
		}
		m.shown = nil
		m.buildTable(nil)
		m.focus = focusMap
		return m, loadSearch(m.deps, msg.Query)

	case datasetLoadedMsg:
		m.search.Finish(msg)
		if msg.Err != nil || m.mmap == nil {
			return m, nil
		}
		m.title = msg.Query
		m.err = nil
		m.setDataset(msg.Markers)
		return m, waitFor(m.mmap.RenderMarkers())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusSearch:
			if key == "esc" {
				m.search.Blur()
				m.focus = focusMap
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			if !m.search.Focused() {
				m.focus = focusMap
			}
			return m, cmd

		case focusTable:
			switch key {
			case "esc", "tab":
				m.focus = focusMap
				m.table.Blur()
				m.table.SetStyles(unfocusedTableStyles())
				m.mapView.SetSelected(-1)
				return m, nil
			}
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			m.mapView.SetSelected(m.table.Cursor())
			return m, cmd

		default:
			switch key {
			case "esc", "q":
				return m, navigate(NavigateToHome{})
			case "/":
				m.focus = focusSearch
				return m, m.search.Focus()
			case "tab":
				if len(m.shown) > 0 {
					m.focus = focusTable
					m.table.Focus()
					m.table.SetStyles(focusedTableStyles())
					m.mapView.SetSelected(m.table.Cursor())
				}
				return m, nil
			case "up", "k":
				m.mapView.Pan(0, -panStep)
				return m, m.handle(markermap.ViewportMoved)
			case "down", "j":
				m.mapView.Pan(0, panStep)
				return m, m.handle(markermap.ViewportMoved)
			case "left", "h":
				m.mapView.Pan(-2*panStep, 0)
				return m, m.handle(markermap.ViewportMoved)
			case "right", "l":
				m.mapView.Pan(2*panStep, 0)
				return m, m.handle(markermap.ViewportMoved)
			case "+", "=":
				return m, m.zoom(1)
			case "-", "_":
				return m, m.zoom(-1)
			case "c":
				if len(m.markers) > 0 {
					m.mapView.CenterOn(model.LatLng{Lat: m.markers[0].Lat, Lng: m.markers[0].Lon})
					return m, m.handle(markermap.ViewportMoved)
				}
			}
		}
	}

	return m, nil
}

func (m *MapScreenModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	tableH := 6
	// title, search, frame, status, table header and help
	rows := m.height - tableH - 11
	cols := m.width - 4
	m.mapView.SetSize(max(cols, 10), max(rows, 5))
	m.table.SetWidth(max(cols, 10))
	m.table.SetHeight(tableH)
	m.buildTable(m.shown)
}

func (m *MapScreenModel) buildTable(rows []dataset.Row) {
	nameW := 30
	idW := 24
	if m.width > 100 {
		extra := m.width - 100
		nameW += extra * 6 / 10
		idW += extra * 2 / 10
	}

	m.table.SetColumns([]table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: nameW},
		{Title: "ID", Width: idW},
		{Title: "Lat", Width: 11},
		{Title: "Lon", Width: 11},
	})

	tr := make([]table.Row, len(rows))
	for i, r := range rows {
		tr[i] = table.Row{
			strconv.Itoa(i + 1),
			truncate(r.Name, nameW),
			truncate(r.ID, idW),
			strconv.FormatFloat(r.Lat, 'f', 6, 64),
			strconv.FormatFloat(r.Lon, 'f', 6, 64),
		}
	}
	m.table.SetRows(tr)
}

func (m MapScreenModel) View() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "no dataset"
	}
	b.WriteString(styles.Subtitle.Render("Map: " + title))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(styles.MapFrame.Render(m.mapView.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	if len(m.shown) > 0 {
		b.WriteString(m.table.View())
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).Render("No markers in view"))
	}
	b.WriteString("\n")

	var help string
	switch m.focus {
	case focusSearch:
		help = "enter search • esc back to map"
	case focusTable:
		help = "↑↓ select marker • tab/esc back to map"
	default:
		help = "←↑↓→ pan • +/- zoom • c centre • / search • tab markers • esc home"
	}
	b.WriteString(styles.StatusBar.Render(help))

	return b.String()
}

func (m MapScreenModel) renderStatus() string {
	total := len(m.markers)
	shown := len(m.mapView.Drawn())

	var pct float64
	if total > 0 {
		pct = float64(shown) / float64(total)
	}

	st := m.deps.Queue.Stats()
	submitted, resolved := st.Submitted.Load(), st.Resolved.Load()

	stats := fmt.Sprintf("  %s %d/%d shown  %s z%d  %s %d/%d",
		styles.Label.UnsetWidth().Render("markers"), shown, total,
		styles.Label.UnsetWidth().Render("zoom"), m.mapView.Viewport().Zoom(),
		styles.Label.UnsetWidth().Render("jobs"), resolved, submitted)
	if pending := submitted - resolved; pending > 0 {
		stats += lipgloss.NewStyle().Foreground(styles.Warning).Render(fmt.Sprintf("  (%d pending)", pending))
	}

	return m.bar.ViewAs(pct) + stats
}

func focusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

func unfocusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Muted)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Bold(false)
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
