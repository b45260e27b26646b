package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/catalog"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/storage"
	"github.com/rendis/markview/internal/markermap"
	"github.com/rendis/markview/internal/pkg/config"
	"github.com/rendis/markview/internal/pkg/metrics"
	"github.com/rendis/markview/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewMap
	viewFilePicker
	viewRecent
)

// App is the root bubbletea model.
type App struct {
	deps        *views.Deps
	currentView viewID
	width       int
	height      int
	home        views.HomeModel
	mapScreen   views.MapScreenModel
	filePicker  views.FilePickerModel
	recent      views.RecentModel
}

func NewApp(deps *views.Deps, version string) App {
	return App{
		deps:        deps,
		currentView: viewHome,
		home:        views.NewHomeModel(version),
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	case views.NavigateToSearch:
		a.currentView = viewMap
		a.mapScreen = views.NewMapScreenModel(a.deps, "", nil, true)
		return a, tea.Batch(a.mapScreen.Init(), a.sizeCmd())
	case views.NavigateToLoad:
		a.currentView = viewFilePicker
		a.filePicker = views.NewFilePickerModel("")
		return a, a.filePicker.Init()
	case views.NavigateToMap:
		a.currentView = viewMap
		a.mapScreen = views.NewMapScreenModel(a.deps, msg.Title, msg.Markers, false)
		if msg.Path != "" {
			if err := SaveRecent(msg.Path, len(msg.Markers), time.Now()); err != nil {
				a.deps.Log.WithError(err).Warn("could not record recent file")
			}
		}
		return a, tea.Batch(a.mapScreen.Init(), a.sizeCmd())
	case views.NavigateToRecent:
		a.currentView = viewRecent
		var files []views.RecentEntry
		for _, e := range LoadRecent() {
			files = append(files, views.RecentEntry{
				Path:     e.Path,
				Markers:  e.Markers,
				OpenedAt: e.OpenedAt,
			})
		}
		a.recent = views.NewRecentModel(a.deps, files)
		return a, a.recent.Init()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case viewHome:
		var m tea.Model
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewMap:
		var m tea.Model
		m, cmd = a.mapScreen.Update(msg)
		a.mapScreen = m.(views.MapScreenModel)
	case viewFilePicker:
		var m tea.Model
		m, cmd = a.filePicker.Update(msg)
		a.filePicker = m.(views.FilePickerModel)
	case viewRecent:
		var m tea.Model
		m, cmd = a.recent.Update(msg)
		a.recent = m.(views.RecentModel)
	}

	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewMap:
		content = a.mapScreen.View()
	case viewFilePicker:
		content = a.filePicker.View()
	case viewRecent:
		content = a.recent.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// sizeCmd sends a WindowSizeMsg so newly created views get the current terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI. The filter queue and the search cache live for the
// whole session and are closed on exit.
func Run(cfg *config.Config, log *logrus.Entry, version string) error {
	reg := metrics.New()
	queue := jobqueue.New(
		jobqueue.WithLogger(log.WithField("component", "jobqueue")),
		jobqueue.WithMetrics(reg),
	)
	defer queue.Close()

	store, err := storage.NewStore(cfg.Storage.DBPath)
	if err != nil {
		log.WithError(err).WithField("db", cfg.Storage.DBPath).Warn("search cache disabled")
		store = nil
	} else {
		defer store.Close()
	}

	deps := &views.Deps{
		Options: markermap.OptionsFromConfig(cfg.Map),
		Queue:   queue,
		Store:   store,
		Catalog: catalog.NewClient(cfg.Catalog),
		Log:     log,
	}

	opts := []tea.ProgramOption{}
	if cfg.Map.FullscreenControl {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(NewApp(deps, version), opts...)
	_, err = p.Run()

	st := queue.Stats()
	log.WithFields(logrus.Fields{
		"submitted": st.Submitted.Load(),
		"resolved":  st.Resolved.Load(),
		"dropped":   st.Dropped.Load(),
	}).Info("session finished")
	return err
}
