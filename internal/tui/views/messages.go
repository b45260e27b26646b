package views

import (
	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/catalog"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/storage"
	"github.com/rendis/markview/internal/markermap"
	"github.com/rendis/markview/internal/model"
)

// Deps are the long-lived services shared by every view. Store may be nil
// when the cache could not be opened.
type Deps struct {
	Options markermap.Options
	Queue   *jobqueue.Queue
	Store   *storage.Store
	Catalog *catalog.Client
	Log     *logrus.Entry
}

// Navigation messages
type NavigateToHome struct{}
type NavigateToSearch struct{}
type NavigateToLoad struct{}
type NavigateToRecent struct{}

// NavigateToMap opens the map screen on a dataset. Path is set when the
// dataset came from a file.
type NavigateToMap struct {
	Title   string
	Markers []model.Marker
	Path    string
}
