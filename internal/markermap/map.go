// Package markermap wires a map surface to the filter queue: it turns the
// marker dataset into pixel boxes on every viewport change, submits them for
// filtering and draws whatever survives.
package markermap

import (
	"context"
	"io"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/model"
)

// Surface is the map surface provider: it owns projection and drawing.
type Surface interface {
	ProjectToPixel(lat, lon float64) (x, y float64)
	ViewportSize() (width, height float64)
	DrawMarkerAt(lat, lon float64)
	RemoveAllMarkers()
}

type Submitter interface {
	Submit(markers []overlap.MarkerData, bounds geo.BBox, margin float64) *jobqueue.Pending
}

type Event int

const (
	ViewportResized Event = iota
	ViewportMoved
	ZoomStarted
	ZoomEnded
)

func (e Event) String() string {
	switch e {
	case ViewportResized:
		return "resize"
	case ViewportMoved:
		return "moveend"
	case ZoomStarted:
		return "zoomstart"
	case ZoomEnded:
		return "zoomend"
	default:
		return "unknown"
	}
}

type Map struct {
	surface Surface
	queue   Submitter
	opts    Options
	log     *logrus.Entry

	markers  []model.Marker
	bounds   geo.BBox
	handlers map[Event]func() *jobqueue.Pending
}

// New validates opts and binds the event handlers. A *ConfigurationError is
// returned when ContainerID or Center is missing.
func New(surface Surface, queue Submitter, opts Options, log *logrus.Entry) (*Map, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.MarkerIconSize.Width <= 0 || opts.MarkerIconSize.Height <= 0 {
		opts.MarkerIconSize = geo.DefaultIconSize
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}

	m := &Map{
		surface: surface,
		queue:   queue,
		opts:    opts,
		log:     log.WithField("container", opts.ContainerID),
	}
	m.handlers = map[Event]func() *jobqueue.Pending{
		ViewportResized: m.onViewChange,
		ViewportMoved:   m.onViewChange,
		ZoomStarted:     m.onZoomStart,
		ZoomEnded:       m.onZoomEnd,
	}
	m.updateBounds()
	return m, nil
}

func (m *Map) Options() Options { return m.opts }

// Markers returns the current dataset.
func (m *Map) Markers() []model.Marker { return m.markers }

// SetMarkersData replaces the dataset. Nothing is drawn until the next
// render.
func (m *Map) SetMarkersData(markers []model.Marker) {
	m.markers = markers
}

// Handle runs the handler bound to ev. The returned handle is nil when the
// event does not trigger a filtering pass.
func (m *Map) Handle(ev Event) *jobqueue.Pending {
	h, ok := m.handlers[ev]
	if !ok {
		m.log.WithField("event", ev).Warn("unhandled map event")
		return nil
	}
	m.log.WithField("event", ev).Debug("map event")
	return h()
}

// RenderMarkers projects the dataset against the current viewport and
// submits it for filtering.
func (m *Map) RenderMarkers() *jobqueue.Pending {
	m.updateBounds()
	icon := m.opts.MarkerIconSize
	data := lo.Map(m.markers, func(mk model.Marker, _ int) overlap.MarkerData {
		x, y := m.surface.ProjectToPixel(mk.Lat, mk.Lon)
		return overlap.MarkerData{
			Lat:  mk.Lat,
			Lng:  mk.Lon,
			BBox: geo.FromAnchor(x, y, icon),
		}
	})
	return m.queue.Submit(data, m.bounds, m.opts.VisibilityMargin)
}

// ShowFiltered clears the surface and draws the survivors of a pass.
func (m *Map) ShowFiltered(markers []overlap.MarkerData) {
	m.surface.RemoveAllMarkers()
	for _, mk := range markers {
		m.surface.DrawMarkerAt(mk.Lat, mk.Lng)
	}
	m.log.WithFields(logrus.Fields{
		"shown": len(markers),
		"total": len(m.markers),
	}).Debug("markers drawn")
}

func (m *Map) RemoveMarkers() {
	m.surface.RemoveAllMarkers()
}

// Refresh renders, waits for the pass and draws the result.
func (m *Map) Refresh(ctx context.Context) ([]overlap.MarkerData, error) {
	kept, err := m.RenderMarkers().Wait(ctx)
	if err != nil {
		return nil, err
	}
	m.ShowFiltered(kept)
	return kept, nil
}

func (m *Map) Bounds() geo.BBox { return m.bounds }

func (m *Map) updateBounds() {
	w, h := m.surface.ViewportSize()
	m.bounds = geo.ViewportBBox(w, h)
}

func (m *Map) onZoomStart() *jobqueue.Pending {
	m.RemoveMarkers()
	return nil
}

func (m *Map) onZoomEnd() *jobqueue.Pending {
	m.updateBounds()
	if len(m.markers) == 0 {
		return nil
	}
	return m.RenderMarkers()
}

func (m *Map) onViewChange() *jobqueue.Pending {
	m.updateBounds()
	m.RemoveMarkers()
	return m.RenderMarkers()
}
