package markermap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/model"
)

type submission struct {
	markers []overlap.MarkerData
	bounds  geo.BBox
	margin  float64
}

type recordingQueue struct {
	q     *jobqueue.Queue
	calls []submission
}

func (r *recordingQueue) Submit(markers []overlap.MarkerData, bounds geo.BBox, margin float64) *jobqueue.Pending {
	r.calls = append(r.calls, submission{markers: markers, bounds: bounds, margin: margin})
	return r.q.Submit(markers, bounds, margin)
}

var moscow = model.LatLng{Lat: 55.7508833, Lng: 37.6206207}

func newTestMap(t *testing.T, opts Options) (*Map, *Canvas, *recordingQueue) {
	t.Helper()
	q := jobqueue.New()
	t.Cleanup(q.Close)
	rq := &recordingQueue{q: q}
	canvas := NewCanvas(opts.Viewport(800, 600))
	m, err := New(canvas, rq, opts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m, canvas, rq
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ContainerID = "map"
	center := moscow
	opts.Center = &center
	return opts
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew_ConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		missing []string
	}{
		{"nothing", DefaultOptions(), []string{"containerId", "center"}},
		{"no center", Options{ContainerID: "map"}, []string{"center"}},
		{"no container", Options{Center: &moscow}, []string{"containerId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(NewCanvas(geo.NewViewport(moscow, 11, 10, 10)), nil, tt.opts, nil)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if len(cfgErr.Missing) != len(tt.missing) {
				t.Fatalf("expected missing %v, got %v", tt.missing, cfgErr.Missing)
			}
			for i := range tt.missing {
				if cfgErr.Missing[i] != tt.missing[i] {
					t.Errorf("expected missing %v, got %v", tt.missing, cfgErr.Missing)
				}
			}
		})
	}
}

func TestNew_DefaultIconSize(t *testing.T) {
	opts := testOptions()
	opts.MarkerIconSize = model.Size{}
	m, _, _ := newTestMap(t, opts)
	if m.Options().MarkerIconSize != geo.DefaultIconSize {
		t.Errorf("expected default icon size, got %+v", m.Options().MarkerIconSize)
	}
}

// markersAt places markers so that they project onto the given pixel anchors.
func markersAt(vp *geo.Viewport, anchors [][2]float64) []model.Marker {
	out := make([]model.Marker, len(anchors))
	for i, a := range anchors {
		ll := vp.Unproject(a[0], a[1])
		out[i] = model.Marker{Lat: ll.Lat, Lon: ll.Lng}
	}
	return out
}

func TestRefresh_ExampleScenario(t *testing.T) {
	m, canvas, rq := newTestMap(t, testOptions())
	markers := markersAt(canvas.Viewport(), [][2]float64{{100, 100}, {105, 102}, {400, 300}, {900, 100}})
	m.SetMarkersData(markers)

	if len(rq.calls) != 0 {
		t.Fatal("SetMarkersData must not render")
	}

	kept, err := m.Refresh(waitCtx(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(kept))
	}

	drawn := canvas.Drawn()
	want := []model.LatLng{
		{Lat: markers[0].Lat, Lng: markers[0].Lon},
		{Lat: markers[2].Lat, Lng: markers[2].Lon},
	}
	if len(drawn) != 2 || drawn[0] != want[0] || drawn[1] != want[1] {
		t.Errorf("expected %v drawn, got %v", want, drawn)
	}
	if rq.calls[0].bounds != geo.ViewportBBox(800, 600) {
		t.Errorf("unexpected bounds %+v", rq.calls[0].bounds)
	}
}

func TestRenderMarkers_BoxesFromIconSize(t *testing.T) {
	opts := testOptions()
	opts.MarkerIconSize = model.Size{Width: 10, Height: 20}
	opts.VisibilityMargin = 15
	m, canvas, rq := newTestMap(t, opts)
	m.SetMarkersData(markersAt(canvas.Viewport(), [][2]float64{{400, 300}}))

	if _, err := m.RenderMarkers().Wait(waitCtx(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := rq.calls[0]
	if call.margin != 15 {
		t.Errorf("expected margin 15, got %v", call.margin)
	}
	box := call.markers[0].BBox
	if box.Width() < 9.999 || box.Width() > 10.001 || box.Height() < 19.999 || box.Height() > 20.001 {
		t.Errorf("unexpected box %+v", box)
	}
	if box.MaxY < 299.999 || box.MaxY > 300.001 {
		t.Errorf("expected box anchored at the bottom, got %+v", box)
	}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		markers    int
		event      Event
		wantSubmit bool
		wantClear  bool
	}{
		{"zoom start clears only", 2, ZoomStarted, false, true},
		{"zoom end renders", 2, ZoomEnded, true, false},
		{"zoom end without data", 0, ZoomEnded, false, false},
		{"move clears and renders", 2, ViewportMoved, true, true},
		{"resize clears and renders", 2, ViewportResized, true, true},
		{"resize without data still submits", 0, ViewportResized, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, canvas, rq := newTestMap(t, testOptions())
			anchors := [][2]float64{{100, 100}, {300, 300}}
			m.SetMarkersData(markersAt(canvas.Viewport(), anchors[:tt.markers]))

			p := m.Handle(tt.event)

			if got := p != nil; got != tt.wantSubmit {
				t.Errorf("expected submit=%v, got handle %v", tt.wantSubmit, p)
			}
			if got := len(rq.calls) == 1; got != tt.wantSubmit {
				t.Errorf("expected submit=%v, got %d calls", tt.wantSubmit, len(rq.calls))
			}
			if got := canvas.Clears() > 0; got != tt.wantClear {
				t.Errorf("expected clear=%v, got %d clears", tt.wantClear, canvas.Clears())
			}
			if p != nil {
				if _, err := p.Wait(waitCtx(t)); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestHandle_ResizeUsesNewBounds(t *testing.T) {
	m, canvas, rq := newTestMap(t, testOptions())
	m.SetMarkersData(markersAt(canvas.Viewport(), [][2]float64{{100, 100}}))

	canvas.Viewport().Resize(1024, 768)
	m.Handle(ViewportResized)

	if rq.calls[0].bounds != geo.ViewportBBox(1024, 768) {
		t.Errorf("expected resized bounds, got %+v", rq.calls[0].bounds)
	}
	if m.Bounds() != geo.ViewportBBox(1024, 768) {
		t.Errorf("expected map bounds to follow the surface, got %+v", m.Bounds())
	}
}

func TestHandle_UnknownEvent(t *testing.T) {
	m, _, rq := newTestMap(t, testOptions())
	if p := m.Handle(Event(99)); p != nil {
		t.Error("expected nil handle for unknown event")
	}
	if len(rq.calls) != 0 {
		t.Error("unknown event must not submit")
	}
}
