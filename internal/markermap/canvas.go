package markermap

import (
	"slices"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/model"
)

// Canvas is a headless Surface over a geo.Viewport. It records what would
// be drawn.
type Canvas struct {
	vp     *geo.Viewport
	drawn  []model.LatLng
	clears int
}

func NewCanvas(vp *geo.Viewport) *Canvas {
	return &Canvas{vp: vp}
}

func (c *Canvas) Viewport() *geo.Viewport { return c.vp }

func (c *Canvas) ProjectToPixel(lat, lon float64) (float64, float64) {
	return c.vp.Project(lat, lon)
}

func (c *Canvas) ViewportSize() (float64, float64) {
	return c.vp.Size()
}

func (c *Canvas) DrawMarkerAt(lat, lon float64) {
	c.drawn = append(c.drawn, model.LatLng{Lat: lat, Lng: lon})
}

func (c *Canvas) RemoveAllMarkers() {
	c.drawn = c.drawn[:0]
	c.clears++
}

// Drawn returns the markers currently on the canvas.
func (c *Canvas) Drawn() []model.LatLng {
	return slices.Clone(c.drawn)
}

// Clears counts RemoveAllMarkers calls.
func (c *Canvas) Clears() int { return c.clears }
