package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/rendis/markview/internal/model"
)

const (
	// TileSize is the edge of one map tile in pixels.
	TileSize = 256

	MinZoom = 0
	MaxZoom = 20
)

// halfWorld is half the Web Mercator extent in meters.
const halfWorld = math.Pi * orb.EarthRadius

// Viewport is a Web Mercator window onto the map: a centre, an integer zoom
// level and a pixel size. Pixel (0, 0) is the top-left corner.
type Viewport struct {
	center model.LatLng
	zoom   int
	width  float64
	height float64
}

func NewViewport(center model.LatLng, zoom int, width, height float64) *Viewport {
	v := &Viewport{center: center, width: width, height: height}
	v.SetZoom(zoom)
	return v
}

func (v *Viewport) Center() model.LatLng { return v.center }

func (v *Viewport) SetCenter(center model.LatLng) { v.center = center }

func (v *Viewport) Zoom() int { return v.zoom }

// Size returns the viewport size in pixels.
func (v *Viewport) Size() (width, height float64) {
	return v.width, v.height
}

func (v *Viewport) Resize(width, height float64) {
	v.width = width
	v.height = height
}

// SetZoom changes the zoom level, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(zoom int) {
	v.zoom = min(max(zoom, MinZoom), MaxZoom)
}

// BBox returns the viewport rectangle in its own pixel space.
func (v *Viewport) BBox() BBox {
	return ViewportBBox(v.width, v.height)
}

// Project converts a coordinate to viewport pixels.
func (v *Viewport) Project(lat, lon float64) (x, y float64) {
	px, py := worldPixel(lat, lon, v.zoom)
	cx, cy := worldPixel(v.center.Lat, v.center.Lng, v.zoom)
	return px - cx + v.width/2, py - cy + v.height/2
}

// Unproject converts viewport pixels back to a coordinate.
func (v *Viewport) Unproject(x, y float64) model.LatLng {
	cx, cy := worldPixel(v.center.Lat, v.center.Lng, v.zoom)
	return fromWorldPixel(cx+x-v.width/2, cy+y-v.height/2, v.zoom)
}

// PanBy moves the centre by (dx, dy) pixels.
func (v *Viewport) PanBy(dx, dy float64) {
	v.center = v.Unproject(v.width/2+dx, v.height/2+dy)
}

// LatLngBounds returns the geographic extent of the viewport.
// Points are [lng, lat] as everywhere in orb.
func (v *Viewport) LatLngBounds() orb.Bound {
	sw := v.Unproject(0, v.height)
	ne := v.Unproject(v.width, 0)
	return orb.Bound{
		Min: orb.Point{sw.Lng, sw.Lat},
		Max: orb.Point{ne.Lng, ne.Lat},
	}
}

func worldSize(zoom int) float64 {
	return math.Ldexp(TileSize, zoom)
}

func worldPixel(lat, lon float64, zoom int) (float64, float64) {
	m := project.WGS84.ToMercator(orb.Point{lon, lat})
	size := worldSize(zoom)
	x := (m[0] + halfWorld) / (2 * halfWorld) * size
	y := (halfWorld - m[1]) / (2 * halfWorld) * size
	return x, y
}

func fromWorldPixel(x, y float64, zoom int) model.LatLng {
	size := worldSize(zoom)
	m := orb.Point{
		x/size*2*halfWorld - halfWorld,
		halfWorld - y/size*2*halfWorld,
	}
	p := project.Mercator.ToWGS84(m)
	return model.LatLng{Lat: p.Lat(), Lng: p.Lon()}
}
