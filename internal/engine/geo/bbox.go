package geo

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/rendis/markview/internal/model"
)

// DefaultIconSize is the size of the stock marker glyph in pixels.
var DefaultIconSize = model.Size{Width: 22, Height: 34}

// BBox is an axis-aligned rectangle in viewport pixel space.
// Y grows downwards, as on screen.
type BBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// FromAnchor builds the box of an icon whose bottom-centre sits on (x, y).
func FromAnchor(x, y float64, icon model.Size) BBox {
	return BBox{
		MinX: x - icon.Width/2,
		MinY: y - icon.Height,
		MaxX: x + icon.Width/2,
		MaxY: y,
	}
}

// ViewportBBox returns the box spanning a width x height viewport.
func ViewportBBox(width, height float64) BBox {
	return BBox{MaxX: width, MaxY: height}
}

// FromBound converts an orb.Bound, reading X from the first axis.
func FromBound(b orb.Bound) BBox {
	return BBox{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

// Bound converts the box to an orb.Bound.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinX, b.MinY},
		Max: orb.Point{b.MaxX, b.MaxY},
	}
}

// Inflate grows the box by margin on all four sides.
func (b BBox) Inflate(margin float64) BBox {
	return FromBound(b.Bound().Pad(margin))
}

// Contains reports whether other lies inside b. Edges are inclusive: a box
// touching the boundary is still inside.
func (b BBox) Contains(other BBox) bool {
	return !(other.MinX < b.MinX ||
		other.MaxX > b.MaxX ||
		other.MinY < b.MinY ||
		other.MaxY > b.MaxY)
}

// Collides reports whether the two boxes overlap with nonzero measure on
// both axes. Boxes sharing only an edge or a corner do not collide.
func (b BBox) Collides(other BBox) bool {
	return math.Min(b.MaxX, other.MaxX) > math.Max(b.MinX, other.MinX) &&
		math.Min(b.MaxY, other.MaxY) > math.Max(b.MinY, other.MinY)
}

// IsDegenerate reports whether the box has no area, which includes NaN and
// inverted coordinates. A degenerate box can never collide.
func (b BBox) IsDegenerate() bool {
	return !(b.MinX < b.MaxX && b.MinY < b.MaxY)
}

// IsFinite reports whether every coordinate is a finite number.
func (b BBox) IsFinite() bool {
	for _, c := range [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Width of the box.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height of the box.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }
