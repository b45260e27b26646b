package overlap

import (
	"github.com/dhconnelly/rtreego"

	"github.com/rendis/markview/internal/engine/geo"
)

const (
	minBranch = 25
	maxBranch = 50

	farAway = 1e300
)

// entry wraps an accepted box so it satisfies rtreego.Spatial.
type entry struct {
	box  geo.BBox
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is the set of boxes accepted so far in one filtering pass.
// The R-tree is only a broad phase over exact box corners: every candidate
// it returns is checked again with geo.BBox.Collides, so edge-touching
// boxes never count.
type Index struct {
	tree *rtreego.Rtree
	// Boxes with infinite coordinates cannot be stored in the tree; they
	// are few and checked linearly.
	unbounded []geo.BBox
	size      int
}

func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(2, minBranch, maxBranch)}
}

// Collides reports whether box overlaps any stored box.
func (ix *Index) Collides(box geo.BBox) bool {
	if ix.size == 0 || box.IsDegenerate() {
		return false
	}

	for _, b := range ix.unbounded {
		if b.Collides(box) {
			return true
		}
	}
	if ix.tree.Size() == 0 {
		return false
	}

	rect, ok := toRect(clamp(box))
	if !ok {
		return false
	}

	hits := ix.tree.SearchIntersect(rect, func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		hit := obj.(*entry).box.Collides(box)
		return !hit, hit
	})
	return len(hits) > 0
}

// Insert stores box. Degenerate boxes are counted but not indexed since
// they can never collide with anything.
func (ix *Index) Insert(box geo.BBox) {
	ix.size++
	if box.IsDegenerate() {
		return
	}
	if !box.IsFinite() {
		ix.unbounded = append(ix.unbounded, box)
		return
	}
	rect, ok := toRect(box)
	if !ok {
		return
	}
	ix.tree.Insert(&entry{box: box, rect: rect})
}

// Len returns the number of inserted boxes.
func (ix *Index) Len() int {
	return ix.size
}

// Clear drops every stored box.
func (ix *Index) Clear() {
	ix.tree = rtreego.NewTree(2, minBranch, maxBranch)
	ix.unbounded = nil
	ix.size = 0
}

// clamp pulls infinite coordinates into a range rtreego can represent.
func clamp(box geo.BBox) geo.BBox {
	c := func(v float64) float64 { return min(max(v, -farAway), farAway) }
	return geo.BBox{MinX: c(box.MinX), MinY: c(box.MinY), MaxX: c(box.MaxX), MaxY: c(box.MaxY)}
}

// toRect keeps both corners exact. Building the rect from a corner plus
// lengths recomputes the max corner as MinX+width, which can land one ulp
// inside MaxX and make the tree miss a box that starts right there.
func toRect(box geo.BBox) (rtreego.Rect, bool) {
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{box.MinX, box.MinY},
		rtreego.Point{box.MaxX, box.MaxY},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}
