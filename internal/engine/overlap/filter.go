// Package overlap decides which markers of a dataset get drawn: markers
// must sit inside the (inflated) viewport and must not overlap a marker of
// higher priority.
package overlap

import (
	"github.com/rendis/markview/internal/engine/geo"
)

// MarkerData is a marker as it travels to and from the filter worker: its
// coordinate plus the screen box computed for the current viewport.
type MarkerData struct {
	Lat  float64  `json:"lat"`
	Lng  float64  `json:"lng"`
	BBox geo.BBox `json:"bBox"`
}

// Result is the outcome of one filtering pass.
type Result struct {
	Kept      []MarkerData
	OutOfZone int
	Collided  int
}

// Filter returns the markers to draw, in input order.
func Filter(markers []MarkerData, bounds geo.BBox, margin float64) []MarkerData {
	return Run(markers, bounds, margin).Kept
}

// Run performs a single greedy pass over markers in priority order. A marker
// survives when its box lies inside bounds grown by margin and does not
// collide with an earlier survivor, so earlier markers always win.
func Run(markers []MarkerData, bounds geo.BBox, margin float64) Result {
	zone := bounds.Inflate(margin)

	index := NewIndex()
	defer index.Clear()

	res := Result{Kept: make([]MarkerData, 0, min(len(markers), 256))}
	for _, m := range markers {
		if !zone.Contains(m.BBox) {
			res.OutOfZone++
			continue
		}
		if index.Collides(m.BBox) {
			res.Collided++
			continue
		}
		res.Kept = append(res.Kept, m)
		index.Insert(m.BBox)
	}

	return res
}
