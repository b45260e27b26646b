package geo

import (
	"math"
	"testing"
)

func TestFromAnchor(t *testing.T) {
	got := FromAnchor(100, 100, DefaultIconSize)
	want := BBox{MinX: 89, MinY: 66, MaxX: 111, MaxY: 100}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestInflate(t *testing.T) {
	got := ViewportBBox(800, 600).Inflate(10)
	want := BBox{MinX: -10, MinY: -10, MaxX: 810, MaxY: 610}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if ViewportBBox(800, 600).Inflate(0) != ViewportBBox(800, 600) {
		t.Error("zero margin must not change the box")
	}
}

func TestContains(t *testing.T) {
	outer := ViewportBBox(100, 100)
	tests := []struct {
		name  string
		inner BBox
		want  bool
	}{
		{"inside", BBox{10, 10, 20, 20}, true},
		{"equal", BBox{0, 0, 100, 100}, true},
		{"touching edge", BBox{0, 50, 10, 100}, true},
		{"crossing right", BBox{95, 10, 101, 20}, false},
		{"crossing top", BBox{10, -1, 20, 20}, false},
		{"outside", BBox{200, 200, 210, 210}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestCollides(t *testing.T) {
	a := BBox{0, 0, 10, 10}
	tests := []struct {
		name string
		b    BBox
		want bool
	}{
		{"overlap", BBox{5, 5, 15, 15}, true},
		{"contained", BBox{2, 2, 3, 3}, true},
		{"shared vertical edge", BBox{10, 0, 20, 10}, false},
		{"shared horizontal edge", BBox{0, 10, 10, 20}, false},
		{"shared corner", BBox{10, 10, 20, 20}, false},
		{"apart", BBox{11, 11, 20, 20}, false},
		{"overlap on one axis only", BBox{5, 20, 15, 30}, false},
		{"nan", BBox{math.NaN(), 0, 5, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Collides(tt.b); got != tt.want {
				t.Errorf("Collides(%+v) = %v, want %v", tt.b, got, tt.want)
			}
			if got := tt.b.Collides(a); got != tt.want {
				t.Errorf("collision must be symmetric for %+v", tt.b)
			}
		})
	}
}

func TestIsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		b    BBox
		want bool
	}{
		{"normal", BBox{0, 0, 1, 1}, false},
		{"zero width", BBox{1, 0, 1, 5}, true},
		{"zero height", BBox{0, 2, 5, 2}, true},
		{"inverted", BBox{5, 5, 0, 0}, true},
		{"nan", BBox{0, math.NaN(), 1, 1}, true},
		{"infinite", BBox{math.Inf(-1), 0, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.IsDegenerate(); got != tt.want {
				t.Errorf("IsDegenerate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundRoundTrip(t *testing.T) {
	b := BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	if got := FromBound(b.Bound()); got != b {
		t.Errorf("got %+v, want %+v", got, b)
	}
	if !(BBox{0, 0, 1, 1}).IsFinite() || (BBox{0, 0, math.Inf(1), 1}).IsFinite() {
		t.Error("unexpected IsFinite result")
	}
	if w, h := b.Width(), b.Height(); w != 2 || h != 2 {
		t.Errorf("unexpected size %vx%v", w, h)
	}
}
