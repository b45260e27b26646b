package model

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng"`
}

// Marker is one point of a dataset. Its position in the containing slice is
// its draw priority: index 0 wins every overlap contest.
type Marker struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Search describes a stored catalog search.
type Search struct {
	ID         int64
	Query      string
	Normalized string
	Markers    int
	CreatedAt  string
}

// FilterParams holds the viewport configuration of a headless filter pass.
type FilterParams struct {
	Center LatLng
	Zoom   int
	Width  float64
	Height float64
	Margin float64
	Icon   Size
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}
