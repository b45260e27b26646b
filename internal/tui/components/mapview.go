package components

import (
	"math"
	"strings"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/tui/styles"
)

// A terminal cell stands for CellWidth x CellHeight viewport pixels, so a
// 22x34 marker covers about three columns and two rows.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// MapView is the terminal map surface. Every loaded marker is plotted as a
// faint braille dot; markers drawn through the Surface methods are shown as
// pins on top.
type MapView struct {
	vp       *geo.Viewport
	cols     int
	rows     int
	dataset  []model.LatLng
	drawn    []model.LatLng
	selected int // index into drawn, -1 if none
}

func NewMapView(vp *geo.Viewport) *MapView {
	m := &MapView{vp: vp, selected: -1}
	w, h := vp.Size()
	m.cols = int(w / CellWidth)
	m.rows = int(h / CellHeight)
	return m
}

func (m *MapView) Viewport() *geo.Viewport { return m.vp }

// SetSize resizes the surface to cols x rows terminal cells.
func (m *MapView) SetSize(cols, rows int) {
	m.cols = max(cols, 0)
	m.rows = max(rows, 0)
	m.vp.Resize(float64(m.cols)*CellWidth, float64(m.rows)*CellHeight)
}

func (m *MapView) Size() (cols, rows int) { return m.cols, m.rows }

func (m *MapView) SetDataset(markers []model.Marker) {
	m.dataset = m.dataset[:0]
	for _, mk := range markers {
		m.dataset = append(m.dataset, model.LatLng{Lat: mk.Lat, Lng: mk.Lon})
	}
}

// Pan moves the view by whole cells.
func (m *MapView) Pan(dCols, dRows int) {
	m.vp.PanBy(float64(dCols)*CellWidth, float64(dRows)*CellHeight)
}

// Zoom changes the zoom level by delta and reports whether it changed.
func (m *MapView) Zoom(delta int) bool {
	before := m.vp.Zoom()
	m.vp.SetZoom(before + delta)
	return m.vp.Zoom() != before
}

func (m *MapView) CenterOn(ll model.LatLng) {
	m.vp.SetCenter(ll)
}

func (m *MapView) SetSelected(idx int) {
	m.selected = idx
}

// Drawn returns the pins currently on the surface, in draw order.
func (m *MapView) Drawn() []model.LatLng { return m.drawn }

func (m *MapView) ProjectToPixel(lat, lon float64) (float64, float64) {
	return m.vp.Project(lat, lon)
}

func (m *MapView) ViewportSize() (float64, float64) {
	return m.vp.Size()
}

func (m *MapView) DrawMarkerAt(lat, lon float64) {
	m.drawn = append(m.drawn, model.LatLng{Lat: lat, Lng: lon})
}

func (m *MapView) RemoveAllMarkers() {
	m.drawn = m.drawn[:0]
	m.selected = -1
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotPositions = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

const (
	pinGlyph      = '▼'
	selectedGlyph = '◆'
)

func (m MapView) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}

	dotW := m.cols * 2
	dotH := m.rows * 4
	dotPxW := CellWidth / 2
	dotPxH := CellHeight / 4

	grid := make([][]bool, dotH)
	for i := range grid {
		grid[i] = make([]bool, dotW)
	}
	for _, p := range m.dataset {
		x, y := m.vp.Project(p.Lat, p.Lng)
		dx, dy := int(math.Floor(x/dotPxW)), int(math.Floor(y/dotPxH))
		if dx >= 0 && dx < dotW && dy >= 0 && dy < dotH {
			grid[dy][dx] = true
		}
	}

	// pins sit on the cell just above their bottom-centre anchor
	pins := make(map[[2]int]rune, len(m.drawn))
	for i, p := range m.drawn {
		x, y := m.vp.Project(p.Lat, p.Lng)
		col, row := int(math.Floor(x/CellWidth)), int(math.Floor((y-1)/CellHeight))
		if col < 0 || col >= m.cols || row < 0 || row >= m.rows {
			continue
		}
		glyph := pinGlyph
		if i == m.selected {
			glyph = selectedGlyph
		}
		if _, taken := pins[[2]int{row, col}]; !taken || i == m.selected {
			pins[[2]int{row, col}] = glyph
		}
	}

	var sb strings.Builder
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if glyph, ok := pins[[2]int{row, col}]; ok {
				if glyph == selectedGlyph {
					sb.WriteString(styles.SelectedPin.Render(string(glyph)))
				} else {
					sb.WriteString(styles.Pin.Render(string(glyph)))
				}
				continue
			}

			var val rune = 0x2800
			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if grid[dy][dx] {
					val |= brailleDots[dot]
				}
			}
			if val != 0x2800 {
				sb.WriteString(styles.DatasetDot.Render(string(val)))
			} else {
				sb.WriteRune(' ')
			}
		}
		if row < m.rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}
