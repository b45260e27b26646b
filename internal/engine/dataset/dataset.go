// Package dataset reads marker datasets from files and writes filter
// results back out.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rendis/markview/internal/engine/catalog"
	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/model"
)

// Row is one output record: a marker and, for filter output, its box.
type Row struct {
	model.Marker
	BBox *geo.BBox `json:"bBox,omitempty"`
}

// ReadFile picks the decoder from the file extension (.json or .csv).
func ReadFile(path string) ([]model.Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .json or .csv)", filepath.Ext(path))
	}
}

// ReadJSON accepts either a plain array of markers or a saved catalog
// search response.
func ReadJSON(r io.Reader) ([]model.Marker, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '{' {
		return catalog.ParseSearchResponse(data, http.StatusOK)
	}

	markers := []model.Marker{}
	if err := json.Unmarshal(data, &markers); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return markers, nil
}

// ReadCSV needs a header with lat and lon (or lng) columns; id and name are
// optional.
func ReadCSV(r io.Reader) ([]model.Marker, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Marker{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	latCol, ok := cols["lat"]
	if !ok {
		return nil, fmt.Errorf("csv header has no lat column")
	}
	lonCol, ok := cols["lon"]
	if !ok {
		if lonCol, ok = cols["lng"]; !ok {
			return nil, fmt.Errorf("csv header has no lon/lng column")
		}
	}
	idCol, hasID := cols["id"]
	nameCol, hasName := cols["name"]

	markers := []model.Marker{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var m model.Marker
		if m.Lat, err = strconv.ParseFloat(rec[latCol], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid lat %q", line, rec[latCol])
		}
		if m.Lon, err = strconv.ParseFloat(rec[lonCol], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid lon %q", line, rec[lonCol])
		}
		if hasID {
			m.ID = rec[idCol]
		}
		if hasName {
			m.Name = rec[nameCol]
		}
		markers = append(markers, m)
	}
	return markers, nil
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "name", "lat", "lon", "min_x", "min_y", "max_x", "max_y"})

	for _, r := range rows {
		rec := []string{
			r.ID,
			r.Name,
			strconv.FormatFloat(r.Lat, 'f', 7, 64),
			strconv.FormatFloat(r.Lon, 'f', 7, 64),
			"", "", "", "",
		}
		if r.BBox != nil {
			rec[4] = strconv.FormatFloat(r.BBox.MinX, 'f', 1, 64)
			rec[5] = strconv.FormatFloat(r.BBox.MinY, 'f', 1, 64)
			rec[6] = strconv.FormatFloat(r.BBox.MaxX, 'f', 1, 64)
			rec[7] = strconv.FormatFloat(r.BBox.MaxY, 'f', 1, 64)
		}
		cw.Write(rec)
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if rows == nil {
		rows = []Row{}
	}
	return enc.Encode(rows)
}

// Survivors joins filter survivors back to their source markers. Markers at
// the same coordinate always collide, so the first of them is the survivor.
func Survivors(markers []model.Marker, kept []overlap.MarkerData) []Row {
	byPos := make(map[model.LatLng]model.Marker, len(markers))
	for _, m := range markers {
		key := model.LatLng{Lat: m.Lat, Lng: m.Lon}
		if _, ok := byPos[key]; !ok {
			byPos[key] = m
		}
	}

	rows := make([]Row, 0, len(kept))
	for _, k := range kept {
		box := k.BBox
		m, ok := byPos[model.LatLng{Lat: k.Lat, Lng: k.Lng}]
		if !ok {
			m = model.Marker{Lat: k.Lat, Lon: k.Lng}
		}
		rows = append(rows, Row{Marker: m, BBox: &box})
	}
	return rows
}
