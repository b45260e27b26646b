package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/model"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []model.Marker
	}{
		{
			name: "array",
			in:   `[{"id":"a","lat":1.5,"lon":2.5},{"lat":3,"lon":4}]`,
			want: []model.Marker{{ID: "a", Lat: 1.5, Lon: 2.5}, {Lat: 3, Lon: 4}},
		},
		{
			name: "catalog response",
			in:   ` {"meta":{"code":200},"result":{"items":[{"id":"x","lat":55.1,"lon":37.2}]}}`,
			want: []model.Marker{{ID: "x", Lat: 55.1, Lon: 37.2}},
		},
		{
			name: "empty array",
			in:   `[]`,
			want: []model.Marker{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSON(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d markers, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("marker %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	in := "name,LNG,lat,id\nCafe,37.6,55.7,a\nBar, 37.7, 55.8,b\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Marker{
		{ID: "a", Name: "Cafe", Lat: 55.7, Lon: 37.6},
		{ID: "b", Name: "Bar", Lat: 55.8, Lon: 37.7},
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no lat", "lon\n1\n", "no lat column"},
		{"no lon", "lat\n1\n", "no lon/lng column"},
		{"bad number", "lat,lon\n1,x\n", "line 2: invalid lon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestReadFile_Extension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(path, []byte("lat,lon\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one marker, got %+v (%v)", got, err)
	}

	bad := filepath.Join(dir, "points.txt")
	os.WriteFile(bad, []byte("x"), 0o644)
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestWriteCSV(t *testing.T) {
	box := geo.BBox{MinX: 89, MinY: 66, MaxX: 111, MaxY: 100}
	rows := []Row{
		{Marker: model.Marker{ID: "a", Name: "Cafe", Lat: 55.75, Lon: 37.62}, BBox: &box},
		{Marker: model.Marker{Lat: 1, Lon: 2}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if lines[1] != "a,Cafe,55.7500000,37.6200000,89.0,66.0,111.0,100.0" {
		t.Errorf("unexpected row %q", lines[1])
	}
	if lines[2] != ",,1.0000000,2.0000000,,,," {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}

	box := geo.BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	buf.Reset()
	if err := WriteJSON(&buf, []Row{{Marker: model.Marker{ID: "a", Lat: 1, Lon: 2}, BBox: &box}}); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded[0]["id"] != "a" || decoded[0]["bBox"] == nil {
		t.Errorf("unexpected json %s", buf.String())
	}
}

func TestSurvivors(t *testing.T) {
	markers := []model.Marker{
		{ID: "a", Name: "First", Lat: 1, Lon: 2},
		{ID: "dup", Name: "Same place", Lat: 1, Lon: 2},
		{ID: "b", Name: "Second", Lat: 3, Lon: 4},
	}
	kept := []overlap.MarkerData{
		{Lat: 1, Lng: 2, BBox: geo.FromAnchor(10, 10, geo.DefaultIconSize)},
		{Lat: 3, Lng: 4, BBox: geo.FromAnchor(100, 100, geo.DefaultIconSize)},
		{Lat: 9, Lng: 9},
	}

	rows := Survivors(markers, kept)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].ID != "a" || rows[1].ID != "b" {
		t.Errorf("unexpected join %+v", rows)
	}
	if rows[2].ID != "" || rows[2].Lat != 9 || rows[2].Lon != 9 {
		t.Errorf("expected a bare row for an unknown survivor, got %+v", rows[2])
	}
	if rows[1].BBox == nil || rows[1].BBox.MaxY != 100 {
		t.Errorf("expected the survivor box to be carried, got %+v", rows[1].BBox)
	}
}
