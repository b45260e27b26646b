package views

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestListWindow(t *testing.T) {
	tests := []struct {
		name                  string
		cursor, n, size, lead int
		start, end            int
	}{
		{"short list", 0, 3, 15, 12, 0, 3},
		{"cursor above lead", 5, 40, 15, 12, 0, 15},
		{"cursor past lead", 20, 40, 15, 12, 8, 23},
		{"end clamped", 39, 40, 15, 12, 27, 40},
		{"empty", 0, 0, 15, 12, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := listWindow(tt.cursor, tt.n, tt.size, tt.lead)
			if start != tt.start || end != tt.end {
				t.Errorf("listWindow() = [%d, %d), want [%d, %d)", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestHomeShortcuts(t *testing.T) {
	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"s", NavigateToSearch{}},
		{"l", NavigateToLoad{}},
		{"r", NavigateToRecent{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, cmd := NewHomeModel("dev").Update(key(tt.key))
			if cmd == nil {
				t.Fatal("expected a navigation command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("got %T, want %T", got, tt.want)
			}
		})
	}
}

func TestHomeCursorBounds(t *testing.T) {
	var m tea.Model = NewHomeModel("dev")
	for range 10 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.(HomeModel).cursor; got != 3 {
		t.Errorf("cursor = %d, want 3", got)
	}
	for range 10 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	if got := m.(HomeModel).cursor; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestFilePickerListsDatasets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.json", "notes.txt", ".hidden.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("lat,lon\n1,2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewFilePickerModel(dir)
	var names []string
	for _, f := range m.files {
		names = append(names, f.Name())
	}
	want := []string{"a.csv", "b.json", "sub"}
	if len(names) != len(want) {
		t.Fatalf("files = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestFilePickerOpensDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(path, []byte("id,name,lat,lon\nx,Cafe,55.75,37.62\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewFilePickerModel(dir)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !next.(FilePickerModel).loading {
		t.Error("picker should show loading while reading")
	}
	msg, ok := cmd().(NavigateToMap)
	if !ok {
		t.Fatalf("got %T, want NavigateToMap", cmd())
	}
	if msg.Path != path || msg.Title != "points.csv" || len(msg.Markers) != 1 {
		t.Errorf("msg = %+v", msg)
	}
}

func TestParseStoredTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	for _, s := range []string{"2024-05-01T12:30:00Z", "2024-05-01 12:30:00"} {
		if got := parseStoredTime(s); !got.Equal(want) {
			t.Errorf("parseStoredTime(%q) = %v", s, got)
		}
	}
	if !parseStoredTime("garbage").IsZero() {
		t.Error("garbage should give the zero time")
	}
}
