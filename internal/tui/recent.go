package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
)

const maxRecent = 10

// RecentFile is a dataset file opened from the TUI.
type RecentFile struct {
	Path     string    `json:"path"`
	Markers  int       `json:"markers"`
	OpenedAt time.Time `json:"opened_at"`
}

var recentFilePath = func() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "markview", "recent.json")
}

func LoadRecent() []RecentFile {
	data, err := os.ReadFile(recentFilePath())
	if err != nil {
		return nil
	}
	var entries []RecentFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// SaveRecent moves path to the front of the recent list, keeping at most
// maxRecent entries.
func SaveRecent(path string, markers int, now time.Time) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	entries := lo.Filter(LoadRecent(), func(e RecentFile, _ int) bool {
		return e.Path != abs
	})
	entries = append([]RecentFile{{Path: abs, Markers: markers, OpenedAt: now}}, entries...)
	if len(entries) > maxRecent {
		entries = entries[:maxRecent]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(recentFilePath()), 0o755); err != nil {
		return err
	}
	return os.WriteFile(recentFilePath(), data, 0o644)
}
