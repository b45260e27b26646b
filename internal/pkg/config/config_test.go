package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Map.ContainerID != "map" || cfg.Map.Zoom != 11 || !cfg.Map.FullscreenControl {
		t.Errorf("unexpected map defaults: %+v", cfg.Map)
	}
	c := cfg.Map.CenterLatLng()
	if c == nil || c.Lat != 55.7508833 || c.Lng != 37.6206207 {
		t.Errorf("unexpected default center %+v", c)
	}
	if cfg.Map.MarkerIcon.Width != 22 || cfg.Map.MarkerIcon.Height != 34 {
		t.Errorf("unexpected icon size %+v", cfg.Map.MarkerIcon)
	}
	if cfg.Catalog.RegionID != 32 || cfg.Catalog.PageSize != 1000 || cfg.Catalog.Timeout != 15*time.Second {
		t.Errorf("unexpected catalog defaults: %+v", cfg.Catalog)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	yaml := "map:\n  zoom: 14\n  visibility_margin: 40\ncatalog:\n  key: from-file\n"
	if err := os.WriteFile(filepath.Join(dir, "markview.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARKVIEW_CATALOG_KEY", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Map.Zoom != 14 || cfg.Map.VisibilityMargin != 40 {
		t.Errorf("expected file values, got %+v", cfg.Map)
	}
	if cfg.Catalog.Key != "from-env" {
		t.Errorf("expected env to override file, got %q", cfg.Catalog.Key)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Map: MapConfig{
				ContainerID: "map",
				Center:      []float64{55.75, 37.62},
				Zoom:        11,
			},
			Catalog: CatalogConfig{PageSize: 1000, Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing container", func(c *Config) { c.Map.ContainerID = "" }, "map.container_id"},
		{"short center", func(c *Config) { c.Map.Center = []float64{1} }, "map.center must be"},
		{"center range", func(c *Config) { c.Map.Center = []float64{91, 0} }, "out of range"},
		{"zoom", func(c *Config) { c.Map.Zoom = 21 }, "map.zoom"},
		{"margin", func(c *Config) { c.Map.VisibilityMargin = -1 }, "visibility_margin"},
		{"icon", func(c *Config) { c.Map.MarkerIcon.Width = 0 }, "marker_icon"},
		{"page size", func(c *Config) { c.Catalog.PageSize = 0 }, "page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			cfg.Map.MarkerIcon.Width, cfg.Map.MarkerIcon.Height = 22, 34
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	cfg := valid()
	cfg.Map.MarkerIcon.Width, cfg.Map.MarkerIcon.Height = 22, 34
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
