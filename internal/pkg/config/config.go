package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rendis/markview/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Map     MapConfig     `mapstructure:"map"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type MapConfig struct {
	ContainerID       string     `mapstructure:"container_id"`
	Center            []float64  `mapstructure:"center"`
	Zoom              int        `mapstructure:"zoom"`
	FullscreenControl bool       `mapstructure:"fullscreen_control"`
	VisibilityMargin  float64    `mapstructure:"visibility_margin"`
	MarkerIcon        model.Size `mapstructure:"marker_icon"`
}

// CenterLatLng returns nil unless Center is a [lat, lon] pair.
func (m MapConfig) CenterLatLng() *model.LatLng {
	if len(m.Center) != 2 {
		return nil
	}
	return &model.LatLng{Lat: m.Center[0], Lng: m.Center[1]}
}

type CatalogConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Key      string        `mapstructure:"key"`
	RegionID int           `mapstructure:"region_id"`
	PageSize int           `mapstructure:"page_size"`
	Proxy    string        `mapstructure:"proxy"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// Load reads .env, then an optional markview.yaml, then MARKVIEW_* env vars.
// file overrides the config search path when non-empty.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("map.container_id", "map")
	v.SetDefault("map.center", []float64{55.7508833, 37.6206207})
	v.SetDefault("map.zoom", 11)
	v.SetDefault("map.fullscreen_control", true)
	v.SetDefault("map.visibility_margin", 0.0)
	v.SetDefault("map.marker_icon.width", 22.0)
	v.SetDefault("map.marker_icon.height", 34.0)
	v.SetDefault("catalog.base_url", "https://catalog.api.2gis.ru")
	v.SetDefault("catalog.key", "")
	v.SetDefault("catalog.region_id", 32)
	v.SetDefault("catalog.page_size", 1000)
	v.SetDefault("catalog.proxy", "")
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("storage.db_path", DefaultDBPath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")

	// Config file (optional)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("markview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "markview"))
		}
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: MARKVIEW_MAP_ZOOM → map.zoom
	v.SetEnvPrefix("MARKVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultDBPath places the marker cache under the user's config dir.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "markview.db"
	}
	return filepath.Join(dir, "markview", "markview.db")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Map.ContainerID == "" {
		errs = append(errs, "map.container_id is required")
	}
	if len(c.Map.Center) != 2 {
		errs = append(errs, fmt.Sprintf("map.center must be [lat, lon], got %v", c.Map.Center))
	} else if c.Map.Center[0] < -90 || c.Map.Center[0] > 90 || c.Map.Center[1] < -180 || c.Map.Center[1] > 180 {
		errs = append(errs, fmt.Sprintf("map.center out of range: %v", c.Map.Center))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 20 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-20, got %d", c.Map.Zoom))
	}
	if c.Map.VisibilityMargin < 0 {
		errs = append(errs, "map.visibility_margin must not be negative")
	}
	if c.Map.MarkerIcon.Width <= 0 || c.Map.MarkerIcon.Height <= 0 {
		errs = append(errs, "map.marker_icon width and height must be positive")
	}
	if c.Catalog.PageSize <= 0 || c.Catalog.PageSize > 10000 {
		errs = append(errs, fmt.Sprintf("catalog.page_size must be 1-10000, got %d", c.Catalog.PageSize))
	}
	if c.Catalog.Timeout <= 0 {
		errs = append(errs, "catalog.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
