package markermap

import (
	"fmt"
	"strings"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/pkg/config"
)

// Options configures a Map. ContainerID and Center are required.
type Options struct {
	ContainerID       string
	Center            *model.LatLng
	Zoom              int
	FullscreenControl bool
	VisibilityMargin  float64
	MarkerIconSize    model.Size
}

func DefaultOptions() Options {
	return Options{
		Zoom:              11,
		FullscreenControl: true,
		VisibilityMargin:  0,
		MarkerIconSize:    geo.DefaultIconSize,
	}
}

// OptionsFromConfig maps the [map] config section onto Options.
func OptionsFromConfig(c config.MapConfig) Options {
	opts := DefaultOptions()
	opts.ContainerID = c.ContainerID
	opts.Center = c.CenterLatLng()
	opts.Zoom = c.Zoom
	opts.FullscreenControl = c.FullscreenControl
	opts.VisibilityMargin = c.VisibilityMargin
	if c.MarkerIcon.Width > 0 && c.MarkerIcon.Height > 0 {
		opts.MarkerIconSize = c.MarkerIcon
	}
	return opts
}

// Viewport builds the initial viewport described by the options.
func (o Options) Viewport(width, height float64) *geo.Viewport {
	var center model.LatLng
	if o.Center != nil {
		center = *o.Center
	}
	return geo.NewViewport(center, o.Zoom, width, height)
}

func (o Options) validate() error {
	var missing []string
	if o.ContainerID == "" {
		missing = append(missing, "containerId")
	}
	if o.Center == nil {
		missing = append(missing, "center")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// ConfigurationError reports required options that were not supplied.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("markermap: missing required option(s): %s", strings.Join(e.Missing, ", "))
}
