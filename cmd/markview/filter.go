package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/dataset"
	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/jobqueue"
	"github.com/rendis/markview/internal/engine/storage"
	"github.com/rendis/markview/internal/markermap"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/pkg/config"
	"github.com/rendis/markview/internal/pkg/metrics"
)

func runFilter(args []string) error {
	var (
		configPath, input, query, dbPath string
		centerPlace, format, output      string
		metricsPath, logLevel            string
		params                           model.FilterParams
	)

	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Config file (default: markview.yaml search path)")
	fs.StringVar(&input, "input", "", "Dataset file (.json or .csv)")
	fs.StringVar(&query, "query", "", "Load the latest stored search for this query instead of -input")
	fs.StringVar(&dbPath, "db", "", "Store path (default: storage.db_path)")
	fs.Float64Var(&params.Center.Lat, "lat", 0, "Viewport centre latitude")
	fs.Float64Var(&params.Center.Lng, "lng", 0, "Viewport centre longitude")
	fs.StringVar(&centerPlace, "center-place", "", "Geocode a place name for the viewport centre")
	fs.IntVar(&params.Zoom, "zoom", 0, "Zoom level 0-20 (default: map.zoom)")
	fs.Float64Var(&params.Width, "width", 800, "Viewport width in pixels")
	fs.Float64Var(&params.Height, "height", 600, "Viewport height in pixels")
	fs.Float64Var(&params.Margin, "margin", 0, "Visibility margin in pixels (default: map.visibility_margin)")
	fs.Float64Var(&params.Icon.Width, "icon-width", 0, "Marker icon width (default: map.marker_icon.width)")
	fs.Float64Var(&params.Icon.Height, "icon-height", 0, "Marker icon height (default: map.marker_icon.height)")
	fs.StringVar(&format, "format", "csv", "Output format: csv or json")
	fs.StringVar(&output, "output", "", "Output file (default: stdout)")
	fs.StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics to this textfile")
	fs.StringVar(&logLevel, "log-level", "", "Log level (default: log.level)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: markview filter [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  markview filter -input points.csv -zoom 14\n")
		fmt.Fprintf(os.Stderr, "  markview filter -query cafe -center-place \"Red Square\" -format json\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (input == "") == (query == "") {
		return fmt.Errorf("exactly one of -input or -query is required")
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format: %s (csv or json)", format)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	log, closer, err := setupLogger(logLevel, cfg.Log.Dir)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// explicitly set flags override config
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := markermap.OptionsFromConfig(cfg.Map)
	if set["lat"] || set["lng"] {
		center := params.Center
		opts.Center = &center
	}
	if centerPlace != "" {
		center, name, err := geo.GeocodeCenter(ctx, centerPlace)
		if err != nil {
			return fmt.Errorf("geocoding %q: %w", centerPlace, err)
		}
		log.WithField("place", name).Info("viewport centre geocoded")
		opts.Center = &center
	}
	if set["zoom"] {
		opts.Zoom = params.Zoom
	}
	if set["margin"] {
		opts.VisibilityMargin = params.Margin
	}
	if params.Icon.Width > 0 {
		opts.MarkerIconSize.Width = params.Icon.Width
	}
	if params.Icon.Height > 0 {
		opts.MarkerIconSize.Height = params.Icon.Height
	}

	markers, err := loadDataset(input, query, dbPath, cfg)
	if err != nil {
		return err
	}

	reg := metrics.New()
	queue := jobqueue.New(
		jobqueue.WithLogger(log.WithField("component", "jobqueue")),
		jobqueue.WithMetrics(reg),
	)
	defer queue.Close()

	canvas := markermap.NewCanvas(opts.Viewport(params.Width, params.Height))
	m, err := markermap.New(canvas, queue, opts, log.WithField("component", "markermap"))
	if err != nil {
		return err
	}
	m.SetMarkersData(markers)

	kept, err := m.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("filtering: %w", err)
	}

	log.WithFields(logrus.Fields{
		"total": len(markers),
		"kept":  len(kept),
		"zoom":  opts.Zoom,
	}).Info("filter pass complete")

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	rows := dataset.Survivors(markers, kept)
	if format == "json" {
		err = dataset.WriteJSON(w, rows)
	} else {
		err = dataset.WriteCSV(w, rows)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if metricsPath != "" {
		if err := reg.WriteTextfile(metricsPath); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Kept %d of %d markers\n", len(kept), len(markers))
	return nil
}

func loadDataset(input, query, dbPath string, cfg *config.Config) ([]model.Marker, error) {
	if input != "" {
		return dataset.ReadFile(input)
	}

	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	markers, ok, err := store.LatestSearch(query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no stored search for %q (run 'markview fetch -query %q' first)", query, query)
	}
	return markers, nil
}
