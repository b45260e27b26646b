package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/rendis/markview/internal/engine/dataset"
	"github.com/rendis/markview/internal/engine/storage"
	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/pkg/config"
)

func runExport(args []string) error {
	var configPath, dbPath, query, outputPath, format string
	var searchID int64

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Config file (default: markview.yaml search path)")
	fs.StringVar(&dbPath, "db", "", "Store path (default: storage.db_path)")
	fs.StringVar(&query, "query", "", "Export the latest search for this query")
	fs.Int64Var(&searchID, "search", 0, "Export a search by id")
	fs.StringVar(&outputPath, "output", "", "Output file path (default: <query>.csv)")
	fs.StringVar(&format, "format", "csv", "Export format: csv or json")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: markview export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  markview export -query cafe\n")
		fmt.Fprintf(os.Stderr, "  markview export -search 3 -format json -output cafes.json\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (query == "") == (searchID == 0) {
		return fmt.Errorf("exactly one of -query or -search is required")
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported format: %s (csv or json)", format)
	}

	if dbPath == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dbPath = cfg.Storage.DBPath
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	var markers []model.Marker
	if searchID != 0 {
		markers, err = store.LoadMarkers(searchID)
		if err != nil {
			return fmt.Errorf("loading search %d: %w", searchID, err)
		}
	} else {
		var ok bool
		markers, ok, err = store.LatestSearch(query)
		if err != nil {
			return fmt.Errorf("loading search: %w", err)
		}
		if !ok {
			return fmt.Errorf("no stored search for %q", query)
		}
	}

	if len(markers) == 0 {
		return fmt.Errorf("no markers found in search")
	}

	if outputPath == "" {
		base := storage.Normalize(query)
		if base == "" {
			base = fmt.Sprintf("search_%d", searchID)
		}
		outputPath = strings.ReplaceAll(base, " ", "_") + "." + format
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	rows := lo.Map(markers, func(m model.Marker, _ int) dataset.Row {
		return dataset.Row{Marker: m}
	})
	if format == "json" {
		err = dataset.WriteJSON(f, rows)
	} else {
		err = dataset.WriteCSV(f, rows)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d markers to %s\n", len(markers), outputPath)
	return nil
}
