package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/catalog"
	"github.com/rendis/markview/internal/engine/storage"
	"github.com/rendis/markview/internal/pkg/config"
)

func runFetch(args []string) error {
	var configPath, query, dbPath, proxy string
	var regionID int

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Config file (default: markview.yaml search path)")
	fs.StringVar(&query, "query", "", "Catalog search string (required)")
	fs.StringVar(&dbPath, "db", "", "Store path (default: storage.db_path)")
	fs.IntVar(&regionID, "region", 0, "Catalog region id (default: catalog.region_id)")
	fs.StringVar(&proxy, "proxy", "", "HTTP/SOCKS5 proxy URL (default: catalog.proxy)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: markview fetch [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  markview fetch -query cafe\n")
		fmt.Fprintf(os.Stderr, "  markview fetch -query pharmacy -region 1 -db ./markers.db\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("-query is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if regionID > 0 {
		cfg.Catalog.RegionID = regionID
	}
	if proxy != "" {
		cfg.Catalog.Proxy = proxy
	}
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}

	log, closer, err := setupLogger(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	start := time.Now()
	markers, err := catalog.NewClient(cfg.Catalog).Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching catalog: %w", err)
	}

	id, err := store.SaveSearch(query, markers)
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}

	log.WithFields(logrus.Fields{
		"query":   query,
		"region":  cfg.Catalog.RegionID,
		"markers": len(markers),
		"search":  id,
		"took":    time.Since(start).Truncate(time.Millisecond),
	}).Info("catalog search stored")

	fmt.Fprintf(os.Stderr, "Stored %d markers for %q (search #%d) in %s\n", len(markers), query, id, dbPath)
	return nil
}
