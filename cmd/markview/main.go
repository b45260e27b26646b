package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/pkg/config"
	"github.com/rendis/markview/internal/pkg/logging"
	"github.com/rendis/markview/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[0] != "" {
		var run func([]string) error
		switch os.Args[1] {
		case "filter":
			run = runFilter
		case "fetch":
			run = runFetch
		case "export":
			run = runExport
		case "version":
			fmt.Println("markview " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
		if run != nil {
			if err := run(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// No subcommand → launch TUI
	if err := runTUI(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	// the TUI owns the terminal, so logs always go to a file
	dir := cfg.Log.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	log, closer, err := setupLogger(cfg.Log.Level, dir)
	if err != nil {
		return err
	}
	defer closer.Close()

	return tui.Run(cfg, log, version)
}

// setupLogger opens a session log in dir, or logs to stderr when dir is
// empty. Every entry carries the session id.
func setupLogger(level, dir string) (*logrus.Entry, io.Closer, error) {
	path := ""
	if dir != "" {
		path = logging.SessionPath(dir, "markview", time.Now())
	}
	l, closer, err := logging.Setup(level, path)
	if err != nil {
		return nil, nil, err
	}
	return l.WithField("session", uuid.NewString()[:8]), closer, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `markview - map marker overlap filter

Usage:
  markview                Launch interactive TUI
  markview filter [flags] Run a headless filtering pass over a dataset
  markview fetch [flags]  Fetch markers from the catalog into the store
  markview export [flags] Export a stored search to CSV
  markview version        Show version

Run 'markview <command> --help' for flags.
`)
}
