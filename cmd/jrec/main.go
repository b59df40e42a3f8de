// Package main provides the jrec CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/jrec/internal/config"
	"github.com/matsen/jrec/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string

	cfg *config.Config
	log logger.Logger = logger.NewNop()
)

func main() {
	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			exitWithError(exitErr.code, "%v", exitErr.err)
		}
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jrec",
	Short: "Academic journal recommender and scholar crawler",
	Long: `jrec recommends academic journals for a manuscript and builds the
dataset behind those recommendations.

  crawl      harvest authors, their articles and journal metrics
  status     show what the checkpoint holds
  db         query an SQLite copy of the checkpoint
  recommend  rank journals for a title, abstract and keywords

The crawl checkpoint (CSV and JSON files in the data directory) is the
source of truth; the SQLite database is rebuilt from it on demand.
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/jrec/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg = loaded
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	l, err := logger.New(cfg.Logging)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	log = l
	return nil
}
