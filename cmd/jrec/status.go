package main

import (
	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/spf13/cobra"
)

var statusDataDir string

func init() {
	statusCmd.Flags().StringVar(&statusDataDir, "data-dir", "", "Checkpoint directory (default from config)")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// StatusResult is the response for the status command.
type StatusResult struct {
	DataDir string               `json:"data_dir"`
	Stats   checkpoint.Stats     `json:"stats"`
	Pending []checkpoint.Pending `json:"pending,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := cfg.DataDir
	if statusDataDir != "" {
		dir = statusDataDir
	}

	state, err := checkpoint.NewStore(dir).Load()
	if err != nil {
		exitWithError(ExitDataError, "loading checkpoint: %v", err)
	}

	result := StatusResult{DataDir: dir, Stats: state.Stats(), Pending: state.Pending}
	if !humanOutput {
		return outputJSON(result)
	}

	outputHuman("Checkpoint in %s\n", dir)
	printStatsHuman(result.Stats)
	if len(state.Pending) > 0 {
		outputHuman("\nPending expansion (next first):\n")
		for i := len(state.Pending) - 1; i >= 0; i-- {
			p := state.Pending[i]
			outputHuman("  %s (depth %d)\n", p.Name, p.Depth)
		}
	}
	return nil
}

func printStatsHuman(s checkpoint.Stats) {
	outputHuman("  Visited names:     %d\n", s.Visited)
	outputHuman("  Pending names:     %d\n", s.Pending)
	outputHuman("  Authors:           %d\n", s.Authors)
	outputHuman("  Articles:          %d (%d with journal)\n", s.Articles, s.ArticlesResolved)
	outputHuman("  Journals:          %d\n", s.Journals)
}
