package main

import (
	"testing"

	"github.com/matsen/jrec/internal/config"
	"github.com/spf13/cobra"
)

func TestApplyCrawlFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&crawlAuthors, "authors", "", "")
	cmd.Flags().StringVar(&crawlDataDir, "data-dir", "", "")
	cmd.Flags().IntVar(&crawlMaxDepth, "max-depth", -1, "")
	t.Cleanup(func() { crawlHeadful = false })

	if err := cmd.Flags().Set("max-depth", "0"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("authors", "seeds.txt"); err != nil {
		t.Fatal(err)
	}
	crawlHeadful = true

	c := config.Default()
	applyCrawlFlags(cmd, c)

	if c.MaxDepth != 0 {
		t.Errorf("MaxDepth = %d, want 0 from flag", c.MaxDepth)
	}
	if c.AuthorsFile != "seeds.txt" {
		t.Errorf("AuthorsFile = %q, want seeds.txt", c.AuthorsFile)
	}
	if c.DataDir != config.Default().DataDir {
		t.Errorf("DataDir = %q, unset flag should keep the config value", c.DataDir)
	}
	if c.Browser.Headless {
		t.Error("Headless should be false with --headful")
	}
}
