package crawl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/jrec/internal/logger"
)

// Stage selects which crawl stages Run executes.
type Stage string

const (
	StageAll      Stage = "all"
	StageAuthors  Stage = "authors"
	StageArticles Stage = "articles"
	StageJournals Stage = "journals"
)

// ValidStages lists every Stage.
var ValidStages = []Stage{StageAll, StageAuthors, StageArticles, StageJournals}

// ParseStage reads a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range ValidStages {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q (want all, authors, articles or journals)", s)
}

func (s Stage) includes(other Stage) bool {
	return s == StageAll || s == other
}

// Summary counts what a run did.
type Summary struct {
	AuthorsAdded   int `json:"authors_added"`
	AuthorsSkipped int `json:"authors_skipped"`
	AuthorsFailed  int `json:"authors_failed"`

	ArticleBatches       int `json:"article_batches"`
	ArticleBatchesFailed int `json:"article_batches_failed"`
	ArticlesAdded        int `json:"articles_added"`

	JournalsAdded        int `json:"journals_added"`
	JournalLookupsFailed int `json:"journal_lookups_failed"`
	ArticlesResolved     int `json:"articles_resolved"`
	SourcesReused        int `json:"sources_reused"`
	SourcesMissing       int `json:"sources_missing"`
}

// Run finishes any expansion an earlier run left pending, expands every
// seed at depth zero, fetches articles, resolves journals, and finally
// saves the checkpoint. Only the stages selected by stage run.
func (e *Engine) Run(ctx context.Context, seeds []string, stage Stage) (Summary, error) {
	if stage == "" {
		stage = StageAll
	}

	if stage.includes(StageAuthors) {
		e.log.Info("Expanding authors", logger.Int("seeds", len(seeds)), logger.Int("max_depth", e.cfg.MaxDepth))
		if err := e.Resume(ctx); err != nil {
			return e.summary, fmt.Errorf("resuming expansion: %w", err)
		}
		for _, name := range seeds {
			if err := e.Expand(ctx, name, 0); err != nil {
				return e.summary, fmt.Errorf("expanding %q: %w", name, err)
			}
		}
	}
	if stage.includes(StageArticles) {
		e.log.Info("Fetching articles", logger.Int("authors", len(e.state.Authors)))
		if err := e.ProcessArticles(ctx); err != nil {
			return e.summary, fmt.Errorf("processing articles: %w", err)
		}
	}
	if stage.includes(StageJournals) {
		e.log.Info("Resolving journals", logger.Int("articles", len(e.state.Articles)))
		if err := e.ProcessJournals(ctx); err != nil {
			return e.summary, fmt.Errorf("processing journals: %w", err)
		}
	}

	if err := e.save(); err != nil {
		return e.summary, fmt.Errorf("final save: %w", err)
	}
	return e.summary, nil
}

// LoadSeeds reads one author name per line, skipping blank lines. A missing
// file yields no seeds.
func LoadSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening authors file: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			seeds = append(seeds, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading authors file: %w", err)
	}
	return seeds, nil
}
