package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/matsen/jrec/internal/config"
	"github.com/matsen/jrec/internal/crawl"
	"github.com/matsen/jrec/internal/fetch"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
	"github.com/spf13/cobra"
)

var (
	crawlAuthors  string
	crawlDataDir  string
	crawlMaxDepth int
	crawlStage    string
	crawlHeadful  bool
)

func init() {
	crawlCmd.Flags().StringVar(&crawlAuthors, "authors", "", "Seed author names, one per line (default from config)")
	crawlCmd.Flags().StringVar(&crawlDataDir, "data-dir", "", "Checkpoint directory (default from config)")
	crawlCmd.Flags().IntVar(&crawlMaxDepth, "max-depth", -1, "Co-author recursion depth (default from config)")
	crawlCmd.Flags().StringVar(&crawlStage, "stage", string(crawl.StageAll), "Stage to run: all, authors, articles, journals")
	crawlCmd.Flags().BoolVar(&crawlHeadful, "headful", false, "Show the browser window")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Harvest authors, articles and journals into the checkpoint",
	Long: `Crawl the scholar-profile site starting from the seed authors, expanding
co-authors up to --max-depth, then fetch every author's articles and resolve
each article's journal on the ranking registry.

Progress is saved after every unit of work. Interrupt with Ctrl-C at any
time; running the command again resumes where the previous run stopped.`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

// CrawlResult is the response for the crawl command.
type CrawlResult struct {
	RunID      string           `json:"run_id"`
	Status     string           `json:"status"`
	Stage      crawl.Stage      `json:"stage"`
	Seeds      int              `json:"seeds"`
	Summary    crawl.Summary    `json:"summary"`
	Checkpoint checkpoint.Stats `json:"checkpoint"`
	DurationMs int64            `json:"duration_ms"`
}

func runCrawl(cmd *cobra.Command, args []string) error {
	applyCrawlFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	stage, err := crawl.ParseStage(crawlStage)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	runID := uuid.NewString()
	runLog := log.With(logger.String("run_id", runID))

	store := checkpoint.NewStore(cfg.DataDir)
	state, err := store.Load()
	if err != nil {
		exitWithError(ExitDataError, "loading checkpoint: %v", err)
	}

	seeds, err := crawl.LoadSeeds(cfg.AuthorsFile)
	if err != nil {
		exitWithError(ExitDataError, "reading authors file: %v", err)
	}
	if stage == crawl.StageAuthors && len(seeds) == 0 && len(state.Pending) == 0 {
		if humanOutput {
			outputHuman("No authors to process (%s is missing or empty)\n", cfg.AuthorsFile)
		} else {
			outputJSON(StatusResponse{Status: "no authors to process", Path: cfg.AuthorsFile})
		}
		return nil
	}
	if len(seeds) == 0 {
		runLog.Warn("No authors to process", logger.String("authors_file", cfg.AuthorsFile))
	}

	chrome, err := browser.NewChrome(browser.Options{
		Headless:    cfg.Browser.Headless,
		UserAgent:   cfg.Browser.UserAgent,
		ExecPath:    cfg.Browser.ExecPath,
		WaitTimeout: cfg.Browser.WaitTimeout,
		LoadTimeout: cfg.Browser.LoadTimeout,
	}, runLog)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer func() {
		if err := chrome.Shutdown(); err != nil {
			runLog.Warn("Browser shutdown failed", logger.Error(err))
		}
	}()

	engine := newEngine(cfg, state, store, chrome, runLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, runLog)

	runLog.Info("Crawl started",
		logger.String("stage", string(stage)),
		logger.String("data_dir", cfg.DataDir),
		logger.Int("seeds", len(seeds)),
		logger.Int("max_depth", cfg.MaxDepth),
	)
	start := time.Now()
	summary, runErr := engine.Run(ctx, seeds, stage)

	result := CrawlResult{
		RunID:      runID,
		Status:     "completed",
		Stage:      stage,
		Seeds:      len(seeds),
		Summary:    summary,
		Checkpoint: engine.State().Stats(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	code := ExitSuccess
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		result.Status = "interrupted"
		code = ExitInterrupted
		runLog.Warn("Crawl interrupted; rerun to resume")
	default:
		return withCode(ExitDataError, "crawl aborted: %v", runErr)
	}
	runLog.Info("Crawl finished", logger.String("status", result.Status), logger.Any("summary", summary))

	if humanOutput {
		printCrawlHuman(result)
	} else {
		outputJSON(result)
	}
	if code != ExitSuccess {
		return &exitError{code: code, err: fmt.Errorf("crawl %s", result.Status)}
	}
	return nil
}

// applyCrawlFlags overlays the crawl flags the user set onto c.
func applyCrawlFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("authors") {
		c.AuthorsFile = crawlAuthors
	}
	if cmd.Flags().Changed("data-dir") {
		c.DataDir = crawlDataDir
	}
	if cmd.Flags().Changed("max-depth") {
		c.MaxDepth = crawlMaxDepth
	}
	if crawlHeadful {
		c.Browser.Headless = false
	}
}

// newEngine wires the fetchers, pacing and checkpoint store into an engine
// driving session.
func newEngine(c *config.Config, state *checkpoint.Checkpoint, store *checkpoint.Store, session browser.Session, l logger.Logger) *crawl.Engine {
	pacer := pace.NewPacer(pace.WithMaxRate(c.Pacing.MaxRate))
	deps := fetch.Deps{
		Session:  session,
		Pacer:    pacer,
		Detector: pace.NewDetector(c.Blocking.Token, c.Pacing.Cooldown, pacer, l),
	}

	sources := crawl.Sources{
		Authors: fetch.NewAuthorFetcher(deps, fetch.AuthorConfig{
			HomeURL:         c.Sites.ScholarURL,
			Selectors:       c.Selectors.Scholar,
			SearchDelay:     c.Pacing.Search,
			CoAuthorTimeout: c.Browser.CoAuthorTimeout,
		}),
		Articles: fetch.NewArticleFetcher(deps, fetch.ArticleConfig{
			BaseURL:   c.Sites.ScholarURL,
			Selectors: c.Selectors.Scholar,
			PageDelay: c.Pacing.Page,
		}),
		Journals: fetch.NewJournalFetcher(deps, fetch.JournalConfig{
			HomeURL:     c.Sites.RegistryURL,
			Selectors:   c.Selectors.Registry,
			SearchDelay: c.Pacing.Search,
			ResultDelay: c.Pacing.Result,
		}),
	}

	return crawl.New(state, store, sources, pacer, l, crawl.Config{
		MaxDepth: c.MaxDepth,
		Delays: crawl.Delays{
			Author:   c.Pacing.Author,
			Articles: c.Pacing.Articles,
			Journal:  c.Pacing.Journal,
		},
	})
}

func printCrawlHuman(r CrawlResult) {
	s := r.Summary
	outputHuman("Crawl %s in %s (run %s, stage %s)\n", r.Status, formatDuration(time.Duration(r.DurationMs)*time.Millisecond), r.RunID, r.Stage)
	outputHuman("  Authors:  %d added, %d skipped, %d failed\n", s.AuthorsAdded, s.AuthorsSkipped, s.AuthorsFailed)
	outputHuman("  Articles: %d added from %d batches (%d failed)\n", s.ArticlesAdded, s.ArticleBatches, s.ArticleBatchesFailed)
	outputHuman("  Journals: %d added, %d lookups failed, %d articles resolved (%d reused, %d without source)\n",
		s.JournalsAdded, s.JournalLookupsFailed, s.ArticlesResolved, s.SourcesReused, s.SourcesMissing)
	printStatsHuman(r.Checkpoint)
	if r.Status == "interrupted" {
		outputHuman("\nInterrupted. Run 'jrec crawl' again to resume.\n")
	}
}
