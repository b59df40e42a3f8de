package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/matsen/jrec/internal/record"
	"github.com/matsen/jrec/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dbSearchLimit int
	dbTopLimit    int
)

func init() {
	dbSearchCmd.Flags().IntVarP(&dbSearchLimit, "limit", "n", DefaultSearchLimit, "Maximum results")
	dbTopCmd.Flags().IntVarP(&dbTopLimit, "limit", "n", 20, "Maximum journals")

	dbCmd.AddCommand(dbRebuildCmd, dbSearchCmd, dbAuthorCmd, dbJournalCmd, dbTopCmd)
	rootCmd.AddCommand(dbCmd)
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query an SQLite copy of the checkpoint",
	Long: `The query database lives next to the checkpoint files and can be deleted
at any time. Run 'jrec db rebuild' after a crawl to refresh it.`,
}

var dbRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query database from the checkpoint",
	Args:  cobra.NoArgs,
	RunE:  runDBRebuild,
}

var dbSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over article titles, summaries, sources and authors",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDBSearch,
}

var dbAuthorCmd = &cobra.Command{
	Use:   "author <author-id>",
	Short: "Show an author and their articles",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBAuthor,
}

var dbJournalCmd = &cobra.Command{
	Use:   "journal <issn>",
	Short: "Show a resolved journal",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBJournal,
}

var dbTopCmd = &cobra.Command{
	Use:   "top",
	Short: "List resolved journals by SJR",
	Args:  cobra.NoArgs,
	RunE:  runDBTop,
}

// RebuildResult is the response for the db rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	storage.RebuildStats
}

// AuthorResult is the response for the db author command.
type AuthorResult struct {
	Author   record.Author    `json:"author"`
	Articles []record.Article `json:"articles"`
}

func dbPath() string {
	return filepath.Join(cfg.DataDir, storage.DefaultDBName)
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase() *storage.DB {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}
	db, err := storage.OpenDB(dbPath())
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

func runDBRebuild(cmd *cobra.Command, args []string) error {
	state, err := checkpoint.NewStore(cfg.DataDir).Load()
	if err != nil {
		exitWithError(ExitDataError, "loading checkpoint: %v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()

	stats, err := db.RebuildFromCheckpoint(state)
	if err != nil {
		return withCode(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		outputHuman("Rebuilt %s with %d authors, %d articles and %d journals\n",
			dbPath(), stats.Authors, stats.Articles, stats.Journals)
		return nil
	}
	return outputJSON(RebuildResult{Status: "rebuilt", Path: dbPath(), RebuildStats: stats})
}

func runDBSearch(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	query := strings.Join(args, " ")
	articles, err := db.SearchArticles(query, dbSearchLimit)
	if err != nil {
		return withCode(ExitError, "searching: %v", err)
	}

	if !humanOutput {
		if articles == nil {
			articles = []record.Article{}
		}
		return outputJSON(articles)
	}

	if len(articles) == 0 {
		outputHuman("No articles match %q\n", query)
		return nil
	}
	for i, a := range articles {
		printArticleHuman(i+1, a)
	}
	return nil
}

func runDBAuthor(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	a, err := db.AuthorByID(args[0])
	if err != nil {
		return withCode(ExitError, "looking up author: %v", err)
	}
	if a == nil {
		return withCode(ExitError, "author %s not found (run 'jrec db rebuild' after crawling)", args[0])
	}
	articles, err := db.ArticlesByAuthor(a.ID)
	if err != nil {
		return withCode(ExitError, "listing articles: %v", err)
	}

	if !humanOutput {
		if articles == nil {
			articles = []record.Article{}
		}
		return outputJSON(AuthorResult{Author: *a, Articles: articles})
	}

	outputHuman("%s (%s)\n", a.Name, a.ID)
	if a.Affiliation != "" {
		outputHuman("  %s\n", a.Affiliation)
	}
	outputHuman("  Citations: %s  h-index: %s\n", formatOptional(a.Citations), formatOptional(a.HIndex))
	if len(a.CoAuthors) > 0 {
		outputHuman("  Co-authors: %s\n", wrapText(strings.Join(a.CoAuthors, ", "), TextWrapWidth, "              "))
	}
	outputHuman("\n%d articles\n", len(articles))
	for i, art := range articles {
		printArticleHuman(i+1, art)
	}
	return nil
}

func runDBJournal(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	j, err := db.JournalByISSN(args[0])
	if err != nil {
		return withCode(ExitError, "looking up journal: %v", err)
	}
	if j == nil {
		return withCode(ExitError, "journal %s not found", args[0])
	}

	if !humanOutput {
		return outputJSON(j)
	}
	printJournalHuman(*j)
	return nil
}

func runDBTop(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	journals, err := db.TopJournals(dbTopLimit)
	if err != nil {
		return withCode(ExitError, "listing journals: %v", err)
	}

	if !humanOutput {
		if journals == nil {
			journals = []record.Journal{}
		}
		return outputJSON(journals)
	}
	for i, j := range journals {
		outputHuman("%3d. %-*s %8s  %s\n", i+1, TableNameMaxLen, truncateString(j.Name, TableNameMaxLen), formatOptional(j.SJR), j.Quartile)
	}
	return nil
}

func printArticleHuman(n int, a record.Article) {
	outputHuman("%d. %s\n", n, truncateString(a.Title, SearchTitleMaxLen))
	var meta []string
	if a.Source != "" {
		meta = append(meta, a.Source)
	}
	if a.Year != nil {
		meta = append(meta, fmt.Sprint(*a.Year))
	}
	if a.Citations != nil {
		meta = append(meta, fmt.Sprintf("%d citations", *a.Citations))
	}
	if len(meta) > 0 {
		outputHuman("   %s\n", strings.Join(meta, " | "))
	}
	if a.Authors != "" {
		outputHuman("   %s\n", truncateString(a.Authors, SearchTitleMaxLen))
	}
	outputHuman("\n")
}

func printJournalHuman(j record.Journal) {
	outputHuman("%s (ISSN %s)\n", j.Name, j.ISSN)
	if j.Publisher != "" {
		outputHuman("  Publisher: %s\n", j.Publisher)
	}
	outputHuman("  SJR: %s  Quartile: %s  h-index: %s  Impact factor: %s\n",
		formatOptional(j.SJR), orDash(j.Quartile), formatOptional(j.HIndex), formatOptional(j.ImpactFactor))
	if j.Coverage != "" {
		outputHuman("  Coverage: %s\n", j.Coverage)
	}
	if j.Scope != "" {
		outputHuman("  Scope: %s\n", wrapText(j.Scope, TextWrapWidth, "         "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
